// Package server renders the document portal and accepts uploads and comments.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Its-donkey/docshare/internal/documents"
	"github.com/Its-donkey/docshare/internal/documents/files"
	"github.com/Its-donkey/docshare/logging"
)

// Options configures the portal HTTP server.
type Options struct {
	Listen         string
	AssetsDir      string
	SiteName       string
	MaxUploadBytes int64
	Store          documents.Store
	Files          *files.Dir
	Logger         *logging.Logger
	Templates      map[string]*template.Template
	Now            func() time.Time
}

type server struct {
	assetsDir      string
	siteName       string
	maxUploadBytes int64
	store          documents.Store
	files          *files.Dir
	logger         *logging.Logger
	templates      map[string]*template.Template
	now            func() time.Time
	currentYear    int
}

// multipartOverhead is the slack allowed on top of MaxUploadBytes for the
// multipart envelope and the text fields.
const multipartOverhead = 1 << 20

func newServer(opts Options) (*server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Files == nil {
		return nil, errors.New("server: upload directory is required")
	}
	tmpl := opts.Templates
	if tmpl == nil {
		loaded, err := loadTemplates()
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		tmpl = loaded
	}
	assets := opts.AssetsDir
	if assets == "" {
		assets = "ui"
	}
	assetsPath, err := filepath.Abs(assets)
	if err != nil {
		return nil, fmt.Errorf("resolve assets dir: %w", err)
	}
	srv := &server{
		assetsDir:      assetsPath,
		siteName:       opts.SiteName,
		maxUploadBytes: opts.MaxUploadBytes,
		store:          opts.Store,
		files:          opts.Files,
		logger:         opts.Logger,
		templates:      tmpl,
		now:            opts.Now,
	}
	if srv.siteName == "" {
		srv.siteName = "Docshare"
	}
	if srv.maxUploadBytes <= 0 {
		srv.maxUploadBytes = 20 * 1024 * 1024
	}
	if srv.logger == nil {
		srv.logger = logging.Discard()
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	srv.currentYear = srv.now().Year()
	return srv, nil
}

// Handler builds the routed, request-logged handler for opts.
func Handler(opts Options) (http.Handler, error) {
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return srv.routes(), nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /documents/{id}", s.handleDocument)
	mux.HandleFunc("POST /documents/{id}/comments", s.handleAddComment)
	mux.HandleFunc("GET /files/{name}", s.handleDownload)
	mux.HandleFunc("GET /api/documents", s.handleAPIDocuments)
	mux.HandleFunc("GET /api/documents/{id}/comments", s.handleAPIComments)
	mux.Handle("GET /styles.css", s.assetHandler("styles.css", "text/css"))
	mux.Handle("GET /wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	mux.Handle("GET /main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return logging.NewHTTPLogger(s.logger).Middleware(mux)
}

// Run serves the portal until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	handler, err := Handler(opts)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	server := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logger.Info("server", fmt.Sprintf("Serving docshare on http://%s", opts.Listen), nil)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.assetsDir, name)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, path)
	})
}
