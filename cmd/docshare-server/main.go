package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Its-donkey/docshare/internal/config"
	"github.com/Its-donkey/docshare/internal/documents"
	"github.com/Its-donkey/docshare/internal/documents/files"
	"github.com/Its-donkey/docshare/internal/ui/server"
	"github.com/Its-donkey/docshare/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the server configuration file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the configuration")
	listen := flag.String("listen", "", "override the configured listen address")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("load env file: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	addr := cfg.ListenAddr()
	if *listen != "" {
		addr = *listen
	}

	logFile, err := logging.NewFileWriter(cfg.App.Logs, "docshare.log", 10, 5)
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	defer logFile.Close()
	logger := logging.New("docshare", logging.ParseLevel(cfg.App.LogLevel), os.Stdout, logFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store", "open document store", err, map[string]any{"driver": cfg.Store.Driver})
		os.Exit(1)
	}
	defer store.Close()

	uploads, err := files.NewDir(cfg.App.Uploads)
	if err != nil {
		logger.Error("files", "prepare upload directory", err, nil)
		os.Exit(1)
	}

	logger.Info("server", "starting docshare", map[string]any{
		"driver":  cfg.Store.Driver,
		"uploads": uploads.Root(),
		"logs":    logFile.Path(),
	})

	err = server.Run(ctx, server.Options{
		Listen:         addr,
		AssetsDir:      cfg.App.Assets,
		SiteName:       cfg.App.Name,
		MaxUploadBytes: cfg.App.MaxUploadBytes,
		Store:          store,
		Files:          uploads,
		Logger:         logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server", "server stopped", err, nil)
		os.Exit(1)
	}
	logger.Info("server", "shutdown complete", nil)
}

// openStore connects the configured driver and makes sure its tables exist.
func openStore(ctx context.Context, cfg config.Config) (documents.Store, error) {
	var (
		store documents.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.DriverMemory:
		store = documents.NewMemoryStore()
	case config.DriverSQLite:
		if err := os.MkdirAll(cfg.App.Data, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		store, err = documents.OpenSQLite(cfg.Store.DSN)
	case config.DriverPostgres:
		store, err = documents.ConnectPostgres(ctx, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}
