package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/Its-donkey/docshare/internal/documents"
	"github.com/Its-donkey/docshare/internal/documents/files"
	"github.com/Its-donkey/docshare/internal/ui/formguard"
)

type basePageData struct {
	PageTitle   string
	SiteName    string
	CurrentYear int
}

type homePageData struct {
	basePageData
	Documents []documents.Document
	Error     string
}

type documentPageData struct {
	basePageData
	Document documents.Document
	Comments []documents.Comment
}

func (s *server) base(title string) basePageData {
	pageTitle := s.siteName
	if title != "" {
		pageTitle = title + " · " + s.siteName
	}
	return basePageData{
		PageTitle:   pageTitle,
		SiteName:    s.siteName,
		CurrentYear: s.currentYear,
	}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("documents").Error("list documents", err)
		http.Error(w, "failed to load documents", http.StatusInternalServerError)
		return
	}
	data := homePageData{
		basePageData: s.base(""),
		Documents:    docs,
		Error:        strings.TrimSpace(r.URL.Query().Get("error")),
	}
	s.render(w, r, "home", data)
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := s.logger.FromContext(r.Context()).WithCategory("upload")
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.redirectWithError(w, r, formguard.MsgFileTooLarge)
			return
		}
		log.Warn("malformed upload: " + err.Error())
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	file, header, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		log.Error("read upload", err)
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	var selected []formguard.FileInfo
	if file != nil {
		defer file.Close()
		if header.Filename != "" {
			selected = append(selected, formguard.FileInfo{Name: header.Filename, Size: header.Size})
		}
	}

	if failure := formguard.ValidateUpload(title, selected); failure != nil {
		log.WithField("rule", failure.Kind.String()).Info("upload rejected")
		s.redirectWithError(w, r, failure.Message)
		return
	}

	now := s.now()
	stored, size, err := s.files.SaveUpload(header.Filename, now, file, s.maxUploadBytes)
	if errors.Is(err, files.ErrTooLarge) {
		s.redirectWithError(w, r, formguard.MsgFileTooLarge)
		return
	}
	if err != nil {
		log.Error("store upload", err)
		http.Error(w, "failed to store file", http.StatusInternalServerError)
		return
	}
	original := files.SecureFilename(header.Filename)
	if original == "" {
		original = stored
	}

	doc, err := s.store.CreateDocument(r.Context(), documents.Document{
		Title:            title,
		Description:      description,
		OriginalFilename: original,
		StoredFilename:   stored,
		SizeBytes:        size,
		UploadedAt:       now,
	})
	if err != nil {
		_ = s.files.Remove(stored)
		log.Error("create document", err)
		http.Error(w, "failed to save document", http.StatusInternalServerError)
		return
	}
	log.WithField("document_id", doc.ID).WithField("size", size).Info("document uploaded")
	http.Redirect(w, r, fmt.Sprintf("/documents/%d", doc.ID), http.StatusSeeOther)
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	doc, err := s.store.GetDocument(r.Context(), id)
	if errors.Is(err, documents.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("documents").Error("get document", err)
		http.Error(w, "failed to load document", http.StatusInternalServerError)
		return
	}
	comments, err := s.store.ListComments(r.Context(), id)
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("comments").Error("list comments", err)
		http.Error(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	s.render(w, r, "document", documentPageData{
		basePageData: s.base(doc.Title),
		Document:     doc,
		Comments:     comments,
	})
}

func (s *server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := fmt.Sprintf("/documents/%d", id)
	content := strings.TrimSpace(r.FormValue("content"))
	if formguard.ValidateComment(content) != nil {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	_, err := s.store.AddComment(r.Context(), documents.Comment{
		DocumentID: id,
		Content:    content,
		CreatedAt:  s.now(),
	})
	if errors.Is(err, documents.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("comments").Error("add comment", err)
		http.Error(w, "failed to save comment", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	path, err := s.files.Path(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *server) handleAPIDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("api").Error("list documents", err)
		http.Error(w, "failed to load documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, docs)
}

func (s *server) handleAPIComments(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	comments, err := s.store.ListComments(r.Context(), id)
	if err != nil {
		s.logger.FromContext(r.Context()).WithCategory("api").Error("list comments", err)
		http.Error(w, "failed to load comments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, comments)
}

func (s *server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.FromContext(r.Context()).WithCategory("render").Error("render "+name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *server) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func documentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}
