// Package documents persists uploaded documents and their comment threads.
package documents

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("documents: not found")

// Document is an uploaded file with its title.
type Document struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	SizeBytes        int64     `json:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Comment is one entry of a document's thread.
type Comment struct {
	ID         int64     `json:"id"`
	DocumentID int64     `json:"document_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines persistence operations for documents and comments.
// List operations return newest entries first.
type Store interface {
	EnsureSchema(ctx context.Context) error
	CreateDocument(ctx context.Context, doc Document) (Document, error)
	GetDocument(ctx context.Context, id int64) (Document, error)
	ListDocuments(ctx context.Context) ([]Document, error)
	AddComment(ctx context.Context, comment Comment) (Comment, error)
	ListComments(ctx context.Context, documentID int64) ([]Comment, error)
	Close() error
}

// timeLayout stores timestamps with second precision so text columns sort
// chronologically.
const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(timeLayout, value)
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Second)
}
