package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore persists documents in a single SQLite file using WAL mode.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the database file at path. The caller must Close it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
		`PRAGMA foreign_keys=ON`,
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// EnsureSchema creates the tables when they do not already exist.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	title             TEXT NOT NULL,
	description       TEXT,
	original_filename TEXT NOT NULL,
	stored_filename   TEXT NOT NULL,
	size_bytes        INTEGER NOT NULL DEFAULT 0,
	uploaded_at       TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS comments (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL,
	content     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	doc.UploadedAt = stamp(doc.UploadedAt)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (title, description, original_filename, stored_filename, size_bytes, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.Title, nullString(doc.Description), doc.OriginalFilename, doc.StoredFilename, doc.SizeBytes, formatTime(doc.UploadedAt))
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Document{}, fmt.Errorf("document id: %w", err)
	}
	doc.ID = id
	return doc, nil
}

const documentColumns = `id, title, description, original_filename, stored_filename, size_bytes, uploaded_at`

func (s *SQLiteStore) GetDocument(ctx context.Context, id int64) (Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) AddComment(ctx context.Context, comment Comment) (Comment, error) {
	comment.CreatedAt = stamp(comment.CreatedAt)
	err := s.tx(ctx, func(tx *sql.Tx) error {
		var exists int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM documents WHERE id = ?`, comment.DocumentID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup document: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO comments (document_id, content, created_at) VALUES (?, ?, ?)`,
			comment.DocumentID, comment.Content, formatTime(comment.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		comment.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *SQLiteStore) ListComments(ctx context.Context, documentID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, created_at FROM comments WHERE document_id = ? ORDER BY created_at DESC, id DESC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		var created string
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parse comment time: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (Document, error) {
	var doc Document
	var desc sql.NullString
	var uploaded string
	if err := sc.Scan(&doc.ID, &doc.Title, &desc, &doc.OriginalFilename, &doc.StoredFilename, &doc.SizeBytes, &uploaded); err != nil {
		return doc, err
	}
	doc.Description = desc.String
	t, err := parseTime(uploaded)
	if err != nil {
		return doc, fmt.Errorf("parse upload time: %w", err)
	}
	doc.UploadedAt = t
	return doc, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
