package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in a PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore constructs a Postgres-backed Store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// ConnectPostgres opens a pool for dsn.
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(pool), nil
}

// EnsureSchema creates the tables when they do not already exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                BIGSERIAL PRIMARY KEY,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	original_filename TEXT NOT NULL,
	stored_filename   TEXT NOT NULL,
	size_bytes        BIGINT NOT NULL DEFAULT 0,
	uploaded_at       TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS comments (
	id          BIGSERIAL PRIMARY KEY,
	document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	content     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_document ON comments(document_id);`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc Document) (Document, error) {
	doc.UploadedAt = stamp(doc.UploadedAt)
	const query = `
INSERT INTO documents (title, description, original_filename, stored_filename, size_bytes, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err := s.pool.QueryRow(ctx, query,
		doc.Title, doc.Description, doc.OriginalFilename, doc.StoredFilename, doc.SizeBytes, doc.UploadedAt,
	).Scan(&doc.ID)
	if err != nil {
		return Document{}, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

const pgDocumentColumns = `id, title, description, original_filename, stored_filename, size_bytes, uploaded_at`

func (s *PostgresStore) GetDocument(ctx context.Context, id int64) (Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgDocumentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanPgDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pgDocumentColumns+` FROM documents ORDER BY uploaded_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanPgDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) AddComment(ctx context.Context, comment Comment) (Comment, error) {
	comment.CreatedAt = stamp(comment.CreatedAt)
	const query = `
INSERT INTO comments (document_id, content, created_at)
SELECT id, $2, $3 FROM documents WHERE id = $1
RETURNING id`
	err := s.pool.QueryRow(ctx, query, comment.DocumentID, comment.Content, comment.CreatedAt).Scan(&comment.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (s *PostgresStore) ListComments(ctx context.Context, documentID int64) ([]Comment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, document_id, content, created_at FROM comments WHERE document_id = $1 ORDER BY created_at DESC, id DESC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgDocument(row pgx.Row) (Document, error) {
	var doc Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.OriginalFilename, &doc.StoredFilename, &doc.SizeBytes, &doc.UploadedAt)
	doc.UploadedAt = doc.UploadedAt.UTC()
	return doc, err
}
