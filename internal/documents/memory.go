package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. Used by tests and by the
// "memory" store driver.
type MemoryStore struct {
	mu        sync.RWMutex
	nextDoc   int64
	nextCmt   int64
	documents map[int64]Document
	comments  map[int64][]Comment
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[int64]Document),
		comments:  make(map[int64][]Comment),
	}
}

// EnsureSchema satisfies the Store interface. No-op for memory store.
func (m *MemoryStore) EnsureSchema(context.Context) error {
	return nil
}

func (m *MemoryStore) CreateDocument(_ context.Context, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextDoc++
	doc.ID = m.nextDoc
	doc.UploadedAt = stamp(doc.UploadedAt)
	m.documents[doc.ID] = doc
	return doc, nil
}

func (m *MemoryStore) GetDocument(_ context.Context, id int64) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (m *MemoryStore) ListDocuments(context.Context) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	return docs, nil
}

func (m *MemoryStore) AddComment(_ context.Context, comment Comment) (Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[comment.DocumentID]; !ok {
		return Comment{}, ErrNotFound
	}
	m.nextCmt++
	comment.ID = m.nextCmt
	comment.CreatedAt = stamp(comment.CreatedAt)
	m.comments[comment.DocumentID] = append(m.comments[comment.DocumentID], comment)
	return comment, nil
}

func (m *MemoryStore) ListComments(_ context.Context, documentID int64) ([]Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	thread := m.comments[documentID]
	out := make([]Comment, 0, len(thread))
	for i := len(thread) - 1; i >= 0; i-- {
		out = append(out, thread[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Close satisfies the Store interface.
func (m *MemoryStore) Close() error {
	return nil
}
