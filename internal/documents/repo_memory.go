package documents

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64][]Document // processId -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[int64][]Document),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	doc.ID = r.nextID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	r.data[doc.ProcessID] = append(r.data[doc.ProcessID], doc)
	return doc, nil
}

func (r *MemoryRepo) CreateBatch(ctx context.Context, docs []Document) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		r.nextID++
		doc.ID = r.nextID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
		}
		r.data[doc.ProcessID] = append(r.data[doc.ProcessID], doc)
		out = append(out, doc)
	}
	return out, nil
}

func (r *MemoryRepo) ListByProcess(ctx context.Context, processID int64) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[processID]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out, nil
}
