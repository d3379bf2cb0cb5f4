package processes

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Process
	now    func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[int64]Process), now: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, p Process) (Process, error) {
	if err := ctx.Err(); err != nil {
		return Process{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	now := r.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	r.items[p.ID] = clone(p)
	return clone(p), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Process, 0)
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) GetByIDForUser(ctx context.Context, id, userID int64) (Process, error) {
	if err := ctx.Err(); err != nil {
		return Process{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok || p.UserID != userID {
		return Process{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepo) UpdateExtraction(ctx context.Context, id int64, status string, extracted json.RawMessage, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	p.ExtractedData = append(json.RawMessage(nil), extracted...)
	p.Score = &score
	p.UpdatedAt = r.now().UTC()
	r.items[id] = p
	return nil
}

func (r *MemoryRepo) UpdateReportPath(ctx context.Context, id int64, reportPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	p.ReportPath = reportPath
	p.UpdatedAt = r.now().UTC()
	r.items[id] = p
	return nil
}

func (r *MemoryRepo) CountByUser(ctx context.Context, userID int64, status string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.items {
		if p.UserID != userID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		n++
	}
	return n, nil
}

func clone(p Process) Process {
	if p.ExtractedData != nil {
		p.ExtractedData = append(json.RawMessage(nil), p.ExtractedData...)
	}
	if p.Score != nil {
		score := *p.Score
		p.Score = &score
	}
	return p
}
