package documents

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrProcessNotFound = errors.New("process not found")
	ErrNoFiles         = errors.New("no files")
	ErrNoAcceptedFiles = errors.New("no accepted files")
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) (Document, error)
	// CreateBatch records all documents or none of them.
	CreateBatch(ctx context.Context, docs []Document) ([]Document, error)
	// ListByProcess returns documents in insertion order.
	ListByProcess(ctx context.Context, processID int64) ([]Document, error)
}
