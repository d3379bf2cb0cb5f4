package processes

import (
	"context"
	"encoding/json"
)

// Repo persists processes. Lookups are scoped to the owning user.
type Repo interface {
	Create(ctx context.Context, p Process) (Process, error)
	// ListByUser returns newest first; limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID int64, limit int) ([]Process, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (Process, error)
	UpdateExtraction(ctx context.Context, id int64, status string, extracted json.RawMessage, score int) error
	UpdateReportPath(ctx context.Context, id int64, reportPath string) error
	// CountByUser counts all processes when status is empty.
	CountByUser(ctx context.Context, userID int64, status string) (int, error)
}
