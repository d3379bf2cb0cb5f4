package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"promotore-backend/internal/shared/util"
)

const keyTimestampLayout = "20060102_150405"

// ErrNotFound is returned by Open when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Save(ctx context.Context, processID int64, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// DocumentKey derives the storage key for an uploaded document:
// {process_id}_{YYYYMMDD_HHMMSS}_{sanitized file name}.
func DocumentKey(processID int64, fileName string, at time.Time) (string, error) {
	sanitized, err := util.SecureFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	return fmt.Sprintf("%d_%s_%s", processID, at.Format(keyTimestampLayout), sanitized), nil
}
