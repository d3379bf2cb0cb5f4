package documents

import (
	"context"
	"errors"
	"fmt"
	"io"

	"promotore-backend/internal/shared/metrics"
	"promotore-backend/internal/shared/storage/object"
	"promotore-backend/internal/shared/telemetry"
	"promotore-backend/internal/shared/util"
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// Allowed reports whether the file name has an accepted extension.
func Allowed(fileName string) bool {
	_, ok := allowedExtensions[util.FileExtension(fileName)]
	return ok
}

// ProcessFinder reports whether a process belongs to a user.
type ProcessFinder interface {
	OwnsProcess(ctx context.Context, userID, processID int64) (bool, error)
}

// Upload is one file of a multipart batch.
type Upload struct {
	FileName string
	Open     func() (io.ReadCloser, error)
}

// UploadResult lists what a batch stored and what it skipped.
type UploadResult struct {
	Accepted []Document
	Rejected []string
}

// Service contains business logic for documents.
type Service struct {
	Store     object.ObjectStore
	Repo      DocumentsRepo
	Processes ProcessFinder
}

// UploadBatch stores every allowed file and records it against the process.
// Files with other extensions are skipped and reported as rejected.
func (s *Service) UploadBatch(ctx context.Context, userID, processID int64, files []Upload) (UploadResult, error) {
	if len(files) == 0 {
		return UploadResult{}, ErrNoFiles
	}
	if s.Processes != nil {
		ok, err := s.Processes.OwnsProcess(ctx, userID, processID)
		if err != nil {
			return UploadResult{}, err
		}
		if !ok {
			return UploadResult{}, ErrProcessNotFound
		}
	}

	// Rows are recorded only after every file in the batch is stored.
	var res UploadResult
	var pending []Document
	for _, f := range files {
		if f.FileName == "" || !Allowed(f.FileName) {
			res.Rejected = append(res.Rejected, f.FileName)
			continue
		}
		doc, err := s.store(ctx, processID, f)
		if err != nil {
			if errors.Is(err, util.ErrInvalidFileName) {
				res.Rejected = append(res.Rejected, f.FileName)
				continue
			}
			return UploadResult{Rejected: res.Rejected}, err
		}
		pending = append(pending, doc)
	}

	if len(pending) > 0 {
		created, err := s.Repo.CreateBatch(ctx, pending)
		if err != nil {
			return UploadResult{Rejected: res.Rejected}, fmt.Errorf("record documents: %w", err)
		}
		res.Accepted = created
	}

	metrics.AddUploadedDocuments(len(res.Accepted))
	telemetry.Info("documents.uploaded", map[string]any{
		"process_id": processID,
		"user_id":    userID,
		"accepted":   len(res.Accepted),
		"rejected":   len(res.Rejected),
	})
	if len(res.Accepted) == 0 {
		return res, ErrNoAcceptedFiles
	}
	return res, nil
}

func (s *Service) store(ctx context.Context, processID int64, f Upload) (Document, error) {
	r, err := f.Open()
	if err != nil {
		return Document{}, fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()

	key, size, mimeType, err := s.Store.Save(ctx, processID, f.FileName, r)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ProcessID: processID,
		FileName:  f.FileName,
		FilePath:  key,
		MimeType:  mimeType,
		SizeBytes: size,
	}, nil
}

// ListByProcess returns the documents of a process in upload order.
func (s *Service) ListByProcess(ctx context.Context, processID int64) ([]Document, error) {
	return s.Repo.ListByProcess(ctx, processID)
}
