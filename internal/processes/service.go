package processes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"promotore-backend/internal/documents"
	"promotore-backend/internal/shared/telemetry"
)

// RecentLimit is the number of processes shown on the dashboard.
const RecentLimit = 5

// DocumentLister lists the documents attached to a process.
type DocumentLister interface {
	ListByProcess(ctx context.Context, processID int64) ([]documents.Document, error)
}

// Service contains business logic for processes.
type Service struct {
	Repo      Repo
	Documents DocumentLister
}

func NewService(repo Repo, docs DocumentLister) *Service {
	return &Service{Repo: repo, Documents: docs}
}

// Detail is a process together with its documents.
type Detail struct {
	Process
	Documentos []documents.Document `json:"documentos"`
}

// Create opens a new process in the awaiting-documents state.
func (s *Service) Create(ctx context.Context, userID int64, clientName, externalID string) (Process, error) {
	if s == nil || s.Repo == nil {
		return Process{}, errors.New("processes service not configured")
	}
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return Process{}, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	p, err := s.Repo.Create(ctx, Process{
		ClientName: clientName,
		ExternalID: strings.TrimSpace(externalID),
		UserID:     userID,
		Status:     StatusAwaitingDocuments,
	})
	if err != nil {
		return Process{}, fmt.Errorf("create process: %w", err)
	}
	telemetry.Info("process.created", map[string]any{"process_id": p.ID, "user_id": userID})
	return p, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Process, error) {
	return s.Repo.ListByUser(ctx, userID, 0)
}

func (s *Service) Recent(ctx context.Context, userID int64) ([]Process, error) {
	return s.Repo.ListByUser(ctx, userID, RecentLimit)
}

func (s *Service) Get(ctx context.Context, userID, processID int64) (Process, error) {
	return s.Repo.GetByIDForUser(ctx, processID, userID)
}

// Detail returns the process and its documents in upload order.
func (s *Service) Detail(ctx context.Context, userID, processID int64) (Detail, error) {
	p, err := s.Repo.GetByIDForUser(ctx, processID, userID)
	if err != nil {
		return Detail{}, err
	}
	detail := Detail{Process: p, Documentos: []documents.Document{}}
	if s.Documents == nil {
		return detail, nil
	}
	docs, err := s.Documents.ListByProcess(ctx, processID)
	if err != nil {
		return Detail{}, fmt.Errorf("list documents: %w", err)
	}
	if docs != nil {
		detail.Documentos = docs
	}
	return detail, nil
}

// OwnsProcess reports whether processID exists and belongs to userID.
func (s *Service) OwnsProcess(ctx context.Context, userID, processID int64) (bool, error) {
	_, err := s.Repo.GetByIDForUser(ctx, processID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	total, err := s.Repo.CountByUser(ctx, userID, "")
	if err != nil {
		return Stats{}, err
	}
	done, err := s.Repo.CountByUser(ctx, userID, StatusProcessed)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Total: total, Concluidos: done, Pendentes: total - done}, nil
}
