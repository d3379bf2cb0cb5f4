package processes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"promotore-backend/internal/shared/storage/db"
)

var processColumns = []string{
	"id", "client_name", "external_id", "owner_user_id", "status", "score", "conformities", "alerts",
	"inconsistencies", "extracted_data_json", "report_path", "created_at", "updated_at",
}

func TestSQLRepoCreateSQLite(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	repo := NewSQLRepo(database, db.SQLite)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processes (client_name, external_id, owner_user_id, status, created_at, updated_at)")).
		WithArgs("Maria Silva", nil, int64(1), StatusAwaitingDocuments, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))

	p, err := repo.Create(context.Background(), Process{ClientName: "Maria Silva", UserID: 1, Status: StatusAwaitingDocuments})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != 4 {
		t.Fatalf("expected id 4, got %d", p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoGetByIDForUserPostgres(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	now := time.Now().UTC()
	repo := NewSQLRepo(database, db.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND owner_user_id = $2")).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows(processColumns).
			AddRow(int64(4), "Maria Silva", "123", int64(1), StatusProcessed, int64(85), nil, nil, nil, `{"a.pdf":"texto"}`, nil, now, now))

	p, err := repo.GetByIDForUser(context.Background(), 4, 1)
	if err != nil {
		t.Fatalf("GetByIDForUser: %v", err)
	}
	if p.Score == nil || *p.Score != 85 {
		t.Fatalf("expected score 85, got %v", p.Score)
	}
	if p.Conformities != nil || p.Alerts != nil || p.Inconsistencies != nil {
		t.Fatalf("expected null counters: %+v", p)
	}
	var data map[string]string
	if err := json.Unmarshal(p.ExtractedData, &data); err != nil || data["a.pdf"] != "texto" {
		t.Fatalf("unexpected extracted data: %s (%v)", p.ExtractedData, err)
	}
}

func TestSQLRepoGetByIDForUserNotFound(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	repo := NewSQLRepo(database, db.SQLite)
	mock.ExpectQuery("FROM processes").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByIDForUser(context.Background(), 4, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoUpdateExtractionSingleWrite(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := NewSQLRepo(database, db.Postgres)
	repo.Now = func() time.Time { return fixed }
	mock.ExpectExec(regexp.QuoteMeta("SET status = $1, extracted_data_json = $2, score = $3, updated_at = $4")).
		WithArgs(StatusProcessed, `{"a.pdf":"x"}`, 85, fixed, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateExtraction(context.Background(), 4, StatusProcessed, json.RawMessage(`{"a.pdf":"x"}`), 85); err != nil {
		t.Fatalf("UpdateExtraction: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLRepoUpdateReportPathMissingRow(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	repo := NewSQLRepo(database, db.SQLite)
	mock.ExpectExec("UPDATE processes").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateReportPath(context.Background(), 4, "reports/4.xlsx"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLRepoListAndCount(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	now := time.Now().UTC()
	repo := NewSQLRepo(database, db.Postgres)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC\nLIMIT 5")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(processColumns).
			AddRow(int64(2), "B", nil, int64(1), StatusAwaitingDocuments, nil, nil, nil, nil, nil, nil, now, now).
			AddRow(int64(1), "A", nil, int64(1), StatusProcessed, int64(85), nil, nil, nil, `{}`, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM processes WHERE owner_user_id = $1 AND status = $2")).
		WithArgs(int64(1), StatusProcessed).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, err := repo.ListByUser(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 2 || items[0].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
	n, err := repo.CountByUser(context.Background(), 1, StatusProcessed)
	if err != nil || n != 1 {
		t.Fatalf("CountByUser: %d %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
