package documents

import (
	"context"
	"database/sql"
	"time"

	"promotore-backend/internal/shared/storage/db"
)

// SQLRepo stores documents in postgres or sqlite depending on Dialect.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLRepo) Create(ctx context.Context, doc Document) (Document, error) {
	return r.insert(ctx, r.DB, doc)
}

func (r *SQLRepo) CreateBatch(ctx context.Context, docs []Document) ([]Document, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		created, err := r.insert(ctx, tx, doc)
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		out = append(out, created)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLRepo) insert(ctx context.Context, q queryer, doc Document) (Document, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	query := `
INSERT INTO documents (process_id, filename, doc_type, file_path, processed_flag, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	var docType any
	if doc.DocType != "" {
		docType = doc.DocType
	}
	args := []any{doc.ProcessID, doc.FileName, docType, doc.FilePath, doc.Processed, doc.CreatedAt}

	if r.Dialect.SupportsReturning() {
		if err := q.QueryRowContext(ctx, r.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&doc.ID); err != nil {
			return Document{}, err
		}
		return doc, nil
	}
	res, err := q.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return Document{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Document{}, err
	}
	doc.ID = id
	return doc, nil
}

func (r *SQLRepo) ListByProcess(ctx context.Context, processID int64) ([]Document, error) {
	query := `
SELECT id, process_id, filename, doc_type, file_path, processed_flag, created_at
FROM documents
WHERE process_id = ?
ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), processID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var doc Document
		var docType sql.NullString
		if err := rows.Scan(
			&doc.ID,
			&doc.ProcessID,
			&doc.FileName,
			&docType,
			&doc.FilePath,
			&doc.Processed,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		doc.DocType = docType.String
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
