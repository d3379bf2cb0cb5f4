package processes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"promotore-backend/internal/shared/storage/db"
)

const selectColumns = `id, client_name, external_id, owner_user_id, status, score, conformities, alerts,
inconsistencies, extracted_data_json, report_path, created_at, updated_at`

// SQLRepo stores processes in postgres or sqlite depending on Dialect.
type SQLRepo struct {
	DB      *sql.DB
	Dialect db.Dialect
	Now     func() time.Time
}

func NewSQLRepo(database *sql.DB, dialect db.Dialect) *SQLRepo {
	return &SQLRepo{DB: database, Dialect: dialect, Now: time.Now}
}

func (r *SQLRepo) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func (r *SQLRepo) Create(ctx context.Context, p Process) (Process, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.UpdatedAt = p.CreatedAt
	query := `
INSERT INTO processes (client_name, external_id, owner_user_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`
	args := []any{p.ClientName, nullableString(p.ExternalID), p.UserID, p.Status, p.CreatedAt, p.UpdatedAt}

	if r.Dialect.SupportsReturning() {
		if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&p.ID); err != nil {
			return Process{}, err
		}
		return p, nil
	}
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return Process{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Process{}, err
	}
	p.ID = id
	return p, nil
}

func (r *SQLRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]Process, error) {
	query := `SELECT ` + selectColumns + `
FROM processes
WHERE owner_user_id = ?
ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += "\nLIMIT " + strconv.Itoa(limit)
	}

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Process, 0)
	for rows.Next() {
		p, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLRepo) GetByIDForUser(ctx context.Context, id, userID int64) (Process, error) {
	query := `SELECT ` + selectColumns + `
FROM processes
WHERE id = ? AND owner_user_id = ?
LIMIT 1`
	p, err := scanProcess(r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Process{}, ErrNotFound
		}
		return Process{}, err
	}
	return p, nil
}

func (r *SQLRepo) UpdateExtraction(ctx context.Context, id int64, status string, extracted json.RawMessage, score int) error {
	query := `
UPDATE processes
SET status = ?, extracted_data_json = ?, score = ?, updated_at = ?
WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), status, string(extracted), score, r.now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepo) UpdateReportPath(ctx context.Context, id int64, reportPath string) error {
	query := `
UPDATE processes
SET report_path = ?, updated_at = ?
WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, r.Dialect.Rebind(query), reportPath, r.now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLRepo) CountByUser(ctx context.Context, userID int64, status string) (int, error) {
	query := `SELECT COUNT(*) FROM processes WHERE owner_user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProcess(row scanner) (Process, error) {
	var (
		p               Process
		externalID      sql.NullString
		ownerID         sql.NullInt64
		status          sql.NullString
		score           sql.NullInt64
		conformities    sql.NullInt64
		alerts          sql.NullInt64
		inconsistencies sql.NullInt64
		extracted       sql.NullString
		reportPath      sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.ClientName,
		&externalID,
		&ownerID,
		&status,
		&score,
		&conformities,
		&alerts,
		&inconsistencies,
		&extracted,
		&reportPath,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return Process{}, err
	}
	p.ExternalID = externalID.String
	p.UserID = ownerID.Int64
	p.Status = status.String
	p.Score = nullableInt(score)
	p.Conformities = nullableInt(conformities)
	p.Alerts = nullableInt(alerts)
	p.Inconsistencies = nullableInt(inconsistencies)
	if extracted.Valid && extracted.String != "" {
		p.ExtractedData = json.RawMessage(extracted.String)
	}
	p.ReportPath = reportPath.String
	return p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
