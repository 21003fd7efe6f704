package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// LabSessionRepository implements persistence.LabSessionRepository using SQLite.
type LabSessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewLabSessionRepository creates a new SQLite lab session repository.
func NewLabSessionRepository(pool *ConnectionPool) *LabSessionRepository {
	return &LabSessionRepository{pool: pool, helper: NewQueryHelper(pool)}
}

// CreateSession appends a new open session to the ledger. The partial unique
// index on open sessions rejects a second concurrent open for the same lab
// with ErrDuplicate.
func (r *LabSessionRepository) CreateSession(ctx context.Context, session persistence.LabSession) error {
	if session.ID == "" || session.LabName == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO lab_sessions (id, lab_name, opened_by_id, opened_by_name, opened_at, closed_by_id, closed_by_name, closed_at, note)
		VALUES (?, ?, ?, ?, ?, NULL, NULL, NULL, ?)`,
		session.ID,
		session.LabName,
		session.OpenedByID,
		session.OpenedByName,
		formatTime(session.OpenedAt),
		session.Note,
	)
	return mapSQLiteError(err)
}

// CloseLatestOpen stamps close fields on the newest open session for the lab
// inside one transaction, removing the find-then-stamp race.
func (r *LabSessionRepository) CloseLatestOpen(ctx context.Context, labName, closedByID, closedByName, note string, closedAt time.Time) (persistence.LabSession, error) {
	var closed persistence.LabSession

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM lab_sessions
			WHERE lab_name = ? AND closed_at IS NULL
			ORDER BY opened_at DESC LIMIT 1`, labName).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			return mapSQLiteError(err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE lab_sessions
			SET closed_by_id = ?, closed_by_name = ?, closed_at = ?, note = ?
			WHERE id = ? AND closed_at IS NULL`,
			closedByID, closedByName, formatTime(closedAt), note, id,
		); err != nil {
			return mapSQLiteError(err)
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, lab_name, opened_by_id, opened_by_name, opened_at, closed_by_id, closed_by_name, closed_at, note
			FROM lab_sessions WHERE id = ?`, id)
		closed, err = scanLabSession(row)
		return err
	})
	if err != nil {
		return persistence.LabSession{}, err
	}
	return closed, nil
}

// ListSessions returns ledger entries matching the query, opened_at ascending.
func (r *LabSessionRepository) ListSessions(ctx context.Context, query persistence.SessionQuery) ([]persistence.LabSession, error) {
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 2)

	if query.OpenOnly {
		clauses = append(clauses, "closed_at IS NULL")
	}
	if query.Start != nil {
		clauses = append(clauses, "opened_at >= ?")
		args = append(args, formatTime(*query.Start))
	}
	if query.End != nil {
		clauses = append(clauses, "opened_at <= ?")
		args = append(args, formatTime(*query.End))
	}

	stmt := `SELECT id, lab_name, opened_by_id, opened_by_name, opened_at, closed_by_id, closed_by_name, closed_at, note FROM lab_sessions`
	if len(clauses) > 0 {
		stmt += " WHERE " + strings.Join(clauses, " AND ")
	}
	stmt += " ORDER BY opened_at, id"

	rows, err := r.helper.Query(ctx, stmt, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var sessions []persistence.LabSession
	for rows.Next() {
		session, err := scanLabSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanLabSession(row rowScanner) (persistence.LabSession, error) {
	var session persistence.LabSession
	var openedAt string
	var closedByID, closedByName, closedAt sql.NullString

	err := row.Scan(
		&session.ID,
		&session.LabName,
		&session.OpenedByID,
		&session.OpenedByName,
		&openedAt,
		&closedByID,
		&closedByName,
		&closedAt,
		&session.Note,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.LabSession{}, persistence.ErrNotFound
		}
		return persistence.LabSession{}, mapSQLiteError(err)
	}

	if session.OpenedAt, err = parseTime(openedAt); err != nil {
		return persistence.LabSession{}, fmt.Errorf("failed to parse opened_at: %w", err)
	}
	if closedByID.Valid {
		session.ClosedByID = &closedByID.String
	}
	if closedByName.Valid {
		session.ClosedByName = &closedByName.String
	}
	if closedAt.Valid {
		parsed, err := parseTime(closedAt.String)
		if err != nil {
			return persistence.LabSession{}, fmt.Errorf("failed to parse closed_at: %w", err)
		}
		session.ClosedAt = &parsed
	}
	return session, nil
}
