package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// StatusRepository implements persistence.StatusRepository using SQLite.
type StatusRepository struct {
	helper *QueryHelper
}

// NewStatusRepository creates a new SQLite lab status repository.
func NewStatusRepository(pool *ConnectionPool) *StatusRepository {
	return &StatusRepository{helper: NewQueryHelper(pool)}
}

// UpsertStatus overwrites the single status row for the lab. Last writer
// wins; the previous row is not preserved.
func (r *StatusRepository) UpsertStatus(ctx context.Context, status persistence.LabStatus) error {
	if status.LabName == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO lab_status (lab_name, lab_open, note, updated_by, updated_by_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (lab_name) DO UPDATE SET
			lab_open = excluded.lab_open,
			note = excluded.note,
			updated_by = excluded.updated_by,
			updated_by_id = excluded.updated_by_id,
			timestamp = excluded.timestamp`,
		status.LabName,
		boolToInt(status.IsOpen),
		status.Note,
		status.UpdatedBy,
		status.UpdatedByID,
		formatTime(status.Timestamp),
	)
	return mapSQLiteError(err)
}

// GetStatus returns the current status row for the lab, or ErrNotFound when
// no status has ever been recorded.
func (r *StatusRepository) GetStatus(ctx context.Context, labName string) (persistence.LabStatus, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT lab_name, lab_open, note, updated_by, updated_by_id, timestamp
		FROM lab_status WHERE lab_name = ?`, labName)
	return scanStatus(row)
}

// ListStatuses returns every lab's current status, newest update first.
func (r *StatusRepository) ListStatuses(ctx context.Context) ([]persistence.LabStatus, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT lab_name, lab_open, note, updated_by, updated_by_id, timestamp
		FROM lab_status ORDER BY timestamp DESC`)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var statuses []persistence.LabStatus
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, rows.Err()
}

func scanStatus(row rowScanner) (persistence.LabStatus, error) {
	var status persistence.LabStatus
	var open int
	var timestamp string

	err := row.Scan(&status.LabName, &open, &status.Note, &status.UpdatedBy, &status.UpdatedByID, &timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.LabStatus{}, persistence.ErrNotFound
		}
		return persistence.LabStatus{}, mapSQLiteError(err)
	}

	status.IsOpen = open != 0
	if status.Timestamp, err = parseTime(timestamp); err != nil {
		return persistence.LabStatus{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return status, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
