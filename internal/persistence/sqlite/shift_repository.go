package sqlite

import (
	"context"
	"fmt"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// ShiftRepository implements persistence.ShiftRepository using SQLite.
type ShiftRepository struct {
	helper *QueryHelper
}

// NewShiftRepository creates a new SQLite shift repository.
func NewShiftRepository(pool *ConnectionPool) *ShiftRepository {
	return &ShiftRepository{helper: NewQueryHelper(pool)}
}

// CreateShift inserts a new shift. The unique slot index rejects a second
// assignment for the same (day, time_slot, lab_name) with ErrDuplicate.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift persistence.Shift) error {
	if shift.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `
		INSERT INTO lab_shifts (id, tutor_id, day, time_slot, lab_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		shift.ID,
		shift.TutorID,
		shift.Day,
		shift.Time,
		shift.LabName,
		formatTime(shift.CreatedAt),
	)
	return mapSQLiteError(err)
}

// ListShifts returns every shift in the registry.
func (r *ShiftRepository) ListShifts(ctx context.Context) ([]persistence.Shift, error) {
	return r.queryShifts(ctx, `
		SELECT id, tutor_id, day, time_slot, lab_name, created_at
		FROM lab_shifts ORDER BY created_at, id`)
}

// ListShiftsForTutor returns the shifts assigned to one tutor.
func (r *ShiftRepository) ListShiftsForTutor(ctx context.Context, tutorID string) ([]persistence.Shift, error) {
	return r.queryShifts(ctx, `
		SELECT id, tutor_id, day, time_slot, lab_name, created_at
		FROM lab_shifts WHERE tutor_id = ? ORDER BY created_at, id`, tutorID)
}

// DeleteShift removes a shift by id. Absent ids are a no-op.
func (r *ShiftRepository) DeleteShift(ctx context.Context, id string) error {
	_, err := r.helper.Exec(ctx, `DELETE FROM lab_shifts WHERE id = ?`, id)
	return mapSQLiteError(err)
}

func (r *ShiftRepository) queryShifts(ctx context.Context, query string, args ...any) ([]persistence.Shift, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var shifts []persistence.Shift
	for rows.Next() {
		var shift persistence.Shift
		var createdAt string
		if err := rows.Scan(&shift.ID, &shift.TutorID, &shift.Day, &shift.Time, &shift.LabName, &createdAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		if shift.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}
