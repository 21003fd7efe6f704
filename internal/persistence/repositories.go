package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for directory accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsersByRole(ctx context.Context, role string) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ShiftRepository stores tutor shift assignments.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift Shift) error
	ListShifts(ctx context.Context) ([]Shift, error)
	ListShiftsForTutor(ctx context.Context, tutorID string) ([]Shift, error)
	// DeleteShift removes a shift by id. Deleting an id that does not
	// exist is a no-op, not an error.
	DeleteShift(ctx context.Context, id string) error
}

// StatusRepository keeps the single current status row per lab.
type StatusRepository interface {
	// UpsertStatus overwrites the status row for status.LabName.
	// Last writer wins; there is no merge and no version token.
	UpsertStatus(ctx context.Context, status LabStatus) error
	GetStatus(ctx context.Context, labName string) (LabStatus, error)
	ListStatuses(ctx context.Context) ([]LabStatus, error)
}

// SessionQuery narrows lab session listings.
type SessionQuery struct {
	OpenOnly bool
	Start    *time.Time
	End      *time.Time
}

// LabSessionRepository appends and queries the open/close event ledger.
type LabSessionRepository interface {
	CreateSession(ctx context.Context, session LabSession) error
	// CloseLatestOpen stamps close fields on the most recent open session
	// for the lab in a single statement. It returns ErrNotFound when the
	// lab has no open session.
	CloseLatestOpen(ctx context.Context, labName, closedByID, closedByName, note string, closedAt time.Time) (LabSession, error)
	ListSessions(ctx context.Context, query SessionQuery) ([]LabSession, error)
}

// AuthSessionRepository stores authentication session state.
type AuthSessionRepository interface {
	CreateSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetSession(ctx context.Context, token string) (AuthSession, error)
	UpdateSession(ctx context.Context, session AuthSession) (AuthSession, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
