package application

import "time"

// Role names one of the two static roles in the lab system.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTutor Role = "tutor"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID      string
	DisplayName string
	IsAdmin     bool
}

// User represents a directory account exposed by the application services.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials models the authentication attributes persisted for a user.
type Credentials struct {
	User         User
	PasswordHash string
}

// Shift represents one tutor assignment to a lab slot. Shifts are immutable;
// edits delete and recreate, so ids are not stable across edits.
type Shift struct {
	ID        string
	TutorID   string
	Day       string
	Time      string
	LabName   string
	CreatedAt time.Time
}

// LabStatus is the current open/closed record for one lab. A single row per
// lab, overwritten on every update.
type LabStatus struct {
	LabName     string
	IsOpen      bool
	Note        string
	UpdatedBy   string
	UpdatedByID string
	Timestamp   time.Time
}

// LabSession is one open-to-close interval from the append-only ledger.
// Close fields are nil while the session is open.
type LabSession struct {
	ID           string
	LabName      string
	OpenedByID   string
	OpenedByName string
	OpenedAt     time.Time
	ClosedByID   *string
	ClosedByName *string
	ClosedAt     *time.Time
	Note         string
}

// AuthSession represents an authenticated session issued to a user.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AddTutorParams wraps the data required to create a tutor account.
type AddTutorParams struct {
	Principal Principal
	Name      string
	Email     string
}

// AssignShiftParams wraps the data required to assign a shift.
type AssignShiftParams struct {
	Principal Principal
	TutorID   string
	Day       string
	Time      string
	LabName   string
}

// UpdateStatusParams wraps the data required to flip a lab open or closed.
type UpdateStatusParams struct {
	Principal Principal
	LabName   string
	IsOpen    bool
	Note      string
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	User    User
	Session AuthSession
}
