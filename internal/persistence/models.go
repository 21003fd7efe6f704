package persistence

import "time"

// User represents a directory account in the lab system.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Shift represents one tutor assignment to a lab slot.
type Shift struct {
	ID        string
	TutorID   string
	Day       string
	Time      string
	LabName   string
	CreatedAt time.Time
}

// LabStatus is the single current open/closed record for one lab. The lab
// name is the key; every update overwrites the previous row.
type LabStatus struct {
	LabName     string
	IsOpen      bool
	Note        string
	UpdatedBy   string
	UpdatedByID string
	Timestamp   time.Time
}

// LabSession is one append-only open-to-close interval for a lab. Close
// fields are nil while the session is open; a closed session is immutable.
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

// AuthSession represents an authentication session persisted for a user.
type AuthSession struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
