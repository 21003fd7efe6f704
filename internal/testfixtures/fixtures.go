package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/labslot"
	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

var (
	userCounter    uint64
	shiftCounter   uint64
	sessionCounter uint64
)

var referenceTime = time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// TutorOption configures a generated tutor record.
type TutorOption func(*persistence.User)

// NewTutor returns a deterministic tutor record with optional overrides.
func NewTutor(opts ...TutorOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	tutor := persistence.User{
		ID:           id,
		Name:         fmt.Sprintf("Tutor %03d", idx),
		Email:        fmt.Sprintf("%s@tut.ac.za", id),
		Role:         "tutor",
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&tutor)
	}
	return tutor
}

// AsAdmin marks the generated account as an administrator.
func AsAdmin() TutorOption {
	return func(user *persistence.User) {
		user.Role = "admin"
	}
}

// WithEmail overrides the generated email address.
func WithEmail(email string) TutorOption {
	return func(user *persistence.User) {
		user.Email = email
	}
}

// ShiftOption configures a generated shift record.
type ShiftOption func(*persistence.Shift)

// NewShift returns a deterministic shift record. Successive calls walk the
// day grid so generated shifts never collide on a slot.
func NewShift(tutorID string, opts ...ShiftOption) persistence.Shift {
	idx := atomic.AddUint64(&shiftCounter, 1)
	days := labslot.Days()
	slots := labslot.TimeSlots()
	shift := persistence.Shift{
		ID:        fmt.Sprintf("shift-%03d", idx),
		TutorID:   tutorID,
		Day:       string(days[int(idx)%len(days)]),
		Time:      slots[int(idx)%len(slots)],
		LabName:   labslot.DefaultLabs()[int(idx)%len(labslot.DefaultLabs())],
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&shift)
	}
	return shift
}

// InSlot pins the generated shift to a specific slot.
func InSlot(day, timeSlot, labName string) ShiftOption {
	return func(shift *persistence.Shift) {
		shift.Day = day
		shift.Time = timeSlot
		shift.LabName = labName
	}
}

// SessionOption configures a generated lab session record.
type SessionOption func(*persistence.LabSession)

// NewLabSession returns a deterministic open session for the lab.
func NewLabSession(labName, openedByID string, opts ...SessionOption) persistence.LabSession {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := persistence.LabSession{
		ID:           fmt.Sprintf("session-%03d", idx),
		LabName:      labName,
		OpenedByID:   openedByID,
		OpenedByName: fmt.Sprintf("Tutor %s", openedByID),
		OpenedAt:     referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// ClosedBy stamps close fields on the generated session.
func ClosedBy(closedByID, closedByName string, closedAt time.Time) SessionOption {
	return func(session *persistence.LabSession) {
		session.ClosedByID = &closedByID
		session.ClosedByName = &closedByName
		session.ClosedAt = &closedAt
	}
}
