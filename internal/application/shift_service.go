package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/labslot"
	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// ShiftRepository captures the persistence operations needed by the shift
// service.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift Shift) error
	ListShifts(ctx context.Context) ([]Shift, error)
	ListShiftsForTutor(ctx context.Context, tutorID string) ([]Shift, error)
	DeleteShift(ctx context.Context, id string) error
}

// ShiftService enforces the at-most-one-tutor-per-slot rule over the shift
// registry.
type ShiftService struct {
	shifts      ShiftRepository
	labNames    []string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewShiftService wires dependencies for the shift service. labNames is the
// set of lab rooms shifts may be assigned to; when empty the default labs
// are used.
func NewShiftService(shifts ShiftRepository, labNames []string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ShiftService {
	if len(labNames) == 0 {
		labNames = labslot.DefaultLabs()
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ShiftService{
		shifts:      shifts,
		labNames:    labNames,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ShiftService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ShiftService", operation, attrs...)
}

// AssignShift validates the slot and persists a new shift unless the slot is
// already held. Administrators only. A rejected assignment leaves the
// registry untouched.
func (s *ShiftService) AssignShift(ctx context.Context, params AssignShiftParams) (shift Shift, err error) {
	if s == nil {
		err = fmt.Errorf("ShiftService is nil")
		return
	}

	logger := s.loggerWith(ctx, "AssignShift",
		"principal_id", params.Principal.UserID,
		"tutor_id", params.TutorID,
		"lab_name", params.LabName,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign shift", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("shift_id", shift.ID).InfoContext(ctx, "shift assigned")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.shifts == nil {
		err = fmt.Errorf("shift repository not configured")
		return
	}

	day, labName := strings.TrimSpace(params.Day), strings.TrimSpace(params.LabName)
	timeSlot := strings.TrimSpace(params.Time)

	vErr := &ValidationError{}
	if strings.TrimSpace(params.TutorID) == "" {
		vErr.add("tutor_id", "tutor is required")
	}
	canonical, dayOK := labslot.CanonicalDay(day)
	if !dayOK {
		vErr.add("day", "day is invalid")
	}
	if !labslot.ValidTimeSlot(timeSlot) {
		vErr.add("time", "time slot is invalid")
	}
	if !s.knownLab(labName) {
		vErr.add("lab_name", "lab is unknown")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, listErr := s.shifts.ListShifts(ctx)
	if listErr != nil {
		err = listErr
		return
	}

	candidate := labslot.Slot{Day: canonical, Time: timeSlot, LabName: labName}
	if labslot.Taken(slotsOf(existing), candidate) {
		err = ErrAlreadyExists
		return
	}

	shift = Shift{
		ID:        s.idGenerator(),
		TutorID:   strings.TrimSpace(params.TutorID),
		Day:       string(canonical),
		Time:      timeSlot,
		LabName:   labName,
		CreatedAt: s.now(),
	}

	if createErr := s.shifts.CreateShift(ctx, shift); createErr != nil {
		// The unique slot index closes the scan-then-write window.
		if errors.Is(createErr, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		} else {
			err = createErr
		}
		shift = Shift{}
		return
	}

	return shift, nil
}

// DeleteShift removes a shift by id. Deleting a shift that no longer exists
// is a successful no-op. Administrators only.
func (s *ShiftService) DeleteShift(ctx context.Context, principal Principal, shiftID string) error {
	if s == nil {
		return fmt.Errorf("ShiftService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.shifts == nil {
		return fmt.Errorf("shift repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteShift",
		"principal_id", principal.UserID,
		"shift_id", shiftID,
	)

	if err := s.shifts.DeleteShift(ctx, shiftID); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			logger.InfoContext(ctx, "shift already absent")
			return nil
		}
		logger.ErrorContext(ctx, "failed to delete shift", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "shift deleted")
	return nil
}

// ListShifts returns the full registry. Administrators only.
func (s *ShiftService) ListShifts(ctx context.Context, principal Principal) ([]Shift, error) {
	if s == nil {
		return nil, fmt.Errorf("ShiftService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.shifts == nil {
		return nil, nil
	}
	return s.shifts.ListShifts(ctx)
}

// ListShiftsForTutor returns the shifts assigned to one tutor. A tutor may
// view their own schedule; administrators may view anyone's.
func (s *ShiftService) ListShiftsForTutor(ctx context.Context, principal Principal, tutorID string) (shifts []Shift, err error) {
	if s == nil {
		err = fmt.Errorf("ShiftService is nil")
		return
	}
	if !principal.IsAdmin && principal.UserID != tutorID {
		err = ErrUnauthorized
		return
	}
	if s.shifts == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListShiftsForTutor",
		"principal_id", principal.UserID,
		"tutor_id", tutorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list shifts", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(shifts)).InfoContext(ctx, "shifts listed")
	}()

	shifts, err = s.shifts.ListShiftsForTutor(ctx, tutorID)
	return
}

func (s *ShiftService) knownLab(labName string) bool {
	for _, name := range s.labNames {
		if strings.EqualFold(name, labName) {
			return true
		}
	}
	return false
}

func slotsOf(shifts []Shift) []labslot.Slot {
	if len(shifts) == 0 {
		return nil
	}
	slots := make([]labslot.Slot, 0, len(shifts))
	for _, shift := range shifts {
		slots = append(slots, labslot.Slot{
			Day:     labslot.Day(shift.Day),
			Time:    shift.Time,
			LabName: shift.LabName,
		})
	}
	return slots
}
