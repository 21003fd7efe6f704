package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// StatusRepository captures the persistence operations needed by the lab
// status service.
type StatusRepository interface {
	UpsertStatus(ctx context.Context, status LabStatus) error
	GetStatus(ctx context.Context, labName string) (LabStatus, error)
	ListStatuses(ctx context.Context) ([]LabStatus, error)
}

// sessionLedger is the slice of SessionService the status service appends to.
type sessionLedger interface {
	OpenSession(ctx context.Context, labName string, openedBy Principal, note string) (LabSession, error)
	CloseSession(ctx context.Context, labName string, closedBy Principal, note string) (LabSession, error)
}

// LabStatusService owns the open/closed state machine for labs:
//
//	Unset -> Open: any authenticated principal
//	Closed -> Open: any authenticated principal
//	Open -> Closed: only the opener or an admin
type LabStatusService struct {
	statuses StatusRepository
	ledger   sessionLedger
	cache    *statusCache
	now      func() time.Time
	logger   *slog.Logger
}

// NewLabStatusService wires dependencies for the lab status service. The
// ledger may be nil in tests that only exercise the guard logic.
func NewLabStatusService(statuses StatusRepository, ledger sessionLedger, now func() time.Time, logger *slog.Logger) *LabStatusService {
	if now == nil {
		now = time.Now
	}
	return &LabStatusService{
		statuses: statuses,
		ledger:   ledger,
		cache:    newStatusCache(0, 0, now),
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *LabStatusService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LabStatusService", operation, attrs...)
}

// CanEdit reports whether the principal may flip the lab's status. A nil
// status means no record exists yet, which anyone may create. A closed lab
// may be opened by anyone; an open lab may be closed only by the principal
// who opened it or an admin.
func CanEdit(principalID string, isAdmin bool, status *LabStatus) bool {
	if status == nil {
		return true
	}
	if status.IsOpen {
		return status.UpdatedByID == principalID || isAdmin
	}
	return true
}

// GetStatus returns the current status for the lab, or ErrNotFound when no
// status has ever been recorded for it.
func (s *LabStatusService) GetStatus(ctx context.Context, labName string) (LabStatus, error) {
	if s == nil {
		return LabStatus{}, fmt.Errorf("LabStatusService is nil")
	}
	if s.statuses == nil {
		return LabStatus{}, ErrNotFound
	}

	if cached, ok := s.cache.Get(labName); ok {
		return cached, nil
	}

	status, err := s.statuses.GetStatus(ctx, labName)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return LabStatus{}, ErrNotFound
		}
		return LabStatus{}, err
	}

	s.cache.Set(status)
	return status, nil
}

// ListStatuses returns every lab's current status, newest update first.
func (s *LabStatusService) ListStatuses(ctx context.Context) ([]LabStatus, error) {
	if s == nil {
		return nil, fmt.Errorf("LabStatusService is nil")
	}
	if s.statuses == nil {
		return nil, nil
	}
	return s.statuses.ListStatuses(ctx)
}

// UpdateStatus overwrites the lab's status document after checking the edit
// guard, then records the transition in the session ledger. The ledger
// append is a side effect: an open ledger that is already open and a close
// with nothing to close are both benign.
func (s *LabStatusService) UpdateStatus(ctx context.Context, params UpdateStatusParams) (status LabStatus, err error) {
	if s == nil {
		err = fmt.Errorf("LabStatusService is nil")
		return
	}
	if s.statuses == nil {
		err = fmt.Errorf("status repository not configured")
		return
	}

	labName := strings.TrimSpace(params.LabName)

	logger := s.loggerWith(ctx, "UpdateStatus",
		"principal_id", params.Principal.UserID,
		"lab_name", labName,
		"is_open", params.IsOpen,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status updated")
	}()

	if strings.TrimSpace(params.Principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}
	if labName == "" {
		vErr := &ValidationError{}
		vErr.add("lab_name", "lab name is required")
		err = vErr
		return
	}

	var current *LabStatus
	existing, getErr := s.statuses.GetStatus(ctx, labName)
	switch {
	case getErr == nil:
		current = &existing
	case errors.Is(getErr, persistence.ErrNotFound) || errors.Is(getErr, ErrNotFound):
		current = nil
	default:
		err = getErr
		return
	}

	if !CanEdit(params.Principal.UserID, params.Principal.IsAdmin, current) {
		err = ErrUnauthorized
		return
	}

	status = LabStatus{
		LabName:     labName,
		IsOpen:      params.IsOpen,
		Note:        params.Note,
		UpdatedBy:   displayNameOf(params.Principal),
		UpdatedByID: params.Principal.UserID,
		Timestamp:   s.now(),
	}

	if upsertErr := s.statuses.UpsertStatus(ctx, status); upsertErr != nil {
		err = upsertErr
		status = LabStatus{}
		return
	}

	s.cache.Invalidate(labName)
	s.appendLedger(ctx, logger, params, current)

	return status, nil
}

// appendLedger mirrors the status flip into the session ledger. Only
// transitions append: re-stating the current state (e.g. open -> open with a
// new note) leaves the ledger alone.
func (s *LabStatusService) appendLedger(ctx context.Context, logger *slog.Logger, params UpdateStatusParams, previous *LabStatus) {
	if s.ledger == nil {
		return
	}

	wasOpen := previous != nil && previous.IsOpen
	switch {
	case params.IsOpen && !wasOpen:
		if _, openErr := s.ledger.OpenSession(ctx, params.LabName, params.Principal, params.Note); openErr != nil && !errors.Is(openErr, ErrAlreadyExists) {
			logger.WarnContext(ctx, "failed to record open session", "error", openErr)
		}
	case !params.IsOpen && wasOpen:
		if _, closeErr := s.ledger.CloseSession(ctx, params.LabName, params.Principal, params.Note); closeErr != nil && !errors.Is(closeErr, ErrNotFound) {
			logger.WarnContext(ctx, "failed to record close session", "error", closeErr)
		}
	}
}
