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

// LabSessionRepository captures the ledger operations needed by the session
// service.
type LabSessionRepository interface {
	CreateSession(ctx context.Context, session LabSession) error
	CloseLatestOpen(ctx context.Context, labName, closedByID, closedByName, note string, closedAt time.Time) (LabSession, error)
	ListOpenSessions(ctx context.Context) ([]LabSession, error)
	ListSessionsInRange(ctx context.Context, start, end time.Time) ([]LabSession, error)
}

// SessionService maintains the append-only open/close ledger for labs.
type SessionService struct {
	sessions    LabSessionRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionService wires dependencies for the session service.
func NewSessionService(sessions LabSessionRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SessionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// OpenSession appends a new open session for the lab. A second open for a
// lab that is already open returns ErrAlreadyExists; the ledger keeps at
// most one open session per lab.
func (s *SessionService) OpenSession(ctx context.Context, labName string, openedBy Principal, note string) (session LabSession, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}
	if strings.TrimSpace(openedBy.UserID) == "" {
		err = ErrUnauthorized
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("lab session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "OpenSession",
		"principal_id", openedBy.UserID,
		"lab_name", labName,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to open session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session opened")
	}()

	session = LabSession{
		ID:           s.idGenerator(),
		LabName:      strings.TrimSpace(labName),
		OpenedByID:   openedBy.UserID,
		OpenedByName: displayNameOf(openedBy),
		OpenedAt:     s.now(),
		Note:         note,
	}

	if createErr := s.sessions.CreateSession(ctx, session); createErr != nil {
		if errors.Is(createErr, persistence.ErrDuplicate) {
			err = ErrAlreadyExists
		} else {
			err = createErr
		}
		session = LabSession{}
		return
	}

	return session, nil
}

// CloseSession stamps close fields on the most recent open session for the
// lab. When the lab has no open session it returns ErrNotFound, which
// callers treat as a benign no-op.
func (s *SessionService) CloseSession(ctx context.Context, labName string, closedBy Principal, note string) (session LabSession, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}
	if strings.TrimSpace(closedBy.UserID) == "" {
		err = ErrUnauthorized
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("lab session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CloseSession",
		"principal_id", closedBy.UserID,
		"lab_name", labName,
	)

	session, err = s.sessions.CloseLatestOpen(ctx, strings.TrimSpace(labName), closedBy.UserID, displayNameOf(closedBy), note, s.now())
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			logger.InfoContext(ctx, "no open session to close")
			err = ErrNotFound
			return
		}
		logger.ErrorContext(ctx, "failed to close session", "error", err, "error_kind", ErrorKind(err))
		return
	}

	logger.With("session_id", session.ID).InfoContext(ctx, "session closed")
	return session, nil
}

// ListOpenSessions returns every session whose close fields are unset.
func (s *SessionService) ListOpenSessions(ctx context.Context) ([]LabSession, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions.ListOpenSessions(ctx)
}

// ListSessionsInRange returns sessions opened within [start, end], ordered
// by opened time ascending.
func (s *SessionService) ListSessionsInRange(ctx context.Context, start, end time.Time) ([]LabSession, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if s.sessions == nil {
		return nil, nil
	}
	if end.Before(start) {
		vErr := &ValidationError{}
		vErr.add("range", "end must not be before start")
		return nil, vErr
	}
	return s.sessions.ListSessionsInRange(ctx, start, end)
}

func displayNameOf(principal Principal) string {
	if name := strings.TrimSpace(principal.DisplayName); name != "" {
		return name
	}
	return "Unknown"
}
