package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/application"
)

type labSessionService interface {
	ListOpenSessions(ctx context.Context) ([]application.LabSession, error)
	ListSessionsInRange(ctx context.Context, start, end time.Time) ([]application.LabSession, error)
}

type LabSessionHandler struct {
	service   labSessionService
	responder responder
	logger    *slog.Logger
}

func NewLabSessionHandler(service labSessionService, logger *slog.Logger) *LabSessionHandler {
	base := defaultLogger(logger)
	return &LabSessionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LabSessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LabSessionHandler", operation, attrs...)
}

// List serves the ledger. With open=true it returns only sessions whose close
// fields are unset; with start and end it returns sessions opened inside the
// window, openedAt ascending.
func (h *LabSessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	var (
		sessions []application.LabSession
		err      error
	)
	switch {
	case query.Get("open") == "true":
		sessions, err = h.service.ListOpenSessions(r.Context())
	case query.Get("start") != "" || query.Get("end") != "":
		var start, end time.Time
		start, end, err = parseSessionWindow(query.Get("start"), query.Get("end"))
		if err != nil {
			logger.ErrorContext(r.Context(), "invalid session window", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		sessions, err = h.service.ListSessionsInRange(r.Context(), start, end)
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("specify open=true or a start and end window"))
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "session list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(r.Context(), "sessions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: toLabSessionDTOs(sessions)})
}

// parseSessionWindow accepts RFC 3339 timestamps or bare YYYY-MM-DD dates. A
// bare end date covers the whole day.
func parseSessionWindow(rawStart, rawEnd string) (time.Time, time.Time, error) {
	if strings.TrimSpace(rawStart) == "" || strings.TrimSpace(rawEnd) == "" {
		return time.Time{}, time.Time{}, errors.New("both start and end are required")
	}

	start, startErr := parseWindowTime(rawStart, false)
	if startErr != nil {
		return time.Time{}, time.Time{}, errors.New("start must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	end, endErr := parseWindowTime(rawEnd, true)
	if endErr != nil {
		return time.Time{}, time.Time{}, errors.New("end must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	return start, end, nil
}

func parseWindowTime(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}

type listSessionsResponse struct {
	Sessions []labSessionDTO `json:"sessions"`
}

type labSessionDTO struct {
	ID           string  `json:"id"`
	LabName      string  `json:"lab_name"`
	OpenedByID   string  `json:"opened_by_id"`
	OpenedByName string  `json:"opened_by_name"`
	OpenedAt     string  `json:"opened_at"`
	ClosedByID   *string `json:"closed_by_id,omitempty"`
	ClosedByName *string `json:"closed_by_name,omitempty"`
	ClosedAt     *string `json:"closed_at,omitempty"`
	Note         string  `json:"note,omitempty"`
}

func toLabSessionDTO(session application.LabSession) labSessionDTO {
	dto := labSessionDTO{
		ID:           session.ID,
		LabName:      session.LabName,
		OpenedByID:   session.OpenedByID,
		OpenedByName: session.OpenedByName,
		OpenedAt:     session.OpenedAt.UTC().Format(time.RFC3339Nano),
		ClosedByID:   session.ClosedByID,
		ClosedByName: session.ClosedByName,
		Note:         session.Note,
	}
	if session.ClosedAt != nil {
		closedAt := session.ClosedAt.UTC().Format(time.RFC3339Nano)
		dto.ClosedAt = &closedAt
	}
	return dto
}

func toLabSessionDTOs(sessions []application.LabSession) []labSessionDTO {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]labSessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toLabSessionDTO(session))
	}
	return out
}
