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

type reportService interface {
	WeeklyScheduleReport(ctx context.Context, principal application.Principal, tutorID string, weekStart time.Time) ([]byte, error)
	WeeklyActivityReport(ctx context.Context, principal application.Principal, weekStart time.Time) ([]byte, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

func (h *ReportHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	tutorID := strings.TrimSpace(query.Get("tutor_id"))
	if tutorID == "" {
		tutorID = principal.UserID
	}

	weekStart, err := parseWeekStart(query.Get("week_start"))
	if err != nil {
		h.log(r.Context(), "Schedule", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid week start", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Schedule", "principal_id", principal.UserID, "tutor_id", tutorID)

	document, err := h.service.WeeklyScheduleReport(r.Context(), principal, tutorID, weekStart)
	if err != nil {
		logger.ErrorContext(r.Context(), "schedule report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("document_bytes", len(document)).InfoContext(r.Context(), "schedule report served")
	h.responder.writePDF(r.Context(), w, "weekly-schedule.pdf", document)
}

func (h *ReportHandler) Activity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	weekStart, err := parseWeekStart(r.URL.Query().Get("week_start"))
	if err != nil {
		h.log(r.Context(), "Activity", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid week start", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Activity", "principal_id", principal.UserID)

	document, err := h.service.WeeklyActivityReport(r.Context(), principal, weekStart)
	if err != nil {
		logger.ErrorContext(r.Context(), "activity report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("document_bytes", len(document)).InfoContext(r.Context(), "activity report served")
	h.responder.writePDF(r.Context(), w, "weekly-activity.pdf", document)
}

// parseWeekStart reads a YYYY-MM-DD date. An empty value defaults to the
// Monday of the current week in UTC.
func parseWeekStart(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := time.Now().UTC()
		offset := (int(now.Weekday()) + 6) % 7
		day := now.AddDate(0, 0, -offset)
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	weekStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("week_start must be a YYYY-MM-DD date")
	}
	return weekStart, nil
}
