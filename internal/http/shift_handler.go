package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/application"
)

type shiftService interface {
	AssignShift(ctx context.Context, params application.AssignShiftParams) (application.Shift, error)
	DeleteShift(ctx context.Context, principal application.Principal, shiftID string) error
	ListShifts(ctx context.Context, principal application.Principal) ([]application.Shift, error)
	ListShiftsForTutor(ctx context.Context, principal application.Principal, tutorID string) ([]application.Shift, error)
}

type ShiftHandler struct {
	service   shiftService
	responder responder
	logger    *slog.Logger
}

func NewShiftHandler(service shiftService, logger *slog.Logger) *ShiftHandler {
	base := defaultLogger(logger)
	return &ShiftHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ShiftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ShiftHandler", operation, attrs...)
}

func (h *ShiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode shift request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "tutor_id", req.TutorID)

	shift, err := h.service.AssignShift(r.Context(), application.AssignShiftParams{
		Principal: principal,
		TutorID:   strings.TrimSpace(req.TutorID),
		Day:       strings.TrimSpace(req.Day),
		Time:      strings.TrimSpace(req.Time),
		LabName:   strings.TrimSpace(req.LabName),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "shift assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("shift_id", shift.ID).InfoContext(r.Context(), "shift assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, shiftResponse{Shift: toShiftDTO(shift)})
}

func (h *ShiftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	shiftID, ok := ShiftIDFromContext(r.Context())
	if !ok || strings.TrimSpace(shiftID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing shift id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidShiftID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "shift_id", shiftID)
	if err := h.service.DeleteShift(r.Context(), principal, shiftID); err != nil {
		logger.ErrorContext(r.Context(), "shift delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "shift deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List serves the full registry for administrators, or one tutor's schedule
// when the tutor_id query parameter is present.
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	tutorID := strings.TrimSpace(r.URL.Query().Get("tutor_id"))
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "tutor_id", tutorID)

	var (
		shifts []application.Shift
		err    error
	)
	if tutorID != "" {
		shifts, err = h.service.ListShiftsForTutor(r.Context(), principal, tutorID)
	} else {
		shifts, err = h.service.ListShifts(r.Context(), principal)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "shift list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(shifts)).InfoContext(r.Context(), "shifts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listShiftsResponse{Shifts: toShiftDTOs(shifts)})
}

type shiftRequest struct {
	TutorID string `json:"tutor_id"`
	Day     string `json:"day"`
	Time    string `json:"time"`
	LabName string `json:"lab_name"`
}

type shiftResponse struct {
	Shift shiftDTO `json:"shift"`
}

type listShiftsResponse struct {
	Shifts []shiftDTO `json:"shifts"`
}

type shiftDTO struct {
	ID        string `json:"id"`
	TutorID   string `json:"tutor_id"`
	Day       string `json:"day"`
	Time      string `json:"time"`
	LabName   string `json:"lab_name"`
	CreatedAt string `json:"created_at"`
}

func toShiftDTO(shift application.Shift) shiftDTO {
	return shiftDTO{
		ID:        shift.ID,
		TutorID:   shift.TutorID,
		Day:       shift.Day,
		Time:      shift.Time,
		LabName:   shift.LabName,
		CreatedAt: shift.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toShiftDTOs(shifts []application.Shift) []shiftDTO {
	if len(shifts) == 0 {
		return nil
	}
	out := make([]shiftDTO, 0, len(shifts))
	for _, shift := range shifts {
		out = append(out, toShiftDTO(shift))
	}
	return out
}
