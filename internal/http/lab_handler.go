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

type labStatusService interface {
	GetStatus(ctx context.Context, labName string) (application.LabStatus, error)
	ListStatuses(ctx context.Context) ([]application.LabStatus, error)
	UpdateStatus(ctx context.Context, params application.UpdateStatusParams) (application.LabStatus, error)
}

type LabHandler struct {
	service   labStatusService
	responder responder
	logger    *slog.Logger
}

func NewLabHandler(service labStatusService, logger *slog.Logger) *LabHandler {
	base := defaultLogger(logger)
	return &LabHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *LabHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "LabHandler", operation, attrs...)
}

// ListStatuses serves the status board: every lab's current record, newest
// update first. Labs that have never been flipped are absent.
func (h *LabHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListStatuses", "principal_id", principal.UserID)

	statuses, err := h.service.ListStatuses(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "status list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(statuses)).InfoContext(r.Context(), "statuses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listStatusesResponse{Statuses: toLabStatusDTOs(statuses)})
}

func (h *LabHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	labName, ok := LabNameFromContext(r.Context())
	if !ok || strings.TrimSpace(labName) == "" {
		h.log(r.Context(), "GetStatus", "error_kind", "bad_request").ErrorContext(r.Context(), "missing lab name for status read")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLabName)
		return
	}

	logger := h.log(r.Context(), "GetStatus", "lab_name", labName)

	status, err := h.service.GetStatus(r.Context(), labName)
	if err != nil {
		logger.ErrorContext(r.Context(), "status read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, labStatusResponse{Status: toLabStatusDTO(status)})
}

func (h *LabHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	labName, ok := LabNameFromContext(r.Context())
	if !ok || strings.TrimSpace(labName) == "" {
		h.log(r.Context(), "UpdateStatus", "error_kind", "bad_request").ErrorContext(r.Context(), "missing lab name for status update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLabName)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "lab_name", labName, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "lab_name", labName, "is_open", req.IsOpen)

	status, err := h.service.UpdateStatus(r.Context(), application.UpdateStatusParams{
		Principal: principal,
		LabName:   labName,
		IsOpen:    req.IsOpen,
		Note:      strings.TrimSpace(req.Note),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, labStatusResponse{Status: toLabStatusDTO(status)})
}

type statusRequest struct {
	IsOpen bool   `json:"is_open"`
	Note   string `json:"note"`
}

type labStatusResponse struct {
	Status labStatusDTO `json:"status"`
}

type listStatusesResponse struct {
	Statuses []labStatusDTO `json:"statuses"`
}

type labStatusDTO struct {
	LabName     string `json:"lab_name"`
	IsOpen      bool   `json:"is_open"`
	Note        string `json:"note,omitempty"`
	UpdatedBy   string `json:"updated_by"`
	UpdatedByID string `json:"updated_by_id"`
	Timestamp   string `json:"timestamp"`
}

func toLabStatusDTO(status application.LabStatus) labStatusDTO {
	return labStatusDTO{
		LabName:     status.LabName,
		IsOpen:      status.IsOpen,
		Note:        status.Note,
		UpdatedBy:   status.UpdatedBy,
		UpdatedByID: status.UpdatedByID,
		Timestamp:   status.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

func toLabStatusDTOs(statuses []application.LabStatus) []labStatusDTO {
	if len(statuses) == 0 {
		return nil
	}
	out := make([]labStatusDTO, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, toLabStatusDTO(status))
	}
	return out
}
