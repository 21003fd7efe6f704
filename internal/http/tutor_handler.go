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

type tutorService interface {
	AddTutor(ctx context.Context, params application.AddTutorParams) (application.User, error)
	RemoveTutor(ctx context.Context, principal application.Principal, tutorID string) error
	ListTutors(ctx context.Context, principal application.Principal) ([]application.User, error)
}

type TutorHandler struct {
	service   tutorService
	responder responder
	logger    *slog.Logger
}

func NewTutorHandler(service tutorService, logger *slog.Logger) *TutorHandler {
	base := defaultLogger(logger)
	return &TutorHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TutorHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TutorHandler", operation, attrs...)
}

func (h *TutorHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req tutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode tutor request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	tutor, err := h.service.AddTutor(r.Context(), application.AddTutorParams{
		Principal: principal,
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "tutor creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", tutor.ID).InfoContext(r.Context(), "tutor created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, tutorResponse{Tutor: toTutorDTO(tutor)})
}

func (h *TutorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tutorID, ok := TutorIDFromContext(r.Context())
	if !ok || strings.TrimSpace(tutorID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing tutor id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTutorID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "tutor_id", tutorID)
	if err := h.service.RemoveTutor(r.Context(), principal, tutorID); err != nil {
		logger.ErrorContext(r.Context(), "tutor delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "tutor deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	tutors, err := h.service.ListTutors(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "tutor list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(tutors)).InfoContext(r.Context(), "tutors listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTutorsResponse{Tutors: toTutorDTOs(tutors)})
}

type tutorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type tutorResponse struct {
	Tutor tutorDTO `json:"tutor"`
}

type listTutorsResponse struct {
	Tutors []tutorDTO `json:"tutors"`
}

type tutorDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toTutorDTO(user application.User) tutorDTO {
	return tutorDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTutorDTOs(users []application.User) []tutorDTO {
	if len(users) == 0 {
		return nil
	}
	out := make([]tutorDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toTutorDTO(user))
	}
	return out
}
