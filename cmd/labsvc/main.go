package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/TADI-I/TUT-Labs/internal/application"
	"github.com/TADI-I/TUT-Labs/internal/config"
	httptransport "github.com/TADI-I/TUT-Labs/internal/http"
	"github.com/TADI-I/TUT-Labs/internal/persistence"
	"github.com/TADI-I/TUT-Labs/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	userRepo := sqlite.NewUserRepository(storage)
	shiftRepo := sqlite.NewShiftRepository(storage)
	statusRepo := sqlite.NewStatusRepository(storage)
	labSessionRepo := sqlite.NewLabSessionRepository(storage)
	authSessionRepo := sqlite.NewAuthSessionRepository(storage)

	directoryService := application.NewDirectoryService(
		newDirectoryRepositoryAdapter(userRepo),
		newLogNotifier(logger),
		cfg.TempPassword,
		idGenerator, now, logger,
	)
	shiftService := application.NewShiftService(newShiftRepositoryAdapter(shiftRepo), cfg.LabNames, idGenerator, now, logger)
	sessionService := application.NewSessionService(newLabSessionRepositoryAdapter(labSessionRepo), idGenerator, now, logger)
	labStatusService := application.NewLabStatusService(newStatusRepositoryAdapter(statusRepo), sessionService, now, logger)
	authService := application.NewAuthService(
		newCredentialStoreAdapter(userRepo),
		newAuthSessionRepositoryAdapter(authSessionRepo),
		application.VerifyPassword,
		tokenGenerator, now, cfg.SessionTTL, logger,
	)
	reportService := application.NewReportService(directoryService, shiftService, sessionService, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:     httptransport.NewAuthHandler(authService, logger),
		Tutors:   httptransport.NewTutorHandler(directoryService, logger),
		Shifts:   httptransport.NewShiftHandler(shiftService, logger),
		Labs:     httptransport.NewLabHandler(labStatusService, logger),
		Sessions: httptransport.NewLabSessionHandler(sessionService, logger),
		Reports:  httptransport.NewReportHandler(reportService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/sessions" && r.Method == http.MethodPost {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("lab API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// logNotifier records temporary-password notices instead of sending mail.
// Hook an SMTP sender in here when outbound mail is available.
type logNotifier struct {
	logger *slog.Logger
}

func newLogNotifier(logger *slog.Logger) *logNotifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifyTemporaryPassword(ctx context.Context, email, name string) error {
	n.logger.InfoContext(ctx, "temporary password issued", "email", email, "name", name)
	return nil
}

type directoryRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newDirectoryRepositoryAdapter(repo persistence.UserRepository) *directoryRepositoryAdapter {
	return &directoryRepositoryAdapter{repo: repo}
}

func (a *directoryRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) error {
	return a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash))
}

func (a *directoryRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *directoryRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *directoryRepositoryAdapter) ListUsersByRole(ctx context.Context, role application.Role) ([]application.User, error) {
	models, err := a.repo.ListUsersByRole(ctx, string(role))
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

func (a *directoryRepositoryAdapter) DeleteUser(ctx context.Context, id string) error {
	return a.repo.DeleteUser(ctx, id)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetCredentialsByEmail(ctx context.Context, email string) (application.Credentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.Credentials{}, err
	}
	return application.Credentials{User: toApplicationUser(stored), PasswordHash: stored.PasswordHash}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

type shiftRepositoryAdapter struct {
	repo persistence.ShiftRepository
}

func newShiftRepositoryAdapter(repo persistence.ShiftRepository) *shiftRepositoryAdapter {
	return &shiftRepositoryAdapter{repo: repo}
}

func (a *shiftRepositoryAdapter) CreateShift(ctx context.Context, shift application.Shift) error {
	return a.repo.CreateShift(ctx, persistence.Shift(shift))
}

func (a *shiftRepositoryAdapter) ListShifts(ctx context.Context) ([]application.Shift, error) {
	models, err := a.repo.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationShifts(models), nil
}

func (a *shiftRepositoryAdapter) ListShiftsForTutor(ctx context.Context, tutorID string) ([]application.Shift, error) {
	models, err := a.repo.ListShiftsForTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	return toApplicationShifts(models), nil
}

func (a *shiftRepositoryAdapter) DeleteShift(ctx context.Context, id string) error {
	return a.repo.DeleteShift(ctx, id)
}

type statusRepositoryAdapter struct {
	repo persistence.StatusRepository
}

func newStatusRepositoryAdapter(repo persistence.StatusRepository) *statusRepositoryAdapter {
	return &statusRepositoryAdapter{repo: repo}
}

func (a *statusRepositoryAdapter) UpsertStatus(ctx context.Context, status application.LabStatus) error {
	return a.repo.UpsertStatus(ctx, persistence.LabStatus(status))
}

func (a *statusRepositoryAdapter) GetStatus(ctx context.Context, labName string) (application.LabStatus, error) {
	stored, err := a.repo.GetStatus(ctx, labName)
	if err != nil {
		return application.LabStatus{}, err
	}
	return application.LabStatus(stored), nil
}

func (a *statusRepositoryAdapter) ListStatuses(ctx context.Context) ([]application.LabStatus, error) {
	models, err := a.repo.ListStatuses(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	statuses := make([]application.LabStatus, 0, len(models))
	for _, model := range models {
		statuses = append(statuses, application.LabStatus(model))
	}
	return statuses, nil
}

type labSessionRepositoryAdapter struct {
	repo persistence.LabSessionRepository
}

func newLabSessionRepositoryAdapter(repo persistence.LabSessionRepository) *labSessionRepositoryAdapter {
	return &labSessionRepositoryAdapter{repo: repo}
}

func (a *labSessionRepositoryAdapter) CreateSession(ctx context.Context, session application.LabSession) error {
	return a.repo.CreateSession(ctx, persistence.LabSession(session))
}

func (a *labSessionRepositoryAdapter) CloseLatestOpen(ctx context.Context, labName, closedByID, closedByName, note string, closedAt time.Time) (application.LabSession, error) {
	closed, err := a.repo.CloseLatestOpen(ctx, labName, closedByID, closedByName, note, closedAt)
	if err != nil {
		return application.LabSession{}, err
	}
	return application.LabSession(closed), nil
}

func (a *labSessionRepositoryAdapter) ListOpenSessions(ctx context.Context) ([]application.LabSession, error) {
	models, err := a.repo.ListSessions(ctx, persistence.SessionQuery{OpenOnly: true})
	if err != nil {
		return nil, err
	}
	return toApplicationSessions(models), nil
}

func (a *labSessionRepositoryAdapter) ListSessionsInRange(ctx context.Context, start, end time.Time) ([]application.LabSession, error) {
	models, err := a.repo.ListSessions(ctx, persistence.SessionQuery{Start: &start, End: &end})
	if err != nil {
		return nil, err
	}
	return toApplicationSessions(models), nil
}

type authSessionRepositoryAdapter struct {
	repo persistence.AuthSessionRepository
}

func newAuthSessionRepositoryAdapter(repo persistence.AuthSessionRepository) *authSessionRepositoryAdapter {
	return &authSessionRepositoryAdapter{repo: repo}
}

func (a *authSessionRepositoryAdapter) CreateSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	stored, err := a.repo.CreateSession(ctx, persistence.AuthSession(session))
	if err != nil {
		return application.AuthSession{}, err
	}
	return application.AuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.AuthSession, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.AuthSession{}, err
	}
	return application.AuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.AuthSession) (application.AuthSession, error) {
	stored, err := a.repo.UpdateSession(ctx, persistence.AuthSession(session))
	if err != nil {
		return application.AuthSession{}, err
	}
	return application.AuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.AuthSession, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.AuthSession{}, err
	}
	return application.AuthSession(stored), nil
}

func (a *authSessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         string(user.Role),
		PasswordHash: passwordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      application.Role(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toApplicationShifts(models []persistence.Shift) []application.Shift {
	if len(models) == 0 {
		return nil
	}
	shifts := make([]application.Shift, 0, len(models))
	for _, model := range models {
		shifts = append(shifts, application.Shift(model))
	}
	return shifts
}

func toApplicationSessions(models []persistence.LabSession) []application.LabSession {
	if len(models) == 0 {
		return nil
	}
	sessions := make([]application.LabSession, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, application.LabSession(model))
	}
	return sessions
}
