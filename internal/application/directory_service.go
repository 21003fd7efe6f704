package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

// DirectoryRepository captures the persistence operations needed by the
// directory service.
type DirectoryRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsersByRole(ctx context.Context, role Role) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PasswordNotifier delivers the temporary-password notice to a freshly
// created tutor. Delivery failure is logged, never fatal.
type PasswordNotifier interface {
	NotifyTemporaryPassword(ctx context.Context, email, name string) error
}

// DirectoryService manages tutor accounts and resolves principal roles.
type DirectoryService struct {
	users        DirectoryRepository
	notifier     PasswordNotifier
	tempPassword string
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewDirectoryService wires dependencies for the directory service. The
// notifier may be nil when no delivery channel is configured.
func NewDirectoryService(users DirectoryRepository, notifier PasswordNotifier, tempPassword string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DirectoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{
		users:        users,
		notifier:     notifier,
		tempPassword: tempPassword,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *DirectoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DirectoryService", operation, attrs...)
}

// ResolveRole maps an authenticated principal id to its role. ErrNotFound
// means the caller should be treated as logged out.
func (s *DirectoryService) ResolveRole(ctx context.Context, principalID string) (Role, error) {
	if s == nil {
		return "", fmt.Errorf("DirectoryService is nil")
	}
	if s.users == nil {
		return "", fmt.Errorf("directory repository not configured")
	}

	user, err := s.users.GetUser(ctx, principalID)
	if err != nil {
		return "", mapDirectoryRepoError(err)
	}
	return user.Role, nil
}

// AddTutor validates input and creates a tutor account with the configured
// temporary password. Administrators only.
func (s *DirectoryService) AddTutor(ctx context.Context, params AddTutorParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("DirectoryService is nil")
		return
	}

	name := strings.TrimSpace(params.Name)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	logger := s.loggerWith(ctx, "AddTutor",
		"principal_id", params.Principal.UserID,
		"email", email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add tutor", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "tutor added")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.users == nil {
		err = fmt.Errorf("directory repository not configured")
		return
	}

	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, mailErr := mail.ParseAddress(email); mailErr != nil {
		vErr.add("email", "email is invalid")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, lookupErr := s.users.GetUserByEmail(ctx, email); lookupErr == nil {
		vErr.add("email", "email is already registered")
		err = vErr
		return
	} else if !errors.Is(lookupErr, ErrNotFound) && !errors.Is(lookupErr, persistence.ErrNotFound) {
		err = lookupErr
		return
	}

	passwordHash, hashErr := CreatePasswordHash(s.tempPassword, DefaultArgon2idParams)
	if hashErr != nil {
		err = hashErr
		return
	}

	user = User{
		ID:        s.idGenerator(),
		Name:      name,
		Email:     email,
		Role:      RoleTutor,
		CreatedAt: s.now(),
	}
	user.UpdatedAt = user.CreatedAt

	if createErr := s.users.CreateUser(ctx, user, passwordHash); createErr != nil {
		mapped := mapDirectoryRepoError(createErr)
		if errors.Is(mapped, ErrAlreadyExists) {
			// Lost a race with another admin adding the same address.
			vErr.add("email", "email is already registered")
			err = vErr
			return
		}
		err = mapped
		return
	}

	if s.notifier != nil {
		if notifyErr := s.notifier.NotifyTemporaryPassword(ctx, email, name); notifyErr != nil {
			logger.WarnContext(ctx, "failed to send temporary password notice", "error", notifyErr)
		}
	}

	return user, nil
}

// RemoveTutor deletes a tutor's directory record. The identity provider
// account may outlive the record; revocation is the provider's concern.
func (s *DirectoryService) RemoveTutor(ctx context.Context, principal Principal, tutorID string) error {
	if s == nil {
		return fmt.Errorf("DirectoryService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.users == nil {
		return fmt.Errorf("directory repository not configured")
	}

	logger := s.loggerWith(ctx, "RemoveTutor",
		"principal_id", principal.UserID,
		"tutor_id", tutorID,
	)

	if err := s.users.DeleteUser(ctx, tutorID); err != nil {
		err = mapDirectoryRepoError(err)
		logger.ErrorContext(ctx, "failed to remove tutor", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "tutor removed")
	return nil
}

// ListTutors returns tutor accounts in store arrival order.
func (s *DirectoryService) ListTutors(ctx context.Context, principal Principal) (tutors []User, err error) {
	if s == nil {
		err = fmt.Errorf("DirectoryService is nil")
		return
	}
	if strings.TrimSpace(principal.UserID) == "" {
		err = ErrUnauthorized
		return
	}
	if s.users == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListTutors", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list tutors", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(tutors)).InfoContext(ctx, "tutors listed")
	}()

	tutors, err = s.users.ListUsersByRole(ctx, RoleTutor)
	if err != nil {
		err = mapDirectoryRepoError(err)
		tutors = nil
	}
	return
}

func mapDirectoryRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
