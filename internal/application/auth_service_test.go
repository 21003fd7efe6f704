package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

type credentialStoreStub struct {
	creds    Credentials
	credsErr error

	user    User
	userErr error
}

func (s *credentialStoreStub) GetCredentialsByEmail(ctx context.Context, email string) (Credentials, error) {
	if s.credsErr != nil {
		return Credentials{}, s.credsErr
	}
	if s.creds.User.ID == "" {
		return Credentials{}, ErrNotFound
	}
	return s.creds, nil
}

func (s *credentialStoreStub) GetUser(ctx context.Context, id string) (User, error) {
	if s.userErr != nil {
		return User{}, s.userErr
	}
	if s.user.ID == "" {
		return User{}, ErrNotFound
	}
	return s.user, nil
}

type authSessionRepoStub struct {
	createErr error
	created   AuthSession

	session AuthSession
	getErr  error

	updateErr error
	updated   AuthSession

	revokeErr error
	revokedAt time.Time

	deleteExpiredErr    error
	deleteExpiredCalled bool
}

func (r *authSessionRepoStub) CreateSession(ctx context.Context, session AuthSession) (AuthSession, error) {
	if r.createErr != nil {
		return AuthSession{}, r.createErr
	}
	r.created = session
	return session, nil
}

func (r *authSessionRepoStub) GetSession(ctx context.Context, token string) (AuthSession, error) {
	if r.getErr != nil {
		return AuthSession{}, r.getErr
	}
	if r.session.ID == "" {
		return AuthSession{}, ErrNotFound
	}
	return r.session, nil
}

func (r *authSessionRepoStub) UpdateSession(ctx context.Context, session AuthSession) (AuthSession, error) {
	if r.updateErr != nil {
		return AuthSession{}, r.updateErr
	}
	r.updated = session
	return session, nil
}

func (r *authSessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (AuthSession, error) {
	if r.revokeErr != nil {
		return AuthSession{}, r.revokeErr
	}
	r.revokedAt = revokedAt
	session := r.session
	session.RevokedAt = &revokedAt
	return session, nil
}

func (r *authSessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	r.deleteExpiredCalled = true
	return r.deleteExpiredErr
}

func passVerifier(hashedPassword, password string) error { return nil }

func failVerifier(hashedPassword, password string) error { return ErrInvalidCredentials }

func TestAuthService_Authenticate(t *testing.T) {
	knownUser := User{ID: "user-1", Name: "Thandi M", Email: "thandi.m@tut.ac.za", Role: RoleTutor}

	t.Run("rejects empty credentials", func(t *testing.T) {
		svc := NewAuthService(&credentialStoreStub{}, &authSessionRepoStub{}, passVerifier, nil, nil, 0, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "", Password: ""})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("maps an unknown email to ErrInvalidCredentials", func(t *testing.T) {
		svc := NewAuthService(&credentialStoreStub{}, &authSessionRepoStub{}, passVerifier, nil, nil, 0, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "ghost@tut.ac.za", Password: "pw"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("maps a wrong password to ErrInvalidCredentials", func(t *testing.T) {
		store := &credentialStoreStub{creds: Credentials{User: knownUser, PasswordHash: "hash"}}
		svc := NewAuthService(store, &authSessionRepoStub{}, failVerifier, nil, nil, 0, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "thandi.m@tut.ac.za", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		store := &credentialStoreStub{creds: Credentials{User: knownUser, PasswordHash: "hash"}}
		sessions := &authSessionRepoStub{}
		now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)
		svc := NewAuthService(store, sessions, passVerifier, func() string { return "token-1" }, func() time.Time { return now }, time.Hour, nil)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: " Thandi.M@TUT.ac.za ", Password: "pw"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if result.User.ID != "user-1" {
			t.Fatalf("expected authenticated user, got %+v", result.User)
		}
		if result.Session.Token != "token-1" {
			t.Fatalf("expected generated token, got %q", result.Session.Token)
		}
		if !result.Session.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected expiry one TTL out, got %v", result.Session.ExpiresAt)
		}
		if !sessions.deleteExpiredCalled {
			t.Fatal("expected expired sessions to be swept on login")
		}
		if sessions.created.UserID != "user-1" {
			t.Fatalf("expected session persisted for the user, got %+v", sessions.created)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)
	knownUser := User{ID: "user-1", Name: "Thandi M", Role: RoleAdmin}

	t.Run("resolves a live session to its principal", func(t *testing.T) {
		store := &credentialStoreStub{user: knownUser}
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", Token: "token-1", ExpiresAt: now.Add(time.Hour)}}
		svc := NewAuthService(store, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		principal, err := svc.ValidateSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if principal.UserID != "user-1" || principal.DisplayName != "Thandi M" || !principal.IsAdmin {
			t.Fatalf("unexpected principal %+v", principal)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		svc := NewAuthService(&credentialStoreStub{}, &authSessionRepoStub{}, nil, nil, nil, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "ghost")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", ExpiresAt: now.Add(-time.Minute)}}
		svc := NewAuthService(&credentialStoreStub{user: knownUser}, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		revoked := now.Add(-time.Minute)
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}}
		svc := NewAuthService(&credentialStoreStub{user: knownUser}, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("treats a deleted account as logged out", func(t *testing.T) {
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", ExpiresAt: now.Add(time.Hour)}}
		svc := NewAuthService(&credentialStoreStub{}, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)

	t.Run("rotates the token and extends the expiry", func(t *testing.T) {
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", Token: "token-1", ExpiresAt: now.Add(time.Minute)}}
		svc := NewAuthService(nil, sessions, nil, func() string { return "token-2" }, func() time.Time { return now }, time.Hour, nil)

		refreshed, err := svc.RefreshSession(context.Background(), "token-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if refreshed.Token != "token-2" {
			t.Fatalf("expected rotated token, got %q", refreshed.Token)
		}
		if !refreshed.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Fatalf("expected extended expiry, got %v", refreshed.ExpiresAt)
		}
		if sessions.updated.Token != "token-2" {
			t.Fatalf("expected rotation to be persisted, got %+v", sessions.updated)
		}
	})

	t.Run("refuses to refresh an expired session", func(t *testing.T) {
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", ExpiresAt: now.Add(-time.Minute)}}
		svc := NewAuthService(nil, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		_, err := svc.RefreshSession(context.Background(), "token-1")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)

	t.Run("stamps the revocation time", func(t *testing.T) {
		sessions := &authSessionRepoStub{session: AuthSession{ID: "s-1", UserID: "user-1", Token: "token-1"}}
		svc := NewAuthService(nil, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		if err := svc.RevokeSession(context.Background(), "token-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !sessions.revokedAt.Equal(now) {
			t.Fatalf("expected revocation at injected clock time, got %v", sessions.revokedAt)
		}
	})

	t.Run("maps an unknown token to ErrInvalidCredentials", func(t *testing.T) {
		sessions := &authSessionRepoStub{revokeErr: ErrNotFound}
		svc := NewAuthService(nil, sessions, nil, nil, nil, 0, nil)

		err := svc.RevokeSession(context.Background(), "ghost")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_StorageSentinels(t *testing.T) {
	knownUser := User{ID: "user-1", Name: "Thandi M", Email: "thandi.m@tut.ac.za", Role: RoleTutor}

	t.Run("unknown email from storage maps to ErrInvalidCredentials", func(t *testing.T) {
		store := &credentialStoreStub{credsErr: persistence.ErrNotFound}
		svc := NewAuthService(store, &authSessionRepoStub{}, passVerifier, nil, nil, 0, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{Email: "ghost@tut.ac.za", Password: "Welcome123!"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown token from storage maps to ErrInvalidCredentials", func(t *testing.T) {
		sessions := &authSessionRepoStub{getErr: persistence.ErrNotFound}
		svc := NewAuthService(&credentialStoreStub{user: knownUser}, sessions, nil, nil, nil, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "token-ghost")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("deleted account from storage maps to ErrInvalidCredentials", func(t *testing.T) {
		now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)
		sessions := &authSessionRepoStub{session: AuthSession{
			ID: "s-1", UserID: "user-1", Token: "token-1", ExpiresAt: now.Add(time.Hour),
		}}
		store := &credentialStoreStub{userErr: persistence.ErrNotFound}
		svc := NewAuthService(store, sessions, nil, nil, func() time.Time { return now }, 0, nil)

		_, err := svc.ValidateSession(context.Background(), "token-1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("refresh of an unknown token from storage maps to ErrInvalidCredentials", func(t *testing.T) {
		sessions := &authSessionRepoStub{getErr: persistence.ErrNotFound}
		svc := NewAuthService(nil, sessions, nil, nil, nil, 0, nil)

		_, err := svc.RefreshSession(context.Background(), "token-ghost")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rotation losing the session maps to ErrInvalidCredentials", func(t *testing.T) {
		now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)
		sessions := &authSessionRepoStub{
			session:   AuthSession{ID: "s-1", UserID: "user-1", Token: "token-1", ExpiresAt: now.Add(time.Hour)},
			updateErr: persistence.ErrNotFound,
		}
		svc := NewAuthService(nil, sessions, nil, func() string { return "token-2" }, func() time.Time { return now }, 0, nil)

		_, err := svc.RefreshSession(context.Background(), "token-1")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("revoking an unknown token from storage maps to ErrInvalidCredentials", func(t *testing.T) {
		sessions := &authSessionRepoStub{revokeErr: persistence.ErrNotFound}
		svc := NewAuthService(nil, sessions, nil, nil, nil, 0, nil)

		err := svc.RevokeSession(context.Background(), "token-ghost")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
