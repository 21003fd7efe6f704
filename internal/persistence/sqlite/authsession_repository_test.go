package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
	"github.com/TADI-I/TUT-Labs/internal/testfixtures"
)

func createTestAccount(t *testing.T, harness *testfixtures.SQLiteHarness) persistence.User {
	t.Helper()

	tutor := testfixtures.NewTutor()
	if err := harness.Users.CreateUser(context.Background(), tutor); err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return tutor
}

func newAuthSession(userID, token string, issuedAt time.Time) persistence.AuthSession {
	return persistence.AuthSession{
		ID:        fmt.Sprintf("session-for-%s", token),
		UserID:    userID,
		Token:     token,
		ExpiresAt: issuedAt.Add(24 * time.Hour),
		CreatedAt: issuedAt,
		UpdatedAt: issuedAt,
	}
}

func TestCreateAndGetAuthSession(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)
	issuedAt := testfixtures.ReferenceTime()

	created, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-abc", issuedAt))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	stored, err := harness.AuthSessions.GetSession(ctx, "token-abc")
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if stored.ID != created.ID || stored.UserID != tutor.ID {
		t.Fatalf("unexpected stored session: %+v", stored)
	}
	if !stored.ExpiresAt.Equal(issuedAt.Add(24 * time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", issuedAt.Add(24*time.Hour), stored.ExpiresAt)
	}
	if stored.RevokedAt != nil {
		t.Fatalf("expected fresh session to carry no revocation, got %v", *stored.RevokedAt)
	}
}

func TestCreateAuthSessionValidation(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)
	issuedAt := testfixtures.ReferenceTime()

	t.Run("missing id is rejected", func(t *testing.T) {
		session := newAuthSession(tutor.ID, "token-no-id", issuedAt)
		session.ID = ""
		_, err := harness.AuthSessions.CreateSession(ctx, session)
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected constraint violation, got %v", err)
		}
	})

	t.Run("duplicate token is rejected", func(t *testing.T) {
		if _, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-dup", issuedAt)); err != nil {
			t.Fatalf("failed to create first session: %v", err)
		}
		second := newAuthSession(tutor.ID, "token-dup", issuedAt)
		second.ID = "session-other"
		_, err := harness.AuthSessions.CreateSession(ctx, second)
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected duplicate error, got %v", err)
		}
	})

	t.Run("unknown user is rejected", func(t *testing.T) {
		_, err := harness.AuthSessions.CreateSession(ctx, newAuthSession("user-missing", "token-orphan", issuedAt))
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected constraint violation, got %v", err)
		}
	})
}

func TestUpdateAuthSessionRotatesToken(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)
	issuedAt := testfixtures.ReferenceTime()

	created, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-old", issuedAt))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	created.Token = "token-new"
	created.ExpiresAt = issuedAt.Add(48 * time.Hour)
	created.UpdatedAt = issuedAt.Add(time.Hour)
	if _, err := harness.AuthSessions.UpdateSession(ctx, created); err != nil {
		t.Fatalf("failed to update session: %v", err)
	}

	if _, err := harness.AuthSessions.GetSession(ctx, "token-old"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected old token to be gone, got %v", err)
	}
	stored, err := harness.AuthSessions.GetSession(ctx, "token-new")
	if err != nil {
		t.Fatalf("failed to get rotated session: %v", err)
	}
	if !stored.ExpiresAt.Equal(issuedAt.Add(48 * time.Hour)) {
		t.Fatalf("expected refreshed expiry, got %v", stored.ExpiresAt)
	}

	missing := newAuthSession(tutor.ID, "token-ghost", issuedAt)
	missing.ID = "session-ghost"
	if _, err := harness.AuthSessions.UpdateSession(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected not found for unknown session, got %v", err)
	}
}

func TestRevokeAuthSession(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)
	issuedAt := testfixtures.ReferenceTime()
	revokedAt := issuedAt.Add(2 * time.Hour)

	if _, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-live", issuedAt)); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	revoked, err := harness.AuthSessions.RevokeSession(ctx, "token-live", revokedAt)
	if err != nil {
		t.Fatalf("failed to revoke session: %v", err)
	}
	if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(revokedAt) {
		t.Fatalf("expected revocation stamp %v, got %+v", revokedAt, revoked.RevokedAt)
	}

	if _, err := harness.AuthSessions.RevokeSession(ctx, "token-live", revokedAt.Add(time.Minute)); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected second revocation to report not found, got %v", err)
	}
	if _, err := harness.AuthSessions.RevokeSession(ctx, "token-missing", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected not found for unknown token, got %v", err)
	}
}

func TestDeleteExpiredAuthSessions(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)
	issuedAt := testfixtures.ReferenceTime()

	expired := newAuthSession(tutor.ID, "token-expired", issuedAt.Add(-48*time.Hour))
	if _, err := harness.AuthSessions.CreateSession(ctx, expired); err != nil {
		t.Fatalf("failed to create expired session: %v", err)
	}
	if _, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-live", issuedAt)); err != nil {
		t.Fatalf("failed to create live session: %v", err)
	}

	if err := harness.AuthSessions.DeleteExpiredSessions(ctx, issuedAt); err != nil {
		t.Fatalf("failed to delete expired sessions: %v", err)
	}

	if _, err := harness.AuthSessions.GetSession(ctx, "token-expired"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
	if _, err := harness.AuthSessions.GetSession(ctx, "token-live"); err != nil {
		t.Fatalf("expected live session to survive, got %v", err)
	}
}

func TestDeleteAccountCascadesSessions(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	tutor := createTestAccount(t, harness)

	if _, err := harness.AuthSessions.CreateSession(ctx, newAuthSession(tutor.ID, "token-cascade", testfixtures.ReferenceTime())); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := harness.Users.DeleteUser(ctx, tutor.ID); err != nil {
		t.Fatalf("failed to delete account: %v", err)
	}

	if _, err := harness.AuthSessions.GetSession(ctx, "token-cascade"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected sessions to be removed with the account, got %v", err)
	}
}
