package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

type statusRepoStub struct {
	upsertErr error
	upserted  []LabStatus

	getStatus LabStatus
	getErr    error
	getCalls  int
	statuses  []LabStatus
	statusErr error
}

func (r *statusRepoStub) UpsertStatus(ctx context.Context, status LabStatus) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upserted = append(r.upserted, status)
	return nil
}

func (r *statusRepoStub) GetStatus(ctx context.Context, labName string) (LabStatus, error) {
	r.getCalls++
	if r.getErr != nil {
		return LabStatus{}, r.getErr
	}
	if r.getStatus.LabName == "" {
		return LabStatus{}, persistence.ErrNotFound
	}
	return r.getStatus, nil
}

func (r *statusRepoStub) ListStatuses(ctx context.Context) ([]LabStatus, error) {
	if r.statusErr != nil {
		return nil, r.statusErr
	}
	return r.statuses, nil
}

type ledgerStub struct {
	openedLab string
	openedBy  Principal
	openErr   error

	closedLab string
	closedBy  Principal
	closeErr  error
}

func (l *ledgerStub) OpenSession(ctx context.Context, labName string, openedBy Principal, note string) (LabSession, error) {
	if l.openErr != nil {
		return LabSession{}, l.openErr
	}
	l.openedLab = labName
	l.openedBy = openedBy
	return LabSession{ID: "session-1", LabName: labName}, nil
}

func (l *ledgerStub) CloseSession(ctx context.Context, labName string, closedBy Principal, note string) (LabSession, error) {
	if l.closeErr != nil {
		return LabSession{}, l.closeErr
	}
	l.closedLab = labName
	l.closedBy = closedBy
	return LabSession{ID: "session-1", LabName: labName}, nil
}

func TestCanEdit(t *testing.T) {
	open := &LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}
	closed := &LabStatus{LabName: "Lab 10 - 138", IsOpen: false, UpdatedByID: "tutor-1"}

	tests := map[string]struct {
		principalID string
		isAdmin     bool
		status      *LabStatus
		expected    bool
	}{
		"no record yet":              {principalID: "tutor-2", status: nil, expected: true},
		"closed lab, anyone":        {principalID: "tutor-2", status: closed, expected: true},
		"open lab, opener":          {principalID: "tutor-1", status: open, expected: true},
		"open lab, admin":           {principalID: "admin-1", isAdmin: true, status: open, expected: true},
		"open lab, other tutor":     {principalID: "tutor-2", status: open, expected: false},
		"closed lab, admin":         {principalID: "admin-1", isAdmin: true, status: closed, expected: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := CanEdit(tc.principalID, tc.isAdmin, tc.status); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestLabStatusService_UpdateStatus(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewLabStatusService(&statusRepoStub{}, nil, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			LabName: "Lab 10 - 138",
			IsOpen:  true,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("requires a lab name", func(t *testing.T) {
		svc := NewLabStatusService(&statusRepoStub{}, nil, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1"},
			LabName:   "   ",
			IsOpen:    true,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("anyone may open an unset lab", func(t *testing.T) {
		repo := &statusRepoStub{}
		now := time.Date(2025, time.August, 4, 16, 0, 0, 0, time.UTC)
		svc := NewLabStatusService(repo, nil, func() time.Time { return now }, nil)

		status, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1", DisplayName: "Thandi M"},
			LabName:   "Lab 10 - 138",
			IsOpen:    true,
			Note:      "evening shift",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if status.UpdatedByID != "tutor-1" || status.UpdatedBy != "Thandi M" {
			t.Fatalf("expected updater attribution, got %+v", status)
		}
		if !status.Timestamp.Equal(now) {
			t.Fatalf("expected timestamp from injected clock, got %v", status.Timestamp)
		}
		if len(repo.upserted) != 1 {
			t.Fatalf("expected one upsert, got %d", len(repo.upserted))
		}
	})

	t.Run("a non-opener may not close an open lab", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}}
		svc := NewLabStatusService(repo, nil, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-2"},
			LabName:   "Lab 10 - 138",
			IsOpen:    false,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if len(repo.upserted) != 0 {
			t.Fatal("expected no upsert after a rejected edit")
		}
	})

	t.Run("an admin may close any open lab", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}}
		svc := NewLabStatusService(repo, nil, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "admin-1", IsAdmin: true},
			LabName:   "Lab 10 - 138",
			IsOpen:    false,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("an open transition appends to the ledger", func(t *testing.T) {
		repo := &statusRepoStub{}
		ledger := &ledgerStub{}
		svc := NewLabStatusService(repo, ledger, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1"},
			LabName:   "Lab 10 - 138",
			IsOpen:    true,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if ledger.openedLab != "Lab 10 - 138" {
			t.Fatalf("expected ledger open, got %q", ledger.openedLab)
		}
		if ledger.closedLab != "" {
			t.Fatalf("expected no ledger close, got %q", ledger.closedLab)
		}
	})

	t.Run("a close transition appends to the ledger", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}}
		ledger := &ledgerStub{}
		svc := NewLabStatusService(repo, ledger, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1"},
			LabName:   "Lab 10 - 138",
			IsOpen:    false,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if ledger.closedLab != "Lab 10 - 138" {
			t.Fatalf("expected ledger close, got %q", ledger.closedLab)
		}
	})

	t.Run("re-stating the current state leaves the ledger alone", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}}
		ledger := &ledgerStub{}
		svc := NewLabStatusService(repo, ledger, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1"},
			LabName:   "Lab 10 - 138",
			IsOpen:    true,
			Note:      "updated note",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if ledger.openedLab != "" || ledger.closedLab != "" {
			t.Fatalf("expected no ledger activity, got open=%q close=%q", ledger.openedLab, ledger.closedLab)
		}
	})

	t.Run("ledger failures do not fail the update", func(t *testing.T) {
		repo := &statusRepoStub{}
		ledger := &ledgerStub{openErr: errors.New("ledger down")}
		svc := NewLabStatusService(repo, ledger, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-1"},
			LabName:   "Lab 10 - 138",
			IsOpen:    true,
		})
		if err != nil {
			t.Fatalf("expected success despite ledger failure, got %v", err)
		}
	})
}

func TestLabStatusService_GetStatus(t *testing.T) {
	t.Run("returns ErrNotFound for an unknown lab", func(t *testing.T) {
		svc := NewLabStatusService(&statusRepoStub{}, nil, nil, nil)

		_, err := svc.GetStatus(context.Background(), "Lab 99")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("serves repeat reads from the cache", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: true, UpdatedByID: "tutor-1"}}
		svc := NewLabStatusService(repo, nil, nil, nil)

		for i := 0; i < 3; i++ {
			if _, err := svc.GetStatus(context.Background(), "Lab 10 - 138"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if repo.getCalls != 1 {
			t.Fatalf("expected a single store read, got %d", repo.getCalls)
		}
	})

	t.Run("an update invalidates the cached entry", func(t *testing.T) {
		repo := &statusRepoStub{getStatus: LabStatus{LabName: "Lab 10 - 138", IsOpen: false, UpdatedByID: "tutor-1"}}
		svc := NewLabStatusService(repo, nil, nil, nil)

		if _, err := svc.GetStatus(context.Background(), "Lab 10 - 138"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := svc.UpdateStatus(context.Background(), UpdateStatusParams{
			Principal: Principal{UserID: "tutor-2"},
			LabName:   "Lab 10 - 138",
			IsOpen:    true,
		}); err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}

		before := repo.getCalls
		if _, err := svc.GetStatus(context.Background(), "Lab 10 - 138"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.getCalls != before+1 {
			t.Fatalf("expected a fresh store read after invalidation, got %d calls", repo.getCalls)
		}
	})
}
