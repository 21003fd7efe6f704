package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

type shiftRepoStub struct {
	createErr error
	created   []Shift

	list    []Shift
	listErr error

	tutorShifts []Shift
	tutorErr    error

	deleteErr error
	deletedID string
}

func (r *shiftRepoStub) CreateShift(ctx context.Context, shift Shift) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, shift)
	return nil
}

func (r *shiftRepoStub) ListShifts(ctx context.Context) ([]Shift, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Shift, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *shiftRepoStub) ListShiftsForTutor(ctx context.Context, tutorID string) ([]Shift, error) {
	if r.tutorErr != nil {
		return nil, r.tutorErr
	}
	out := make([]Shift, len(r.tutorShifts))
	copy(out, r.tutorShifts)
	return out, nil
}

func (r *shiftRepoStub) DeleteShift(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func TestShiftService_AssignShift(t *testing.T) {
	admin := Principal{UserID: "admin-1", DisplayName: "Admin", IsAdmin: true}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewShiftService(&shiftRepoStub{}, nil, nil, nil, nil)

		_, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: Principal{UserID: "tutor-1"},
			TutorID:   "tutor-1",
			Day:       "Monday",
			Time:      "16:00 - 19:00",
			LabName:   "Lab 10 - 138",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates slot attributes", func(t *testing.T) {
		svc := NewShiftService(&shiftRepoStub{}, nil, nil, nil, nil)

		_, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: admin,
			TutorID:   "",
			Day:       "Funday",
			Time:      "08:00 - 09:00",
			LabName:   "Lab 99",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"tutor_id", "day", "time", "lab_name"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects a slot that is already held and leaves the registry untouched", func(t *testing.T) {
		repo := &shiftRepoStub{list: []Shift{
			{ID: "shift-1", TutorID: "tutor-1", Day: "Monday", Time: "16:00 - 19:00", LabName: "Lab 10 - 138"},
		}}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		_, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: admin,
			TutorID:   "tutor-2",
			Day:       "monday",
			Time:      "16:00 - 19:00",
			LabName:   "Lab 10 - 138",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if len(repo.created) != 0 {
			t.Fatalf("expected no new shift to be persisted, got %d", len(repo.created))
		}
	})

	t.Run("allows the same slot in a different lab", func(t *testing.T) {
		repo := &shiftRepoStub{list: []Shift{
			{ID: "shift-1", TutorID: "tutor-1", Day: "Monday", Time: "16:00 - 19:00", LabName: "Lab 10 - 138"},
		}}
		now := time.Date(2025, time.August, 4, 9, 0, 0, 0, time.UTC)
		svc := NewShiftService(repo, nil, func() string { return "shift-2" }, func() time.Time { return now }, nil)

		shift, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: admin,
			TutorID:   "tutor-2",
			Day:       "Monday",
			Time:      "16:00 - 19:00",
			LabName:   "Lab 10 - G10",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if shift.ID != "shift-2" {
			t.Fatalf("expected generated id, got %q", shift.ID)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one persisted shift, got %d", len(repo.created))
		}
		if !repo.created[0].CreatedAt.Equal(now) {
			t.Fatalf("expected timestamp from injected clock, got %v", repo.created[0].CreatedAt)
		}
	})

	t.Run("canonicalizes day casing before persisting", func(t *testing.T) {
		repo := &shiftRepoStub{}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		_, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: admin,
			TutorID:   "tutor-1",
			Day:       "  wednesday ",
			Time:      "19:00 - 22:00",
			LabName:   "Lab 10 - G06",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.created[0].Day != "Wednesday" {
			t.Fatalf("expected canonical day, got %q", repo.created[0].Day)
		}
	})

	t.Run("maps a lost create race to ErrAlreadyExists", func(t *testing.T) {
		repo := &shiftRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		_, err := svc.AssignShift(context.Background(), AssignShiftParams{
			Principal: admin,
			TutorID:   "tutor-1",
			Day:       "Friday",
			Time:      "18:00 - 20:00",
			LabName:   "Lab 10 - 138",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestShiftService_DeleteShift(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewShiftService(&shiftRepoStub{}, nil, nil, nil, nil)

		err := svc.DeleteShift(context.Background(), Principal{UserID: "tutor-1"}, "shift-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("treats an absent shift as a successful no-op", func(t *testing.T) {
		repo := &shiftRepoStub{deleteErr: persistence.ErrNotFound}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		if err := svc.DeleteShift(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "missing"); err != nil {
			t.Fatalf("expected nil for an absent shift, got %v", err)
		}
	})

	t.Run("deletes an existing shift", func(t *testing.T) {
		repo := &shiftRepoStub{}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		if err := svc.DeleteShift(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "shift-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "shift-1" {
			t.Fatalf("expected repository to receive the shift id, got %q", repo.deletedID)
		}
	})
}

func TestShiftService_ListShiftsForTutor(t *testing.T) {
	t.Run("tutors may view their own schedule", func(t *testing.T) {
		repo := &shiftRepoStub{tutorShifts: []Shift{{ID: "shift-1", TutorID: "tutor-1"}}}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		got, err := svc.ListShiftsForTutor(context.Background(), Principal{UserID: "tutor-1"}, "tutor-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected one shift, got %d", len(got))
		}
	})

	t.Run("tutors may not view another tutor's schedule", func(t *testing.T) {
		svc := NewShiftService(&shiftRepoStub{}, nil, nil, nil, nil)

		_, err := svc.ListShiftsForTutor(context.Background(), Principal{UserID: "tutor-1"}, "tutor-2")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("administrators may view anyone's schedule", func(t *testing.T) {
		repo := &shiftRepoStub{tutorShifts: []Shift{{ID: "shift-1", TutorID: "tutor-2"}}}
		svc := NewShiftService(repo, nil, nil, nil, nil)

		got, err := svc.ListShiftsForTutor(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "tutor-2")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected one shift, got %d", len(got))
		}
	})
}

func TestShiftService_ListShifts(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewShiftService(&shiftRepoStub{}, nil, nil, nil, nil)

		_, err := svc.ListShifts(context.Background(), Principal{UserID: "tutor-1"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
