package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/persistence"
)

func TestShiftRepository_UniqueSlotIndex(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewShiftRepository(pool)

	first := persistence.Shift{
		ID:        "s1",
		TutorID:   "t1",
		Day:       "Monday",
		Time:      "16:00 - 19:00",
		LabName:   "Lab 10 - 138",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateShift(ctx, first); err != nil {
		t.Fatalf("CreateShift failed: %v", err)
	}

	clash := first
	clash.ID = "s2"
	clash.TutorID = "t2"
	if err := repo.CreateShift(ctx, clash); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for occupied slot, got %v", err)
	}

	shifts, err := repo.ListShifts(ctx)
	if err != nil {
		t.Fatalf("ListShifts failed: %v", err)
	}
	if len(shifts) != 1 {
		t.Fatalf("registry cardinality changed by rejected assignment: got %d shifts", len(shifts))
	}
}

func TestShiftRepository_DeleteIsIdempotent(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewShiftRepository(pool)

	if err := repo.DeleteShift(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting an absent shift should be a no-op, got %v", err)
	}
}

func TestShiftRepository_ListShiftsForTutor(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewShiftRepository(pool)

	now := time.Now().UTC()
	for _, shift := range []persistence.Shift{
		{ID: "s1", TutorID: "t1", Day: "Monday", Time: "16:00 - 19:00", LabName: "Lab 10 - 138", CreatedAt: now},
		{ID: "s2", TutorID: "t1", Day: "Tuesday", Time: "19:00 - 22:00", LabName: "Lab 10 - G10", CreatedAt: now.Add(time.Second)},
		{ID: "s3", TutorID: "t2", Day: "Monday", Time: "18:00 - 20:00", LabName: "Lab 10 - G06", CreatedAt: now.Add(2 * time.Second)},
	} {
		if err := repo.CreateShift(ctx, shift); err != nil {
			t.Fatalf("CreateShift %s failed: %v", shift.ID, err)
		}
	}

	shifts, err := repo.ListShiftsForTutor(ctx, "t1")
	if err != nil {
		t.Fatalf("ListShiftsForTutor failed: %v", err)
	}
	if len(shifts) != 2 {
		t.Fatalf("got %d shifts for t1, want 2", len(shifts))
	}
	if shifts[0].ID != "s1" || shifts[1].ID != "s2" {
		t.Fatalf("unexpected order: %s, %s", shifts[0].ID, shifts[1].ID)
	}
}
