package usecase

import (
	"context"
	"errors"
	"testing"

	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

func TestCreateAvailabilityValidation(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{"nil slots", nil},
		{"empty slots", []string{}},
		{"blank label", []string{"09:00 AM", "   "}},
		{"duplicate label", []string{"09:00 AM", "10:00 AM", "09:00 AM"}},
		{"duplicate after trimming", []string{"09:00 AM", " 09:00 AM "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, fixtureOptions{})
			doctorID := uuid.New()

			_, err := f.availability.Create(context.Background(), doctorID, day(2025, 6, 1), tt.labels, nil)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}

			stored, _ := f.avRepo.FindByDoctorAndDate(context.Background(), doctorID, day(2025, 6, 1))
			if stored != nil {
				t.Fatal("nothing should be stored on validation failure")
			}
		})
	}
}

func TestCreateAvailabilityTrimsAndStartsUnbooked(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	doctorID := uuid.New()

	created, err := f.availability.Create(context.Background(), doctorID, day(2025, 6, 1), []string{" 09:00 AM", "10:00 AM "}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(created.TimeSlots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(created.TimeSlots))
	}
	for i, want := range []string{"09:00 AM", "10:00 AM"} {
		if created.TimeSlots[i].Label != want || created.TimeSlots[i].IsBooked {
			t.Errorf("slot %d = %+v, want unbooked %q", i, created.TimeSlots[i], want)
		}
	}
}

func TestCreateAvailabilityConflict(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	doctorID := uuid.New()

	if _, err := f.availability.Create(ctx, doctorID, day(2025, 6, 1), []string{"09:00 AM"}, nil); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.availability.Create(ctx, doctorID, day(2025, 6, 1), []string{"11:00 AM"}, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteAvailabilityOwnership(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	created, err := f.availability.Create(ctx, owner, day(2025, 6, 1), []string{"09:00 AM"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.availability.Delete(ctx, created.ID, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if still, _ := f.avRepo.FindByID(ctx, created.ID); still == nil {
		t.Fatal("foreign delete must not remove the record")
	}

	removed, err := f.availability.Delete(ctx, created.ID, owner)
	if err != nil || removed == nil {
		t.Fatalf("owner delete: removed=%v err=%v", removed, err)
	}

	removed, err = f.availability.Delete(ctx, created.ID, owner)
	if err != nil || removed != nil {
		t.Fatalf("repeat delete should be a no-op, got removed=%v err=%v", removed, err)
	}
}

func TestListAvailabilityByDoctorIncludesPastDates(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	ctx := context.Background()
	doctorID := uuid.New()

	for _, d := range []int{10, 1} {
		if _, err := f.availability.Create(ctx, doctorID, day(2025, 4, d), []string{"09:00 AM"}, nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := f.availability.List(ctx, entity.ByDoctor(doctorID))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || !got[0].Date.Equal(day(2025, 4, 1)) {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestCreateAvailabilityStartsHeldSlotsBooked(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	doctorID := f.addUser(t, entity.RoleDoctor, "Dr. Held")

	created, err := f.availability.Create(context.Background(), doctorID, day(2025, 6, 1),
		[]string{"09:00 AM", "10:00 AM"}, []string{" 10:00 AM", "03:00 PM"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Slot("09:00 AM").IsBooked {
		t.Error("09:00 AM should start unbooked")
	}
	if !created.Slot("10:00 AM").IsBooked {
		t.Error("10:00 AM is held by an appointment and should start booked")
	}
	if created.Slot("03:00 PM") != nil {
		t.Error("held labels must not add slots")
	}
}
