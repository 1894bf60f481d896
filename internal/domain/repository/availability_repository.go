package repository

import (
	"context"
	"errors"
	"time"

	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrDuplicateAvailability is returned by Create when the doctor already has
// a record for that date.
var ErrDuplicateAvailability = errors.New("availability already exists for doctor and date")

type AvailabilityRepository interface {
	// Create stores availability and its slots. Returns ErrDuplicateAvailability
	// when (DoctorID, Date) is taken.
	Create(ctx context.Context, availability *entity.Availability) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Availability, error)
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.Availability, error)
	List(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.Availability, error)
	// DeleteOwned removes the record only if doctorID owns it.
	DeleteOwned(ctx context.Context, id, doctorID uuid.UUID) (int64, error)
	// MarkSlotBooked flips one slot from unbooked to booked in a single
	// conditional update. Returns false when no unbooked slot matched.
	MarkSlotBooked(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error)
	// ReleaseSlot is the inverse conditional update, booked to unbooked.
	ReleaseSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error)
}
