package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"serenecare/internal/domain/entity"
	"serenecare/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AvailabilityUsecase owns the per-doctor, per-date slot sets.
type AvailabilityUsecase interface {
	Create(ctx context.Context, doctorID uuid.UUID, date time.Time, slotLabels, heldLabels []string) (*entity.Availability, error)
	List(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.Availability, error)
	Find(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.Availability, error)
	Delete(ctx context.Context, id, doctorID uuid.UUID) (*entity.Availability, error)
	MarkSlotBooked(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error)
	ReleaseSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error)
}

type availabilityUsecase struct {
	log              *logrus.Logger
	availabilityRepo repository.AvailabilityRepository
}

func NewAvailabilityUsecase(log *logrus.Logger, availabilityRepo repository.AvailabilityRepository) AvailabilityUsecase {
	return &availabilityUsecase{
		log:              log,
		availabilityRepo: availabilityRepo,
	}
}

// Create stores a new availability. Slots named in heldLabels start booked,
// every other slot starts unbooked.
func (u *availabilityUsecase) Create(ctx context.Context, doctorID uuid.UUID, date time.Time, slotLabels, heldLabels []string) (*entity.Availability, error) {
	labels, err := normalizeSlotLabels(slotLabels)
	if err != nil {
		return nil, err
	}

	held := make(map[string]struct{}, len(heldLabels))
	for _, label := range heldLabels {
		held[strings.TrimSpace(label)] = struct{}{}
	}

	slots := make([]entity.AvailabilitySlot, len(labels))
	for i, label := range labels {
		_, booked := held[label]
		slots[i] = entity.AvailabilitySlot{Label: label, Position: i, IsBooked: booked}
	}

	availability := &entity.Availability{
		DoctorID:  doctorID,
		Date:      entity.NormalizeDate(date),
		TimeSlots: slots,
	}

	if err := u.availabilityRepo.Create(ctx, availability); err != nil {
		if errors.Is(err, repository.ErrDuplicateAvailability) {
			return nil, fmt.Errorf("%w: availability for %s already exists", ErrConflict, availability.Date.Format(entity.DateLayout))
		}
		u.log.Warnf("Failed to create availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return availability, nil
}

func (u *availabilityUsecase) List(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.Availability, error) {
	availabilities, err := u.availabilityRepo.List(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list availability: %+v", err)
		return nil, err
	}
	return availabilities, nil
}

// Find returns nil, nil when the doctor has nothing on that date.
func (u *availabilityUsecase) Find(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.Availability, error) {
	availability, err := u.availabilityRepo.FindByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to find availability for doctor %s on %s: %+v", doctorID, date.Format(entity.DateLayout), err)
		return nil, err
	}
	return availability, nil
}

// Delete removes the record if doctorID owns it. A record that does not exist
// at all is a no-op and returns nil, nil; one owned by another doctor is
// ErrNotFound.
func (u *availabilityUsecase) Delete(ctx context.Context, id, doctorID uuid.UUID) (*entity.Availability, error) {
	existing, err := u.availabilityRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find availability %s: %+v", id, err)
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if existing.DoctorID != doctorID {
		return nil, fmt.Errorf("%w: availability %s", ErrNotFound, id)
	}

	affected, err := u.availabilityRepo.DeleteOwned(ctx, id, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete availability %s: %+v", id, err)
		return nil, err
	}
	if affected == 0 {
		// Removed concurrently by the owner.
		return nil, nil
	}

	return existing, nil
}

func (u *availabilityUsecase) MarkSlotBooked(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	ok, err := u.availabilityRepo.MarkSlotBooked(ctx, doctorID, entity.NormalizeDate(date), label)
	if err != nil {
		u.log.Warnf("Failed to book slot %s for doctor %s: %+v", label, doctorID, err)
		return false, err
	}
	return ok, nil
}

func (u *availabilityUsecase) ReleaseSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	ok, err := u.availabilityRepo.ReleaseSlot(ctx, doctorID, entity.NormalizeDate(date), label)
	if err != nil {
		u.log.Warnf("Failed to release slot %s for doctor %s: %+v", label, doctorID, err)
		return false, err
	}
	return ok, nil
}

// normalizeSlotLabels trims labels and rejects empty, blank or repeated ones.
func normalizeSlotLabels(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one time slot is required", ErrValidation)
	}

	labels := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		label := strings.TrimSpace(r)
		if label == "" {
			return nil, fmt.Errorf("%w: time slot labels must not be blank", ErrValidation)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate time slot %q", ErrValidation, label)
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels, nil
}
