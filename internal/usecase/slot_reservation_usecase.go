package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"serenecare/internal/domain/entity"
	"serenecare/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const slotLockReleaseTimeout = 2 * time.Second

// Reservation is the handle of one booked slot. Appointments reference the
// slot by this (doctor, date, time) triple.
type Reservation struct {
	DoctorID uuid.UUID
	Date     time.Time
	Time     string
}

// SlotReservationUsecase guarantees at most one successful reservation per
// (doctor, date, time) no matter how many callers race for it.
type SlotReservationUsecase interface {
	Reserve(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (*Reservation, error)
	Release(ctx context.Context, reservation *Reservation) error
}

type slotReservationUsecase struct {
	log          *logrus.Logger
	availability AvailabilityUsecase
	locker       service.SlotLocker
}

// NewSlotReservationUsecase builds the reservation engine. locker may be nil,
// in which case only the storage compare-and-set guards the slot.
func NewSlotReservationUsecase(log *logrus.Logger, availability AvailabilityUsecase, locker service.SlotLocker) SlotReservationUsecase {
	return &slotReservationUsecase{
		log:          log,
		availability: availability,
		locker:       locker,
	}
}

// Reserve books one slot.
//
// Flow:
// 1. Redis lock on the slot key (fast reject for concurrent callers)
// 2. Verify the slot exists and is unbooked
// 3. Conditional update unbooked -> booked; zero rows means we lost the race
func (u *slotReservationUsecase) Reserve(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (*Reservation, error) {
	date = entity.NormalizeDate(date)
	day := date.Format(entity.DateLayout)

	// Step 1: fast path lock
	if u.locker != nil {
		key := service.SlotLockKey(doctorID, date, label)
		token, err := u.locker.Acquire(ctx, key)
		switch {
		case errors.Is(err, service.ErrSlotLocked):
			return nil, fmt.Errorf("%w: %s on %s is being booked", ErrSlotUnavailable, label, day)
		case err != nil:
			u.log.Warnf("Failed to acquire slot lock, relying on storage only: %+v", err)
		default:
			defer u.unlock(key, token)
		}
	}

	// Step 2: the slot must exist and be free
	availability, err := u.availability.Find(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if availability == nil {
		return nil, fmt.Errorf("%w: doctor has no availability on %s", ErrSlotUnavailable, day)
	}
	slot := availability.Slot(label)
	if slot == nil {
		return nil, fmt.Errorf("%w: %s is not offered on %s", ErrSlotUnavailable, label, day)
	}
	if slot.IsBooked {
		return nil, fmt.Errorf("%w: %s on %s is already booked", ErrSlotUnavailable, label, day)
	}

	// Step 3: atomic compare-and-set
	booked, err := u.availability.MarkSlotBooked(ctx, doctorID, date, label)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, fmt.Errorf("%w: %s on %s was just taken", ErrSlotUnavailable, label, day)
	}

	return &Reservation{DoctorID: doctorID, Date: date, Time: label}, nil
}

// Release makes a reserved slot bookable again. Releasing a slot that is
// already free or no longer exists is not an error.
func (u *slotReservationUsecase) Release(ctx context.Context, reservation *Reservation) error {
	if reservation == nil {
		return nil
	}

	released, err := u.availability.ReleaseSlot(ctx, reservation.DoctorID, reservation.Date, reservation.Time)
	if err != nil {
		return err
	}
	if !released {
		u.log.Warnf("Slot %s on %s for doctor %s was not booked at release time",
			reservation.Time, reservation.Date.Format(entity.DateLayout), reservation.DoctorID)
	}
	return nil
}

func (u *slotReservationUsecase) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), slotLockReleaseTimeout)
	defer cancel()

	if err := u.locker.Release(ctx, key, token); err != nil {
		u.log.Warnf("Failed to release slot lock %s: %+v", key, err)
	}
}
