package repository

import (
	"context"
	"errors"
	"time"

	"serenecare/internal/domain/entity"
	domainRepo "serenecare/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) domainRepo.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func orderedSlots(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *availabilityRepository) Create(ctx context.Context, availability *entity.Availability) error {
	err := r.db.WithContext(ctx).Omit("Doctor").Create(availability).Error
	if isDuplicateKeyError(err, "doctor_date") {
		return domainRepo.ErrDuplicateAvailability
	}
	return err
}

func (r *availabilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Availability, error) {
	var availability entity.Availability
	err := r.db.WithContext(ctx).Preload("TimeSlots", orderedSlots).Where("id = ?", id).First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.Availability, error) {
	var availability entity.Availability
	err := r.db.WithContext(ctx).Preload("TimeSlots", orderedSlots).
		Where("doctor_id = ? AND date = ?", doctorID, entity.NormalizeDate(date)).
		First(&availability).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &availability, nil
}

func (r *availabilityRepository) List(ctx context.Context, filter entity.AvailabilityFilter) ([]entity.Availability, error) {
	var availabilities []entity.Availability
	query := r.db.WithContext(ctx).Preload("TimeSlots", orderedSlots)

	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if !filter.FromDate.IsZero() {
		query = query.Where("date >= ?", entity.NormalizeDate(filter.FromDate))
	}
	if !filter.OnDate.IsZero() {
		query = query.Where("date = ?", entity.NormalizeDate(filter.OnDate))
	}

	err := query.Order("date ASC, created_at ASC").Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (r *availabilityRepository) DeleteOwned(ctx context.Context, id, doctorID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Delete(&entity.Availability{})
	return result.RowsAffected, result.Error
}

// MarkSlotBooked atomically books a slot ONLY if it is currently unbooked.
// Returns true = booked by this call, false = missing or already booked
// (prevents double-booking race).
func (r *availabilityRepository) MarkSlotBooked(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	return r.flipSlot(ctx, doctorID, date, label, false, true)
}

// ReleaseSlot atomically unbooks a slot ONLY if it is currently booked.
func (r *availabilityRepository) ReleaseSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	return r.flipSlot(ctx, doctorID, date, label, true, false)
}

func (r *availabilityRepository) flipSlot(ctx context.Context, doctorID uuid.UUID, date time.Time, label string, from, to bool) (bool, error) {
	db := r.db.WithContext(ctx)
	owner := db.Model(&entity.Availability{}).
		Select("id").
		Where("doctor_id = ? AND date = ?", doctorID, entity.NormalizeDate(date))

	result := db.Model(&entity.AvailabilitySlot{}).
		Where("availability_id IN (?) AND label = ? AND is_booked = ?", owner, label, from).
		Update("is_booked", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
