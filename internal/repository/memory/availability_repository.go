package memory

import (
	"context"
	"sort"
	"time"

	"serenecare/internal/domain/entity"
	domainRepo "serenecare/internal/domain/repository"

	"github.com/google/uuid"
)

type availabilityRepository struct {
	store *Store
}

func NewAvailabilityRepository(store *Store) domainRepo.AvailabilityRepository {
	return &availabilityRepository{store: store}
}

func (r *availabilityRepository) Create(_ context.Context, availability *entity.Availability) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	date := entity.NormalizeDate(availability.Date)
	for _, existing := range s.availabilities {
		if existing.DoctorID == availability.DoctorID && existing.Date.Equal(date) {
			return domainRepo.ErrDuplicateAvailability
		}
	}

	if availability.ID == uuid.Nil {
		availability.ID = uuid.New()
	}
	availability.Date = date
	availability.CreatedAt = s.now()
	for i := range availability.TimeSlots {
		availability.TimeSlots[i].ID = int64(i + 1)
		availability.TimeSlots[i].AvailabilityID = availability.ID
		availability.TimeSlots[i].Position = i
	}

	s.availabilities[availability.ID] = copyAvailability(*availability)
	return nil
}

func (r *availabilityRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Availability, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.availabilities[id]
	if !ok {
		return nil, nil
	}
	found := copyAvailability(a)
	return &found, nil
}

func (r *availabilityRepository) FindByDoctorAndDate(_ context.Context, doctorID uuid.UUID, date time.Time) (*entity.Availability, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.keyOf(doctorID, date)
	if key == uuid.Nil {
		return nil, nil
	}
	found := copyAvailability(s.availabilities[key])
	return &found, nil
}

func (r *availabilityRepository) List(_ context.Context, filter entity.AvailabilityFilter) ([]entity.Availability, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	from := entity.NormalizeDate(filter.FromDate)
	on := entity.NormalizeDate(filter.OnDate)

	result := make([]entity.Availability, 0)
	for _, a := range s.availabilities {
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if !filter.FromDate.IsZero() && a.Date.Before(from) {
			continue
		}
		if !filter.OnDate.IsZero() && !a.Date.Equal(on) {
			continue
		}
		result = append(result, copyAvailability(a))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *availabilityRepository) DeleteOwned(_ context.Context, id, doctorID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.availabilities[id]
	if !ok || a.DoctorID != doctorID {
		return 0, nil
	}
	delete(s.availabilities, id)
	return 1, nil
}

func (r *availabilityRepository) MarkSlotBooked(_ context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	return r.flipSlot(doctorID, date, label, false, true), nil
}

func (r *availabilityRepository) ReleaseSlot(_ context.Context, doctorID uuid.UUID, date time.Time, label string) (bool, error) {
	return r.flipSlot(doctorID, date, label, true, false), nil
}

// flipSlot is the compare-and-set on one slot's booked flag.
func (r *availabilityRepository) flipSlot(doctorID uuid.UUID, date time.Time, label string, from, to bool) bool {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := r.keyOf(doctorID, date)
	if key == uuid.Nil {
		return false
	}
	a := s.availabilities[key]
	slot := a.Slot(label)
	if slot == nil || slot.IsBooked != from {
		return false
	}
	slot.IsBooked = to
	s.availabilities[key] = a
	return true
}

// keyOf must be called with the store lock held.
func (r *availabilityRepository) keyOf(doctorID uuid.UUID, date time.Time) uuid.UUID {
	day := entity.NormalizeDate(date)
	for id, a := range r.store.availabilities {
		if a.DoctorID == doctorID && a.Date.Equal(day) {
			return id
		}
	}
	return uuid.Nil
}
