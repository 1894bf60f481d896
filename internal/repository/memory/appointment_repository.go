package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"serenecare/internal/domain/entity"
	domainRepo "serenecare/internal/domain/repository"

	"github.com/google/uuid"
)

type appointmentRepository struct {
	store *Store
}

func NewAppointmentRepository(store *Store) domainRepo.AppointmentRepository {
	return &appointmentRepository{store: store}
}

func (r *appointmentRepository) Create(_ context.Context, appointment *entity.Appointment) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = entity.AppointmentStatusPending
	}
	appointment.Date = entity.NormalizeDate(appointment.Date)
	appointment.CreatedAt = s.clock(s.lastAppointmentAt)
	appointment.UpdatedAt = appointment.CreatedAt
	s.lastAppointmentAt = appointment.CreatedAt

	s.appointments[appointment.ID] = *appointment
	return nil
}

func (r *appointmentRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *appointmentRepository) FindByIDAndDoctor(_ context.Context, id, doctorID uuid.UUID) (*entity.Appointment, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.DoctorID != doctorID {
		return nil, nil
	}
	return &a, nil
}

func (r *appointmentRepository) FindByPatientID(_ context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	return r.newestFirst(func(a entity.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *appointmentRepository) FindByDoctorID(_ context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	return r.newestFirst(func(a entity.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *appointmentRepository) newestFirst(match func(entity.Appointment) bool) []entity.Appointment {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entity.Appointment, 0)
	for _, a := range s.appointments {
		if match(a) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (r *appointmentRepository) DecidePending(_ context.Context, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok || a.DoctorID != doctorID || !a.IsPending() {
		return 0, nil
	}
	a.Status = status
	a.Notes = notes
	a.UpdatedAt = s.now()
	s.appointments[id] = a
	return 1, nil
}

func (r *appointmentRepository) FindHeldLabels(_ context.Context, doctorID uuid.UUID, date time.Time, statuses []entity.AppointmentStatus) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	date = entity.NormalizeDate(date)
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, a := range s.appointments {
		if a.DoctorID != doctorID || !a.Date.Equal(date) || !slices.Contains(statuses, a.Status) {
			continue
		}
		if _, dup := seen[a.Time]; dup {
			continue
		}
		seen[a.Time] = struct{}{}
		labels = append(labels, a.Time)
	}
	sort.Strings(labels)
	return labels, nil
}
