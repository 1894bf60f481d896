package repository

import (
	"context"
	"time"

	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindByIDAndDoctor(ctx context.Context, id, doctorID uuid.UUID) (*entity.Appointment, error)
	// FindByPatientID and FindByDoctorID order by created_at descending.
	FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)
	// DecidePending sets status and notes only while the appointment is
	// pending and owned by doctorID. Returns affected rows: 1 = decided,
	// 0 = missing, foreign or already decided.
	DecidePending(ctx context.Context, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (int64, error)
	// FindHeldLabels returns the distinct time labels on doctorID's date
	// referenced by appointments in one of the given statuses.
	FindHeldLabels(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []entity.AppointmentStatus) ([]string, error)
}
