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

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *appointmentRepository) FindByIDAndDoctor(ctx context.Context, id, doctorID uuid.UUID) (*entity.Appointment, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID))
}

func (r *appointmentRepository) first(query *gorm.DB) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := query.First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// DecidePending atomically decides an appointment ONLY if it is still pending.
// Returns affected rows: 1 = success, 0 = not found / not owned / already decided.
func (r *appointmentRepository) DecidePending(ctx context.Context, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND doctor_id = ? AND status = ?", id, doctorID, entity.AppointmentStatusPending).
		Updates(map[string]interface{}{
			"status": status,
			"notes":  notes,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) FindHeldLabels(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []entity.AppointmentStatus) ([]string, error) {
	var labels []string
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status IN ?", doctorID, entity.NormalizeDate(date), statuses).
		Distinct().
		Pluck("time", &labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}
