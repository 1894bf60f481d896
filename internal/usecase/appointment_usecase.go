package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"serenecare/internal/domain/entity"
	"serenecare/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AppointmentUsecase owns appointment records and their status machine:
// pending -> approved | rejected, decided once by the owning doctor.
type AppointmentUsecase interface {
	Create(ctx context.Context, patientID uuid.UUID, reservation *Reservation, reason string) (*entity.Appointment, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)
	SetStatus(ctx context.Context, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (*entity.Appointment, error)
	HeldLabels(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []entity.AppointmentStatus) ([]string, error)
}

type appointmentUsecase struct {
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
}

func NewAppointmentUsecase(log *logrus.Logger, appointmentRepo repository.AppointmentRepository) AppointmentUsecase {
	return &appointmentUsecase{
		log:             log,
		appointmentRepo: appointmentRepo,
	}
}

// Create stores a pending appointment for an already reserved slot.
func (u *appointmentUsecase) Create(ctx context.Context, patientID uuid.UUID, reservation *Reservation, reason string) (*entity.Appointment, error) {
	if reservation == nil {
		return nil, fmt.Errorf("%w: a slot reservation is required", ErrValidation)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	appointment := &entity.Appointment{
		PatientID: patientID,
		DoctorID:  reservation.DoctorID,
		Date:      reservation.Date,
		Time:      reservation.Time,
		Reason:    reason,
		Status:    entity.AppointmentStatusPending,
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment for patient %s: %+v", patientID, err)
		return nil, err
	}

	return appointment, nil
}

func (u *appointmentUsecase) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindByPatientID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}
	return appointments, nil
}

func (u *appointmentUsecase) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	appointments, err := u.appointmentRepo.FindByDoctorID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	return appointments, nil
}

// SetStatus decides a pending appointment. The update is conditional on the
// current status so two concurrent decisions cannot both succeed.
func (u *appointmentUsecase) SetStatus(ctx context.Context, id, doctorID uuid.UUID, status entity.AppointmentStatus, notes string) (*entity.Appointment, error) {
	if !status.IsDecision() {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	affected, err := u.appointmentRepo.DecidePending(ctx, id, doctorID, status, strings.TrimSpace(notes))
	if err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, err
	}

	if affected == 0 {
		existing, err := u.appointmentRepo.FindByIDAndDoctor(ctx, id, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", id, err)
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, id, existing.Status)
	}

	updated, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", id, err)
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}

	return updated, nil
}

// HeldLabels returns the slot labels on doctorID's date still claimed by
// appointments in the given statuses.
func (u *appointmentUsecase) HeldLabels(ctx context.Context, doctorID uuid.UUID, date time.Time, statuses []entity.AppointmentStatus) ([]string, error) {
	labels, err := u.appointmentRepo.FindHeldLabels(ctx, doctorID, entity.NormalizeDate(date), statuses)
	if err != nil {
		u.log.Warnf("Failed to find held slots for doctor %s on %s: %+v", doctorID, date.Format(entity.DateLayout), err)
		return nil, err
	}
	return labels, nil
}
