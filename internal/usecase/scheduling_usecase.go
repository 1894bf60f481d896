package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"serenecare/config"
	"serenecare/internal/converter"
	"serenecare/internal/delivery/dto"
	"serenecare/internal/domain/entity"
	"serenecare/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const compensationTimeout = 5 * time.Second

// Caller is the authenticated identity handed in by the delivery layer.
// The scheduling usecase trusts it.
type Caller struct {
	ID   uuid.UUID
	Role entity.Role
}

// SchedulingUsecase is the single entry point for the scheduling workflow.
type SchedulingUsecase interface {
	AddAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error)
	RemoveAvailability(ctx context.Context, doctorID, availabilityID uuid.UUID) error
	ListAvailability(ctx context.Context, caller Caller, query dto.ListAvailabilityQuery) (*dto.AvailabilityListResponse, error)
	RequestAppointment(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	RespondToAppointment(ctx context.Context, doctorID, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, caller Caller) (*dto.AppointmentListResponse, error)
}

type SchedulingOption func(*schedulingUsecase)

// WithClock replaces time.Now when deciding what "today" is.
func WithClock(now func() time.Time) SchedulingOption {
	return func(u *schedulingUsecase) {
		u.now = now
	}
}

type schedulingUsecase struct {
	log          *logrus.Logger
	availability AvailabilityUsecase
	reservation  SlotReservationUsecase
	appointments AppointmentUsecase
	directory    *service.DirectoryService
	auditService service.AuditService
	cfg          config.SchedulingConfig
	now          func() time.Time
}

func NewSchedulingUsecase(
	log *logrus.Logger,
	availability AvailabilityUsecase,
	reservation SlotReservationUsecase,
	appointments AppointmentUsecase,
	directory *service.DirectoryService,
	auditService service.AuditService,
	cfg config.SchedulingConfig,
	opts ...SchedulingOption,
) SchedulingUsecase {
	u := &schedulingUsecase{
		log:          log,
		availability: availability,
		reservation:  reservation,
		appointments: appointments,
		directory:    directory,
		auditService: auditService,
		cfg:          cfg,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *schedulingUsecase) AddAvailability(ctx context.Context, doctorID uuid.UUID, req *dto.CreateAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if date.Before(u.today()) {
		return nil, fmt.Errorf("%w: cannot publish availability for a past date", ErrValidation)
	}

	// Appointments outlive a removed availability; their slots stay taken
	// when the doctor publishes the same date again.
	held, err := u.appointments.HeldLabels(ctx, doctorID, date, u.slotHoldingStatuses())
	if err != nil {
		return nil, err
	}

	availability, err := u.availability.Create(ctx, doctorID, date, req.TimeSlots, held)
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, &doctorID, entity.AuditActionAvailabilityCreate, "availability", availability.ID.String(), map[string]interface{}{
		"date":       availability.Date.Format(entity.DateLayout),
		"time_slots": slotLabels(availability),
	})
	u.log.Infof("Availability created: id=%s, doctor=%s, date=%s", availability.ID, doctorID, availability.Date.Format(entity.DateLayout))

	return converter.AvailabilityToResponse(availability, u.directory.Resolve(ctx, doctorID)), nil
}

func (u *schedulingUsecase) RemoveAvailability(ctx context.Context, doctorID, availabilityID uuid.UUID) error {
	removed, err := u.availability.Delete(ctx, availabilityID, doctorID)
	if err != nil {
		return err
	}
	if removed == nil {
		return nil
	}

	u.auditService.LogDelete(ctx, &doctorID, entity.AuditActionAvailabilityDelete, "availability", availabilityID.String(), map[string]interface{}{
		"date":       removed.Date.Format(entity.DateLayout),
		"time_slots": slotLabels(removed),
	})
	u.log.Infof("Availability deleted: id=%s, doctor=%s", availabilityID, doctorID)

	return nil
}

// ListAvailability gives doctors their own records on every date. Everyone
// else sees upcoming records across doctors, optionally narrowed to one date
// and/or one doctor.
func (u *schedulingUsecase) ListAvailability(ctx context.Context, caller Caller, query dto.ListAvailabilityQuery) (*dto.AvailabilityListResponse, error) {
	var filter entity.AvailabilityFilter

	if caller.Role == entity.RoleDoctor {
		filter = entity.ByDoctor(caller.ID)
	} else {
		filter = entity.Upcoming(u.today())

		if strings.TrimSpace(query.Date) != "" {
			date, err := parseDate(query.Date)
			if err != nil {
				return nil, err
			}
			filter.OnDate = date
		}

		if strings.TrimSpace(query.DoctorID) != "" {
			doctorID, err := uuid.Parse(strings.TrimSpace(query.DoctorID))
			if err != nil {
				return nil, fmt.Errorf("%w: doctor_id must be a valid UUID", ErrValidation)
			}
			filter.DoctorID = &doctorID
		}
	}

	availabilities, err := u.availability.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	doctorIDs := make([]uuid.UUID, len(availabilities))
	for i := range availabilities {
		doctorIDs[i] = availabilities[i].DoctorID
	}

	return &dto.AvailabilityListResponse{
		Availabilities: converter.AvailabilitiesToResponses(availabilities, u.directory.Resolve(ctx, doctorIDs...)),
		Total:          len(availabilities),
	}, nil
}

// RequestAppointment reserves the slot and creates a pending appointment.
//
// Flow:
// 1. Validate input before touching storage
// 2. Reserve the slot (atomic unbooked -> booked)
// 3. Insert the appointment
// 4. If the insert fails -> compensate: release the slot
func (u *schedulingUsecase) RequestAppointment(ctx context.Context, patientID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	// Step 1: Validate
	doctorID, err := uuid.Parse(strings.TrimSpace(req.DoctorID))
	if err != nil {
		return nil, fmt.Errorf("%w: doctor_id must be a valid UUID", ErrValidation)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if date.Before(u.today()) {
		return nil, fmt.Errorf("%w: cannot book a past date", ErrValidation)
	}
	label := strings.TrimSpace(req.Time)
	if label == "" {
		return nil, fmt.Errorf("%w: time is required", ErrValidation)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	// Step 2: Reserve
	reservation, err := u.reservation.Reserve(ctx, doctorID, date, label)
	if err != nil {
		return nil, err
	}

	// Step 3: Insert
	appointment, err := u.appointments.Create(ctx, patientID, reservation, req.Reason)
	if err != nil {
		u.log.Errorf("Failed to create appointment, releasing slot: %+v", err)

		// Step 4: COMPENSATE - the slot must not stay booked without an appointment
		releaseCtx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
		defer cancel()
		if releaseErr := u.reservation.Release(releaseCtx, reservation); releaseErr != nil {
			u.log.Errorf("CRITICAL: Failed to release slot %s on %s for doctor %s after appointment failure: %+v",
				label, date.Format(entity.DateLayout), doctorID, releaseErr)
		}

		return nil, err
	}

	u.auditService.LogCreate(ctx, &patientID, entity.AuditActionAppointmentRequest, "appointment", appointment.ID.String(), map[string]interface{}{
		"doctor_id": doctorID.String(),
		"date":      appointment.Date.Format(entity.DateLayout),
		"time":      appointment.Time,
	})
	u.log.Infof("Appointment requested: id=%s, patient=%s, doctor=%s, slot=%s %s",
		appointment.ID, patientID, doctorID, appointment.Date.Format(entity.DateLayout), appointment.Time)

	return converter.AppointmentToResponse(appointment, u.directory.Resolve(ctx, doctorID, patientID)), nil
}

func (u *schedulingUsecase) RespondToAppointment(ctx context.Context, doctorID, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.IsDecision() {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}

	appointment, err := u.appointments.SetStatus(ctx, appointmentID, doctorID, status, req.Notes)
	if err != nil {
		return nil, err
	}

	action := entity.AuditActionAppointmentApprove
	if status == entity.AppointmentStatusRejected {
		action = entity.AuditActionAppointmentReject

		if u.cfg.ReleaseOnReject {
			reservation := &Reservation{DoctorID: appointment.DoctorID, Date: appointment.Date, Time: appointment.Time}
			if err := u.reservation.Release(ctx, reservation); err != nil {
				u.log.Warnf("Failed to release slot of rejected appointment %s: %+v", appointment.ID, err)
			}
		}
	}

	u.auditService.LogUpdate(ctx, &doctorID, action, "appointment", appointment.ID.String(),
		map[string]interface{}{"status": string(entity.AppointmentStatusPending)},
		map[string]interface{}{"status": string(appointment.Status), "notes": appointment.Notes},
	)
	u.log.Infof("Appointment %s: id=%s, doctor=%s", appointment.Status, appointment.ID, doctorID)

	return converter.AppointmentToResponse(appointment, u.directory.Resolve(ctx, appointment.DoctorID, appointment.PatientID)), nil
}

func (u *schedulingUsecase) ListAppointments(ctx context.Context, caller Caller) (*dto.AppointmentListResponse, error) {
	var (
		appointments []entity.Appointment
		err          error
	)

	switch caller.Role {
	case entity.RolePatient:
		appointments, err = u.appointments.ListForPatient(ctx, caller.ID)
	case entity.RoleDoctor:
		appointments, err = u.appointments.ListForDoctor(ctx, caller.ID)
	default:
		return nil, fmt.Errorf("%w: role %q has no appointments", ErrValidation, caller.Role)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, 2*len(appointments))
	for i := range appointments {
		ids = append(ids, appointments[i].DoctorID, appointments[i].PatientID)
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments, u.directory.Resolve(ctx, ids...)),
		Total:        len(appointments),
	}, nil
}

// slotHoldingStatuses lists the appointment statuses that keep their slot
// booked. Rejected ones only do while rejection does not release the slot.
func (u *schedulingUsecase) slotHoldingStatuses() []entity.AppointmentStatus {
	statuses := []entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusApproved}
	if !u.cfg.ReleaseOnReject {
		statuses = append(statuses, entity.AppointmentStatusRejected)
	}
	return statuses
}

func (u *schedulingUsecase) today() time.Time {
	return entity.NormalizeDate(u.now())
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(entity.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must use the YYYY-MM-DD format", ErrValidation)
	}
	return date, nil
}

func slotLabels(availability *entity.Availability) []string {
	labels := make([]string, len(availability.TimeSlots))
	for i, slot := range availability.TimeSlots {
		labels[i] = slot.Label
	}
	return labels
}
