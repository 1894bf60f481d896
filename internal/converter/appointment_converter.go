package converter

import (
	"serenecare/internal/delivery/dto"
	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// users holds resolved doctor and patient records and may be nil.
func AppointmentToResponse(appointment *entity.Appointment, users map[uuid.UUID]entity.User) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		Patient:   summaryFor(users, appointment.PatientID),
		DoctorID:  appointment.DoctorID,
		Doctor:    summaryFor(users, appointment.DoctorID),
		Date:      appointment.Date.Format(entity.DateLayout),
		Time:      appointment.Time,
		Reason:    appointment.Reason,
		Status:    string(appointment.Status),
		Notes:     appointment.Notes,
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities
func AppointmentsToResponses(appointments []entity.Appointment, users map[uuid.UUID]entity.User) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], users)
	}
	return responses
}
