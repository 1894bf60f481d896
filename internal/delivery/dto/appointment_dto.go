package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
	Date     string `json:"date" validate:"required"` // Format: YYYY-MM-DD
	Time     string `json:"time" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID        uuid.UUID    `json:"id"`
	PatientID uuid.UUID    `json:"patient_id"`
	Patient   *UserSummary `json:"patient,omitempty"`
	DoctorID  uuid.UUID    `json:"doctor_id"`
	Doctor    *UserSummary `json:"doctor,omitempty"`
	Date      string       `json:"date"`
	Time      string       `json:"time"`
	Reason    string       `json:"reason"`
	Status    string       `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
