package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAvailabilityRequest struct {
	Date      string   `json:"date" validate:"required"` // Format: YYYY-MM-DD
	TimeSlots []string `json:"time_slots" validate:"required,min=1"`
}

// ListAvailabilityQuery carries the optional narrowing of the non-doctor view.
type ListAvailabilityQuery struct {
	Date     string
	DoctorID string
}

// Response DTOs

type SlotResponse struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"is_booked"`
}

type AvailabilityResponse struct {
	ID        uuid.UUID      `json:"id"`
	DoctorID  uuid.UUID      `json:"doctor_id"`
	Doctor    *UserSummary   `json:"doctor,omitempty"`
	Date      string         `json:"date"`
	TimeSlots []SlotResponse `json:"time_slots"`
	CreatedAt time.Time      `json:"created_at"`
}

type AvailabilityListResponse struct {
	Availabilities []AvailabilityResponse `json:"availabilities"`
	Total          int                    `json:"total"`
}
