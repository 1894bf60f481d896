package converter

import (
	"serenecare/internal/delivery/dto"
	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

// AvailabilityToResponse converts an Availability entity to AvailabilityResponse DTO.
// users holds resolved doctor records and may be nil.
func AvailabilityToResponse(availability *entity.Availability, users map[uuid.UUID]entity.User) *dto.AvailabilityResponse {
	if availability == nil {
		return nil
	}

	slots := make([]dto.SlotResponse, len(availability.TimeSlots))
	for i, slot := range availability.TimeSlots {
		slots[i] = dto.SlotResponse{
			Time:     slot.Label,
			IsBooked: slot.IsBooked,
		}
	}

	doctor := UserToSummary(availability.Doctor)
	if doctor == nil {
		doctor = summaryFor(users, availability.DoctorID)
	}

	return &dto.AvailabilityResponse{
		ID:        availability.ID,
		DoctorID:  availability.DoctorID,
		Doctor:    doctor,
		Date:      availability.Date.Format(entity.DateLayout),
		TimeSlots: slots,
		CreatedAt: availability.CreatedAt,
	}
}

// AvailabilitiesToResponses converts a slice of Availability entities
func AvailabilitiesToResponses(availabilities []entity.Availability, users map[uuid.UUID]entity.User) []dto.AvailabilityResponse {
	responses := make([]dto.AvailabilityResponse, len(availabilities))
	for i := range availabilities {
		responses[i] = *AvailabilityToResponse(&availabilities[i], users)
	}
	return responses
}
