package entity

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityFilter is a domain-level filter for listing availability.
// Used by repository layer to avoid coupling with delivery DTOs.
//
// A non-nil DoctorID selects that doctor's records. FromDate keeps records
// dated on or after it; OnDate keeps a single day. Zero values are ignored.
type AvailabilityFilter struct {
	DoctorID *uuid.UUID
	FromDate time.Time
	OnDate   time.Time
}

// ByDoctor is the doctor's own view: every date.
func ByDoctor(doctorID uuid.UUID) AvailabilityFilter {
	return AvailabilityFilter{DoctorID: &doctorID}
}

// Upcoming is the patient view: today onwards, any doctor.
func Upcoming(today time.Time) AvailabilityFilter {
	return AvailabilityFilter{FromDate: NormalizeDate(today)}
}
