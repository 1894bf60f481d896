package entity

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Availability is a doctor's declared set of slots for one calendar date.
// (DoctorID, Date) is unique.
type Availability struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:uq_availabilities_doctor_date" json:"doctor_id"`
	Date      time.Time          `gorm:"type:date;not null;uniqueIndex:uq_availabilities_doctor_date;index" json:"date"`
	TimeSlots []AvailabilitySlot `gorm:"foreignKey:AvailabilityID;constraint:OnDelete:CASCADE" json:"time_slots"`
	CreatedAt time.Time          `gorm:"autoCreateTime" json:"created_at"`

	Doctor *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Availability) TableName() string {
	return "availabilities"
}

// Slot returns the slot with the given label, or nil.
func (a *Availability) Slot(label string) *AvailabilitySlot {
	for i := range a.TimeSlots {
		if a.TimeSlots[i].Label == label {
			return &a.TimeSlots[i]
		}
	}
	return nil
}

// AvailabilitySlot is one bookable time label inside an Availability.
type AvailabilitySlot struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	AvailabilityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_availability_slots_label" json:"-"`
	Label          string    `gorm:"type:varchar(32);not null;uniqueIndex:uq_availability_slots_label" json:"time"`
	Position       int       `gorm:"not null" json:"-"`
	IsBooked       bool      `gorm:"not null;default:false" json:"is_booked"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}

// NormalizeDate strips the clock part so dates compare as calendar days.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
