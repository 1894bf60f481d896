package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending  AppointmentStatus = "pending"
	AppointmentStatusApproved AppointmentStatus = "approved"
	AppointmentStatusRejected AppointmentStatus = "rejected"
)

// IsDecision reports whether s is a status a doctor may set.
func (s AppointmentStatus) IsDecision() bool {
	return s == AppointmentStatusApproved || s == AppointmentStatusRejected
}

// Appointment is a patient's request for one reserved slot. It points at the
// slot by (DoctorID, Date, Time), not by slot id.
type Appointment struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date      time.Time         `gorm:"type:date;not null" json:"date"`
	Time      string            `gorm:"type:varchar(32);not null" json:"time"`
	Reason    string            `gorm:"type:text;not null" json:"reason"`
	Status    AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes     string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment still awaits a decision
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}
