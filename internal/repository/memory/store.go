// Package memory keeps every repository in process memory behind one mutex.
// It backs DB_DRIVER=memory and the usecase tests.
package memory

import (
	"sync"
	"time"

	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

// Store holds all tables. Repositories built from the same Store share data.
type Store struct {
	mu sync.Mutex

	users          map[uuid.UUID]entity.User
	availabilities map[uuid.UUID]entity.Availability
	appointments   map[uuid.UUID]entity.Appointment
	auditLogs      []entity.AuditLog

	lastAppointmentAt time.Time

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:          make(map[uuid.UUID]entity.User),
		availabilities: make(map[uuid.UUID]entity.Availability),
		appointments:   make(map[uuid.UUID]entity.Appointment),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// clock returns a strictly increasing timestamp so created_at ordering is
// stable even when calls land in the same nanosecond.
func (s *Store) clock(last time.Time) time.Time {
	t := s.now()
	if !t.After(last) {
		t = last.Add(time.Microsecond)
	}
	return t
}

func copyAvailability(a entity.Availability) entity.Availability {
	slots := make([]entity.AvailabilitySlot, len(a.TimeSlots))
	copy(slots, a.TimeSlots)
	a.TimeSlots = slots
	a.Doctor = nil
	return a
}
