package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"serenecare/config"
	"serenecare/internal/domain/entity"
	"serenecare/internal/domain/repository"
	"serenecare/internal/repository/memory"
	"serenecare/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var fixedToday = time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fixtureOptions struct {
	locker          service.SlotLocker
	appointmentRepo func(repository.AppointmentRepository) repository.AppointmentRepository
	releaseOnReject bool
}

type fixture struct {
	users        repository.UserRepository
	auditLogs    repository.AuditLogRepository
	avRepo       repository.AvailabilityRepository
	availability AvailabilityUsecase
	reservation  SlotReservationUsecase
	appointments AppointmentUsecase
	scheduling   SchedulingUsecase
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()

	log := quietLogger()
	store := memory.NewStore()

	users := memory.NewUserRepository(store)
	auditLogs := memory.NewAuditLogRepository(store)
	avRepo := memory.NewAvailabilityRepository(store)
	apRepo := memory.NewAppointmentRepository(store)
	if opts.appointmentRepo != nil {
		apRepo = opts.appointmentRepo(apRepo)
	}

	availability := NewAvailabilityUsecase(log, avRepo)
	reservation := NewSlotReservationUsecase(log, availability, opts.locker)
	appointments := NewAppointmentUsecase(log, apRepo)
	directory := service.NewDirectoryService(log, users, 64, time.Minute)
	audit := service.NewAuditService(log, auditLogs)

	scheduling := NewSchedulingUsecase(log, availability, reservation, appointments, directory, audit,
		config.SchedulingConfig{ReleaseOnReject: opts.releaseOnReject},
		WithClock(func() time.Time { return fixedToday }),
	)

	return &fixture{
		users:        users,
		auditLogs:    auditLogs,
		avRepo:       avRepo,
		availability: availability,
		reservation:  reservation,
		appointments: appointments,
		scheduling:   scheduling,
	}
}

func (f *fixture) addUser(t *testing.T, role entity.Role, name string) uuid.UUID {
	t.Helper()
	user := &entity.User{
		Role:     role,
		Email:    uuid.NewString() + "@example.com",
		Password: "x",
		FullName: name,
		IsActive: true,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func (f *fixture) slotBooked(t *testing.T, doctorID uuid.UUID, date time.Time, label string) bool {
	t.Helper()
	availability, err := f.avRepo.FindByDoctorAndDate(context.Background(), doctorID, date)
	if err != nil {
		t.Fatalf("find availability: %v", err)
	}
	if availability == nil {
		t.Fatalf("no availability for %s", date.Format(entity.DateLayout))
	}
	slot := availability.Slot(label)
	if slot == nil {
		t.Fatalf("no slot %q", label)
	}
	return slot.IsBooked
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeLocker is an in-process stand-in for the Redis slot lock.
type fakeLocker struct {
	mu         sync.Mutex
	held       map[string]string
	acquireErr error
	releases   int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.acquireErr != nil {
		return "", l.acquireErr
	}
	if _, ok := l.held[key]; ok {
		return "", service.ErrSlotLocked
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, nil
}

func (l *fakeLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] == token {
		delete(l.held, key)
	}
	l.releases++
	return nil
}

func (l *fakeLocker) heldCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

var errInsertFailed = errors.New("insert failed")

// failingAppointmentRepo refuses every insert.
type failingAppointmentRepo struct {
	repository.AppointmentRepository
}

func (failingAppointmentRepo) Create(context.Context, *entity.Appointment) error {
	return errInsertFailed
}
