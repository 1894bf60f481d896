package memory

import (
	"context"

	"serenecare/internal/domain/entity"
	domainRepo "serenecare/internal/domain/repository"
)

type auditLogRepository struct {
	store *Store
}

func NewAuditLogRepository(store *Store) domainRepo.AuditLogRepository {
	return &auditLogRepository{store: store}
}

func (r *auditLogRepository) Create(_ context.Context, log *entity.AuditLog) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = int64(len(s.auditLogs) + 1)
	log.CreatedAt = s.now()
	s.auditLogs = append(s.auditLogs, *log)
	return nil
}

// FindAll returns newest first.
func (r *auditLogRepository) FindAll(_ context.Context) ([]entity.AuditLog, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	logs := make([]entity.AuditLog, 0, len(s.auditLogs))
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		logs = append(logs, s.auditLogs[i])
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(_ context.Context, id int64) (*entity.AuditLog, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 || id > int64(len(s.auditLogs)) {
		return nil, nil
	}
	log := s.auditLogs[id-1]
	return &log, nil
}
