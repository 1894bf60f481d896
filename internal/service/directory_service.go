package service

import (
	"context"
	"time"

	"serenecare/internal/domain/entity"
	"serenecare/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

// DirectoryService resolves user ids to display records through an
// expiring LRU cache. Password hashes never enter the cache.
type DirectoryService struct {
	log      *logrus.Logger
	userRepo repository.UserRepository
	cache    *expirable.LRU[uuid.UUID, entity.User]
}

func NewDirectoryService(log *logrus.Logger, userRepo repository.UserRepository, size int, ttl time.Duration) *DirectoryService {
	return &DirectoryService{
		log:      log,
		userRepo: userRepo,
		cache:    expirable.NewLRU[uuid.UUID, entity.User](size, nil, ttl),
	}
}

// Resolve returns the users it could find. Lookup failures are logged and
// leave the affected ids out of the result.
func (s *DirectoryService) Resolve(ctx context.Context, ids ...uuid.UUID) map[uuid.UUID]entity.User {
	result := make(map[uuid.UUID]entity.User, len(ids))
	var missing []uuid.UUID

	for _, id := range ids {
		if _, seen := result[id]; seen {
			continue
		}
		if user, ok := s.cache.Get(id); ok {
			result[id] = user
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result
	}

	users, err := s.userRepo.FindByIDs(ctx, dedupe(missing))
	if err != nil {
		s.log.Warnf("Failed to resolve %d user(s) from directory: %+v", len(missing), err)
		return result
	}

	for _, user := range users {
		user.Password = ""
		s.cache.Add(user.ID, user)
		result[user.ID] = user
	}

	return result
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
