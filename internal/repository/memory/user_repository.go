package memory

import (
	"context"
	"time"

	"serenecare/internal/domain/entity"
	domainRepo "serenecare/internal/domain/repository"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) domainRepo.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domainRepo.ErrDuplicateEmail
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *userRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]entity.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]entity.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *userRepository) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	s.users[id] = u
	return nil
}
