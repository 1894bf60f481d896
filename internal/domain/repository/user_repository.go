package repository

import (
	"context"
	"errors"

	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

var ErrDuplicateEmail = errors.New("email already exists")

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
