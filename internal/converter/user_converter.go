package converter

import (
	"serenecare/internal/delivery/dto"
	"serenecare/internal/domain/entity"

	"github.com/google/uuid"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           string(user.Role),
		Specialization: user.Specialization,
		LastLoginAt:    user.LastLoginAt,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// UserToSummary converts a User entity to the embedded UserSummary DTO
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil {
		return nil
	}

	return &dto.UserSummary{
		ID:             user.ID,
		FullName:       user.FullName,
		Email:          user.Email,
		Specialization: user.Specialization,
	}
}

// summaryFor looks id up in a resolved directory; unknown ids yield nil.
func summaryFor(users map[uuid.UUID]entity.User, id uuid.UUID) *dto.UserSummary {
	user, ok := users[id]
	if !ok {
		return nil
	}
	return UserToSummary(&user)
}
