package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record behind every caller.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Role           Role       `gorm:"type:varchar(20);not null;index" json:"role"`
	Email          string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"type:text;not null" json:"-"`
	FullName       string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Specialization string     `gorm:"type:varchar(100)" json:"specialization,omitempty"`
	IsActive       bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}
