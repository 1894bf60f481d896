package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"serenecare/internal/converter"
	"serenecare/internal/delivery/dto"
	"serenecare/internal/domain/entity"
	"serenecare/internal/domain/repository"
	"serenecare/internal/service"
	"serenecare/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, tokenID string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	// SeedAdmin creates the admin account once. It reports false when the
	// email is already registered.
	SeedAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, bool, error)
}

type authUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	jwtService   *jwt.JWTService
	tokenStore   service.TokenStore
	auditService service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	jwtService *jwt.JWTService,
	tokenStore service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		userRepo:     userRepo,
		jwtService:   jwtService,
		tokenStore:   tokenStore,
		auditService: auditService,
	}
}

// Register creates a patient or doctor account. Admins only come from the
// seed command.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	role := entity.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if role == entity.RoleAdmin {
		return nil, ErrRoleNotAllowed
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: role must be patient or doctor", ErrValidation)
	}

	user := &entity.User{
		Role:     role,
		Email:    normalizeEmail(req.Email),
		FullName: strings.TrimSpace(req.FullName),
		IsActive: true,
	}
	if role == entity.RoleDoctor {
		user.Specialization = strings.TrimSpace(req.Specialization)
	}

	if err := u.createUser(ctx, user, req.Password); err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]interface{}{
		"email": user.Email,
		"role":  string(user.Role),
	})

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := u.tokenStore.Save(ctx, user.ID, tokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	if err := u.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		u.log.Warnf("Failed to update last login for user %s: %+v", user.ID, err)
	}

	u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserLogin, "session", tokenID, nil)

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, tokenID string) error {
	if err := u.tokenStore.Delete(ctx, userID, tokenID); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) SeedAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, bool, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(fullName) == "" {
		return nil, false, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, false, err
	}
	if existing != nil {
		return converter.UserToResponse(existing), false, nil
	}

	admin := &entity.User{
		Role:     entity.RoleAdmin,
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		IsActive: true,
	}
	if err := u.createUser(ctx, admin, password); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// Seeded concurrently.
			return nil, false, nil
		}
		return nil, false, err
	}

	u.log.Infof("Admin account seeded: id=%s, email=%s", admin.ID, admin.Email)
	return converter.UserToResponse(admin), true, nil
}

func (u *authUsecase) createUser(ctx context.Context, user *entity.User, password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}
	user.Password = string(hashedPassword)

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
