package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/permission"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// UserService handles accounts and login.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	gate       permissionChecker
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, gate permissionChecker, bcryptCost int) *UserService {
	return &UserService{users: users, tokens: tokens, gate: gate, bcryptCost: bcryptCost}
}

// UserCreateInput describes account creation payload.
type UserCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	BranchID *string
}

// LoginResult carries the issued token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Create registers an account. Only holders of users.manage may do so.
func (s *UserService) Create(ctx context.Context, actor domain.Role, input UserCreateInput) (*domain.User, error) {
	if !s.gate.IsAllowed(actor, permission.KeyUsersManage) {
		return nil, apperrors.NewForbidden("user management requires the users.manage permission")
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	fieldErrors := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors["name"] = "value is required"
	}
	if input.Email == "" {
		fieldErrors["email"] = "value is required"
	}
	if len(input.Password) < 8 {
		fieldErrors["password"] = "must be at least 8 characters"
	}
	if !input.Role.Valid() {
		fieldErrors["role"] = "unknown role"
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationFailed("user payload invalid", fieldErrors)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hashed,
		Role:         input.Role,
		BranchID:     input.BranchID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ListTechnicians returns active technician accounts for assignment pickers.
func (s *UserService) ListTechnicians(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleTechnician)
}
