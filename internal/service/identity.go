package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/repository"
	"github.com/suteetoe/notabase/internal/shared"
	"github.com/suteetoe/notabase/pkg/jwtutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// IdentityService resolves credentials into principals and owns signup/login.
type IdentityService struct {
	users   repository.UserRepository
	tenants repository.TenantRepository
}

// NewIdentityService wires the identity service.
func NewIdentityService(users repository.UserRepository, tenants repository.TenantRepository) *IdentityService {
	return &IdentityService{users: users, tenants: tenants}
}

// Signup registers a new user and implicitly creates a workspace the user
// becomes admin of. Tenant and user creation run sequentially; if the user
// insert fails the already-created tenant is left orphaned rather than
// compensated.
func (s *IdentityService) Signup(ctx context.Context, username, email, password, workspaceName string) (string, *model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username, email and password are required", shared.ErrorInvalidInput)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", nil, shared.ErrorDuplicateUser
	} else if !errors.Is(err, shared.ErrorNotFound) {
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing password: %w", err)
	}

	if workspaceName == "" {
		workspaceName = username + "'s workspace"
	}
	tenant := &model.Tenant{
		Name:     workspaceName,
		Plan:     "free",
		Settings: datatypes.JSONMap{},
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		if errors.Is(err, shared.ErrorConflict) {
			return "", nil, fmt.Errorf("%w: workspace name already taken", shared.ErrorConflict)
		}
		return "", nil, fmt.Errorf("creating tenant: %w", err)
	}

	user := &model.User{
		TenantID: tenant.ID,
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrorConflict) {
			return "", nil, shared.ErrorDuplicateUser
		}
		return "", nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.TenantID, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	return token, user, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password produce the same error so callers cannot tell which one failed.
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return "", nil, shared.ErrorInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, shared.ErrorInvalidCredentials
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.TenantID, string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("generating token: %w", err)
	}
	return token, user, nil
}

// Authenticate resolves a bearer token into a principal. It never fails the
// request: invalid, expired or stale tokens degrade to an anonymous context.
// The user is re-read on every call, so a token issued for a since-deleted
// user resolves to anonymous and the role always reflects the current row.
func (s *IdentityService) Authenticate(ctx context.Context, token string) *Principal {
	if token == "" {
		return nil
	}

	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		zap.L().Debug("token rejected", zap.Error(err))
		return nil
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		zap.L().Debug("token user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return nil
	}

	return &Principal{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	}
}
