// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"agentmarket-service/internal/domain/user"
	xerrors "agentmarket-service/internal/pkg/errors"
	"agentmarket-service/internal/pkg/jwt"
	"agentmarket-service/internal/pkg/rolecache"
	"agentmarket-service/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo   *postgres.UserRepository
	jwtManager *jwt.Manager
	roleCache  *rolecache.Cache
	logger     *zap.Logger
}

func NewAuthService(
	userRepo *postgres.UserRepository,
	jwtManager *jwt.Manager,
	roleCache *rolecache.Cache,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		roleCache:  roleCache,
		logger:     logger,
	}
}

// Register creates a buyer account and returns a signed access token.
func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FullName:     req.FullName,
		Role:         user.RoleBuyer,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.ErrConflict
		}
		return nil, err
	}

	token, err := s.jwtManager.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))

	return &user.AuthResponse{Token: token, User: u}, nil
}

// Login verifies credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		return nil, xerrors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	token, err := s.jwtManager.Generate(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Int64("user_id", u.ID))

	return &user.AuthResponse{Token: token, User: u}, nil
}

// ValidateToken verifies an access token and returns its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*jwt.Claims, error) {
	return s.jwtManager.Verify(tokenStr)
}

// GetMe returns the user's profile from the authoritative store and
// refreshes the role cache.
func (s *AuthService) GetMe(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.roleCache.Set(ctx, userID, u.Role)

	return u, nil
}

// RoleHint returns the user's role for UI rendering, served read-through
// from the cache. Authorization decisions never use this; they check the
// verified token claims.
func (s *AuthService) RoleHint(ctx context.Context, userID int64) (string, error) {
	if role, ok := s.roleCache.Get(ctx, userID); ok {
		return role, nil
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	s.roleCache.Set(ctx, userID, u.Role)

	return u.Role, nil
}

// EnsureAdminExists provisions the bootstrap admin account if missing.
func (s *AuthService) EnsureAdminExists(ctx context.Context, email, password, fullName string) error {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &user.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		Role:         user.RoleAdmin,
	}

	if err := s.userRepo.Create(ctx, admin); err != nil {
		// A concurrent instance may have created it first.
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil
		}
		return err
	}

	s.logger.Info("bootstrap admin created", zap.String("email", email))

	return nil
}
