package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopapi/internal/auth"
	"shopapi/internal/cache"
	"shopapi/internal/logger"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/validation"
)

// RegisterInput is the payload of a new account.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,password"`
	FirstName string `json:"first_name" validate:"required,uk_name"`
	LastName  string `json:"last_name" validate:"required,uk_name"`
	Phone     string `json:"phone" validate:"required,ua_phone"`
}

// AuthResult is returned by registration.
type AuthResult struct {
	User   *model.User     `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// AuthService covers registration, login and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)

	// Login never tells apart unknown email, wrong password and inactive account.
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)

	// Refresh rotates the pair; the presented refresh token is revoked.
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)

	// Logout revokes the access token and, when given, the refresh token.
	Logout(ctx context.Context, access *auth.Claims, refreshToken string) error

	// Authenticate verifies an access token, checks it was not revoked and
	// that its user is still active.
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	revoked  cache.TokenStore
	validate *validation.Validator
	log      *zap.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, revoked cache.TokenStore, v *validation.Validator, log *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, revoked: revoked, validate: v, log: log}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = validation.NormalizePhone(in.Phone)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	taken, err := s.users.EmailTaken(ctx, in.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.users.PhoneTaken(ctx, in.Phone, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPhoneTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u, err := s.users.Create(ctx, &model.User{
		ID:        uuid.NewString(),
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("user_registered", zap.String("user_id", u.ID))
	return &AuthResult{User: u, Tokens: pair}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	hash, err := s.users.PasswordHash(ctx, u.ID)
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if !auth.CheckPassword(hash, password) {
		logger.FromContext(ctx, s.log).Info("login_failed", zap.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}
	return s.tokens.IssuePair(u.ID, u.Email)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	// Only the caller that revokes the presented token gets a new pair.
	consumed, err := s.revoked.Consume(ctx, claims.ID, s.tokens.Remaining(claims))
	if err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if !consumed {
		return nil, ErrInvalidToken
	}
	u, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.tokens.IssuePair(u.ID, u.Email)
}

func (s *authService) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if access == nil {
		return ErrInvalidToken
	}
	if refreshToken != "" {
		rc, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
		if err != nil || rc.UserID != access.UserID {
			return ErrInvalidToken
		}
		if err := s.revoked.Revoke(ctx, rc.ID, s.tokens.Remaining(rc)); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}
	if err := s.revoked.Revoke(ctx, access.ID, s.tokens.Remaining(access)); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	logger.FromContext(ctx, s.log).Info("user_logged_out", zap.String("user_id", access.UserID))
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	if _, err := s.activeUser(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

// activeUser loads the token subject; missing and deactivated accounts
// both yield ErrInvalidToken.
func (s *authService) activeUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrInvalidToken)
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}
