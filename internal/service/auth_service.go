package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/security"
	"vlogapp/api/internal/store"
)

type AuthService struct {
	users store.UserStore
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewAuthService(users store.UserStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		cfg:   cfg,
		log:   log,
	}
}

type AuthResult struct {
	Token string
	User  models.User
}

func (s *AuthService) Signup(ctx context.Context, email, password, name string) (AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" || strings.TrimSpace(name) == "" {
		return AuthResult{}, fmt.Errorf("%w: email, password, name are required", ErrValidation)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Status:       models.UserStatusActive,
		IsActive:     true,
	}

	// Duplicate emails surface from the insert's uniqueness constraint, not
	// a pre-check, so two concurrent signups cannot both pass.
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user models.User) (string, error) {
	return security.GenerateAuthToken(
		s.cfg.Security.JWTSecret,
		user.ID,
		user.Email,
		user.Name,
		s.cfg.Security.JWTTTL,
	)
}
