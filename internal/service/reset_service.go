package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/security"
	"vlogapp/api/internal/store"
)

type ResetService struct {
	users  store.UserStore
	tokens store.ResetTokenStore
	cache  *redis.Client
	cfg    *config.AppConfig
	log    zerolog.Logger
	now    func() time.Time
}

func NewResetService(users store.UserStore, tokens store.ResetTokenStore, cache *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *ResetService {
	return &ResetService{
		users:  users,
		tokens: tokens,
		cache:  cache,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// ResetIssue is what the forgot-password endpoint echoes back when a token
// was created. Returning the token in-band is a development convenience;
// a real deployment would deliver it by email instead.
type ResetIssue struct {
	Token     string
	ResetURL  string
	ExpiresAt time.Time
}

// RequestReset issues a token for a known email and returns nil for an
// unknown one. The caller responds 200 with a generic message either way,
// though the response shapes still differ when the token is echoed; see
// DESIGN.md for why that asymmetry is kept.
func (s *ResetService) RequestReset(ctx context.Context, email string) (*ResetIssue, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	if err := s.checkRateLimit(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tokenStr, err := security.GenerateResetToken()
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.cfg.Security.ResetTokenTTL)
	token := models.PasswordResetToken{
		ID:        ids.New(),
		UserID:    user.ID,
		Token:     tokenStr,
		ExpiresAt: expiresAt,
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Time("expires_at", expiresAt).Msg("reset token issued")

	return &ResetIssue{
		Token:     tokenStr,
		ResetURL:  fmt.Sprintf("%s/reset-password?token=%s", s.cfg.HTTP.PublicURL, tokenStr),
		ExpiresAt: expiresAt,
	}, nil
}

// ConsumeReset validates the new password before any token lookup, so a bad
// password gets the same 400 whether or not the token exists.
func (s *ResetService) ConsumeReset(ctx context.Context, token, newPassword string) (models.User, error) {
	if token == "" {
		return models.User{}, fmt.Errorf("%w: token is required", ErrValidation)
	}
	if len(newPassword) < s.cfg.Security.MinPasswordLen {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, s.cfg.Security.MinPasswordLen)
	}

	newHash, err := security.HashPassword(newPassword)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.tokens.Consume(ctx, token, newHash, s.now())
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return user, nil
}

func (s *ResetService) ListActiveTokens(ctx context.Context) ([]store.ActiveToken, error) {
	return s.tokens.ListActive(ctx, s.now())
}

func (s *ResetService) PurgeStale(ctx context.Context) (int64, error) {
	return s.tokens.PurgeStale(ctx, s.now())
}

// checkRateLimit allows one reset request per email per minute. Without
// Redis the guard is skipped.
func (s *ResetService) checkRateLimit(ctx context.Context, email string) error {
	if s.cache == nil {
		return nil
	}

	key := "pwdreset:" + email
	ok, err := s.cache.SetNX(ctx, key, "1", time.Minute).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("reset rate limit check failed")
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}
