package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/security"
	"vlogapp/api/internal/store"
)

const statsCacheKey = "stats:overview"
const statsCacheTTL = 15 * time.Second

type UserService struct {
	users store.UserStore
	cache *redis.Client
	cfg   *config.AppConfig
	log   zerolog.Logger
}

func NewUserService(users store.UserStore, cache *redis.Client, cfg *config.AppConfig, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		cache: cache,
		cfg:   cfg,
		log:   log,
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

type CreateUserInput struct {
	Name   string
	Email  string
	Status string
}

// Create is the admin path: the account gets the configured default password
// until the user resets it.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" {
		return models.User{}, fmt.Errorf("%w: name and email required", ErrValidation)
	}

	passwordHash, err := security.HashPassword(s.cfg.Security.DefaultPassword)
	if err != nil {
		return models.User{}, err
	}

	status := models.UserStatus(input.Status)
	if status == "" {
		status = models.UserStatusInactive
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Status:       status,
		IsActive:     status == models.UserStatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Name   *string
	Email  *string
	Status *string
}

// Update applies only the provided fields; is_active tracks the status the
// same way the admin create path does. Returns rows changed; zero means no
// such user and is reported as a count, not an error.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (int64, error) {
	upd := store.UserUpdate{
		Name:  input.Name,
		Email: input.Email,
	}
	if input.Status != nil {
		status := models.UserStatus(*input.Status)
		active := status == models.UserStatusActive
		upd.Status = &status
		upd.IsActive = &active
	}

	return s.users.Update(ctx, id, upd)
}

func (s *UserService) Delete(ctx context.Context, id string) (int64, error) {
	return s.users.Delete(ctx, id)
}

// Stats runs the three counts concurrently and merges once the last one
// finishes. The merged result is cached briefly when Redis is available.
func (s *UserService) Stats(ctx context.Context) (models.Stats, error) {
	if cached, ok := s.cachedStats(ctx); ok {
		return cached, nil
	}

	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.users.CountAll(gctx)
		stats.TotalUsers = total
		return err
	})
	g.Go(func() error {
		active, err := s.users.CountActive(gctx)
		stats.ActiveSessions = active
		return err
	})
	g.Go(func() error {
		pending, err := s.users.CountPending(gctx)
		stats.PendingActions = pending
		return err
	})

	if err := g.Wait(); err != nil {
		return models.Stats{}, err
	}

	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *UserService) cachedStats(ctx context.Context) (models.Stats, bool) {
	if s.cache == nil {
		return models.Stats{}, false
	}

	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return models.Stats{}, false
	}

	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return models.Stats{}, false
	}
	return stats, true
}

func (s *UserService) storeStats(ctx context.Context, stats models.Stats) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("stats cache write failed")
	}
}
