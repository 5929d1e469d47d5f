// Package repository is the Postgres-backed store.Store implementation.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vlogapp/api/internal/store"
)

type Store struct {
	pool   *pgxpool.Pool
	users  *UserRepository
	tokens *ResetTokenRepository
	vlogs  *VlogRepository
	social *SocialRepository
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:   pool,
		users:  NewUserRepository(pool),
		tokens: NewResetTokenRepository(pool),
		vlogs:  NewVlogRepository(pool),
		social: NewSocialRepository(pool),
	}
}

func (s *Store) Users() store.UserStore             { return s.users }
func (s *Store) ResetTokens() store.ResetTokenStore { return s.tokens }
func (s *Store) Vlogs() store.VlogStore             { return s.vlogs }
func (s *Store) Social() store.SocialStore          { return s.social }
func (s *Store) Ping(ctx context.Context) error     { return s.pool.Ping(ctx) }
func (s *Store) Close()                             { s.pool.Close() }

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
