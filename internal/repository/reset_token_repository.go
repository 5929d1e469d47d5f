package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vlogapp/api/internal/models"
	"vlogapp/api/internal/store"
)

type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token models.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
	`

	_, err := r.pool.Exec(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt)
	return err
}

// Consume runs the two writes (password overwrite, token invalidation) in a
// single transaction so a crash between them cannot leave a consumed token
// reusable. The row is locked while the transaction is open.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string, newPasswordHash string, now time.Time) (models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const lookup = `
		SELECT t.id, u.id, u.email, u.password_hash, u.name, u.status, u.is_active, u.created_at, u.updated_at
		FROM password_reset_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1 AND t.used = FALSE AND t.expires_at > $2
		FOR UPDATE OF t
	`

	var tokenID string
	var user models.User
	err = tx.QueryRow(ctx, lookup, token, now).Scan(
		&tokenID,
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Status,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrTokenNotFound
		}
		return models.User{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, user.ID, newPasswordHash); err != nil {
		return models.User{}, fmt.Errorf("update password: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE password_reset_tokens SET used = TRUE WHERE id = $1`, tokenID); err != nil {
		return models.User{}, fmt.Errorf("invalidate token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.User{}, fmt.Errorf("commit: %w", err)
	}

	user.PasswordHash = newPasswordHash
	return user, nil
}

func (r *ResetTokenRepository) ListActive(ctx context.Context, now time.Time) ([]store.ActiveToken, error) {
	const query = `
		SELECT u.email, t.token, t.expires_at
		FROM password_reset_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.used = FALSE AND t.expires_at > $1
		ORDER BY t.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []store.ActiveToken
	for rows.Next() {
		var token store.ActiveToken
		if err := rows.Scan(&token.Email, &token.Token, &token.ExpiresAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (r *ResetTokenRepository) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM password_reset_tokens WHERE used = TRUE OR expires_at <= $1`

	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
