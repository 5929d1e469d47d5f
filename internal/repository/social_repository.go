package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"vlogapp/api/internal/models"
)

type SocialRepository struct {
	pool *pgxpool.Pool
}

func NewSocialRepository(pool *pgxpool.Pool) *SocialRepository {
	return &SocialRepository{pool: pool}
}

func (r *SocialRepository) Follow(ctx context.Context, followerID, followingID string) error {
	const query = `
		INSERT INTO user_follows (follower_id, following_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, followerID, followingID)
	return err
}

func (r *SocialRepository) Unfollow(ctx context.Context, followerID, followingID string) error {
	const query = `DELETE FROM user_follows WHERE follower_id = $1 AND following_id = $2`

	_, err := r.pool.Exec(ctx, query, followerID, followingID)
	return err
}

func (r *SocialRepository) FollowStats(ctx context.Context, userID string) (models.FollowStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM user_follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM user_follows WHERE follower_id = $1)
	`

	var stats models.FollowStats
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&stats.Followers, &stats.Following); err != nil {
		return models.FollowStats{}, err
	}
	return stats, nil
}
