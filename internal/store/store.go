// Package store defines the persistence contract the services depend on.
// Two implementations exist: repository (Postgres via pgx) and memstore
// (in-memory, used in demo mode and in tests). The implementation is chosen
// once at startup from configuration.
package store

import (
	"context"
	"errors"
	"time"

	"vlogapp/api/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrTokenNotFound = errors.New("reset token not found")
	ErrVlogNotFound  = errors.New("vlog not found")
)

// UserUpdate carries a partial update. Nil fields keep their stored value
// (COALESCE semantics).
type UserUpdate struct {
	Name     *string
	Email    *string
	Status   *models.UserStatus
	IsActive *bool
}

type UserStore interface {
	// Create inserts the user and returns ErrEmailTaken when the email is
	// already registered. Uniqueness is detected from the insert itself,
	// never from a prior lookup.
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update and Delete report rows changed; zero means no such user and is
	// not an error.
	Update(ctx context.Context, id string, upd UserUpdate) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	CountAll(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
	CountPending(ctx context.Context) (int, error)
}

// ActiveToken is the debug listing projection: plaintext token alongside the
// owning account's email.
type ActiveToken struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ResetTokenStore interface {
	Create(ctx context.Context, token models.PasswordResetToken) error
	// Consume locates a token with used=false and expires_at after now,
	// overwrites the owner's password hash and marks the token used as one
	// atomic unit, returning the owner. ErrTokenNotFound covers never
	// existed, expired and already used alike.
	Consume(ctx context.Context, token string, newPasswordHash string, now time.Time) (models.User, error)
	ListActive(ctx context.Context, now time.Time) ([]ActiveToken, error)
	PurgeStale(ctx context.Context, now time.Time) (int64, error)
}

type VlogFilter struct {
	CategoryID string
	Query      string
}

type VlogUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
	CategoryID   *string
}

type VlogStore interface {
	Create(ctx context.Context, vlog models.Vlog) error
	// GetByID returns the vlog with author name and like/comment counts
	// populated.
	GetByID(ctx context.Context, id string) (models.Vlog, error)
	List(ctx context.Context, filter VlogFilter) ([]models.Vlog, error)
	Update(ctx context.Context, id string, upd VlogUpdate) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
	Comments(ctx context.Context, vlogID string) ([]models.VlogComment, error)
	AddComment(ctx context.Context, comment models.VlogComment) error
	// Like and Unlike are idempotent.
	Like(ctx context.Context, vlogID, userID string) error
	Unlike(ctx context.Context, vlogID, userID string) error
	Categories(ctx context.Context) ([]models.Category, error)
}

type SocialStore interface {
	// Follow and Unfollow are idempotent.
	Follow(ctx context.Context, followerID, followingID string) error
	Unfollow(ctx context.Context, followerID, followingID string) error
	FollowStats(ctx context.Context, userID string) (models.FollowStats, error)
}

type Store interface {
	Users() UserStore
	ResetTokens() ResetTokenStore
	Vlogs() VlogStore
	Social() SocialStore
	Ping(ctx context.Context) error
	Close()
}
