package models

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusPending  UserStatus = "pending"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Status       UserStatus
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken is single-use: consumption requires used=false and
// expires_at in the future, and flips used in the same transaction that
// overwrites the password hash.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	ActiveSessions int `json:"activeSessions"`
	PendingActions int `json:"pendingActions"`
}

type FollowStats struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}
