package models

import "time"

type Vlog struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	CategoryID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Denormalized for list/detail responses, not persisted on the row.
	AuthorName   string
	LikeCount    int
	CommentCount int
}

type Category struct {
	ID   string
	Name string
}

type VlogComment struct {
	ID         string
	VlogID     string
	UserID     string
	Content    string
	CreatedAt  time.Time
	AuthorName string
}
