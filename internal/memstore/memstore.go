// Package memstore is the in-memory store.Store implementation. It backs
// demo mode, where no Postgres DSN is configured, and doubles as the test
// fixture. Nothing survives a restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"vlogapp/api/internal/models"
	"vlogapp/api/internal/store"
)

type Store struct {
	mu sync.RWMutex

	users      map[string]models.User
	tokens     map[string]models.PasswordResetToken // keyed by token string
	vlogs      map[string]models.Vlog
	comments   map[string][]models.VlogComment // keyed by vlog id
	likes      map[string]map[string]struct{}  // vlog id -> user ids
	follows    map[string]map[string]struct{}  // follower id -> following ids
	categories []models.Category
}

func New() *Store {
	return &Store{
		users:    make(map[string]models.User),
		tokens:   make(map[string]models.PasswordResetToken),
		vlogs:    make(map[string]models.Vlog),
		comments: make(map[string][]models.VlogComment),
		likes:    make(map[string]map[string]struct{}),
		follows:  make(map[string]map[string]struct{}),
	}
}

func (s *Store) Users() store.UserStore             { return (*userView)(s) }
func (s *Store) ResetTokens() store.ResetTokenStore { return (*tokenView)(s) }
func (s *Store) Vlogs() store.VlogStore             { return (*vlogView)(s) }
func (s *Store) Social() store.SocialStore          { return (*socialView)(s) }
func (s *Store) Ping(ctx context.Context) error     { return nil }
func (s *Store) Close()                             {}

// SeedCategories installs the demo category list.
func (s *Store) SeedCategories(categories []models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]models.Category(nil), categories...)
}

type userView Store

func (v *userView) Create(ctx context.Context, user models.User) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, existing := range v.users {
		if existing.Email == user.Email {
			return store.ErrEmailTaken
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	v.users[user.ID] = user
	return nil
}

func (v *userView) GetByID(ctx context.Context, id string) (models.User, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	user, ok := v.users[id]
	if !ok {
		return models.User{}, store.ErrUserNotFound
	}
	return user, nil
}

func (v *userView) FindByEmail(ctx context.Context, email string) (models.User, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, user := range v.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (v *userView) List(ctx context.Context) ([]models.User, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	users := make([]models.User, 0, len(v.users))
	for _, user := range v.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID > users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (v *userView) Update(ctx context.Context, id string, upd store.UserUpdate) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	user, ok := v.users[id]
	if !ok {
		return 0, nil
	}

	if upd.Email != nil && *upd.Email != user.Email {
		for _, existing := range v.users {
			if existing.Email == *upd.Email {
				return 0, store.ErrEmailTaken
			}
		}
		user.Email = *upd.Email
	}
	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Status != nil {
		user.Status = *upd.Status
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	user.UpdatedAt = time.Now()
	v.users[id] = user
	return 1, nil
}

func (v *userView) Delete(ctx context.Context, id string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.users[id]; !ok {
		return 0, nil
	}
	delete(v.users, id)
	return 1, nil
}

func (v *userView) CountAll(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.users), nil
}

func (v *userView) CountActive(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	count := 0
	for _, user := range v.users {
		if user.IsActive {
			count++
		}
	}
	return count, nil
}

func (v *userView) CountPending(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	count := 0
	for _, user := range v.users {
		if user.Status == models.UserStatusPending {
			count++
		}
	}
	return count, nil
}

type tokenView Store

func (v *tokenView) Create(ctx context.Context, token models.PasswordResetToken) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	token.CreatedAt = time.Now()
	v.tokens[token.Token] = token
	return nil
}

func (v *tokenView) Consume(ctx context.Context, tokenStr string, newPasswordHash string, now time.Time) (models.User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	token, ok := v.tokens[tokenStr]
	if !ok || token.Used || !token.ExpiresAt.After(now) {
		return models.User{}, store.ErrTokenNotFound
	}

	user, ok := v.users[token.UserID]
	if !ok {
		return models.User{}, store.ErrTokenNotFound
	}

	user.PasswordHash = newPasswordHash
	user.UpdatedAt = time.Now()
	v.users[user.ID] = user

	token.Used = true
	v.tokens[tokenStr] = token

	return user, nil
}

func (v *tokenView) ListActive(ctx context.Context, now time.Time) ([]store.ActiveToken, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var active []store.ActiveToken
	for _, token := range v.tokens {
		if token.Used || !token.ExpiresAt.After(now) {
			continue
		}
		user, ok := v.users[token.UserID]
		if !ok {
			continue
		}
		active = append(active, store.ActiveToken{
			Email:     user.Email,
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
		})
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ExpiresAt.After(active[j].ExpiresAt)
	})
	return active, nil
}

func (v *tokenView) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var purged int64
	for key, token := range v.tokens {
		if token.Used || !token.ExpiresAt.After(now) {
			delete(v.tokens, key)
			purged++
		}
	}
	return purged, nil
}

type vlogView Store

func (v *vlogView) Create(ctx context.Context, vlog models.Vlog) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	vlog.CreatedAt = now
	vlog.UpdatedAt = now
	v.vlogs[vlog.ID] = vlog
	return nil
}

func (v *vlogView) decorate(vlog models.Vlog) models.Vlog {
	if user, ok := v.users[vlog.UserID]; ok {
		vlog.AuthorName = user.Name
	}
	vlog.LikeCount = len(v.likes[vlog.ID])
	vlog.CommentCount = len(v.comments[vlog.ID])
	return vlog
}

func (v *vlogView) GetByID(ctx context.Context, id string) (models.Vlog, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	vlog, ok := v.vlogs[id]
	if !ok {
		return models.Vlog{}, store.ErrVlogNotFound
	}
	return v.decorate(vlog), nil
}

func (v *vlogView) List(ctx context.Context, filter store.VlogFilter) ([]models.Vlog, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var vlogs []models.Vlog
	for _, vlog := range v.vlogs {
		if filter.CategoryID != "" {
			if vlog.CategoryID == nil || *vlog.CategoryID != filter.CategoryID {
				continue
			}
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(vlog.Title), strings.ToLower(filter.Query)) {
			continue
		}
		vlogs = append(vlogs, v.decorate(vlog))
	}
	sort.Slice(vlogs, func(i, j int) bool {
		if vlogs[i].CreatedAt.Equal(vlogs[j].CreatedAt) {
			return vlogs[i].ID > vlogs[j].ID
		}
		return vlogs[i].CreatedAt.After(vlogs[j].CreatedAt)
	})
	return vlogs, nil
}

func (v *vlogView) Update(ctx context.Context, id string, upd store.VlogUpdate) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	vlog, ok := v.vlogs[id]
	if !ok {
		return 0, nil
	}

	if upd.Title != nil {
		vlog.Title = *upd.Title
	}
	if upd.Description != nil {
		vlog.Description = *upd.Description
	}
	if upd.ThumbnailURL != nil {
		vlog.ThumbnailURL = *upd.ThumbnailURL
	}
	if upd.CategoryID != nil {
		vlog.CategoryID = upd.CategoryID
	}
	vlog.UpdatedAt = time.Now()
	v.vlogs[id] = vlog
	return 1, nil
}

func (v *vlogView) Delete(ctx context.Context, id string) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.vlogs[id]; !ok {
		return 0, nil
	}
	delete(v.vlogs, id)
	delete(v.comments, id)
	delete(v.likes, id)
	return 1, nil
}

func (v *vlogView) Comments(ctx context.Context, vlogID string) ([]models.VlogComment, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	comments := make([]models.VlogComment, 0, len(v.comments[vlogID]))
	for _, comment := range v.comments[vlogID] {
		if user, ok := v.users[comment.UserID]; ok {
			comment.AuthorName = user.Name
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (v *vlogView) AddComment(ctx context.Context, comment models.VlogComment) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	comment.CreatedAt = time.Now()
	v.comments[comment.VlogID] = append(v.comments[comment.VlogID], comment)
	return nil
}

func (v *vlogView) Like(ctx context.Context, vlogID, userID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.likes[vlogID] == nil {
		v.likes[vlogID] = make(map[string]struct{})
	}
	v.likes[vlogID][userID] = struct{}{}
	return nil
}

func (v *vlogView) Unlike(ctx context.Context, vlogID, userID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.likes[vlogID], userID)
	return nil
}

func (v *vlogView) Categories(ctx context.Context) ([]models.Category, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return append([]models.Category(nil), v.categories...), nil
}

type socialView Store

func (v *socialView) Follow(ctx context.Context, followerID, followingID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.follows[followerID] == nil {
		v.follows[followerID] = make(map[string]struct{})
	}
	v.follows[followerID][followingID] = struct{}{}
	return nil
}

func (v *socialView) Unfollow(ctx context.Context, followerID, followingID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.follows[followerID], followingID)
	return nil
}

func (v *socialView) FollowStats(ctx context.Context, userID string) (models.FollowStats, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var stats models.FollowStats
	stats.Following = len(v.follows[userID])
	for _, following := range v.follows {
		if _, ok := following[userID]; ok {
			stats.Followers++
		}
	}
	return stats, nil
}
