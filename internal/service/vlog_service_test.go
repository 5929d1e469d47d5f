package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"vlogapp/api/internal/memstore"
	"vlogapp/api/internal/models"
)

type fakeBlobStore struct {
	videos     int
	thumbnails int
}

func (f *fakeBlobStore) PutVideo(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.videos++
	return "https://cdn.test/videos/" + key, nil
}

func (f *fakeBlobStore) PutThumbnail(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.thumbnails++
	return "https://cdn.test/thumbnails/" + key, nil
}

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func uploadFile(data []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	header := &multipart.FileHeader{
		Filename: "upload.bin",
		Header:   textproto.MIMEHeader{},
		Size:     int64(len(data)),
	}
	if contentType != "" {
		header.Header.Set("Content-Type", contentType)
	}
	return memFile{bytes.NewReader(data)}, header
}

func mp4Bytes() []byte {
	return append([]byte{0, 0, 0, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2avc1mp41 payload")...)
}

func pngBytes() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}

func newVlogFixture(t *testing.T) (*VlogService, *memstore.Store, *fakeBlobStore, models.User) {
	t.Helper()
	mem := memstore.New()
	blobs := &fakeBlobStore{}
	cfg := testConfig()
	svc := NewVlogService(mem.Vlogs(), mem.Social(), mem.Users(), blobs, cfg, zerolog.Nop())

	auth := NewAuthService(mem.Users(), cfg, zerolog.Nop())
	signup, err := auth.Signup(context.Background(), "alice@example.com", "secret1", "Alice")
	require.NoError(t, err)

	return svc, mem, blobs, signup.User
}

func TestUploadVlog(t *testing.T) {
	svc, _, blobs, user := newVlogFixture(t)
	ctx := context.Background()

	video, videoHeader := uploadFile(mp4Bytes(), "video/mp4")
	thumb, thumbHeader := uploadFile(pngBytes(), "image/png")

	vlog, err := svc.Upload(ctx, UploadVlogInput{
		UserID:      user.ID,
		Title:       "My Trip",
		Description: "A day out",
		Video:       video,
		VideoHeader: videoHeader,
		Thumbnail:   thumb,
		ThumbHeader: thumbHeader,
	})
	require.NoError(t, err)
	require.NotEmpty(t, vlog.ID)
	require.Contains(t, vlog.VideoURL, "https://cdn.test/videos/")
	require.Contains(t, vlog.ThumbnailURL, "https://cdn.test/thumbnails/")
	require.Equal(t, 1, blobs.videos)
	require.Equal(t, 1, blobs.thumbnails)

	got, comments, err := svc.Get(ctx, vlog.ID)
	require.NoError(t, err)
	require.Equal(t, "My Trip", got.Title)
	require.Equal(t, "Alice", got.AuthorName)
	require.Empty(t, comments)
}

func TestUploadVlog_Validation(t *testing.T) {
	svc, _, _, user := newVlogFixture(t)
	ctx := context.Background()

	video, videoHeader := uploadFile(mp4Bytes(), "video/mp4")
	_, err := svc.Upload(ctx, UploadVlogInput{UserID: user.ID, Title: "", Video: video, VideoHeader: videoHeader})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Upload(ctx, UploadVlogInput{UserID: user.ID, Title: "No Video"})
	require.ErrorIs(t, err, ErrValidation)

	// Image posing as the main video.
	img, imgHeader := uploadFile(pngBytes(), "image/png")
	_, err = svc.Upload(ctx, UploadVlogInput{UserID: user.ID, Title: "Bad", Video: img, VideoHeader: imgHeader})
	require.ErrorIs(t, err, ErrValidation)

	// Declared type disagrees with the sniffed one.
	lying, lyingHeader := uploadFile(mp4Bytes(), "video/webm")
	_, err = svc.Upload(ctx, UploadVlogInput{UserID: user.ID, Title: "Liar", Video: lying, VideoHeader: lyingHeader})
	require.ErrorIs(t, err, ErrValidation)
}

func TestVlogOwnership(t *testing.T) {
	svc, mem, _, owner := newVlogFixture(t)
	ctx := context.Background()

	auth := NewAuthService(mem.Users(), testConfig(), zerolog.Nop())
	other, err := auth.Signup(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	video, videoHeader := uploadFile(mp4Bytes(), "video/mp4")
	vlog, err := svc.Upload(ctx, UploadVlogInput{UserID: owner.ID, Title: "Mine", Video: video, VideoHeader: videoHeader})
	require.NoError(t, err)

	title := "Stolen"
	err = svc.Update(ctx, other.User.ID, vlog.ID, UpdateVlogInput{Title: &title})
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.Delete(ctx, other.User.ID, vlog.ID)
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.Update(ctx, owner.ID, vlog.ID, UpdateVlogInput{Title: &title})
	require.NoError(t, err)

	err = svc.Delete(ctx, owner.ID, "no-such-vlog")
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(ctx, owner.ID, vlog.ID)
	require.NoError(t, err)
}

func TestCommentsAndLikes(t *testing.T) {
	svc, _, _, user := newVlogFixture(t)
	ctx := context.Background()

	video, videoHeader := uploadFile(mp4Bytes(), "video/mp4")
	vlog, err := svc.Upload(ctx, UploadVlogInput{UserID: user.ID, Title: "Mine", Video: video, VideoHeader: videoHeader})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, user.ID, vlog.ID, "  ")
	require.ErrorIs(t, err, ErrValidation)

	comment, err := svc.AddComment(ctx, user.ID, vlog.ID, "Nice one")
	require.NoError(t, err)
	require.Equal(t, "Nice one", comment.Content)

	// Liking twice stays at one.
	require.NoError(t, svc.Like(ctx, user.ID, vlog.ID))
	require.NoError(t, svc.Like(ctx, user.ID, vlog.ID))

	got, comments, err := svc.Get(ctx, vlog.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.LikeCount)
	require.Equal(t, 1, got.CommentCount)
	require.Len(t, comments, 1)
	require.Equal(t, "Alice", comments[0].AuthorName)

	require.NoError(t, svc.Unlike(ctx, user.ID, vlog.ID))
	got, _, err = svc.Get(ctx, vlog.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.LikeCount)

	require.ErrorIs(t, svc.Like(ctx, user.ID, "no-such-vlog"), ErrNotFound)
}

func TestFollows(t *testing.T) {
	svc, mem, _, alice := newVlogFixture(t)
	ctx := context.Background()

	auth := NewAuthService(mem.Users(), testConfig(), zerolog.Nop())
	bob, err := auth.Signup(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), ErrValidation)
	require.ErrorIs(t, svc.Follow(ctx, alice.ID, "no-such-user"), ErrNotFound)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.User.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.User.ID)) // idempotent

	bobStats, err := svc.FollowStats(ctx, bob.User.ID)
	require.NoError(t, err)
	require.Equal(t, models.FollowStats{Followers: 1, Following: 0}, bobStats)

	aliceStats, err := svc.FollowStats(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, models.FollowStats{Followers: 0, Following: 1}, aliceStats)

	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.User.ID))
	bobStats, err = svc.FollowStats(ctx, bob.User.ID)
	require.NoError(t, err)
	require.Equal(t, 0, bobStats.Followers)
}
