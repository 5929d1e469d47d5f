package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/ids"
	"vlogapp/api/internal/media/sniffer"
	"vlogapp/api/internal/models"
	"vlogapp/api/internal/store"
)

// BlobStore is the slice of object storage the vlog service needs.
type BlobStore interface {
	PutVideo(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	PutThumbnail(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

type VlogService struct {
	vlogs  store.VlogStore
	social store.SocialStore
	users  store.UserStore
	blobs  BlobStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewVlogService(vlogs store.VlogStore, social store.SocialStore, users store.UserStore, blobs BlobStore, cfg *config.AppConfig, log zerolog.Logger) *VlogService {
	return &VlogService{
		vlogs:  vlogs,
		social: social,
		users:  users,
		blobs:  blobs,
		cfg:    cfg,
		log:    log,
	}
}

type UploadVlogInput struct {
	UserID      string
	Title       string
	Description string
	CategoryID  string
	Video       multipart.File
	VideoHeader *multipart.FileHeader
	Thumbnail   multipart.File
	ThumbHeader *multipart.FileHeader
}

func (s *VlogService) Upload(ctx context.Context, input UploadVlogInput) (models.Vlog, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return models.Vlog{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Video == nil || input.VideoHeader == nil {
		return models.Vlog{}, fmt.Errorf("%w: video file is required", ErrValidation)
	}

	vlogID := ids.New()

	videoData, videoType, err := readMedia(input.Video, input.VideoHeader)
	if err != nil {
		return models.Vlog{}, err
	}
	if !videoType.Video {
		return models.Vlog{}, fmt.Errorf("%w: unsupported video format %s", ErrValidation, videoType.Type)
	}

	videoKey := buildObjectKey(vlogID, string(videoType.Type))
	videoURL, err := s.blobs.PutVideo(ctx, videoKey, bytes.NewReader(videoData), int64(len(videoData)), videoType.MIME)
	if err != nil {
		return models.Vlog{}, fmt.Errorf("store video: %w", err)
	}

	var thumbnailURL string
	if input.Thumbnail != nil && input.ThumbHeader != nil {
		thumbData, thumbType, err := readMedia(input.Thumbnail, input.ThumbHeader)
		if err != nil {
			return models.Vlog{}, err
		}
		if thumbType.Video {
			return models.Vlog{}, fmt.Errorf("%w: thumbnail must be an image", ErrValidation)
		}
		thumbKey := buildObjectKey(vlogID, string(thumbType.Type))
		thumbnailURL, err = s.blobs.PutThumbnail(ctx, thumbKey, bytes.NewReader(thumbData), int64(len(thumbData)), thumbType.MIME)
		if err != nil {
			return models.Vlog{}, fmt.Errorf("store thumbnail: %w", err)
		}
	}

	var categoryID *string
	if input.CategoryID != "" {
		categoryID = &input.CategoryID
	}

	vlog := models.Vlog{
		ID:           vlogID,
		UserID:       input.UserID,
		Title:        input.Title,
		Description:  strings.TrimSpace(input.Description),
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		CategoryID:   categoryID,
	}

	if err := s.vlogs.Create(ctx, vlog); err != nil {
		return models.Vlog{}, fmt.Errorf("save vlog: %w", err)
	}

	s.log.Info().Str("vlog_id", vlogID).Str("user_id", input.UserID).Msg("vlog uploaded")
	return vlog, nil
}

func readMedia(file multipart.File, header *multipart.FileHeader) ([]byte, sniffer.Result, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, sniffer.Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, sniffer.Result{}, fmt.Errorf("%w: empty file", ErrValidation)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	result, err := sniffer.DetectHead(head)
	if err != nil {
		return nil, sniffer.Result{}, fmt.Errorf("%w: unrecognized media type", ErrValidation)
	}

	// Clients that don't know the type send application/octet-stream;
	// treat that like no declaration at all.
	declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header))
	if declared == "application/octet-stream" {
		declared = ""
	}
	if declared != "" && declared != result.MIME {
		return nil, sniffer.Result{}, fmt.Errorf("%w: content type mismatch: declared %s, actual %s", ErrValidation, declared, result.MIME)
	}

	return data, result, nil
}

func buildObjectKey(vlogID string, ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", vlogID, ext))
}

func (s *VlogService) List(ctx context.Context, filter store.VlogFilter) ([]models.Vlog, error) {
	return s.vlogs.List(ctx, filter)
}

func (s *VlogService) Get(ctx context.Context, id string) (models.Vlog, []models.VlogComment, error) {
	vlog, err := s.vlogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrVlogNotFound) {
			return models.Vlog{}, nil, ErrNotFound
		}
		return models.Vlog{}, nil, err
	}

	comments, err := s.vlogs.Comments(ctx, id)
	if err != nil {
		return models.Vlog{}, nil, err
	}
	return vlog, comments, nil
}

type UpdateVlogInput struct {
	Title       *string
	Description *string
	CategoryID  *string
}

func (s *VlogService) Update(ctx context.Context, userID, id string, input UpdateVlogInput) error {
	if err := s.requireOwner(ctx, userID, id); err != nil {
		return err
	}

	_, err := s.vlogs.Update(ctx, id, store.VlogUpdate{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
	})
	return err
}

func (s *VlogService) Delete(ctx context.Context, userID, id string) error {
	if err := s.requireOwner(ctx, userID, id); err != nil {
		return err
	}

	_, err := s.vlogs.Delete(ctx, id)
	return err
}

func (s *VlogService) requireOwner(ctx context.Context, userID, vlogID string) error {
	vlog, err := s.vlogs.GetByID(ctx, vlogID)
	if err != nil {
		if errors.Is(err, store.ErrVlogNotFound) {
			return ErrNotFound
		}
		return err
	}
	if vlog.UserID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *VlogService) AddComment(ctx context.Context, userID, vlogID, content string) (models.VlogComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.VlogComment{}, fmt.Errorf("%w: content is required", ErrValidation)
	}

	if _, err := s.vlogs.GetByID(ctx, vlogID); err != nil {
		if errors.Is(err, store.ErrVlogNotFound) {
			return models.VlogComment{}, ErrNotFound
		}
		return models.VlogComment{}, err
	}

	comment := models.VlogComment{
		ID:      ids.New(),
		VlogID:  vlogID,
		UserID:  userID,
		Content: content,
	}
	if err := s.vlogs.AddComment(ctx, comment); err != nil {
		return models.VlogComment{}, err
	}
	return comment, nil
}

func (s *VlogService) Like(ctx context.Context, userID, vlogID string) error {
	if _, err := s.vlogs.GetByID(ctx, vlogID); err != nil {
		if errors.Is(err, store.ErrVlogNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.vlogs.Like(ctx, vlogID, userID)
}

func (s *VlogService) Unlike(ctx context.Context, userID, vlogID string) error {
	return s.vlogs.Unlike(ctx, vlogID, userID)
}

func (s *VlogService) Follow(ctx context.Context, followerID, targetID string) error {
	if followerID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.social.Follow(ctx, followerID, targetID)
}

func (s *VlogService) Unfollow(ctx context.Context, followerID, targetID string) error {
	return s.social.Unfollow(ctx, followerID, targetID)
}

func (s *VlogService) FollowStats(ctx context.Context, userID string) (models.FollowStats, error) {
	return s.social.FollowStats(ctx, userID)
}

func (s *VlogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.vlogs.Categories(ctx)
}
