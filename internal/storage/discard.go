package storage

import (
	"context"
	"fmt"
	"io"
)

// DiscardStore stands in for object storage in demo mode: uploads are drained
// and only a plausible URL is returned. Pairs with the in-memory store so the
// whole API works with zero external services.
type DiscardStore struct {
	baseURL string
}

func NewDiscardStore(baseURL string) *DiscardStore {
	return &DiscardStore{baseURL: baseURL}
}

func (s *DiscardStore) PutVideo(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return s.put("videos", key, r)
}

func (s *DiscardStore) PutThumbnail(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return s.put("thumbnails", key, r)
}

func (s *DiscardStore) put(prefix, key string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", fmt.Errorf("drain upload: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, prefix, key), nil
}
