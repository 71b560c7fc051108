package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// LocalStore keeps processed media on the local filesystem and serves it
// under baseURL. It implements the same upload/download/delete contract a
// cloud blob store would, so swapping one in is a constructor change.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "thumbnails"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, data []byte, contentType string) (*UploadResult, error) {
	if !allowedContentTypes[strings.ToLower(contentType)] {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	processed, err := processImage(data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	fileName := id + ".jpg"
	thumbName := filepath.Join("thumbnails", id+"_thumb.jpg")

	if err := os.WriteFile(filepath.Join(s.baseDir, fileName), processed.Full, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write media file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baseDir, thumbName), processed.Thumbnail, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write thumbnail: %w", err)
	}

	return &UploadResult{
		URL:          s.baseURL + "/" + fileName,
		ThumbnailURL: s.baseURL + "/" + filepath.ToSlash(thumbName),
		ContentType:  "image/jpeg",
		Size:         int64(len(processed.Full)),
		Width:        processed.Width,
		Height:       processed.Height,
	}, nil
}

func (s *LocalStore) Download(ctx context.Context, url string) ([]byte, error) {
	path, err := s.pathFromURL(url)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	path, err := s.pathFromURL(url)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) pathFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return "", fmt.Errorf("url %q is not served by this store", url)
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")
	key = filepath.Clean("/" + key)[1:]
	return filepath.Join(s.baseDir, key), nil
}
