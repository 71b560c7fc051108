package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"messenger-backend/internal/model"
	"messenger-backend/internal/storage"
)

const maxUploadSize = 10 << 20 // 10 MB

type MediaStore interface {
	InsertMediaFile(media *model.MediaFile) (*model.MediaFile, error)
	GetMediaFileByID(id, userID int64) (*model.MediaFile, error)
	ListByUserID(userID int64, limit, offset int) ([]*model.MediaFile, error)
	CountByUserID(userID int64) (int, error)
	DeleteMediaFile(id, userID int64) (bool, error)
}

type MediaService struct {
	Files MediaStore
	Store storage.ObjectStore
}

func NewMediaService(files MediaStore, store storage.ObjectStore) *MediaService {
	return &MediaService{Files: files, Store: store}
}

// Upload pushes the image to object storage and records its metadata. The
// object is written first so a metadata failure leaves at worst an orphaned
// blob, never a dangling record.
func (s *MediaService) Upload(ctx context.Context, userID int64, fileName, contentType string, data []byte) (*model.MediaFile, error) {
	if len(data) == 0 {
		return nil, validationErrorf("file is empty")
	}
	if len(data) > maxUploadSize {
		return nil, validationErrorf("file exceeds the %d MB limit", maxUploadSize>>20)
	}

	result, err := s.Store.Upload(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	width := result.Width
	height := result.Height
	media := &model.MediaFile{
		UserID:       userID,
		FileName:     fileName,
		BlobURL:      result.URL,
		ThumbnailURL: result.ThumbnailURL,
		ContentType:  result.ContentType,
		FileSize:     result.Size,
		Width:        &width,
		Height:       &height,
		UploadedAt:   time.Now().UTC(),
	}

	media, err = s.Files.InsertMediaFile(media)
	if err != nil {
		return nil, storageError(err)
	}
	return media, nil
}

func (s *MediaService) GetMediaFile(userID, id int64) (*model.MediaFile, error) {
	media, err := s.Files.GetMediaFileByID(id, userID)
	if err != nil {
		return nil, storageError(err)
	}
	if media == nil {
		return nil, ErrNotFound
	}
	return media, nil
}

func (s *MediaService) ListMediaFiles(userID int64, page, pageSize int) (*model.MediaPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	total, err := s.Files.CountByUserID(userID)
	if err != nil {
		return nil, storageError(err)
	}

	files, err := s.Files.ListByUserID(userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, storageError(err)
	}
	if files == nil {
		files = []*model.MediaFile{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &model.MediaPage{
		MediaFiles: files,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Download streams the stored object back, enforcing ownership through the
// metadata lookup.
func (s *MediaService) Download(ctx context.Context, userID, id int64) ([]byte, *model.MediaFile, error) {
	media, err := s.GetMediaFile(userID, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.Store.Download(ctx, media.BlobURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return data, media, nil
}

// DeleteMediaFile removes the blob, the thumbnail and then the metadata.
// Thumbnail cleanup is best effort.
func (s *MediaService) DeleteMediaFile(ctx context.Context, userID, id int64) error {
	media, err := s.GetMediaFile(userID, id)
	if err != nil {
		return err
	}

	if err := s.Store.Delete(ctx, media.BlobURL); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if media.ThumbnailURL != "" {
		if err := s.Store.Delete(ctx, media.ThumbnailURL); err != nil {
			log.Printf("[Media] thumbnail cleanup for file %d failed: %v", id, err)
		}
	}

	deleted, err := s.Files.DeleteMediaFile(id, userID)
	if err != nil {
		return storageError(err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ResolveForSend validates a media reference for an outbound message.
// Another user's file looks exactly like a missing one.
func (s *MediaService) ResolveForSend(userID, mediaFileID int64) (*model.MediaFile, error) {
	return s.GetMediaFile(userID, mediaFileID)
}
