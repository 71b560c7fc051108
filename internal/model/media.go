package model

import "time"

type MediaFile struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"-"`
	FileName     string    `json:"file_name"`
	BlobURL      string    `json:"blob_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	Width        *int      `json:"width,omitempty"`
	Height       *int      `json:"height,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type MediaPage struct {
	MediaFiles []*MediaFile `json:"media_files"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}
