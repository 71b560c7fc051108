package storage

import "context"

// UploadResult is the object-store contract for a stored image: the canonical
// URL, a thumbnail URL, the stored size and the original pixel dimensions.
type UploadResult struct {
	URL          string
	ThumbnailURL string
	ContentType  string
	Size         int64
	Width        int
	Height       int
}

// ObjectStore is the blob-storage boundary. Transcoding happens behind it;
// callers hand over raw bytes and get back transport-ready URLs.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, contentType string) (*UploadResult, error)
	Download(ctx context.Context, url string) ([]byte, error)
	Delete(ctx context.Context, url string) error
}
