package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:8080/media")
	require.NoError(t, err)
	return store
}

func TestUploadDownloadDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	result, err := store.Upload(ctx, pngBytes(t, 640, 480), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", result.ContentType)
	assert.Equal(t, 640, result.Width)
	assert.Equal(t, 480, result.Height)
	assert.Contains(t, result.URL, "http://localhost:8080/media/")
	assert.Contains(t, result.ThumbnailURL, "/thumbnails/")
	assert.Greater(t, result.Size, int64(0))

	data, err := store.Download(ctx, result.URL)
	require.NoError(t, err)
	assert.Equal(t, result.Size, int64(len(data)))

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 640, img.Bounds().Dx())

	require.NoError(t, store.Delete(ctx, result.URL))
	_, err = store.Download(ctx, result.URL)
	assert.Error(t, err)
}

func TestUploadResizesOversizedImages(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Upload(context.Background(), pngBytes(t, 3840, 2160), "image/png")
	require.NoError(t, err)

	// Metadata keeps the original dimensions.
	assert.Equal(t, 3840, result.Width)
	assert.Equal(t, 2160, result.Height)

	data, err := store.Download(context.Background(), result.URL)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 1080, img.Bounds().Dy())
}

func TestUploadProducesSquareThumbnail(t *testing.T) {
	store := newTestStore(t)

	result, err := store.Upload(context.Background(), pngBytes(t, 800, 200), "image/png")
	require.NoError(t, err)

	data, err := store.Download(context.Background(), result.ThumbnailURL)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestUploadRejectsUnsupportedContentType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Upload(context.Background(), []byte("plain text"), "text/plain")
	assert.Error(t, err)
}

func TestUploadRejectsCorruptImage(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Upload(context.Background(), []byte("not an image"), "image/png")
	assert.Error(t, err)
}

func TestDownloadRejectsForeignURL(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Download(context.Background(), "http://evil.example/media/x.jpg")
	assert.Error(t, err)
}

func TestDeleteMissingObjectIsNoOp(t *testing.T) {
	store := newTestStore(t)

	assert.NoError(t, store.Delete(context.Background(), "http://localhost:8080/media/missing.jpg"))
}
