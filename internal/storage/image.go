package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxWidth  = 1920
	maxHeight = 1080

	thumbnailSize    = 300
	fullQuality      = 85
	thumbnailQuality = 80
)

type processedImage struct {
	Full      []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// processImage decodes an uploaded image and produces the two stored
// renditions: the full image resized to fit within 1920x1080 when larger,
// and a fixed 300x300 thumbnail. Both are re-encoded as JPEG.
func processImage(data []byte) (*processedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	full := src
	if width > maxWidth || height > maxHeight {
		full = scaleToFit(src, maxWidth, maxHeight)
	}

	var fullBuf bytes.Buffer
	if err := jpeg.Encode(&fullBuf, full, &jpeg.Options{Quality: fullQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	thumb := image.NewRGBA(image.Rect(0, 0, thumbnailSize, thumbnailSize))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), src, bounds, draw.Src, nil)

	var thumbBuf bytes.Buffer
	if err := jpeg.Encode(&thumbBuf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &processedImage{
		Full:      fullBuf.Bytes(),
		Thumbnail: thumbBuf.Bytes(),
		Width:     width,
		Height:    height,
	}, nil
}

func scaleToFit(src image.Image, maxW, maxH int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}

	dstW := int(float64(w) * scale)
	dstH := int(float64(h) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
