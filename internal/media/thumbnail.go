// SPDX-License-Identifier: MIT
package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultThumbnailSize is the edge length of square thumbnails
const DefaultThumbnailSize = 200

// Dimensions returns the pixel size of an encoded image without decoding
// the pixel data.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Thumbnail scales an encoded image to width x height using a center crop
// and returns it as JPEG.
func Thumbnail(data []byte, width, height int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return nil, fmt.Errorf("image has no pixels")
	}

	thumb := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), img, centerCrop(src, width, height), draw.Over, nil)

	// Always JPEG for consistent format
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// centerCrop returns the largest rectangle of src with the aspect ratio
// width:height, centered.
func centerCrop(src image.Rectangle, width, height int) image.Rectangle {
	srcWidth, srcHeight := src.Dx(), src.Dy()
	srcAspect := float64(srcWidth) / float64(srcHeight)
	dstAspect := float64(width) / float64(height)

	if srcAspect > dstAspect {
		// Source is wider, crop width
		newWidth := int(float64(srcHeight) * dstAspect)
		x := src.Min.X + (srcWidth-newWidth)/2
		return image.Rect(x, src.Min.Y, x+newWidth, src.Max.Y)
	}
	// Source is taller, crop height
	newHeight := int(float64(srcWidth) / dstAspect)
	y := src.Min.Y + (srcHeight-newHeight)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+newHeight)
}
