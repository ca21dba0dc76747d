package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration, YouTube serves most thumbnails as WebP
)

// ImageService provides image processing operations for cover art.
//
// ImageService is used to:
//   - Crop thumbnails to a centered square
//   - Downscale images to a maximum edge length
//   - Encode the result as JPEG for embedding
//
// Example usage:
//
//	svc := NewImageService(500, 95)
//
//	// Download a thumbnail
//	imageData, _ := downloadThumbnail(url)
//
//	// Square crop, cap at 500x500, encode as JPEG
//	cover, _ := svc.PrepareCoverArt(ctx, imageData)
type ImageService struct {
	maxSize int
	quality int
}

// NewImageService creates a new ImageService.
//
// Parameters:
//   - maxSize: Maximum edge length in pixels for prepared cover art
//   - jpegQuality: JPEG encoding quality (1-100)
func NewImageService(maxSize, jpegQuality int) *ImageService {
	return &ImageService{
		maxSize: maxSize,
		quality: jpegQuality,
	}
}

// PrepareCoverArt turns a raw thumbnail into embeddable cover art.
//
// Video thumbnails are usually 16:9 with the square album art centered,
// so the image is cropped to a centered square first. The square is then
// downscaled to the configured maximum size if necessary, and encoded as
// JPEG at the configured quality.
//
// The input may be JPEG, PNG or WebP. The output is always JPEG, with
// equal width and height matching the shorter input edge, capped at the
// maximum size.
//
// Example:
//
//	// A 1280x720 thumbnail becomes a 500x500 JPEG
//	cover, err := svc.PrepareCoverArt(ctx, thumbnailData)
func (s *ImageService) PrepareCoverArt(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	img = cropSquare(img)
	img = scaleToFit(img, s.maxSize, s.maxSize)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// cropSquare crops an image to a centered square.
//
// The square edge equals the shorter input edge. Landscape images lose
// their left and right margins, portrait images their top and bottom
// margins. Square inputs are returned unchanged.
func cropSquare(img image.Image) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width == height {
		return img
	}

	size := width
	if height < width {
		size = height
	}

	x0 := bounds.Min.X + (width-size)/2
	y0 := bounds.Min.Y + (height-size)/2
	rect := image.Rect(x0, y0, x0+size, y0+size)

	// Most decoders produce types with SubImage, avoiding a copy
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Copy(dst, image.Point{}, img, rect, draw.Over, nil)
	return dst
}

// scaleToFit resizes an image to fit within the maximum dimensions.
//
// The aspect ratio is preserved. Images that already fit are returned
// unchanged. The Catmull-Rom algorithm is used for high-quality scaling.
func scaleToFit(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth && height <= maxHeight {
		return img
	}

	// Calculate new dimensions maintaining aspect ratio
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
