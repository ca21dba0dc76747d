package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestCropSquare(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		wantEdge int
	}{
		{"landscape", 1280, 720, 720},
		{"portrait", 480, 640, 480},
		{"square", 500, 500, 500},
		{"wide banner", 1024, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := cropSquare(img)

			bounds := got.Bounds()
			if bounds.Dx() != bounds.Dy() {
				t.Errorf("cropSquare() produced %dx%d, want square", bounds.Dx(), bounds.Dy())
			}
			if bounds.Dx() != tt.wantEdge {
				t.Errorf("cropSquare() edge = %d, want %d", bounds.Dx(), tt.wantEdge)
			}
		})
	}
}

func TestCropSquare_Centered(t *testing.T) {
	// Left third black, center third white, right third black
	img := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for x := 0; x < 300; x++ {
		for y := 0; y < 100; y++ {
			c := color.RGBA{A: 255}
			if x >= 100 && x < 200 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}

	got := cropSquare(img)
	bounds := got.Bounds()

	// The crop keeps the white center, not a black edge
	r, g, b, _ := got.At(bounds.Min.X+50, bounds.Min.Y+50).RGBA()
	if r == 0 || g == 0 || b == 0 {
		t.Error("cropSquare() kept an edge region, want the centered region")
	}
}

func TestScaleToFit(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		maxW, maxH int
		wantW      int
		wantH      int
	}{
		{"downscale square", 1000, 1000, 500, 500, 500, 500},
		{"already fits", 300, 300, 500, 500, 300, 300},
		{"landscape", 1500, 1000, 1000, 1000, 1000, 666},
		{"portrait", 600, 1200, 500, 500, 250, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			got := scaleToFit(img, tt.maxW, tt.maxH)

			bounds := got.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("scaleToFit() = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestImageService_PrepareCoverArt(t *testing.T) {
	svc := NewImageService(500, 95)

	tests := []struct {
		name     string
		width    int
		height   int
		wantEdge int
	}{
		{"typical thumbnail", 1280, 720, 500},
		{"small landscape", 640, 360, 360},
		{"small square", 320, 320, 320},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(t, tt.width, tt.height)

			cover, err := svc.PrepareCoverArt(context.Background(), data)
			if err != nil {
				t.Fatalf("PrepareCoverArt() error = %v", err)
			}

			img, format, err := image.Decode(bytes.NewReader(cover))
			if err != nil {
				t.Fatalf("decoding cover: %v", err)
			}

			if format != "jpeg" {
				t.Errorf("output format = %q, want %q", format, "jpeg")
			}

			bounds := img.Bounds()
			if bounds.Dx() != bounds.Dy() {
				t.Errorf("cover is %dx%d, want square", bounds.Dx(), bounds.Dy())
			}
			if bounds.Dx() != tt.wantEdge {
				t.Errorf("cover edge = %d, want %d", bounds.Dx(), tt.wantEdge)
			}
		})
	}
}

func TestImageService_PrepareCoverArt_InvalidData(t *testing.T) {
	svc := NewImageService(500, 95)

	if _, err := svc.PrepareCoverArt(context.Background(), []byte("not an image")); err == nil {
		t.Fatal("PrepareCoverArt() error = nil, want decode error")
	}
}
