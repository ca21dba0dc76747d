// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - File copying, moving and writing
//   - Collision free output paths
//   - Directory creation
//   - Cover art cropping, resizing and JPEG encoding
//
// # File Operations
//
//	// Move a finished file into the music library
//	err := ioutils.MoveFile(ctx, "/tmp/ytm-abc-converted.m4a", "/music/song.m4a")
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/music/song.jpg", coverArt)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/music/YouTube")
//
// # Collision Free Paths
//
// Use NextAvailablePath to avoid overwriting existing downloads:
//
//	path := ioutils.NextAvailablePath("/music/song.m4a")
//	// Returns "/music/song (1).m4a" when "/music/song.m4a" exists
//
// # Image Processing
//
// The ImageService turns video thumbnails into square cover art:
//
//	svc := ioutils.NewImageService(500, 95)
//
//	// Center crop to square, cap at 500x500, encode as JPEG
//	cover, _ := svc.PrepareCoverArt(ctx, thumbnailData)
package ioutils
