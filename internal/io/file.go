// Package ioutils provides file system utilities for the ytmusic-downloader.
//
// This package contains functions for:
//   - File copying, moving and writing
//   - Collision free output paths
//   - Directory creation
//
// All functions that accept a context.Context respect cancellation,
// though file operations themselves may not be interruptible.
package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CopyFile copies a file from source to destination.
//
// The destination file is created with mode 0644 if it doesn't exist,
// or truncated if it does. The source file must exist and be readable.
//
// Parameters:
//   - ctx: Context for cancellation (currently unused but reserved for future use)
//   - src: Source file path (must exist)
//   - dst: Destination file path (will be created/overwritten)
//
// Returns an error if:
//   - Source file cannot be opened
//   - Destination file cannot be created
//   - Copy operation fails
//
// Example:
//
//	err := CopyFile(ctx, "/tmp/converted.m4a", "/music/song.m4a")
func CopyFile(ctx context.Context, src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}

// MoveFile moves a file from source to destination.
//
// A rename is attempted first. When source and destination live on
// different file systems the rename fails, and the file is copied and
// the source removed instead. Temp directories commonly sit on another
// mount than the music library, so this fallback is the expected path
// on many systems.
//
// Example:
//
//	err := MoveFile(ctx, "/tmp/ytm-abc-converted.m4a", "/music/song.m4a")
func MoveFile(ctx context.Context, src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyFile(ctx, src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing.
//
// Parameters:
//   - ctx: Context for cancellation (currently unused but reserved for future use)
//   - path: File path to write to
//   - data: Bytes to write
//
// Example:
//
//	err := WriteFile(ctx, "/music/song.jpg", coverArt)
func WriteFile(ctx context.Context, path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// NextAvailablePath returns a path that does not collide with an
// existing file.
//
// If nothing exists at the given path, it is returned unchanged.
// Otherwise a numeric suffix is inserted before the extension:
//
//	/music/song.m4a
//	/music/song (1).m4a
//	/music/song (2).m4a
//
// Existing files are never overwritten. In the pathological case of a
// thousand collisions, a timestamp suffix is used instead.
func NextAvailablePath(path string) string {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; i < 1000; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}

	return fmt.Sprintf("%s (%d)%s", base, time.Now().Unix(), ext)
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/music/YouTube")
//	// Creates /music and /music/YouTube if needed
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
