package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(src, []byte("audio data"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(context.Background(), src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "audio data" {
		t.Errorf("copied content = %q, want %q", got, "audio data")
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "temp", "converted.m4a")
	dst := filepath.Join(dir, "library", "song.m4a")

	if err := EnsureDir(filepath.Dir(src)); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("converted"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(context.Background(), src, dst); err != nil {
		t.Fatalf("MoveFile() error = %v", err)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source still exists after move")
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "converted" {
		t.Errorf("moved content = %q, want %q", got, "converted")
	}
}

func TestNextAvailablePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.m4a")

	// Nothing exists, the path is returned unchanged
	if got := NextAvailablePath(path); got != path {
		t.Errorf("NextAvailablePath() = %q, want %q", got, path)
	}

	if err := os.WriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatal(err)
	}

	want1 := filepath.Join(dir, "song (1).m4a")
	if got := NextAvailablePath(path); got != want1 {
		t.Errorf("NextAvailablePath() = %q, want %q", got, want1)
	}

	if err := os.WriteFile(want1, []byte("second"), 0644); err != nil {
		t.Fatal(err)
	}

	want2 := filepath.Join(dir, "song (2).m4a")
	if got := NextAvailablePath(path); got != want2 {
		t.Errorf("NextAvailablePath() = %q, want %q", got, want2)
	}

	// The original file is untouched
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("original content = %q, want %q", data, "first")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c")

	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	info, err := os.Stat(nested)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Error("EnsureDir() did not create a directory")
	}

	// Calling again on an existing directory succeeds
	if err := EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}
