package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	defaults := DefaultSettings()
	if settings.AudioFormat != defaults.AudioFormat {
		t.Errorf("AudioFormat = %q, want %q", settings.AudioFormat, defaults.AudioFormat)
	}
	if settings.DownloadMaxRetries != defaults.DownloadMaxRetries {
		t.Errorf("DownloadMaxRetries = %d, want %d", settings.DownloadMaxRetries, defaults.DownloadMaxRetries)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	settings := DefaultSettings()
	settings.AudioFormat = FormatFLAC
	settings.DownloadsPath = "/custom/music"
	settings.SaveCoverArtInFolder = true

	if err := settings.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.AudioFormat != FormatFLAC {
		t.Errorf("AudioFormat = %q, want %q", loaded.AudioFormat, FormatFLAC)
	}
	if loaded.DownloadsPath != "/custom/music" {
		t.Errorf("DownloadsPath = %q, want %q", loaded.DownloadsPath, "/custom/music")
	}
	if !loaded.SaveCoverArtInFolder {
		t.Error("SaveCoverArtInFolder = false, want true")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	partial := DefaultSettings()
	partial.AudioFormat = FormatMP3
	if err := partial.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Fields absent from the file keep their default values
	if loaded.CoverArtMaxSize != DefaultSettings().CoverArtMaxSize {
		t.Errorf("CoverArtMaxSize = %d, want %d", loaded.CoverArtMaxSize, DefaultSettings().CoverArtMaxSize)
	}
	if loaded.AudioFormat != FormatMP3 {
		t.Errorf("AudioFormat = %q, want %q", loaded.AudioFormat, FormatMP3)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"mp3 format", func(s *Settings) { s.AudioFormat = FormatMP3 }, false},
		{"flac format", func(s *Settings) { s.AudioFormat = FormatFLAC }, false},
		{"unknown format", func(s *Settings) { s.AudioFormat = "ogg" }, true},
		{"empty format", func(s *Settings) { s.AudioFormat = "" }, true},
		{"empty file name format", func(s *Settings) { s.FileNameFormat = "" }, true},
		{"zero retries", func(s *Settings) { s.DownloadMaxRetries = 0 }, true},
		{"zero art size", func(s *Settings) { s.CoverArtMaxSize = 0 }, true},
		{"quality too high", func(s *Settings) { s.CoverArtJPEGQuality = 101 }, true},
		{"quality too low", func(s *Settings) { s.CoverArtJPEGQuality = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(settings)
			err := settings.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_ToTrackConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.DownloadsPath = "/music"
	settings.FileNameFormat = "{artist} - {title}"
	settings.AudioFormat = FormatFLAC

	cfg := settings.ToTrackConfig()

	if cfg.DownloadsPath != "/music" {
		t.Errorf("DownloadsPath = %q, want %q", cfg.DownloadsPath, "/music")
	}
	if cfg.FileNameFormat != "{artist} - {title}" {
		t.Errorf("FileNameFormat = %q, want %q", cfg.FileNameFormat, "{artist} - {title}")
	}
	if cfg.Extension != ".flac" {
		t.Errorf("Extension = %q, want %q", cfg.Extension, ".flac")
	}
}
