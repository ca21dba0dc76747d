package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/ytmusic-downloader/internal/model"
)

// Supported output audio formats.
const (
	FormatM4A  = "m4a"
	FormatMP3  = "mp3"
	FormatFLAC = "flac"
)

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath         string  `json:"downloads_path"`
	TempPath              string  `json:"temp_path"`
	DownloadMaxRetries    int     `json:"download_max_retries"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent float64 `json:"download_retry_exponent"`
	HTTPTimeoutSeconds    int     `json:"http_timeout_seconds"`

	// Output settings
	AudioFormat    string `json:"audio_format"` // m4a, mp3, flac
	AudioBitrate   string `json:"audio_bitrate"`
	FileNameFormat string `json:"file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags"`
	CoverArtMaxSize         int  `json:"cover_art_max_size"`
	CoverArtJPEGQuality     int  `json:"cover_art_jpeg_quality"`
	ThumbnailTimeoutSeconds int  `json:"thumbnail_timeout_seconds"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:         filepath.Join(homeDir, "Music", "YouTube"),
		TempPath:              os.TempDir(),
		DownloadMaxRetries:    7,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,
		HTTPTimeoutSeconds:    60,

		AudioFormat:    FormatM4A,
		AudioBitrate:   "256k",
		FileNameFormat: "{title}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtMaxSize:         500,
		CoverArtJPEGQuality:     95,
		ThumbnailTimeoutSeconds: 10,

		ModifyTags: true,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the settings describe a usable configuration.
func (s *Settings) Validate() error {
	switch s.AudioFormat {
	case FormatM4A, FormatMP3, FormatFLAC:
	default:
		return fmt.Errorf("unsupported audio format %q (supported: m4a, mp3, flac)", s.AudioFormat)
	}

	if s.FileNameFormat == "" {
		return fmt.Errorf("file name format must not be empty")
	}
	if s.DownloadMaxRetries < 1 {
		return fmt.Errorf("download max retries must be at least 1, got %d", s.DownloadMaxRetries)
	}
	if s.CoverArtMaxSize < 1 {
		return fmt.Errorf("cover art max size must be positive, got %d", s.CoverArtMaxSize)
	}
	if s.CoverArtJPEGQuality < 1 || s.CoverArtJPEGQuality > 100 {
		return fmt.Errorf("cover art JPEG quality must be between 1 and 100, got %d", s.CoverArtJPEGQuality)
	}

	return nil
}

// Extension returns the output file extension for the configured audio
// format, including the leading dot.
func (s *Settings) Extension() string {
	return "." + s.AudioFormat
}

// HTTPTimeout returns the general HTTP timeout as a duration.
func (s *Settings) HTTPTimeout() time.Duration {
	return time.Duration(s.HTTPTimeoutSeconds) * time.Second
}

// ThumbnailTimeout returns the per-request thumbnail download timeout.
func (s *Settings) ThumbnailTimeout() time.Duration {
	return time.Duration(s.ThumbnailTimeoutSeconds) * time.Second
}

// ToTrackConfig converts settings to TrackConfig.
func (s *Settings) ToTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		DownloadsPath:  s.DownloadsPath,
		FileNameFormat: s.FileNameFormat,
		Extension:      s.Extension(),
	}
}
