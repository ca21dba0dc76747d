// Package config provides configuration management for ytmusic-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Validation of user supplied settings
//   - Conversion to TrackConfig for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/YouTube
//	// M4A output at 256 kbit/s
//	// Cover art embedded in tags, cropped square, max 500px
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.DownloadsPath = "/custom/path"
//	err := settings.Save("/path/to/config.json")
//
// # Configuration Options
//
// Settings includes options for:
//   - Download and temp paths, file naming
//   - Output audio format and bitrate
//   - Retry behavior and HTTP timeouts
//   - Cover art handling
//   - Tag modification
package config
