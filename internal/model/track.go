package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Track represents a single piece of audio resolved from a YouTube or
// YouTube Music video page.
//
// Track contains the metadata that ends up in the output file tags:
//   - Title, artist and album for the primary tags
//   - Genre and release year
//   - Thumbnail URL for cover art embedding
//   - Computed local file path
//
// The file path is automatically computed when creating a track via NewTrack,
// using the TrackConfig downloads path, file name format and extension.
//
// Example:
//
//	cfg := &TrackConfig{
//	    DownloadsPath:  "/music",
//	    FileNameFormat: "{artist} - {title}",
//	    Extension:      ".m4a",
//	}
//	track := NewTrack("dQw4w9WgXcQ", "Song Title", "Artist", "Album", "Pop", "2009", 213, thumbURL, cfg)
//	// track.Path = "/music/Artist - Song Title.m4a"
type Track struct {
	// VideoID is the 11 character YouTube video ID.
	VideoID string

	// Title is the track title.
	Title string

	// Artist is the artist name. Falls back to the channel name when the
	// video carries no dedicated artist metadata.
	Artist string

	// Album is the album title. Falls back to the track title for videos
	// that are not part of an album.
	Album string

	// Genre is the genre tag value.
	Genre string

	// Year is the four digit release year. Empty string if unknown.
	Year string

	// Duration is the track length in seconds.
	Duration float64

	// ThumbnailURL is the URL of the preferred cover art candidate.
	ThumbnailURL string

	// Path is the computed local file path where the track will be saved.
	// Includes the full path and filename with extension.
	Path string
}

// TrackConfig holds output path formatting settings.
//
// The FileNameFormat supports placeholders that are replaced with actual values:
//   - {id} - YouTube video ID
//   - {title} - Track title
//   - {artist} - Artist name
//   - {album} - Album title
//   - {year} - Release year
//
// The format must not include the file extension. The extension is
// appended from the Extension field, which follows the configured
// output audio format.
//
// Example:
//
//	cfg := &TrackConfig{
//	    DownloadsPath:  "/music",
//	    FileNameFormat: "{artist} - {title}",
//	    Extension:      ".m4a",
//	}
//	// Results in filenames like "The Beatles - Come Together.m4a"
type TrackConfig struct {
	// DownloadsPath is the directory the output file is written to.
	DownloadsPath string

	// FileNameFormat is the template for output filenames, without extension.
	FileNameFormat string

	// Extension is the output file extension including the leading dot.
	Extension string
}

// NewTrack creates a new Track with computed path.
//
// Parameters:
//   - videoID: The 11 character YouTube video ID
//   - title: Track title
//   - artist: Artist name (channel name when no artist metadata exists)
//   - album: Album title (track title when the video belongs to no album)
//   - genre: Genre tag value
//   - year: Four digit release year, empty string if unknown
//   - duration: Track length in seconds
//   - thumbnailURL: Preferred cover art candidate URL
//   - cfg: Configuration for path generation
//
// The file path is computed from the downloads path and the configured
// filename format. Invalid filename characters are automatically replaced
// with underscores.
func NewTrack(videoID, title, artist, album, genre, year string, duration float64, thumbnailURL string, cfg *TrackConfig) *Track {
	track := &Track{
		VideoID:      videoID,
		Title:        title,
		Artist:       artist,
		Album:        album,
		Genre:        genre,
		Year:         year,
		Duration:     duration,
		ThumbnailURL: thumbnailURL,
	}

	track.Path = track.parseFilePath(cfg)

	return track
}

// parseFilePath computes the full file path for this track.
func (t *Track) parseFilePath(cfg *TrackConfig) string {
	fileName := t.parseFileName(cfg)
	filePath := filepath.Join(cfg.DownloadsPath, fileName)

	// Limit total path length for Windows compatibility (MAX_PATH = 260)
	if len(filePath)+len(cfg.Extension) >= 260 {
		maxLen := 260 - len(cfg.Extension) - 1
		if maxLen > 0 && maxLen < len(filePath) {
			filePath = strings.TrimRight(filePath[:maxLen], ". ")
		}
	}

	return filePath + cfg.Extension
}

// parseFileName computes the filename from the config template.
func (t *Track) parseFileName(cfg *TrackConfig) string {
	fileName := cfg.FileNameFormat
	fileName = strings.ReplaceAll(fileName, "{id}", t.VideoID)
	fileName = strings.ReplaceAll(fileName, "{year}", t.Year)
	fileName = strings.ReplaceAll(fileName, "{album}", t.Album)
	fileName = strings.ReplaceAll(fileName, "{artist}", t.Artist)
	fileName = strings.ReplaceAll(fileName, "{title}", t.Title)
	return sanitizeFileName(fileName)
}

// sanitizeFileName makes a string safe for use as a file name.
func sanitizeFileName(name string) string {
	// Replace invalid path/file characters
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	// Remove trailing whitespace
	name = strings.TrimRight(name, " ")

	return name
}
