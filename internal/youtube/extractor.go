package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/samber/lo"
	"golang.org/x/time/rate"

	ythttp "github.com/handiism/ytmusic-downloader/internal/http"
	"github.com/handiism/ytmusic-downloader/internal/model"
)

// defaultGenre is used when the video carries no genre metadata, which
// is the case for nearly all YouTube videos.
const defaultGenre = "YouTube Music"

// progressInterval limits how often byte progress callbacks fire.
const progressInterval = 200 * time.Millisecond

// ErrNoAudioStream is returned when a video exposes no audio-only
// format and no HLS manifest to fall back to.
var ErrNoAudioStream = errors.New("no audio-only stream available")

// Extractor resolves video URLs into track metadata and downloads the
// matching audio stream.
//
// Example usage:
//
//	extractor := NewExtractor(60*time.Second, trackConfig)
//
//	resolved, err := extractor.Resolve(ctx, "https://music.youtube.com/watch?v=...")
//	if err != nil {
//	    // URL invalid, video unreachable, private, or without audio
//	}
//
//	err = extractor.Download(ctx, resolved, "/tmp/raw.webm", func(written, total int64) {
//	    // progress updates
//	})
type Extractor struct {
	client   *yt.Client
	http     *ythttp.Client
	trackCfg *model.TrackConfig
}

// NewExtractor creates a new Extractor.
//
// The timeout applies per HTTP request, both to metadata calls and to
// individual stream chunk requests.
func NewExtractor(timeout time.Duration, trackCfg *model.TrackConfig) *Extractor {
	return &Extractor{
		client: &yt.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
		http:     ythttp.NewClient(timeout),
		trackCfg: trackCfg,
	}
}

// ResolvedTrack bundles track metadata with the stream selection needed
// to download it.
type ResolvedTrack struct {
	// Track carries the output metadata and the computed output path.
	Track *model.Track

	// Thumbnails lists cover art candidate URLs, best quality first.
	Thumbnails []string

	video  *yt.Video
	format *yt.Format
	hlsURL string
}

// SourceExt returns a file extension matching the raw stream container.
func (rt *ResolvedTrack) SourceExt() string {
	if rt.hlsURL != "" {
		return ".ts"
	}
	if rt.format == nil {
		return ".bin"
	}
	return "." + mimeToExt(rt.format.MimeType)
}

// FormatDescription describes the selected stream for display.
func (rt *ResolvedTrack) FormatDescription() string {
	if rt.hlsURL != "" {
		return "HLS audio"
	}
	if rt.format == nil {
		return "unknown"
	}
	mime := rt.format.MimeType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return fmt.Sprintf("itag %d, %s, %d kbit/s", rt.format.ItagNo, mime, formatBitrate(*rt.format)/1000)
}

// Resolve validates the URL, fetches the video metadata and selects the
// best audio stream.
//
// The returned ResolvedTrack carries an HLS fallback instead of a
// progressive format when the video exposes no audio-only formats but
// does expose an HLS manifest, which happens for some premieres and
// live recordings.
func (e *Extractor) Resolve(ctx context.Context, rawURL string) (*ResolvedTrack, error) {
	watchURL, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	video, err := e.client.GetVideoContext(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("fetching video metadata: %w", err)
	}

	resolved := &ResolvedTrack{
		Track:      trackFromVideo(video, e.trackCfg),
		Thumbnails: thumbnailCandidates(video),
		video:      video,
	}

	format, err := selectAudioFormat(video.Formats)
	if err != nil {
		if video.HLSManifestURL == "" {
			return nil, err
		}
		resolved.hlsURL = video.HLSManifestURL
		return resolved, nil
	}

	resolved.format = format
	return resolved, nil
}

// Download fetches the selected audio stream into destPath.
//
// Progress is reported as (written, total). For progressive streams the
// unit is bytes, for HLS fallbacks it is segments.
func (e *Extractor) Download(ctx context.Context, resolved *ResolvedTrack, destPath string, onProgress func(written, total int64)) error {
	if resolved.hlsURL != "" {
		return e.downloadHLS(ctx, resolved.hlsURL, destPath, onProgress)
	}
	return e.downloadProgressive(ctx, resolved, destPath, onProgress)
}

func (e *Extractor) downloadProgressive(ctx context.Context, resolved *ResolvedTrack, destPath string, onProgress func(written, total int64)) error {
	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	stream, size, err := e.client.GetStreamContext(ctx, resolved.video, resolved.format)
	if err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}
	defer func() {
		if stream != nil {
			stream.Close()
		}
	}()

	_, err = io.Copy(progressWriter(file, size, onProgress), stream)
	if err != nil && isUnexpectedStatus(err, http.StatusForbidden) {
		// Chunked requests occasionally trip rate limiting with a 403,
		// a single request for the whole stream usually passes
		if _, seekErr := file.Seek(0, 0); seekErr != nil {
			return fmt.Errorf("retry failed: %w", seekErr)
		}
		if truncErr := file.Truncate(0); truncErr != nil {
			return fmt.Errorf("retry failed: %w", truncErr)
		}

		single := *resolved.format
		single.ContentLength = 0

		stream.Close()
		stream, size, err = e.client.GetStreamContext(ctx, resolved.video, &single)
		if err != nil {
			return fmt.Errorf("retry failed: %w", err)
		}

		_, err = io.Copy(progressWriter(file, size, onProgress), stream)
	}
	if err != nil {
		return fmt.Errorf("downloading stream: %w", err)
	}

	return nil
}

// progressWriter wraps the destination in a rate limited ProgressWriter,
// or returns it unchanged when no callback is wanted.
func progressWriter(w io.Writer, total int64, onProgress func(written, total int64)) io.Writer {
	if onProgress == nil {
		return w
	}
	return &ythttp.ProgressWriter{
		Writer:   w,
		Total:    total,
		Limiter:  rate.NewLimiter(rate.Every(progressInterval), 1),
		OnUpdate: onProgress,
	}
}

// NormalizeURL validates a video URL and rewrites YouTube Music links
// to their plain YouTube equivalent, which the metadata API expects.
func NormalizeURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("invalid URL: unsupported scheme %q", parsed.Scheme)
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	switch host {
	case "youtube.com", "youtu.be", "music.youtube.com":
	default:
		return "", fmt.Errorf("not a YouTube URL: %s", raw)
	}

	if host == "music.youtube.com" {
		parsed.Host = "www.youtube.com"

		// Drop music specific share parameters
		query := parsed.Query()
		delete(query, "si")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

// trackFromVideo maps video metadata onto track tags.
//
// Videos rarely carry dedicated music metadata, so the mapping falls
// back field by field: the channel name stands in for the artist, the
// video title for the album title, and the genre defaults to
// "YouTube Music".
func trackFromVideo(video *yt.Video, cfg *model.TrackConfig) *model.Track {
	year := ""
	if !video.PublishDate.IsZero() {
		year = video.PublishDate.Format("2006")
	}

	thumbnail := ""
	if candidates := thumbnailCandidates(video); len(candidates) > 0 {
		thumbnail = candidates[0]
	}

	return model.NewTrack(video.ID, video.Title, video.Author, video.Title, defaultGenre, year, video.Duration.Seconds(), thumbnail, cfg)
}

// thumbnailCandidates returns the video thumbnail URLs ordered largest
// first, so that failed downloads can fall back to smaller renditions.
func thumbnailCandidates(video *yt.Video) []string {
	thumbs := make([]yt.Thumbnail, len(video.Thumbnails))
	copy(thumbs, video.Thumbnails)

	sort.SliceStable(thumbs, func(i, j int) bool {
		return int(thumbs[i].Width)*int(thumbs[i].Height) > int(thumbs[j].Width)*int(thumbs[j].Height)
	})

	return lo.Map(thumbs, func(t yt.Thumbnail, _ int) string {
		return t.URL
	})
}

// selectAudioFormat picks the audio-only format with the highest bitrate.
func selectAudioFormat(formats yt.FormatList) (*yt.Format, error) {
	audio := lo.Filter([]yt.Format(formats), func(f yt.Format, _ int) bool {
		return f.AudioChannels > 0 && f.Width == 0 && f.Height == 0
	})
	if len(audio) == 0 {
		return nil, ErrNoAudioStream
	}

	best := lo.MaxBy(audio, func(a, b yt.Format) bool {
		return formatBitrate(a) > formatBitrate(b)
	})
	return &best, nil
}

// formatBitrate prefers the average bitrate, which describes variable
// bitrate streams better than the peak value.
func formatBitrate(f yt.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

func isUnexpectedStatus(err error, code int) bool {
	var statusErr yt.ErrUnexpectedStatusCode
	if errors.As(err, &statusErr) {
		return int(statusErr) == code
	}
	return false
}

func mimeToExt(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	parts := strings.Split(mime, "/")
	if len(parts) == 2 {
		switch parts[1] {
		case "3gpp":
			return "3gp"
		default:
			return parts[1]
		}
	}
	return "bin"
}
