package youtube

import (
	"errors"
	"testing"
	"time"

	yt "github.com/kkdai/youtube/v2"

	"github.com/handiism/ytmusic-downloader/internal/model"
)

func testTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		DownloadsPath:  "/music",
		FileNameFormat: "{title}",
		Extension:      ".m4a",
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "short URL",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "https://youtu.be/dQw4w9WgXcQ",
		},
		{
			name:  "music URL rewritten",
			input: "https://music.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "music share parameter dropped",
			input: "https://music.youtube.com/watch?v=dQw4w9WgXcQ&si=AbCdEf",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  https://www.youtube.com/watch?v=dQw4w9WgXcQ\n",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:    "bare video id",
			input:   "dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "unsupported scheme",
			input:   "ftp://youtube.com/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "different site",
			input:   "https://vimeo.com/123456",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("NormalizeURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectAudioFormat(t *testing.T) {
	audioLow := yt.Format{ItagNo: 250, MimeType: `audio/webm; codecs="opus"`, AverageBitrate: 70000, AudioChannels: 2}
	audioHigh := yt.Format{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AverageBitrate: 130000, AudioChannels: 2}
	audioM4A := yt.Format{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AverageBitrate: 129000, AudioChannels: 2}
	videoOnly := yt.Format{ItagNo: 137, MimeType: `video/mp4; codecs="avc1"`, Bitrate: 4000000, Width: 1920, Height: 1080}
	muxed := yt.Format{ItagNo: 18, MimeType: `video/mp4`, Bitrate: 500000, AudioChannels: 2, Width: 640, Height: 360}

	t.Run("highest bitrate audio wins", func(t *testing.T) {
		got, err := selectAudioFormat(yt.FormatList{videoOnly, audioLow, audioHigh, audioM4A, muxed})
		if err != nil {
			t.Fatalf("selectAudioFormat() error = %v", err)
		}
		if got.ItagNo != 251 {
			t.Errorf("selected itag %d, want 251", got.ItagNo)
		}
	})

	t.Run("muxed and video-only formats are ignored", func(t *testing.T) {
		_, err := selectAudioFormat(yt.FormatList{videoOnly, muxed})
		if !errors.Is(err, ErrNoAudioStream) {
			t.Errorf("error = %v, want ErrNoAudioStream", err)
		}
	})

	t.Run("empty format list", func(t *testing.T) {
		_, err := selectAudioFormat(yt.FormatList{})
		if !errors.Is(err, ErrNoAudioStream) {
			t.Errorf("error = %v, want ErrNoAudioStream", err)
		}
	})
}

func TestFormatBitrate(t *testing.T) {
	withAverage := yt.Format{Bitrate: 160000, AverageBitrate: 128000}
	if got := formatBitrate(withAverage); got != 128000 {
		t.Errorf("formatBitrate() = %d, want average 128000", got)
	}

	withoutAverage := yt.Format{Bitrate: 160000}
	if got := formatBitrate(withoutAverage); got != 160000 {
		t.Errorf("formatBitrate() = %d, want peak 160000", got)
	}
}

func TestTrackFromVideo_Fallbacks(t *testing.T) {
	video := &yt.Video{
		ID:          "dQw4w9WgXcQ",
		Title:       "Never Gonna Give You Up",
		Author:      "Rick Astley",
		Duration:    213 * time.Second,
		PublishDate: time.Date(2009, 10, 25, 0, 0, 0, 0, time.UTC),
		Thumbnails: yt.Thumbnails{
			{URL: "https://i.ytimg.com/small.jpg", Width: 320, Height: 180},
			{URL: "https://i.ytimg.com/large.jpg", Width: 1280, Height: 720},
		},
	}

	track := trackFromVideo(video, testTrackConfig())

	if track.Artist != "Rick Astley" {
		t.Errorf("Artist = %q, want channel name fallback", track.Artist)
	}
	if track.Album != "Never Gonna Give You Up" {
		t.Errorf("Album = %q, want title fallback", track.Album)
	}
	if track.Genre != defaultGenre {
		t.Errorf("Genre = %q, want %q", track.Genre, defaultGenre)
	}
	if track.Year != "2009" {
		t.Errorf("Year = %q, want %q", track.Year, "2009")
	}
	if track.Duration != 213 {
		t.Errorf("Duration = %v, want 213", track.Duration)
	}
	if track.ThumbnailURL != "https://i.ytimg.com/large.jpg" {
		t.Errorf("ThumbnailURL = %q, want the largest candidate", track.ThumbnailURL)
	}
}

func TestTrackFromVideo_UnknownPublishDate(t *testing.T) {
	video := &yt.Video{
		ID:     "abc12345678",
		Title:  "Untitled",
		Author: "Someone",
	}

	track := trackFromVideo(video, testTrackConfig())

	if track.Year != "" {
		t.Errorf("Year = %q, want empty for unknown publish date", track.Year)
	}
}

func TestThumbnailCandidates_Order(t *testing.T) {
	video := &yt.Video{
		Thumbnails: yt.Thumbnails{
			{URL: "medium", Width: 640, Height: 360},
			{URL: "large", Width: 1280, Height: 720},
			{URL: "small", Width: 120, Height: 90},
		},
	}

	got := thumbnailCandidates(video)

	want := []string{"large", "medium", "small"}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolvedTrack_SourceExt(t *testing.T) {
	webm := &ResolvedTrack{format: &yt.Format{MimeType: `audio/webm; codecs="opus"`}}
	if got := webm.SourceExt(); got != ".webm" {
		t.Errorf("SourceExt() = %q, want %q", got, ".webm")
	}

	mp4 := &ResolvedTrack{format: &yt.Format{MimeType: `audio/mp4; codecs="mp4a.40.2"`}}
	if got := mp4.SourceExt(); got != ".mp4" {
		t.Errorf("SourceExt() = %q, want %q", got, ".mp4")
	}

	hls := &ResolvedTrack{hlsURL: "https://example.com/master.m3u8"}
	if got := hls.SourceExt(); got != ".ts" {
		t.Errorf("SourceExt() = %q, want %q", got, ".ts")
	}
}

func TestMimeToExt(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{`audio/webm; codecs="opus"`, "webm"},
		{`audio/mp4; codecs="mp4a.40.2"`, "mp4"},
		{"audio/3gpp", "3gp"},
		{"nonsense", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			if got := mimeToExt(tt.mime); got != tt.want {
				t.Errorf("mimeToExt(%q) = %q, want %q", tt.mime, got, tt.want)
			}
		})
	}
}
