package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/grafov/m3u8"
	"github.com/samber/lo"
)

// downloadHLS fetches an HLS rendition of the audio stream.
//
// The manifest is followed from the master playlist to the cheapest
// usable audio variant, and its segments are fetched sequentially into
// the destination file. Progress is reported in segments.
func (e *Extractor) downloadHLS(ctx context.Context, manifestURL, destPath string, onProgress func(done, total int64)) error {
	mediaURL, media, err := e.resolveMediaPlaylist(ctx, manifestURL)
	if err != nil {
		return err
	}

	segments := lo.Filter(media.Segments, func(s *m3u8.MediaSegment, _ int) bool {
		return s != nil
	})
	if len(segments) == 0 {
		return fmt.Errorf("empty media playlist: %s", mediaURL)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	for i, segment := range segments {
		segmentURL, err := resolveReference(mediaURL, segment.URI)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if _, err := e.http.Download(ctx, segmentURL, file); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if onProgress != nil {
			onProgress(int64(i+1), int64(len(segments)))
		}
	}

	return nil
}

// resolveMediaPlaylist follows a master playlist to its selected media
// playlist. A media playlist URL is used directly.
func (e *Extractor) resolveMediaPlaylist(ctx context.Context, manifestURL string) (string, *m3u8.MediaPlaylist, error) {
	root, listType, err := e.fetchPlaylist(ctx, manifestURL)
	if err != nil {
		return "", nil, err
	}

	if listType == m3u8.MEDIA {
		return manifestURL, root.(*m3u8.MediaPlaylist), nil
	}

	master, ok := root.(*m3u8.MasterPlaylist)
	if !ok {
		return "", nil, fmt.Errorf("unrecognized playlist at %s", manifestURL)
	}

	variant, err := pickAudioVariant(master.Variants)
	if err != nil {
		return "", nil, err
	}

	mediaURL, err := resolveReference(manifestURL, variant.URI)
	if err != nil {
		return "", nil, err
	}

	playlist, listType, err := e.fetchPlaylist(ctx, mediaURL)
	if err != nil {
		return "", nil, err
	}
	if listType != m3u8.MEDIA {
		return "", nil, fmt.Errorf("expected media playlist at %s", mediaURL)
	}

	return mediaURL, playlist.(*m3u8.MediaPlaylist), nil
}

func (e *Extractor) fetchPlaylist(ctx context.Context, playlistURL string) (m3u8.Playlist, m3u8.ListType, error) {
	data, err := e.http.Get(ctx, playlistURL)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching playlist: %w", err)
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(data), true)
	if err != nil {
		return nil, 0, fmt.Errorf("parsing playlist: %w", err)
	}

	return playlist, listType, nil
}

// pickAudioVariant prefers audio-only variants and among those the
// lowest bandwidth one, since video resolution is irrelevant here.
func pickAudioVariant(variants []*m3u8.Variant) (*m3u8.Variant, error) {
	usable := lo.Filter(variants, func(v *m3u8.Variant, _ int) bool {
		return v != nil && v.URI != ""
	})
	if len(usable) == 0 {
		return nil, fmt.Errorf("master playlist has no variants")
	}

	audioOnly := lo.Filter(usable, func(v *m3u8.Variant, _ int) bool {
		return v.Resolution == "" && strings.HasPrefix(v.Codecs, "mp4a")
	})
	if len(audioOnly) > 0 {
		usable = audioOnly
	}

	return lo.MinBy(usable, func(a, b *m3u8.Variant) bool {
		return a.Bandwidth < b.Bandwidth
	}), nil
}

// resolveReference resolves a possibly relative playlist URI against
// the URL of the playlist it appeared in.
func resolveReference(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(parsed).String(), nil
}
