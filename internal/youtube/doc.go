// Package youtube resolves YouTube and YouTube Music URLs into track
// metadata and audio streams.
//
// The package handles two main use cases:
//
//  1. Resolving a video URL into tags, thumbnails and a stream selection
//  2. Downloading the selected audio stream to a local file
//
// # Resolving
//
// Use the Extractor to turn a URL into a ResolvedTrack:
//
//	extractor := youtube.NewExtractor(60*time.Second, trackConfig)
//	resolved, err := extractor.Resolve(ctx, "https://music.youtube.com/watch?v=...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Track: %s by %s\n", resolved.Track.Title, resolved.Track.Artist)
//
// YouTube Music URLs are rewritten to their plain YouTube equivalent
// before resolution. Among the offered streams, the audio-only format
// with the highest average bitrate is selected.
//
// # Downloading
//
//	err = extractor.Download(ctx, resolved, "/tmp/raw.webm", func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
//
// Progressive streams are fetched through chunked requests. When the
// chunked download is rejected with a 403, the download is retried as a
// single request, which usually passes. Videos without progressive
// audio formats fall back to their HLS manifest: the cheapest audio
// variant is selected and its segments are stitched into one file.
package youtube
