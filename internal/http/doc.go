// Package http provides the HTTP client used for thumbnail and stream
// segment downloads.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Streaming downloads into arbitrary writers
//   - In-memory downloads for small files
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(60 * time.Second)
//
//	// Fetch cover art into memory
//	img, err := client.DownloadBytes(ctx, thumbnailURL)
//
//	// Stream a segment into an open file
//	n, err := client.Download(ctx, segmentURL, file)
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress
// tracking. Updates can be rate limited so that frontends are not
// flooded by per-chunk callbacks:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    Limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
