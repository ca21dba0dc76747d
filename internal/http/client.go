package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client wraps HTTP operations for fetching thumbnails and stream data.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Streaming downloads with progress tracking
//
// Example usage:
//
//	client := NewClient(60 * time.Second)
//
//	// Fetch a thumbnail into memory
//	img, err := client.DownloadBytes(ctx, thumbnailURL)
//
//	// Stream a segment into an open file
//	n, err := client.Download(ctx, segmentURL, file)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given request timeout.
//
// The client is configured with:
//   - The supplied per-request timeout
//   - "ytmusic-downloader" User-Agent header
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "ytmusic-downloader",
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
// When a Limiter is set, intermediate updates are rate limited; the
// update that completes the download is always delivered.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer:  file,
//	    Total:   contentLength,
//	    Limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, stream)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// Limiter optionally rate limits OnUpdate calls. Nil means every
	// Write triggers an update.
	Limiter *rate.Limiter

	// OnUpdate is called with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil && pw.shouldUpdate() {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

func (pw *ProgressWriter) shouldUpdate() bool {
	if pw.Limiter == nil {
		return true
	}
	// The completing update must never be dropped
	if pw.Total > 0 && pw.Written >= pw.Total {
		return true
	}
	return pw.Limiter.Allow()
}

// Get performs a GET request and returns the response body as bytes.
//
// The request includes the configured User-Agent header.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/playlist.m3u8")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// Download performs a GET request and streams the response body into the
// given writer, avoiding loading the content into memory.
//
// Returns the number of bytes written.
//
// Example:
//
//	n, err := client.Download(ctx, segmentURL, file)
func (c *Client) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return io.Copy(w, resp.Body)
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like cover art images. For large files,
// use Download to stream directly to disk.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, thumbnailURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
