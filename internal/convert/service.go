package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/abema/go-mp4"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/ytmusic-downloader/internal/config"
)

// FFmpeg constants for transcode settings
const (
	// Audio codec per output format
	CodecAAC  = "aac"
	CodecMP3  = "libmp3lame"
	CodecFLAC = "flac"

	// Container flags
	FastStartFlag = "+faststart"
	ContainerM4A  = "ipod"

	// Executable and I/O constants
	FFmpegCommand      = "ffmpeg"
	FFprobeCommand     = "ffprobe"
	FFprobeLogLevel    = "error"
	ProgressPipeTarget = "pipe:1"
	ProgressTimePrefix = "out_time_us="
	ProgressEndLine    = "progress=end"

	// stderrTailLines bounds how much ffmpeg log output is kept for
	// error reporting
	stderrTailLines = 12
)

// Request describes a single transcode.
type Request struct {
	InputPath  string
	OutputPath string
	Format     string // m4a, mp3 or flac
	Bitrate    string // e.g. "256k", ignored for flac
}

// Service runs ffmpeg to transcode raw audio streams into the
// configured output format.
type Service struct{}

// NewService creates a new transcode service.
func NewService() *Service {
	return &Service{}
}

// Available reports whether the required external binaries can be found.
func (s *Service) Available() error {
	for _, bin := range []string{FFmpegCommand, FFprobeCommand} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found in PATH: %w", bin, err)
		}
	}
	return nil
}

// Convert transcodes the request input into the requested format.
//
// Progress is reported as (seconds transcoded, total seconds). When the
// input duration cannot be probed, conversion still runs but no
// progress is reported.
func (s *Service) Convert(ctx context.Context, req Request, onProgress func(done, total float64)) error {
	if _, err := os.Stat(req.InputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	args, err := BuildArgs(req)
	if err != nil {
		return err
	}

	duration, err := s.probeDuration(ctx, req.InputPath)
	if err != nil {
		// Progress reporting degrades, the conversion itself can proceed
		duration = 0
	}

	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	// Progress arrives on stdout, the log tail for error reporting on
	// stderr. Both pipes must be drained before Wait reaps the process.
	var tail []string
	g := new(errgroup.Group)
	g.Go(func() error {
		scanProgress(stdout, duration, onProgress)
		return nil
	})
	g.Go(func() error {
		tail = collectTail(stderr)
		return nil
	})
	g.Wait()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg failed: %w (%s)", err, strings.Join(tail, " | "))
	}

	if req.Format == config.FormatM4A {
		if err := verifyM4A(req.OutputPath); err != nil {
			return fmt.Errorf("verifying output: %w", err)
		}
	}

	return nil
}

// BuildArgs builds the ffmpeg argument list for a transcode request.
//
// All variants strip video streams and drop source metadata, so that
// tags can be written in a controlled pass afterwards. An empty bitrate
// leaves the encoder default in place.
func BuildArgs(req Request) ([]string, error) {
	args := []string{
		"-y",                // Overwrite output file
		"-i", req.InputPath, // Input file
		"-vn",                 // Strip video and thumbnail streams
		"-map_metadata", "-1", // Drop source metadata
	}

	switch req.Format {
	case config.FormatM4A:
		args = append(args, "-c:a", CodecAAC)
		if req.Bitrate != "" {
			args = append(args, "-b:a", req.Bitrate)
		}
		args = append(args,
			"-movflags", FastStartFlag, // Streaming friendly M4A
			"-f", ContainerM4A, // .m4a needs an explicit container selection
		)
	case config.FormatMP3:
		args = append(args, "-c:a", CodecMP3)
		if req.Bitrate != "" {
			args = append(args, "-b:a", req.Bitrate)
		}
	case config.FormatFLAC:
		args = append(args, "-c:a", CodecFLAC)
	default:
		return nil, fmt.Errorf("unsupported audio format: %q", req.Format)
	}

	args = append(args,
		"-progress", ProgressPipeTarget, // Machine readable progress on stdout
		"-nostats", // No interactive stats on stderr
		req.OutputPath,
	)

	return args, nil
}

// probeDuration asks ffprobe for the input duration in seconds.
func (s *Service) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-print_format", "json",
		"-show_format",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("running ffprobe: %w", err)
	}

	return parseProbeDuration(output)
}

// parseProbeDuration extracts format.duration from ffprobe JSON output.
func parseProbeDuration(output []byte) (float64, error) {
	duration := gjson.GetBytes(output, "format.duration")
	if !duration.Exists() {
		return 0, fmt.Errorf("ffprobe output carries no duration")
	}

	value := duration.Float()
	if value <= 0 {
		return 0, fmt.Errorf("invalid duration %q", duration.String())
	}

	return value, nil
}

// scanProgress parses the ffmpeg progress stream.
//
// Lines look like "out_time_us=123456". The terminating "progress=end"
// line reports completion even when the last time update fell short of
// the probed duration.
func scanProgress(r io.Reader, totalDuration float64, onProgress func(done, total float64)) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == ProgressEndLine && totalDuration > 0 && onProgress != nil {
			onProgress(totalDuration, totalDuration)
			continue
		}

		if !strings.HasPrefix(line, ProgressTimePrefix) {
			continue
		}

		timeMicroseconds, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil {
			continue
		}

		if totalDuration > 0 && onProgress != nil {
			timeSeconds := float64(timeMicroseconds) / 1000000.0
			if timeSeconds > totalDuration {
				timeSeconds = totalDuration
			}
			onProgress(timeSeconds, totalDuration)
		}
	}
}

// collectTail drains a reader, keeping the last few non-empty lines.
func collectTail(r io.Reader) []string {
	scanner := bufio.NewScanner(r)

	var tail []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}

	return tail
}

// verifyM4A probes the produced container and checks that it carries an
// AAC audio track.
func verifyM4A(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := mp4.Probe(file)
	if err != nil {
		return fmt.Errorf("probing container: %w", err)
	}

	for _, track := range info.Tracks {
		if track.Codec == mp4.CodecMP4A {
			return nil
		}
	}

	return fmt.Errorf("no AAC audio track in %s", path)
}
