package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/handiism/ytmusic-downloader/internal/audio"
	"github.com/handiism/ytmusic-downloader/internal/config"
	"github.com/handiism/ytmusic-downloader/internal/convert"
	"github.com/handiism/ytmusic-downloader/internal/http"
	ioutils "github.com/handiism/ytmusic-downloader/internal/io"
	"github.com/handiism/ytmusic-downloader/internal/model"
	"github.com/handiism/ytmusic-downloader/internal/youtube"
)

// tempPrefix marks every intermediate file the pipeline creates.
const tempPrefix = "ytm-"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
//
// Stage transitions and log lines carry a Message. Percent ticks carry
// an empty Message and a Percent between 0 and 1.
type ProgressEvent struct {
	Stage   model.Stage
	Message string
	Level   ProgressLevel
	Percent float64
}

// StageError records the pipeline stage an error occurred in.
type StageError struct {
	Stage model.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", stageNoun(e.Stage), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageNoun(stage model.Stage) string {
	switch stage {
	case model.StageDownloading:
		return "download"
	case model.StageConverting:
		return "conversion"
	case model.StageFetchingArt:
		return "artwork fetch"
	case model.StageTagging:
		return "tag write"
	case model.StageCleaningUp:
		return "cleanup"
	default:
		return "pipeline"
	}
}

// Extractor resolves video metadata and downloads the audio stream.
type Extractor interface {
	Resolve(ctx context.Context, rawURL string) (*youtube.ResolvedTrack, error)
	Download(ctx context.Context, resolved *youtube.ResolvedTrack, destPath string, onProgress func(written, total int64)) error
}

// Converter transcodes a downloaded stream into the output format.
type Converter interface {
	Available() error
	Convert(ctx context.Context, req convert.Request, onProgress func(done, total float64)) error
}

// Tagger writes metadata to the converted file.
type Tagger interface {
	SaveTags(path string, track *model.Track, artwork []byte) error
}

// Pipeline coordinates a single track download.
//
// A run moves through the stages Downloading, Converting, FetchingArt,
// Tagging and CleaningUp. Intermediate files live in the configured
// temp directory and are removed at the end of every run, whether it
// succeeded or not.
type Pipeline struct {
	settings     *config.Settings
	extractor    Extractor
	converter    Converter
	tagger       Tagger
	httpClient   *http.Client
	imageService *ioutils.ImageService

	stage model.Stage
	temps []string
	runID string

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewPipeline creates a new download Pipeline.
//
// The settings are validated up front, so a misconfigured format or
// filename pattern surfaces before any network traffic.
func NewPipeline(settings *config.Settings, onProgress func(ProgressEvent)) (*Pipeline, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags

	return &Pipeline{
		settings:     settings,
		extractor:    youtube.NewExtractor(settings.HTTPTimeout(), settings.ToTrackConfig()),
		converter:    convert.NewService(),
		tagger:       audio.NewTagger(tagCfg),
		httpClient:   http.NewClient(settings.ThumbnailTimeout()),
		imageService: ioutils.NewImageService(settings.CoverArtMaxSize, settings.CoverArtJPEGQuality),
		stage:        model.StageIdle,
		onProgress:   onProgress,
	}, nil
}

// Resolve fetches track metadata without downloading anything.
func (p *Pipeline) Resolve(ctx context.Context, rawURL string) (*model.Track, error) {
	resolved, err := p.extractor.Resolve(ctx, rawURL)
	if err != nil {
		return nil, &StageError{Stage: model.StageDownloading, Err: err}
	}
	return resolved.Track, nil
}

// Run downloads the track behind rawURL and returns the path of the
// finished audio file.
//
// Temp files are cleaned up before Run returns, also when a stage
// failed. The returned error is a *StageError carrying the stage that
// caused the failure.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	p.mu.Lock()
	p.runID = id.String()
	p.temps = nil
	p.mu.Unlock()

	outputPath, runErr := p.run(ctx, rawURL)

	p.cleanup()

	if runErr != nil {
		p.setStage(model.StageFailed)
		return "", runErr
	}

	p.setStage(model.StageDone)
	return outputPath, nil
}

// Stage returns the stage the pipeline is currently in.
func (p *Pipeline) Stage() model.Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stage
}

func (p *Pipeline) run(ctx context.Context, rawURL string) (string, error) {
	p.setStage(model.StageDownloading)

	if err := ioutils.EnsureDir(p.settings.TempPath); err != nil {
		return "", &StageError{Stage: model.StageDownloading, Err: fmt.Errorf("preparing temp directory: %w", err)}
	}

	resolved, err := p.extractor.Resolve(ctx, rawURL)
	if err != nil {
		return "", &StageError{Stage: model.StageDownloading, Err: err}
	}

	track := resolved.Track
	p.progress(ProgressEvent{Stage: model.StageDownloading, Message: fmt.Sprintf("Found: %s - %s", track.Artist, track.Title), Level: LevelInfo})
	p.progress(ProgressEvent{Stage: model.StageDownloading, Message: fmt.Sprintf("Stream: %s", resolved.FormatDescription()), Level: LevelVerbose})

	sourcePath := p.tempPath("source" + resolved.SourceExt())
	p.registerTemp(sourcePath)

	if err := p.downloadSource(ctx, resolved, sourcePath); err != nil {
		return "", &StageError{Stage: model.StageDownloading, Err: err}
	}

	p.setStage(model.StageConverting)

	if err := p.converter.Available(); err != nil {
		return "", &StageError{Stage: model.StageConverting, Err: err}
	}

	convertedPath := p.tempPath("converted" + p.settings.Extension())
	p.registerTemp(convertedPath)

	err = p.converter.Convert(ctx, convert.Request{
		InputPath:  sourcePath,
		OutputPath: convertedPath,
		Format:     p.settings.AudioFormat,
		Bitrate:    p.settings.AudioBitrate,
	}, func(done, total float64) {
		if total > 0 {
			p.progress(ProgressEvent{Stage: model.StageConverting, Level: LevelVerbose, Percent: done / total})
		}
	})
	if err != nil {
		return "", &StageError{Stage: model.StageConverting, Err: err}
	}

	var artwork []byte
	if p.settings.SaveCoverArtInTags || p.settings.SaveCoverArtInFolder {
		p.setStage(model.StageFetchingArt)

		artwork, err = p.fetchArtwork(ctx, resolved.Thumbnails)
		if err != nil {
			// Cover art never fails the run
			p.progress(ProgressEvent{Stage: model.StageFetchingArt, Message: fmt.Sprintf("Cover art unavailable: %v", err), Level: LevelWarning})
			artwork = nil
		}
	}

	p.setStage(model.StageTagging)

	var tagArtwork []byte
	if p.settings.SaveCoverArtInTags {
		tagArtwork = artwork
	}

	if p.settings.ModifyTags || tagArtwork != nil {
		if err := p.tagger.SaveTags(convertedPath, track, tagArtwork); err != nil {
			return "", &StageError{Stage: model.StageTagging, Err: err}
		}
	}

	if err := ioutils.EnsureDir(filepath.Dir(track.Path)); err != nil {
		return "", &StageError{Stage: model.StageTagging, Err: fmt.Errorf("preparing output directory: %w", err)}
	}

	outputPath := ioutils.NextAvailablePath(track.Path)
	if err := ioutils.MoveFile(ctx, convertedPath, outputPath); err != nil {
		return "", &StageError{Stage: model.StageTagging, Err: fmt.Errorf("publishing output: %w", err)}
	}

	if p.settings.SaveCoverArtInFolder && artwork != nil {
		if err := ioutils.WriteFile(ctx, artworkPath(outputPath), artwork); err != nil {
			p.progress(ProgressEvent{Stage: model.StageTagging, Message: fmt.Sprintf("Could not save folder artwork: %v", err), Level: LevelWarning})
		}
	}

	p.progress(ProgressEvent{Stage: model.StageTagging, Message: fmt.Sprintf("Downloaded: %s", filepath.Base(outputPath)), Level: LevelSuccess})
	return outputPath, nil
}

// downloadSource fetches the audio stream with retries.
func (p *Pipeline) downloadSource(ctx context.Context, resolved *youtube.ResolvedTrack, destPath string) error {
	var err error
	for tries := 0; tries < p.settings.DownloadMaxRetries; tries++ {
		err = p.extractor.Download(ctx, resolved, destPath, func(written, total int64) {
			if total > 0 {
				p.progress(ProgressEvent{Stage: model.StageDownloading, Level: LevelVerbose, Percent: float64(written) / float64(total)})
			}
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		p.progress(ProgressEvent{Stage: model.StageDownloading, Message: fmt.Sprintf("Retry %d/%d: %v", tries+1, p.settings.DownloadMaxRetries, err), Level: LevelWarning})
		p.waitForRetry(ctx, tries)
	}
	return err
}

// fetchArtwork downloads the first reachable thumbnail and crops it
// into cover art.
//
// Candidates are ordered largest first. A candidate that cannot be
// fetched is skipped in favor of the next smaller one.
func (p *Pipeline) fetchArtwork(ctx context.Context, candidates []string) ([]byte, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no thumbnails available")
	}

	var raw []byte
	var err error
	for _, candidate := range candidates {
		raw, err = p.httpClient.DownloadBytes(ctx, candidate)
		if err == nil {
			break
		}
		p.progress(ProgressEvent{Stage: model.StageFetchingArt, Message: fmt.Sprintf("Thumbnail unavailable, trying next: %v", err), Level: LevelVerbose})
	}
	if err != nil {
		return nil, err
	}

	artwork, err := p.imageService.PrepareCoverArt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("processing thumbnail: %w", err)
	}

	return artwork, nil
}

// cleanup removes every intermediate file of the current run.
//
// Removal problems are reported as warnings and never fail the run.
func (p *Pipeline) cleanup() {
	p.setStage(model.StageCleaningUp)

	p.mu.RLock()
	temps := make([]string, len(p.temps))
	copy(temps, p.temps)
	runID := p.runID
	tempDir := p.settings.TempPath
	p.mu.RUnlock()

	// Pick up anything else this run left in the temp directory
	if strays, err := filepath.Glob(filepath.Join(tempDir, tempPrefix+runID+"-*")); err == nil {
		temps = append(temps, strays...)
	}

	for _, path := range temps {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			p.progress(ProgressEvent{Stage: model.StageCleaningUp, Message: fmt.Sprintf("Could not remove %s: %v", path, err), Level: LevelWarning})
		}
	}
}

// tempPath builds the path of an intermediate file for the current run.
func (p *Pipeline) tempPath(suffix string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return filepath.Join(p.settings.TempPath, tempPrefix+p.runID+"-"+suffix)
}

func (p *Pipeline) registerTemp(path string) {
	p.mu.Lock()
	p.temps = append(p.temps, path)
	p.mu.Unlock()
}

func (p *Pipeline) setStage(stage model.Stage) {
	p.mu.Lock()
	p.stage = stage
	p.mu.Unlock()
	p.progress(ProgressEvent{Stage: stage, Message: stage.Label(), Level: LevelInfo})
}

func (p *Pipeline) waitForRetry(ctx context.Context, tries int) {
	cooldown := p.settings.DownloadRetryCooldown * math.Pow(p.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (p *Pipeline) progress(event ProgressEvent) {
	if p.onProgress != nil {
		p.onProgress(event)
	}
}

// artworkPath derives the folder artwork path from the audio file path.
func artworkPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".jpg"
}
