// Package download provides the orchestration logic for turning a
// YouTube URL into a tagged audio file.
//
// # Pipeline
//
// The Pipeline coordinates the entire process for a single track:
//
//  1. Resolve video metadata and pick the best audio stream
//  2. Download the stream into a temp file
//  3. Convert it with ffmpeg into the configured format
//  4. Fetch the thumbnail and crop it into square cover art
//  5. Write metadata tags and embed the artwork
//  6. Move the finished file into the downloads folder
//  7. Remove all intermediate files
//
// # Basic Usage
//
//	pipeline, err := download.NewPipeline(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := pipeline.Run(ctx, "https://music.youtube.com/watch?v=...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("saved to", path)
//
// # Stages
//
// A run moves through the model.Stage values Downloading, Converting,
// FetchingArt, Tagging and CleaningUp, ending in Done or Failed. Errors
// are returned as *StageError, so callers can tell which stage broke:
//
//	var stageErr *download.StageError
//	if errors.As(err, &stageErr) {
//	    fmt.Println("failed while", stageErr.Stage)
//	}
//
// A failed artwork fetch is the exception. It degrades the run to a
// file without embedded cover art instead of failing it.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives
// ProgressEvent:
//
//	type ProgressEvent struct {
//	    Stage   model.Stage
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Percent float64       // set on ticks with an empty Message
//	}
//
// # Retry Logic
//
// Failed stream downloads are automatically retried with exponential
// backoff, configurable via settings.DownloadMaxRetries and
// settings.DownloadRetryCooldown.
//
// # Cleanup
//
// Intermediate files carry a per-run prefix in the temp directory and
// are removed before Run returns, on success and on failure alike.
// Removal problems only produce warnings.
package download
