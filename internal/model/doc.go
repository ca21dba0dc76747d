// Package model defines the core data structures used throughout
// the ytmusic-downloader application.
//
// # Track
//
// Track represents a single video resolved into audio metadata together
// with its computed output path:
//
//	track := model.NewTrack(videoID, "Title", "Artist", "Album", "Pop", "2009", 213, thumbURL, trackConfig)
//	fmt.Println(track.Path) // Where the finished audio file goes
//
// # Path Configuration
//
// TrackConfig controls how output paths are computed using placeholders:
//
//	cfg := &model.TrackConfig{
//	    DownloadsPath:  "/music",
//	    FileNameFormat: "{artist} - {title}",
//	    Extension:      ".m4a",
//	}
//
// Available placeholders: {id}, {title}, {artist}, {album}, {year}
//
// # Stages
//
// Stage models the pipeline state machine. A run starts at StageIdle,
// moves through the active stages and always ends at StageDone or
// StageFailed. StageCleaningUp runs on both the success and the failure
// path.
package model
