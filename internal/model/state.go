package model

// Stage identifies a phase of the single track download pipeline.
//
// A run starts at StageIdle and moves through the active stages in
// order. StageFetchingArt is skipped when cover art handling is
// disabled. StageCleaningUp always runs, after success and after
// failure, so that no temporary files survive a run. Every run ends
// at exactly one of the terminal stages StageDone or StageFailed.
type Stage string

const (
	// StageIdle is the initial stage before a run starts.
	StageIdle Stage = "idle"

	// StageDownloading covers URL resolution, stream selection and the
	// download of the raw audio stream.
	StageDownloading Stage = "downloading"

	// StageConverting covers the transcode of the raw stream into the
	// configured output format.
	StageConverting Stage = "converting"

	// StageFetchingArt covers thumbnail download and square cropping.
	StageFetchingArt Stage = "fetching_art"

	// StageTagging covers metadata and cover art embedding.
	StageTagging Stage = "tagging"

	// StageCleaningUp covers the removal of temporary artifacts.
	StageCleaningUp Stage = "cleaning_up"

	// StageDone is the terminal stage of a successful run.
	StageDone Stage = "done"

	// StageFailed is the terminal stage of a failed run.
	StageFailed Stage = "failed"
)

// IsTerminal reports whether the stage allows no further transitions.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed
}

// String returns the stage identifier.
func (s Stage) String() string {
	return string(s)
}

// Label returns a human readable description of the stage.
func (s Stage) Label() string {
	switch s {
	case StageIdle:
		return "Waiting"
	case StageDownloading:
		return "Downloading audio"
	case StageConverting:
		return "Converting audio"
	case StageFetchingArt:
		return "Fetching cover art"
	case StageTagging:
		return "Writing tags"
	case StageCleaningUp:
		return "Cleaning up"
	case StageDone:
		return "Done"
	case StageFailed:
		return "Failed"
	}
	return string(s)
}
