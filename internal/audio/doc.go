// Package audio writes metadata tags to downloaded audio files.
//
// # Tagging
//
// Use the Tagger to write track metadata after conversion:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, track, artworkBytes)
//
// The tagger supports:
//   - Title, Artist, Album Artist
//   - Album, Genre, Year
//   - Cover Art (embedded front cover)
//
// The file extension selects the container. M4A files get iTunes-style
// atoms, MP3 files get ID3v2 frames, FLAC files get Vorbis comments
// plus a picture block.
//
// # Field Control
//
// Every field carries a TagEditAction, so callers can replace, clear
// or preserve it independently. The master switch TagConfig.ModifyTags
// disables all text updates at once while still allowing cover art to
// be embedded.
package audio
