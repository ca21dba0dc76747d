package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/handiism/ytmusic-downloader/internal/model"
)

// TagEditAction defines how to handle individual metadata fields.
//
// Each field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the field value.
	TagEmpty TagEditAction = iota

	// TagModify updates the field with the value from YouTube.
	TagModify

	// TagDoNotModify leaves the existing field value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each metadata field.
//
// This allows fine-grained control over which fields are written
// when processing downloaded audio files.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Title:       TagModify,      // Update title from YouTube
//	    Artist:      TagModify,      // Update artist from the channel
//	    Album:       TagModify,      // Update album
//	    Genre:       TagEmpty,       // Clear any existing genre
//	    AlbumArtist: TagDoNotModify, // Keep existing album artist
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text fields are modified.
	ModifyTags bool

	// Title controls the track title field.
	Title TagEditAction

	// Artist controls the lead artist field.
	Artist TagEditAction

	// Album controls the album title field.
	Album TagEditAction

	// AlbumArtist controls the album artist field.
	AlbumArtist TagEditAction

	// Genre controls the genre field.
	Genre TagEditAction

	// Year controls the release year field.
	Year TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// By default every field is set to TagModify, which writes the
// metadata resolved from YouTube.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Title:       TagModify,
		Artist:      TagModify,
		Album:       TagModify,
		AlbumArtist: TagModify,
		Genre:       TagModify,
		Year:        TagModify,
	}
}

// Tagger writes metadata to downloaded audio files.
//
// The container format is chosen from the file extension. Supported
// are M4A (iTunes-style atoms), MP3 (ID3v2 frames) and FLAC (Vorbis
// comments). Each variant can embed JPEG cover art as a front cover
// picture.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After converting the track
//	err := tagger.SaveTags(path, track, artworkBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes metadata and embedded cover art to the audio file at
// path.
//
// Parameters:
//   - path: The audio file to modify, its extension selects the container
//   - track: The track providing title, artist, album, genre and year
//   - artwork: JPEG image bytes for cover art (nil to skip artwork)
//
// Returns an error if the container is unsupported or the file cannot
// be updated.
func (t *Tagger) SaveTags(path string, track *model.Track, artwork []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m4a":
		return t.saveMP4(path, track, artwork)
	case ".mp3":
		return t.saveMP3(path, track, artwork)
	case ".flac":
		return t.saveFLAC(path, track, artwork)
	default:
		return fmt.Errorf("unsupported container: %q", filepath.Ext(path))
	}
}

// saveMP4 writes iTunes-style metadata atoms to an M4A file.
func (t *Tagger) saveMP4(path string, track *model.Track, artwork []byte) error {
	mp4, err := mp4tag.Open(path)
	if err != nil {
		return fmt.Errorf("opening container: %w", err)
	}
	defer mp4.Close()

	tags := &mp4tag.MP4Tags{}
	var deletes []string

	if t.config.ModifyTags {
		switch t.config.Title {
		case TagEmpty:
			deletes = append(deletes, "title")
		case TagModify:
			tags.Title = track.Title
		}

		switch t.config.Artist {
		case TagEmpty:
			deletes = append(deletes, "artist")
		case TagModify:
			tags.Artist = track.Artist
		}

		switch t.config.Album {
		case TagEmpty:
			deletes = append(deletes, "album")
		case TagModify:
			tags.Album = track.Album
		}

		switch t.config.AlbumArtist {
		case TagEmpty:
			deletes = append(deletes, "album_artist")
		case TagModify:
			tags.AlbumArtist = track.Artist
		}

		// Free-text genre atom, the standard one only takes ID3v1 indices
		switch t.config.Genre {
		case TagEmpty:
			deletes = append(deletes, "genre")
		case TagModify:
			tags.CustomGenre = track.Genre
		}

		switch t.config.Year {
		case TagEmpty:
			deletes = append(deletes, "date")
		case TagModify:
			tags.Date = track.Year
		}
	}

	if artwork != nil {
		tags.Pictures = []*mp4tag.MP4Picture{{Data: artwork}}
	}

	return mp4.Write(tags, deletes)
}

// saveMP3 writes ID3v2 frames to an MP3 file.
func (t *Tagger) saveMP3(path string, track *model.Track, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateID3Frames(tag, track)
	}

	if artwork != nil {
		t.updateID3Artwork(tag, artwork)
	}

	return tag.Save()
}

// updateID3Frames updates text-based ID3 frames based on configuration.
func (t *Tagger) updateID3Frames(tag *id3v2.Tag, track *model.Track) {
	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(track.Title)
	}

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(track.Artist)
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(track.Album)
	}

	// Album Artist (TPE2)
	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, track.Artist)
	}

	// Genre (TCON)
	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(track.Genre)
	}

	// Year (TYER) plus the ID3v2.4 recording time (TDRC)
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
		tag.DeleteFrames("TDRC")
	case TagModify:
		if track.Year != "" {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, track.Year)
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, track.Year)
		}
	}
}

// updateID3Artwork embeds cover art as an attached picture frame.
func (t *Tagger) updateID3Artwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	// Add new artwork as front cover (APIC frame)
	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}

// saveFLAC writes Vorbis comments and a picture block to a FLAC file.
func (t *Tagger) saveFLAC(path string, track *model.Track, artwork []byte) error {
	file, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parsing stream: %w", err)
	}

	if t.config.ModifyTags {
		t.updateVorbisComments(file, track)
	}

	if artwork != nil {
		if err := updateFLACPicture(file, artwork); err != nil {
			return err
		}
	}

	return file.Save(path)
}

// updateVorbisComments rebuilds the Vorbis comment block.
//
// Unmanaged comments survive the rebuild. Managed fields follow their
// configured action: TagDoNotModify carries the existing value over,
// TagModify replaces it, TagEmpty drops it.
func (t *Tagger) updateVorbisComments(file *flac.File, track *model.Track) {
	fields := []struct {
		name   string
		value  string
		action TagEditAction
	}{
		{flacvorbis.FIELD_TITLE, track.Title, t.config.Title},
		{flacvorbis.FIELD_ARTIST, track.Artist, t.config.Artist},
		{flacvorbis.FIELD_ALBUM, track.Album, t.config.Album},
		{"ALBUMARTIST", track.Artist, t.config.AlbumArtist},
		{flacvorbis.FIELD_GENRE, track.Genre, t.config.Genre},
		{flacvorbis.FIELD_DATE, track.Year, t.config.Year},
	}

	managed := make(map[string]TagEditAction, len(fields))
	for _, f := range fields {
		managed[f.name] = f.action
	}

	cmtIdx := -1
	var existing *flacvorbis.MetaDataBlockVorbisComment
	for idx, block := range file.Meta {
		if block.Type == flac.VorbisComment {
			cmtIdx = idx
			if parsed, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
				existing = parsed
			}
			break
		}
	}

	cmt := flacvorbis.New()

	if existing != nil {
		for _, comment := range existing.Comments {
			parts := strings.SplitN(comment, "=", 2)
			if len(parts) != 2 {
				continue
			}
			action, tracked := managed[strings.ToUpper(parts[0])]
			if !tracked || action == TagDoNotModify {
				_ = cmt.Add(parts[0], parts[1])
			}
		}
	}

	for _, f := range fields {
		if f.action == TagModify && f.value != "" {
			_ = cmt.Add(f.name, f.value)
		}
	}

	cmtBlock := cmt.Marshal()
	if cmtIdx < 0 {
		file.Meta = append(file.Meta, &cmtBlock)
	} else {
		file.Meta[cmtIdx] = &cmtBlock
	}
}

// updateFLACPicture replaces all picture blocks with a single front cover.
func updateFLACPicture(file *flac.File, artwork []byte) error {
	picture, err := flacpicture.NewFromImageData(
		flacpicture.PictureTypeFrontCover,
		"Cover",
		artwork,
		"image/jpeg",
	)
	if err != nil {
		return fmt.Errorf("building picture block: %w", err)
	}
	pictureBlock := picture.Marshal()

	for i := len(file.Meta) - 1; i >= 0; i-- {
		if file.Meta[i].Type == flac.Picture {
			file.Meta = append(file.Meta[:i], file.Meta[i+1:]...)
		}
	}

	file.Meta = append(file.Meta, &pictureBlock)

	return nil
}
