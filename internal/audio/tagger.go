package audio

import (
	"os"

	"github.com/bogem/id3v2"
	"github.com/soundsafari/xenocanto-dl/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the manifest.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// This allows fine-grained control over which tags are written
// when processing downloaded recordings.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Title:      TagModify, // English name + vocalization type
//	    Artist:     TagModify, // recordist
//	    Album:      TagModify, // scientific name
//	    Date:       TagModify, // recording date
//	    Comment:    TagModify, // locality and country
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no tags are modified.
	ModifyTags bool

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// Comment controls the COMM (Comments) frame.
	Comment TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every frame is
// written from manifest metadata.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Title:      TagModify,
		Artist:     TagModify,
		Album:      TagModify,
		Date:       TagModify,
		Comment:    TagModify,
	}
}

// Tagger writes ID3 tags to downloaded MP3 files from manifest metadata.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading a recording
//	err := tagger.SaveTags(path, rec)
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

// SaveTags writes ID3 tags to the recording's MP3 file.
//
// Frames written (subject to TagConfig):
//   - TIT2: English name, with the vocalization type appended
//   - TPE1: recordist
//   - TALB: scientific name ("Genus epithet")
//   - TDRC: recording date
//   - COMM: locality and country
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, rec *model.Recording) error {
	if !t.config.ModifyTags {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// If file doesn't have tags, create new
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	t.updateStringTags(tag, rec)

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, rec *model.Recording) {
	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(TitleFor(rec))
	}

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		if rec.Recordist != nil {
			tag.SetArtist(*rec.Recordist)
		}
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		if name := rec.ScientificName(); name != "" {
			tag.SetAlbum(name)
		}
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if rec.Date != nil && *rec.Date != "" {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, *rec.Date)
		}
	}

	// Comment (COMM)
	switch t.config.Comment {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if text := locationComment(rec); text != "" {
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        text,
			})
		}
	}
}

// TitleFor builds a human-readable title for a recording: the English name
// (or scientific name, or bare ID) with the vocalization type appended.
func TitleFor(rec *model.Recording) string {
	title := ""
	if rec.EnglishName != nil && *rec.EnglishName != "" {
		title = *rec.EnglishName
	} else if name := rec.ScientificName(); name != "" {
		title = name
	} else {
		title = "XC" + rec.ID
	}

	if rec.VocalizationType != nil && *rec.VocalizationType != "" {
		title += " (" + *rec.VocalizationType + ")"
	}
	return title
}

// locationComment builds the COMM text from locality and country.
func locationComment(rec *model.Recording) string {
	text := ""
	if rec.Locality != nil && *rec.Locality != "" {
		text = *rec.Locality
	}
	if rec.Country != nil && *rec.Country != "" {
		if text != "" {
			text += ", "
		}
		text += *rec.Country
	}
	return text
}
