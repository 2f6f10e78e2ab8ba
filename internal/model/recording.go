package model

import (
	"regexp"
	"strings"
)

// AudioExtension is the file extension used for downloaded recordings.
// xeno-canto serves all audio through its download endpoint as MP3.
const AudioExtension = ".mp3"

// NA is the textual representation of a missing field value in CSV output.
// Fields that were absent from the API payload round-trip through CSV as NA.
const NA = "NA"

// Recording represents one xeno-canto recording's metadata.
//
// Every field except ID is optional: the search API omits keys that have no
// value for a given recording, and an omitted key is represented as a nil
// pointer. A present-but-empty value (common for Latitude/Longitude) is a
// pointer to the empty string, which is distinct from nil.
//
// SoundFileName is derived, not part of the API payload. It is empty until
// Manifest.DeriveFilenames has run.
//
// Example:
//
//	rec := &model.Recording{ID: "101", Genus: model.Ptr("Phaethornis")}
//	rec.Genus != nil  // field was present
//	rec.Locality == nil // field was missing from the payload
type Recording struct {
	// ID is the unique identifier assigned by the xeno-canto catalog.
	// It is mandatory and unique within a Manifest.
	ID string

	Genus            *string
	SpecificEpithet  *string
	Subspecies       *string
	EnglishName      *string
	Recordist        *string
	Country          *string
	Locality         *string
	Latitude         *string
	Longitude        *string
	VocalizationType *string
	AudioFile        *string
	License          *string
	URL              *string
	Quality          *string
	Time             *string
	Date             *string

	// SoundFileName is the derived local filename for the audio download,
	// including the extension.
	SoundFileName string

	// SonogramURL is the full-size sonogram image URL, if the API provided
	// one. It is carried for the optional sonogram download and is not a
	// manifest column.
	SonogramURL string
}

// Canonical manifest column names, in order. sound_file_name is appended
// only after filenames have been derived.
const (
	ColRecordingID      = "Recording_ID"
	ColGenus            = "Genus"
	ColSpecificEpithet  = "Specific_epithet"
	ColSubspecies       = "Subspecies"
	ColEnglishName      = "English_name"
	ColRecordist        = "Recordist"
	ColCountry          = "Country"
	ColLocality         = "Locality"
	ColLatitude         = "Latitude"
	ColLongitude        = "Longitude"
	ColVocalizationType = "Vocalization_type"
	ColAudioFile        = "Audio_file"
	ColLicense          = "License"
	ColURL              = "Url"
	ColQuality          = "Quality"
	ColTime             = "Time"
	ColDate             = "Date"
	ColSoundFileName    = "sound_file_name"
)

// Columns returns the canonical column order for the 17 metadata fields,
// excluding sound_file_name.
func Columns() []string {
	return []string{
		ColRecordingID, ColGenus, ColSpecificEpithet, ColSubspecies,
		ColEnglishName, ColRecordist, ColCountry, ColLocality,
		ColLatitude, ColLongitude, ColVocalizationType, ColAudioFile,
		ColLicense, ColURL, ColQuality, ColTime, ColDate,
	}
}

// Field returns a pointer to the optional field backing the named column,
// or false if the column name is unknown. Recording_ID and sound_file_name
// are not addressable through Field; they are mandatory strings handled
// separately.
func (r *Recording) Field(column string) (**string, bool) {
	switch column {
	case ColGenus:
		return &r.Genus, true
	case ColSpecificEpithet:
		return &r.SpecificEpithet, true
	case ColSubspecies:
		return &r.Subspecies, true
	case ColEnglishName:
		return &r.EnglishName, true
	case ColRecordist:
		return &r.Recordist, true
	case ColCountry:
		return &r.Country, true
	case ColLocality:
		return &r.Locality, true
	case ColLatitude:
		return &r.Latitude, true
	case ColLongitude:
		return &r.Longitude, true
	case ColVocalizationType:
		return &r.VocalizationType, true
	case ColAudioFile:
		return &r.AudioFile, true
	case ColLicense:
		return &r.License, true
	case ColURL:
		return &r.URL, true
	case ColQuality:
		return &r.Quality, true
	case ColTime:
		return &r.Time, true
	case ColDate:
		return &r.Date, true
	}
	return nil, false
}

// ScientificName returns "Genus epithet" built from whichever parts are
// present, or the empty string if neither is.
func (r *Recording) ScientificName() string {
	var parts []string
	if r.Genus != nil && *r.Genus != "" {
		parts = append(parts, *r.Genus)
	}
	if r.SpecificEpithet != nil && *r.SpecificEpithet != "" {
		parts = append(parts, *r.SpecificEpithet)
	}
	return strings.Join(parts, " ")
}

// Ptr returns a pointer to s. Convenience for building optional fields.
func Ptr(s string) *string {
	return &s
}

// Deref returns the value behind p, or NA if p is nil.
func Deref(p *string) string {
	if p == nil {
		return NA
	}
	return *p
}

// sanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func sanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	name = strings.TrimRight(name, " ")

	return name
}
