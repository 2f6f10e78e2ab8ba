package audio

import (
	"fmt"
	"strings"

	"github.com/soundsafari/xenocanto-dl/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case FormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

// PlaylistCreator generates playlist files listing the downloaded
// recordings of a manifest.
//
// The output is a string that can be written to a file. Entries are
// relative (just the filename), assuming the playlist file sits in the
// download directory next to the audio files.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(manifest)
//	os.WriteFile(filepath.Join(dir, "recordings.m3u"), []byte(content), 0644)
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with title info
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for a manifest. Rows without a
// derived filename are skipped.
func (p *PlaylistCreator) CreatePlaylist(m *model.Manifest) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(m)
	default:
		return p.createM3U(m)
	}
}

// createM3U generates an M3U playlist.
//
// Standard M3U format:
//
//	filename1.mp3
//	filename2.mp3
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:-1,Recordist - English Name (call)
//	filename1.mp3
func (p *PlaylistCreator) createM3U(m *model.Manifest) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, rec := range m.Rows {
		if rec.SoundFileName == "" {
			continue
		}
		if p.extended {
			// Recording durations are not part of the manifest; -1 marks
			// an unknown length in extended M3U.
			sb.WriteString(fmt.Sprintf("#EXTINF:-1,%s\n", entryTitle(rec)))
		}
		sb.WriteString(rec.SoundFileName + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Recordist - English Name
//	Length1=-1
//	NumberOfEntries=2
//	Version=2
func (p *PlaylistCreator) createPLS(m *model.Manifest) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	entries := 0
	for _, rec := range m.Rows {
		if rec.SoundFileName == "" {
			continue
		}
		entries++
		sb.WriteString(fmt.Sprintf("File%d=%s\n", entries, rec.SoundFileName))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", entries, entryTitle(rec)))
		sb.WriteString(fmt.Sprintf("Length%d=-1\n", entries))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// entryTitle builds the display title for a playlist entry.
func entryTitle(rec *model.Recording) string {
	title := TitleFor(rec)
	if rec.Recordist != nil && *rec.Recordist != "" {
		return *rec.Recordist + " - " + title
	}
	return title
}
