// Package audio provides audio file manipulation services including
// ID3 tag writing and playlist generation for downloaded recordings.
//
// # ID3 Tagging
//
// Use the Tagger to write ID3 tags to downloaded MP3 files:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, rec)
//
// The tagger writes:
//   - Title (English name + vocalization type)
//   - Artist (recordist)
//   - Album (scientific name)
//   - Recording date
//   - Comment (locality and country)
//
// # Playlist Generation
//
// Generate playlists of all downloaded recordings:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(manifest)
//	os.WriteFile("recordings.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
