package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/soundsafari/xenocanto-dl/internal/model"
)

// DefaultDownloadURL is the public xeno-canto file download endpoint.
// Recordings are fetched as <url>?id=<Recording_ID>.
const DefaultDownloadURL = "https://xeno-canto.org/download.php"

// Settings holds all configuration options.
type Settings struct {
	// Endpoints
	SearchURL   string `json:"search_url"`
	DownloadURL string `json:"download_url"`

	// Download settings
	DownloadsPath          string   `json:"downloads_path"`
	MaxConcurrentDownloads int      `json:"max_concurrent_downloads"`
	FileNameFields         []string `json:"file_name_fields"`

	// Manifest settings
	WriteManifest    bool   `json:"write_manifest"`
	ManifestFileName string `json:"manifest_file_name"`

	// Sonogram settings
	DownloadSonograms    bool `json:"download_sonograms"`
	SonogramResize       bool `json:"sonogram_resize"`
	SonogramMaxSize      int  `json:"sonogram_max_size"`
	ConvertSonogramToJPG bool `json:"convert_sonogram_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls
	M3UExtended    bool   `json:"m3u_extended"`

	// Tag settings
	ModifyTags bool `json:"modify_tags"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		SearchURL:   "https://xeno-canto.org/api/2/recordings",
		DownloadURL: DefaultDownloadURL,

		DownloadsPath:          ".",
		MaxConcurrentDownloads: 1,
		FileNameFields:         []string{model.ColGenus, model.ColSpecificEpithet},

		WriteManifest:    false,
		ManifestFileName: "manifest.csv",

		DownloadSonograms:    false,
		SonogramResize:       false,
		SonogramMaxSize:      1000,
		ConvertSonogramToJPG: false,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: false,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks every setting the pipeline depends on. It runs before any
// network activity so configuration errors surface immediately.
func (s *Settings) Validate() error {
	if s.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("max_concurrent_downloads must be at least 1, got %d", s.MaxConcurrentDownloads)
	}

	for _, field := range s.FileNameFields {
		if field == model.ColRecordingID {
			continue
		}
		if _, ok := (&model.Recording{}).Field(field); !ok {
			return fmt.Errorf("unknown file name field %q", field)
		}
	}

	for _, endpoint := range []struct {
		name string
		u    string
	}{
		{"search_url", s.SearchURL},
		{"download_url", s.DownloadURL},
	} {
		parsed, err := url.Parse(endpoint.u)
		if err != nil {
			return fmt.Errorf("parse %s: %w", endpoint.name, err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("%s must include a host", endpoint.name)
		}
	}

	switch s.PlaylistFormat {
	case "m3u", "pls":
	default:
		return fmt.Errorf("unsupported playlist format %q", s.PlaylistFormat)
	}

	return nil
}
