package config

import (
	"path/filepath"
	"testing"

	"github.com/soundsafari/xenocanto-dl/internal/model"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults are valid", func(s *Settings) {}, false},
		{"zero workers", func(s *Settings) { s.MaxConcurrentDownloads = 0 }, true},
		{"negative workers", func(s *Settings) { s.MaxConcurrentDownloads = -2 }, true},
		{"unknown file name field", func(s *Settings) { s.FileNameFields = []string{"Wingspan"} }, true},
		{"recording id as file name field", func(s *Settings) { s.FileNameFields = []string{model.ColRecordingID} }, false},
		{"empty file name fields", func(s *Settings) { s.FileNameFields = nil }, false},
		{"hostless search url", func(s *Settings) { s.SearchURL = "/api/2/recordings" }, true},
		{"hostless download url", func(s *Settings) { s.DownloadURL = "download.php" }, true},
		{"bad playlist format", func(s *Settings) { s.PlaylistFormat = "zpl" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.MaxConcurrentDownloads != 1 {
		t.Errorf("default workers = %d, want 1", s.MaxConcurrentDownloads)
	}
}

func TestSettings_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s := DefaultSettings()
	s.MaxConcurrentDownloads = 8
	s.FileNameFields = []string{model.ColEnglishName}
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.MaxConcurrentDownloads != 8 {
		t.Errorf("workers = %d, want 8", got.MaxConcurrentDownloads)
	}
	if len(got.FileNameFields) != 1 || got.FileNameFields[0] != model.ColEnglishName {
		t.Errorf("FileNameFields = %v", got.FileNameFields)
	}
}
