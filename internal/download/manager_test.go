package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/soundsafari/xenocanto-dl/internal/config"
	"github.com/soundsafari/xenocanto-dl/internal/model"
)

// fakeCatalog serves a one-page search API and a download endpoint, and
// counts download requests per recording ID.
type fakeCatalog struct {
	mu        sync.Mutex
	downloads map[string]int

	// failIDs makes the download endpoint return 500 for these IDs.
	failIDs map[string]bool
	// emptyOnce makes the download endpoint serve an empty body for the
	// first request of these IDs, then real audio.
	emptyOnce map[string]bool

	srv *httptest.Server
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	c := &fakeCatalog{
		downloads: make(map[string]int),
		failIDs:   make(map[string]bool),
		emptyOnce: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"numRecordings":"3","numSpecies":"1","page":1,"numPages":"1",
			"recordings":[
				{"id":"101","gen":"Phaethornis","sp":"anthophilus","en":"Pale-bellied Hermit"},
				{"id":"102","gen":"Phaethornis","sp":"anthophilus"},
				{"id":"103","gen":"Phaethornis","sp":"anthophilus"}
			]}`)
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")

		c.mu.Lock()
		c.downloads[id]++
		n := c.downloads[id]
		fail := c.failIDs[id]
		empty := c.emptyOnce[id] && n == 1
		c.mu.Unlock()

		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		if empty {
			return // 200 with empty body, lands on disk as a zero-byte file
		}
		fmt.Fprintf(w, "audio-bytes-%s", id)
	})

	c.srv = httptest.NewServer(mux)
	t.Cleanup(c.srv.Close)
	return c
}

func (c *fakeCatalog) downloadCount(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.downloads[id]
}

func (c *fakeCatalog) totalDownloads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.downloads {
		total += n
	}
	return total
}

func testSettings(t *testing.T, c *fakeCatalog) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.SearchURL = c.srv.URL + "/api"
	s.DownloadURL = c.srv.URL + "/download"
	s.DownloadsPath = t.TempDir()
	s.MaxConcurrentDownloads = 2
	return s
}

// eventRecorder collects progress events; the callback fires from worker
// goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (e *eventRecorder) record(ev ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *eventRecorder) contains(substr string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if strings.Contains(ev.Message, substr) {
			return true
		}
	}
	return false
}

func TestManager_SearchAndDownload(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)
	rec := &eventRecorder{}
	manager := NewManager(settings, rec.record)

	ctx := context.Background()
	manifest, err := manager.Search(ctx, "Phaethornis anthophilus")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if manifest.Len() != 3 {
		t.Fatalf("manifest rows = %d, want 3", manifest.Len())
	}

	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download: %v", err)
	}

	for _, id := range []string{"101", "102", "103"} {
		name := fmt.Sprintf("Phaethornis-anthophilus-%s.mp3", id)
		info, err := os.Stat(filepath.Join(settings.DownloadsPath, name))
		if err != nil {
			t.Errorf("expected file %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("file %s is empty", name)
		}
	}

	done, total, bytes := manager.GetProgress()
	if done != 3 || total != 3 {
		t.Errorf("progress = %d/%d, want 3/3", done, total)
	}
	if bytes == 0 {
		t.Error("receivedBytes should be nonzero")
	}
	if !rec.contains("Successfully downloaded 3 recordings") {
		t.Error("missing success event")
	}
}

func TestManager_Download_SkipsExistingFiles(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)
	manager := NewManager(settings, nil)

	ctx := context.Background()
	manifest, err := manager.Search(ctx, "Phaethornis anthophilus")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := manifest.DeriveFilenames(settings.FileNameFields); err != nil {
		t.Fatalf("DeriveFilenames: %v", err)
	}

	// Pre-populate every destination file, as a completed earlier run
	// would have.
	for _, row := range manifest.Rows {
		path := filepath.Join(settings.DownloadsPath, row.SoundFileName)
		if err := os.WriteFile(path, []byte("already here"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download: %v", err)
	}

	if n := catalog.totalDownloads(); n != 0 {
		t.Errorf("made %d download requests, want 0 (all files exist)", n)
	}
	for _, row := range manifest.Rows {
		data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, row.SoundFileName))
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "already here" {
			t.Errorf("existing file %s was rewritten", row.SoundFileName)
		}
	}
}

func TestManager_Download_RepairsZeroByteFile(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)
	rec := &eventRecorder{}
	manager := NewManager(settings, rec.record)

	ctx := context.Background()
	manifest, err := manager.Search(ctx, "Phaethornis anthophilus")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := manifest.DeriveFilenames(settings.FileNameFields); err != nil {
		t.Fatalf("DeriveFilenames: %v", err)
	}

	// One zero-byte leftover from a crashed run, all other files intact.
	for i, row := range manifest.Rows {
		path := filepath.Join(settings.DownloadsPath, row.SoundFileName)
		content := []byte("intact audio")
		if i == 1 {
			content = nil
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download: %v", err)
	}

	// The first pass skips all three (they exist); the sweep removes the
	// empty one and the repair pass re-downloads exactly that row.
	if n := catalog.downloadCount("102"); n != 1 {
		t.Errorf("row 102 downloaded %d times, want 1", n)
	}
	if n := catalog.totalDownloads(); n != 1 {
		t.Errorf("made %d download requests in total, want 1", n)
	}

	info, err := os.Stat(filepath.Join(settings.DownloadsPath, "Phaethornis-anthophilus-102.mp3"))
	if err != nil {
		t.Fatalf("repaired file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("repaired file is still empty")
	}
	if !rec.contains("retrying once") {
		t.Error("missing repair warning event")
	}
}

func TestManager_Download_RepairRunsExactlyOnce(t *testing.T) {
	catalog := newFakeCatalog(t)
	// 102's first download serves an empty body; the retry serves real audio.
	catalog.emptyOnce["102"] = true

	settings := testSettings(t, catalog)
	rec := &eventRecorder{}
	manager := NewManager(settings, rec.record)

	ctx := context.Background()
	if _, err := manager.Search(ctx, "Phaethornis anthophilus"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download: %v", err)
	}

	// Pass 1 yields a zero-byte file for 102, the repair pass retries it
	// once and succeeds. Exactly two requests, no more.
	if n := catalog.downloadCount("102"); n != 2 {
		t.Errorf("row 102 downloaded %d times, want 2 (initial + one repair)", n)
	}
	if n := catalog.downloadCount("101"); n != 1 {
		t.Errorf("row 101 downloaded %d times, want 1", n)
	}
}

func TestManager_Download_FailuresAreSwallowed(t *testing.T) {
	catalog := newFakeCatalog(t)
	catalog.failIDs["102"] = true

	settings := testSettings(t, catalog)
	rec := &eventRecorder{}
	manager := NewManager(settings, rec.record)

	ctx := context.Background()
	if _, err := manager.Search(ctx, "Phaethornis anthophilus"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := manager.Download(ctx); err != nil {
		t.Fatalf("batch must not abort on per-file failures: %v", err)
	}

	// The failing row leaves no file; the others complete.
	if _, err := os.Stat(filepath.Join(settings.DownloadsPath, "Phaethornis-anthophilus-102.mp3")); !os.IsNotExist(err) {
		t.Error("failed download should leave no file")
	}
	for _, id := range []string{"101", "103"} {
		if _, err := os.Stat(filepath.Join(settings.DownloadsPath, fmt.Sprintf("Phaethornis-anthophilus-%s.mp3", id))); err != nil {
			t.Errorf("row %s should have completed: %v", id, err)
		}
	}
	if !rec.contains("unresolved downloads: XC102") {
		t.Error("missing unresolved-rows warning")
	}
}

func TestManager_Search_ZeroResultsNoDownloadActivity(t *testing.T) {
	var downloadHits int
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"numRecordings":0,"numSpecies":0,"page":1,"numPages":1,"recordings":[]}`)
	})
	mux.HandleFunc("/download", func(w http.ResponseWriter, r *http.Request) {
		downloadHits++
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	settings := config.DefaultSettings()
	settings.SearchURL = srv.URL + "/api"
	settings.DownloadURL = srv.URL + "/download"
	settings.DownloadsPath = t.TempDir()

	rec := &eventRecorder{}
	manager := NewManager(settings, rec.record)

	ctx := context.Background()
	manifest, err := manager.Search(ctx, "Nonexistus species")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !manifest.Empty() {
		t.Fatalf("manifest should be empty, has %d rows", manifest.Len())
	}
	if !rec.contains("No recordings found") {
		t.Error("missing informational no-results event")
	}

	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download on empty manifest: %v", err)
	}
	if downloadHits != 0 {
		t.Errorf("made %d download requests, want 0", downloadHits)
	}
}

func TestManager_ReplayMode(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)

	// Build a manifest CSV the way an earlier search run would have.
	source := model.NewManifest([][]*model.Recording{{
		{ID: "101", Genus: model.Ptr("Phaethornis"), SpecificEpithet: model.Ptr("anthophilus")},
		{ID: "103", Genus: model.Ptr("Phaethornis"), SpecificEpithet: model.Ptr("anthophilus")},
	}})
	var csv strings.Builder
	if err := source.WriteCSV(&csv); err != nil {
		t.Fatal(err)
	}

	loaded, err := model.LoadCSV(strings.NewReader(csv.String()))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}

	manager := NewManager(settings, nil)
	if err := manager.UseManifest(loaded); err != nil {
		t.Fatalf("UseManifest: %v", err)
	}
	if err := manager.Download(context.Background()); err != nil {
		t.Fatalf("Download: %v", err)
	}

	for _, id := range []string{"101", "103"} {
		name := fmt.Sprintf("Phaethornis-anthophilus-%s.mp3", id)
		if _, err := os.Stat(filepath.Join(settings.DownloadsPath, name)); err != nil {
			t.Errorf("expected file %s: %v", name, err)
		}
	}
	if n := catalog.downloadCount("102"); n != 0 {
		t.Errorf("row 102 is not in the replay manifest but was downloaded %d times", n)
	}
}

func TestManager_ConfigurationErrorsBeforeNetwork(t *testing.T) {
	// Point at a server that fails the test if it is ever reached.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network request should be made with invalid configuration")
	}))
	defer srv.Close()

	settings := config.DefaultSettings()
	settings.SearchURL = srv.URL
	settings.DownloadURL = srv.URL
	settings.DownloadsPath = t.TempDir()
	settings.MaxConcurrentDownloads = 0

	manager := NewManager(settings, nil)
	if _, err := manager.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestManager_Download_UnknownFilenameField(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)

	manager := NewManager(settings, nil)
	if _, err := manager.Search(context.Background(), "Phaethornis anthophilus"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	settings.FileNameFields = []string{"Wingspan"}
	err := manager.Download(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown filename field")
	}
	if n := catalog.totalDownloads(); n != 0 {
		t.Errorf("made %d download requests despite configuration error", n)
	}
}

func TestManager_Download_WritesPlaylistAndManifest(t *testing.T) {
	catalog := newFakeCatalog(t)
	settings := testSettings(t, catalog)
	settings.CreatePlaylist = true
	settings.WriteManifest = true

	manager := NewManager(settings, nil)
	ctx := context.Background()
	if _, err := manager.Search(ctx, "Phaethornis anthophilus"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := manager.Download(ctx); err != nil {
		t.Fatalf("Download: %v", err)
	}

	playlist, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "recordings.m3u"))
	if err != nil {
		t.Fatalf("playlist missing: %v", err)
	}
	if !strings.Contains(string(playlist), "Phaethornis-anthophilus-101.mp3") {
		t.Error("playlist should list downloaded files")
	}

	data, err := os.ReadFile(filepath.Join(settings.DownloadsPath, "manifest.csv"))
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	loaded, err := model.LoadCSV(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("manifest CSV does not parse: %v", err)
	}
	if loaded.Len() != 3 || !loaded.HasFileNames() {
		t.Errorf("loaded manifest: %d rows, filenames=%v", loaded.Len(), loaded.HasFileNames())
	}
}
