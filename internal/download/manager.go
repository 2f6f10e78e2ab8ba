package download

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/soundsafari/xenocanto-dl/internal/audio"
	"github.com/soundsafari/xenocanto-dl/internal/config"
	xchttp "github.com/soundsafari/xenocanto-dl/internal/http"
	ioutils "github.com/soundsafari/xenocanto-dl/internal/io"
	"github.com/soundsafari/xenocanto-dl/internal/model"
	"github.com/soundsafari/xenocanto-dl/internal/xenocanto"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates metadata retrieval and recording downloads.
//
// Two modes are supported:
//   - Search mode: Search builds a manifest from the xeno-canto API, then
//     Download (optionally) fetches the audio files.
//   - Replay mode: UseManifest installs a caller-supplied manifest and
//     Download runs the same pipeline against it.
//
// In both modes configuration is validated before any network activity.
type Manager struct {
	settings     *config.Settings
	httpClient   *xchttp.Client
	searchClient *xenocanto.Client
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	manifest *model.Manifest

	totalFiles     int32
	completedFiles int32
	receivedBytes  int64

	onProgress func(ProgressEvent)
}

// NewManager creates a new Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	httpClient := xchttp.NewClient()

	var playlistFormat audio.PlaylistFormat
	switch settings.PlaylistFormat {
	case "pls":
		playlistFormat = audio.FormatPLS
	default:
		playlistFormat = audio.FormatM3U
	}

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags

	return &Manager{
		settings:     settings,
		httpClient:   httpClient,
		searchClient: xenocanto.NewClient(httpClient, settings.SearchURL),
		tagger:       audio.NewTagger(tagCfg),
		playlist:     audio.NewPlaylistCreator(playlistFormat, settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// Manifest returns the manifest produced by Search or installed by
// UseManifest, or nil if neither has run.
func (m *Manager) Manifest() *model.Manifest {
	return m.manifest
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (filesDone, filesTotal int32, receivedBytes int64) {
	return atomic.LoadInt32(&m.completedFiles), atomic.LoadInt32(&m.totalFiles),
		atomic.LoadInt64(&m.receivedBytes)
}

// Search retrieves all result pages for the query and assembles the
// deduplicated manifest.
//
// A query matching zero recordings is not an error; the returned manifest
// is empty and an informational event is emitted. Connectivity and
// configuration problems are fatal and return before any page is fetched
// beyond the failing one.
func (m *Manager) Search(ctx context.Context, query string) (*model.Manifest, error) {
	if err := m.settings.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Searching xeno-canto for %q", query), Level: LevelInfo})

	result, err := m.searchClient.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if result.NumRecordings == 0 {
		m.progress(ProgressEvent{Message: "No recordings found matching the query", Level: LevelInfo})
		m.manifest = model.NewManifest(nil)
		return m.manifest, nil
	}

	m.manifest = model.NewManifest(result.Pages)
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Found %d recordings across %d pages", m.manifest.Len(), len(result.Pages)),
		Level:   LevelInfo,
	})

	return m.manifest, nil
}

// UseManifest installs a caller-supplied manifest for replay mode. The
// manifest must carry Recording IDs; filename derivation happens in
// Download if it has not already run.
func (m *Manager) UseManifest(manifest *model.Manifest) error {
	if err := m.settings.Validate(); err != nil {
		return err
	}
	if manifest == nil {
		return fmt.Errorf("no manifest supplied")
	}
	m.manifest = manifest
	return nil
}

// Download runs the download pipeline against the current manifest:
// derive filenames, one download task per row through the worker pool,
// then a single zero-byte repair pass, then the optional post-processing
// steps (playlist, manifest CSV).
//
// Per-file failures never abort the batch; they surface as progress events
// and, after the repair pass, as a final warning listing unresolved rows.
func (m *Manager) Download(ctx context.Context) error {
	if err := m.settings.Validate(); err != nil {
		return err
	}
	if m.manifest == nil {
		return fmt.Errorf("no manifest to download; run Search or UseManifest first")
	}
	if m.manifest.Empty() {
		m.progress(ProgressEvent{Message: "Nothing to download", Level: LevelInfo})
		return nil
	}

	if !m.manifest.HasFileNames() {
		if err := m.manifest.DeriveFilenames(m.settings.FileNameFields); err != nil {
			return err
		}
	}

	if err := ioutils.EnsureDir(m.settings.DownloadsPath); err != nil {
		return fmt.Errorf("create downloads directory: %w", err)
	}

	atomic.StoreInt32(&m.totalFiles, int32(m.manifest.Len()))

	m.runBatch(ctx, m.manifest)

	// The batch has fully drained here, so a zero-length file is a failed
	// transfer, not an in-flight write.
	repair := m.sweepZeroByte(m.manifest)
	if !repair.Empty() {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("%d zero-length downloads detected, retrying once", repair.Len()),
			Level:   LevelWarning,
		})
		m.runBatch(ctx, repair)
	}

	m.reportUnresolved(m.manifest)

	if m.settings.CreatePlaylist {
		m.writePlaylist(ctx)
	}
	if m.settings.WriteManifest {
		m.writeManifestCSV(ctx)
	}

	return nil
}

// runBatch executes one download task per manifest row through a bounded
// worker pool. Every row is attempted; individual failures are reported as
// events and swallowed. runBatch returns once all tasks have completed.
func (m *Manager) runBatch(ctx context.Context, manifest *model.Manifest) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentDownloads)

	for _, rec := range manifest.Rows {
		rec := rec // capture
		g.Go(func() error {
			m.downloadRecording(ctx, rec)
			return nil // Continue with other recordings
		})
	}

	// Tasks never return errors; Wait is the completion barrier.
	_ = g.Wait()
}

// downloadRecording downloads one recording to its derived filename,
// skipping it when the destination already exists. Distinct rows write to
// distinct files, so workers share no mutable state.
func (m *Manager) downloadRecording(ctx context.Context, rec *model.Recording) {
	dest := filepath.Join(m.settings.DownloadsPath, rec.SoundFileName)

	if _, err := os.Stat(dest); err == nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", rec.SoundFileName), Level: LevelVerbose})
		atomic.AddInt32(&m.completedFiles, 1)
		return
	}

	srcURL := fmt.Sprintf("%s?id=%s", m.settings.DownloadURL, url.QueryEscape(rec.ID))
	if err := m.httpClient.DownloadFile(ctx, srcURL, dest, nil); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading XC%s: %v", rec.ID, err), Level: LevelError})
		return
	}

	if info, err := os.Stat(dest); err == nil {
		atomic.AddInt64(&m.receivedBytes, info.Size())
	}
	atomic.AddInt32(&m.completedFiles, 1)

	if m.settings.ModifyTags {
		if err := m.tagger.SaveTags(dest, rec); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", rec.SoundFileName, err), Level: LevelWarning})
		}
	}

	if m.settings.DownloadSonograms && rec.SonogramURL != "" {
		if err := m.downloadSonogram(ctx, rec, dest); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading sonogram for XC%s: %v", rec.ID, err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", rec.SoundFileName), Level: LevelVerbose})
}

// downloadSonogram fetches the recording's sonogram image and saves it next
// to the audio file, optionally resized and/or converted to JPEG.
func (m *Manager) downloadSonogram(ctx context.Context, rec *model.Recording, audioPath string) error {
	srcURL := rec.SonogramURL
	if strings.HasPrefix(srcURL, "//") {
		srcURL = "https:" + srcURL
	}

	data, err := m.httpClient.DownloadBytes(ctx, srcURL)
	if err != nil {
		return err
	}

	ext := ".png"
	if m.settings.SonogramResize {
		data, err = m.imageService.ResizeImage(ctx, data, m.settings.SonogramMaxSize, m.settings.SonogramMaxSize)
		if err != nil {
			return err
		}
		ext = ".jpg"
	} else if m.settings.ConvertSonogramToJPG {
		data, err = m.imageService.ConvertToJPEG(ctx, data)
		if err != nil {
			return err
		}
		ext = ".jpg"
	}

	dest := strings.TrimSuffix(audioPath, model.AudioExtension) + ext
	return ioutils.WriteFile(ctx, dest, data)
}

// sweepZeroByte scans the manifest rows' destination files for zero-byte
// results, removes them and returns the sub-manifest of exactly those rows.
// It must only run after a batch has fully completed.
func (m *Manager) sweepZeroByte(manifest *model.Manifest) *model.Manifest {
	return manifest.Filter(func(rec *model.Recording) bool {
		dest := filepath.Join(m.settings.DownloadsPath, rec.SoundFileName)
		info, err := os.Stat(dest)
		if err != nil || info.Size() != 0 {
			return false
		}
		if err := os.Remove(dest); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error removing empty file %s: %v", rec.SoundFileName, err), Level: LevelWarning})
			return false
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Removed zero-length file: %s", rec.SoundFileName), Level: LevelVerbose})
		atomic.AddInt32(&m.completedFiles, -1)
		return true
	})
}

// reportUnresolved emits a final warning listing rows whose destination
// file is still missing or empty after the repair pass. These are left as
// they are; a later invocation's resume logic will pick them up.
func (m *Manager) reportUnresolved(manifest *model.Manifest) {
	var unresolved []string
	for _, rec := range manifest.Rows {
		dest := filepath.Join(m.settings.DownloadsPath, rec.SoundFileName)
		info, err := os.Stat(dest)
		if err != nil || info.Size() == 0 {
			unresolved = append(unresolved, "XC"+rec.ID)
		}
	}

	if len(unresolved) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %d recordings", manifest.Len()), Level: LevelSuccess})
		return
	}

	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Finished with %d unresolved downloads: %s", len(unresolved), strings.Join(unresolved, ", ")),
		Level:   LevelWarning,
	})
}

// writePlaylist writes a playlist of the manifest's files into the
// downloads directory.
func (m *Manager) writePlaylist(ctx context.Context) {
	var playlistFormat audio.PlaylistFormat
	if m.settings.PlaylistFormat == "pls" {
		playlistFormat = audio.FormatPLS
	}

	content := m.playlist.CreatePlaylist(m.manifest)
	path := filepath.Join(m.settings.DownloadsPath, "recordings"+playlistFormat.Extension())
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist: %s", filepath.Base(path)), Level: LevelSuccess})
}

// writeManifestCSV persists the manifest next to the downloaded audio.
func (m *Manager) writeManifestCSV(ctx context.Context) {
	var buf bytes.Buffer
	if err := m.manifest.WriteCSV(&buf); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing manifest: %v", err), Level: LevelWarning})
		return
	}

	path := filepath.Join(m.settings.DownloadsPath, m.settings.ManifestFileName)
	if err := ioutils.WriteFile(ctx, path, buf.Bytes()); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing manifest: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Wrote manifest: %s", m.settings.ManifestFileName), Level: LevelSuccess})
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
