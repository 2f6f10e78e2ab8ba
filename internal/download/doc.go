// Package download provides the orchestration logic for retrieving
// recording metadata from xeno-canto and downloading the audio files.
//
// # Manager
//
// The Manager coordinates the entire pipeline:
//
//  1. Validate configuration (before any network activity)
//  2. Walk the paginated search API into a deduplicated manifest
//  3. Derive one unique destination filename per row
//  4. Download recordings concurrently, skipping files that already exist
//  5. Remove zero-length results and retry exactly those rows once
//  6. Optionally tag files, fetch sonograms, write a playlist and the
//     manifest CSV
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	manifest, err := manager.Search(ctx, "Phaethornis anthophilus")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.Download(ctx)
//
// Replay mode skips the search and runs the same download pipeline against
// a manifest loaded from CSV:
//
//	manifest, _ := model.LoadCSV(file)
//	manager.UseManifest(manifest)
//	manager.Download(ctx)
//
// # Resumability
//
// A download task whose destination file already exists is a no-op, so
// re-running the pipeline against an unchanged manifest performs no network
// requests for completed files. An interrupted or failed transfer leaves
// the file absent or zero-length; the zero-byte sweep after each batch
// removes empty files and resubmits exactly those rows, once. Rows still
// unresolved after that are reported in a final warning and left for the
// next invocation.
//
// # Concurrency
//
// Downloads run through a bounded worker pool (MaxConcurrentDownloads,
// default 1). Destination filenames are unique per row, so workers never
// write the same file. The zero-byte sweep runs only after the pool has
// fully drained.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
package download
