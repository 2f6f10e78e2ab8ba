// Package http provides an HTTP client configured for xeno-canto API requests.
//
// The Client in this package handles:
//   - User-Agent headers
//   - JSON endpoint fetching
//   - File downloads with progress tracking
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch a search result page
//	var page dto.Page
//	err := client.GetJSON(ctx, searchURL, &page)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, audioURL, "/path/to/file.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
