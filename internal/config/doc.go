// Package config provides configuration management for xenocanto-dl.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Pre-flight validation of every setting the pipeline depends on
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Public xeno-canto endpoints
//	// Sequential downloads (one worker)
//	// Filenames from Genus and Specific_epithet
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Validation
//
// Validate() runs before any network call and rejects invalid worker
// counts, unknown filename fields, malformed endpoint URLs and unsupported
// playlist formats.
package config
