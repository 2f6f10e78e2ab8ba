// Package ioutils provides file system and image processing utilities.
//
// # File Operations
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/manifest.csv", content)
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/path/to/recordings")
//
// # Image Processing
//
// The ImageService handles sonogram images:
//
//	svc := ioutils.NewImageService()
//
//	// Resize sonogram to fit within 1000x1000
//	resized, _ := svc.ResizeImage(ctx, pngData, 1000, 1000)
//
//	// Convert to JPEG
//	jpg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
