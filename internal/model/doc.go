// Package model defines the core data structures used throughout
// the xenocanto-dl application.
//
// # Recording
//
// Recording represents one xeno-canto recording. Every metadata field except
// the ID is optional and represented as a *string, so a key the API omitted
// (nil) stays distinguishable from a present-but-empty value:
//
//	rec := &model.Recording{ID: "101", Genus: model.Ptr("Phaethornis")}
//
// # Manifest
//
// Manifest is the ordered, ID-deduplicated table of recordings a search
// produces, with the canonical 17-column layout:
//
//	m := model.NewManifest(pages)
//	m.DeriveFilenames([]string{model.ColGenus, model.ColSpecificEpithet})
//	m.WriteCSV(file)
//
// A manifest written with WriteCSV can be read back with LoadCSV to re-run
// the download pipeline against it.
package model
