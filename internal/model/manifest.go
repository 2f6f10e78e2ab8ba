package model

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Manifest is the ordered, deduplicated collection of recordings produced by
// a search, and the unit of work for the download pipeline.
//
// Invariants:
//   - No two rows share a Recording ID. When pages overlap, the first
//     occurrence wins and later duplicates are dropped.
//   - Row order follows page order, then in-page order.
//   - Once filenames are derived, every row has a unique SoundFileName
//     (uniqueness follows from the Recording ID being appended to each).
type Manifest struct {
	Rows []*Recording

	hasFileNames bool
}

// NewManifest assembles a manifest from per-page record lists, concatenating
// pages in order and dropping rows whose ID duplicates an earlier row.
// Rows with an empty ID are dropped as well; the ID is the one mandatory
// field.
func NewManifest(pages [][]*Recording) *Manifest {
	m := &Manifest{}
	seen := make(map[string]struct{})
	for _, page := range pages {
		for _, rec := range page {
			if rec == nil || rec.ID == "" {
				continue
			}
			if _, dup := seen[rec.ID]; dup {
				continue
			}
			seen[rec.ID] = struct{}{}
			m.Rows = append(m.Rows, rec)
		}
	}
	return m
}

// Len returns the number of rows.
func (m *Manifest) Len() int {
	return len(m.Rows)
}

// Empty reports whether the manifest has no rows.
func (m *Manifest) Empty() bool {
	return len(m.Rows) == 0
}

// HasFileNames reports whether DeriveFilenames has run (or filenames were
// loaded from CSV).
func (m *Manifest) HasFileNames() bool {
	return m.hasFileNames
}

// Columns returns the manifest's column order: the 17 canonical columns,
// plus sound_file_name when filenames are present.
func (m *Manifest) Columns() []string {
	cols := Columns()
	if m.hasFileNames {
		cols = append(cols, ColSoundFileName)
	}
	return cols
}

// Filter returns a new manifest holding only the rows keep reports true
// for. Row order and the filename state carry over; rows are shared, not
// copied.
func (m *Manifest) Filter(keep func(*Recording) bool) *Manifest {
	sub := &Manifest{hasFileNames: m.hasFileNames}
	for _, rec := range m.Rows {
		if keep(rec) {
			sub.Rows = append(sub.Rows, rec)
		}
	}
	return sub
}

// DeriveFilenames computes a destination filename for every row by joining
// the values of the requested columns with "-", then appending the row's
// Recording ID and the audio extension. Uniqueness is guaranteed because
// the ID is unique per row and always appended.
//
// nameFields must name existing manifest columns; an unknown name is a
// configuration error and no row is modified. Recording_ID is filtered out
// of nameFields (it is appended unconditionally). A nil or empty field value
// contributes nothing to the joined name. With no nameFields the filename is
// just the ID plus extension.
//
// Example:
//
//	m.DeriveFilenames([]string{model.ColGenus, model.ColSpecificEpithet})
//	// row {ID: "101", Genus: "Phaethornis", SpecificEpithet: "anthophilus"}
//	// gets SoundFileName "Phaethornis-anthophilus-101.mp3"
func (m *Manifest) DeriveFilenames(nameFields []string) error {
	fields := make([]string, 0, len(nameFields))
	for _, f := range nameFields {
		if f == ColRecordingID {
			continue
		}
		if _, ok := (&Recording{}).Field(f); !ok {
			return fmt.Errorf("unknown filename field %q", f)
		}
		fields = append(fields, f)
	}

	for _, rec := range m.Rows {
		parts := make([]string, 0, len(fields)+1)
		for _, f := range fields {
			p, _ := rec.Field(f)
			if *p != nil && **p != "" {
				parts = append(parts, sanitizeFileName(**p))
			}
		}
		parts = append(parts, rec.ID)
		rec.SoundFileName = joinDash(parts) + AudioExtension
	}

	m.hasFileNames = true
	return nil
}

func joinDash(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "-"
		}
		out += p
	}
	return out
}

// WriteCSV writes the manifest in canonical column order. Missing field
// values are written as NA.
func (m *Manifest) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := m.Columns()
	if err := cw.Write(cols); err != nil {
		return err
	}

	for _, rec := range m.Rows {
		row := make([]string, 0, len(cols))
		for _, col := range cols {
			switch col {
			case ColRecordingID:
				row = append(row, rec.ID)
			case ColSoundFileName:
				row = append(row, rec.SoundFileName)
			default:
				p, _ := rec.Field(col)
				row = append(row, Deref(*p))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// LoadCSV reads a manifest previously written by WriteCSV, or any CSV with
// at least a Recording_ID column. Unknown columns are ignored; NA cells
// become missing values. Duplicate IDs keep the first occurrence, matching
// NewManifest.
func LoadCSV(r io.Reader) (*Manifest, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}

	idCol := -1
	fileCol := -1
	known := make(map[int]string)
	for i, col := range header {
		switch col {
		case ColRecordingID:
			idCol = i
		case ColSoundFileName:
			fileCol = i
		default:
			if _, ok := (&Recording{}).Field(col); ok {
				known[i] = col
			}
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("manifest is missing the %s column", ColRecordingID)
	}

	m := &Manifest{hasFileNames: fileCol >= 0}
	seen := make(map[string]struct{})
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest row: %w", err)
		}

		id := row[idCol]
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		rec := &Recording{ID: id}
		for i, col := range known {
			if i >= len(row) {
				continue
			}
			if row[i] == NA {
				continue
			}
			p, _ := rec.Field(col)
			v := row[i]
			*p = &v
		}
		if fileCol >= 0 && fileCol < len(row) {
			rec.SoundFileName = row[fileCol]
		}
		m.Rows = append(m.Rows, rec)
	}

	return m, nil
}
