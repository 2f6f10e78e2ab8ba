package xenocanto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	xchttp "github.com/soundsafari/xenocanto-dl/internal/http"
	"github.com/soundsafari/xenocanto-dl/internal/model"
	"github.com/soundsafari/xenocanto-dl/internal/xenocanto/dto"
)

func TestCount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"number", `42`, 42, false},
		{"numeric string", `"42"`, 42, false},
		{"zero string", `"0"`, 0, false},
		{"garbage string", `"many"`, 0, true},
		{"object", `{}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c dto.Count
			err := json.Unmarshal([]byte(tt.input), &c)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if int(c) != tt.want {
				t.Errorf("Count = %d, want %d", c, tt.want)
			}
		})
	}
}

func TestRecording_ToRecording_MissingKeys(t *testing.T) {
	// A payload omitting most keys must still yield a record with the full
	// field set: nil exactly at the missing positions, present values
	// (including empty strings) unchanged.
	payload := `{"id":"101","gen":"Phaethornis","lat":"","sono":{"small":"//xeno-canto.org/sono-small.png","full":"//xeno-canto.org/sono-full.png"}}`

	var raw dto.Recording
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec := raw.ToRecording()

	if rec.ID != "101" {
		t.Errorf("ID = %q, want %q", rec.ID, "101")
	}
	if rec.Genus == nil || *rec.Genus != "Phaethornis" {
		t.Errorf("Genus = %v, want Phaethornis", rec.Genus)
	}
	if rec.Latitude == nil || *rec.Latitude != "" {
		t.Error("present-but-empty lat should be a pointer to empty string")
	}
	for _, missing := range []struct {
		name string
		p    *string
	}{
		{"SpecificEpithet", rec.SpecificEpithet},
		{"Recordist", rec.Recordist},
		{"Country", rec.Country},
		{"Date", rec.Date},
	} {
		if missing.p != nil {
			t.Errorf("%s should be nil for a missing key, got %q", missing.name, *missing.p)
		}
	}
	if rec.SonogramURL != "//xeno-canto.org/sono-full.png" {
		t.Errorf("SonogramURL = %q, want the full-size URL", rec.SonogramURL)
	}
}

// searchHandler serves a fake two-page search API keyed on the page
// parameter, with string-typed totals like the live endpoint.
func searchHandler(t *testing.T, requests *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Helper()
		*requests = append(*requests, r.URL.RawQuery)

		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			fmt.Fprint(w, `{
				"numRecordings":"3","numSpecies":"1","page":1,"numPages":"2",
				"recordings":[
					{"id":"101","gen":"Phaethornis","sp":"anthophilus"},
					{"id":"102","gen":"Phaethornis","sp":"anthophilus"}
				]}`)
		case "2":
			fmt.Fprint(w, `{
				"numRecordings":"3","numSpecies":"1","page":2,"numPages":"2",
				"recordings":[
					{"id":"102","gen":"Phaethornis"},
					{"id":"103","sp":"anthophilus"}
				]}`)
		default:
			http.Error(w, "no such page", http.StatusBadRequest)
		}
	}
}

func TestClient_Search_MultiPage(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(searchHandler(t, &requests))
	defer srv.Close()

	client := NewClient(xchttp.NewClient(), srv.URL)
	result, err := client.Search(context.Background(), "Phaethornis anthophilus")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if result.NumRecordings != 3 {
		t.Errorf("NumRecordings = %d, want 3", result.NumRecordings)
	}
	if len(result.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(result.Pages))
	}
	if len(requests) != 2 {
		t.Errorf("made %d requests, want 2", len(requests))
	}
	if got := requests[0]; got != "query=Phaethornis%20anthophilus" {
		t.Errorf("page-1 query = %q, want spaces encoded as %%20 and no page param", got)
	}

	// Cross-page duplicate collapses in the manifest, first occurrence wins.
	m := model.NewManifest(result.Pages)
	if m.Len() != 3 {
		t.Errorf("manifest rows = %d, want 3 after dedup", m.Len())
	}
	if m.Rows[1].SpecificEpithet == nil {
		t.Error("first occurrence of 102 should win (page-1 copy has sp)")
	}
}

func TestClient_Search_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"numRecordings":"0","numSpecies":"0","page":1,"numPages":1,"recordings":[]}`)
	}))
	defer srv.Close()

	client := NewClient(xchttp.NewClient(), srv.URL)
	result, err := client.Search(context.Background(), "Nonexistus species")
	if err != nil {
		t.Fatalf("zero results must not be an error, got %v", err)
	}
	if result.NumRecordings != 0 || len(result.Pages) != 0 {
		t.Errorf("want empty result, got %d recordings, %d pages", result.NumRecordings, len(result.Pages))
	}
}

func TestClient_Search_EndpointDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(xchttp.NewClient(), srv.URL)
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected fatal error when the endpoint is unreachable")
	}
}
