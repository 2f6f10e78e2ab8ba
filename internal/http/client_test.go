package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "xenocanto-dl" {
			t.Errorf("User-Agent = %q, want %q", ua, "xenocanto-dl")
		}
		w.Write([]byte(`{"numRecordings":"3"}`))
	}))
	defer srv.Close()

	var got struct {
		NumRecordings string `json:"numRecordings"`
	}
	if err := NewClient().GetJSON(context.Background(), srv.URL, &got); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if got.NumRecordings != "3" {
		t.Errorf("NumRecordings = %q, want %q", got.NumRecordings, "3")
	}
}

func TestClient_GetJSON_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	var got map[string]any
	if err := NewClient().GetJSON(context.Background(), srv.URL, &got); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}

func TestClient_Get_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient().Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestClient_DownloadFile(t *testing.T) {
	payload := []byte("\x00\x01binary audio bytes\xff")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "rec.mp3")

	var lastWritten int64
	err := NewClient().DownloadFile(context.Background(), srv.URL, dest, func(written, total int64) {
		lastWritten = written
	})
	if err != nil {
		t.Fatalf("DownloadFile: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("downloaded bytes differ from payload")
	}
	if lastWritten != int64(len(payload)) {
		t.Errorf("progress reported %d bytes, want %d", lastWritten, len(payload))
	}
}

func TestClient_DownloadFile_Non200LeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "rec.mp3")
	if err := NewClient().DownloadFile(context.Background(), srv.URL, dest, nil); err == nil {
		t.Fatal("expected error for 500 response")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("destination file should not exist after failed request")
	}
}
