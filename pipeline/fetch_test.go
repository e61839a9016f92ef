package main

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func zipOf(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create zip member %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write zip member %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDownloadAndExtractZip(t *testing.T) {
	archive := zipOf(t, map[string]string{
		"Practice_Level_Crosstab_Sep_24.csv": crosstabHeader + "\n",
		"nested/Mapping.csv":                 mappingCSV,
		"README.txt":                         "not a csv\n",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "raw")
	if err := downloadAndExtractZip(server.URL, dest); err != nil {
		t.Fatalf("downloadAndExtractZip: %v", err)
	}

	// Directory structure is flattened and non-CSV members are skipped.
	for _, name := range []string{"Practice_Level_Crosstab_Sep_24.csv", "Mapping.csv"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("missing extracted file %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dest, "README.txt")); err == nil {
		t.Error("non-CSV member should not be extracted")
	}
}

func TestDownloadAndExtractZipHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	if err := downloadAndExtractZip(server.URL, t.TempDir()); err == nil {
		t.Fatal("expected error on 404 response")
	}
}

func TestDownloadAndExtractZipNoCSVMembers(t *testing.T) {
	archive := zipOf(t, map[string]string{"notes.txt": "nothing useful\n"})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	if err := downloadAndExtractZip(server.URL, t.TempDir()); err == nil {
		t.Fatal("expected error when the archive holds no CSV files")
	}
}
