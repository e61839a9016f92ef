package main

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// downloadTimeout is the fixed request timeout on the source download.
// There is no retry: a flaky source fails the run.
const downloadTimeout = 60 * time.Second

// downloadAndExtractZip fetches a zip archive and extracts its .csv
// members into destDir. Member paths are flattened to base names; the
// published archives have no directory structure worth keeping.
func downloadAndExtractZip(url, destDir string) error {
	log.Printf("Downloading %s", url)

	client := &http.Client{Timeout: downloadTimeout}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "gpappointments-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return fmt.Errorf("save download: %w", err)
	}
	log.Printf("Downloaded %.1f MB", float64(size)/1024/1024)

	return extractCSVs(tmp.Name(), destDir)
}

// extractCSVs unpacks the .csv members of a zip archive into destDir.
func extractCSVs(zipPath, destDir string) error {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer archive.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	extracted := 0
	for _, member := range archive.File {
		if member.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(member.Name), ".csv") {
			continue
		}

		if err := extractMember(member, destDir); err != nil {
			return err
		}
		extracted++
	}
	if extracted == 0 {
		return fmt.Errorf("no .csv members in %s", zipPath)
	}

	log.Printf("Extracted %d file(s) to %s", extracted, destDir)
	return nil
}

func extractMember(member *zip.File, destDir string) error {
	src, err := member.Open()
	if err != nil {
		return fmt.Errorf("open zip member %s: %w", member.Name, err)
	}
	defer src.Close()

	dest := filepath.Join(destDir, filepath.Base(member.Name))
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", member.Name, err)
	}
	return out.Close()
}
