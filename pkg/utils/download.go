package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GetMediaReader returns a ReadCloser for the media, and its filename.
// The caller is responsible for closing the reader.
func GetMediaReader(pathOrURL string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		resp, err := http.Get(pathOrURL)
		if err != nil {
			return nil, "", err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("failed to download media: %s", resp.Status)
		}

		// Try to get filename from URL
		filename := filepath.Base(pathOrURL)
		// If URL has query parameters, strip them
		if idx := strings.Index(filename, "?"); idx != -1 {
			filename = filename[:idx]
		}

		if filename == "" || filename == "." || filename == "/" {
			filename = "downloaded_media"
		}
		return resp.Body, filename, nil
	}

	f, err := os.Open(pathOrURL)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(pathOrURL), nil
}

// DownloadToFile fetches a media URL (or copies a local path) into dir and
// returns the saved path. Existing files are not overwritten.
func DownloadToFile(pathOrURL, dir string) (string, error) {
	reader, filename, err := GetMediaReader(pathOrURL)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	dest := filepath.Join(dir, filename)
	if _, err := os.Stat(dest); err == nil {
		dest = filepath.Join(dir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filename))
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return "", err
	}
	return dest, nil
}
