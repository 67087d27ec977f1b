// Package fetch downloads the input spreadsheet when it is not already on
// disk. There is no freshness or checksum check: an existing file is reused
// as-is, and refreshing means deleting it first.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// DownloadIfMissing fetches url into target unless target already exists.
// It reports whether a download actually happened. The body is written to a
// temp file and renamed so an interrupted download never leaves a partial
// file behind to be silently reused on the next run.
func DownloadIfMissing(ctx context.Context, url, target string) (bool, error) {
	if _, err := os.Stat(target); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("download failed: unexpected status %d from %s", resp.StatusCode, url)
	}

	tmp := target + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return false, fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("failed to close %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return false, fmt.Errorf("failed to move download into place: %w", err)
	}
	return true, nil
}
