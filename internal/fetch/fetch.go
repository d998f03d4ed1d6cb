// Package fetch downloads the raw sales dataset. The pipeline core only
// ever sees the resulting file path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Download fetches url into dir/filename and returns the written path and
// byte count. Existing files are overwritten.
func Download(ctx context.Context, url, dir, filename string) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	path := filepath.Join(dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("write %s: %w", path, err)
	}
	return path, n, nil
}
