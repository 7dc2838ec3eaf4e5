// Package fetch downloads definition files referenced by URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/vk/gmicli/internal/ctxlog"
)

// Fetcher downloads a remote file to a local temporary path. The caller
// removes the file when done.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
	// TempDir is where downloads are written. Empty means os.TempDir().
	TempDir string
}

// NewHTTPFetcher returns a fetcher whose client gives up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    4,
				IdleConnTimeout: 30 * time.Second,
			},
		},
	}
}

// IsURL reports whether path names an HTTP or HTTPS resource.
func IsURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch downloads url into a new temporary file and returns its path.
// Non-2xx responses are errors. No file is left behind on failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Fetching definition file.", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected response status %s for %s", resp.Status, url)
	}

	tmp, err := os.CreateTemp(f.TempDir, "gmic-*.gmic")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("Fetched definition file.", "url", url, "status", resp.Status, "bytes", n, "path", tmp.Name())
	return tmp.Name(), nil
}
