package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fetcher downloads a remote overlay image and returns a local file path.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches overlay images over HTTP into a temp directory.
type HTTPFetcher struct {
	client *http.Client
	dir    string
}

func NewHTTPFetcher(dir string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		dir:    dir,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image from %s: status %d", url, resp.StatusCode)
	}

	name := "overlay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8] + ".png"
	path := filepath.Join(f.dir, name)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %w", url, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to download image from %s: %w", url, err)
	}
	return path, nil
}
