package formats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves the raw bytes of a format loader file.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches format files over HTTP(S).
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET request and returns the body of a 2xx response.
func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FileFetcher reads format files from disk. Relative paths resolve against Root.
type FileFetcher struct {
	Root string
}

// Fetch reads a plain path or a file:// URL.
func (f *FileFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	path := rawURL
	if strings.HasPrefix(rawURL, "file://") {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid file url: %w", err)
		}
		path = u.Path
	}
	if !filepath.IsAbs(path) && f.Root != "" {
		path = filepath.Join(f.Root, path)
	}
	return os.ReadFile(path)
}

// NewFetcher returns a Fetcher that uses HTTP for http and https URLs and the
// filesystem, rooted at root, for everything else.
func NewFetcher(client *http.Client, root string) Fetcher {
	web := &HTTPFetcher{Client: client}
	disk := &FileFetcher{Root: root}
	return FetcherFunc(func(ctx context.Context, rawURL string) ([]byte, error) {
		if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
			return web.Fetch(ctx, rawURL)
		}
		return disk.Fetch(ctx, rawURL)
	})
}
