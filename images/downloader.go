package images

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPDownloader fetches images over HTTP.
type HTTPDownloader struct {
	client *resty.Client
}

// NewHTTPDownloader builds a downloader sending userAgent, bounded by timeout.
func NewHTTPDownloader(userAgent string, timeout time.Duration) *HTTPDownloader {
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetTimeout(timeout)
	return &HTTPDownloader{client: client}
}

// DownloadFile writes the body at absoluteURL into dir, named after the
// last segment of the URL path. An existing file of that name is replaced.
func (d *HTTPDownloader) DownloadFile(ctx context.Context, absoluteURL, dir string) (string, error) {
	name, err := fileName(absoluteURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %q: %w", dir, err)
	}
	target := filepath.Join(dir, name)

	resp, err := d.client.R().
		SetContext(ctx).
		SetOutput(target).
		Get(absoluteURL)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", absoluteURL, err)
	}
	if resp.IsError() {
		_ = os.Remove(target)
		return "", fmt.Errorf("get %s: http status %d", absoluteURL, resp.StatusCode())
	}
	return target, nil
}

func fileName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		name = "image"
	}
	return name, nil
}
