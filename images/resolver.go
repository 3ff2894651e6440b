package images

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-scrape-parts/browser"
)

// Downloader stores the file at an absolute address into dir and returns
// the local path.
type Downloader interface {
	DownloadFile(ctx context.Context, absoluteURL, dir string) (string, error)
}

// Resolver tries its locators in order and downloads the first hit.
type Resolver struct {
	locators   []Locator
	downloader Downloader
	dir        string
}

// NewResolver builds a resolver writing into dir. With no locators the
// catalog defaults are used.
func NewResolver(dir string, downloader Downloader, locators ...Locator) *Resolver {
	if len(locators) == 0 {
		locators = DefaultLocators()
	}
	return &Resolver{
		locators:   locators,
		downloader: downloader,
		dir:        dir,
	}
}

// Resolve returns the local path of the page's primary image, or nil when
// no strategy finds one.
func (r *Resolver) Resolve(ctx context.Context, page browser.Session) (*string, error) {
	for _, locator := range r.locators {
		raw, ok, err := locator.TryLocate(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("%s locator: %w", locator.Name(), err)
		}
		if !ok {
			continue
		}

		abs, err := browser.ResolveURL(page.URL(), raw)
		if err != nil {
			return nil, fmt.Errorf("%s locator: %w", locator.Name(), err)
		}

		slog.Info("downloading image",
			slog.String("image", abs),
			slog.String("strategy", locator.Name()),
		)
		local, err := r.downloader.DownloadFile(ctx, abs, r.dir)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", abs, err)
		}
		return &local, nil
	}
	return nil, nil
}
