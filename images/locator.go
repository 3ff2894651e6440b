// Package images locates a page's primary image and downloads it into the
// run's image directory.
package images

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aluiziolira/go-scrape-parts/browser"
)

// Locator is one strategy for finding a page's primary image address.
type Locator interface {
	Name() string
	// TryLocate returns the raw image address and true when the strategy
	// applies to the loaded page.
	TryLocate(ctx context.Context, page browser.Session) (string, bool, error)
}

// InlineImageLocator reads the source attribute of an image element.
type InlineImageLocator struct {
	Selector string
	Attr     string
}

// Name identifies the strategy in logs.
func (l InlineImageLocator) Name() string {
	return "inline"
}

// TryLocate returns the image element's source, if the element exists and
// has a non-empty source.
func (l InlineImageLocator) TryLocate(ctx context.Context, page browser.Session) (string, bool, error) {
	el, ok, err := page.QuerySelector(ctx, l.Selector)
	if err != nil {
		return "", false, fmt.Errorf("query %q: %w", l.Selector, err)
	}
	if !ok {
		return "", false, nil
	}

	attr := l.Attr
	if attr == "" {
		attr = "src"
	}
	src, _ := el.Attr(attr)
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false, nil
	}
	return src, true, nil
}

var backgroundURLRegex = regexp.MustCompile(`url\(\s*(?P<url>[^)]+?)\s*\)`)

// BackgroundImageLocator reads a url(...) expression from a container's
// inline style.
type BackgroundImageLocator struct {
	Selector string
}

// Name identifies the strategy in logs.
func (l BackgroundImageLocator) Name() string {
	return "background"
}

// TryLocate returns the address embedded in the element's style, if the
// element exists and its style carries a url(...) expression.
func (l BackgroundImageLocator) TryLocate(ctx context.Context, page browser.Session) (string, bool, error) {
	el, ok, err := page.QuerySelector(ctx, l.Selector)
	if err != nil {
		return "", false, fmt.Errorf("query %q: %w", l.Selector, err)
	}
	if !ok {
		return "", false, nil
	}

	style, _ := el.Attr("style")
	addr := BackgroundURL(style)
	if addr == "" {
		return "", false, nil
	}
	return addr, true, nil
}

// BackgroundURL extracts the address of the first url(...) expression in a
// style attribute, without surrounding quotes.
func BackgroundURL(style string) string {
	match := backgroundURLRegex.FindStringSubmatch(style)
	if match == nil {
		return ""
	}
	addr := match[backgroundURLRegex.SubexpIndex("url")]
	return strings.Trim(addr, `"' `)
}

// DefaultLocators returns the catalog's image strategies in the order they
// are tried: the diagram image, then the product gallery background.
func DefaultLocators() []Locator {
	return []Locator{
		InlineImageLocator{Selector: "div.image-svg img", Attr: "src"},
		BackgroundImageLocator{Selector: "div#currentImg"},
	}
}
