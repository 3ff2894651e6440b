// Package browser provides page sessions: load a page by address, wait for a
// selector with a bounded timeout, and query the loaded document.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// WaitState is the element state WaitForSelector waits for.
type WaitState int

const (
	// StateAttached waits for the element to be present in the DOM.
	StateAttached WaitState = iota
	// StateVisible waits for the element to be present and visible.
	StateVisible
)

// DefaultWaitTimeout bounds WaitForSelector when no timeout is given.
const DefaultWaitTimeout = 4 * time.Second

// WaitOptions controls WaitForSelector.
type WaitOptions struct {
	State WaitState
	// Strict fails the wait when more than one element matches.
	Strict  bool
	Timeout time.Duration
}

// DefaultWaitOptions waits for an attached element, non-strict, for timeout.
func DefaultWaitOptions(timeout time.Duration) WaitOptions {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return WaitOptions{State: StateAttached, Strict: false, Timeout: timeout}
}

// Session is a single navigable page context. Only the current page can be
// queried; every Goto replaces it. A session is not safe for concurrent use.
type Session interface {
	Goto(ctx context.Context, address string) error
	WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error
	QuerySelectorAll(ctx context.Context, selector string) ([]Element, error)
	QuerySelector(ctx context.Context, selector string) (Element, bool, error)
	// URL returns the address of the current page.
	URL() string
	Close() error
}

// ResolveURL makes ref absolute against base. Protocol-relative references
// take the base scheme, or http when base has none.
func ResolveURL(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty address")
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse address %q: %w", ref, err)
	}

	if base != "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("parse base %q: %w", base, err)
		}
		refURL = baseURL.ResolveReference(refURL)
	}

	if refURL.Scheme == "" {
		refURL.Scheme = "http"
	}
	if refURL.Host == "" {
		return "", fmt.Errorf("address %q has no host", ref)
	}
	return refURL.String(), nil
}
