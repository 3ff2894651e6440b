package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures a ChromeSession.
type ChromeOptions struct {
	UserAgent      string
	Headless       bool
	RequestTimeout time.Duration
}

// ChromeSession drives a headless Chrome tab, for catalogs that render
// their tables with scripts. Queries run against a DOM snapshot taken on
// first use after each navigation.
type ChromeSession struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	timeout     time.Duration

	location string
	current  *snapshot
}

// NewChromeSession starts a browser process and opens one tab.
func NewChromeSession(parent context.Context, opts ChromeOptions) (*ChromeSession, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// first Run launches the browser
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ChromeSession{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		timeout:     timeout,
	}, nil
}

// Goto navigates the tab to address.
func (s *ChromeSession) Goto(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	navCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var location string
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(address),
		chromedp.Location(&location),
	); err != nil {
		return &NavigationError{URL: address, Err: classifyError(err)}
	}

	s.location = location
	s.current = nil
	return nil
}

// WaitForSelector blocks until selector reaches the awaited state or the
// timeout elapses.
func (s *ChromeSession) WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error {
	if s.location == "" {
		return ErrNoPage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	action := chromedp.WaitReady(selector, chromedp.ByQuery)
	if opts.State == StateVisible {
		action = chromedp.WaitVisible(selector, chromedp.ByQuery)
	}
	if err := chromedp.Run(waitCtx, action); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &WaitTimeoutError{Selector: selector, URL: s.location, Timeout: timeout}
		}
		return fmt.Errorf("wait for %q: %w", selector, err)
	}

	// scripts may have changed the DOM since the last snapshot
	s.current = nil
	if opts.Strict {
		page, err := s.snapshot()
		if err != nil {
			return err
		}
		if _, err := page.check(selector, WaitOptions{Strict: true}); err != nil {
			return err
		}
	}
	return nil
}

// QuerySelectorAll returns every element matching selector in document order.
func (s *ChromeSession) QuerySelectorAll(_ context.Context, selector string) ([]Element, error) {
	page, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return page.queryAll(selector), nil
}

// QuerySelector returns the first element matching selector.
func (s *ChromeSession) QuerySelector(_ context.Context, selector string) (Element, bool, error) {
	page, err := s.snapshot()
	if err != nil {
		return Element{}, false, err
	}
	el, ok := page.query(selector)
	return el, ok, nil
}

// URL returns the tab's current location.
func (s *ChromeSession) URL() string {
	return s.location
}

// Close shuts the tab and the browser process down.
func (s *ChromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

func (s *ChromeSession) snapshot() (*snapshot, error) {
	if s.location == "" {
		return nil, ErrNoPage
	}
	if s.current != nil {
		return s.current, nil
	}

	snapCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	var html string
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.location, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", s.location, err)
	}

	s.current = &snapshot{doc: doc, url: s.location}
	return s.current, nil
}
