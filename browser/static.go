package browser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// StaticOptions configures a StaticSession.
type StaticOptions struct {
	UserAgent        string
	RequestTimeout   time.Duration
	Delay            time.Duration
	RespectRobotsTxt bool
	// CacheSize bounds the parsed-page cache. Zero disables caching.
	CacheSize int
}

// StaticSession loads pages as served, without running scripts. A page is
// fully present once loaded, so waits resolve without sleeping.
type StaticSession struct {
	collector *colly.Collector
	cache     *lru.Cache[string, *snapshot]
	current   *snapshot

	// set by the collector callbacks during a Visit
	body     []byte
	finalURL string
	status   int
}

// NewStaticSession builds a colly-backed session.
func NewStaticSession(opts StaticOptions) (*StaticSession, error) {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(opts.UserAgent),
	)

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.IgnoreRobotsTxt = !opts.RespectRobotsTxt
	// error pages are still pages: waits on them time out instead of
	// failing the navigation
	collector.ParseHTTPErrorResponse = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       opts.Delay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	s := &StaticSession{collector: collector}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, *snapshot](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create page cache: %w", err)
		}
		s.cache = cache
	}

	collector.OnResponse(func(r *colly.Response) {
		s.body = r.Body
		s.status = r.StatusCode
		s.finalURL = r.Request.URL.String()
	})

	return s, nil
}

// WithTransport replaces the HTTP transport used for page loads.
func (s *StaticSession) WithTransport(rt http.RoundTripper) {
	s.collector.WithTransport(rt)
}

// Goto loads address and makes it the current page.
func (s *StaticSession) Goto(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.cache != nil {
		if page, ok := s.cache.Get(address); ok {
			slog.Debug("page cache hit", slog.String("url", address))
			s.current = page
			return nil
		}
	}

	s.body, s.finalURL, s.status = nil, "", 0
	if err := s.collector.Visit(address); err != nil {
		return &NavigationError{URL: address, Err: classifyError(err)}
	}
	if s.finalURL == "" {
		return &NavigationError{URL: address, Err: fmt.Errorf("no response")}
	}
	if s.status >= http.StatusBadRequest {
		slog.Warn("non-2xx page response",
			slog.Int("status", s.status),
			slog.String("url", address),
		)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(s.body))
	if err != nil {
		return &NavigationError{URL: address, Err: fmt.Errorf("parse html: %w", err)}
	}
	s.current = &snapshot{doc: doc, url: s.finalURL}
	if s.cache != nil && s.status < http.StatusBadRequest {
		s.cache.Add(address, s.current)
	}
	return nil
}

// WaitForSelector checks the loaded page for selector. Absence is reported
// as a WaitTimeoutError.
func (s *StaticSession) WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error {
	if s.current == nil {
		return ErrNoPage
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := s.current.check(selector, opts)
	if err != nil {
		return err
	}
	if !ok {
		return &WaitTimeoutError{Selector: selector, URL: s.current.url, Timeout: opts.Timeout}
	}
	return nil
}

// QuerySelectorAll returns every element matching selector in document order.
func (s *StaticSession) QuerySelectorAll(_ context.Context, selector string) ([]Element, error) {
	if s.current == nil {
		return nil, ErrNoPage
	}
	return s.current.queryAll(selector), nil
}

// QuerySelector returns the first element matching selector.
func (s *StaticSession) QuerySelector(_ context.Context, selector string) (Element, bool, error) {
	if s.current == nil {
		return Element{}, false, ErrNoPage
	}
	el, ok := s.current.query(selector)
	return el, ok, nil
}

// URL returns the address of the current page.
func (s *StaticSession) URL() string {
	if s.current == nil {
		return ""
	}
	return s.current.url
}

// Close releases the page cache.
func (s *StaticSession) Close() error {
	if s.cache != nil {
		s.cache.Purge()
	}
	s.current = nil
	return nil
}
