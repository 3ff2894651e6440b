package browser

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/jarcoal/httpmock"
)

const fixturePage = `<html><body>
<div id="list">
  <a class="group" href="/g/1">  Bumpers
     &amp; Trim </a>
  <a class="group" href="//cdn.test/g/2">Doors</a>
</div>
<p class="single" hidden>secret</p>
</body></html>`

func htmlResponder(status int, body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(status, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

func newTestSession(t *testing.T, cacheSize int) (*StaticSession, *httpmock.MockTransport) {
	t.Helper()
	s, err := NewStaticSession(StaticOptions{UserAgent: "test-agent", CacheSize: cacheSize})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	transport := httpmock.NewMockTransport()
	s.WithTransport(transport)
	return s, transport
}

func TestStaticSessionQueries(t *testing.T) {
	s, transport := newTestSession(t, 0)
	transport.RegisterResponder("GET", "http://example.test/index", htmlResponder(200, fixturePage))

	ctx := context.Background()
	if err := s.Goto(ctx, "http://example.test/index"); err != nil {
		t.Fatalf("goto: %v", err)
	}
	if s.URL() != "http://example.test/index" {
		t.Fatalf("url = %q", s.URL())
	}

	if err := s.WaitForSelector(ctx, "a.group", DefaultWaitOptions(0)); err != nil {
		t.Fatalf("wait for present selector: %v", err)
	}

	links, err := s.QuerySelectorAll(ctx, "a.group")
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if got := links[0].InnerText(); got != "Bumpers & Trim" {
		t.Fatalf("inner text = %q, want collapsed whitespace", got)
	}
	if href, ok := links[1].Attr("href"); !ok || href != "//cdn.test/g/2" {
		t.Fatalf("href = %q/%v", href, ok)
	}
	if _, ok := links[0].Attr("title"); ok {
		t.Fatalf("missing attribute reported present")
	}

	list, ok, err := s.QuerySelector(ctx, "div#list")
	if err != nil || !ok {
		t.Fatalf("query div#list: ok=%v err=%v", ok, err)
	}
	if _, ok := list.Find("a.group"); !ok {
		t.Fatalf("nested find failed")
	}
	if _, ok := list.Find("span.none"); ok {
		t.Fatalf("nested find of absent selector reported present")
	}
}

func TestStaticSessionWaitTimeout(t *testing.T) {
	s, transport := newTestSession(t, 0)
	transport.RegisterResponder("GET", "http://example.test/index", htmlResponder(200, fixturePage))

	ctx := context.Background()
	if err := s.Goto(ctx, "http://example.test/index"); err != nil {
		t.Fatalf("goto: %v", err)
	}

	err := s.WaitForSelector(ctx, "table.missing", DefaultWaitOptions(0))
	if !IsWaitTimeout(err) {
		t.Fatalf("expected wait timeout, got %v", err)
	}

	visible := DefaultWaitOptions(0)
	visible.State = StateVisible
	if err := s.WaitForSelector(ctx, "p.single", visible); !IsWaitTimeout(err) {
		t.Fatalf("hidden element should not satisfy visible wait, got %v", err)
	}
	if err := s.WaitForSelector(ctx, "p.single", DefaultWaitOptions(0)); err != nil {
		t.Fatalf("hidden element should satisfy attached wait: %v", err)
	}

	strict := DefaultWaitOptions(0)
	strict.Strict = true
	var strictErr *StrictModeError
	if err := s.WaitForSelector(ctx, "a.group", strict); !errors.As(err, &strictErr) || strictErr.Count != 2 {
		t.Fatalf("expected strict mode error for 2 matches, got %v", err)
	}
}

func TestStaticSessionErrorStatusStillLoads(t *testing.T) {
	s, transport := newTestSession(t, 8)
	transport.RegisterResponder("GET", "http://example.test/gone", htmlResponder(404, "<html><body><h1>Not found</h1></body></html>"))

	ctx := context.Background()
	if err := s.Goto(ctx, "http://example.test/gone"); err != nil {
		t.Fatalf("error page should load, got %v", err)
	}
	if err := s.WaitForSelector(ctx, "div.prod-benefit", DefaultWaitOptions(0)); !IsWaitTimeout(err) {
		t.Fatalf("expected wait timeout on error page, got %v", err)
	}
}

func TestStaticSessionNavigationError(t *testing.T) {
	s, transport := newTestSession(t, 0)
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	transport.RegisterResponder("GET", "http://example.test/down", httpmock.NewErrorResponder(dialErr))

	err := s.Goto(context.Background(), "http://example.test/down")
	var navErr *NavigationError
	if !errors.As(err, &navErr) {
		t.Fatalf("expected navigation error, got %v", err)
	}
	if IsWaitTimeout(err) {
		t.Fatalf("navigation error must be distinguishable from wait timeout")
	}
}

func TestStaticSessionCache(t *testing.T) {
	s, transport := newTestSession(t, 4)
	transport.RegisterResponder("GET", "http://example.test/index", htmlResponder(200, fixturePage))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Goto(ctx, "http://example.test/index"); err != nil {
			t.Fatalf("goto %d: %v", i, err)
		}
	}
	if got := transport.GetTotalCallCount(); got != 1 {
		t.Fatalf("transport calls = %d, want 1 with cache enabled", got)
	}
}

func TestQueryBeforeGoto(t *testing.T) {
	s, _ := newTestSession(t, 0)
	if _, err := s.QuerySelectorAll(context.Background(), "a"); !errors.Is(err, ErrNoPage) {
		t.Fatalf("expected ErrNoPage, got %v", err)
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		ref     string
		want    string
		wantErr bool
	}{
		{name: "absolute", base: "https://shop.test/a/", ref: "https://other.test/x.jpg", want: "https://other.test/x.jpg"},
		{name: "relative", base: "https://shop.test/a/b", ref: "c_123-x", want: "https://shop.test/a/c_123-x"},
		{name: "protocol relative", base: "https://shop.test/", ref: "//cdn/x.jpg", want: "https://cdn/x.jpg"},
		{name: "protocol relative without base", base: "", ref: "//cdn/x.jpg", want: "http://cdn/x.jpg"},
		{name: "empty", base: "https://shop.test/", ref: "  ", wantErr: true},
		{name: "no host", base: "", ref: "/only/path", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(tt.base, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveURL(%q, %q) error = %v, wantErr %v", tt.base, tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
			}
		})
	}
}
