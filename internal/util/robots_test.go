package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func robotsServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if hits != nil {
			hits.Add(1)
		}
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := robotsServer(t, "User-agent: hawkdove\nDisallow: /private/\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n", &hits)

	checker := NewRobotsChecker("hawkdove/0.1 (+https://example.com)", 5*time.Second, nil)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/monetarypolicy/minutes.htm")
	if err != nil {
		t.Fatalf("CanFetch() error: %v", err)
	}
	if !allowed {
		t.Error("expected public path to be allowed for the hawkdove group")
	}
	if delay != 2*time.Second {
		t.Errorf("crawl delay = %v, want 2s", delay)
	}

	allowed, _, _ = checker.CanFetch(ctx, server.URL+"/private/x.htm")
	if allowed {
		t.Error("expected /private/ to be disallowed")
	}

	if hits.Load() != 1 {
		t.Errorf("robots.txt fetched %d times, want 1 (cached)", hits.Load())
	}

	checker.Clear()
	_, _, _ = checker.CanFetch(ctx, server.URL+"/")
	if hits.Load() != 2 {
		t.Errorf("expected refetch after Clear, got %d fetches", hits.Load())
	}
}

func TestRobotsChecker_Check(t *testing.T) {
	server := robotsServer(t, "User-agent: *\nDisallow: /\n", nil)
	checker := NewRobotsChecker("hawkdove/0.1", 5*time.Second, nil)

	_, err := checker.Check(context.Background(), server.URL+"/page.htm")
	if !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("hawkdove/0.1", 5*time.Second, nil)
	if _, err := checker.Check(context.Background(), server.URL+"/anything"); err != nil {
		t.Errorf("missing robots.txt should allow, got %v", err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"hawkdove/0.1 (+https://github.com/ppiankov/hawkdove)": "hawkdove",
		"curl":            "curl",
		"":                "",
		"  spaced/2 more": "spaced",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
