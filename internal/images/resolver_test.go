package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"networkpro-client/internal/config"
)

func testConfig(baseURL string) config.Config {
	cfg := config.DefaultConfig()
	cfg.ImageBaseURL = baseURL
	cfg.ProbeTimeout = 2 * time.Second
	return cfg
}

func TestResolveEmptyRefReturnsFallback(t *testing.T) {
	resolver := NewResolver(testConfig("http://images.invalid"), nil)

	got := resolver.Resolve(context.Background(), "", "fallback.png")
	if got != "fallback.png" {
		t.Fatalf("got %q, want fallback.png", got)
	}

	got = resolver.Resolve(context.Background(), "   ", "fallback.png")
	if got != "fallback.png" {
		t.Fatalf("got %q, want fallback.png for blank ref", got)
	}
}

func TestResolveAbsoluteRefPassesThrough(t *testing.T) {
	resolver := NewResolver(testConfig("http://images.invalid"), nil)

	ref := "https://cdn.example.com/a.jpg"
	if got := resolver.Resolve(context.Background(), ref, "fallback.png"); got != ref {
		t.Fatalf("got %q, want %q", got, ref)
	}
}

func TestResolveProbesAndCachesRelativeRef(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD probe, got %s", r.Method)
		}
		atomic.AddInt32(&probes, 1)
		if r.URL.Path == "/profile-pictures/42/me.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(testConfig(server.URL), nil)

	want := server.URL + "/profile-pictures/42/me.jpg"
	got := resolver.Resolve(context.Background(), "/profile-pictures/42/me.jpg", "fallback.png")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	// Second resolve is served from the resolution cache without a probe.
	before := atomic.LoadInt32(&probes)
	if got := resolver.Resolve(context.Background(), "/profile-pictures/42/me.jpg", "fallback.png"); got != want {
		t.Fatalf("cached resolve got %q, want %q", got, want)
	}
	if atomic.LoadInt32(&probes) != before {
		t.Fatal("expected cached resolve to skip the probe")
	}
}

func TestResolveBareRefTriesProfilePicturePrefixFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/profile-pictures/me.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(testConfig(server.URL), nil)

	want := server.URL + "/profile-pictures/me.jpg"
	if got := resolver.Resolve(context.Background(), "me.jpg", "fallback.png"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveFallsBackToBaseJoin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/7/banner.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(testConfig(server.URL), nil)

	want := server.URL + "/7/banner.jpg"
	if got := resolver.Resolve(context.Background(), "/7/banner.jpg", "fallback.png"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveUnreachableRefIsNotCachedNegatively(t *testing.T) {
	var available atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if available.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(testConfig(server.URL), nil)

	ref := "/profile-pictures/42/late.jpg"
	if got := resolver.Resolve(context.Background(), ref, "fallback.png"); got != "fallback.png" {
		t.Fatalf("got %q, want fallback while unreachable", got)
	}

	// Upload finished propagating; the retry must probe again and succeed.
	available.Store(true)
	want := server.URL + ref
	if got := resolver.Resolve(context.Background(), ref, "fallback.png"); got != want {
		t.Fatalf("got %q, want %q after host became reachable", got, want)
	}
}

func TestForgetDropsResolution(t *testing.T) {
	var probes int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&probes, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resolver := NewResolver(testConfig(server.URL), nil)

	ref := "/profile-pictures/42/me.jpg"
	resolver.Resolve(context.Background(), ref, "fallback.png")
	resolver.Forget(ref)
	resolver.Resolve(context.Background(), ref, "fallback.png")

	if atomic.LoadInt32(&probes) != 2 {
		t.Fatalf("expected 2 probes after Forget, got %d", probes)
	}
}
