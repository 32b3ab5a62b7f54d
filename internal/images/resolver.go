// Package images resolves stored image references into URLs the client can
// actually load. References arrive as absolute URLs, host-relative paths, or
// bare filenames depending on which backend version wrote them.
package images

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"networkpro-client/internal/cache"
	"networkpro-client/internal/config"
)

// resolutionTTL bounds how long a verified URL is trusted before re-probing.
const resolutionTTL = 24 * time.Hour

// Resolver turns raw image references into reachable absolute URLs. A URL is
// only remembered after a successful reachability probe; failures are never
// cached so a later retry can pick up an upload that has finished
// propagating.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	resolved   *cache.Store[string]
	probeSem   *semaphore.Weighted
	logger     *slog.Logger
}

// NewResolver creates a Resolver probing against the configured image host.
func NewResolver(cfg config.Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	maxProbes := cfg.MaxProbeConcurrency
	if maxProbes <= 0 {
		maxProbes = 1
	}
	return &Resolver{
		baseURL:    strings.TrimRight(cfg.ImageBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.ProbeTimeout},
		resolved:   cache.New[string](resolutionTTL),
		probeSem:   semaphore.NewWeighted(maxProbes),
		logger:     logger,
	}
}

// Resolve returns a loadable URL for rawRef, or fallback when rawRef is
// empty or no candidate is reachable. The result is never empty as long as
// fallback is not. Concurrent calls for the same rawRef may each probe; the
// probe is idempotent so redundant work is harmless.
func (r *Resolver) Resolve(ctx context.Context, rawRef, fallback string) string {
	if strings.TrimSpace(rawRef) == "" {
		return fallback
	}

	// Absolute references pass through untouched.
	if strings.HasPrefix(rawRef, "http://") || strings.HasPrefix(rawRef, "https://") {
		return rawRef
	}

	if resolvedURL, ok := r.resolved.Get(rawRef); ok {
		return resolvedURL
	}

	for _, candidate := range r.candidates(rawRef) {
		if r.reachable(ctx, candidate) {
			r.resolved.Put(rawRef, candidate)
			r.logger.Debug("resolved image reference", "ref", rawRef, "url", candidate)
			return candidate
		}
	}

	r.logger.Debug("no reachable candidate for image reference", "ref", rawRef)
	return fallback
}

// Forget drops the remembered resolution for rawRef. Called after deleting
// an image so the stale URL is not served from the resolution cache.
func (r *Resolver) Forget(rawRef string) {
	r.resolved.Invalidate(rawRef)
}

// Reset clears every remembered resolution. Used on logout.
func (r *Resolver) Reset() {
	r.resolved.InvalidateAll()
}

// candidates builds the absolute URLs to probe, most specific first.
func (r *Resolver) candidates(rawRef string) []string {
	if strings.HasPrefix(rawRef, "/") {
		if strings.Contains(rawRef, "/profile-pictures/") || strings.Contains(rawRef, "/banner-images/") {
			return []string{r.baseURL + rawRef}
		}
		// Legacy refs carry only /userId/filename; assume a profile picture.
		return []string{
			r.baseURL + "/profile-pictures" + rawRef,
			r.baseURL + rawRef,
		}
	}
	return []string{
		r.baseURL + "/profile-pictures/" + rawRef,
		r.baseURL + "/" + rawRef,
	}
}

// reachable performs a HEAD probe, holding a semaphore slot so a burst of
// screens resolving images cannot flood the host.
func (r *Resolver) reachable(ctx context.Context, candidateURL string) bool {
	if err := r.probeSem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer r.probeSem.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidateURL, nil)
	if err != nil {
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
