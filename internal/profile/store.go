// Package profile holds the shared profile state every screen reads. One
// Store instance is constructed at startup and injected into consumers;
// mutations go through its entry points only, and each mutation is fanned
// out to subscribers before the call returns.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"networkpro-client/internal/cache"
	"networkpro-client/internal/config"
	"networkpro-client/internal/models"
)

// Backend is the slice of the user-service client the store needs.
type Backend interface {
	GetUser(ctx context.Context, userID string) (models.RawProfile, error)
	UpdateUser(ctx context.Context, userID string, fields map[string]any) (models.RawProfile, error)
	UpdateSkills(ctx context.Context, userID string, skills []string) (models.RawProfile, error)
}

// ImageResolver resolves a stored image reference to a loadable URL.
type ImageResolver interface {
	Resolve(ctx context.Context, rawRef, fallback string) string
}

// Store memoizes profile records and owns the current user's projection.
type Store struct {
	userID   string
	backend  Backend
	resolver ImageResolver
	cache    *cache.Store[models.ProfileRecord]
	logger   *slog.Logger

	// group collapses concurrent fetches for one key into a single
	// backend call.
	group singleflight.Group

	mu          sync.Mutex
	current     *models.ProfileRecord
	fetchSeq    map[string]uint64
	subscribers map[int]chan models.ProfileRecord
	nextSubID   int
}

// NewStore creates a Store for the given current user.
func NewStore(cfg config.Config, userID string, backend Backend, resolver ImageResolver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		userID:      userID,
		backend:     backend,
		resolver:    resolver,
		cache:       cache.New[models.ProfileRecord](cfg.ProfileCacheTTL),
		logger:      logger,
		fetchSeq:    make(map[string]uint64),
		subscribers: make(map[int]chan models.ProfileRecord),
	}
}

// Current returns the current user's projection, if one has been loaded.
func (s *Store) Current() (models.ProfileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.ProfileRecord{}, false
	}
	return *s.current, true
}

// GetProfile returns the profile for userID, served from cache while fresh.
func (s *Store) GetProfile(ctx context.Context, userID string) (models.ProfileRecord, error) {
	if record, ok := s.cache.Get(userID); ok {
		return record, nil
	}
	return s.fetch(ctx, userID)
}

// fetch pulls, normalizes, and caches one profile. Each fetch carries a
// per-key sequence number; a result is applied only when no newer fetch has
// been issued for the key, so a slow stale response cannot overwrite a
// fresher one.
func (s *Store) fetch(ctx context.Context, userID string) (models.ProfileRecord, error) {
	s.mu.Lock()
	s.fetchSeq[userID]++
	seq := s.fetchSeq[userID]
	s.mu.Unlock()

	value, err, _ := s.group.Do(userID, func() (any, error) {
		raw, err := s.backend.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		record := Normalize(raw)
		if s.resolver != nil {
			record.AvatarRef = s.resolver.Resolve(ctx, record.AvatarRef, "")
			record.BannerRef = s.resolver.Resolve(ctx, record.BannerRef, "")
		}
		return record, nil
	})
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("fetch profile %s: %w", userID, err)
	}
	record := value.(models.ProfileRecord)

	s.mu.Lock()
	latest := s.fetchSeq[userID]
	s.mu.Unlock()
	if seq != latest {
		s.logger.Debug("discarding superseded profile fetch", "user", userID, "seq", seq, "latest", latest)
		return record, nil
	}

	s.cache.Put(userID, record)
	if userID == s.userID {
		s.setCurrent(record)
	}
	return record, nil
}

// Refresh forces a cache invalidation and re-fetch of the current user's
// profile. On failure the already-applied local state is kept; confirmed
// server truth is never reverted just because a re-read failed.
func (s *Store) Refresh(ctx context.Context) error {
	s.Invalidate(s.userID)
	_, err := s.fetch(ctx, s.userID)
	return err
}

// Invalidate drops the cached record for userID and supersedes any fetch
// still in flight for it.
func (s *Store) Invalidate(userID string) {
	s.cache.Invalidate(userID)
	s.group.Forget(userID)
	s.mu.Lock()
	s.fetchSeq[userID]++
	s.mu.Unlock()
}

// UpdateAvatar applies a confirmed avatar change. An empty URL means the
// image was removed. The cached projection is patched in place and the new
// record is broadcast before UpdateAvatar returns.
func (s *Store) UpdateAvatar(url string) {
	s.patchCurrent(func(record *models.ProfileRecord) {
		record.AvatarRef = url
	})
}

// UpdateHeaderImage applies a confirmed banner change. An empty URL means
// the image was removed.
func (s *Store) UpdateHeaderImage(url string) {
	s.patchCurrent(func(record *models.ProfileRecord) {
		record.BannerRef = url
	})
}

// AddSkill appends one skill to the current profile, optimistically, and
// syncs the full list to the backend. The local list is rolled back when
// the sync fails. At most models.MaxSkills skills are kept; the limit is
// enforced before any network call.
func (s *Store) AddSkill(ctx context.Context, skill string) error {
	normalized := NormalizeSkill(skill)
	if !ValidSkill(normalized) {
		return fmt.Errorf("%w: skill must be between 1 and 50 characters", models.ErrInvalidOperation)
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no profile loaded", models.ErrInvalidOperation)
	}
	if slices.Contains(s.current.Skills, normalized) {
		s.mu.Unlock()
		return fmt.Errorf("%w: skill %q already added", models.ErrInvalidOperation, normalized)
	}
	if len(s.current.Skills) >= models.MaxSkills {
		s.mu.Unlock()
		return fmt.Errorf("%w: maximum %d skills allowed", models.ErrInvalidOperation, models.MaxSkills)
	}
	updated := append(slices.Clone(s.current.Skills), normalized)
	s.mu.Unlock()

	return s.syncSkills(ctx, updated)
}

// RemoveSkill drops one skill from the current profile, optimistically.
func (s *Store) RemoveSkill(ctx context.Context, skill string) error {
	normalized := NormalizeSkill(skill)

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no profile loaded", models.ErrInvalidOperation)
	}
	updated := slices.DeleteFunc(slices.Clone(s.current.Skills), func(existing string) bool {
		return existing == normalized
	})
	s.mu.Unlock()

	return s.syncSkills(ctx, updated)
}

// ReplaceSkills swaps the whole skills list, optimistically.
func (s *Store) ReplaceSkills(ctx context.Context, skills []string) error {
	cleaned := dedupeSkills(skills)
	for _, skill := range cleaned {
		if !ValidSkill(skill) {
			return fmt.Errorf("%w: skill %q must be between 1 and 50 characters", models.ErrInvalidOperation, skill)
		}
	}
	if len(cleaned) > models.MaxSkills {
		return fmt.Errorf("%w: maximum %d skills allowed", models.ErrInvalidOperation, models.MaxSkills)
	}

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no profile loaded", models.ErrInvalidOperation)
	}
	s.mu.Unlock()

	return s.syncSkills(ctx, cleaned)
}

// syncSkills applies the new list locally, pushes it to the backend, and
// rolls back on failure.
func (s *Store) syncSkills(ctx context.Context, skills []string) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no profile loaded", models.ErrInvalidOperation)
	}
	prior := slices.Clone(s.current.Skills)
	s.current.Skills = skills
	record := *s.current
	s.mu.Unlock()

	s.cache.Update(s.userID, func(cached models.ProfileRecord) models.ProfileRecord {
		cached.Skills = skills
		return cached
	})
	s.broadcast(record)

	if _, err := s.backend.UpdateSkills(ctx, s.userID, skills); err != nil {
		s.mu.Lock()
		if s.current != nil {
			s.current.Skills = prior
			record = *s.current
		}
		s.mu.Unlock()
		s.cache.Update(s.userID, func(cached models.ProfileRecord) models.ProfileRecord {
			cached.Skills = prior
			return cached
		})
		s.broadcast(record)
		s.logger.Warn("skills sync failed, rolled back", "error", err)
		return err
	}
	return nil
}

// UpdateProfile pushes a partial edit for the current user and folds the
// server's response back into the store.
func (s *Store) UpdateProfile(ctx context.Context, fields map[string]any) (models.ProfileRecord, error) {
	raw, err := s.backend.UpdateUser(ctx, s.userID, fields)
	if err != nil {
		return models.ProfileRecord{}, err
	}
	record := Normalize(raw)
	if s.resolver != nil {
		record.AvatarRef = s.resolver.Resolve(ctx, record.AvatarRef, "")
		record.BannerRef = s.resolver.Resolve(ctx, record.BannerRef, "")
	}
	s.cache.Put(s.userID, record)
	s.setCurrent(record)
	return record, nil
}

// Subscribe registers for profile updates. The returned channel always
// holds the most recent record; slow consumers see the latest value, not
// every intermediate one. The cancel function removes the subscription.
func (s *Store) Subscribe() (<-chan models.ProfileRecord, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.ProfileRecord, 1)
	s.subscribers[id] = ch

	if s.current != nil {
		ch <- *s.current
	}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Reset clears all cached profiles, the current projection, and every
// pending fetch. Used on logout and account deletion.
func (s *Store) Reset() {
	s.cache.InvalidateAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	for key := range s.fetchSeq {
		s.fetchSeq[key]++
	}
}

// CacheStats reports the number of cached profiles. Used by debug screens.
func (s *Store) CacheStats() int {
	return s.cache.Len()
}

func (s *Store) setCurrent(record models.ProfileRecord) {
	s.mu.Lock()
	s.current = &record
	s.mu.Unlock()
	s.broadcast(record)
}

func (s *Store) patchCurrent(patch func(*models.ProfileRecord)) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	patch(s.current)
	record := *s.current
	s.mu.Unlock()

	s.cache.Update(s.userID, func(cached models.ProfileRecord) models.ProfileRecord {
		patch(&cached)
		return cached
	})
	s.broadcast(record)
}

// broadcast delivers record to every subscriber, replacing an unconsumed
// older value so each channel always holds the newest record.
func (s *Store) broadcast(record models.ProfileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- record:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- record
		}
	}
}
