package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Nickwheeler93/discord-book-bot/internal/domain"
	domainerrors "github.com/Nickwheeler93/discord-book-bot/internal/errors"
	"github.com/Nickwheeler93/discord-book-bot/internal/metadata/googlebooks"
)

const (
	// defaultCacheTTL bounds how long a member's last search stays
	// pickable by index.
	defaultCacheTTL = 10 * time.Minute

	// defaultCacheSize caps the number of members with live sessions.
	defaultCacheSize = 256
)

// CatalogSearcher is the external catalog client the search service talks
// to. Satisfied by *googlebooks.Client.
type CatalogSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]googlebooks.SearchResult, error)
}

type searchSession struct {
	results  []googlebooks.SearchResult
	storedAt time.Time
}

// SearchService runs catalog searches and keeps each member's last result
// set in a short-lived session so a follow-up "add 2" can pick by index.
// Sessions expire after a TTL and the session map is size-bounded; stale
// entries are dropped on access rather than by a background sweeper.
type SearchService struct {
	catalog CatalogSearcher
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]searchSession
	ttl      time.Duration
	maxSize  int
	now      func() time.Time
}

// SearchOption configures a SearchService.
type SearchOption func(*SearchService)

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) SearchOption {
	return func(s *SearchService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithSessionCap overrides the session map size bound.
func WithSessionCap(n int) SearchOption {
	return func(s *SearchService) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// NewSearchService creates a search service with the default session TTL
// and size bound.
func NewSearchService(catalog CatalogSearcher, logger *slog.Logger, opts ...SearchOption) *SearchService {
	s := &SearchService{
		catalog:  catalog,
		logger:   logger,
		sessions: make(map[string]searchSession),
		ttl:      defaultCacheTTL,
		maxSize:  defaultCacheSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the external catalog and caches the result set for the
// member. A transport failure comes back as a coded unavailable error; it is
// never fatal and nothing is cached for it.
func (s *SearchService) Search(ctx context.Context, externalID, query string, limit int) ([]googlebooks.SearchResult, error) {
	results, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		if errors.Is(err, googlebooks.ErrUnavailable) {
			s.logger.Warn("catalog search unavailable", "query", query, "error", err)
			return nil, domainerrors.Unavailable("catalog search is unavailable").WithCause(err)
		}
		return nil, domainerrors.Internal("catalog search failed").WithCause(err)
	}

	s.remember(externalID, results)
	return results, nil
}

// PickCached returns the idx-th (1-based) result from the member's last
// search. Expired or missing sessions come back as not found so the caller
// prompts for a fresh search.
func (s *SearchService) PickCached(externalID string, idx int) (*googlebooks.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[externalID]
	if !ok || s.now().Sub(session.storedAt) > s.ttl {
		delete(s.sessions, externalID)
		return nil, domainerrors.NotFound("no recent search results, search again")
	}
	if idx < 1 || idx > len(session.results) {
		return nil, domainerrors.Validationf("pick a number between 1 and %d", len(session.results))
	}

	r := session.results[idx-1]
	return &r, nil
}

func (s *SearchService) remember(externalID string, results []googlebooks.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, session := range s.sessions {
		if now.Sub(session.storedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}

	// Still over the cap after pruning: evict the oldest session.
	if len(s.sessions) >= s.maxSize {
		var oldestID string
		var oldestAt time.Time
		for id, session := range s.sessions {
			if oldestID == "" || session.storedAt.Before(oldestAt) {
				oldestID = id
				oldestAt = session.storedAt
			}
		}
		delete(s.sessions, oldestID)
	}

	s.sessions[externalID] = searchSession{results: results, storedAt: now}
}

// NewBookFromResult maps a catalog search hit to the identity used to find
// or create a shelf entry.
func NewBookFromResult(r *googlebooks.SearchResult) domain.NewBook {
	return domain.NewBook{
		Title:         r.Title,
		Author:        r.Author,
		CatalogID:     r.CatalogID,
		ISBN13:        r.ISBN13,
		PublishedYear: r.PublishedYear,
	}
}
