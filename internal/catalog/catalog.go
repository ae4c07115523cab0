// Package catalog serves listing-style queries (latest updates, most
// favorited, top by type, filtered archive search) against the
// MangaWorld family, separate from per-series search and details.
// Listings are hammered by the UI on every page view, so results are
// cached for a few minutes in memory with an optional sqlite layer
// underneath.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/source-aggregator/backend/internal/extract"
	"github.com/gabriel/source-aggregator/backend/internal/sources"
	"github.com/gabriel/source-aggregator/backend/internal/sources/mangaworld"
	"github.com/gabriel/source-aggregator/backend/internal/sources/mangaworldadult"
)

const (
	DefaultTTL = 5 * time.Minute

	// hasMoreItemThreshold is part of a deliberately lossy heuristic:
	// the sites expose no total count, so a full-looking page, a next
	// control, or an early page number each count as "probably more".
	// Callers must tolerate a false positive followed by an empty page.
	hasMoreItemThreshold = 15
	hasMoreEagerPages    = 3
)

var nextControlSelectors = []string{
	"a[rel='next']",
	".pagination .page-item:not(.disabled) a[aria-label='Next']",
	".pagination a.next",
	"li.next a",
}

// Page is the uniform result shape of every catalog query.
type Page struct {
	Results []sources.SeriesSummary `json:"results"`
	HasMore bool                    `json:"hasMore"`
	Page    int                     `json:"page"`
}

// Filters narrows an advanced archive search. Single value per filter;
// multi-genre intersection is the caller's business (one query per
// genre, intersect by URL).
type Filters struct {
	Genre        string
	Type         string
	Status       string
	Sort         string
	Year         int
	Page         int
	IncludeAdult bool
}

type Service struct {
	fetcher sources.Fetcher
	store   *Store
	ttl     time.Duration
	logger  *slog.Logger

	baseURL      string
	adultBaseURL string
	entries      sources.EntrySelectors

	mu  sync.RWMutex
	mem map[string]memEntry
}

type memEntry struct {
	page    *Page
	expires time.Time
}

// NewService builds the catalog service. store may be nil to run
// memory-only (tests do).
func NewService(fetcher sources.Fetcher, store *Store, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:      fetcher,
		store:        store,
		ttl:          ttl,
		logger:       logger,
		baseURL:      mangaworld.Config().BaseURL,
		adultBaseURL: mangaworldadult.Config().BaseURL,
		entries:      mangaworld.Config().Search,
		mem:          make(map[string]memEntry),
	}
}

func (s *Service) LatestUpdates(ctx context.Context, includeAdult bool, page int) (*Page, error) {
	values := url.Values{}
	values.Set("sort", "newest")
	return s.listing(ctx, "latest", includeAdult, page, values)
}

func (s *Service) MostFavorites(ctx context.Context, includeAdult bool, page int) (*Page, error) {
	values := url.Values{}
	values.Set("sort", "most_read")
	return s.listing(ctx, "favorites", includeAdult, page, values)
}

func (s *Service) TopByType(ctx context.Context, contentType string, includeAdult bool, page int) (*Page, error) {
	contentType = strings.TrimSpace(contentType)

	values := url.Values{}
	values.Set("sort", "most_read")
	if contentType != "" {
		values.Set("type", contentType)
	}
	return s.listing(ctx, "top:"+contentType, includeAdult, page, values)
}

func (s *Service) SearchAdvanced(ctx context.Context, filters Filters) (*Page, error) {
	values := url.Values{}
	if filters.Genre != "" {
		values.Set("genre", filters.Genre)
	}
	if filters.Type != "" {
		values.Set("type", filters.Type)
	}
	if filters.Status != "" {
		values.Set("status", filters.Status)
	}
	if filters.Year > 0 {
		values.Set("year", strconv.Itoa(filters.Year))
	}
	if filters.Sort != "" {
		values.Set("sort", filters.Sort)
	}

	key := fmt.Sprintf("advanced:%s:%s:%s:%d:%s",
		filters.Genre, filters.Type, filters.Status, filters.Year, filters.Sort)
	return s.listing(ctx, key, filters.IncludeAdult, filters.Page, values)
}

func (s *Service) listing(ctx context.Context, operation string, includeAdult bool, page int, values url.Values) (*Page, error) {
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))

	base := s.baseURL
	if includeAdult {
		base = s.adultBaseURL
	}
	target := base + "/archive?" + values.Encode()

	cacheKey := fmt.Sprintf("%s|adult=%t|page=%d", operation, includeAdult, page)
	if cached, ok := s.cacheGet(cacheKey); ok {
		return cached, nil
	}

	body, err := s.fetcher.FetchHTML(ctx, target, base)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse catalog listing: %w", err)
	}

	result := &Page{
		Results: s.parseEntries(doc, base, includeAdult),
		Page:    page,
	}
	result.HasMore = s.hasMore(doc, result.Results, page)

	s.cacheSet(cacheKey, result)
	return result, nil
}

func (s *Service) parseEntries(doc *goquery.Document, base string, adult bool) []sources.SeriesSummary {
	var results []sources.SeriesSummary

	sourceKey := mangaworld.Key
	if adult {
		sourceKey = mangaworldadult.Key
	}

	extract.FirstMatching(doc, s.entries.Entries).Each(func(_ int, entry *goquery.Selection) {
		link := entry
		if !entry.Is("a") {
			link = extract.FirstMatchingIn(entry, s.entries.Link).First()
		}
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" {
			return
		}

		title := extract.CleanText(extract.FirstMatchingIn(entry, s.entries.Title).First().Text())
		if title == "" {
			title = extract.CleanText(link.AttrOr("title", ""))
		}
		if title == "" {
			return
		}

		cover := ""
		if img := extract.FirstMatchingIn(entry, s.entries.Cover).First(); img.Length() > 0 {
			cover = extract.AbsoluteURL(base, extract.ImageSource(img))
		}

		results = append(results, sources.SeriesSummary{
			URL:         extract.AbsoluteURL(base, href),
			Title:       title,
			CoverURL:    cover,
			SourceKey:   sourceKey,
			ContentKind: sources.KindManga,
			Adult:       adult,
		})
	})

	return results
}

func (s *Service) hasMore(doc *goquery.Document, results []sources.SeriesSummary, page int) bool {
	if len(results) >= hasMoreItemThreshold {
		return true
	}
	if extract.FirstMatching(doc, nextControlSelectors).Length() > 0 {
		return true
	}
	return page <= hasMoreEagerPages && len(results) > 0
}

func (s *Service) cacheGet(key string) (*Page, bool) {
	now := time.Now()

	s.mu.RLock()
	entry, ok := s.mem[key]
	s.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.page, true
	}

	if s.store == nil {
		return nil, false
	}

	payload, expires, ok := s.store.Get(key, now)
	if !ok {
		return nil, false
	}
	var page Page
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, false
	}

	s.mu.Lock()
	s.mem[key] = memEntry{page: &page, expires: expires}
	s.mu.Unlock()

	return &page, true
}

func (s *Service) cacheSet(key string, page *Page) {
	expires := time.Now().Add(s.ttl)

	s.mu.Lock()
	s.mem[key] = memEntry{page: page, expires: expires}
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	payload, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := s.store.Set(key, payload, expires); err != nil {
		s.logger.Warn("catalog cache persist failed", "key", key, "error", err)
	}
}
