// Package aggregator fans queries out to every configured source and
// merges the results. Adapter order is the priority order: it decides
// which duplicate survives dedup and which sources are tried first when
// falling back.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gabriel/source-aggregator/backend/internal/searchutil"
	"github.com/gabriel/source-aggregator/backend/internal/sources"
)

const trendingCap = 20

var ErrUnknownSource = errors.New("unknown source")

// Aggregator is constructed once at startup and handed to consumers;
// there is no package-level instance.
type Aggregator struct {
	adapters []sources.Adapter
	logger   *slog.Logger
}

// SearchResult partitions merged search output. All is deduplicated by
// normalized title across sources; Manga and Novels are kind-filtered
// views of it. BySource keeps each source's untouched contribution.
type SearchResult struct {
	All      []sources.SeriesSummary            `json:"all"`
	Manga    []sources.SeriesSummary            `json:"manga"`
	Novels   []sources.SeriesSummary            `json:"novels"`
	BySource map[string][]sources.SeriesSummary `json:"bySource"`
}

// Descriptor describes one configured source for API consumers.
type Descriptor struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	ContentKind string `json:"contentKind"`
	Adult       bool   `json:"adult"`
}

func New(logger *slog.Logger, adapters ...sources.Adapter) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{adapters: adapters, logger: logger}
}

// Sources lists the configured adapters in priority order.
func (g *Aggregator) Sources() []Descriptor {
	descriptors := make([]Descriptor, 0, len(g.adapters))
	for _, adapter := range g.adapters {
		descriptors = append(descriptors, Descriptor{
			Key:         adapter.Key(),
			Name:        adapter.Name(),
			ContentKind: adapter.ContentKind(),
			Adult:       adapter.Adult(),
		})
	}
	return descriptors
}

// SearchAll queries every source concurrently. A failing source
// contributes an empty list; the call itself always succeeds.
func (g *Aggregator) SearchAll(ctx context.Context, query string) *SearchResult {
	perSource := g.fanOut(ctx, func(ctx context.Context, adapter sources.Adapter) []sources.SeriesSummary {
		return adapter.Search(ctx, query)
	})

	result := &SearchResult{
		All:      []sources.SeriesSummary{},
		Manga:    []sources.SeriesSummary{},
		Novels:   []sources.SeriesSummary{},
		BySource: make(map[string][]sources.SeriesSummary, len(g.adapters)),
	}

	seen := make(map[string]struct{})
	for i, adapter := range g.adapters {
		result.BySource[adapter.Key()] = perSource[i]
		for _, summary := range perSource[i] {
			key := searchutil.DedupKey(summary.Title)
			if key == "" {
				key = summary.URL
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			result.All = append(result.All, summary)
			if summary.ContentKind == sources.KindNovel {
				result.Novels = append(result.Novels, summary)
			} else {
				result.Manga = append(result.Manga, summary)
			}
		}
	}

	return result
}

// Trending merges every source's trending list, deduplicated by
// normalized title and truncated to 20 entries.
func (g *Aggregator) Trending(ctx context.Context) []sources.SeriesSummary {
	perSource := g.fanOut(ctx, func(ctx context.Context, adapter sources.Adapter) []sources.SeriesSummary {
		return adapter.Trending(ctx)
	})

	merged := make([]sources.SeriesSummary, 0, trendingCap)
	seen := make(map[string]struct{})
	for _, list := range perSource {
		for _, summary := range list {
			key := searchutil.DedupKey(summary.Title)
			if key == "" {
				key = summary.URL
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, summary)
			if len(merged) == trendingCap {
				return merged
			}
		}
	}

	return merged
}

// FetchSeries resolves series details via the named source. When that
// source fails, every other source is tried in priority order; stale
// or wrong source hints from callers are common enough to make the
// fallback worth its cost. The original error is returned if nobody
// can resolve the URL.
func (g *Aggregator) FetchSeries(ctx context.Context, rawURL string, sourceKey string) (*sources.SeriesDetails, error) {
	primary, err := g.adapterByKey(sourceKey)
	if err != nil {
		return nil, err
	}

	details, primaryErr := primary.FetchSeries(ctx, rawURL)
	if primaryErr == nil {
		return details, nil
	}
	g.logger.Warn("series fetch failed on hinted source, trying fallbacks",
		"source", sourceKey, "url", rawURL, "error", primaryErr)

	for _, adapter := range g.adapters {
		if adapter.Key() == primary.Key() {
			continue
		}
		if details, err := adapter.FetchSeries(ctx, rawURL); err == nil {
			return details, nil
		}
	}

	return nil, primaryErr
}

// FetchChapter resolves chapter content via the named source only.
// Chapter URLs are source-specific; no other adapter could succeed.
func (g *Aggregator) FetchChapter(ctx context.Context, rawURL string, sourceKey string) (*sources.ChapterContent, error) {
	adapter, err := g.adapterByKey(sourceKey)
	if err != nil {
		return nil, err
	}
	return adapter.FetchChapter(ctx, rawURL)
}

// fanOut runs one call per adapter concurrently and joins after every
// call settles. A panicking adapter is contained so sibling fetches
// still land.
func (g *Aggregator) fanOut(ctx context.Context, call func(context.Context, sources.Adapter) []sources.SeriesSummary) [][]sources.SeriesSummary {
	perSource := make([][]sources.SeriesSummary, len(g.adapters))

	var wg sync.WaitGroup
	for i, adapter := range g.adapters {
		wg.Add(1)
		go func(i int, adapter sources.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					g.logger.Error("source adapter panicked", "source", adapter.Key(), "panic", r)
				}
			}()
			perSource[i] = call(ctx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	return perSource
}

func (g *Aggregator) adapterByKey(key string) (sources.Adapter, error) {
	for _, adapter := range g.adapters {
		if adapter.Key() == key {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, key)
}
