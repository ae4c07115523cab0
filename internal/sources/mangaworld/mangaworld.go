// Package mangaworld declares the MangaWorld source. The site is
// Italian, so chapter labels read "Capitolo N"; number inference in the
// shared extractor handles that prefix.
package mangaworld

import (
	"log/slog"

	"github.com/gabriel/source-aggregator/backend/internal/sources"
)

const (
	Key     = "mangaworld"
	baseURL = "https://www.mangaworld.ac"
)

// Config returns the selector strategy set for MangaWorld. Exported so
// the adult mirror can reuse it with its own base URL.
func Config() sources.SiteConfig {
	return sources.SiteConfig{
		Key:          Key,
		Name:         "MangaWorld",
		BaseURL:      baseURL,
		AllowedHosts: []string{"mangaworld.ac", "mangaworld.in"},
		ContentKind:  sources.KindManga,
		SearchPath:   "/archive?keyword={query}",
		Search: sources.EntrySelectors{
			Entries: []string{".comics-grid .entry", ".comics-flex .entry", ".entry"},
			Link:    []string{"a.thumb", "a[href*='/manga/']", "a"},
			Title:   []string{"a.manga-title", ".manga-title", ".name a", ".name"},
			Cover:   []string{"a.thumb img", "img"},
		},
		Trending: sources.EntrySelectors{
			Entries: []string{".comics-flex .entry", ".top-wrapper .entry", ".hot .entry", ".comics-grid .entry"},
			Link:    []string{"a.thumb", "a[href*='/manga/']", "a"},
			Title:   []string{"a.manga-title", ".manga-title", ".name"},
			Cover:   []string{"a.thumb img", "img"},
		},
		Details: sources.DetailSelectors{
			Title:    []string{".info h1.name", "h1.name", ".info h1", "h1"},
			Cover:    []string{".thumb img", ".info img", "meta[property='og:image']"},
			AltTitle: []string{".meta-data .alternatives", ".alternatives"},
			Authors:  []string{".meta-data a[href*='author=']", "a[href*='author=']"},
			Artists:  []string{".meta-data a[href*='artist=']", "a[href*='artist=']"},
			Genres:   []string{".meta-data a[href*='genre=']", "a.badge[href*='genre=']"},
			Status:   []string{".meta-data a[href*='status=']", "a[href*='status=']"},
			Type:     []string{".meta-data a[href*='type=']", "a[href*='type=']"},
			Year:     []string{".meta-data a[href*='year=']", "a[href*='year=']"},
			Synopsis: []string{"#noidungm", ".comic-description .content", ".description"},
		},
		Chapters: sources.ChapterSelectors{
			Anchors:          []string{".chapters-wrapper .chapter a.chap", ".chapters-wrapper a.chap", ".chapter a", "a.chap"},
			Labels:           []string{"span.d-inline-block", "span"},
			ReaderPathMarker: "/read/",
		},
		Pages: sources.PageSelectors{
			Images:        []string{"#page img", ".page img", "img.page-image", ".col-12.text-center img"},
			ListViewQuery: "style=list",
		},
	}
}

// New builds the MangaWorld adapter on the shared site interpreter.
func New(fetcher sources.Fetcher, logger *slog.Logger) (*sources.SiteAdapter, error) {
	return sources.NewSiteAdapter(Config(), fetcher, logger)
}
