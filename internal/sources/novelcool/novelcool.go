// Package novelcool declares the NovelCool source. NovelCool hosts
// both novels and comics; the adapter is registered as a novel source,
// and text extraction is tried before image discovery so prose chapters
// come back as text bodies.
package novelcool

import (
	"log/slog"

	"github.com/gabriel/source-aggregator/backend/internal/sources"
)

const (
	Key     = "novelcool"
	baseURL = "https://www.novelcool.com"
)

func Config() sources.SiteConfig {
	return sources.SiteConfig{
		Key:          Key,
		Name:         "NovelCool",
		BaseURL:      baseURL,
		AllowedHosts: []string{"novelcool.com"},
		ContentKind:  sources.KindNovel,
		SearchPath:   "/search/?name={query}",
		Search: sources.EntrySelectors{
			Entries: []string{".book-item", ".category-book .book-item", ".search-list .book-item"},
			Link:    []string{".book-name a", "a.book-pic", "a"},
			Title:   []string{".book-name", ".book-name a"},
			Cover:   []string{".book-pic img", "img.lazy", "img"},
		},
		Trending: sources.EntrySelectors{
			Entries: []string{".index-book-list .book-item", ".rank-book-list .book-item", ".book-item"},
			Link:    []string{".book-name a", "a"},
			Title:   []string{".book-name", ".book-name a"},
			Cover:   []string{".book-pic img", "img"},
		},
		Details: sources.DetailSelectors{
			Title:    []string{".bk-side-intro-most h1", ".bookinfo-title", "h1.bk-name", "h1"},
			Cover:    []string{".bk-side-intro-most img", ".bookinfo-pic img", "meta[property='og:image']"},
			AltTitle: []string{".bk-alias", ".bookinfo-alias"},
			Authors:  []string{".bk-side-intro-most a[href*='author']", "a[href*='/author/']"},
			Genres:   []string{".bk-cate-item", "a[href*='/category/']"},
			Status:   []string{".bk-continue", ".bookinfo-status"},
			Synopsis: []string{".bk-summary-txt", ".bookinfo-summary", ".summary"},
		},
		Chapters: sources.ChapterSelectors{
			Anchors:          []string{".chapter-item-list a", ".chp-item a", ".chapter-item a"},
			Labels:           []string{".chapter-item-headline", "span"},
			ReaderPathMarker: "/chapter/",
		},
		Pages: sources.PageSelectors{
			Images: []string{".mangaread-img img", ".chapter-reading-section img", "img.manga_pic"},
			Text:   []string{".chapter-reading-section", "#chp_contents", ".overflow-hidden p"},
		},
	}
}

func New(fetcher sources.Fetcher, logger *slog.Logger) (*sources.SiteAdapter, error) {
	return sources.NewSiteAdapter(Config(), fetcher, logger)
}
