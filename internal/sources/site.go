package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/source-aggregator/backend/internal/extract"
	"github.com/gabriel/source-aggregator/backend/internal/searchutil"
)

const (
	searchResultCap   = 20
	trendingResultCap = 10
)

// SiteAdapter is the selector-cascade interpreter behind every HTML
// source. Concrete sources differ only in their SiteConfig.
type SiteAdapter struct {
	config  SiteConfig
	fetcher Fetcher
	logger  *slog.Logger
}

func NewSiteAdapter(cfg SiteConfig, fetcher Fetcher, logger *slog.Logger) (*SiteAdapter, error) {
	if err := cfg.normalizeAndValidate(); err != nil {
		return nil, fmt.Errorf("source %q: %w", cfg.Key, err)
	}
	if fetcher == nil {
		return nil, fmt.Errorf("source %q: fetcher is required", cfg.Key)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteAdapter{config: cfg, fetcher: fetcher, logger: logger}, nil
}

func (a *SiteAdapter) Key() string         { return a.config.Key }
func (a *SiteAdapter) Name() string        { return a.config.Name }
func (a *SiteAdapter) BaseURL() string     { return a.config.BaseURL }
func (a *SiteAdapter) ContentKind() string { return a.config.ContentKind }
func (a *SiteAdapter) Adult() bool         { return a.config.Adult }

// Search fetches the site's search page for query and extracts up to 20
// entries. Any failure degrades to an empty result.
func (a *SiteAdapter) Search(ctx context.Context, query string) []SeriesSummary {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil
	}

	target := a.config.BaseURL + strings.ReplaceAll(a.config.SearchPath, "{query}", url.QueryEscape(trimmed))
	doc, err := a.fetchDocument(ctx, target)
	if err != nil {
		a.logger.Warn("search fetch failed", "source", a.config.Key, "query", trimmed, "error", err)
		return nil
	}

	return a.parseEntries(doc, a.config.Search, searchResultCap)
}

// Trending fetches the home (or configured trending) page and extracts
// up to 10 entries. Best-effort like Search.
func (a *SiteAdapter) Trending(ctx context.Context) []SeriesSummary {
	target := a.config.BaseURL
	if a.config.TrendingPath != "" {
		target += a.config.TrendingPath
	}

	doc, err := a.fetchDocument(ctx, target)
	if err != nil {
		a.logger.Warn("trending fetch failed", "source", a.config.Key, "error", err)
		return nil
	}

	return a.parseEntries(doc, a.config.Trending, trendingResultCap)
}

// FetchSeries loads and parses a series page into full details. A page
// with no resolvable title is treated as not found; a series with zero
// chapters is legitimate and returned as-is.
func (a *SiteAdapter) FetchSeries(ctx context.Context, rawURL string) (*SeriesDetails, error) {
	if err := a.checkOwnership(rawURL); err != nil {
		return nil, err
	}

	doc, err := a.fetchDocument(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch series page: %w", err)
	}

	title := a.firstText(doc, a.config.Details.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoTitleFound, rawURL)
	}

	details := &SeriesDetails{
		SeriesSummary: SeriesSummary{
			URL:         rawURL,
			Title:       title,
			CoverURL:    a.firstImage(doc, a.config.Details.Cover),
			SourceKey:   a.config.Key,
			ContentKind: a.config.ContentKind,
			Adult:       a.config.Adult,
		},
		AltTitles:   a.allTexts(doc, a.config.Details.AltTitle),
		Authors:     a.allTexts(doc, a.config.Details.Authors),
		Artists:     a.allTexts(doc, a.config.Details.Artists),
		Genres:      a.allTexts(doc, a.config.Details.Genres),
		Status:      a.firstText(doc, a.config.Details.Status),
		ContentType: a.firstText(doc, a.config.Details.Type),
		Synopsis:    a.firstText(doc, a.config.Details.Synopsis),
	}

	if rawYear := a.firstText(doc, a.config.Details.Year); rawYear != "" {
		if year, err := strconv.Atoi(extract.CleanText(rawYear)); err == nil {
			details.Year = year
		}
	}

	details.Chapters = extractChapterList(doc, a.config.BaseURL, a.config.Chapters)
	details.ChapterCount = len(details.Chapters)
	if details.ChapterCount == 0 {
		a.logger.Warn("series page has no extractable chapters", "source", a.config.Key, "url", rawURL)
	}

	return details, nil
}

// FetchChapter loads a chapter page and runs the page-discovery
// cascade. Failing every strategy is an error, never empty content.
func (a *SiteAdapter) FetchChapter(ctx context.Context, rawURL string) (*ChapterContent, error) {
	if err := a.checkOwnership(rawURL); err != nil {
		return nil, err
	}

	target := rawURL
	if q := a.config.Pages.ListViewQuery; q != "" && !strings.Contains(rawURL, q) {
		separator := "?"
		if strings.Contains(rawURL, "?") {
			separator = "&"
		}
		target = rawURL + separator + q
	}

	doc, err := a.fetchDocument(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch chapter page: %w", err)
	}

	if a.config.ContentKind == KindNovel {
		if body := a.firstText(doc, a.config.Pages.Text); body != "" {
			return &ChapterContent{URL: rawURL, Kind: ContentText, TextBody: body}, nil
		}
	}

	pages, err := a.discoverPages(ctx, doc, 0)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPagesFound, rawURL)
	}

	return &ChapterContent{URL: rawURL, Kind: ContentImages, Pages: pages}, nil
}

func (a *SiteAdapter) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	body, err := a.fetcher.FetchHTML(ctx, target, a.config.BaseURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func (a *SiteAdapter) checkOwnership(rawURL string) error {
	if len(a.config.AllowedHosts) == 0 {
		return nil
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range a.config.AllowedHosts {
		cleaned := strings.ToLower(strings.TrimSpace(allowed))
		if host == cleaned || strings.HasSuffix(host, "."+cleaned) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not on %s", ErrForeignURL, rawURL, a.config.Key)
}

func (a *SiteAdapter) parseEntries(doc *goquery.Document, selectors EntrySelectors, limit int) []SeriesSummary {
	var results []SeriesSummary

	extract.FirstMatching(doc, selectors.Entries).EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		link := entry
		if !entry.Is("a") {
			link = extract.FirstMatchingIn(entry, withDefault(selectors.Link, "a")).First()
		}
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if href == "" {
			return true
		}

		title := extract.CleanText(extract.FirstMatchingIn(entry, selectors.Title).First().Text())
		if title == "" {
			title = extract.CleanText(link.AttrOr("title", ""))
		}
		if title == "" {
			title = extract.CleanText(entry.Find("img").First().AttrOr("alt", ""))
		}
		if title == "" {
			return true
		}

		cover := ""
		if img := extract.FirstMatchingIn(entry, withDefault(selectors.Cover, "img")).First(); img.Length() > 0 {
			cover = extract.AbsoluteURL(a.config.BaseURL, extract.ImageSource(img))
		}

		results = append(results, SeriesSummary{
			URL:         extract.AbsoluteURL(a.config.BaseURL, href),
			Title:       title,
			CoverURL:    cover,
			SourceKey:   a.config.Key,
			ContentKind: a.config.ContentKind,
			Adult:       a.config.Adult,
		})
		return len(results) < limit
	})

	return results
}

func (a *SiteAdapter) firstText(doc *goquery.Document, candidates []string) string {
	return extract.CleanText(extract.FirstMatching(doc, candidates).First().Text())
}

func (a *SiteAdapter) firstImage(doc *goquery.Document, candidates []string) string {
	sel := extract.FirstMatching(doc, candidates).First()
	if sel.Length() == 0 {
		return ""
	}
	if src := extract.ImageSource(sel); src != "" {
		return extract.AbsoluteURL(a.config.BaseURL, src)
	}
	// Cover cascades may land on a container instead of the img itself.
	if src := extract.ImageSource(sel.Find("img").First()); src != "" {
		return extract.AbsoluteURL(a.config.BaseURL, src)
	}
	// og:image style meta tags carry the URL in content.
	return extract.AbsoluteURL(a.config.BaseURL, strings.TrimSpace(sel.AttrOr("content", "")))
}

// allTexts collects the cascade's matches as a list, deduplicated by
// normalized form so "One-Piece" and "one piece" collapse.
func (a *SiteAdapter) allTexts(doc *goquery.Document, candidates []string) []string {
	var values []string
	extract.FirstMatching(doc, candidates).Each(func(_ int, sel *goquery.Selection) {
		if text := extract.CleanText(sel.Text()); text != "" {
			values = append(values, text)
		}
	})
	return searchutil.UniqueNonEmpty(values)
}

func withDefault(candidates []string, fallback string) []string {
	if len(candidates) > 0 {
		return candidates
	}
	return []string{fallback}
}
