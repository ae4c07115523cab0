package sources

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/source-aggregator/backend/internal/extract"
)

// maxIframeDepth bounds the embedded-reader recursion. One level is
// all the supported mirrors need; two guards against loops.
const maxIframeDepth = 2

// discoverPages runs the prioritized page-discovery cascade on a
// chapter document: DOM image selectors, then inline script array
// literals, then (when enabled for the source) embedded iframe readers.
func (a *SiteAdapter) discoverPages(ctx context.Context, doc *goquery.Document, depth int) ([]string, error) {
	if pages := a.domPages(doc); len(pages) > 0 {
		return pages, nil
	}

	if pages := a.scriptPages(doc); len(pages) > 0 {
		return pages, nil
	}

	if a.config.Pages.ScanIframes && depth < maxIframeDepth {
		if pages := a.iframePages(ctx, doc, depth); len(pages) > 0 {
			return pages, nil
		}
	}

	return nil, nil
}

// domPages scans the image selector cascade, stopping at the first
// selector that yields usable page images.
func (a *SiteAdapter) domPages(doc *goquery.Document) []string {
	for _, selector := range a.config.Pages.Images {
		var pages []string
		seen := make(map[string]struct{})

		doc.Find(selector).Each(func(_ int, img *goquery.Selection) {
			src := extract.ImageSource(img)
			if src == "" || extract.LooksLikeThumbnail(src) {
				return
			}
			pageURL := extract.AbsoluteURL(a.config.BaseURL, src)
			if _, dup := seen[pageURL]; dup {
				return
			}
			seen[pageURL] = struct{}{}
			pages = append(pages, pageURL)
		})

		if len(pages) > 0 {
			return pages
		}
	}
	return nil
}

func (a *SiteAdapter) scriptPages(doc *goquery.Document) []string {
	var pages []string
	for _, candidate := range extract.ScriptImageURLs(doc) {
		if extract.LooksLikeThumbnail(candidate) {
			continue
		}
		pages = append(pages, candidate)
	}
	return pages
}

// iframePages fetches embedded reader frames and reruns the cascade on
// their content. Fetch failures are logged and skipped; the caller
// still fails with ErrNoPagesFound when nothing pans out.
func (a *SiteAdapter) iframePages(ctx context.Context, doc *goquery.Document, depth int) []string {
	var pages []string

	doc.Find("iframe").EachWithBreak(func(_ int, frame *goquery.Selection) bool {
		src := strings.TrimSpace(frame.AttrOr("src", ""))
		if src == "" {
			return true
		}

		frameURL := extract.AbsoluteURL(a.config.BaseURL, src)
		frameDoc, err := a.fetchDocument(ctx, frameURL)
		if err != nil {
			a.logger.Warn("iframe reader fetch failed", "source", a.config.Key, "url", frameURL, "error", err)
			return true
		}

		found, err := a.discoverPages(ctx, frameDoc, depth+1)
		if err == nil && len(found) > 0 {
			pages = found
			return false
		}
		return true
	})

	return pages
}
