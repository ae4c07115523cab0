package sources

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gabriel/source-aggregator/backend/internal/extract"
)

// extractChapterList pulls chapter refs out of a series page. One
// canonical implementation for every source: the anchor cascade first,
// then any anchor whose href contains the reader-path marker. Duplicate
// URLs and duplicate inferred numbers keep their first occurrence in
// document order; anchors with no inferable number are dropped. The
// result is sorted ascending by number.
func extractChapterList(doc *goquery.Document, baseURL string, selectors ChapterSelectors) []ChapterRef {
	anchors := extract.FirstMatching(doc, selectors.Anchors)
	if anchors.Length() == 0 && selectors.ReaderPathMarker != "" {
		anchors = doc.Find("a").FilterFunction(func(_ int, sel *goquery.Selection) bool {
			return strings.Contains(sel.AttrOr("href", ""), selectors.ReaderPathMarker)
		})
	}

	var chapters []ChapterRef
	seenURLs := make(map[string]struct{})
	seenNumbers := make(map[float64]struct{})

	anchors.Each(func(_ int, anchor *goquery.Selection) {
		href := strings.TrimSpace(anchor.AttrOr("href", ""))
		if href == "" {
			return
		}
		chapterURL := extract.AbsoluteURL(baseURL, href)
		if _, dup := seenURLs[chapterURL]; dup {
			return
		}

		label, number, ok := chapterLabel(anchor, selectors.Labels)
		if !ok {
			return
		}
		if _, dup := seenNumbers[number]; dup {
			// Mirrored links repeat the same chapter under another URL.
			return
		}

		seenURLs[chapterURL] = struct{}{}
		seenNumbers[number] = struct{}{}

		if label == "" {
			label = "Chapter " + FormatChapterNumber(number)
		}
		chapters = append(chapters, ChapterRef{URL: chapterURL, Number: number, Title: label})
	})

	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Number < chapters[j].Number
	})

	return chapters
}

// chapterLabel resolves the display label and inferred number of a
// chapter anchor, preferring a nested label element, then the anchor's
// title attribute, then its own text.
func chapterLabel(anchor *goquery.Selection, labelSelectors []string) (string, float64, bool) {
	candidates := []string{
		extract.CleanText(extract.FirstMatchingIn(anchor, withDefault(labelSelectors, "span")).First().Text()),
		extract.CleanText(anchor.AttrOr("title", "")),
		extract.CleanText(anchor.Text()),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if number, ok := extract.InferChapterNumber(candidate); ok {
			return candidate, number, true
		}
	}
	return "", 0, false
}

// FormatChapterNumber renders a chapter number the way readers expect:
// no trailing zeros, fractional sub-chapters kept.
func FormatChapterNumber(number float64) string {
	return strconv.FormatFloat(number, 'f', -1, 64)
}
