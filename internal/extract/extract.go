// Package extract holds the HTML heuristics shared by every source
// adapter: selector cascades, lazy-image attribute resolution, inline
// script scanning and chapter-number inference. Source markup drifts
// constantly, so everything here degrades instead of failing.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lazyImageAttrs are tried after src, in order. Covers the lazy-load
// plugins the supported sites use.
var lazyImageAttrs = []string{"data-src", "data-lazy", "data-original", "data-lazy-src"}

var (
	chapterLabelPattern  = regexp.MustCompile(`(?i)cap(?:itolo)?\.?\s*[:#]?\s*(\d+(?:[.,]\d+)?)`)
	numberTokenPattern   = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	scriptArrayPattern   = regexp.MustCompile(`(?i)(?:pages|images|chapImages|imgs|arr_img)\s*[:=]\s*\[([^\]]*)\]`)
	quotedStringPattern  = regexp.MustCompile(`["']([^"']+)["']`)
	imageExtensionSuffix = regexp.MustCompile(`(?i)\.(?:jpe?g|png|webp|gif|avif)(?:\?[^"']*)?$`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// FirstMatching tries each selector in order against the document and
// returns the first non-empty match set. Never errors: an unmatched
// cascade is an empty selection.
func FirstMatching(doc *goquery.Document, candidates []string) *goquery.Selection {
	return FirstMatchingIn(doc.Selection, candidates)
}

// FirstMatchingIn is FirstMatching scoped to an element subtree.
func FirstMatchingIn(root *goquery.Selection, candidates []string) *goquery.Selection {
	for _, candidate := range candidates {
		matched := root.Find(candidate)
		if matched.Length() > 0 {
			return matched
		}
	}
	return root.Find("")
}

// ImageSource resolves the usable image URL of an img element, trying
// src first and then the known lazy-load attributes. Inline data URIs
// are skipped. The value may be site-relative; callers resolve it with
// AbsoluteURL against the owning source's base.
func ImageSource(sel *goquery.Selection) string {
	attrs := append([]string{"src"}, lazyImageAttrs...)
	for _, attr := range attrs {
		value := strings.TrimSpace(sel.AttrOr(attr, ""))
		if value == "" || strings.HasPrefix(value, "data:") {
			continue
		}
		return value
	}
	return ""
}

// InferChapterNumber pulls a numeric chapter identifier out of a noisy
// display label. A "cap"/"capitolo" prefixed number wins; otherwise the
// largest embedded number under 1000 is taken, on the observation that
// volume and year tokens are either small or four digits. Returns false
// when the label holds no usable number.
func InferChapterNumber(label string) (float64, bool) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return 0, false
	}

	if match := chapterLabelPattern.FindStringSubmatch(trimmed); len(match) == 2 {
		if number, err := parseDecimal(match[1]); err == nil {
			return number, true
		}
	}

	best := -1.0
	for _, token := range numberTokenPattern.FindAllString(trimmed, -1) {
		number, err := parseDecimal(token)
		if err != nil || number >= 1000 {
			continue
		}
		if number > best {
			best = number
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// ScriptImageURLs scans inline script bodies for array literals of page
// image URLs (pages = [...], images: [...] and friends).
func ScriptImageURLs(doc *goquery.Document) []string {
	var urls []string
	seen := make(map[string]struct{})

	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		body := script.Text()
		if body == "" {
			return
		}
		for _, arrayMatch := range scriptArrayPattern.FindAllStringSubmatch(body, -1) {
			for _, quoted := range quotedStringPattern.FindAllStringSubmatch(arrayMatch[1], -1) {
				candidate := strings.ReplaceAll(quoted[1], `\/`, "/")
				if !looksLikeImageURL(candidate) {
					continue
				}
				if _, dup := seen[candidate]; dup {
					continue
				}
				seen[candidate] = struct{}{}
				urls = append(urls, candidate)
			}
		}
	})

	return urls
}

// LooksLikeThumbnail flags chrome images (logos, icons, previews) that
// must not be mistaken for reader pages.
func LooksLikeThumbnail(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range []string{"logo", "icon", "thumb", "avatar", "banner", "placeholder", "loading"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// AbsoluteURL resolves ref against base, returning ref untouched when
// either side does not parse.
func AbsoluteURL(base string, ref string) string {
	if ref == "" {
		return ""
	}
	parsedBase, err := url.Parse(base)
	if err != nil {
		return ref
	}
	parsedRef, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return parsedBase.ResolveReference(parsedRef).String()
}

// CleanText collapses runs of whitespace into single spaces.
func CleanText(text string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

func looksLikeImageURL(candidate string) bool {
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		return false
	}
	return imageExtensionSuffix.MatchString(candidate)
}

func parseDecimal(token string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
}
