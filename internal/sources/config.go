package sources

import (
	"fmt"
	"strings"
)

// SiteConfig declares everything a SiteAdapter needs to scrape one
// site: URL templates plus ordered selector candidate lists for each
// extraction step. Adding a site means writing one of these (in Go or
// in YAML), not new control flow.
type SiteConfig struct {
	Key          string   `yaml:"key"`
	Name         string   `yaml:"name"`
	BaseURL      string   `yaml:"base_url"`
	AllowedHosts []string `yaml:"allowed_hosts"`
	ContentKind  string   `yaml:"content_kind"`
	Adult        bool     `yaml:"adult"`
	Enabled      *bool    `yaml:"enabled"`

	// SearchPath and TrendingPath are appended to BaseURL; {query} is
	// replaced with the escaped search term. Empty TrendingPath means
	// the home page.
	SearchPath   string `yaml:"search_path"`
	TrendingPath string `yaml:"trending_path"`

	Search   EntrySelectors   `yaml:"search"`
	Trending EntrySelectors   `yaml:"trending"`
	Details  DetailSelectors  `yaml:"details"`
	Chapters ChapterSelectors `yaml:"chapters"`
	Pages    PageSelectors    `yaml:"pages"`
}

// EntrySelectors locate listing entries and their fields on search,
// trending and catalog pages.
type EntrySelectors struct {
	Entries []string `yaml:"entries"`
	Link    []string `yaml:"link"`
	Title   []string `yaml:"title"`
	Cover   []string `yaml:"cover"`
}

// DetailSelectors locate series metadata on a details page. Each field
// is a cascade: first candidate with a non-empty match wins.
type DetailSelectors struct {
	Title    []string `yaml:"title"`
	Cover    []string `yaml:"cover"`
	AltTitle []string `yaml:"alt_titles"`
	Authors  []string `yaml:"authors"`
	Artists  []string `yaml:"artists"`
	Genres   []string `yaml:"genres"`
	Status   []string `yaml:"status"`
	Type     []string `yaml:"type"`
	Year     []string `yaml:"year"`
	Synopsis []string `yaml:"synopsis"`
}

// ChapterSelectors locate chapter-link anchors. ReaderPathMarker is the
// last-resort fallback: any anchor whose href contains it.
type ChapterSelectors struct {
	Anchors          []string `yaml:"anchors"`
	Labels           []string `yaml:"labels"`
	ReaderPathMarker string   `yaml:"reader_path_marker"`
}

// PageSelectors drive the page-discovery cascade inside a chapter.
// ListViewQuery, when set, is appended to chapter URLs to request the
// site's flattened image-list layout. ScanIframes enables the embedded
// reader fallback some mirrors need.
type PageSelectors struct {
	Images        []string `yaml:"images"`
	Text          []string `yaml:"text"`
	ListViewQuery string   `yaml:"list_view_query"`
	ScanIframes   bool     `yaml:"scan_iframes"`
}

func (c *SiteConfig) normalizeAndValidate() error {
	c.Key = strings.TrimSpace(c.Key)
	c.Name = strings.TrimSpace(c.Name)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")

	if c.Key == "" {
		return fmt.Errorf("key is required")
	}
	if c.Name == "" {
		c.Name = c.Key
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be absolute")
	}

	switch c.ContentKind {
	case "":
		c.ContentKind = KindManga
	case KindManga, KindNovel:
	default:
		return fmt.Errorf("content_kind must be %q or %q", KindManga, KindNovel)
	}

	if strings.TrimSpace(c.SearchPath) == "" {
		return fmt.Errorf("search_path is required")
	}
	if !strings.Contains(c.SearchPath, "{query}") {
		return fmt.Errorf("search_path must contain {query}")
	}
	if len(c.Search.Entries) == 0 {
		return fmt.Errorf("search.entries needs at least one selector")
	}
	if len(c.Details.Title) == 0 {
		return fmt.Errorf("details.title needs at least one selector")
	}
	if len(c.Chapters.Anchors) == 0 && c.Chapters.ReaderPathMarker == "" {
		return fmt.Errorf("chapters needs anchors or a reader_path_marker")
	}
	if len(c.Pages.Images) == 0 && len(c.Pages.Text) == 0 {
		return fmt.Errorf("pages needs image or text selectors")
	}

	// Trending falls back to the search entry selectors; most sites
	// reuse the same card markup.
	if len(c.Trending.Entries) == 0 {
		c.Trending = c.Search
	}

	return nil
}

// IsEnabled defaults to true when the flag is omitted.
func (c *SiteConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
