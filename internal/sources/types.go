package sources

import (
	"context"
	"errors"
)

const (
	KindManga = "manga"
	KindNovel = "novel"
)

const (
	ContentImages = "images"
	ContentText   = "text"
)

var (
	ErrNoPagesFound = errors.New("no readable pages found in chapter")
	ErrNoTitleFound = errors.New("no resolvable title on series page")
	ErrForeignURL   = errors.New("url does not belong to this source")
)

// SeriesSummary is the minimal listing entity produced by search,
// trending and catalog calls. Never mutated after construction.
type SeriesSummary struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	CoverURL    string `json:"coverUrl,omitempty"`
	SourceKey   string `json:"sourceKey"`
	ContentKind string `json:"contentKind"`
	Adult       bool   `json:"adult"`
}

// ChapterRef is one entry in a series chapter list. Anchors whose label
// yields no number are dropped before a ref is ever built, so Number is
// always meaningful.
type ChapterRef struct {
	URL    string  `json:"url"`
	Number float64 `json:"number"`
	Title  string  `json:"title"`
}

// SeriesDetails extends SeriesSummary with full metadata and the
// chapter list, sorted ascending by chapter number. Rebuilt fresh on
// every fetch.
type SeriesDetails struct {
	SeriesSummary

	AltTitles    []string     `json:"altTitles,omitempty"`
	Authors      []string     `json:"authors,omitempty"`
	Artists      []string     `json:"artists,omitempty"`
	Genres       []string     `json:"genres,omitempty"`
	Status       string       `json:"status,omitempty"`
	ContentType  string       `json:"contentType,omitempty"`
	Year         int          `json:"year,omitempty"`
	Synopsis     string       `json:"synopsis,omitempty"`
	Chapters     []ChapterRef `json:"chapters"`
	ChapterCount int          `json:"chapterCount"`
}

// ChapterContent holds the readable payload of one chapter: ordered
// page image URLs for comics, a text body for novels. A successful
// fetch always carries one of the two non-empty.
type ChapterContent struct {
	URL      string   `json:"url"`
	Kind     string   `json:"kind"`
	Pages    []string `json:"pages,omitempty"`
	TextBody string   `json:"textBody,omitempty"`
}

// Adapter is the capability contract every source implements.
//
// Search and Trending are best-effort discovery calls: they degrade to
// an empty result on failure instead of erroring, so a broken source
// never blanks the whole UI. FetchSeries and FetchChapter are
// direct-intent calls and propagate typed errors.
type Adapter interface {
	Key() string
	Name() string
	BaseURL() string
	ContentKind() string
	Adult() bool

	Search(ctx context.Context, query string) []SeriesSummary
	FetchSeries(ctx context.Context, rawURL string) (*SeriesDetails, error)
	FetchChapter(ctx context.Context, rawURL string) (*ChapterContent, error)
	Trending(ctx context.Context) []SeriesSummary
}

// Fetcher is the transport dependency of adapters, satisfied by
// *transport.Client and faked in tests.
type Fetcher interface {
	FetchHTML(ctx context.Context, url string, referer string) (string, error)
}
