package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gabriel/source-aggregator/backend/internal/aggregator"
	"github.com/gabriel/source-aggregator/backend/internal/catalog"
	"github.com/gabriel/source-aggregator/backend/internal/config"
	"github.com/gabriel/source-aggregator/backend/internal/sources"
	"github.com/gabriel/source-aggregator/backend/internal/transport"
)

type fakeAdapter struct {
	key        string
	searchHits []sources.SeriesSummary
	seriesErr  error
	chapterErr error
}

func (f *fakeAdapter) Key() string         { return f.key }
func (f *fakeAdapter) Name() string        { return f.key }
func (f *fakeAdapter) BaseURL() string     { return "https://" + f.key + ".example" }
func (f *fakeAdapter) ContentKind() string { return sources.KindManga }
func (f *fakeAdapter) Adult() bool         { return false }

func (f *fakeAdapter) Search(context.Context, string) []sources.SeriesSummary { return f.searchHits }
func (f *fakeAdapter) Trending(context.Context) []sources.SeriesSummary      { return f.searchHits }

func (f *fakeAdapter) FetchSeries(context.Context, string) (*sources.SeriesDetails, error) {
	if f.seriesErr != nil {
		return nil, f.seriesErr
	}
	return &sources.SeriesDetails{
		SeriesSummary: sources.SeriesSummary{Title: "Found", SourceKey: f.key},
		Chapters:      []sources.ChapterRef{},
	}, nil
}

func (f *fakeAdapter) FetchChapter(context.Context, string) (*sources.ChapterContent, error) {
	if f.chapterErr != nil {
		return nil, f.chapterErr
	}
	return &sources.ChapterContent{Kind: sources.ContentImages, Pages: []string{"https://cdn.example/1.jpg"}}, nil
}

type staticFetcher struct{ html string }

func (f staticFetcher) FetchHTML(context.Context, string, string) (string, error) {
	return f.html, nil
}

const catalogFixture = `<html><body><div class="comics-grid">
	<div class="entry">
		<a class="thumb" href="/manga/solo"><img src="/covers/solo.jpg"></a>
		<a class="manga-title" href="/manga/solo">Solo</a>
	</div>
</div></body></html>`

func newTestApp(adapters ...sources.Adapter) *testApp {
	agg := aggregator.New(nil, adapters...)
	service := catalog.NewService(staticFetcher{html: catalogFixture}, nil, time.Minute, nil)
	cfg := config.Config{AppName: "test-api", AdultSourcesEnabled: false}
	return &testApp{app: NewServer(cfg, agg, service, nil)}
}

// testApp wraps the fiber test entry point with JSON decoding.
type testApp struct {
	app *fiber.App
}

func (f *testApp) get(t *testing.T, path string) (int, map[string]json.RawMessage) {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest(nethttp.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded := make(map[string]json.RawMessage)
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			t.Fatalf("decode %s body %q: %v", path, body, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha"})
	status, body := app.get(t, "/health")
	if status != nethttp.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if string(body["status"]) != `"ok"` {
		t.Fatalf("unexpected health payload: %v", body)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha"})
	if status, _ := app.get(t, "/v1/search"); status != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestSearchMergesSources(t *testing.T) {
	alpha := &fakeAdapter{key: "alpha", searchHits: []sources.SeriesSummary{
		{URL: "https://alpha.example/s/1", Title: "One Piece", SourceKey: "alpha", ContentKind: sources.KindManga},
	}}
	beta := &fakeAdapter{key: "beta", searchHits: []sources.SeriesSummary{
		{URL: "https://beta.example/s/9", Title: "one piece", SourceKey: "beta", ContentKind: sources.KindManga},
		{URL: "https://beta.example/s/2", Title: "Berserk", SourceKey: "beta", ContentKind: sources.KindManga},
	}}

	app := newTestApp(alpha, beta)
	status, body := app.get(t, "/v1/search?q=piece")
	if status != nethttp.StatusOK {
		t.Fatalf("status = %d", status)
	}

	var all []sources.SeriesSummary
	if err := json.Unmarshal(body["all"], &all); err != nil {
		t.Fatalf("decode all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 deduped results, got %d: %+v", len(all), all)
	}
	if all[0].SourceKey != "alpha" {
		t.Fatalf("priority source should win the dup: %+v", all[0])
	}
}

func TestSourcesEndpoint(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha"}, &fakeAdapter{key: "beta"})
	status, body := app.get(t, "/v1/sources")
	if status != nethttp.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var items []aggregator.Descriptor
	if err := json.Unmarshal(body["items"], &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 || items[0].Key != "alpha" {
		t.Fatalf("unexpected descriptors: %+v", items)
	}
}

func TestSeriesParamValidation(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha"})
	if status, _ := app.get(t, "/v1/series?url=https://alpha.example/s/1"); status != nethttp.StatusBadRequest {
		t.Fatalf("missing source: status = %d, want 400", status)
	}
	if status, _ := app.get(t, "/v1/series?source=alpha"); status != nethttp.StatusBadRequest {
		t.Fatalf("missing url: status = %d, want 400", status)
	}
	if status, _ := app.get(t, "/v1/series?url=https://x.example/s/1&source=nope"); status != nethttp.StatusBadRequest {
		t.Fatalf("unknown source: status = %d, want 400", status)
	}
}

func TestChapterErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"no pages", fmt.Errorf("wrapped: %w", sources.ErrNoPagesFound), nethttp.StatusBadGateway, "no_pages_found"},
		{"banned", fmt.Errorf("wrapped: %w", transport.ErrBanned), nethttp.StatusForbidden, "banned"},
		{"not found", fmt.Errorf("wrapped: %w", transport.ErrNotFound), nethttp.StatusNotFound, "not_found"},
		{"generic upstream", fmt.Errorf("wrapped: %w", transport.ErrUpstreamBlocking), nethttp.StatusBadGateway, "source_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&fakeAdapter{key: "alpha", chapterErr: tc.err})
			status, body := app.get(t, "/v1/chapter?url=https://alpha.example/read/1&source=alpha")
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d", status, tc.wantStatus)
			}
			if string(body["error"]) != `"`+tc.wantError+`"` {
				t.Fatalf("error payload = %s, want %q", body["error"], tc.wantError)
			}
		})
	}
}

func TestChapterRateLimitedMapping(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha", chapterErr: &transport.RateLimitedError{RetryAfterSeconds: 42}})
	status, body := app.get(t, "/v1/chapter?url=https://alpha.example/read/1&source=alpha")
	if status != nethttp.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", status)
	}
	if string(body["retryAfterSeconds"]) != "42" {
		t.Fatalf("retryAfterSeconds = %s", body["retryAfterSeconds"])
	}
}

func TestCatalogLatestEndpoint(t *testing.T) {
	app := newTestApp(&fakeAdapter{key: "alpha"})
	status, body := app.get(t, "/v1/catalog/latest")
	if status != nethttp.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var results []sources.SeriesSummary
	if err := json.Unmarshal(body["results"], &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Solo" {
		t.Fatalf("unexpected catalog results: %+v", results)
	}
}
