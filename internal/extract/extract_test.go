package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestInferChapterNumber(t *testing.T) {
	cases := []struct {
		label string
		want  float64
		ok    bool
	}{
		{"Capitolo 42", 42, true},
		{"Cap. 7", 7, true},
		{"cap 12,5", 12.5, true},
		{"Vol. 3 Capitolo 12.5", 12.5, true},
		{"Chapter 10", 10, true},
		{"Episode 5 (2024)", 5, true},
		{"One Piece 1099 - release 2023", 0, false},
		{"Bonus Extra", 0, false},
		{"   ", 0, false},
		{"Capitolo 0", 0, true},
	}

	for _, tc := range cases {
		got, ok := InferChapterNumber(tc.label)
		if ok != tc.ok {
			t.Errorf("InferChapterNumber(%q) ok = %v, want %v", tc.label, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("InferChapterNumber(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestFirstMatchingUsesFirstNonEmptyCandidate(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="third">match</div>
		<div class="fourth">also present</div>
	</body></html>`)

	sel := FirstMatching(doc, []string{".first", ".second", ".third", ".fourth"})
	if sel.Length() != 1 {
		t.Fatalf("expected 1 match, got %d", sel.Length())
	}
	if text := CleanText(sel.Text()); text != "match" {
		t.Fatalf("expected third candidate to win, got %q", text)
	}
}

func TestFirstMatchingAllMiss(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>nothing here</p></body></html>`)
	sel := FirstMatching(doc, []string{".a", ".b"})
	if sel.Length() != 0 {
		t.Fatalf("expected empty selection, got %d nodes", sel.Length())
	}
	// Downstream code chains off the result; it must stay usable.
	if got := sel.First().AttrOr("href", "fallback"); got != "fallback" {
		t.Fatalf("empty selection should behave inertly, got %q", got)
	}
}

func TestImageSource(t *testing.T) {
	cases := []struct {
		name string
		html string
		want string
	}{
		{
			name: "plain src",
			html: `<img src="https://cdn.example.com/p1.jpg">`,
			want: "https://cdn.example.com/p1.jpg",
		},
		{
			name: "lazy data-src wins over data uri placeholder",
			html: `<img src="data:image/gif;base64,R0lGOD" data-src="https://cdn.example.com/p2.png">`,
			want: "https://cdn.example.com/p2.png",
		},
		{
			name: "data-lazy-src",
			html: `<img data-lazy-src="https://cdn.example.com/p3.webp">`,
			want: "https://cdn.example.com/p3.webp",
		},
		{
			name: "relative value passes through for the caller to resolve",
			html: `<img data-src="/covers/p4.jpg">`,
			want: "/covers/p4.jpg",
		},
		{
			name: "nothing usable",
			html: `<img src="data:image/gif;base64,R0lGOD">`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := mustDoc(t, "<html><body>"+tc.html+"</body></html>")
			if got := ImageSource(doc.Find("img")); got != tc.want {
				t.Fatalf("ImageSource = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestScriptImageURLs(t *testing.T) {
	doc := mustDoc(t, `<html><head><script>
		var title = "irrelevant";
		var pages = ["https:\/\/cdn.example.com\/ch\/001.jpg", "https://cdn.example.com/ch/002.jpg", "not-a-url"];
	</script><script>
		window.config = { images: ["https://cdn.example.com/ch/002.jpg", "https://cdn.example.com/ch/003.png?v=2"] };
	</script></head><body></body></html>`)

	got := ScriptImageURLs(doc)
	want := []string{
		"https://cdn.example.com/ch/001.jpg",
		"https://cdn.example.com/ch/002.jpg",
		"https://cdn.example.com/ch/003.png?v=2",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d urls %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScriptImageURLsIgnoresUnrelatedArrays(t *testing.T) {
	doc := mustDoc(t, `<html><script>
		var genres = ["action", "comedy"];
		var ids = [1, 2, 3];
	</script></html>`)
	if got := ScriptImageURLs(doc); len(got) != 0 {
		t.Fatalf("expected no urls, got %v", got)
	}
}

func TestLooksLikeThumbnail(t *testing.T) {
	if !LooksLikeThumbnail("https://example.com/static/logo.png") {
		t.Error("logo should be flagged")
	}
	if !LooksLikeThumbnail("https://example.com/img/Thumb_small.jpg") {
		t.Error("thumb should be flagged")
	}
	if LooksLikeThumbnail("https://cdn.example.com/chapters/042/001.jpg") {
		t.Error("reader page flagged as thumbnail")
	}
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"https://example.com/manga/x", "/read/x/1", "https://example.com/read/x/1"},
		{"https://example.com/manga/x", "https://other.com/y", "https://other.com/y"},
		{"https://example.com", "", ""},
	}
	for _, tc := range cases {
		if got := AbsoluteURL(tc.base, tc.ref); got != tc.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tc.base, tc.ref, got, tc.want)
		}
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  One \n\t Piece  "); got != "One Piece" {
		t.Fatalf("CleanText = %q", got)
	}
}
