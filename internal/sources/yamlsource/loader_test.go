package yamlsource

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSource = `
key: kaguya
name: Kaguya Scans
base_url: https://kaguya.example
allowed_hosts: [kaguya.example]
search_path: /search?q={query}
search:
  entries: [".results .card"]
  title: [".card-title"]
details:
  title: ["h1"]
chapters:
  anchors: [".chapter-list a"]
pages:
  images: ["#pages img"]
`

const disabledSource = `
key: dormant
base_url: https://dormant.example
enabled: false
search_path: /s?q={query}
search:
  entries: [".x"]
details:
  title: ["h1"]
chapters:
  reader_path_marker: /read/
pages:
  images: ["img"]
`

type stubFetcher struct{}

func (stubFetcher) FetchHTML(context.Context, string, string) (string, error) {
	return "", nil
}

func writeFile(t *testing.T, dir string, name string, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kaguya.yaml", validSource)
	writeFile(t, dir, "dormant.yml", disabledSource)
	writeFile(t, dir, "notes.txt", "not a source")

	adapters, err := LoadFromDir(dir, stubFetcher{}, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(adapters) != 1 {
		t.Fatalf("expected only the enabled yaml source, got %d", len(adapters))
	}
	if adapters[0].Key() != "kaguya" {
		t.Fatalf("unexpected key %q", adapters[0].Key())
	}
	if adapters[0].Name() != "Kaguya Scans" {
		t.Fatalf("unexpected name %q", adapters[0].Name())
	}
}

func TestLoadFromDirAggregatesProblems(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", validSource)
	writeFile(t, dir, "broken.yaml", "key: [not: valid: yaml")
	writeFile(t, dir, "invalid.yaml", "key: incomplete\nbase_url: https://x.example\n")

	adapters, err := LoadFromDir(dir, stubFetcher{}, nil)
	if err == nil {
		t.Fatal("expected aggregated load error")
	}
	if len(adapters) != 1 {
		t.Fatalf("usable adapters must still load, got %d", len(adapters))
	}
	if !strings.Contains(err.Error(), "broken.yaml") || !strings.Contains(err.Error(), "invalid.yaml") {
		t.Fatalf("error should name every failing file: %v", err)
	}
}

func TestLoadFromDirMissingDir(t *testing.T) {
	adapters, err := LoadFromDir(filepath.Join(t.TempDir(), "nope"), stubFetcher{}, nil)
	if err != nil {
		t.Fatalf("missing dir should be a no-op: %v", err)
	}
	if len(adapters) != 0 {
		t.Fatalf("expected no adapters, got %d", len(adapters))
	}
}
