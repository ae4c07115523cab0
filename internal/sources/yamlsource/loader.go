// Package yamlsource loads additional HTML sources declared as YAML
// selector strategy files. A new site becomes a config file in the
// sources directory instead of a code change.
package yamlsource

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gabriel/source-aggregator/backend/internal/sources"
)

// LoadFromDir builds adapters from every .yaml/.yml file in dirPath.
// Files that fail to parse or validate are skipped and reported in the
// aggregated error; the usable adapters are still returned.
func LoadFromDir(dirPath string, fetcher sources.Fetcher, logger *slog.Logger) ([]*sources.SiteAdapter, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read yaml sources dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]*sources.SiteAdapter, 0, len(files))
	problems := make([]string, 0)

	for _, filePath := range files {
		content, err := os.ReadFile(filePath)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}

		var cfg sources.SiteConfig
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if !cfg.IsEnabled() {
			continue
		}

		adapter, err := sources.NewSiteAdapter(cfg, fetcher, logger)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		loaded = append(loaded, adapter)
	}

	if len(problems) > 0 {
		return loaded, fmt.Errorf("yaml sources failed to load: %s", strings.Join(problems, " | "))
	}

	return loaded, nil
}
