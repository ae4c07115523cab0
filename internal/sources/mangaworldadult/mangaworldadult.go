// Package mangaworldadult declares the adult MangaWorld mirror. Same
// markup family as mangaworld, so it reuses those selector lists, but
// the mirror serves some chapters through an embedded reader iframe,
// which is why iframe scanning is enabled here and nowhere else.
package mangaworldadult

import (
	"log/slog"

	"github.com/gabriel/source-aggregator/backend/internal/sources"
	"github.com/gabriel/source-aggregator/backend/internal/sources/mangaworld"
)

const (
	Key     = "mangaworldadult"
	baseURL = "https://www.mangaworldadult.net"
)

func Config() sources.SiteConfig {
	cfg := mangaworld.Config()
	cfg.Key = Key
	cfg.Name = "MangaWorld Adult"
	cfg.BaseURL = baseURL
	cfg.AllowedHosts = []string{"mangaworldadult.net", "mangaworldadult.com"}
	cfg.Adult = true
	cfg.Pages.ScanIframes = true
	return cfg
}

func New(fetcher sources.Fetcher, logger *slog.Logger) (*sources.SiteAdapter, error) {
	return sources.NewSiteAdapter(Config(), fetcher, logger)
}
