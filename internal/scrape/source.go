package scrape

import "eventnotify/internal/config"

// Source describes one venue listing to scrape.
type Source struct {
	// Code is the short snapshot/logging identifier (e.g. "a").
	Code string
	// Venue is the human-readable venue name carried into event records.
	Venue string
	// URL is the listing page.
	URL string
	// RowSelector / FallbackSelector / ListSelector are the CSS selector
	// profile. A non-empty ListSelector switches to dt/dd extraction.
	RowSelector      string
	FallbackSelector string
	ListSelector     string
	// Render routes the fetch through headless Chromium.
	Render bool
}

// SourcesFromConfig maps the configured venue list into scrape sources,
// preserving order (order is dedup priority at dispatch).
func SourcesFromConfig(cfgs []config.SourceConfig) []Source {
	out := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, Source{
			Code:             c.Code,
			Venue:            c.Name,
			URL:              c.URL,
			RowSelector:      c.RowSelector,
			FallbackSelector: c.FallbackSelector,
			ListSelector:     c.ListSelector,
			Render:           c.Render,
		})
	}
	return out
}
