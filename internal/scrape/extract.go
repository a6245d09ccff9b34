package scrape

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	appLog "eventnotify/internal/log"
	"eventnotify/internal/model"
)

// fallbackSplit separates a card's leading date/time block from its
// trailing title when the primary table layout is gone.
var fallbackSplit = regexp.MustCompile(`\s{2,}| {1,}— | {1,}– | {1,}- `)

// ExtractFragments pulls raw (datetime, title) rows out of a fetched
// listing page using the source's selector profile. The primary selector
// targets the current table layout; if it yields nothing, the fallback
// event-card selectors are tried so a site redesign degrades instead of
// silently producing zero rows forever.
func ExtractFragments(src Source, body []byte) ([]model.RawFragment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if src.ListSelector != "" {
		fragments := extractDefinitionList(src, doc)
		if len(fragments) == 0 {
			appLog.Warn("no listing rows extracted", "code", src.Code, "url", src.URL)
		}
		return fragments, nil
	}

	fragments := extractRows(src, doc)

	if len(fragments) == 0 && src.FallbackSelector != "" {
		fragments = extractCards(src, doc)
		if len(fragments) > 0 {
			appLog.Warn("primary selector matched nothing, fallback used", "code", src.Code, "rows", len(fragments))
		}
	}

	if len(fragments) == 0 {
		// Not an error: the collaborator logs the zero-row condition and
		// an empty snapshot is still written.
		appLog.Warn("no listing rows extracted", "code", src.Code, "url", src.URL)
	}

	return fragments, nil
}

// extractRows handles the primary table layout: each row with two or
// more cells is (datetime, title).
func extractRows(src Source, doc *goquery.Document) []model.RawFragment {
	var out []model.RawFragment

	doc.Find(src.RowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		dt := cellText(cells.Eq(0))
		title := cellText(cells.Eq(1))
		if dt == "" || title == "" {
			return
		}
		out = append(out, model.RawFragment{
			DatetimeText: dt,
			Title:        title,
			Venue:        src.Venue,
		})
	})

	return out
}

// extractCards handles event-card markup: the card text is split into a
// leading date/time block and a trailing title.
func extractCards(src Source, doc *goquery.Document) []model.RawFragment {
	var out []model.RawFragment

	doc.Find(src.FallbackSelector).Each(func(_ int, card *goquery.Selection) {
		// Keep interior whitespace runs: they separate the date/time
		// block from the title in card markup.
		text := strings.TrimSpace(card.Text())
		parts := fallbackSplit.Split(text, -1)
		if len(parts) < 2 {
			return
		}
		out = append(out, model.RawFragment{
			DatetimeText: strings.TrimSpace(parts[0]),
			Title:        strings.TrimSpace(parts[len(parts)-1]),
			Venue:        src.Venue,
		})
	})

	return out
}

// cellText flattens a selection into single-space-joined text.
func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// Scrape fetches one source (plain GET or rendered) and extracts its raw
// fragments. Fetch and extraction failures are returned to the caller,
// which isolates them per source.
func Scrape(ctx context.Context, f *Fetcher, src Source) ([]model.RawFragment, error) {
	started := time.Now()
	scrapeTotal.WithLabelValues(src.Code).Inc()

	var body []byte
	if src.Render {
		html, err := RenderHTML(ctx, src.URL, DefaultRenderTimeout)
		if err != nil {
			scrapeErrors.WithLabelValues(src.Code).Inc()
			return nil, err
		}
		body = html
	} else {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			scrapeErrors.WithLabelValues(src.Code).Inc()
			return nil, err
		}
		body = res.Body
	}

	fragments, err := ExtractFragments(src, body)
	if err != nil {
		scrapeErrors.WithLabelValues(src.Code).Inc()
		return nil, err
	}

	rowsExtracted.WithLabelValues(src.Code).Set(float64(len(fragments)))
	appLog.Info("scrape completed", "code", src.Code, "rows", len(fragments), "ms", time.Since(started).Milliseconds())
	return fragments, nil
}
