// Package manual expands operator-maintained events declared in the
// configuration. Manual entries survive every scrape refresh; recurring
// ones (weekly markets, home games with fixed slots) are declared once
// with an RRULE instead of being re-entered per date.
package manual

import (
	"time"

	"github.com/teambition/rrule-go"

	"eventnotify/internal/config"
	appLog "eventnotify/internal/log"
	"eventnotify/internal/model"
	"eventnotify/internal/normalize"
)

const isoDate = "2006-01-02"

// Expand materializes the configured manual events into drafts falling
// within [from, from+horizonDays). One-off entries outside the window
// are skipped; recurring entries are expanded occurrence by occurrence.
// Malformed entries are logged and skipped, never fatal: a typo in one
// config entry must not take down the whole dispatch.
func Expand(entries []config.ManualEventConfig, from time.Time, horizonDays int, loc *time.Location) []model.EventDraft {
	if loc == nil {
		loc = time.Local
	}
	if horizonDays <= 0 {
		horizonDays = 1
	}

	windowStart := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	windowEnd := windowStart.AddDate(0, 0, horizonDays)

	var out []model.EventDraft
	for _, e := range entries {
		if e.RRule != "" {
			out = append(out, expandRecurring(e, windowStart, windowEnd, loc)...)
			continue
		}
		if d, err := time.ParseInLocation(isoDate, e.Date, loc); err == nil {
			if !d.Before(windowStart) && d.Before(windowEnd) {
				out = append(out, draftFor(e, d))
			}
		} else if e.Date != "" {
			appLog.Warn("manual event has unparseable date, skipping", "title", e.Title, "date", e.Date)
		}
	}

	normalize.SortDrafts(out)
	return out
}

func expandRecurring(e config.ManualEventConfig, windowStart, windowEnd time.Time, loc *time.Location) []model.EventDraft {
	r, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		appLog.Warn("manual event has unparseable rrule, skipping", "title", e.Title, "rrule", e.RRule, "err", err)
		return nil
	}

	dtstart := windowStart
	if e.DtStart != "" {
		if d, perr := time.ParseInLocation(isoDate, e.DtStart, loc); perr == nil {
			dtstart = d
		} else {
			appLog.Warn("manual event has unparseable dtstart, using window start", "title", e.Title, "dtstart", e.DtStart)
		}
	}
	r.DTStart(dtstart)

	var out []model.EventDraft
	// Between's end is inclusive; back off one second to keep the window
	// half-open like the one-off path.
	for _, occ := range r.Between(windowStart, windowEnd.Add(-time.Second), true) {
		out = append(out, draftFor(e, occ))
	}
	return out
}

func draftFor(e config.ManualEventConfig, d time.Time) model.EventDraft {
	return model.EventDraft{
		Date:  d.Format(isoDate),
		Time:  e.Time,
		Title: e.Title,
		Venue: e.Venue,
	}
}
