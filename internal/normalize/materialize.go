package normalize

import (
	"time"

	"eventnotify/internal/model"
)

const isoDate = "2006-01-02"

// Materialize expands a ParsedExpression into discrete day-level event
// drafts carrying the given title and venue. A range yields one draft
// per calendar day from start to end inclusive, each with the range's
// representative time; discrete entries yield one draft each. Entries
// without a time produce drafts with an empty Time field, which
// downstream layers render as "time undetermined".
func Materialize(parsed ParsedExpression, title, venue string) []model.EventDraft {
	switch parsed.Kind {
	case KindRange:
		var out []model.EventDraft
		for d := parsed.Start; !d.After(parsed.End); d = d.AddDate(0, 0, 1) {
			out = append(out, model.EventDraft{
				Date:  d.Format(isoDate),
				Time:  parsed.RangeTime,
				Title: title,
				Venue: venue,
			})
		}
		return out

	case KindDates:
		out := make([]model.EventDraft, 0, len(parsed.Entries))
		for _, e := range parsed.Entries {
			out = append(out, model.EventDraft{
				Date:  e.Date.Format(isoDate),
				Time:  e.Time,
				Title: title,
				Venue: venue,
			})
		}
		return out

	default:
		return nil
	}
}

// SplitAndNormalize is the single-call form collaborators use per
// scraped row: Extract followed by Materialize. referenceYear as in
// Extract.
func SplitAndNormalize(datetimeText, title, venue string, referenceYear int) []model.EventDraft {
	return Materialize(Extract(datetimeText, referenceYear), title, venue)
}

// YearIn resolves "today's year" in the given civil zone, the default
// reference year when a caller has no explicit one.
func YearIn(loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc).Year()
}
