package normalize

import (
	"regexp"
	"sort"

	"eventnotify/internal/model"
)

// missingTimeKey sorts undetermined times after every valid HH:MM. It is
// used only for comparison and never stored.
const missingTimeKey = "99:99"

var hhmmPat = regexp.MustCompile(`^\d{2}:\d{2}$`)

func timeKey(t string) string {
	if hhmmPat.MatchString(t) {
		return t
	}
	return missingTimeKey
}

// SortDrafts orders drafts by date, then time (undetermined last), then
// title. The sort is stable so that equal keys keep input (source
// priority) order, making repeated runs over unchanged data
// byte-identical when serialized.
func SortDrafts(drafts []model.EventDraft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		return draftLess(drafts[i], drafts[j])
	})
}

// SortEvents orders identified events with the same key as SortDrafts.
func SortEvents(events []model.IdentifiedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return draftLess(events[i].EventDraft, events[j].EventDraft)
	})
}

func draftLess(a, b model.EventDraft) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	at, bt := timeKey(a.Time), timeKey(b.Time)
	if at != bt {
		return at < bt
	}
	return a.Title < b.Title
}
