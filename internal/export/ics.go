package export

import (
	"os"
	"path/filepath"
	"time"

	ics "github.com/arran4/golang-ical"

	"eventnotify/internal/model"
)

const isoDate = "2006-01-02"

// defaultEventDuration is assumed for timed events; venue listings only
// publish start times.
const defaultEventDuration = time.Hour

// BuildCalendar renders identified events as an iCalendar feed.
// Timed events become one-hour VEVENTs at their start time in loc;
// time-undetermined events become all-day VEVENTs.
func BuildCalendar(events []model.IdentifiedEvent, loc *time.Location) *ics.Calendar {
	if loc == nil {
		loc = time.Local
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//eventnotify//fukuoka-events//JA")

	for _, ev := range events {
		day, err := time.ParseInLocation(isoDate, ev.Date, loc)
		if err != nil {
			// Snapshots are produced by our own pipeline; an unparseable
			// date means a corrupt record, skip it.
			continue
		}

		ve := cal.AddEvent(ev.Hash + "@eventnotify")
		ve.SetDtStampTime(ev.ExtractedAt.UTC())
		ve.SetSummary(ev.Title)
		ve.SetLocation(ev.Venue)

		if ev.Time != "" {
			start, terr := time.ParseInLocation(isoDate+" 15:04", ev.Date+" "+ev.Time, loc)
			if terr != nil {
				continue
			}
			ve.SetStartAt(start)
			ve.SetEndAt(start.Add(defaultEventDuration))
		} else {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
	}

	return cal
}

// WriteICS serializes the calendar for the given events into
// {siteDir}/events.ics.
func WriteICS(siteDir string, events []model.IdentifiedEvent, loc *time.Location) error {
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return err
	}
	cal := BuildCalendar(events, loc)
	return os.WriteFile(filepath.Join(siteDir, "events.ics"), []byte(cal.Serialize()), 0o644)
}
