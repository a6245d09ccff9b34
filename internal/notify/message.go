package notify

import (
	"strings"

	"eventnotify/internal/model"
)

// undeterminedTime is shown when an event carries no start time; the
// empty Time field itself is never rendered as midnight.
const undeterminedTime = "（時刻未定）"

// BuildMessage renders the daily digest shared by chat delivery and the
// static page. Two lines per event (time｜venue, then title) with blank
// lines between events, mobile-first. venueNames maps snapshot codes to
// display names for the missing-venue footer.
func BuildMessage(date string, events []model.IdentifiedEvent, missing []string, venueNames map[string]string, detailsURL string) string {
	lines := []string{"【本日のイベント】" + date, ""}

	if len(events) == 0 {
		lines = append(lines, "本日の掲載イベントは見つかりませんでした。")
	} else {
		for i, ev := range events {
			t := ev.Time
			if t == "" {
				t = undeterminedTime
			}
			lines = append(lines, "- "+t+"｜"+ev.Venue)
			lines = append(lines, ev.Title)
			if i != len(events)-1 {
				lines = append(lines, "")
			}
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, code := range missing {
			if n, ok := venueNames[code]; ok {
				names = append(names, n)
			} else {
				names = append(names, code)
			}
		}
		lines = append(lines, "", "取得できなかった会場: "+strings.Join(names, ", "))
	}

	if detailsURL != "" {
		lines = append(lines, "", "詳細はこちら👇", detailsURL)
	}

	return strings.Join(lines, "\n")
}
