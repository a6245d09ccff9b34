package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"eventnotify/internal/model"
)

// The dome schedule page publishes definition lists: each dt carries an
// explicit date like "2025/9/13（土）" and the paired dd carries a detail
// table whose イベント row holds the title and whose 開催時間/開演時間
// row holds the time text.
var (
	listDatePat = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})（.+）`)

	scheduleTimePat = regexp.MustCompile(`開催時間\s*(\d{1,2}):(\d{2})`)
	curtainTimePat  = regexp.MustCompile(`開演\s*(\d{1,2}):(\d{2})`)
	doorsTimePat    = regexp.MustCompile(`開場\s*(\d{1,2}):(\d{2})`)
	anyTimePat      = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// extractDefinitionList handles dt/dd schedule markup. The dt dates are
// explicit (year included), so the fragments carry a resolved Date and
// Time and bypass date/time text parsing downstream.
func extractDefinitionList(src Source, doc *goquery.Document) []model.RawFragment {
	var out []model.RawFragment

	doc.Find(src.ListSelector).Each(func(_ int, dl *goquery.Selection) {
		dts := dl.Find("dt")
		dds := dl.Find("dd")

		n := dts.Length()
		if dds.Length() < n {
			n = dds.Length()
		}
		for i := 0; i < n; i++ {
			date, ok := listDate(cellText(dts.Eq(i)))
			if !ok {
				continue
			}
			title, timeText := detailRow(dds.Eq(i))
			if title == "" {
				continue
			}
			out = append(out, model.RawFragment{
				Date:  date,
				Time:  eventTime(timeText),
				Title: title,
				Venue: src.Venue,
			})
		}
	})

	return out
}

// detailRow pulls the title and raw time text out of one dd detail table.
// The title prefers a span child over the whole cell.
func detailRow(dd *goquery.Selection) (title, timeText string) {
	dd.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		th := row.Find("th")
		td := row.Find("td")
		if th.Length() == 0 || td.Length() == 0 {
			return
		}
		switch cellText(th.Eq(0)) {
		case "イベント":
			if span := td.Find("span"); span.Length() > 0 {
				title = cellText(span.Eq(0))
			} else {
				title = cellText(td.Eq(0))
			}
		case "開催時間", "開演時間":
			timeText = cellText(td.Eq(0))
		}
	})
	return title, timeText
}

// listDate converts "2025/9/13（土）" into ISO "2025-09-13".
func listDate(s string) (string, bool) {
	m := listDatePat.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != mo || t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// eventTime extracts the representative start time from a detail cell:
// the 開催時間 start, else 開演 over 開場, else the first bare HH:MM.
// Empty means time undetermined.
func eventTime(s string) string {
	for _, pat := range []*regexp.Regexp{scheduleTimePat, curtainTimePat, doorsTimePat, anyTimePat} {
		m := pat.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		if h > 23 || mi > 59 {
			continue
		}
		return fmt.Sprintf("%02d:%02d", h, mi)
	}
	return ""
}
