package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// remarkDelimiter separates the date/time portion of a scraped cell from
// a trailing facility remark; everything after it is ignored by parsing.
const remarkDelimiter = "|"

var (
	// Single date token, e.g. "8.29(金)" or "8/29".
	datePat = regexp.MustCompile(`(\d{1,2})[./](\d{1,2})(?:\([^)]*\))?`)

	// Date token anchored to a whole whitespace-split token.
	dateTokenPat = regexp.MustCompile(`^(\d{1,2})[./](\d{1,2})(?:\([^)]*\))?$`)

	// Date range, e.g. "8.13(水)～8.31(日)", "8/13-8/31" or the
	// omitted-end-month form "9.3(水)～7(日)".
	rangePat = regexp.MustCompile(
		`(\d{1,2})[./](\d{1,2})(?:\([^)]*\))?\s*[～~\-–]\s*(?:(\d{1,2})[./])?(\d{1,2})(?:\([^)]*\))?`)

	// Time anywhere in the text, tolerant of trailing "～" and suffixes,
	// e.g. "10:00" inside "10:00～18:00".
	timePat = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// jst is the civil zone the venue listings are published in; the default
// reference year is resolved in it, not in process-local time.
var jst = time.FixedZone("JST", 9*60*60)

// Kind discriminates the variants of a ParsedExpression.
type Kind int

const (
	// KindNone means no recognizable date was found.
	KindNone Kind = iota
	// KindDates is a list of discrete dates, each with an optional time.
	KindDates
	// KindRange is a consecutive day span sharing one representative time.
	KindRange
)

// DatedTime is one discrete date with an optional start time.
type DatedTime struct {
	Date time.Time
	Time string // "HH:MM" or empty for undetermined
}

// ParsedExpression is the tagged result of Extract, consumed by
// Materialize. Exactly one variant is populated according to Kind.
type ParsedExpression struct {
	Kind Kind

	// KindDates
	Entries []DatedTime

	// KindRange. Start and End are inclusive; End never precedes Start
	// (an inverted range is reported as KindNone).
	Start time.Time
	End   time.Time
	// RangeTime is the representative start time shared by every day of
	// the range, or empty when the text carried no time token.
	RangeTime string
}

// Extract parses a free-form scraped date/time cell into a
// ParsedExpression. referenceYear resolves the year for every date in
// the text; pass 0 to use the current year in JST (collaborators should
// normally resolve the year themselves and pass it explicitly).
//
// Parse ambiguity is never an error: unrecognizable text, invalid
// calendar dates, inverted ranges and malformed time tokens all degrade
// to silent omission, because this runs unattended over scraped text
// whose shape drifts without notice.
func Extract(datetimeText string, referenceYear int) ParsedExpression {
	year := referenceYear
	if year <= 0 {
		year = YearIn(jst)
	}

	left := datetimeText
	if i := strings.Index(left, remarkDelimiter); i >= 0 {
		left = left[:i]
	}
	left = strings.TrimSpace(normalizeSeparators(left))

	// 1) Range grammar first; it subsumes the single-date pattern.
	if m := rangePat.FindStringSubmatch(left); m != nil {
		return extractRange(left, m, year)
	}

	// 2) Token grammar: alternate date and time tokens left to right.
	entries := extractTokens(left, year)
	if len(entries) > 0 {
		return ParsedExpression{Kind: KindDates, Entries: entries}
	}

	// 3) Fallback: date tokens with no recognizable time at all.
	entries = extractDateOnly(left, year)
	if len(entries) > 0 {
		return ParsedExpression{Kind: KindDates, Entries: entries}
	}

	return ParsedExpression{Kind: KindNone}
}

func extractRange(left string, m []string, year int) ParsedExpression {
	m1, _ := strconv.Atoi(m[1])
	d1, _ := strconv.Atoi(m[2])
	// Omitted end month inherits the start month.
	m2 := m1
	if m[3] != "" {
		m2, _ = strconv.Atoi(m[3])
	}
	d2, _ := strconv.Atoi(m[4])

	start, okStart := civilDate(year, m1, d1)
	end, okEnd := civilDate(year, m2, d2)
	if !okStart || !okEnd || end.Before(start) {
		// Invalid or inverted range: a valid, empty result.
		return ParsedExpression{Kind: KindNone}
	}

	// Collect every time token in the text; the first one is the
	// representative start time for the whole span.
	rangeTime := ""
	if times := collectTimes(left); len(times) > 0 {
		rangeTime = times[0]
	}

	return ParsedExpression{
		Kind:      KindRange,
		Start:     start,
		End:       end,
		RangeTime: rangeTime,
	}
}

// extractTokens scans whitespace-split tokens, alternating between date
// tokens and time tokens. Each time token seen while a current date is
// set emits one dated and timed entry.
func extractTokens(left string, year int) []DatedTime {
	var out []DatedTime
	var current time.Time
	var haveCurrent bool

	for _, tok := range strings.Fields(left) {
		if dm := dateTokenPat.FindStringSubmatch(tok); dm != nil {
			mm, _ := strconv.Atoi(dm[1])
			dd, _ := strconv.Atoi(dm[2])
			current, haveCurrent = civilDate(year, mm, dd)
			continue
		}
		if !haveCurrent {
			continue
		}
		// Time token, tolerant of trailing "～" and other suffixes.
		if t, ok := firstTime(tok); ok {
			out = append(out, DatedTime{Date: current, Time: t})
		}
	}
	return out
}

// extractDateOnly emits one undetermined-time entry per date token found
// anywhere in the text. Used only when the token scan produced nothing.
func extractDateOnly(left string, year int) []DatedTime {
	var out []DatedTime
	for _, dm := range datePat.FindAllStringSubmatch(left, -1) {
		mm, _ := strconv.Atoi(dm[1])
		dd, _ := strconv.Atoi(dm[2])
		if d, ok := civilDate(year, mm, dd); ok {
			out = append(out, DatedTime{Date: d})
		}
	}
	return out
}

// collectTimes returns every valid HH:MM token in left-to-right order.
func collectTimes(s string) []string {
	var out []string
	for _, tm := range timePat.FindAllStringSubmatch(s, -1) {
		if t, ok := validTime(tm[1], tm[2]); ok {
			out = append(out, t)
		}
	}
	return out
}

// firstTime returns the first valid HH:MM inside a single token.
func firstTime(tok string) (string, bool) {
	tm := timePat.FindStringSubmatch(tok)
	if tm == nil {
		return "", false
	}
	return validTime(tm[1], tm[2])
}

// validTime bounds-checks an hour/minute pair and renders it zero-padded.
// An out-of-range token is treated as not matching the time pattern.
func validTime(hh, mi string) (string, bool) {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mi)
	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// civilDate builds a calendar date and reports whether the month/day
// pair is a real Gregorian date in the given year. time.Date silently
// normalizes overflow (Feb 30 -> Mar 2), so the result is compared back
// against the inputs.
func civilDate(year, month, day int) (time.Time, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
