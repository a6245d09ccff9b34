package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_RangeWithTime(t *testing.T) {
	parsed := Extract("8.13(水)～8.31(日) 10:00～18:00", 2025)

	require.Equal(t, KindRange, parsed.Kind)
	assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), parsed.Start)
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), parsed.End)
	assert.Equal(t, "10:00", parsed.RangeTime, "first time token is the representative start time")
}

func TestExtract_RangeOmittedEndMonth(t *testing.T) {
	parsed := Extract("9.3(水)～7(日)", 2025)

	require.Equal(t, KindRange, parsed.Kind)
	assert.Equal(t, time.Date(2025, 9, 3, 0, 0, 0, 0, time.UTC), parsed.Start)
	assert.Equal(t, time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC), parsed.End)
	assert.Empty(t, parsed.RangeTime)
}

func TestExtract_RangeSeparatorVariants(t *testing.T) {
	for _, text := range []string{
		"8/13〜8/31",
		"8.13-8.31",
		"8.13–8.31",
		"8.13－8.31",
	} {
		parsed := Extract(text, 2025)
		require.Equalf(t, KindRange, parsed.Kind, "separator variant %q", text)
		assert.Equal(t, time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), parsed.Start)
		assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), parsed.End)
	}
}

func TestExtract_DefaultReferenceYearIsJST(t *testing.T) {
	want := YearIn(time.FixedZone("JST", 9*60*60))

	parsed := Extract("8.29(金) 10:00", 0)
	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, want, parsed.Entries[0].Date.Year())
}

func TestExtract_InvertedRangeYieldsNothing(t *testing.T) {
	parsed := Extract("8.31(日)～8.13(水)", 2025)
	assert.Equal(t, KindNone, parsed.Kind)
}

func TestExtract_MultiTimeSingleDay(t *testing.T) {
	parsed := Extract("8.29(金) 10:30～ 14:00～", 2025)

	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, "10:30", parsed.Entries[0].Time)
	assert.Equal(t, "14:00", parsed.Entries[1].Time)
	assert.Equal(t, time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), parsed.Entries[0].Date)
	assert.Equal(t, parsed.Entries[0].Date, parsed.Entries[1].Date)
}

func TestExtract_MultiDateMultiTime(t *testing.T) {
	parsed := Extract("8.29(金) 10:30～ 8.30(土) 10:00～", 2025)

	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), parsed.Entries[0].Date)
	assert.Equal(t, "10:30", parsed.Entries[0].Time)
	assert.Equal(t, time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC), parsed.Entries[1].Date)
	assert.Equal(t, "10:00", parsed.Entries[1].Time)
}

func TestExtract_DateOnlyFallback(t *testing.T) {
	parsed := Extract("8.29(金)", 2025)

	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 1)
	assert.Empty(t, parsed.Entries[0].Time)
}

func TestExtract_NoDateYieldsNothing(t *testing.T) {
	for _, text := range []string{"未定", "", "調整中 10:00"} {
		parsed := Extract(text, 2025)
		assert.Equalf(t, KindNone, parsed.Kind, "text %q", text)
	}
}

func TestExtract_InvalidCalendarDateSkipped(t *testing.T) {
	// April has 30 days: the date token is dropped, not an error.
	parsed := Extract("4.31(木) 10:00～", 2025)
	assert.Equal(t, KindNone, parsed.Kind)
}

func TestExtract_MalformedTimeIgnored(t *testing.T) {
	// Hour 25 does not match the time pattern; the date-only fallback
	// still produces the date.
	parsed := Extract("8.29(金) 25:00～", 2025)

	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 1)
	assert.Empty(t, parsed.Entries[0].Time)

	// Minute 60 likewise.
	parsed = Extract("8.29(金) 18:60～", 2025)
	require.Equal(t, KindDates, parsed.Kind)
	assert.Empty(t, parsed.Entries[0].Time)
}

func TestExtract_RemarkDelimiterTruncates(t *testing.T) {
	parsed := Extract("8.29(金) 10:00～ | 9.1(月) 設営日", 2025)

	require.Equal(t, KindDates, parsed.Kind)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC), parsed.Entries[0].Date)
	assert.Equal(t, "10:00", parsed.Entries[0].Time)
}

func TestMaterialize_RangeExpansion(t *testing.T) {
	drafts := SplitAndNormalize("8.13(水)～8.31(日) 10:00～18:00", "夏の展示", "マリンメッセA館", 2025)

	require.Len(t, drafts, 19, "one draft per day from 8/13 to 8/31 inclusive")
	assert.Equal(t, "2025-08-13", drafts[0].Date)
	assert.Equal(t, "2025-08-31", drafts[18].Date)
	for _, d := range drafts {
		assert.Equal(t, "10:00", d.Time)
		assert.Equal(t, "夏の展示", d.Title)
		assert.Equal(t, "マリンメッセA館", d.Venue)
	}
}

func TestMaterialize_OmittedEndMonthExpansion(t *testing.T) {
	drafts := SplitAndNormalize("9.3(水)～7(日)", "見本市", "福岡国際センター", 2025)

	require.Len(t, drafts, 5)
	want := []string{"2025-09-03", "2025-09-04", "2025-09-05", "2025-09-06", "2025-09-07"}
	for i, d := range drafts {
		assert.Equal(t, want[i], d.Date)
		assert.Empty(t, d.Time, "no time token means time undetermined")
	}
}

func TestMaterialize_SingleDatePerPair(t *testing.T) {
	drafts := SplitAndNormalize("8.29(金)", "コンサート", "福岡サンパレス", 2025)

	require.Len(t, drafts, 1)
	assert.Equal(t, "2025-08-29", drafts[0].Date)
	assert.Empty(t, drafts[0].Time)
}

func TestMaterialize_NoMatchIsEmpty(t *testing.T) {
	assert.Empty(t, SplitAndNormalize("未定", "何か", "どこか", 2025))
}
