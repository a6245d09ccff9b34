package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domePage = `<html><body>
<dl class="temp_calendarList">
  <dt>2025/9/13（土）</dt>
  <dd><table>
    <tr><th>イベント</th><td><span>acosta!@みずほPayPayドーム福岡</span></td></tr>
    <tr><th>開演時間</th><td>開場 16:00 開演 18:00</td></tr>
  </table></dd>
  <dt>2025/9/15（月）</dt>
  <dd><table>
    <tr><th>イベント</th><td>九州うまいもの大会</td></tr>
    <tr><th>開催時間</th><td>開催時間 11:00～19:00</td></tr>
  </table></dd>
</dl>
</body></html>`

func domeSource() Source {
	return Source{
		Code:         "f",
		Venue:        "みずほPayPayドーム",
		URL:          "https://example.jp/f/",
		ListSelector: "dl.temp_calendarList",
	}
}

func TestExtractFragments_DefinitionList(t *testing.T) {
	frags, err := ExtractFragments(domeSource(), []byte(domePage))
	require.NoError(t, err)
	require.Len(t, frags, 2)

	assert.Equal(t, "2025-09-13", frags[0].Date)
	assert.Equal(t, "18:00", frags[0].Time, "開演 wins over 開場")
	assert.Equal(t, "acosta!@みずほPayPayドーム福岡", frags[0].Title)
	assert.Equal(t, "みずほPayPayドーム", frags[0].Venue)
	assert.Empty(t, frags[0].DatetimeText)

	assert.Equal(t, "2025-09-15", frags[1].Date)
	assert.Equal(t, "11:00", frags[1].Time, "開催時間 yields the opening time")
	assert.Equal(t, "九州うまいもの大会", frags[1].Title)
}

func TestExtractFragments_DefinitionListSkipsBadEntries(t *testing.T) {
	page := `<dl class="temp_calendarList">
  <dt>開催予定</dt>
  <dd><table><tr><th>イベント</th><td>日付のない告知</td></tr></table></dd>
  <dt>2025/9/20（土）</dt>
  <dd><p>詳細準備中</p></dd>
  <dt>2025/9/21（日）</dt>
  <dd><table><tr><th>イベント</th><td>ホークスファン感謝祭</td></tr></table></dd>
</dl>`

	frags, err := ExtractFragments(domeSource(), []byte(page))
	require.NoError(t, err)
	require.Len(t, frags, 1, "unparseable dt and title-less dd are skipped")

	assert.Equal(t, "2025-09-21", frags[0].Date)
	assert.Empty(t, frags[0].Time, "no time row means time undetermined")
	assert.Equal(t, "ホークスファン感謝祭", frags[0].Title)
}

func TestEventTimePreference(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"schedule start", "開催時間 11:00～19:00", "11:00"},
		{"curtain over doors", "開場 16:00 開演 18:00", "18:00"},
		{"doors only", "開場 9:30", "09:30"},
		{"bare time", "11:00～19:00", "11:00"},
		{"no time", "未定", ""},
		{"out of range", "開演 25:00", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventTime(tt.in))
		})
	}
}

func TestListDate(t *testing.T) {
	got, ok := listDate("2025/9/13（土）")
	require.True(t, ok)
	assert.Equal(t, "2025-09-13", got)

	_, ok = listDate("2025/2/30（日）")
	assert.False(t, ok, "impossible calendar date rejected")

	_, ok = listDate("9/13（土）")
	assert.False(t, ok, "year is required in this profile")
}
