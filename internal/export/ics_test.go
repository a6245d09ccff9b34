package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventnotify/internal/model"
)

var tokyo = time.FixedZone("JST", 9*3600)

func TestBuildCalendar(t *testing.T) {
	events := []model.IdentifiedEvent{
		{
			EventDraft:  model.EventDraft{Date: "2025-08-29", Time: "10:30", Title: "ディズニー・オン・アイス", Venue: "マリンメッセA館"},
			Hash:        "abc123",
			ExtractedAt: time.Date(2025, 8, 29, 7, 0, 0, 0, time.UTC),
		},
		{
			EventDraft:  model.EventDraft{Date: "2025-08-30", Title: "夏の大恐竜展", Venue: "マリンメッセB館"},
			Hash:        "def456",
			ExtractedAt: time.Date(2025, 8, 29, 7, 0, 0, 0, time.UTC),
		},
	}

	serialized := BuildCalendar(events, tokyo).Serialize()

	assert.Contains(t, serialized, "BEGIN:VCALENDAR")
	assert.Contains(t, serialized, "METHOD:PUBLISH")
	assert.Equal(t, 2, strings.Count(serialized, "BEGIN:VEVENT"))
	assert.Contains(t, serialized, "UID:abc123@eventnotify")
	assert.Contains(t, serialized, "ディズニー・オン・アイス")

	// Time-undetermined events are all-day, not midnight.
	assert.Contains(t, serialized, "DTSTART;VALUE=DATE:20250830")
	assert.Contains(t, serialized, "DTEND;VALUE=DATE:20250831")
}

func TestBuildCalendar_CorruptDateSkipped(t *testing.T) {
	events := []model.IdentifiedEvent{
		{EventDraft: model.EventDraft{Date: "not-a-date", Title: "壊れ"}, Hash: "x"},
	}
	serialized := BuildCalendar(events, tokyo).Serialize()
	assert.NotContains(t, serialized, "BEGIN:VEVENT")
}

func TestWriteICSAndHTML(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteICS(dir, nil, tokyo))
	require.NoError(t, WriteHTML(dir, "2025-08-29", "【本日のイベント】2025-08-29", time.Date(2025, 8, 29, 7, 30, 0, 0, tokyo)))

	ics, err := os.ReadFile(filepath.Join(dir, "events.ics"))
	require.NoError(t, err)
	assert.Contains(t, string(ics), "BEGIN:VCALENDAR")

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "【本日のイベント】2025-08-29")
	assert.Contains(t, string(html), "2025-08-29 07:30 JST")
}
