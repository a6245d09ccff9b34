package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventnotify/internal/model"
)

func TestDedupeAndHash_WidthVariantsCollapse(t *testing.T) {
	now := time.Date(2025, 8, 29, 7, 0, 0, 0, time.UTC)
	drafts := []model.EventDraft{
		{Date: "2025-08-29", Time: "10:30", Title: "ライブ２０２５", Venue: "マリンメッセA館"},
		{Date: "2025-08-29", Time: "10:30", Title: "ライブ2025", Venue: "マリンメッセA館"},
	}

	events := DedupeAndHash(drafts, "https://example.jp/events", now)

	require.Len(t, events, 1, "full-width and half-width titles are the same event")
	// First occurrence wins.
	assert.Equal(t, "ライブ２０２５", events[0].Title)
	assert.Equal(t, model.SchemaVersion, events[0].SchemaVersion)
	assert.Equal(t, now, events[0].ExtractedAt)
	assert.NotEmpty(t, events[0].Hash)
}

func TestDedupeAndHash_DifferentTimesKept(t *testing.T) {
	now := time.Now()
	drafts := []model.EventDraft{
		{Date: "2025-08-29", Time: "10:30", Title: "公演", Venue: "会場"},
		{Date: "2025-08-29", Time: "14:00", Title: "公演", Venue: "会場"},
		{Date: "2025-08-29", Title: "公演", Venue: "会場"},
	}

	events := DedupeAndHash(drafts, "", now)
	require.Len(t, events, 3, "same-day different time slots are distinct events")

	hashes := map[string]bool{}
	for _, ev := range events {
		hashes[ev.Hash] = true
	}
	assert.Len(t, hashes, 3)
}

func TestDedupeAndHash_Idempotent(t *testing.T) {
	now := time.Date(2025, 8, 29, 7, 0, 0, 0, time.UTC)
	drafts := []model.EventDraft{
		{Date: "2025-08-29", Time: "10:30", Title: "公演A", Venue: "会場"},
		{Date: "2025-08-29", Time: "10:30", Title: "公演A", Venue: "会場"},
		{Date: "2025-08-30", Title: "公演B", Venue: "会場"},
	}

	first := DedupeAndHash(drafts, "src", now)

	// Re-running over its own output must reproduce the same hashes.
	redrafts := make([]model.EventDraft, 0, len(first))
	for _, ev := range first {
		redrafts = append(redrafts, ev.EventDraft)
	}
	second := DedupeAndHash(redrafts, "src", now)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Hash, second[i].Hash)
	}
}

func TestCanonicalKey_FixedFieldOrder(t *testing.T) {
	d := model.EventDraft{Date: "2025-08-29", Time: "10:30", Title: "公演", Venue: "会場"}
	assert.Equal(t, "2025-08-29|10:30|公演|会場", CanonicalKey(d))

	// Absent time is an empty field, never a sentinel.
	d.Time = ""
	assert.Equal(t, "2025-08-29||公演|会場", CanonicalKey(d))
}

func TestDedupeIdentified_FirstSourceWins(t *testing.T) {
	a := model.IdentifiedEvent{EventDraft: model.EventDraft{Date: "2025-08-29", Title: "公演", Venue: "会場"}, Hash: "h1", Source: "primary"}
	b := model.IdentifiedEvent{EventDraft: model.EventDraft{Date: "2025-08-29", Title: "公演", Venue: "会場"}, Hash: "h1", Source: "secondary"}

	out := DedupeIdentified([]model.IdentifiedEvent{a, b})
	require.Len(t, out, 1)
	assert.Equal(t, "primary", out[0].Source)
}
