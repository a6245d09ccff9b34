package model

import "time"

// SchemaVersion is stamped onto every persisted event record so that
// downstream consumers can detect snapshot format changes.
const SchemaVersion = "1.0"

// RawFragment is one scraped listing row before any parsing: a free-form
// date/time cell, a title cell and the venue the row was scraped from.
// Fragments are ephemeral; they are never persisted.
type RawFragment struct {
	DatetimeText string
	Title        string
	Venue        string

	// Date (ISO YYYY-MM-DD) and Time (HH:MM or empty) are set only by
	// extraction paths whose markup carries an explicit full date, year
	// included. Such fragments bypass date/time text parsing.
	Date string
	Time string
}

// EventDraft is a single normalized day-level event record before
// deduplication. Date is always ISO "YYYY-MM-DD"; Time is "HH:MM" in
// 24-hour notation, or empty meaning "time undetermined". An empty Time
// is rendered as undetermined downstream, never as midnight.
type EventDraft struct {
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
	Title string `json:"title"`
	Venue string `json:"venue"`
}

// IdentifiedEvent is an EventDraft that survived deduplication, carrying
// a content hash derived from its canonical key plus extraction metadata
// appended by the collaborating scrape layer.
type IdentifiedEvent struct {
	EventDraft

	SchemaVersion string    `json:"schema_version"`
	Source        string    `json:"source,omitempty"`
	Hash          string    `json:"hash"`
	ExtractedAt   time.Time `json:"extracted_at"`

	// RunID identifies the refresh run that produced the snapshot record,
	// correlating persisted events with the run's log lines.
	RunID string `json:"run_id,omitempty"`
}
