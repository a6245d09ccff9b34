package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"eventnotify/internal/model"
)

// CanonicalKey derives the identity key of a draft:
// "date|time|normalized_title|normalized_venue" with a fixed field order
// and an empty string for an undetermined time. Two drafts are
// duplicates iff their canonical keys are equal.
func CanonicalKey(d model.EventDraft) string {
	return strings.Join([]string{
		d.Date,
		d.Time,
		Canonicalize(d.Title),
		Canonicalize(d.Venue),
	}, "|")
}

// HashKey computes the content hash of a canonical key.
func HashKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// DedupeAndHash collapses the accumulated drafts of one run into
// identified events. The first occurrence of a canonical key wins;
// callers control priority by controlling input order. The function is
// idempotent: re-running it over its own drafts reproduces the same
// hashes.
//
// source and extractedAt are metadata stamped by the collaborator layer
// onto every surviving event.
func DedupeAndHash(drafts []model.EventDraft, source string, extractedAt time.Time) []model.IdentifiedEvent {
	seen := make(map[string]struct{}, len(drafts))
	out := make([]model.IdentifiedEvent, 0, len(drafts))

	for _, d := range drafts {
		key := CanonicalKey(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, model.IdentifiedEvent{
			EventDraft:    d,
			SchemaVersion: model.SchemaVersion,
			Source:        source,
			Hash:          HashKey(key),
			ExtractedAt:   extractedAt,
		})
	}
	return out
}

// DedupeIdentified collapses already-identified events from multiple
// sources by their content hash, first occurrence winning. Used by the
// dispatch stage where per-source snapshots are merged in configured
// source order.
func DedupeIdentified(events []model.IdentifiedEvent) []model.IdentifiedEvent {
	seen := make(map[string]struct{}, len(events))
	out := make([]model.IdentifiedEvent, 0, len(events))

	for _, ev := range events {
		key := ev.Hash
		if key == "" {
			key = CanonicalKey(ev.EventDraft)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}
	return out
}
