package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	appLog "eventnotify/internal/log"
	"eventnotify/internal/model"
)

// Store persists per-day, per-source JSON snapshots under a base
// directory: {dir}/{date}_{code}.json. Batches are idempotent snapshots,
// not incremental diffs: each refresh fully replaces a file, and an
// empty result still writes an empty array so that "scraped, found
// nothing" is distinguishable from "scrape never ran".
type Store struct {
	dir string
}

// New creates a snapshot store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Dir returns the snapshot base directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) snapshotPath(date, code string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", date, code))
}

// WriteSnapshot atomically replaces the snapshot for (date, code).
func (s *Store) WriteSnapshot(date, code string, events []model.IdentifiedEvent) error {
	if events == nil {
		events = []model.IdentifiedEvent{}
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Atomic write: temp file in same directory then rename.
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, s.snapshotPath(date, code))
}

// LoadSnapshot reads the snapshot for (date, code). A missing file is
// reported via fs.ErrNotExist so callers can treat it as "source did not
// run" rather than a hard failure.
func (s *Store) LoadSnapshot(date, code string) ([]model.IdentifiedEvent, error) {
	data, err := os.ReadFile(s.snapshotPath(date, code))
	if err != nil {
		return nil, err
	}

	var events []model.IdentifiedEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("store: corrupt snapshot %s_%s: %w", date, code, err)
	}
	return events, nil
}

// LoadRun merges the snapshots of one run date without date filtering,
// preserving code order. Snapshots may carry future-dated entries when
// the refresh ran with IncludeFuture; the ICS export wants those.
func (s *Store) LoadRun(date string, codes []string) []model.IdentifiedEvent {
	var all []model.IdentifiedEvent
	for _, code := range codes {
		events, err := s.LoadSnapshot(date, code)
		if err != nil {
			continue
		}
		all = append(all, events...)
	}
	return all
}

// LoadDay merges the snapshots of all given source codes for one date,
// preserving code order (dedup priority), and returns the codes whose
// snapshot was missing or unreadable. Only events dated exactly `date`
// are returned; snapshots may carry future-dated entries.
func (s *Store) LoadDay(date string, codes []string) ([]model.IdentifiedEvent, []string) {
	var all []model.IdentifiedEvent
	var missing []string

	for _, code := range codes {
		events, err := s.LoadSnapshot(date, code)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				appLog.Warn("snapshot read failed", "code", code, "date", date, "err", err)
			}
			missing = append(missing, code)
			continue
		}
		for _, ev := range events {
			if ev.Date != date {
				continue
			}
			if ev.Title == "" || ev.Date == "" {
				continue
			}
			all = append(all, ev)
		}
	}

	return all, missing
}
