// Package pipeline wires the scrape, normalization, storage, export and
// notification stages into the two scheduled jobs: Refresh (scrape and
// snapshot) and Dispatch (merge, digest, deliver, publish).
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"eventnotify/internal/config"
	"eventnotify/internal/export"
	appLog "eventnotify/internal/log"
	"eventnotify/internal/manual"
	"eventnotify/internal/model"
	"eventnotify/internal/normalize"
	"eventnotify/internal/notify"
	"eventnotify/internal/scrape"
	"eventnotify/internal/store"
)

const isoDate = "2006-01-02"

// Pipeline holds the long-lived collaborators of the scheduled jobs.
type Pipeline struct {
	cfg       *config.Config
	overrides config.Overrides
	loc       *time.Location
	store     *store.Store
	fetcher   *scrape.Fetcher
	sources   []scrape.Source
}

// New builds a Pipeline from configuration and environment overrides.
func New(cfg *config.Config, overrides config.Overrides) (*Pipeline, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("pipeline: invalid timezone %q: %w", cfg.Timezone, err)
	}

	st, err := store.New(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:       cfg,
		overrides: overrides,
		loc:       loc,
		store:     st,
		fetcher:   scrape.NewFetcher(filepath.Join(cfg.StorageDir, "page-cache")),
		sources:   scrape.SourcesFromConfig(cfg.Sources),
	}, nil
}

// Store exposes the snapshot store for the HTTP layer.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Location returns the configured civil zone.
func (p *Pipeline) Location() *time.Location {
	return p.loc
}

// TargetDate resolves the pipeline's "today": the TARGET_DATE override
// when set, otherwise the current date in the civil zone.
func (p *Pipeline) TargetDate() string {
	if p.overrides.TargetDate != "" {
		return p.overrides.TargetDate
	}
	return time.Now().In(p.loc).Format(isoDate)
}

// referenceYear resolves the implicit year for date parsing from the
// target date, so reruns for past dates parse against the right year.
func (p *Pipeline) referenceYear(targetDate string) int {
	if t, err := time.ParseInLocation(isoDate, targetDate, p.loc); err == nil {
		return t.Year()
	}
	return normalize.YearIn(p.loc)
}

// Refresh scrapes every configured source, normalizes its rows into
// identified events and replaces the per-source snapshot for the target
// date. Source failures are isolated: a failing venue leaves its
// snapshot absent (reported as missing at dispatch) and never blocks
// the others.
func (p *Pipeline) Refresh(ctx context.Context) error {
	runID := uuid.NewString()
	targetDate := p.TargetDate()
	year := p.referenceYear(targetDate)
	now := time.Now().In(p.loc)

	appLog.Info("refresh start", "run_id", runID, "date", targetDate, "sources", len(p.sources), "include_future", p.includeFuture())

	var failed int
	for _, src := range p.sources {
		if err := p.refreshSource(ctx, src, runID, targetDate, year, now); err != nil {
			appLog.Error("source refresh failed", err, "run_id", runID, "code", src.Code)
			failed++
		}
	}

	appLog.Info("refresh completed", "run_id", runID, "date", targetDate, "failed", failed)
	if failed == len(p.sources) && len(p.sources) > 0 {
		return fmt.Errorf("pipeline: all %d sources failed", failed)
	}
	return nil
}

func (p *Pipeline) refreshSource(ctx context.Context, src scrape.Source, runID, targetDate string, year int, now time.Time) error {
	fragments, err := scrape.Scrape(ctx, p.fetcher, src)
	if err != nil {
		return err
	}
	return p.store.WriteSnapshot(targetDate, src.Code, p.identify(fragments, src, runID, targetDate, year, now))
}

// identify converts one source's scraped fragments into the sorted,
// deduplicated events persisted for targetDate, each stamped with the
// run ID. Fragments that already carry an explicit date (dt/dd sources)
// skip the date/time text grammar.
func (p *Pipeline) identify(fragments []model.RawFragment, src scrape.Source, runID, targetDate string, year int, now time.Time) []model.IdentifiedEvent {
	var drafts []model.EventDraft
	for _, frag := range fragments {
		if frag.Date != "" {
			drafts = append(drafts, model.EventDraft{Date: frag.Date, Time: frag.Time, Title: frag.Title, Venue: frag.Venue})
			continue
		}
		drafts = append(drafts, normalize.SplitAndNormalize(frag.DatetimeText, frag.Title, frag.Venue, year)...)
	}

	if !p.includeFuture() {
		drafts = filterDate(drafts, targetDate)
	}

	if len(drafts) == 0 {
		appLog.Warn("zero events extracted", "code", src.Code, "date", targetDate, "rows", len(fragments))
	}

	events := normalize.DedupeAndHash(drafts, src.URL, now)
	for i := range events {
		events[i].RunID = runID
	}
	normalize.SortEvents(events)
	return events
}

func (p *Pipeline) includeFuture() bool {
	return p.cfg.IncludeFuture || p.overrides.IncludeFuture
}

func filterDate(drafts []model.EventDraft, date string) []model.EventDraft {
	out := make([]model.EventDraft, 0, len(drafts))
	for _, d := range drafts {
		if d.Date == date {
			out = append(out, d)
		}
	}
	return out
}

// Dispatch merges today's snapshots with the manual events, builds the
// digest, delivers it and publishes the static page and ICS feed.
func (p *Pipeline) Dispatch(ctx context.Context) error {
	targetDate := p.TargetDate()
	now := time.Now().In(p.loc)
	codes := p.codes()

	events, missing := p.store.LoadDay(targetDate, codes)

	// Manual entries for today join the digest; first occurrence still
	// wins, and scraped sources come first in the merge order. The
	// expansion window anchors at the target date so reruns for past
	// dates see the same manual entries.
	anchor := now
	if t, err := time.ParseInLocation(isoDate, targetDate, p.loc); err == nil {
		anchor = t
	}
	manualDrafts := manual.Expand(p.cfg.ManualEvents, anchor, p.cfg.HorizonDays, p.loc)
	manualToday := normalize.DedupeAndHash(filterDate(manualDrafts, targetDate), "manual", now)

	merged := normalize.DedupeIdentified(append(events, manualToday...))
	normalize.SortEvents(merged)

	body := notify.BuildMessage(targetDate, merged, missing, p.venueNames(), p.cfg.Notify.DetailsURL)
	appLog.Info("digest built", "date", targetDate, "items", len(merged), "missing", len(missing))
	appLog.Debug("digest preview", "body", body)

	dispatcher := notify.NewDispatcher(p.cfg.Notify, p.cfg.StorageDir, p.overrides.DryRun)
	sent, err := dispatcher.Send(ctx, body)
	if err != nil {
		// Partial delivery is still a delivery; log and continue to publish.
		appLog.Error("digest delivery incomplete", err, "date", targetDate, "sent", sent)
	}

	if werr := export.WriteHTML(p.cfg.SiteDir, targetDate, body, now); werr != nil {
		appLog.Error("html export failed", werr, "date", targetDate)
	}

	upcoming := p.upcomingEvents(targetDate, manualDrafts, now)
	if werr := export.WriteICS(p.cfg.SiteDir, upcoming, p.loc); werr != nil {
		appLog.Error("ics export failed", werr, "date", targetDate)
	}

	return err
}

// upcomingEvents collects everything from today onward for the ICS feed:
// the run's snapshots (which carry future dates when IncludeFuture) plus
// the manual expansion over the horizon.
func (p *Pipeline) upcomingEvents(targetDate string, manualDrafts []model.EventDraft, now time.Time) []model.IdentifiedEvent {
	var future []model.IdentifiedEvent
	for _, ev := range p.store.LoadRun(targetDate, p.codes()) {
		if ev.Date >= targetDate {
			future = append(future, ev)
		}
	}

	var manualUpcoming []model.EventDraft
	for _, d := range manualDrafts {
		if d.Date >= targetDate {
			manualUpcoming = append(manualUpcoming, d)
		}
	}
	future = append(future, normalize.DedupeAndHash(manualUpcoming, "manual", now)...)

	out := normalize.DedupeIdentified(future)
	normalize.SortEvents(out)
	return out
}

func (p *Pipeline) codes() []string {
	codes := make([]string, 0, len(p.sources))
	for _, s := range p.sources {
		codes = append(codes, s.Code)
	}
	return codes
}

func (p *Pipeline) venueNames() map[string]string {
	names := make(map[string]string, len(p.sources))
	for _, s := range p.sources {
		names[s.Code] = s.Venue
	}
	return names
}
