package blackout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sheetcal/internal/calendar"
	"sheetcal/internal/ics"
	appLog "sheetcal/internal/log"
)

// Refresher periodically rebuilds the feed portion of a Store from ICS
// subscriptions.
type Refresher struct {
	store   *Store
	fetcher *ics.Fetcher
	sources []ics.Source
	window  calendar.Boundary
	loc     *time.Location

	// serializes Refresh so a slow fetch never overlaps the next tick
	mu sync.Mutex
}

// NewRefresher wires a Store to a set of feeds. Days are computed in loc and
// limited to window.
func NewRefresher(store *Store, fetcher *ics.Fetcher, sources []ics.Source, window calendar.Boundary, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		store:   store,
		fetcher: fetcher,
		sources: sources,
		window:  window,
		loc:     loc,
	}
}

// Refresh runs fetch, parse and expand once and replaces the store's feed
// dates. Sources that fail are logged and skipped. The store is left
// untouched only when every source failed.
func (r *Refresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sources) == 0 {
		r.store.Replace(nil)
		return nil
	}

	started := time.Now()
	results, fetchErrs := r.fetcher.FetchAll(ctx, r.sources)
	if len(results) == 0 && len(fetchErrs) > 0 {
		return fmt.Errorf("blackout: refresh: %w", errors.Join(fetchErrs...))
	}

	events := make([]ics.ParsedEvent, 0)
	for _, res := range results {
		parsed, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			// ParseICS already logged the failure.
			continue
		}
		events = append(events, parsed...)
	}

	expanded, err := ics.ExpandBlackouts(events, ics.ExpandConfig{
		DisplayLocation: r.loc,
		Window:          r.window,
	})
	if err != nil {
		return fmt.Errorf("blackout: expand: %w", err)
	}
	r.store.Replace(expanded.Blackouts)

	appLog.Info("blackout refresh completed",
		"sources", len(r.sources),
		"failed_sources", len(fetchErrs),
		"events", len(events),
		"blackouts", len(expanded.Blackouts),
		"truncated", len(expanded.TruncatedEvents),
		"took", time.Since(started).String(),
	)
	return nil
}

// Start refreshes once, then on the given cron schedule (standard 5-field
// spec) until ctx is cancelled. It returns after the first refresh; an
// invalid spec is reported before anything runs.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(r.loc))
	if _, err := c.AddFunc(spec, func() { r.refreshLogged(ctx) }); err != nil {
		return fmt.Errorf("blackout: schedule %q: %w", spec, err)
	}

	r.refreshLogged(ctx)
	c.Start()
	appLog.Info("blackout refresher started", "schedule", spec, "sources", len(r.sources))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("blackout refresher stopped")
	}()
	return nil
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := r.Refresh(ctx); err != nil {
		appLog.Error("blackout refresh failed", err)
	}
}
