package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zphrs/ucsc-menu/internal/assert"
	"github.com/zphrs/ucsc-menu/internal/chrono"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

const (
	report_cache_open    = "cache.open"
	report_cache_refresh = "cache.refresh"
	report_cache_save    = "cache.save"
	report_cache_cron    = "cache.cron"
)

// DefaultInterval is how old a snapshot may get before MaybeRefresh replaces
// it.
const DefaultInterval = 15 * time.Minute

const flightKey = "refresh"

var tracer = otel.Tracer("internal/cache")

var meter = otel.Meter("internal/cache")
var refreshCounter, _ = meter.Int64Counter(
	"menu_cache.refreshes",
	metric.WithDescription("refresh attempts by result"),
)
var refreshHistogram, _ = meter.Float64Histogram(
	"menu_cache.refresh_seconds",
	metric.WithUnit("s"),
)

// Scraper produces a complete set of locations, nutrition.Scraper is the
// live implementation.
type Scraper interface {
	Scrape(ctx context.Context) (menu.Locations, error)
}

type Options struct {
	Scraper Scraper
	// Store defaults to NopStore.
	Store Store
	// Clock defaults to the system clock.
	Clock chrono.API
	// Interval defaults to DefaultInterval.
	Interval time.Duration
}

// Cache holds the current snapshot of every location. Readers share a read
// lock while refreshes scrape without holding any lock and only take the
// write lock to persist and swap in the new snapshot.
type Cache struct {
	scraper  Scraper
	store    Store
	clock    chrono.API
	interval time.Duration
	tel      telemetry.API

	mutex    sync.RWMutex
	snapshot *Snapshot
	flight   singleflight.Group
}

// Open loads the persisted snapshot or, when there is none, scrapes and
// saves a fresh one. The returned cache always holds a snapshot.
func Open(ctx context.Context, opts Options, tel telemetry.API) (*Cache, error) {
	assert.NotNil(opts.Scraper)
	assert.NotNil(tel)
	if opts.Store == nil {
		opts.Store = NopStore{}
	}
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardImpl()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	c := &Cache{
		scraper:  opts.Scraper,
		store:    opts.Store,
		clock:    opts.Clock,
		interval: opts.Interval,
		tel:      telemetry.NewScopedAPI("menu_cache", tel),
	}

	snapshot, err := c.store.Load(ctx)
	if err != nil {
		c.tel.ReportBroken(report_cache_open, err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snapshot != nil {
		snapshot.Locations.RemoveBefore(chrono.Today(c.clock).AddDays(-1))
		c.snapshot = snapshot
		c.tel.ReportDebug("loaded snapshot", snapshot.CachedAt, len(snapshot.Locations))
		return c, nil
	}

	_, err = c.Refresh(ctx)
	if c.Snapshot() == nil {
		return nil, fmt.Errorf("initial scrape: %w", err)
	}
	// the snapshot is still served when only the save failed
	return c, nil
}

// NeedsRefresh reports whether snapshot is older than the refresh interval.
func (c *Cache) NeedsRefresh(snapshot *Snapshot) bool {
	if snapshot == nil {
		return true
	}
	return snapshot.Age(c.clock.Now()) > c.interval
}

// MaybeRefresh refreshes only when the current snapshot is stale.
func (c *Cache) MaybeRefresh(ctx context.Context) (bool, error) {
	return c.do(ctx, false)
}

// Refresh scrapes regardless of the current snapshot's age.
func (c *Cache) Refresh(ctx context.Context) (bool, error) {
	return c.do(ctx, true)
}

// do joins concurrent refreshes into a single scrape. Joined callers share
// the ctx of the caller that started the flight.
func (c *Cache) do(ctx context.Context, force bool) (bool, error) {
	if !force && !c.NeedsRefresh(c.Snapshot()) {
		return false, nil
	}
	for {
		result, err, shared := c.flight.Do(flightKey, func() (any, error) {
			// a flight that finished while this one was waiting may have
			// already replaced the stale snapshot
			if !force && !c.NeedsRefresh(c.Snapshot()) {
				return false, nil
			}
			return c.refresh(ctx)
		})
		refreshed, _ := result.(bool)
		// a forced refresh that joined a flight which found nothing stale
		// still has to scrape
		if force && shared && !refreshed && err == nil {
			continue
		}
		return refreshed, err
	}
}

func (c *Cache) refresh(ctx context.Context) (bool, error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "cache.Refresh")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	c.tel.ReportDebug("refresh started", runID)
	start := time.Now()

	locs, err := c.scraper.Scrape(ctx)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		c.tel.ReportBroken(report_cache_refresh, err, runID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, "failed", elapsed)
		return false, fmt.Errorf("refresh %s: %w", runID, err)
	}

	snapshot := &Snapshot{
		CachedAt:  c.clock.Now().UTC(),
		Locations: locs,
	}

	c.mutex.Lock()
	saveErr := c.store.Save(ctx, snapshot)
	c.snapshot = snapshot
	c.mutex.Unlock()

	if saveErr != nil {
		c.tel.ReportBroken(report_cache_save, saveErr, runID)
		span.RecordError(saveErr)
		c.record(ctx, "unsaved", elapsed)
		return true, fmt.Errorf("save %s: %w", runID, saveErr)
	}

	c.tel.ReportDebug("refresh finished", runID, len(locs))
	c.record(ctx, "ok", elapsed)
	return true, nil
}

func (c *Cache) record(ctx context.Context, result string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("result", result))
	refreshCounter.Add(ctx, 1, attrs)
	refreshHistogram.Record(ctx, seconds, attrs)
}

// Read runs fn while holding the read lock, fn must not keep the snapshot
// after it returns and must not mutate it.
func (c *Cache) Read(fn func(snapshot *Snapshot) error) error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return fn(c.snapshot)
}

// Snapshot returns the current snapshot, it is never mutated after being
// published so it may be read without a lock.
func (c *Cache) Snapshot() *Snapshot {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.snapshot
}

// Schedule registers a job calling MaybeRefresh on spec.
func (c *Cache) Schedule(cron chrono.CronAPI, spec string) error {
	return cron.Cron(spec, func() {
		_, err := c.MaybeRefresh(context.Background())
		if err != nil {
			c.tel.ReportWarning(report_cache_cron, err)
		}
	})
}
