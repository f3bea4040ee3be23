package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zphrs/ucsc-menu/internal/chrono"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"

	"github.com/stretchr/testify/require"
)

var startTime = time.Date(2024, time.April, 6, 12, 0, 0, 0, time.UTC)

func fixtureLocations(t testing.TB, ids []string, dates ...menu.Date) menu.Locations {
	t.Helper()

	price := menu.MustParsePrice("1.00")
	meals := []menu.Meal{{
		Type: menu.MealBreakfast,
		Sections: []menu.MealSection{{
			Name: "Bakery",
			FoodItems: []menu.FoodItem{
				{Name: "Blueberry Muffin", Allergens: menu.Egg | menu.Milk | menu.Vegetarian, Price: &price},
				{Name: "Vegan Donut", Allergens: menu.Vegan | menu.Vegetarian | menu.Soy},
			},
		}},
	}}

	locs := menu.Locations{}
	for _, id := range ids {
		meta, err := menu.LocationMetaFromURL(
			"https://nutrition.sa.ucsc.edu/shortmenu.aspx?locationNum=" + id + "&locationName=Location+" + id,
		)
		require.NoError(t, err)
		loc := menu.NewLocation(meta)
		for _, date := range dates {
			require.NoError(t, loc.Menus.Add(menu.DailyMenu{Date: date, Meals: meals}))
		}
		locs = append(locs, loc)
	}
	return locs
}

type fakeScraper struct {
	t     testing.TB
	calls atomic.Int64

	mutex sync.Mutex
	ids   []string
	err   error
	// entered is signalled and release awaited on every call when set
	entered chan struct{}
	release chan struct{}
	// during runs inside every scrape when set
	during func()
}

func (f *fakeScraper) set(ids []string, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.ids = ids
	f.err = err
}

func (f *fakeScraper) Scrape(ctx context.Context) (menu.Locations, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return fixtureLocations(f.t, f.ids, menu.NewDate(2024, time.April, 6)), nil
}

type memoryStore struct {
	mutex    sync.Mutex
	snapshot *Snapshot
	saves    int
	loadErr  error
	saveErr  error
}

func (s *memoryStore) Load(context.Context) (*Snapshot, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.snapshot, s.loadErr
}

func (s *memoryStore) Save(_ context.Context, snapshot *Snapshot) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshot = snapshot
	return nil
}

func openTestCache(t *testing.T, scraper *fakeScraper, store Store) (*Cache, *chrono.ManualClock, *telemetry.Recorder) {
	t.Helper()
	clock := chrono.NewManualClock(startTime)
	rec := &telemetry.Recorder{}
	c, err := Open(context.Background(), Options{
		Scraper: scraper,
		Store:   store,
		Clock:   clock,
	}, rec)
	require.NoError(t, err)
	return c, clock, rec
}

func TestOpenScrapesWhenNothingPersisted(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05", "40"}}
	store := &memoryStore{}
	c, _, _ := openTestCache(t, scraper, store)

	require.Equal(t, int64(1), scraper.calls.Load())
	require.Equal(t, 1, store.saves)
	require.Same(t, store.snapshot, c.Snapshot())
	require.Len(t, c.Snapshot().Locations, 2)
	require.Equal(t, startTime, c.Snapshot().CachedAt)
}

func TestOpenUsesPersistedSnapshot(t *testing.T) {
	persisted := &Snapshot{
		CachedAt: startTime.Add(-time.Hour),
		Locations: fixtureLocations(t, []string{"05"},
			menu.NewDate(2024, time.April, 3),
			menu.NewDate(2024, time.April, 4),
			menu.NewDate(2024, time.April, 5),
			menu.NewDate(2024, time.April, 6),
		),
	}
	scraper := &fakeScraper{t: t}
	c, _, _ := openTestCache(t, scraper, &memoryStore{snapshot: persisted})

	require.Equal(t, int64(0), scraper.calls.Load())
	require.Same(t, persisted, c.Snapshot())

	// days before yesterday are dropped on load
	var dates []menu.Date
	for _, daily := range c.Snapshot().Locations[0].Menus.All() {
		dates = append(dates, daily.Date)
	}
	require.Equal(t, []menu.Date{
		menu.NewDate(2024, time.April, 5),
		menu.NewDate(2024, time.April, 6),
	}, dates)

	// the persisted snapshot is already stale
	require.True(t, c.NeedsRefresh(c.Snapshot()))
}

func TestOpenFailures(t *testing.T) {
	rec := &telemetry.Recorder{}
	_, err := Open(context.Background(), Options{
		Scraper: &fakeScraper{t: t, err: errors.New("site down")},
	}, rec)
	require.ErrorContains(t, err, "site down")
	require.Len(t, rec.Reports("broken"), 1)

	loadErr := errors.New("disk on fire")
	_, err = Open(context.Background(), Options{
		Scraper: &fakeScraper{t: t},
		Store:   &memoryStore{loadErr: loadErr},
	}, &telemetry.Recorder{})
	require.ErrorIs(t, err, loadErr)

	// a failed first save still leaves a usable cache
	c, err := Open(context.Background(), Options{
		Scraper: &fakeScraper{t: t, ids: []string{"05"}},
		Store:   &memoryStore{saveErr: errors.New("read only")},
	}, &telemetry.Recorder{})
	require.NoError(t, err)
	require.Len(t, c.Snapshot().Locations, 1)
}

func TestNeedsRefresh(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	c, clock, _ := openTestCache(t, scraper, NopStore{})

	testCases := []struct {
		advance  time.Duration
		expected bool
	}{
		{advance: 0, expected: false},
		{advance: 14 * time.Minute, expected: false},
		{advance: time.Minute, expected: false},
		{advance: time.Second, expected: true},
		{advance: time.Hour, expected: true},
	}
	for _, tc := range testCases {
		clock.Advance(tc.advance)
		require.Equal(t, tc.expected, c.NeedsRefresh(c.Snapshot()), clock.Now())
	}
	require.True(t, c.NeedsRefresh(nil))
}

func TestMinuteTicksKeepSnapshotFresh(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	c, clock, _ := openTestCache(t, scraper, NopStore{})
	scraper.mutex.Lock()
	scraper.during = func() { clock.Advance(40 * time.Second) }
	scraper.mutex.Unlock()

	refreshes := 0
	for tick := 0; tick < 120; tick++ {
		clock.Advance(time.Minute)
		refreshed, err := c.MaybeRefresh(context.Background())
		require.NoError(t, err)
		if refreshed {
			refreshes++
		}
		require.LessOrEqual(t, c.Snapshot().Age(clock.Now()), DefaultInterval, "tick %d", tick)
	}
	// one refresh every 16m40s at worst
	require.GreaterOrEqual(t, refreshes, 7)
}

func TestMaybeRefresh(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	store := &memoryStore{}
	c, clock, _ := openTestCache(t, scraper, store)
	first := c.Snapshot()

	refreshed, err := c.MaybeRefresh(context.Background())
	require.NoError(t, err)
	require.False(t, refreshed)
	require.Equal(t, int64(1), scraper.calls.Load())

	clock.Advance(16 * time.Minute)
	scraper.set([]string{"05", "40", "25"}, nil)

	refreshed, err = c.MaybeRefresh(context.Background())
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Equal(t, int64(2), scraper.calls.Load())
	require.Equal(t, 2, store.saves)

	second := c.Snapshot()
	require.NotSame(t, first, second)
	require.Len(t, second.Locations, 3)
	require.Equal(t, clock.Now(), second.CachedAt)
	// the previous snapshot is left untouched
	require.Len(t, first.Locations, 1)

	refreshed, err = c.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Equal(t, int64(3), scraper.calls.Load())
}

func TestFailedRefreshKeepsSnapshot(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	store := &memoryStore{}
	c, clock, rec := openTestCache(t, scraper, store)
	before := c.Snapshot()

	clock.Advance(time.Hour)
	scrapeErr := errors.New("landing page 503")
	scraper.set(nil, scrapeErr)

	refreshed, err := c.MaybeRefresh(context.Background())
	require.ErrorIs(t, err, scrapeErr)
	require.False(t, refreshed)
	require.Same(t, before, c.Snapshot())
	require.Same(t, before, store.snapshot)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestFailedSaveStillSwaps(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	store := &memoryStore{}
	c, _, rec := openTestCache(t, scraper, store)
	persisted := store.snapshot

	saveErr := errors.New("quota exceeded")
	store.mutex.Lock()
	store.saveErr = saveErr
	store.mutex.Unlock()
	scraper.set([]string{"05", "40"}, nil)

	refreshed, err := c.Refresh(context.Background())
	require.ErrorIs(t, err, saveErr)
	require.True(t, refreshed)
	require.Len(t, c.Snapshot().Locations, 2)
	require.Same(t, persisted, store.snapshot)
	require.Len(t, rec.Reports("broken"), 1)
}

func TestConcurrentRefreshesShareOneScrape(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	c, clock, _ := openTestCache(t, scraper, NopStore{})

	scraper.entered = make(chan struct{}, 1)
	scraper.release = make(chan struct{})
	clock.Advance(time.Hour)

	const callers = 8
	var wg sync.WaitGroup
	var refreshedCount atomic.Int64
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refreshed, err := c.MaybeRefresh(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if refreshed {
				refreshedCount.Add(1)
			}
		}()
	}

	<-scraper.entered
	// give the other callers a chance to join the flight
	time.Sleep(50 * time.Millisecond)
	close(scraper.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
	require.Equal(t, int64(2), scraper.calls.Load())
	require.GreaterOrEqual(t, refreshedCount.Load(), int64(1))
	require.False(t, c.NeedsRefresh(c.Snapshot()))
}

func TestReadersSeeWholeSnapshots(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	c, _, _ := openTestCache(t, scraper, NopStore{})
	scraper.set([]string{"05", "40", "25", "30"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				err := c.Read(func(snapshot *Snapshot) error {
					n := len(snapshot.Locations)
					if n != 1 && n != 4 {
						return errors.New("read a partial snapshot")
					}
					for _, loc := range snapshot.Locations {
						if loc.Menus.Len() != 1 {
							return errors.New("read a partial location")
						}
					}
					return nil
				})
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	for range 5 {
		_, err := c.Refresh(context.Background())
		require.NoError(t, err)
	}
	cancel()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	require.Len(t, c.Snapshot().Locations, 4)
}

func TestReadReturnsCallbackError(t *testing.T) {
	c, _, _ := openTestCache(t, &fakeScraper{t: t, ids: []string{"05"}}, NopStore{})
	sentinel := errors.New("stop")
	err := c.Read(func(*Snapshot) error {
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
}

type fakeCron struct {
	spec     string
	callback func()
}

func (f *fakeCron) Cron(spec string, callback func()) error {
	f.spec = spec
	f.callback = callback
	return nil
}

func TestSchedule(t *testing.T) {
	scraper := &fakeScraper{t: t, ids: []string{"05"}}
	c, clock, rec := openTestCache(t, scraper, NopStore{})

	cron := &fakeCron{}
	require.NoError(t, c.Schedule(cron, "@every 1m"))
	require.Equal(t, "@every 1m", cron.spec)

	cron.callback()
	require.Equal(t, int64(1), scraper.calls.Load())

	clock.Advance(time.Hour)
	cron.callback()
	require.Equal(t, int64(2), scraper.calls.Load())

	clock.Advance(time.Hour)
	scraper.set(nil, errors.New("timeout"))
	cron.callback()
	require.Len(t, rec.Reports("warning"), 1)
}
