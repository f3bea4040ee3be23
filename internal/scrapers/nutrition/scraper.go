package nutrition

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/zphrs/ucsc-menu/internal/assert"
	"github.com/zphrs/ucsc-menu/internal/chrono"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const (
	report_scraper_locations     = "scraper.locations"
	report_scraper_location_page = "scraper.location-page"
	report_scraper_pages         = "scraper.pages"
	report_scraper_failed_pages  = "scraper.failed-pages"
)

var tracer = otel.Tracer("internal/scrapers/nutrition")

// PageSource provides the raw html of the dining site, Client is the live
// implementation.
type PageSource interface {
	BaseURL() *url.URL
	LandingPage(ctx context.Context) (string, error)
	LocationPage(ctx context.Context, meta menu.LocationMeta, date menu.Date) (string, error)
}

// DefaultConcurrency is the number of location pages fetched at once.
const DefaultConcurrency = 32

type ScraperOptions struct {
	// Days is the size of the date window starting yesterday.
	Days int
	// Concurrency bounds the number of location pages in flight.
	Concurrency int
	Clock       chrono.API
}

func (o ScraperOptions) withDefaults() ScraperOptions {
	if o.Days <= 0 || o.Days > menu.DaysPerLocation {
		o.Days = menu.DaysPerLocation
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Clock == nil {
		o.Clock = chrono.NewStandardImpl()
	}
	return o
}

// Scraper builds a full menu.Locations out of the dining site. Pages that
// fail to download or parse are reported and skipped.
type Scraper struct {
	source      PageSource
	parser      *Parser
	days        int
	concurrency int
	clock       chrono.API
	tel         telemetry.API
}

func NewScraper(source PageSource, opts ScraperOptions, tel telemetry.API) *Scraper {
	assert.NotNil(source)
	assert.NotNil(tel)
	opts = opts.withDefaults()

	return &Scraper{
		source:      source,
		parser:      NewParser(),
		days:        opts.Days,
		concurrency: opts.Concurrency,
		clock:       opts.Clock,
		tel:         telemetry.NewScopedAPI("nutrition", tel),
	}
}

// Window returns the dates a scrape covers, starting the day before today
// (UTC) so late night menus from yesterday are still served.
func (s *Scraper) Window() []menu.Date {
	start := chrono.Today(s.clock).AddDays(-1)
	return menu.DateRange(start, s.days)
}

// Locations fetches and parses only the location directory.
func (s *Scraper) Locations(ctx context.Context) (menu.Locations, error) {
	page, err := s.source.LandingPage(ctx)
	if err != nil {
		s.tel.ReportBroken(report_scraper_locations, err)
		return nil, fmt.Errorf("fetch location directory: %w", err)
	}
	locs, err := s.parser.ParseLocations(strings.NewReader(page), s.source.BaseURL())
	if err != nil {
		s.tel.ReportBroken(report_scraper_locations, err)
		return nil, fmt.Errorf("parse location directory: %w", err)
	}
	return locs, nil
}

// Scrape fetches the directory then every location over the date window.
// Only a failure to get the directory (or a cancelled ctx) fails the scrape.
func (s *Scraper) Scrape(ctx context.Context) (menu.Locations, error) {
	ctx, span := tracer.Start(ctx, "nutrition.Scrape")
	defer span.End()

	locs, err := s.Locations(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.tel.ReportCount(report_scraper_locations, int64(len(locs)))

	err = s.hydrate(ctx, locs, s.Window())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("locations", len(locs)))
	return locs, nil
}

// ScrapeLocation fills a single location over dates, the scrape window is
// used when dates is empty.
func (s *Scraper) ScrapeLocation(ctx context.Context, meta menu.LocationMeta, dates []menu.Date) (*menu.Location, error) {
	ctx, span := tracer.Start(ctx, "nutrition.ScrapeLocation")
	defer span.End()
	span.SetAttributes(attribute.String("location.id", meta.ID))

	if len(dates) == 0 {
		dates = s.Window()
	}
	loc := menu.NewLocation(meta)
	err := s.hydrate(ctx, menu.Locations{loc}, dates)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// hydrate fetches every (date, location) page concurrently and refills each
// location's buffer from scratch.
func (s *Scraper) hydrate(ctx context.Context, locs menu.Locations, dates []menu.Date) error {
	// rows are dates, columns are locations
	grid := make([][]*menu.DailyMenu, len(dates))
	for i := range grid {
		grid[i] = make([]*menu.DailyMenu, len(locs))
	}

	var failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for di, date := range dates {
		for li, loc := range locs {
			group.Go(func() error {
				daily, ok := s.page(groupCtx, loc.Meta, date)
				if !ok {
					failed.Add(1)
					return nil
				}
				grid[di][li] = &daily
				return nil
			})
		}
	}
	// the goroutines never return an error
	_ = group.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.tel.ReportCount(report_scraper_pages, int64(len(dates)*len(locs)))
	s.tel.ReportCount(report_scraper_failed_pages, failed.Load())

	for li, column := range Transpose(grid) {
		loc := locs[li]
		loc.Menus.Clear()
		for _, daily := range column {
			if daily == nil {
				continue
			}
			err := loc.Menus.Add(*daily)
			if err != nil {
				return fmt.Errorf("location %s: %w", loc.Meta.ID, err)
			}
		}
	}
	return nil
}

func (s *Scraper) page(ctx context.Context, meta menu.LocationMeta, date menu.Date) (menu.DailyMenu, bool) {
	page, err := s.source.LocationPage(ctx, meta, date)
	if err != nil {
		if ctx.Err() == nil {
			s.tel.ReportWarning(report_scraper_location_page, err, meta.ID, date.String())
		}
		return menu.DailyMenu{}, false
	}
	daily, err := s.parser.ParseDailyMenu(strings.NewReader(page))
	if err != nil {
		s.tel.ReportBroken(report_scraper_location_page, err, meta.ID, date.String())
		return menu.DailyMenu{}, false
	}
	return daily, true
}
