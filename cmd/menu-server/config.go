package main

import (
	"fmt"
	"time"

	"github.com/zphrs/ucsc-menu/internal/cache"
	"github.com/zphrs/ucsc-menu/internal/scrapers/nutrition"
	"github.com/zphrs/ucsc-menu/lib/configutil"

	"github.com/robfig/cron/v3"
)

const (
	defaultPort = 8000
	defaultCron = "@every 1m"
)

type CacheConfig struct {
	RefreshInterval string `json:"refresh_interval"`
	Cron            string `json:"cron"`
}

type Config struct {
	Port        int                `json:"port"`
	AccessToken string             `json:"access_token"`
	Scraper     nutrition.Config   `json:"scraper"`
	Cache       CacheConfig        `json:"cache"`
	Store       cache.StoreOptions `json:"store"`
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Cache.Cron == "" {
		c.Cache.Cron = defaultCron
	}
	if c.Store.Kind == "" {
		c.Store.Kind = cache.StoreNone
	}
	return c
}

// resolved is the config after every string has been parsed.
type resolved struct {
	client   nutrition.ClientOptions
	scraper  nutrition.ScraperOptions
	interval time.Duration
}

func (c Config) resolve() (resolved, error) {
	if c.Port < 0 || c.Port > 65535 {
		return resolved{}, fmt.Errorf("port %d out of range", c.Port)
	}

	client, err := c.Scraper.ClientOptions()
	if err != nil {
		return resolved{}, fmt.Errorf("scraper: %w", err)
	}
	scraper, err := c.Scraper.ScraperOptions()
	if err != nil {
		return resolved{}, fmt.Errorf("scraper: %w", err)
	}
	interval, err := configutil.DurationOr(c.Cache.RefreshInterval, cache.DefaultInterval)
	if err != nil {
		return resolved{}, fmt.Errorf("cache.refresh_interval: %w", err)
	}
	if interval <= 0 {
		return resolved{}, fmt.Errorf("cache.refresh_interval must be positive")
	}
	schedule, err := cron.ParseStandard(c.Cache.Cron)
	if err != nil {
		return resolved{}, fmt.Errorf("cache.cron: %w", err)
	}
	// a scheduled tick only refreshes stale snapshots, so ticks have to come
	// more often than the interval or every other one finds nothing to do
	period := longestGap(schedule, time.Now())
	if period >= interval {
		return resolved{}, fmt.Errorf(
			"cache.cron %q runs every %s, it must run more often than cache.refresh_interval (%s)",
			c.Cache.Cron, period, interval,
		)
	}

	return resolved{
		client:   client,
		scraper:  scraper,
		interval: interval,
	}, nil
}

// longestGap samples the gaps between the next few runs of schedule.
func longestGap(schedule cron.Schedule, from time.Time) time.Duration {
	var longest time.Duration
	prev := schedule.Next(from)
	for i := 0; i < 8; i++ {
		next := schedule.Next(prev)
		if gap := next.Sub(prev); gap > longest {
			longest = gap
		}
		prev = next
	}
	return longest
}

func readConfig(path string) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if err != nil {
		return Config{}, err
	}
	return config.withDefaults(), nil
}
