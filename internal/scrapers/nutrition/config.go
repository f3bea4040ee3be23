package nutrition

import (
	"fmt"

	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/lib/configutil"
)

// Config is the json5 form of ClientOptions and ScraperOptions, durations are
// go duration strings.
type Config struct {
	BaseURL            string  `json:"base_url"`
	RequestsPerSecond  float64 `json:"requests_per_second"`
	Burst              int     `json:"burst"`
	MaxJitter          string  `json:"max_jitter"`
	Timeout            string  `json:"timeout"`
	Days               int     `json:"days"`
	Concurrency        int     `json:"concurrency"`
	InsecureSkipVerify *bool   `json:"insecure_skip_verify"`
}

// ClientOptions resolves the config on top of DefaultClientOptions.
func (c Config) ClientOptions() (ClientOptions, error) {
	opts := DefaultClientOptions()
	if c.BaseURL != "" {
		opts.BaseURL = c.BaseURL
	}
	if c.RequestsPerSecond > 0 {
		opts.RequestsPerSecond = c.RequestsPerSecond
	}
	if c.Burst > 0 {
		opts.Burst = c.Burst
	}
	if c.InsecureSkipVerify != nil {
		opts.InsecureSkipVerify = *c.InsecureSkipVerify
	}

	var err error
	opts.MaxJitter, err = configutil.DurationOr(c.MaxJitter, opts.MaxJitter)
	if err != nil {
		return ClientOptions{}, fmt.Errorf("max_jitter: %w", err)
	}
	opts.Timeout, err = configutil.DurationOr(c.Timeout, opts.Timeout)
	if err != nil {
		return ClientOptions{}, fmt.Errorf("timeout: %w", err)
	}
	return opts, nil
}

// ScraperOptions resolves the config with zero values replaced by the
// defaults, leaving Clock for the caller.
func (c Config) ScraperOptions() (ScraperOptions, error) {
	if c.Days < 0 || c.Days > menu.DaysPerLocation {
		return ScraperOptions{}, fmt.Errorf("days must be between 1 and %d, got %d", menu.DaysPerLocation, c.Days)
	}
	if c.Concurrency < 0 {
		return ScraperOptions{}, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	opts := ScraperOptions{
		Days:        menu.DaysPerLocation,
		Concurrency: DefaultConcurrency,
	}
	if c.Days > 0 {
		opts.Days = c.Days
	}
	if c.Concurrency > 0 {
		opts.Concurrency = c.Concurrency
	}
	return opts, nil
}
