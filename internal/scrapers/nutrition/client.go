package nutrition

import (
	"context"
	"crypto/tls"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/zphrs/ucsc-menu/internal/assert"
	"github.com/zphrs/ucsc-menu/internal/menu"
	"github.com/zphrs/ucsc-menu/internal/telemetry"
	"github.com/zphrs/ucsc-menu/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_landing_page  = "client.landing-page"
	report_client_location_page = "client.location-page"
)

const DefaultBaseURL = "https://nutrition.sa.ucsc.edu/"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseURL string
	// RequestsPerSecond and Burst configure the limiter shared by every
	// request the client makes.
	RequestsPerSecond float64
	Burst             int
	// MaxJitter is the upper bound of the random delay before each location
	// page request, zero disables it.
	MaxJitter time.Duration
	Timeout   time.Duration
	// InsecureSkipVerify disables certificate verification, the dining site
	// has served an incomplete certificate chain.
	InsecureSkipVerify bool
	// Dump receives every raw exchange when set.
	Dump restyutil.Output
}

// DefaultClientOptions returns the options used against the live site.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:            DefaultBaseURL,
		RequestsPerSecond:  20,
		Burst:              20,
		MaxJitter:          2 * time.Second,
		Timeout:            30 * time.Second,
		InsecureSkipVerify: true,
	}
}

func (o ClientOptions) withDefaults() ClientOptions {
	defaults := DefaultClientOptions()
	if o.BaseURL == "" {
		o.BaseURL = defaults.BaseURL
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if o.Burst <= 0 {
		o.Burst = defaults.Burst
	}
	if o.Timeout <= 0 {
		o.Timeout = defaults.Timeout
	}
	return o
}

// Client fetches raw pages from the dining site, it is safe for concurrent
// use and should live as long as the process.
type Client struct {
	baseURL   *url.URL
	http      *resty.Client
	maxJitter time.Duration
	tel       telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("nutrition_client", tel)
	opts = opts.withDefaults()

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL.String())
	httpClient.SetCookieJar(nil)
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetTimeout(opts.Timeout)

	transport, ok := httpClient.GetClient().Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected transport %T", httpClient.GetClient().Transport)
	}
	httpClient.SetTransport(cloudflarebp.AddCloudFlareByPass(transport))
	// set after wrapping since the wrapper installs its own tls config
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	transport.TLSClientConfig.InsecureSkipVerify = opts.InsecureSkipVerify //nolint:gosec

	// max burst >= 1 just means that no requests will be dropped
	rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return rateLimiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, "nutrition_client", tel)
	if opts.Dump != nil {
		restyutil.Dump(httpClient, opts.Dump)
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpClient,
		maxJitter: opts.MaxJitter,
		tel:       tel,
	}, nil
}

func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// LandingPage fetches the page holding the location directory.
func (c *Client) LandingPage(ctx context.Context) (string, error) {
	endpoint := c.baseURL.String()
	c.tel.ReportDebug(report_client_landing_page, endpoint)

	res, err := c.http.R().
		SetContext(ctx).
		Get(endpoint)
	return c.body(endpoint, res, err)
}

// CartCookie is the cookie the site expects when viewing a location's menu.
func CartCookie(locationID string) string {
	return "WebInaCartDates=; WebInaCartMeals=; WebInaCartQtys=; WebInaCartRecipes=; WebInaCartLocation=" + locationID
}

// LocationPage fetches the menu of one location on one date.
func (c *Client) LocationPage(ctx context.Context, meta menu.LocationMeta, date menu.Date) (string, error) {
	err := c.jitter(ctx)
	if err != nil {
		return "", &FetchError{URL: meta.URL, Err: err}
	}

	c.tel.ReportDebug(report_client_location_page, meta.ID, date.String())

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Cookie", CartCookie(meta.ID)).
		SetQueryParam("dtdate", date.Format(DateFieldLayout)).
		Get(meta.URL)
	return c.body(meta.URL, res, err)
}

func (c *Client) jitter(ctx context.Context) error {
	if c.maxJitter <= 0 {
		return nil
	}
	timer := time.NewTimer(rand.N(c.maxJitter + 1))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) body(endpoint string, res *resty.Response, err error) (string, error) {
	if err != nil {
		return "", &FetchError{URL: endpoint, Err: err}
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return "", &FetchError{URL: endpoint, Status: res.StatusCode()}
	}
	return res.String(), nil
}
