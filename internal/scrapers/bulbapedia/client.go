// client.go contains the http plumbing shared by every bulbapedia scraping
// method, the parsing of specific pages lives next to it.

package bulbapedia

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"dexscraper/internal/components/assert"
	"dexscraper/internal/components/chrono"
	"dexscraper/internal/components/telemetry"
	"dexscraper/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const DefaultCatalogURL = "https://bulbapedia.bulbagarden.net/wiki/List_of_Pok%C3%A9mon_by_National_Pok%C3%A9dex_number"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

const (
	report_client_list_catalog   = "client.list-catalog"
	report_client_resolve_image  = "client.resolve-image"
	report_client_fetch_image    = "client.fetch-image"
	report_client_catalog_tables = "client.catalog-tables"
	report_client_catalog_size   = "client.catalog-size"
)

var tracer = otel.Tracer("dexscraper/scrapers/bulbapedia")

// NetworkError is returned when a page or image could not be fetched,
// either because the request itself failed or because the server answered
// with a non-2xx status.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type ClientOptions struct {
	// CatalogURL is the index page listing every entry, defaults to
	// DefaultCatalogURL.
	CatalogURL string
	// TableDelay is how long to wait between two catalog tables.
	TableDelay time.Duration
	// Timeout applies to every request, 0 means requests never time out.
	Timeout time.Duration
	UserAgent string
	// RequestsPerSecond caps the request rate, 0 means no cap.
	RequestsPerSecond float64
	CloudflareBypass  bool
	// HttpDump receives every exchange when set.
	HttpDump restyutil.MessageOutput
	// Chrono defaults to chrono.StandardImpl.
	Chrono chrono.API
}

type Client struct {
	catalogURL *url.URL
	tableDelay time.Duration
	http       *resty.Client
	chrono     chrono.API
	tel        telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("bulbapedia_scraper", tel)

	if opts.CatalogURL == "" {
		opts.CatalogURL = DefaultCatalogURL
	}
	catalogURL, err := url.Parse(opts.CatalogURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if !catalogURL.IsAbs() {
		return nil, fmt.Errorf("catalog url must be absolute: %s", opts.CatalogURL)
	}
	if opts.TableDelay < 0 {
		return nil, fmt.Errorf("table delay must not be negative: %s", opts.TableDelay)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Chrono == nil {
		opts.Chrono = chrono.StandardImpl{}
	}

	httpClient := resty.New()
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", opts.UserAgent)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.HttpDump)

	return &Client{
		catalogURL: catalogURL,
		tableDelay: opts.TableDelay,
		http:       httpClient,
		chrono:     opts.Chrono,
		tel:        tel,
	}, nil
}

func (c *Client) get(ctx context.Context, link string) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, &NetworkError{URL: link, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &NetworkError{URL: link, Status: res.StatusCode()}
	}
	return res, nil
}

// document fetches and parses an html page, the returned url is where the
// page actually ended up after redirects so relative links can be resolved
// against it.
func (c *Client) document(ctx context.Context, link string) (*goquery.Document, *url.URL, error) {
	res, err := c.get(ctx, link)
	if err != nil {
		return nil, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", link, err)
	}

	base, err := url.Parse(link)
	if err != nil {
		return nil, nil, err
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		base = res.RawResponse.Request.URL
	}
	return doc, base, nil
}
