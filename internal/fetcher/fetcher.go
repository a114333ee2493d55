// Package fetcher issues the GET requests against the school website.
package fetcher

import (
	"context"
	"fmt"
	"gsapp-backend/internal/components/assert"
	"gsapp-backend/internal/components/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_fetch = "client.fetch"
)

// Timeout bounds connecting to and reading from the website.
const Timeout = 20 * time.Second

// Fetcher returns the raw body of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TransportError is returned for non-2xx responses (StatusCode is set) and
// for connection or timeout failures (Cause is set).
type TransportError struct {
	Url        string
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s", e.Url, e.Cause.Error())
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Url, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

type Options struct {
	// RequestsPerSecond limits the request rate, 0 disables the limiter.
	RequestsPerSecond float64
	// Timeout overrides the default Timeout when non-zero.
	Timeout time.Duration
}

// Client implements Fetcher over resty.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) Client {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("fetcher", tel)

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = Timeout
	}

	httpClient := resty.New()
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetTimeout(timeout)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	return Client{
		http: httpClient,
		tel:  tel,
	}
}

func (c Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		c.tel.ReportWarning(
			report_client_fetch,
			fmt.Errorf("request: %w", err),
			url,
		)
		return nil, &TransportError{Url: url, Cause: err}
	}
	if !res.IsSuccess() {
		c.tel.ReportWarning(
			report_client_fetch,
			fmt.Errorf("unexpected status: %s", res.Status()),
			url,
		)
		return nil, &TransportError{Url: url, StatusCode: res.StatusCode()}
	}

	return res.Body(), nil
}
