// client.go fetches public subject pages from the KOSEN syllabus site. It knows nothing
// about the page layout, that is left to the syllabus package.

package kosen

import (
	"bytes"
	"context"
	"creditcounter/internal/components/assert"
	"creditcounter/internal/components/telemetry"
	"creditcounter/internal/syllabus"
	"creditcounter/lib/restyutil"
	"errors"
	"fmt"
	"net/url"
	"time"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/scrapers/kosen")

const (
	report_client_fetch_page = "client.fetch-page"
)

const (
	DefaultBaseUrl   = "https://syllabus.kosen-k.go.jp/Pages/PublicSubjects"
	DefaultSchoolID  = "14"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// ErrUpstream indicates the syllabus site answered with a non-2xx status.
var ErrUpstream = errors.New("syllabus site returned an error")

type StatusError struct {
	StatusCode int
	Url        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("syllabus site returned status %d for %s", e.StatusCode, e.Url)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

type ClientOptions struct {
	// BaseUrl is the PublicSubjects page, DefaultBaseUrl if empty.
	BaseUrl  string
	SchoolID string

	// RequestsPerSecond limits how fast pages are requested, <= 0 disables the limit.
	RequestsPerSecond float64
	// Timeout is per request, 30s if zero.
	Timeout time.Duration
	UserAgent         string
	// BrowserTransport makes the TLS handshake and headers look like a regular browser.
	BrowserTransport bool

	// Output receives every request/response pair when non-nil.
	Output restyutil.InstrumentOutput
}

// defaultClientOptions fills every option left zero. RequestsPerSecond stays out of it,
// zero there disables the limit.
var defaultClientOptions = ClientOptions{
	BaseUrl:   DefaultBaseUrl,
	SchoolID:  DefaultSchoolID,
	Timeout:   30 * time.Second,
	UserAgent: DefaultUserAgent,
}

// Client fetches one page per department and year.
type Client struct {
	http     *resty.Client
	baseUrl  string
	schoolID string
	tel      telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("kosen_scraper", tel)

	err := mergo.Merge(&opts, defaultClientOptions)
	if err != nil {
		return Client{}, err
	}

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return Client{}, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return Client{}, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	httpClient := resty.New()
	if opts.BrowserTransport {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeaders(map[string]string{
		"user-agent":      opts.UserAgent,
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"accept-language": "ja,en-US;q=0.7,en;q=0.3",
		"referer":         fmt.Sprintf("%s://%s/", parsedBaseUrl.Scheme, parsedBaseUrl.Host),
	})
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// max burst of 1 keeps requests spaced out evenly
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.Output)

	return Client{
		http:     httpClient,
		baseUrl:  opts.BaseUrl,
		schoolID: opts.SchoolID,
		tel:      tel,
	}, nil
}

// PageUrl is the url of the public subject list of a department.
func (c Client) PageUrl(dept syllabus.Department, year string) string {
	query := url.Values{}
	query.Set("school_id", c.schoolID)
	query.Set("department_id", dept.ID)
	query.Set("year", year)
	query.Set("lang", "ja")
	return fmt.Sprintf("%s?%s", c.baseUrl, query.Encode())
}

// FetchPage downloads and parses the subject list of a department.
func (c Client) FetchPage(ctx context.Context, dept syllabus.Department, year string) (syllabus.Page, error) {
	ctx, span := tracer.Start(ctx, "FetchPage")
	defer span.End()
	span.SetAttributes(
		attribute.String("department", dept.Letter),
		attribute.String("year", year),
	)

	fail := func(err error) (syllabus.Page, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.tel.ReportBroken(report_client_fetch_page, err, dept.Letter, year)
		return syllabus.Page{}, err
	}

	link := c.PageUrl(dept, year)
	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return fail(fmt.Errorf("fetch %s: %w", link, err))
	}
	if !res.IsSuccess() {
		return fail(&StatusError{StatusCode: res.StatusCode(), Url: link})
	}

	page, err := syllabus.ParsePage(bytes.NewReader(res.Body()))
	if err != nil {
		return fail(err)
	}
	return page, nil
}
