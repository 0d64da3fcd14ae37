package httpsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goliatone/go-variant-patients/patients"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Endpoint paths and request timeout used when Config leaves them empty.
const (
	DefaultShortReadPath = "/get_patients"
	DefaultLongReadPath  = "/get_patients_longread_ajax"
	DefaultTimeout       = 30 * time.Second
)

// Config describes where and how preloads are fetched.
type Config struct {
	BaseURL       string
	ShortReadPath string
	LongReadPath  string
	Timeout       time.Duration
	// RetryMax is zero by default: a failed preload is reported, not retried.
	RetryMax int
	// Headers are added to every request, e.g. the session cookie of the
	// page that hosts the popup.
	Headers map[string]string
	Clock   clock.Clock
}

type endpoint struct {
	path  string
	param string
}

// Client is the network patients.Source.
type Client struct {
	baseURL   *url.URL
	endpoints map[patients.Technology]endpoint
	headers   http.Header
	http      *retryablehttp.Client
	clock     clock.Clock
	logger    zerolog.Logger
}

var _ patients.Source = (*Client)(nil)

// New builds a Client. BaseURL must be absolute.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	if cfg.ShortReadPath == "" {
		cfg.ShortReadPath = DefaultShortReadPath
	}
	if cfg.LongReadPath == "" {
		cfg.LongReadPath = DefaultLongReadPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	logger = logger.With().Str("component", "httpsource").Logger()

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{logger}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("X-Requested-With", "XMLHttpRequest")
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	return &Client{
		baseURL: base,
		endpoints: map[patients.Technology]endpoint{
			patients.ShortRead: {path: cfg.ShortReadPath, param: "unique_key"},
			patients.LongRead:  {path: cfg.LongReadPath, param: "variant_id"},
		},
		headers: headers,
		http:    rc,
		clock:   cfg.Clock,
		logger:  logger,
	}, nil
}

// URL returns the preload URL for a variant.
func (c *Client) URL(tech patients.Technology, key string) (string, error) {
	ep, ok := c.endpoints[tech]
	if !ok {
		return "", fmt.Errorf("%w: %q", patients.ErrUnknownTechnology, tech)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + ep.path
	q := url.Values{}
	q.Set(ep.param, key)
	q.Set("preload", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch issues the preload request and decodes the response.
func (c *Client) Fetch(ctx context.Context, tech patients.Technology, key string) (patients.Entry, error) {
	if key == "" {
		return patients.Entry{}, patients.ErrEmptyKey
	}
	target, err := c.URL(tech, key)
	if err != nil {
		return patients.Entry{}, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return patients.Entry{}, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := c.clock.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return patients.Entry{}, &patients.NetworkError{Technology: tech, Key: key, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return patients.Entry{}, &patients.NetworkError{Technology: tech, Key: key, Status: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("technology", string(tech)).
		Str("key", key).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("latency", c.clock.Since(start)).
		Msg("preload response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return patients.Entry{}, &patients.NetworkError{Technology: tech, Key: key, Status: resp.StatusCode}
	}

	entry, err := Decode(tech, key, body)
	if err != nil {
		return patients.Entry{}, err
	}
	entry.LoadedAt = c.clock.Now()
	return entry, nil
}

// leveledLogger routes retryablehttp's logging through zerolog.
type leveledLogger struct {
	zerolog.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.Logger.Error().Fields(kv).Msg(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.Logger.Warn().Fields(kv).Msg(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.Logger.Debug().Fields(kv).Msg(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.Logger.Trace().Fields(kv).Msg(msg) }
