// Package fetcher performs the single blocking GET behind every check cycle.
package fetcher

import (
	"context"
	"crypto/tls"
	"io"
	"time"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout      = 8 * time.Second
	DefaultMaxBodyBytes = 8 << 20
	DefaultUserAgent    = "webwatch/1.0"
)

// Config controls the shared HTTP client.
type Config struct {
	Timeout            time.Duration
	MaxBodyBytes       int
	UserAgent          string
	InsecureSkipVerify bool
}

// Result is a completed exchange. Any positive status counts as a fetch
// success, including 4xx and 5xx.
type Result struct {
	URL        string
	StatusCode int
	Body       string
	// Size is the length of the raw body, even when Body was truncated.
	Size        int
	ContentType string
	Truncated   bool
	Duration    time.Duration
}

// Fetcher wraps a resty client configured once at startup.
type Fetcher struct {
	client *resty.Client
	logger zerolog.Logger
	cfg    Config
}

// NewFetcher creates a Fetcher, filling unset config values with defaults.
func NewFetcher(cfg Config, logger zerolog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	if cfg.InsecureSkipVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}

	return &Fetcher{
		client: client,
		logger: logger.With().Str("component", "Fetcher").Logger(),
		cfg:    cfg,
	}
}

// Fetch issues a GET with the given extra headers. Bodies larger than the
// configured cap are truncated. Transport failures are returned as
// *errorwrapper.NetworkError.
func (f *Fetcher) Fetch(ctx context.Context, url string, headers map[string]string) (*Result, error) {
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("Fetch failed")
		return nil, errorwrapper.NewNetworkError(url, "request failed", err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() <= 0 {
		return nil, errorwrapper.NewNetworkError(url, "no status code", errorwrapper.ErrNetworkFailure)
	}

	body, err := io.ReadAll(io.LimitReader(raw, int64(f.cfg.MaxBodyBytes)+1))
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("Reading body failed")
		return nil, errorwrapper.NewNetworkError(url, "reading body failed", err)
	}

	result := &Result{
		URL:         url,
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Duration:    time.Since(start),
	}
	result.Size = len(body)
	if len(body) > f.cfg.MaxBodyBytes {
		// the kept prefix is capped but Size still reports the full length
		rest, _ := io.Copy(io.Discard, raw)
		result.Size += int(rest)
		body = body[:f.cfg.MaxBodyBytes]
		result.Truncated = true
		f.logger.Warn().
			Str("url", url).
			Int("max_body_bytes", f.cfg.MaxBodyBytes).
			Int("size", result.Size).
			Msg("Body exceeds limit, truncating")
	}
	result.Body = string(body)

	f.logger.Debug().
		Str("url", url).
		Int("status_code", result.StatusCode).
		Int("size", result.Size).
		Dur("duration", result.Duration).
		Msg("Fetched")

	return result, nil
}
