package energyplus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/epw-station-etl/internal/config"
	"github.com/couchcryptid/epw-station-etl/internal/domain"
	"github.com/couchcryptid/epw-station-etl/internal/observability"
)

// Client retrieves the weather index and EPW headers over HTTP.
type Client struct {
	http        *resty.Client
	headerBytes int
	maxAttempts int
	retryWait   time.Duration
	clock       clockwork.Clock
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a client from the fetch settings in cfg.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetTimeout(cfg.FetchTimeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &Client{
		http:        httpClient,
		headerBytes: cfg.HeaderBytes,
		maxAttempts: cfg.MaxRetries,
		retryWait:   cfg.FetchRetryWait,
		clock:       clockwork.NewRealClock(),
		metrics:     metrics,
		logger:      logger,
	}
}

// fetchKind tags how the server answered a ranged request.
type fetchKind int

const (
	// partial is a 206 response: the server honoured the range.
	partial fetchKind = iota
	// full is a 200 response: the range was ignored.
	full
)

func (k fetchKind) String() string {
	if k == partial {
		return "partial"
	}
	return "full"
}

type fetchResult struct {
	kind fetchKind
	body []byte
}

// header returns the bytes to decode. Partial bodies are used as returned;
// full bodies are cut to the byte budget.
func (r fetchResult) header(limit int) []byte {
	if r.kind == full && len(r.body) > limit {
		return r.body[:limit]
	}
	return r.body
}

// FetchHeader returns the first bytes of the EPW file at url. It asks for a
// byte range and falls back to reading the start of a full response. Failed
// attempts are retried; when all fail a *domain.FetchError is returned.
func (c *Client) FetchHeader(ctx context.Context, url string) ([]byte, error) {
	var res fetchResult
	attempts, err := c.retry(ctx, url, func() error {
		var err error
		res, err = c.fetchRange(ctx, url)
		return err
	})
	if err != nil {
		c.metrics.FetchFailures.Inc()
		return nil, &domain.FetchError{URL: url, Attempts: attempts, Err: err}
	}

	if res.kind == full {
		c.logger.Debug("range request not honoured, truncated full response", "url", url, "bytes", len(res.body))
	}
	return res.header(c.headerBytes), nil
}

// fetchRange performs a single ranged GET.
func (c *Client) fetchRange(ctx context.Context, url string) (fetchResult, error) {
	start := c.clock.Now()
	defer func() { c.metrics.FetchDuration.Observe(c.clock.Since(start).Seconds()) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Range", fmt.Sprintf("bytes=0-%d", c.headerBytes-1)).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		c.metrics.FetchAttempts.WithLabelValues("error").Inc()
		return fetchResult{}, fmt.Errorf("header request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	var res fetchResult
	switch resp.StatusCode() {
	case http.StatusPartialContent:
		res.kind = partial
		res.body, err = io.ReadAll(body)
	case http.StatusOK:
		// Only the first headerBytes of the body are ever used.
		res.kind = full
		res.body, err = io.ReadAll(io.LimitReader(body, int64(c.headerBytes)))
	default:
		c.metrics.FetchAttempts.WithLabelValues("error").Inc()
		return fetchResult{}, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	if err != nil {
		c.metrics.FetchAttempts.WithLabelValues("error").Inc()
		return fetchResult{}, fmt.Errorf("read header body: %w", err)
	}

	c.metrics.FetchAttempts.WithLabelValues(res.kind.String()).Inc()
	return res, nil
}

// FetchIndex downloads the GeoJSON index and returns its features. A missing
// or non-list "features" member is an error.
func (c *Client) FetchIndex(ctx context.Context, url string) ([]domain.Feature, error) {
	var body []byte
	_, err := c.retry(ctx, url, func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/geo+json, application/json").
			Get(url)
		if err != nil {
			return fmt.Errorf("index request: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("index returned status %d", resp.StatusCode())
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch index %s: %w", url, err)
	}

	features, err := decodeIndex(body)
	if err != nil {
		return nil, fmt.Errorf("decode index %s: %w", url, err)
	}
	c.logger.Info("fetched weather index", "url", url, "features", len(features))
	return features, nil
}

// Index wire types.

type featureCollection struct {
	Type     string          `json:"type"`
	Features json.RawMessage `json:"features"`
}

func decodeIndex(data []byte) ([]domain.Feature, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 || string(fc.Features) == "null" {
		return nil, errors.New(`missing "features" member`)
	}

	var features []domain.Feature
	if err := json.Unmarshal(fc.Features, &features); err != nil {
		return nil, fmt.Errorf(`"features" is not a list of features: %w`, err)
	}
	return features, nil
}

// retry runs op up to maxAttempts times, waiting retryWait between attempts.
// It returns the number of attempts made and the last error.
func (c *Client) retry(ctx context.Context, url string, op func() error) (int, error) {
	maxAttempts := max(c.maxAttempts, 1)

	var err error
	attempt := 0
	for attempt < maxAttempts {
		if attempt > 0 {
			c.logger.Info("download attempt failed, retrying", "url", url, "attempt", attempt, "error", err)
			if !sleepWithContext(ctx, c.clock, c.retryWait) {
				return attempt, ctx.Err()
			}
		}
		attempt++
		if err = op(); err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}
	}
	return attempt, err
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
