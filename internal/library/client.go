// Package library provides the resilient catalog search client.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/logger"
	"github.com/scholarbot/library-assistant/pkg/metrics"
)

// resourceTypeFacets maps canonical resource types to the catalog's
// controlled vocabulary. Types outside the map pass through unfiltered.
var resourceTypeFacets = map[model.ResourceType]string{
	model.ResourceTypeArticle: "articles",
	model.ResourceTypeBook:    "books",
	model.ResourceTypeJournal: "journals",
	model.ResourceTypeThesis:  "dissertations",
}

// Config holds catalog client settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	LimitMax       int
}

// Client issues catalog searches over a pooled connection, retrying
// transient failures with exponential backoff. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *logger.Logger
	tracer     trace.Tracer

	// now is swappable for date-clamping tests.
	now func() time.Time
}

// NewClient creates a catalog search client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 5
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.LimitMax <= 0 {
		cfg.LimitMax = 50
	}

	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     log,
		tracer:     otel.Tracer("library"),
		now:        time.Now,
	}
}

// Search runs one catalog search. Transient failures (timeouts, 5xx, 429)
// are retried up to the configured attempt budget with exponential backoff;
// other failures surface immediately. The returned error is always an
// *UpstreamError when the request cannot be satisfied.
func (c *Client) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, &UpstreamError{Kind: KindClientError, Detail: "query must not be empty"}
	}

	ctx, span := c.tracer.Start(ctx, "library.search", trace.WithAttributes(
		attribute.String("search.query", req.Query),
		attribute.String("search.resource_type", string(req.ResourceType)),
		attribute.Int("search.limit", req.Limit),
	))
	defer span.End()

	requestURL := c.buildURL(req)
	start := time.Now()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryBaseDelay
	bo.Multiplier = 2
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0

	var result *model.SearchResult
	attempts := 0

	operation := func() error {
		attempts++
		res, err := c.attempt(ctx, requestURL)
		if err != nil {
			var upstream *UpstreamError
			if errors.As(err, &upstream) && !upstream.Transient() {
				return backoff.Permanent(err)
			}
			c.logger.Warn("catalog search attempt failed",
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return err
		}
		result = res
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.RetryAttempts-1)), ctx)
	err := backoff.Retry(operation, policy)

	duration := time.Since(start).Seconds()
	if err != nil {
		upstream := asUpstream(err)
		metrics.RecordSearch(string(upstream.Kind), duration, attempts-1)
		span.RecordError(upstream)
		return nil, upstream
	}

	metrics.RecordSearch("success", duration, attempts-1)
	c.logger.Debug("catalog search succeeded",
		zap.String("query", req.Query),
		zap.Int("attempts", attempts),
		zap.Int("total_matched", result.TotalMatched),
	)
	return result, nil
}

// attempt performs a single HTTP round trip with its own timeout.
func (c *Client) attempt(ctx context.Context, requestURL string) (*model.SearchResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &UpstreamError{Kind: KindClientError, Detail: err.Error()}
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "apikey "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var payload searchPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &UpstreamError{Kind: KindMalformedResponse, Detail: err.Error()}
		}
		return normalizePayload(payload), nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &UpstreamError{Kind: KindRateLimited, Detail: "catalog rate limit exceeded"}

	case resp.StatusCode >= 500:
		return nil, &UpstreamError{Kind: KindServerError, Detail: fmt.Sprintf("catalog returned %d", resp.StatusCode)}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{
			Kind:   KindClientError,
			Detail: fmt.Sprintf("catalog returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
}

// buildURL shapes the search request against the catalog API.
func (c *Client) buildURL(req model.SearchRequest) string {
	values := url.Values{}
	values.Set("q", "any,contains,"+req.Query)
	values.Set("limit", strconv.Itoa(clampLimit(req.Limit, c.cfg.LimitMax)))
	values.Set("offset", "0")

	if req.ResourceType != "" {
		facet, ok := resourceTypeFacets[req.ResourceType]
		if !ok {
			// Unrecognized types pass through rather than being rejected.
			facet = string(req.ResourceType)
		}
		values.Set("rtype", facet)
	}

	if lower, upper, ok := ResolveRange(req.DateFrom, req.DateTo, c.now()); ok {
		values.Set("dateFrom", lower)
		values.Set("dateTo", upper)
	}

	return strings.TrimRight(c.cfg.BaseURL, "/") + "/search?" + values.Encode()
}

func clampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}

func classifyTransport(err error) *UpstreamError {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &UpstreamError{Kind: KindTimeout, Detail: "catalog request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &UpstreamError{Kind: KindClientError, Detail: "request canceled"}
	}
	return &UpstreamError{Kind: KindServerError, Detail: err.Error()}
}

func asUpstream(err error) *UpstreamError {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: KindTimeout, Detail: "retry budget exhausted"}
	}
	return &UpstreamError{Kind: KindServerError, Detail: err.Error()}
}
