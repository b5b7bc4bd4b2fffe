package library

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarbot/library-assistant/internal/model"
	"github.com/scholarbot/library-assistant/pkg/logger"
)

const samplePayload = `{
	"info": {"total": 42},
	"docs": [
		{
			"pnx": {"display": {
				"title": ["Attention Is All You Need"],
				"creator": ["Vaswani, Ashish"],
				"creationdate": ["2017"],
				"type": ["article"]
			}},
			"delivery": {"link": [{"displayLabel": "View Online", "linkURL": "https://catalog.example.edu/doc/1"}]}
		}
	]
}`

func newTestClient(t *testing.T, baseURL string, attempts int) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		RetryAttempts:  attempts,
		RetryBaseDelay: time.Millisecond,
		LimitMax:       50,
	}, logger.NewNop())
}

func TestSearchSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	client.now = func() time.Time {
		return time.Date(2026, time.August, 25, 0, 0, 0, 0, time.UTC)
	}

	result, err := client.Search(context.Background(), model.SearchRequest{
		Query:        "transformers",
		ResourceType: model.ResourceTypeArticle,
		DateFrom:     intPtr(2015),
		DateTo:       intPtr(2020),
		Limit:        5,
	})
	require.NoError(t, err)
	require.Len(t, result.Resources, 1)
	assert.Equal(t, "Attention Is All You Need", result.Resources[0].Title)
	assert.Equal(t, 42, result.TotalMatched)

	query := gotQuery.Load().(url.Values)
	assert.Equal(t, "any,contains,transformers", query.Get("q"))
	assert.Equal(t, "articles", query.Get("rtype"))
	assert.Equal(t, "20150101", query.Get("dateFrom"))
	assert.Equal(t, "20201231", query.Get("dateTo"))
	assert.Equal(t, "5", query.Get("limit"))
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	result, err := client.Search(context.Background(), model.SearchRequest{Query: "resilience", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 42, result.TotalMatched)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchRetriesRateLimiting(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	_, err := client.Search(context.Background(), model.SearchRequest{Query: "throttled", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSearchExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)
	_, err := client.Search(context.Background(), model.SearchRequest{Query: "doomed", Limit: 10})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, KindServerError, upstream.Kind)
	assert.True(t, upstream.Transient())
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchClientErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	_, err := client.Search(context.Background(), model.SearchRequest{Query: "rejected", Limit: 10})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, KindClientError, upstream.Kind)
	assert.False(t, upstream.Transient())
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchMalformedResponseDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 5)
	_, err := client.Search(context.Background(), model.SearchRequest{Query: "garbled", Limit: 10})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, KindMalformedResponse, upstream.Kind)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchTimeoutYieldsTimeoutKind(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:        server.URL,
		Timeout:        20 * time.Millisecond,
		RetryAttempts:  2,
		RetryBaseDelay: time.Millisecond,
	}, logger.NewNop())

	_, err := client.Search(context.Background(), model.SearchRequest{Query: "slow", Limit: 10})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, KindTimeout, upstream.Kind)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://unused.invalid", 1)
	_, err := client.Search(context.Background(), model.SearchRequest{Query: "   "})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, KindClientError, upstream.Kind)
}

func TestSearchUnrecognizedTypePassesThrough(t *testing.T) {
	t.Parallel()

	var gotRtype atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRtype.Store(r.URL.Query().Get("rtype"))
		w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 1)
	_, err := client.Search(context.Background(), model.SearchRequest{
		Query:        "maps",
		ResourceType: model.ResourceType("atlas"),
		Limit:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, "atlas", gotRtype.Load())
}
