// Package coinmarketcap fetches quotes and the Fear & Greed index from the
// CoinMarketCap Pro API.
package coinmarketcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rovshanmuradov/coinwatch/internal/domain"
	"github.com/rovshanmuradov/coinwatch/internal/reconcile"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://pro-api.coinmarketcap.com"

	quotesPath    = "/v2/cryptocurrency/quotes/latest"
	fearGreedPath = "/v3/fear-and-greed/historical"
	apiKeyHeader  = "X-CMC_PRO_API_KEY"
	convert       = "USD"

	// Quotes are bounded only by the caller's context.
	fearGreedTimeout = 15 * time.Second
)

// Client is a CoinMarketCap API client.
type Client struct {
	apiKey    string
	baseURL   string
	http      *http.Client
	logger    *zap.Logger
	fgTimeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("cmc") }
}

// NewClient creates a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		http:      &http.Client{},
		logger:    zap.NewNop(),
		fgTimeout: fearGreedTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quotes returns the latest USD quote of every id the API knows. Unknown ids
// are simply absent from the snapshot.
func (c *Client) Quotes(ctx context.Context, ids []domain.TokenID) (reconcile.Snapshot, error) {
	if len(ids) == 0 {
		return reconcile.Snapshot{}, nil
	}
	slugs := make([]string, len(ids))
	for i, id := range ids {
		slugs[i] = id.String()
	}

	q := url.Values{}
	q.Set("slug", strings.Join(slugs, ","))
	q.Set("convert", convert)

	var resp quotesResponse
	if err := c.get(ctx, quotesPath, q, &resp); err != nil {
		return nil, &domain.FetchError{Source: "quotes", Err: err}
	}
	if err := resp.Status.err(); err != nil {
		return nil, &domain.FetchError{Source: "quotes", Err: err}
	}

	snap := matchQuotes(ids, resp.Data)
	c.logger.Debug("Quotes fetched",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(snap)))
	return snap, nil
}

// FearGreed returns the last limit points of the index, newest first.
func (c *Client) FearGreed(ctx context.Context, limit int) (domain.FearGreedSeries, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}

	ctx, cancel := context.WithTimeout(ctx, c.fgTimeout)
	defer cancel()

	var resp fearGreedResponse
	if err := c.get(ctx, fearGreedPath, q, &resp); err != nil {
		return nil, &domain.FetchError{Source: "fear_greed", Err: err}
	}
	if err := resp.Status.err(); err != nil {
		return nil, &domain.FetchError{Source: "fear_greed", Err: err}
	}

	series, err := resp.series()
	if err != nil {
		return nil, &domain.FetchError{Source: "fear_greed", Err: err}
	}
	if cur, ok := series.Current(); ok {
		c.logger.Debug("Fear & Greed fetched",
			zap.Int("points", len(series)),
			zap.Int("value", cur.Value),
			zap.String("classification", cur.Classification))
	}
	return series, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	// Failures usually come with a non-200 code and a filled status object,
	// which the caller turns into an APIError.
	if resp.StatusCode != http.StatusOK && !hasStatus(out) {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

func hasStatus(v any) bool {
	switch r := v.(type) {
	case *quotesResponse:
		return r.Status.failed()
	case *fearGreedResponse:
		return r.Status.failed()
	}
	return false
}
