package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalflow-backend/internal/domain"
)

// Client implements domain.RateProvider against a JSON rate endpoint.
// The endpoint is expected to answer GET {base}?from=EUR&to=USD with
// {"rate": "1.0834"}. Responses are cached per currency pair for a short
// window; failures surface as errors so each caller applies its own fallback.
type Client struct {
	httpClient *http.Client
	baseURL    string
	ttl        time.Duration
	clock      domain.Clock

	mu    sync.Mutex
	cache map[string]cachedRate
}

type cachedRate struct {
	rate  decimal.Decimal
	saved time.Time
}

// NewClient creates a new rate client.
func NewClient(baseURL string, ttl time.Duration, clock domain.Clock) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		ttl:        ttl,
		clock:      clock,
		cache:      make(map[string]cachedRate),
	}
}

// Rate looks up the exchange rate from one currency to another.
// Identity pairs short-circuit to 1 without a network call.
func (c *Client) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := from + "/" + to
	now := c.clock.Now()

	c.mu.Lock()
	if entry, ok := c.cache[key]; ok && now.Sub(entry.saved) < c.ttl {
		c.mu.Unlock()
		return entry.rate, nil
	}
	c.mu.Unlock()

	rate, err := c.fetch(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.cache[key] = cachedRate{rate: rate, saved: now}
	c.mu.Unlock()
	return rate, nil
}

func (c *Client) fetch(ctx context.Context, from, to string) (decimal.Decimal, error) {
	query := url.Values{"from": {from}, "to": {to}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate request %s->%s failed: %w", from, to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate request %s->%s failed: status %d", from, to, resp.StatusCode)
	}

	var payload struct {
		Rate decimal.Decimal `json:"rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if payload.Rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("rate %s->%s is not positive", from, to)
	}
	return payload.Rate, nil
}
