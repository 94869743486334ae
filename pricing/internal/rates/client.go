// Package rates polls the exchange-rate feed and keeps the latest rate table.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"op_trader/pricing/internal/logic"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	DefaultPollInterval = time.Hour
	DefaultTimeout      = 10 * time.Second
	DefaultRetryBase    = time.Second
	maxAttempts         = 3
)

var ErrEmptyFeed = errors.New("rate feed returned no usable rates")

// feedResponse is the body served by the rate feed.
type feedResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Client fetches {"base": "usd", "rates": {"aud": 1.52, ...}} from a feed URL.
type Client struct {
	feedURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	retryBase    time.Duration
	logger       *slog.Logger
	onUpdate     func(logic.RateTable, time.Time)

	mu        sync.RWMutex
	table     logic.RateTable
	fetchedAt time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithRetryBase(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithOnUpdate registers a callback run after each fetch that changed the table.
func WithOnUpdate(fn func(logic.RateTable, time.Time)) Option {
	return func(c *Client) { c.onUpdate = fn }
}

func NewClient(feedURL string, opts ...Option) *Client {
	c := &Client{
		feedURL:      feedURL,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		pollInterval: DefaultPollInterval,
		retryBase:    DefaultRetryBase,
		logger:       slog.Default(),
		table:        logic.NewRateTable(logic.DefaultBaseCurrency, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed installs a previously cached table. It is ignored once a fresher
// table has been fetched.
func (c *Client) Seed(table logic.RateTable, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fetchedAt.After(c.fetchedAt) {
		c.table = table
		c.fetchedAt = fetchedAt
	}
}

// Snapshot returns the current table and when it was fetched. The zero time
// means no rates have been loaded yet and every currency converts 1:1.
func (c *Client) Snapshot() (logic.RateTable, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table, c.fetchedAt
}

// Start fetches once, then keeps polling until ctx is cancelled or Stop is called.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial rate fetch failed", "err", err)
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.logger.Info("rate polling stopped")
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("rate fetch failed", "err", err)
				}
			}
		}
	}()
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
	}
}

// Refresh fetches the feed, retrying with exponential backoff.
func (c *Client) Refresh(ctx context.Context) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			delay := c.retryBase << uint(i-1)
			c.logger.Info("retrying rate fetch", "attempt", i, "delay", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		table, err := c.fetch(ctx)
		if err == nil {
			c.install(table, time.Now().UTC())
			return nil
		}
		lastErr = err
		c.logger.Warn("rate fetch attempt failed", "attempt", i+1, "err", err)
	}
	return lastErr
}

func (c *Client) install(table logic.RateTable, at time.Time) {
	c.mu.Lock()
	changed := !sameRates(c.table, table)
	c.table = table
	c.fetchedAt = at
	c.mu.Unlock()

	if changed {
		c.logger.Info("rates updated", "base", table.Base, "currencies", len(table.Rates))
		if c.onUpdate != nil {
			c.onUpdate(table, at)
		}
	}
}

func (c *Client) fetch(ctx context.Context) (logic.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return logic.RateTable{}, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return logic.RateTable{}, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return logic.RateTable{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return logic.RateTable{}, fmt.Errorf("failed to read rates: %w", err)
	}
	return ParseFeed(body, c.logger)
}

// ParseFeed decodes a feed body, dropping entries that are not ISO 4217 codes
// or carry a non-positive rate.
func ParseFeed(body []byte, logger *slog.Logger) (logic.RateTable, error) {
	var data feedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return logic.RateTable{}, fmt.Errorf("failed to decode rates: %w", err)
	}

	base := strings.ToLower(strings.TrimSpace(data.Base))
	if base == "" {
		base = logic.DefaultBaseCurrency
	}
	if !ValidCode(base) {
		return logic.RateTable{}, fmt.Errorf("feed base %q is not a currency code", data.Base)
	}

	valid := make(map[string]decimal.Decimal, len(data.Rates))
	for code, rate := range data.Rates {
		if !ValidCode(code) || !rate.IsPositive() {
			if logger != nil {
				logger.Warn("dropping rate", "code", code, "rate", rate.String())
			}
			continue
		}
		valid[code] = rate
	}
	if len(valid) == 0 {
		return logic.RateTable{}, ErrEmptyFeed
	}
	return logic.NewRateTable(base, valid), nil
}

// ValidCode reports whether code is a recognised ISO 4217 currency.
func ValidCode(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != 3 {
		return false
	}
	_, err := currency.ParseISO(strings.ToUpper(code))
	return err == nil
}

func sameRates(a, b logic.RateTable) bool {
	if a.Base != b.Base || len(a.Rates) != len(b.Rates) {
		return false
	}
	for code, ra := range a.Rates {
		rb, ok := b.Rates[code]
		if !ok || !ra.Equal(rb) {
			return false
		}
	}
	return true
}
