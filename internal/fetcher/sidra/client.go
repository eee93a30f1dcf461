// Package sidra fetches monthly observations from the IBGE SIDRA values API.
package sidra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/economic-index-etl/internal/retry"
	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// DefaultBaseURL is the public SIDRA values endpoint.
const DefaultBaseURL = "https://apisidra.ibge.gov.br/values/"

// Config controls the HTTP client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sidra %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client downloads SIDRA tables with bounded retries.
type Client struct {
	cfg    Config
	http   *http.Client
	policy *retry.ExponentialPolicy
	logger *zap.Logger
}

// New builds a Client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client, policy *retry.ExponentialPolicy, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if policy == nil {
		policy = retry.NewExponentialPolicy(retry.Config{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: httpClient, policy: policy, logger: logger}
}

// TableURL renders the values URL for a national, all-periods query of tableID.
func (c *Client) TableURL(tableID int) string {
	return fmt.Sprintf("%st/%d/n1/all/h/n/P/all?formato=json", c.cfg.BaseURL, tableID)
}

// Fetch downloads every observation of tableID. Transport errors, 5xx and
// 429 responses are retried; other statuses and malformed payloads are not.
func (c *Client) Fetch(ctx context.Context, tableID int) ([]series.Observation, error) {
	url := c.TableURL(tableID)
	var observations []series.Observation
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		obs, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		observations = obs
		return nil
	}, func(attempt int, wait time.Duration, err error) {
		c.logger.Warn("sidra fetch failed, retrying",
			zap.Int("table", tableID),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sidra table %d: %w", tableID, err)
	}
	return observations, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]series.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sidra request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		statusErr := &StatusError{StatusCode: resp.StatusCode, URL: url}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, statusErr
		}
		return nil, retry.Permanent(statusErr)
	}

	var observations []series.Observation
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, retry.Permanent(fmt.Errorf("%w: decode sidra payload: %v", series.ErrStructuralParse, err))
	}
	return observations, nil
}
