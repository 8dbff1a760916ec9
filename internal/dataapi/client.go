package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/drexon5/polymarket-trader-analyzer/internal/models"
)

const defaultBaseURL = "https://data-api.polymarket.com"

// Client fetches trade and position data from the Polymarket data API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient builds a data-API client with sane defaults.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RecentTrades returns one page of the platform-wide recent activity feed.
func (c *Client) RecentTrades(ctx context.Context, limit, offset int) ([]models.Trade, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var trades []models.Trade
	if err := c.get(ctx, "/trades", q, &trades); err != nil {
		return nil, fmt.Errorf("recent trades: %w", err)
	}
	return trades, nil
}

// UserTrades returns up to limit fills for one trader address.
func (c *Client) UserTrades(ctx context.Context, address string, limit int) ([]models.Trade, error) {
	q := url.Values{}
	q.Set("user", address)
	q.Set("limit", strconv.Itoa(limit))

	var trades []models.Trade
	if err := c.get(ctx, "/trades", q, &trades); err != nil {
		return nil, fmt.Errorf("user trades %s: %w", address, err)
	}
	return trades, nil
}

// UserPositions returns up to limit positions for one trader address.
func (c *Client) UserPositions(ctx context.Context, address string, limit int) ([]models.Position, error) {
	q := url.Values{}
	q.Set("user", address)
	q.Set("limit", strconv.Itoa(limit))

	var positions []models.Position
	if err := c.get(ctx, "/positions", q, &positions); err != nil {
		return nil, fmt.Errorf("user positions %s: %w", address, err)
	}
	return positions, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("data API %s: %s", resp.Status, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
