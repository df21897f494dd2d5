package clients

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/btccmon/internal/domain"
)

// DefaultTradesURL public trade history endpoint.
const DefaultTradesURL = "https://data.btcchina.com/data/historydata"

// TradesClient reads the public trade history feed. No credentials needed.
type TradesClient struct {
	url        string
	httpClient *http.Client
}

// NewTradesClient creates a trade history client. A nil httpClient gets a default one.
func NewTradesClient(endpoint string, httpClient *http.Client) *TradesClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &TradesClient{url: endpoint, httpClient: httpClient}
}

// GetTrades returns up to limit most recent trades for market.
func (c *TradesClient) GetTrades(ctx context.Context, market string, limit int) ([]domain.Trade, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid trades url %q", c.url)
	}
	q := u.Query()
	if market != "" {
		q.Set("market", market)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create HTTP request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "trade history request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("trade history returned status %d", resp.StatusCode)
	}

	trades, err := domain.ParseTrades(payload)
	if err != nil {
		return nil, errors.Wrap(err, "parse trade history")
	}
	return trades, nil
}
