// Package exchangerate fetches currency conversion rates from
// exchangerate-api.com. The free v4 endpoint returns the full rate table for
// a base currency; single-pair lookups pick one entry out of that table.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName   = "exchangerate-api"
	defaultBaseURL = "https://api.exchangerate-api.com/v4/latest"
)

// Client for exchangerate-api.com. No credential is required.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new exchangerate-api.com client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
		log: log.With().Str("client", "exchangerate-api").Logger(),
	}
}

// Rates is the rate table for one base currency.
type Rates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// GetRates fetches the full conversion table for a base currency code.
func (c *Client) GetRates(ctx context.Context, base string) (Rates, error) {
	defer utils.OperationTimer("fetch_rates", c.log)()

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(base))
	c.log.Debug().Str("base", base).Msg("Fetching rates")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Rates{}, upstream.Transport(providerName, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Rates{}, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rates{}, upstream.Status(providerName, resp.StatusCode)
	}

	var result Rates
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Rates{}, upstream.Decode(providerName, err)
	}
	if len(result.Rates) == 0 {
		return Rates{}, upstream.Soft(providerName, fmt.Sprintf("no rates for base %s", base))
	}
	if result.Base == "" {
		result.Base = base
	}

	c.log.Info().Str("base", base).Int("rates", len(result.Rates)).Msg("Fetched rates")
	return result, nil
}

// GetPairRate fetches the conversion rate for one currency pair out of the
// base currency's table.
func (c *Client) GetPairRate(ctx context.Context, from, to string) (float64, error) {
	rates, err := c.GetRates(ctx, from)
	if err != nil {
		return 0, err
	}

	rate, exists := rates.Rates[to]
	if !exists {
		return 0, upstream.Soft(providerName, fmt.Sprintf("rate not found for %s->%s", from, to))
	}
	return rate, nil
}
