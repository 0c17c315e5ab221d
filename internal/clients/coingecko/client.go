// Package coingecko fetches cryptocurrency market data from the CoinGecko
// API. The free tier works without a key; when a demo key is configured it
// is sent so the higher rate limit applies.
package coingecko

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
	"github.com/mkelaidis/spyglass/pkg/formulas"
)

const (
	providerName   = "coingecko"
	defaultBaseURL = "https://api.coingecko.com"
)

// Client talks to the CoinGecko API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a CoinGecko client. The apiKey is optional.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.With().Str("component", "coingecko").Logger(),
	}
}

// CoinData is the normalized market snapshot for one coin. Volatility7d is
// the standard deviation of the sparkline's period returns and is nil when
// the sparkline is missing or too short.
type CoinData struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	PriceUSD     float64   `json:"priceUsd"`
	MarketCapUSD float64   `json:"marketCapUsd"`
	Volume24hUSD float64   `json:"volume24hUsd"`
	Change24hPct float64   `json:"change24hPct"`
	Change7dPct  float64   `json:"change7dPct"`
	Sparkline7d  []float64 `json:"sparkline7d,omitempty"`
	Volatility7d *float64  `json:"volatility7d,omitempty"`
	LastUpdated  string    `json:"lastUpdated,omitempty"`
}

type coinResponse struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	MarketData *struct {
		CurrentPrice      map[string]float64 `json:"current_price"`
		MarketCap         map[string]float64 `json:"market_cap"`
		TotalVolume       map[string]float64 `json:"total_volume"`
		PriceChangePct24h float64            `json:"price_change_percentage_24h"`
		PriceChangePct7d  float64            `json:"price_change_percentage_7d"`
		Sparkline7d       *struct {
			Price []float64 `json:"price"`
		} `json:"sparkline_7d"`
		LastUpdated string `json:"last_updated"`
	} `json:"market_data"`
}

// GetCoin fetches market data for one coin id ("bitcoin", "ethereum", ...).
func (c *Client) GetCoin(ctx context.Context, id string) (CoinData, error) {
	defer utils.OperationTimer("fetch_coin", c.log)()

	reqURL := fmt.Sprintf(
		"%s/api/v3/coins/%s?localization=false&tickers=false&market_data=true&community_data=false&developer_data=false&sparkline=true",
		c.baseURL, url.PathEscape(id))

	c.log.Debug().Str("coin_id", id).Msg("Fetching coin data from CoinGecko")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return CoinData{}, upstream.Transport(providerName, err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CoinData{}, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return CoinData{}, upstream.Status(providerName, resp.StatusCode)
	}

	var raw coinResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return CoinData{}, upstream.Decode(providerName, err)
	}
	if raw.MarketData == nil {
		return CoinData{}, upstream.Soft(providerName, fmt.Sprintf("no market data for %s", id))
	}

	return normalizeCoin(raw), nil
}

func normalizeCoin(raw coinResponse) CoinData {
	md := raw.MarketData
	coin := CoinData{
		ID:           raw.ID,
		Symbol:       raw.Symbol,
		Name:         raw.Name,
		PriceUSD:     md.CurrentPrice["usd"],
		MarketCapUSD: md.MarketCap["usd"],
		Volume24hUSD: md.TotalVolume["usd"],
		Change24hPct: md.PriceChangePct24h,
		Change7dPct:  md.PriceChangePct7d,
		LastUpdated:  md.LastUpdated,
	}

	if md.Sparkline7d != nil && len(md.Sparkline7d.Price) > 2 {
		coin.Sparkline7d = md.Sparkline7d.Price
		v := formulas.Volatility(md.Sparkline7d.Price)
		coin.Volatility7d = &v
	}
	return coin
}
