// Package broker fetches account state from the brokerage REST API. Calls
// authenticate with a short-lived session key passed as a request header;
// the key is issued out of band and configured via BROKER_SESSION_KEY.
package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName = "broker"

	// sessionHeader carries the session credential on every call.
	sessionHeader = "X-Session-Key"
)

// Client talks to the brokerage account API.
type Client struct {
	baseURL    string
	sessionKey string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a broker client. An empty sessionKey is allowed at
// construction time; calls fail with a configuration error instead.
func NewClient(baseURL, sessionKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		sessionKey: sessionKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("client", "broker").Logger(),
	}
}

// CashBalance is the cash held in one currency.
type CashBalance struct {
	Currency  string  `json:"currency"`
	Amount    float64 `json:"amount"`
	Available float64 `json:"available"`
}

// GetCashBalances fetches cash balances in all account currencies. An
// account holding no cash yields an empty slice, not an error.
func (c *Client) GetCashBalances(ctx context.Context) ([]CashBalance, error) {
	if c.baseURL == "" {
		return nil, upstream.NotConfigured(providerName, "BROKER_BASE_URL")
	}
	if c.sessionKey == "" {
		return nil, upstream.NotConfigured(providerName, "BROKER_SESSION_KEY")
	}
	defer utils.OperationTimer("fetch_balances", c.log)()

	c.log.Debug().Msg("Fetching cash balances from broker")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/account/balances", nil)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}
	req.Header.Set(sessionHeader, c.sessionKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.Status(providerName, resp.StatusCode)
	}

	var result struct {
		Balances []CashBalance `json:"balances"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, upstream.Decode(providerName, err)
	}

	if result.Balances == nil {
		result.Balances = []CashBalance{}
	}
	return result.Balances, nil
}
