// Package yahoo fetches OHLCV chart data from the Yahoo Finance v8 chart
// API. The chart metadata also carries the previous session close, which is
// how the previous-close endpoint avoids a second provider.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName   = "yahoo"
	defaultBaseURL = "https://query1.finance.yahoo.com"

	// Yahoo rejects the default Go http client string.
	userAgent = "Mozilla/5.0 (compatible; spyglass/1.0)"
)

// Client talks to the Yahoo Finance chart API. No credential is required.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a Yahoo Finance chart client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "yahoo").Logger(),
	}
}

// ChartMeta describes the instrument and session the candles belong to.
type ChartMeta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
	Range              string  `json:"range"`
	Interval           string  `json:"interval"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
}

// Chart is the normalized chart response.
type Chart struct {
	Meta    ChartMeta `json:"meta"`
	Candles []Candle  `json:"candles"`
}

// PreviousClose is the prior session close for one symbol.
type PreviousClose struct {
	Symbol   string  `json:"symbol"`
	Close    float64 `json:"close"`
	Currency string  `json:"currency"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency           string  `json:"currency"`
		Symbol             string  `json:"symbol"`
		ExchangeName       string  `json:"exchangeName"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
		ChartPreviousClose float64 `json:"chartPreviousClose"`
		Range              string  `json:"range"`
		DataGranularity    string  `json:"dataGranularity"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []quoteArrays `json:"quote"`
	} `json:"indicators"`
}

type quoteArrays struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// GetChart fetches candles for a symbol over a range ("1d", "5d", "1mo",
// "1y", ...) at an interval ("5m", "1d", ...).
func (c *Client) GetChart(ctx context.Context, symbol, chartRange, interval string) (Chart, error) {
	defer utils.OperationTimer("fetch_chart", c.log)()

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(chartRange), url.QueryEscape(interval))

	c.log.Debug().
		Str("symbol", symbol).
		Str("range", chartRange).
		Str("interval", interval).
		Msg("Fetching chart from Yahoo Finance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Chart{}, upstream.Transport(providerName, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Chart{}, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Chart{}, upstream.Transport(providerName, err)
	}

	var raw chartResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Chart{}, upstream.Status(providerName, resp.StatusCode)
		}
		return Chart{}, upstream.Decode(providerName, err)
	}

	// Yahoo describes failures in the body even on non-2xx responses, so the
	// description is kept when it exists.
	if raw.Chart.Error != nil {
		if resp.StatusCode != http.StatusOK {
			return Chart{}, &upstream.Error{
				Provider:   providerName,
				Kind:       upstream.KindStatus,
				StatusCode: resp.StatusCode,
				Message:    raw.Chart.Error.Description,
			}
		}
		return Chart{}, upstream.Soft(providerName, raw.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return Chart{}, upstream.Status(providerName, resp.StatusCode)
	}
	if len(raw.Chart.Result) == 0 {
		return Chart{}, upstream.Soft(providerName, fmt.Sprintf("no chart data for %s", symbol))
	}

	return normalizeChart(raw.Chart.Result[0]), nil
}

// normalizeChart zips the parallel timestamp/OHLCV arrays into candles.
// Trading halts leave null slots in the arrays; bars without a close carry
// no information and are dropped.
func normalizeChart(res chartResult) Chart {
	chart := Chart{
		Meta: ChartMeta{
			Currency:           res.Meta.Currency,
			Symbol:             res.Meta.Symbol,
			ExchangeName:       res.Meta.ExchangeName,
			RegularMarketPrice: res.Meta.RegularMarketPrice,
			PreviousClose:      res.Meta.ChartPreviousClose,
			Range:              res.Meta.Range,
			Interval:           res.Meta.DataGranularity,
		},
		Candles: make([]Candle, 0, len(res.Timestamp)),
	}

	var quote quoteArrays
	if len(res.Indicators.Quote) > 0 {
		quote = res.Indicators.Quote[0]
	}

	for i, ts := range res.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := Candle{Timestamp: ts, Close: *quote.Close[i]}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		chart.Candles = append(chart.Candles, candle)
	}
	return chart
}

// GetPreviousClose fetches the prior session close for a symbol from the
// one-day chart metadata.
func (c *Client) GetPreviousClose(ctx context.Context, symbol string) (PreviousClose, error) {
	chart, err := c.GetChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return PreviousClose{}, err
	}
	if chart.Meta.PreviousClose == 0 {
		return PreviousClose{}, upstream.Soft(providerName, fmt.Sprintf("no previous close for %s", symbol))
	}
	return PreviousClose{
		Symbol:   chart.Meta.Symbol,
		Close:    chart.Meta.PreviousClose,
		Currency: chart.Meta.Currency,
	}, nil
}
