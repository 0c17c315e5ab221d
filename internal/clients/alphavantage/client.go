// Package alphavantage fetches symbol search results, earnings history,
// analyst estimates, financial statements and company profiles from the
// Alpha Vantage REST API.
//
// Alpha Vantage reports most failures inside HTTP 200 bodies: a "Note" or
// "Information" field for rate limiting, an "Error Message" field for invalid
// calls. Every response body passes through checkAPIError before decoding so
// those soft failures never masquerade as data.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
	"github.com/mkelaidis/spyglass/internal/utils"
)

const (
	providerName   = "alphavantage"
	defaultBaseURL = "https://www.alphavantage.co/query"
)

// Statement kinds accepted by GetFinancialStatement, named after the
// Alpha Vantage function they map to.
const (
	StatementIncome   = "INCOME_STATEMENT"
	StatementBalance  = "BALANCE_SHEET"
	StatementCashFlow = "CASH_FLOW"
)

// Client talks to the Alpha Vantage API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates an Alpha Vantage client. An empty apiKey is allowed at
// construction time; calls fail with a configuration error instead.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log.With().Str("component", "alphavantage").Logger(),
	}
}

// SearchResult is one match returned by symbol search.
type SearchResult struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Region     string  `json:"region"`
	Currency   string  `json:"currency"`
	MatchScore float64 `json:"matchScore"`
}

// SearchSymbols looks up symbols matching the query. No matches is a valid
// result and returns an empty slice.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"SYMBOL_SEARCH"},
		"keywords": {query},
	})
	if err != nil {
		return nil, err
	}
	return parseSymbolSearch(body)
}

// parseSymbolSearch flattens the numbered keys Alpha Vantage uses in search
// responses ("1. symbol", "2. name", ...).
func parseSymbolSearch(body []byte) ([]SearchResult, error) {
	var raw struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, upstream.Decode(providerName, err)
	}

	results := make([]SearchResult, 0, len(raw.BestMatches))
	for _, m := range raw.BestMatches {
		results = append(results, SearchResult{
			Symbol:     m["1. symbol"],
			Name:       m["2. name"],
			Type:       m["3. type"],
			Region:     m["4. region"],
			Currency:   m["8. currency"],
			MatchScore: parseFloat64(m["9. matchScore"]),
		})
	}
	return results, nil
}

// AnnualEarning is one fiscal year of reported EPS.
type AnnualEarning struct {
	FiscalDateEnding string  `json:"fiscalDateEnding"`
	ReportedEPS      float64 `json:"reportedEps"`
}

// QuarterlyEarning is one reported quarter. Estimate-derived fields are nil
// when Alpha Vantage reports them as "None".
type QuarterlyEarning struct {
	FiscalDateEnding   string   `json:"fiscalDateEnding"`
	ReportedDate       string   `json:"reportedDate"`
	ReportedEPS        float64  `json:"reportedEps"`
	EstimatedEPS       *float64 `json:"estimatedEps,omitempty"`
	Surprise           *float64 `json:"surprise,omitempty"`
	SurprisePercentage *float64 `json:"surprisePercentage,omitempty"`
}

// EarningsHistory is the reported EPS history for one symbol.
type EarningsHistory struct {
	Symbol    string             `json:"symbol"`
	Annual    []AnnualEarning    `json:"annual"`
	Quarterly []QuarterlyEarning `json:"quarterly"`
}

// GetEarnings fetches annual and quarterly EPS history. A symbol with no
// reporting history yields empty slices, not an error.
func (c *Client) GetEarnings(ctx context.Context, symbol string) (EarningsHistory, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"EARNINGS"},
		"symbol":   {symbol},
	})
	if err != nil {
		return EarningsHistory{}, err
	}
	return parseEarnings(body)
}

func parseEarnings(body []byte) (EarningsHistory, error) {
	var raw struct {
		Symbol         string              `json:"symbol"`
		AnnualEarnings []map[string]string `json:"annualEarnings"`
		Quarterly      []map[string]string `json:"quarterlyEarnings"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return EarningsHistory{}, upstream.Decode(providerName, err)
	}

	history := EarningsHistory{
		Symbol:    raw.Symbol,
		Annual:    make([]AnnualEarning, 0, len(raw.AnnualEarnings)),
		Quarterly: make([]QuarterlyEarning, 0, len(raw.Quarterly)),
	}
	for _, m := range raw.AnnualEarnings {
		history.Annual = append(history.Annual, AnnualEarning{
			FiscalDateEnding: m["fiscalDateEnding"],
			ReportedEPS:      parseFloat64(m["reportedEPS"]),
		})
	}
	for _, m := range raw.Quarterly {
		history.Quarterly = append(history.Quarterly, QuarterlyEarning{
			FiscalDateEnding:   m["fiscalDateEnding"],
			ReportedDate:       m["reportedDate"],
			ReportedEPS:        parseFloat64(m["reportedEPS"]),
			EstimatedEPS:       parseFloat64Ptr(m["estimatedEPS"]),
			Surprise:           parseFloat64Ptr(m["surprise"]),
			SurprisePercentage: parseFloat64Ptr(m["surprisePercentage"]),
		})
	}
	return history, nil
}

// EarningsEstimate is one analyst-consensus row for a forecast horizon.
type EarningsEstimate struct {
	Horizon         string   `json:"horizon"`
	Date            string   `json:"date"`
	EPSAverage      *float64 `json:"epsAverage,omitempty"`
	EPSHigh         *float64 `json:"epsHigh,omitempty"`
	EPSLow          *float64 `json:"epsLow,omitempty"`
	EPSAnalystCount int64    `json:"epsAnalystCount"`
	RevenueAverage  *float64 `json:"revenueAverage,omitempty"`
}

// GetEarningsEstimates fetches forward-looking analyst estimates.
func (c *Client) GetEarningsEstimates(ctx context.Context, symbol string) ([]EarningsEstimate, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"EARNINGS_ESTIMATES"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}
	return parseEarningsEstimates(body)
}

func parseEarningsEstimates(body []byte) ([]EarningsEstimate, error) {
	var raw struct {
		Estimates []map[string]string `json:"estimates"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, upstream.Decode(providerName, err)
	}

	estimates := make([]EarningsEstimate, 0, len(raw.Estimates))
	for _, m := range raw.Estimates {
		estimates = append(estimates, EarningsEstimate{
			Horizon:         m["horizon"],
			Date:            m["date"],
			EPSAverage:      parseFloat64Ptr(m["eps_estimate_average"]),
			EPSHigh:         parseFloat64Ptr(m["eps_estimate_high"]),
			EPSLow:          parseFloat64Ptr(m["eps_estimate_low"]),
			EPSAnalystCount: parseInt64(m["eps_estimate_analyst_count"]),
			RevenueAverage:  parseFloat64Ptr(m["revenue_estimate_average"]),
		})
	}
	return estimates, nil
}

// FinancialReport is one reporting period of a financial statement. Line
// items vary by statement kind, so they stay keyed by the upstream field
// name with values normalized to whole currency units.
type FinancialReport struct {
	FiscalDateEnding string           `json:"fiscalDateEnding"`
	ReportedCurrency string           `json:"reportedCurrency"`
	Items            map[string]int64 `json:"items"`
}

// FinancialStatements is the annual and quarterly report history for one
// statement kind.
type FinancialStatements struct {
	Symbol    string            `json:"symbol"`
	Statement string            `json:"statement"`
	Annual    []FinancialReport `json:"annual"`
	Quarterly []FinancialReport `json:"quarterly"`
}

// GetFinancialStatement fetches one statement kind (StatementIncome,
// StatementBalance or StatementCashFlow) for a symbol.
func (c *Client) GetFinancialStatement(ctx context.Context, symbol, statement string) (FinancialStatements, error) {
	switch statement {
	case StatementIncome, StatementBalance, StatementCashFlow:
	default:
		return FinancialStatements{}, fmt.Errorf("unknown statement kind %q", statement)
	}

	body, err := c.get(ctx, url.Values{
		"function": {statement},
		"symbol":   {symbol},
	})
	if err != nil {
		return FinancialStatements{}, err
	}
	return parseFinancialStatements(body, statement)
}

func parseFinancialStatements(body []byte, statement string) (FinancialStatements, error) {
	var raw struct {
		Symbol           string              `json:"symbol"`
		AnnualReports    []map[string]string `json:"annualReports"`
		QuarterlyReports []map[string]string `json:"quarterlyReports"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return FinancialStatements{}, upstream.Decode(providerName, err)
	}

	statements := FinancialStatements{
		Symbol:    raw.Symbol,
		Statement: statement,
		Annual:    make([]FinancialReport, 0, len(raw.AnnualReports)),
		Quarterly: make([]FinancialReport, 0, len(raw.QuarterlyReports)),
	}
	for _, m := range raw.AnnualReports {
		statements.Annual = append(statements.Annual, parseFinancialReport(m))
	}
	for _, m := range raw.QuarterlyReports {
		statements.Quarterly = append(statements.Quarterly, parseFinancialReport(m))
	}
	return statements, nil
}

func parseFinancialReport(m map[string]string) FinancialReport {
	report := FinancialReport{
		FiscalDateEnding: m["fiscalDateEnding"],
		ReportedCurrency: m["reportedCurrency"],
		Items:            make(map[string]int64, len(m)),
	}
	for key, value := range m {
		if key == "fiscalDateEnding" || key == "reportedCurrency" {
			continue
		}
		// "None" marks line items the filing does not carry; dropping them
		// keeps zeroes meaningful.
		if value == "None" || value == "" {
			continue
		}
		report.Items[key] = parseInt64(value)
	}
	return report
}

// CompanyProfile is the normalized company overview. Ratio fields are nil
// when Alpha Vantage reports "None" or "-".
type CompanyProfile struct {
	Symbol               string   `json:"symbol"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Exchange             string   `json:"exchange"`
	Currency             string   `json:"currency"`
	Country              string   `json:"country"`
	Sector               string   `json:"sector"`
	Industry             string   `json:"industry"`
	MarketCapitalization int64    `json:"marketCapitalization"`
	PERatio              *float64 `json:"peRatio,omitempty"`
	EPS                  *float64 `json:"eps,omitempty"`
	DividendYield        *float64 `json:"dividendYield,omitempty"`
	Beta                 *float64 `json:"beta,omitempty"`
	FiftyTwoWeekHigh     *float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow      *float64 `json:"fiftyTwoWeekLow,omitempty"`
}

// GetCompanyOverview fetches the company profile. Alpha Vantage answers
// unknown symbols with an empty object, which surfaces here as a soft error
// so callers can fall back to a previously cached profile.
func (c *Client) GetCompanyOverview(ctx context.Context, symbol string) (CompanyProfile, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
	})
	if err != nil {
		return CompanyProfile{}, err
	}

	profile, err := parseCompanyOverview(body)
	if err != nil {
		return CompanyProfile{}, err
	}
	if profile.Symbol == "" {
		return CompanyProfile{}, upstream.Soft(providerName, fmt.Sprintf("no company data for %s", symbol))
	}
	return profile, nil
}

func parseCompanyOverview(body []byte) (CompanyProfile, error) {
	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return CompanyProfile{}, upstream.Decode(providerName, err)
	}

	return CompanyProfile{
		Symbol:               raw["Symbol"],
		Name:                 raw["Name"],
		Description:          raw["Description"],
		Exchange:             raw["Exchange"],
		Currency:             raw["Currency"],
		Country:              raw["Country"],
		Sector:               raw["Sector"],
		Industry:             raw["Industry"],
		MarketCapitalization: parseInt64(raw["MarketCapitalization"]),
		PERatio:              parseFloat64Ptr(raw["PERatio"]),
		EPS:                  parseFloat64Ptr(raw["EPS"]),
		DividendYield:        parseFloat64Ptr(raw["DividendYield"]),
		Beta:                 parseFloat64Ptr(raw["Beta"]),
		FiftyTwoWeekHigh:     parseFloat64Ptr(raw["52WeekHigh"]),
		FiftyTwoWeekLow:      parseFloat64Ptr(raw["52WeekLow"]),
	}, nil
}

// get performs one API call and returns the raw body after screening it for
// embedded soft errors.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, upstream.NotConfigured(providerName, "ALPHAVANTAGE_API_KEY")
	}

	defer utils.OperationTimer("fetch_"+strings.ToLower(params.Get("function")), c.log)()

	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	c.log.Debug().Str("function", params.Get("function")).Msg("Fetching from Alpha Vantage")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.Status(providerName, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.Transport(providerName, err)
	}

	if err := checkAPIError(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkAPIError detects failures Alpha Vantage embeds in 200 responses.
func checkAPIError(body []byte) error {
	var probe struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	// Non-object bodies are left for the endpoint parsers to reject.
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil
	}

	switch {
	case probe.Note != "":
		return upstream.RateLimited(providerName, probe.Note)
	case probe.Information != "":
		return upstream.RateLimited(providerName, probe.Information)
	case probe.ErrorMessage != "":
		return upstream.Soft(providerName, probe.ErrorMessage)
	}
	return nil
}
