package cache

import "time"

// TTL constants for the per-domain stores. Values match how quickly each
// upstream's data actually moves; they are compared against StoredAt on every
// fresh read.
const (
	// Slow-moving data (filings, narratives)
	TTLEarnings   = 24 * time.Hour // Earnings history updates with quarterly filings
	TTLEstimates  = 24 * time.Hour // Analyst estimates
	TTLFinancials = 24 * time.Hour // Financial statements
	TTLProfile    = 24 * time.Hour // Company overview, sector, market cap
	TTLSummary    = 24 * time.Hour // AI-written company briefs

	// Intraday data
	TTLNews          = 6 * time.Hour // Company news feed
	TTLPreviousClose = time.Hour     // Previous session close

	// Fast-moving data
	TTLChart    = 5 * time.Minute // OHLCV candles
	TTLSearch   = 5 * time.Minute // Symbol search results
	TTLFxRates  = 5 * time.Minute // Full FX rate table per base currency
	TTLCoinData = 2 * time.Minute // Crypto coin market data
	TTLFxPair   = time.Minute     // Single FX conversion rate
	TTLBalances = 30 * time.Second // Broker cash balances
)
