// Package formulas holds the indicator and statistics math shared by the
// data modules. Functions are pure and safe for concurrent use.
package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Returns converts a price series to simple period returns.
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]; zero-priced bars
// contribute a zero return.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}
	return returns
}

// Volatility is the standard deviation of period returns over a price
// series. Returns 0 when the series is too short to produce two returns.
func Volatility(prices []float64) float64 {
	returns := Returns(prices)
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil)
}
