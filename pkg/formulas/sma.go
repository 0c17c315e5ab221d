package formulas

import (
	"github.com/markcheno/go-talib"
)

// SMA computes a simple moving average over a closing-price series.
//
// The result has the same length as the input; the first period-1 slots are
// the zero-valued warmup talib emits, so callers pairing values with bar
// timestamps should skip them. Returns nil when the series is shorter than
// the period.
func SMA(closes []float64, period int) []float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}
	return talib.Sma(closes, period)
}
