package pricing

import (
	"errors"
	"fmt"
	"math"

	"motoprice/internal/model"
)

// ErrInvalidPrice marks a non-finite or negative price reaching the suggester
// or the anomaly scorer. These are programmer or data errors, not something a
// user can recover from.
var ErrInvalidPrice = errors.New("price must be a finite non-negative number")

// Band ratios applied to one predicted price. Fixed by the pricing team; the
// wide fair band extends half the recommended price beyond the fair range.
const (
	fastSellRatio  = 0.95
	maxProfitRatio = 1.05
	fairLowRatio   = 0.90
	fairHighRatio  = 1.10
	wideBandRatio  = 0.50
)

// Suggest derives the named price points from a single predicted price.
// For very low predictions the wide fair band may undercut zero; the band is
// reported as-is, never clamped.
func Suggest(predicted float64) (model.PriceSuggestion, error) {
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted < 0 {
		return model.PriceSuggestion{}, fmt.Errorf("suggest price: %w (got %v)", ErrInvalidPrice, predicted)
	}
	return model.PriceSuggestion{
		Recommended: math.Round(predicted),
		FastSell:    math.Round(predicted * fastSellRatio),
		MaxProfit:   math.Round(predicted * maxProfitRatio),
		FairLow:     math.Round(predicted * fairLowRatio),
		FairHigh:    math.Round(predicted * fairHighRatio),
		FairMin:     math.Round(predicted*fairLowRatio - predicted*wideBandRatio),
		FairMax:     math.Round(predicted*fairHighRatio + predicted*wideBandRatio),
	}, nil
}
