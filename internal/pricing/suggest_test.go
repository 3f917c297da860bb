package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestSuggest_RatioLaw(t *testing.T) {
	prices := []float64{10_000_000, 25_500_000, 123_456_789, 3_000_000.5}

	for _, p := range prices {
		sug, err := Suggest(p)
		if err != nil {
			t.Fatalf("Suggest(%v) returned error: %v", p, err)
		}

		checks := []struct {
			name string
			got  float64
			want float64
		}{
			{"recommended", sug.Recommended, math.Round(p)},
			{"fast_sell", sug.FastSell, math.Round(0.95 * p)},
			{"max_profit", sug.MaxProfit, math.Round(1.05 * p)},
			{"fair_low", sug.FairLow, math.Round(0.90 * p)},
			{"fair_high", sug.FairHigh, math.Round(1.10 * p)},
			{"fair_min", sug.FairMin, math.Round(0.90*p - 0.5*p)},
			{"fair_max", sug.FairMax, math.Round(1.10*p + 0.5*p)},
		}
		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("Suggest(%v).%s = %v, want %v", p, c.name, c.got, c.want)
			}
		}

		// Band ordering invariants.
		if !(sug.FastSell < p && p < sug.MaxProfit) {
			t.Errorf("Suggest(%v): want fast_sell < p < max_profit, got %v / %v", p, sug.FastSell, sug.MaxProfit)
		}
		if !(sug.FairLow < sug.FairHigh) {
			t.Errorf("Suggest(%v): want fair_low < fair_high, got %v / %v", p, sug.FairLow, sug.FairHigh)
		}
		for _, c := range checks {
			if math.IsNaN(c.got) || math.IsInf(c.got, 0) {
				t.Errorf("Suggest(%v).%s is non-finite", p, c.name)
			}
		}
	}
}

// The wide fair band is defined as fair_low - p/2 and fair_high + p/2. For the
// documented small-price edge case the band narrows toward zero but the exact
// formula still holds; it is asserted here rather than clamped in code.
func TestSuggest_WideBandSmallPrice(t *testing.T) {
	for _, p := range []float64{0, 1, 10} {
		sug, err := Suggest(p)
		if err != nil {
			t.Fatalf("Suggest(%v) returned error: %v", p, err)
		}
		if want := math.Round(0.4 * p); sug.FairMin != want {
			t.Errorf("Suggest(%v).fair_min = %v, want %v", p, sug.FairMin, want)
		}
		if want := math.Round(1.6 * p); sug.FairMax != want {
			t.Errorf("Suggest(%v).fair_max = %v, want %v", p, sug.FairMax, want)
		}
	}
}

func TestSuggest_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"negative price", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Suggest(tt.price)
			if err == nil {
				t.Fatalf("Suggest(%v) should fail", tt.price)
			}
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("Suggest(%v) error = %v, want ErrInvalidPrice", tt.price, err)
			}
		})
	}
}
