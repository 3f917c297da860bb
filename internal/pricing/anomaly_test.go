package pricing

import (
	"errors"
	"math"
	"testing"

	"motoprice/internal/model"
)

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(DefaultRelativeSigma, DefaultZThreshold)
	const predicted = 10_000_000.0

	tests := []struct {
		name         string
		asking       float64
		wantResidual float64
		wantZ        float64
		wantAnomaly  bool
		wantClass    model.Classification
	}{
		{
			name:         "asking equals prediction",
			asking:       10_000_000,
			wantResidual: 0,
			wantZ:        0,
			wantAnomaly:  false,
			wantClass:    model.ClassificationNormal,
		},
		{
			name:         "asking far above prediction",
			asking:       14_000_000,
			wantResidual: 4_000_000,
			wantZ:        4_000_000.0 / 1_500_000.0,
			wantAnomaly:  true,
			wantClass:    model.ClassificationHighAnomaly,
		},
		{
			name:         "asking far below prediction",
			asking:       6_000_000,
			wantResidual: -4_000_000,
			wantZ:        -4_000_000.0 / 1_500_000.0,
			wantAnomaly:  true,
			wantClass:    model.ClassificationLowAnomaly,
		},
		{
			name:         "asking within threshold",
			asking:       13_000_000,
			wantResidual: 3_000_000,
			wantZ:        2,
			wantAnomaly:  false,
			wantClass:    model.ClassificationNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := scorer.Score(tt.asking, predicted)
			if err != nil {
				t.Fatalf("Score(%v, %v) returned error: %v", tt.asking, predicted, err)
			}

			if verdict.PredictedPrice != predicted {
				t.Errorf("PredictedPrice = %v, want %v", verdict.PredictedPrice, predicted)
			}
			if verdict.Residual != tt.wantResidual {
				t.Errorf("Residual = %v, want %v", verdict.Residual, tt.wantResidual)
			}
			if math.Abs(verdict.ZScore-tt.wantZ) > 1e-9 {
				t.Errorf("ZScore = %v, want %v", verdict.ZScore, tt.wantZ)
			}
			if verdict.IsAnomaly != tt.wantAnomaly {
				t.Errorf("IsAnomaly = %v, want %v", verdict.IsAnomaly, tt.wantAnomaly)
			}
			if verdict.Classification != tt.wantClass {
				t.Errorf("Classification = %q, want %q", verdict.Classification, tt.wantClass)
			}
		})
	}
}

func TestScorer_ZeroPrediction(t *testing.T) {
	scorer := NewScorer(0, 0) // zero params fall back to defaults

	_, err := scorer.Score(5_000_000, 0)
	if !errors.Is(err, ErrZeroPrediction) {
		t.Errorf("Score with zero prediction: error = %v, want ErrZeroPrediction", err)
	}
}

func TestScorer_RejectsInvalidInput(t *testing.T) {
	scorer := NewScorer(DefaultRelativeSigma, DefaultZThreshold)

	tests := []struct {
		name      string
		asking    float64
		predicted float64
	}{
		{"NaN asking", math.NaN(), 10_000_000},
		{"infinite asking", math.Inf(1), 10_000_000},
		{"negative asking", -1, 10_000_000},
		{"NaN prediction", 10_000_000, math.NaN()},
		{"negative prediction", 10_000_000, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scorer.Score(tt.asking, tt.predicted)
			if !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("Score(%v, %v) error = %v, want ErrInvalidPrice", tt.asking, tt.predicted, err)
			}
		})
	}
}

func TestScorer_ConclusionStrings(t *testing.T) {
	tests := []struct {
		class model.Classification
		want  string
	}{
		{model.ClassificationNormal, "price looks fair"},
		{model.ClassificationHighAnomaly, "priced unusually high"},
		{model.ClassificationLowAnomaly, "priced unusually low"},
	}

	for _, tt := range tests {
		v := model.AnomalyVerdict{Classification: tt.class}
		if got := v.Conclusion(); got != tt.want {
			t.Errorf("Conclusion(%q) = %q, want %q", tt.class, got, tt.want)
		}
	}
}
