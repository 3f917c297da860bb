package pricing

import (
	"errors"
	"fmt"
	"math"

	"motoprice/internal/model"
)

// Default anomaly scoring constants. The relative sigma is an assumed
// dispersion, not an empirically fitted one: the scorer is a coarse first-pass
// filter for human review, not a calibrated statistical model, and existing
// classifications depend on exactly these values.
const (
	DefaultRelativeSigma = 0.15
	DefaultZThreshold    = 2.5
)

// ErrZeroPrediction marks an anomaly check against a zero predicted price,
// for which the deviation score is undefined. Callers must treat a zero
// prediction as a fatal model problem upstream rather than divide by it.
var ErrZeroPrediction = errors.New("anomaly score undefined for zero predicted price")

// Scorer classifies an asking price against a predicted price. It holds no
// state and is safe to call concurrently for independent inputs.
type Scorer struct {
	relativeSigma float64
	zThreshold    float64
}

// NewScorer creates a scorer; non-positive parameters fall back to the
// defaults.
func NewScorer(relativeSigma, zThreshold float64) *Scorer {
	if relativeSigma <= 0 {
		relativeSigma = DefaultRelativeSigma
	}
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	return &Scorer{relativeSigma: relativeSigma, zThreshold: zThreshold}
}

// Score compares an asking price against a predicted price.
//
// The deviation statistic divides the residual by sigma = relativeSigma *
// predicted. An absolute score above the threshold flags the listing:
// above-prediction asking prices classify as high-anomaly, below-prediction
// ones as low-anomaly (the higher-risk case for a buyer: fraud or hidden
// defects).
func (s *Scorer) Score(asking, predicted float64) (model.AnomalyVerdict, error) {
	if math.IsNaN(asking) || math.IsInf(asking, 0) || asking < 0 {
		return model.AnomalyVerdict{}, fmt.Errorf("asking price: %w (got %v)", ErrInvalidPrice, asking)
	}
	if math.IsNaN(predicted) || math.IsInf(predicted, 0) || predicted < 0 {
		return model.AnomalyVerdict{}, fmt.Errorf("predicted price: %w (got %v)", ErrInvalidPrice, predicted)
	}
	if predicted == 0 {
		return model.AnomalyVerdict{}, ErrZeroPrediction
	}

	residual := asking - predicted
	sigma := s.relativeSigma * predicted
	z := residual / sigma

	verdict := model.AnomalyVerdict{
		PredictedPrice: predicted,
		Residual:       residual,
		ZScore:         z,
		IsAnomaly:      math.Abs(z) > s.zThreshold,
		Classification: model.ClassificationNormal,
	}
	if verdict.IsAnomaly {
		if residual > 0 {
			verdict.Classification = model.ClassificationHighAnomaly
		} else {
			verdict.Classification = model.ClassificationLowAnomaly
		}
	}
	return verdict, nil
}
