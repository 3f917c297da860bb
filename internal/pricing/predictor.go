package pricing

import (
	"errors"
	"fmt"
	"math"

	"motoprice/internal/model"
)

// RegressionModel is the opaque trained model: feature record in, single raw
// score out. When the model was trained against a log1p-transformed target the
// raw score is a log-price and the predictor inverts it.
type RegressionModel interface {
	Predict(rec FeatureRecord) (float64, error)
}

// PredictionError reports a model rejection with the offending normalized
// record attached for diagnosis. Predictions are never retried: a bad feature
// vector will not succeed on a second attempt.
type PredictionError struct {
	Record FeatureRecord
	Err    error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v (input: %s)", e.Err, e.Record)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Predictor turns vehicle attributes into an absolute price using a trained
// regression model. It is stateless per call and safe for concurrent use.
type Predictor struct {
	rm         RegressionModel
	features   []string
	inverseLog bool
}

// NewPredictor creates a predictor. An empty feature order falls back to the
// order the bundled model was trained on. inverseLog must match the target
// transform used at training time: if it does not exactly invert that
// transform, every downstream price band is silently wrong.
func NewPredictor(rm RegressionModel, features []string, inverseLog bool) *Predictor {
	if len(features) == 0 {
		features = model.DefaultFeatureOrder()
	}
	return &Predictor{rm: rm, features: features, inverseLog: inverseLog}
}

// Normalize builds the model-ready record for the given attributes using the
// predictor's feature order.
func (p *Predictor) Normalize(attrs *model.VehicleAttributes) FeatureRecord {
	return Normalize(attrs.RawMap(), p.features)
}

// PredictPrice predicts an absolute price for the given attributes.
//
// On success the result is a finite float >= 0; a slightly negative
// post-inverse value is clipped to 0 and should be read as a model-quality
// signal, not a valid price.
func (p *Predictor) PredictPrice(attrs *model.VehicleAttributes) (float64, error) {
	rec := p.Normalize(attrs)

	score, err := p.rm.Predict(rec)
	if err != nil {
		return 0, &PredictionError{Record: rec, Err: err}
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, &PredictionError{Record: rec, Err: errors.New("model returned a non-finite score")}
	}

	price := score
	if p.inverseLog {
		price = math.Expm1(score)
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}
