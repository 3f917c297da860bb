package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"motoprice/internal/pricing"
)

// Feature types in a model artifact.
const (
	FeatureNumeric     = "numeric"
	FeatureCategorical = "categorical"
)

// ErrUnseenLevel marks a categorical value the model was not trained on and
// cannot encode.
var ErrUnseenLevel = errors.New("unseen categorical level")

// Feature is one trained input column of the regression.
type Feature struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// Numeric features: standardized as (value - Mean) / Scale before the
	// coefficient is applied.
	Coef  float64 `json:"coef,omitempty"`
	Mean  float64 `json:"mean,omitempty"`
	Scale float64 `json:"scale,omitempty"`
	// Categorical features: per-level effect coefficients.
	Levels map[string]float64 `json:"levels,omitempty"`
}

// Artifact is the exported form of a trained linear regression on the
// (optionally log1p-transformed) price target. It is produced by the training
// pipeline, which is outside this service.
type Artifact struct {
	TargetTransform string    `json:"target_transform"`
	Intercept       float64   `json:"intercept"`
	Features        []Feature `json:"features"`
}

// LinearModel scores feature records against a loaded artifact. It is
// read-only after construction and shared by all requests.
type LinearModel struct {
	artifact Artifact
}

// NewLinearModel validates an artifact and wraps it as a model.
func NewLinearModel(a Artifact) (*LinearModel, error) {
	if len(a.Features) == 0 {
		return nil, errors.New("model artifact has no features")
	}
	if a.TargetTransform != "" && a.TargetTransform != "log1p" {
		return nil, fmt.Errorf("unsupported target transform %q", a.TargetTransform)
	}
	for _, f := range a.Features {
		switch f.Type {
		case FeatureNumeric:
		case FeatureCategorical:
			if len(f.Levels) == 0 {
				return nil, fmt.Errorf("categorical feature %q has no levels", f.Name)
			}
		default:
			return nil, fmt.Errorf("feature %q has unknown type %q", f.Name, f.Type)
		}
	}
	return &LinearModel{artifact: a}, nil
}

// Load reads a model artifact from a JSON file.
func Load(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	m, err := NewLinearModel(a)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return m, nil
}

// FeatureNames returns the training column order.
func (m *LinearModel) FeatureNames() []string {
	names := make([]string, len(m.artifact.Features))
	for i, f := range m.artifact.Features {
		names[i] = f.Name
	}
	return names
}

// InverseLog reports whether predictions are log1p-transformed prices that
// the caller must invert with expm1.
func (m *LinearModel) InverseLog() bool {
	return m.artifact.TargetTransform == "log1p"
}

// Predict scores one feature record. The record must carry exactly the
// trained columns; an unseen categorical level or a type mismatch is a
// rejection, not a zero contribution.
func (m *LinearModel) Predict(rec pricing.FeatureRecord) (float64, error) {
	terms, err := m.encode(rec)
	if err != nil {
		return 0, err
	}
	score := m.artifact.Intercept
	for _, t := range terms {
		score += t
	}
	return score, nil
}

// Encode maps a record into the model's feature space: one term per trained
// column. The vector doubles as the listing embedding used for
// similar-listing search.
func (m *LinearModel) Encode(rec pricing.FeatureRecord) ([]float32, error) {
	terms, err := m.encode(rec)
	if err != nil {
		return nil, err
	}
	vec := make([]float32, len(terms))
	for i, t := range terms {
		vec[i] = float32(t)
	}
	return vec, nil
}

func (m *LinearModel) encode(rec pricing.FeatureRecord) ([]float64, error) {
	if rec.Len() != len(m.artifact.Features) {
		return nil, fmt.Errorf("feature count mismatch: record has %d fields, model expects %d",
			rec.Len(), len(m.artifact.Features))
	}

	terms := make([]float64, len(m.artifact.Features))
	for i, f := range m.artifact.Features {
		switch f.Type {
		case FeatureNumeric:
			n, ok := rec.Number(f.Name)
			if !ok {
				return nil, fmt.Errorf("field %q: expected a numeric value, got %v", f.Name, rec.Value(f.Name))
			}
			scale := f.Scale
			if scale == 0 {
				scale = 1
			}
			terms[i] = f.Coef * (n - f.Mean) / scale
		case FeatureCategorical:
			s, ok := rec.Category(f.Name)
			if !ok {
				return nil, fmt.Errorf("field %q: expected a categorical value, got %v", f.Name, rec.Value(f.Name))
			}
			coef, known := f.Levels[s]
			if !known {
				return nil, fmt.Errorf("field %q: %w %q", f.Name, ErrUnseenLevel, s)
			}
			terms[i] = coef
		}
	}
	return terms, nil
}

var _ pricing.RegressionModel = (*LinearModel)(nil)
