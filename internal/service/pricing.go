package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"motoprice/internal/metrics"
	"motoprice/internal/model"
	"motoprice/internal/pricing"
)

// PricingService answers ad-hoc price and anomaly questions. Predictions are
// pure computation; only explicit saves touch the store.
type PricingService struct {
	predictor *pricing.Predictor
	scorer    *pricing.Scorer
	checks    CheckStore
	audit     AuditWriter
	metrics   *metrics.Registry
}

func NewPricingService(
	predictor *pricing.Predictor,
	scorer *pricing.Scorer,
	checks CheckStore,
	audit AuditWriter,
	m *metrics.Registry,
) *PricingService {
	return &PricingService{
		predictor: predictor,
		scorer:    scorer,
		checks:    checks,
		audit:     audit,
		metrics:   m,
	}
}

// PredictAndSuggest predicts an absolute price and derives the full band of
// suggestions from it.
func (s *PricingService) PredictAndSuggest(ctx context.Context, attrs *model.VehicleAttributes) (*model.PredictResponse, error) {
	start := time.Now()

	price, err := s.predict(attrs)
	if err != nil {
		return nil, err
	}

	suggestion, err := pricing.Suggest(price)
	if err != nil {
		return nil, fmt.Errorf("failed to build price suggestion: %w", err)
	}

	return &model.PredictResponse{
		PredictedPrice: price,
		Suggestion:     suggestion,
		TookMs:         time.Since(start).Milliseconds(),
	}, nil
}

// CheckAnomaly scores an asking price against the model's prediction for the
// same vehicle. Nothing is persisted.
func (s *PricingService) CheckAnomaly(ctx context.Context, req *model.AnomalyCheckRequest) (*model.AnomalyCheckResponse, error) {
	start := time.Now()

	verdict, err := s.score(&req.VehicleAttributes, req.AskingPrice)
	if err != nil {
		return nil, err
	}

	return &model.AnomalyCheckResponse{
		Verdict:    verdict,
		Conclusion: verdict.Conclusion(),
		TookMs:     time.Since(start).Milliseconds(),
	}, nil
}

// SaveCheck runs an anomaly check and appends it to the persistent history,
// mirrored to the CSV audit trail.
func (s *PricingService) SaveCheck(ctx context.Context, req *model.AnomalyCheckRequest) (*model.AnomalyCheck, error) {
	verdict, err := s.score(&req.VehicleAttributes, req.AskingPrice)
	if err != nil {
		return nil, err
	}

	check := &model.AnomalyCheck{
		Vehicle:        req.Summary(),
		AskingPrice:    req.AskingPrice,
		PredictedPrice: verdict.PredictedPrice,
		Conclusion:     verdict.Conclusion(),
	}
	if err := s.checks.AppendAnomalyCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to save anomaly check: %w", err)
	}
	if s.audit != nil {
		if err := s.audit.AppendAnomalyCheck(check); err != nil {
			log.Printf("⚠️ audit write failed for anomaly check %d: %v", check.ID, err)
		}
	}
	return check, nil
}

// History returns the most recent saved anomaly checks, newest first.
func (s *PricingService) History(ctx context.Context, limit int) ([]model.AnomalyCheck, error) {
	return s.checks.RecentAnomalyChecks(ctx, limit)
}

func (s *PricingService) predict(attrs *model.VehicleAttributes) (float64, error) {
	timer := time.Now()
	price, err := s.predictor.PredictPrice(attrs)
	s.metrics.PredictLatencySec.Observe(time.Since(timer).Seconds())
	if err != nil {
		s.metrics.PredictionFailures.Inc()
		return 0, err
	}
	s.metrics.PredictionsTotal.Inc()
	return price, nil
}

func (s *PricingService) score(attrs *model.VehicleAttributes, asking float64) (model.AnomalyVerdict, error) {
	price, err := s.predict(attrs)
	if err != nil {
		return model.AnomalyVerdict{}, err
	}

	verdict, err := s.scorer.Score(asking, price)
	if err != nil {
		return model.AnomalyVerdict{}, err
	}
	s.metrics.AnomalyVerdicts.WithLabelValues(string(verdict.Classification)).Inc()
	return verdict, nil
}
