package service

import (
	"context"
	"testing"

	"motoprice/internal/metrics"
	"motoprice/internal/model"
	"motoprice/internal/pricing"
)

type fakeCheckStore struct {
	saved []model.AnomalyCheck
}

func (f *fakeCheckStore) AppendAnomalyCheck(ctx context.Context, c *model.AnomalyCheck) error {
	c.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, *c)
	return nil
}

func (f *fakeCheckStore) RecentAnomalyChecks(ctx context.Context, limit int) ([]model.AnomalyCheck, error) {
	out := make([]model.AnomalyCheck, 0, limit)
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.saved[i])
	}
	return out, nil
}

type fakeAudit struct {
	submissions int
	checks      int
}

func (f *fakeAudit) AppendSubmission(l *model.Listing) error { f.submissions++; return nil }

func (f *fakeAudit) AppendAnomalyCheck(c *model.AnomalyCheck) error { f.checks++; return nil }

func newTestPricing(predicted float64) (*PricingService, *fakeCheckStore, *fakeAudit) {
	checks := &fakeCheckStore{}
	audit := &fakeAudit{}
	predictor := pricing.NewPredictor(fixedModel{score: predicted}, nil, false)
	scorer := pricing.NewScorer(0, 0)
	svc := NewPricingService(predictor, scorer, checks, audit, metrics.NewRegistry())
	return svc, checks, audit
}

func TestPredictAndSuggest(t *testing.T) {
	svc, _, _ := newTestPricing(20_000_000)

	resp, err := svc.PredictAndSuggest(context.Background(), &model.VehicleAttributes{Brand: "Honda", ModelLine: "SH"})
	if err != nil {
		t.Fatalf("PredictAndSuggest: %v", err)
	}
	if resp.PredictedPrice != 20_000_000 {
		t.Errorf("predicted = %v, want 20000000", resp.PredictedPrice)
	}
	if resp.Suggestion.FastSell != 19_000_000 {
		t.Errorf("fast_sell = %v, want 19000000", resp.Suggestion.FastSell)
	}
	if resp.Suggestion.MaxProfit != 21_000_000 {
		t.Errorf("max_profit = %v, want 21000000", resp.Suggestion.MaxProfit)
	}
}

func TestCheckAnomalyConclusion(t *testing.T) {
	svc, _, _ := newTestPricing(10_000_000)

	resp, err := svc.CheckAnomaly(context.Background(), &model.AnomalyCheckRequest{
		VehicleAttributes: model.VehicleAttributes{Brand: "Yamaha", ModelLine: "Exciter"},
		AskingPrice:       14_000_000,
	})
	if err != nil {
		t.Fatalf("CheckAnomaly: %v", err)
	}
	if !resp.Verdict.IsAnomaly {
		t.Error("expected an anomaly verdict")
	}
	if resp.Verdict.Classification != model.ClassificationHighAnomaly {
		t.Errorf("classification = %v, want high_anomaly", resp.Verdict.Classification)
	}
	if resp.Conclusion == "" {
		t.Error("empty conclusion")
	}
}

func TestSaveCheckPersistsAndMirrors(t *testing.T) {
	svc, checks, audit := newTestPricing(10_000_000)

	req := &model.AnomalyCheckRequest{
		VehicleAttributes: model.VehicleAttributes{Brand: "Honda", ModelLine: "Vision", RegistrationYear: 2021},
		AskingPrice:       10_500_000,
	}
	check, err := svc.SaveCheck(context.Background(), req)
	if err != nil {
		t.Fatalf("SaveCheck: %v", err)
	}
	if check.ID == 0 {
		t.Error("saved check has no id")
	}
	if check.Vehicle != "Honda Vision (2021)" {
		t.Errorf("vehicle = %q", check.Vehicle)
	}
	if len(checks.saved) != 1 {
		t.Fatalf("store has %d checks, want 1", len(checks.saved))
	}
	if audit.checks != 1 {
		t.Errorf("audit mirror has %d checks, want 1", audit.checks)
	}

	history, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d entries, want 1", len(history))
	}
}
