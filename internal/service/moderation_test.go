package service

import (
	"context"
	"errors"
	"testing"

	"motoprice/internal/metrics"
	"motoprice/internal/model"
	"motoprice/internal/pricing"
	"motoprice/internal/repository"
)

// fixedModel always scores the same price, so tests control the anomaly
// outcome purely through the asking price.
type fixedModel struct {
	score float64
}

func (m fixedModel) Predict(rec pricing.FeatureRecord) (float64, error) {
	return m.score, nil
}

type fakeStore struct {
	nextID   int64
	listings map[int64]*model.Listing
	log      []model.SubmissionRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{listings: map[int64]*model.Listing{}}
}

func (f *fakeStore) InsertListing(ctx context.Context, l *model.Listing) error {
	f.nextID++
	l.ID = f.nextID
	l.Version = 1
	cp := *l
	f.listings[l.ID] = &cp
	f.log = append(f.log, model.SubmissionRecord{
		ListingID:         l.ID,
		VehicleAttributes: l.VehicleAttributes,
		AskingPrice:       l.AskingPrice,
		PredictedPrice:    l.PredictedPrice,
		AnomalyFlag:       l.AnomalyFlag,
		Status:            l.Status,
	})
	return nil
}

func (f *fakeStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) UpdateListingStatus(ctx context.Context, id int64, status model.Status, anomalyFlag bool, version int64) (*model.Listing, error) {
	l, ok := f.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if l.Version != version {
		return nil, repository.ErrConflict
	}
	l.Status = status
	l.AnomalyFlag = anomalyFlag
	l.Version++
	cp := *l
	return &cp, nil
}

func (f *fakeStore) DeleteListing(ctx context.Context, id, version int64) error {
	l, ok := f.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if l.Version != version {
		return repository.ErrConflict
	}
	delete(f.listings, id)
	return nil
}

func newTestModeration(t *testing.T, predicted float64) (*ModerationService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	predictor := pricing.NewPredictor(fixedModel{score: predicted}, nil, false)
	scorer := pricing.NewScorer(0, 0)
	svc := NewModerationService(store, predictor, scorer, nil, nil, metrics.NewRegistry())
	return svc, store
}

func submitRequest(asking float64) *model.SubmitListingRequest {
	return &model.SubmitListingRequest{
		VehicleAttributes: model.VehicleAttributes{
			Brand:            "Honda",
			ModelLine:        "Wave Alpha",
			RegistrationYear: 2020,
			OdometerKm:       15000,
		},
		AskingPrice: asking,
	}
}

func TestSubmitNormalPrice(t *testing.T) {
	svc, store := newTestModeration(t, 10_000_000)

	listing, err := svc.Submit(context.Background(), submitRequest(10_000_000))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if listing.Status != model.StatusPending {
		t.Errorf("status = %v, want pending", listing.Status)
	}
	if listing.AnomalyFlag {
		t.Error("anomaly flag set for a fair price")
	}
	if listing.Version != 1 {
		t.Errorf("version = %d, want 1", listing.Version)
	}
	if _, err := store.GetListing(context.Background(), listing.ID); err != nil {
		t.Errorf("listing not stored: %v", err)
	}
}

func TestSubmitAnomalousPrice(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)

	// Residual 4,000,000 over a sigma of 1,500,000 is well past the
	// threshold.
	listing, err := svc.Submit(context.Background(), submitRequest(14_000_000))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if listing.Status != model.StatusFlaggedAnomaly {
		t.Errorf("status = %v, want flagged", listing.Status)
	}
	if !listing.AnomalyFlag {
		t.Error("anomaly flag not set")
	}
	if listing.Residual != 4_000_000 {
		t.Errorf("residual = %v, want 4000000", listing.Residual)
	}
}

func TestModerateApproveClearsFlag(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(14_000_000))

	updated, err := svc.Moderate(context.Background(), listing.ID, model.ActionApprove, listing.Version)
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if updated.Status != model.StatusApproved {
		t.Errorf("status = %v, want approved", updated.Status)
	}
	if updated.AnomalyFlag {
		t.Error("approval must clear the anomaly flag")
	}
	if updated.Version != listing.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, listing.Version+1)
	}
}

func TestModerateRequestFixKeepsFlag(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(14_000_000))

	updated, err := svc.Moderate(context.Background(), listing.ID, model.ActionRequestFix, listing.Version)
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if updated.Status != model.StatusNeedsRevision {
		t.Errorf("status = %v, want needs-revision", updated.Status)
	}
	if !updated.AnomalyFlag {
		t.Error("request-fix must keep the anomaly flag")
	}
}

func TestModerateRejectRemovesListing(t *testing.T) {
	svc, store := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(10_000_000))

	final, err := svc.Moderate(context.Background(), listing.ID, model.ActionReject, listing.Version)
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if final.Status != model.StatusRejected {
		t.Errorf("status = %v, want rejected", final.Status)
	}
	if final.Version != listing.Version {
		t.Errorf("version = %d, want the last persisted version %d", final.Version, listing.Version)
	}
	if _, err := store.GetListing(context.Background(), listing.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("listing still in working set: %v", err)
	}

	// The submission log keeps the original record untouched by the rejection.
	if len(store.log) != 1 {
		t.Fatalf("submission log has %d rows, want 1", len(store.log))
	}
	logged := store.log[0]
	if logged.ListingID != listing.ID {
		t.Errorf("logged listing_id = %d, want %d", logged.ListingID, listing.ID)
	}
	if logged.Brand != "Honda" || logged.ModelLine != "Wave Alpha" {
		t.Errorf("logged vehicle = %s %s, want Honda Wave Alpha", logged.Brand, logged.ModelLine)
	}
	if logged.AskingPrice != 10_000_000 {
		t.Errorf("logged asking price = %v, want 10000000", logged.AskingPrice)
	}
	if logged.Status != model.StatusPending {
		t.Errorf("logged status = %v, want the original pending status", logged.Status)
	}
}

func TestModerateStaleVersionConflicts(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(10_000_000))

	if _, err := svc.Moderate(context.Background(), listing.ID, model.ActionRequestFix, listing.Version); err != nil {
		t.Fatalf("first moderation: %v", err)
	}

	// A second reviewer acting on the version they read before the first
	// transition must be told to reload.
	_, err := svc.Moderate(context.Background(), listing.ID, model.ActionApprove, listing.Version)
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestModerateTerminalStateRefused(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(10_000_000))

	approved, err := svc.Moderate(context.Background(), listing.ID, model.ActionApprove, listing.Version)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = svc.Moderate(context.Background(), listing.ID, model.ActionRequestFix, approved.Version)
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("err = %v, want ErrTerminalState", err)
	}
}

func TestModerateInvalidAction(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)
	listing, _ := svc.Submit(context.Background(), submitRequest(10_000_000))

	_, err := svc.Moderate(context.Background(), listing.ID, model.ModerationAction("escalate"), listing.Version)
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestModerateMissingListing(t *testing.T) {
	svc, _ := newTestModeration(t, 10_000_000)

	_, err := svc.Moderate(context.Background(), 404, model.ActionApprove, 1)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
