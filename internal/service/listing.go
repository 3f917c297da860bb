package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"motoprice/internal/model"
	"motoprice/internal/pricing"
)

// ErrNoEncoder means the active model cannot produce feature vectors, so
// similarity search is off. This happens when predictions come from a remote
// serving endpoint.
var ErrNoEncoder = errors.New("similarity search requires the local model artifact")

// ListingService serves read-only views of the working set.
type ListingService struct {
	store     ListingStore
	predictor *pricing.Predictor
	encoder   FeatureEncoder
}

func NewListingService(store ListingStore, predictor *pricing.Predictor, encoder FeatureEncoder) *ListingService {
	return &ListingService{store: store, predictor: predictor, encoder: encoder}
}

// Search queries the working set. Results come back anomalies first, then by
// how far the asking price sits from the prediction.
func (s *ListingService) Search(ctx context.Context, filters *model.ListingFilters, limit, offset int) (*model.ListingSearchResponse, error) {
	results, total, err := s.store.SearchListings(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}
	return &model.ListingSearchResponse{
		Results: results,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// Get fetches one listing by id.
func (s *ListingService) Get(ctx context.Context, id int64) (*model.Listing, error) {
	return s.store.GetListing(ctx, id)
}

// Similar returns the working-set listings closest to the given one in the
// model's feature space. The reference vector is re-encoded from the stored
// attributes, so rows inserted before similarity existed still work.
func (s *ListingService) Similar(ctx context.Context, id int64, limit int) (*model.SimilarListingsResponse, error) {
	if s.encoder == nil {
		return nil, ErrNoEncoder
	}

	listing, err := s.store.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	vec, err := s.encoder.Encode(s.predictor.Normalize(&listing.VehicleAttributes))
	if err != nil {
		return nil, fmt.Errorf("failed to encode listing %d: %w", id, err)
	}

	results, err := s.store.SimilarListings(ctx, id, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	return &model.SimilarListingsResponse{ListingID: id, Results: results}, nil
}

// Submissions returns the most recent rows of the append-only submission log.
func (s *ListingService) Submissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error) {
	return s.store.ListSubmissions(ctx, limit)
}

// MarketStats aggregates asking prices for one brand and model line,
// optionally narrowed to a registration year.
func (s *ListingService) MarketStats(ctx context.Context, brand, modelLine string, year *int) (*model.MarketStats, error) {
	return s.store.MarketStats(ctx, brand, modelLine, year)
}
