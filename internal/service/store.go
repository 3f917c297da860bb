package service

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"motoprice/internal/model"
	"motoprice/internal/pricing"
)

// The store interfaces below are the narrow views each service needs from the
// repository. *repository.PostgresRepository satisfies all of them.

// ModerationStore mutates the working set of listings.
type ModerationStore interface {
	InsertListing(ctx context.Context, l *model.Listing) error
	GetListing(ctx context.Context, id int64) (*model.Listing, error)
	UpdateListingStatus(ctx context.Context, id int64, status model.Status, anomalyFlag bool, version int64) (*model.Listing, error)
	DeleteListing(ctx context.Context, id, version int64) error
}

// ListingStore reads the working set and its append-only submission log.
type ListingStore interface {
	GetListing(ctx context.Context, id int64) (*model.Listing, error)
	SearchListings(ctx context.Context, filters *model.ListingFilters, limit, offset int) ([]model.ListingSearchResult, int, error)
	SimilarListings(ctx context.Context, excludeID int64, vec pgvector.Vector, limit int) ([]model.Listing, error)
	ListSubmissions(ctx context.Context, limit int) ([]model.SubmissionRecord, error)
	MarketStats(ctx context.Context, brand, modelLine string, year *int) (*model.MarketStats, error)
}

// CheckStore persists ad-hoc anomaly checks the user chose to save.
type CheckStore interface {
	AppendAnomalyCheck(ctx context.Context, c *model.AnomalyCheck) error
	RecentAnomalyChecks(ctx context.Context, limit int) ([]model.AnomalyCheck, error)
}

// AuditWriter mirrors writes to the append-only CSV audit trail. Audit
// failures are logged but never fail the request.
type AuditWriter interface {
	AppendSubmission(l *model.Listing) error
	AppendAnomalyCheck(c *model.AnomalyCheck) error
}

// FeatureEncoder maps a normalized record into the model's feature space,
// used for nearest-neighbour similarity between listings.
type FeatureEncoder interface {
	Encode(rec pricing.FeatureRecord) ([]float32, error)
}
