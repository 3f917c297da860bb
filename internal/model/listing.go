package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Listing is a listing record in the moderation working set. The status field
// is owned exclusively by the moderation service; Version is the optimistic
// concurrency token bumped on every status transition.
type Listing struct {
	ID int64 `json:"id" db:"id"`
	VehicleAttributes
	AskingPrice    float64         `json:"asking_price" db:"asking_price"`
	PredictedPrice float64         `json:"predicted_price" db:"predicted_price"`
	Residual       float64         `json:"residual" db:"residual"`
	AnomalyFlag    bool            `json:"anomaly_flag" db:"anomaly_flag"`
	Status         Status          `json:"status" db:"status"`
	Version        int64           `json:"version" db:"version"`
	Description    *string         `json:"description,omitempty" db:"description"`
	FeatureVec     pgvector.Vector `json:"-" db:"feature_vec"`
	SubmittedAt    time.Time       `json:"submitted_at" db:"submitted_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// ListingSearchResult is a working-set row with its relative price deviation,
// as shown on the moderation queue.
type ListingSearchResult struct {
	Listing
	PriceDeviationPct float64 `json:"price_deviation_pct"`
}

// AnomalyCheck is one saved row of the anomaly-check history log. The log is
// append-only; CheckedAt is a submission-order marker set at insert time.
type AnomalyCheck struct {
	ID             int64     `json:"id" db:"id"`
	CheckedAt      time.Time `json:"checked_at" db:"checked_at"`
	Vehicle        string    `json:"vehicle" db:"vehicle"`
	AskingPrice    float64   `json:"asking_price" db:"asking_price"`
	PredictedPrice float64   `json:"predicted_price" db:"predicted_price"`
	Conclusion     string    `json:"conclusion" db:"conclusion"`
}

// SubmissionRecord is one row of the append-only submission log: the listing
// as it looked when it entered the working set. Rejection removes the
// working-set row, never the log row.
type SubmissionRecord struct {
	ID        int64 `json:"id" db:"id"`
	ListingID int64 `json:"listing_id" db:"listing_id"`
	VehicleAttributes
	AskingPrice    float64   `json:"asking_price" db:"asking_price"`
	PredictedPrice float64   `json:"predicted_price" db:"predicted_price"`
	AnomalyFlag    bool      `json:"anomaly_flag" db:"anomaly_flag"`
	Status         Status    `json:"status" db:"status"`
	SubmittedAt    time.Time `json:"submitted_at" db:"submitted_at"`
}

// MarketStats aggregates the read-only market dataset for one brand/model
// segment.
type MarketStats struct {
	Brand        string   `json:"brand" db:"brand"`
	ModelLine    string   `json:"model_line" db:"model_line"`
	Year         *int     `json:"year,omitempty" db:"year"`
	AveragePrice *float64 `json:"average_price" db:"average_price"`
	MinPrice     *float64 `json:"min_price" db:"min_price"`
	MaxPrice     *float64 `json:"max_price" db:"max_price"`
	Count        int      `json:"count" db:"count"`
}
