package model

// PredictRequest carries the vehicle attributes for a price prediction.
type PredictRequest struct {
	VehicleAttributes
}

// PredictResponse is the prediction plus the derived price bands.
type PredictResponse struct {
	PredictedPrice float64         `json:"predicted_price"`
	Suggestion     PriceSuggestion `json:"suggestion"`
	TookMs         int64           `json:"took_ms"`
}

// AnomalyCheckRequest carries the attributes plus the seller's asking price.
type AnomalyCheckRequest struct {
	VehicleAttributes
	AskingPrice float64 `json:"asking_price" binding:"required,gt=0"`
}

// AnomalyCheckResponse wraps the verdict with the conclusion string shown to
// the user.
type AnomalyCheckResponse struct {
	Verdict    AnomalyVerdict `json:"verdict"`
	Conclusion string         `json:"conclusion"`
	TookMs     int64          `json:"took_ms"`
}

// SubmitListingRequest creates a new working-set listing.
type SubmitListingRequest struct {
	VehicleAttributes
	AskingPrice float64 `json:"asking_price" binding:"required,gt=0"`
	Description string  `json:"description,omitempty"`
}

// ModerationAction is a reviewer decision over a listing.
type ModerationAction string

const (
	ActionApprove    ModerationAction = "approve"
	ActionRequestFix ModerationAction = "request-fix"
	ActionReject     ModerationAction = "reject"
)

// Valid reports whether the action is one of the three reviewer decisions.
func (a ModerationAction) Valid() bool {
	return a == ActionApprove || a == ActionRequestFix || a == ActionReject
}

// ModerationRequest applies one reviewer action to a listing. Version must be
// the version the reviewer read; a stale value is rejected with a conflict.
type ModerationRequest struct {
	Action  ModerationAction `json:"action" binding:"required"`
	Version int64            `json:"version" binding:"required,gt=0"`
}

// ModerationResponse returns the record after the transition. For a rejected
// listing this is the final snapshot; the row is gone from the working set.
type ModerationResponse struct {
	Listing Listing `json:"listing"`
	Message string  `json:"message,omitempty"`
}

// ListingFilters narrows a working-set search. Pointer fields are optional.
type ListingFilters struct {
	Brands         []string `json:"brands,omitempty" form:"brand"`
	Status         *int     `json:"status,omitempty" form:"status"`
	AnomalyOnly    *bool    `json:"anomaly_only,omitempty" form:"anomaly_only"`
	Classification *string  `json:"classification,omitempty" form:"classification"`
	PriceMin       *float64 `json:"price_min,omitempty" form:"price_min"`
	PriceMax       *float64 `json:"price_max,omitempty" form:"price_max"`
	YearMin        *int     `json:"year_min,omitempty" form:"year_min"`
	YearMax        *int     `json:"year_max,omitempty" form:"year_max"`
	OdometerMax    *int64   `json:"odometer_max,omitempty" form:"odometer_max"`
}

// ListingSearchResponse is a paginated working-set query result.
type ListingSearchResponse struct {
	Results []ListingSearchResult `json:"results"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// SimilarListingsResponse holds the nearest working-set neighbours of one
// listing in the model's feature space.
type SimilarListingsResponse struct {
	ListingID int64     `json:"listing_id"`
	Results   []Listing `json:"results"`
}

// SaveAnomalyCheckResponse confirms an explicit history save.
type SaveAnomalyCheckResponse struct {
	Saved bool         `json:"saved"`
	Check AnomalyCheck `json:"check"`
}
