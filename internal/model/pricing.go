package model

// PriceSuggestion holds the named price points derived from one predicted
// price via fixed multiplicative ratios. All values are whole currency units.
//
// FairMin/FairMax form the deliberately wide outer band; for very low
// predictions they may undercut zero and are reported as-is, never clamped.
type PriceSuggestion struct {
	Recommended float64 `json:"recommended"`
	FastSell    float64 `json:"fast_sell"`
	MaxProfit   float64 `json:"max_profit"`
	FairLow     float64 `json:"fair_low"`
	FairHigh    float64 `json:"fair_high"`
	FairMin     float64 `json:"fair_min"`
	FairMax     float64 `json:"fair_max"`
}

// Classification is the three-way outcome of an anomaly check.
type Classification string

const (
	ClassificationNormal      Classification = "normal"
	ClassificationHighAnomaly Classification = "high_anomaly"
	ClassificationLowAnomaly  Classification = "low_anomaly"
)

// AnomalyVerdict compares a seller's asking price against the model's
// prediction. It is computed per request and only persisted when the user
// explicitly saves it as an AnomalyCheck.
type AnomalyVerdict struct {
	PredictedPrice float64        `json:"predicted_price"`
	Residual       float64        `json:"residual"`
	ZScore         float64        `json:"z_score"`
	IsAnomaly      bool           `json:"is_anomaly"`
	Classification Classification `json:"classification"`
}

// Conclusion is the human-readable verdict string recorded in the
// anomaly-check history log.
func (v *AnomalyVerdict) Conclusion() string {
	switch v.Classification {
	case ClassificationHighAnomaly:
		return "priced unusually high"
	case ClassificationLowAnomaly:
		return "priced unusually low"
	default:
		return "price looks fair"
	}
}
