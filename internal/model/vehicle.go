package model

import (
	"fmt"
	"time"
)

// Feature field names shared by the API layer, the input normalizer and the
// regression model artifact.
const (
	FieldBrand             = "brand"
	FieldModelLine         = "model_line"
	FieldRegistrationYear  = "registration_year"
	FieldOdometerKm        = "odometer_km"
	FieldCondition         = "condition"
	FieldBodyType          = "body_type"
	FieldDisplacementClass = "displacement_class"
	FieldOrigin            = "origin"
)

// DefaultFeatureOrder is the column order the regression model was trained on.
func DefaultFeatureOrder() []string {
	return []string{
		FieldBrand,
		FieldModelLine,
		FieldRegistrationYear,
		FieldOdometerKm,
		FieldCondition,
		FieldBodyType,
		FieldDisplacementClass,
		FieldOrigin,
	}
}

// MinRegistrationYear is the oldest registration year the API accepts.
// Listings older than this are not traded on the platform.
const MinRegistrationYear = 1990

// VehicleAttributes describes one vehicle/listing candidate.
type VehicleAttributes struct {
	Brand             string `json:"brand" binding:"required" db:"brand"`
	ModelLine         string `json:"model_line" binding:"required" db:"model_line"`
	BodyType          string `json:"body_type" db:"body_type"`
	DisplacementClass string `json:"displacement_class" db:"displacement_class"`
	Condition         string `json:"condition" db:"condition"`
	Origin            string `json:"origin" db:"origin"`
	OdometerKm        int64  `json:"odometer_km" db:"odometer_km"`
	RegistrationYear  int    `json:"registration_year" db:"registration_year"`
}

// Validate rejects numeric values that cannot describe a real vehicle.
// A zero registration year is accepted as the documented "missing" placeholder.
func (v *VehicleAttributes) Validate() error {
	if v.OdometerKm < 0 {
		return fmt.Errorf("odometer_km must be non-negative, got %d", v.OdometerKm)
	}
	if v.RegistrationYear != 0 {
		maxYear := time.Now().Year() + 1
		if v.RegistrationYear < MinRegistrationYear || v.RegistrationYear > maxYear {
			return fmt.Errorf("registration_year %d outside plausible range %d-%d",
				v.RegistrationYear, MinRegistrationYear, maxYear)
		}
	}
	return nil
}

// RawMap converts the attributes into the loosely-typed map the input
// normalizer consumes.
func (v *VehicleAttributes) RawMap() map[string]any {
	return map[string]any{
		FieldBrand:             v.Brand,
		FieldModelLine:         v.ModelLine,
		FieldBodyType:          v.BodyType,
		FieldDisplacementClass: v.DisplacementClass,
		FieldCondition:         v.Condition,
		FieldOrigin:            v.Origin,
		FieldOdometerKm:        v.OdometerKm,
		FieldRegistrationYear:  v.RegistrationYear,
	}
}

// Summary returns a short "brand model_line (year)" label used in log rows
// and the anomaly-check history.
func (v *VehicleAttributes) Summary() string {
	if v.RegistrationYear > 0 {
		return fmt.Sprintf("%s %s (%d)", v.Brand, v.ModelLine, v.RegistrationYear)
	}
	return fmt.Sprintf("%s %s", v.Brand, v.ModelLine)
}

// Status is the moderation state of a listing. The numeric values are part of
// the persisted record format and must not be reordered.
type Status int

const (
	StatusApproved       Status = 0
	StatusFlaggedAnomaly Status = 1
	StatusPending        Status = 2
	StatusRejected       Status = 3
	StatusNeedsRevision  Status = 4
)

// Terminal reports whether the status accepts no further moderation actions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s >= StatusApproved && s <= StatusNeedsRevision
}

func (s Status) String() string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusFlaggedAnomaly:
		return "flagged-anomaly"
	case StatusPending:
		return "pending"
	case StatusRejected:
		return "rejected"
	case StatusNeedsRevision:
		return "needs-revision"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
