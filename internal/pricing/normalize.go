package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"motoprice/internal/model"
)

// UnknownCategory is the placeholder substituted for missing or null
// categorical values.
const UnknownCategory = "unknown"

// numericFields are the feature columns carrying numbers; everything else in
// a feature record is categorical.
var numericFields = map[string]bool{
	model.FieldOdometerKm:       true,
	model.FieldRegistrationYear: true,
}

// FeatureRecord is a single-row, model-ready record: exactly the expected
// fields in training order, each value either a string level or a finite
// float64. Records are built by Normalize and never mutated afterwards.
type FeatureRecord struct {
	fields []string
	values map[string]any
}

// Fields returns the column names in model order.
func (r FeatureRecord) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of columns.
func (r FeatureRecord) Len() int { return len(r.fields) }

// Value returns the coerced value for a field, or nil when the field is not
// part of the record.
func (r FeatureRecord) Value(field string) any { return r.values[field] }

// Number returns the numeric value of a field and whether it is numeric.
func (r FeatureRecord) Number(field string) (float64, bool) {
	n, ok := r.values[field].(float64)
	return n, ok
}

// Category returns the string level of a field and whether it is categorical.
func (r FeatureRecord) Category(field string) (string, bool) {
	s, ok := r.values[field].(string)
	return s, ok
}

// Raw returns a copy of the record as a plain map, in no particular order.
func (r FeatureRecord) Raw() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r FeatureRecord) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", f, r.values[f])
	}
	b.WriteByte('}')
	return b.String()
}

// Normalize coerces a raw attribute map into a model-ready feature record.
//
// Numeric fields are converted to float64; unparseable or absent values fall
// back to the 0 placeholder rather than an error, because both user input and
// historical rows contain partial records. A zero registration year is a lossy
// default carried over from the training pipeline. Categorical fields are
// coerced to strings with missing values becoming "unknown".
//
// Extra keys in raw are dropped; expected fields absent from raw are
// synthesized. The function is pure, deterministic and idempotent.
func Normalize(raw map[string]any, fields []string) FeatureRecord {
	rec := FeatureRecord{
		fields: make([]string, len(fields)),
		values: make(map[string]any, len(fields)),
	}
	copy(rec.fields, fields)

	for _, f := range fields {
		v, present := raw[f]
		if numericFields[f] {
			n, ok := toNumber(v)
			if !present || !ok {
				n = 0
			}
			rec.values[f] = n
			continue
		}
		s, ok := toCategory(v)
		if !present || !ok {
			s = UnknownCategory
		}
		rec.values[f] = s
	}
	return rec
}

// toNumber converts loosely-typed numeric input to a finite float64.
func toNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint64:
		n = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// toCategory coerces a value to a non-empty string level.
func toCategory(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", false
		}
		return s, true
	default:
		return fmt.Sprintf("%v", x), true
	}
}
