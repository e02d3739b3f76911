package detour

import "math"

// Issue identifies why a field value was rejected. The empty Issue means
// the value is valid.
type Issue string

const (
	IssueNone        Issue = ""
	IssueInvalid     Issue = "invalid-value"
	IssueNotPositive Issue = "must-be-positive"
	IssueNotLower    Issue = "must-be-lower-than-reference"
)

// Errors maps each field to its current Issue. Missing entries are valid.
type Errors map[Field]Issue

// Valid reports whether no field carries an issue.
func (e Errors) Valid() bool {
	for _, issue := range e {
		if issue != IssueNone {
			return false
		}
	}
	return true
}

// Validate checks value as the new content of field within record. Rules
// are applied in order and the first failing one wins: the value must be
// a number, it must be positive, and the off-route price must be lower
// than the on-route price of record.
func Validate(field Field, value float64, record FuelData) Issue {
	if math.IsNaN(value) {
		return IssueInvalid
	}
	if value <= 0 {
		return IssueNotPositive
	}
	if field == PriceOffRoad && value >= record.PriceOnRoad {
		return IssueNotLower
	}
	return IssueNone
}

// ValidateAll validates every field of d.
func ValidateAll(d FuelData) Errors {
	errs := make(Errors, len(Fields))
	for _, f := range Fields {
		errs[f] = Validate(f, d.Get(f), d)
	}
	return errs
}
