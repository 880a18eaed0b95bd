package models

// Gender is the claimant gender extracted from a query.
type Gender string

const (
	GenderMale    Gender = "Male"
	GenderFemale  Gender = "Female"
	GenderUnknown Gender = ""
)

// DurationUnit is the unit of a policy duration.
type DurationUnit string

const (
	UnitMonth DurationUnit = "month"
	UnitYear  DurationUnit = "year"
)

// PolicyDuration is how long a policy has been in force, as stated in the
// query. The value is kept in its original unit; conversion to days is the
// decision engine's responsibility.
type PolicyDuration struct {
	Value int          `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

// Entities holds the structured fields extracted from a free-text claim
// query. Every field is independently optional; a nil pointer means the
// field was not present in the query, which is a valid state downstream
// logic must handle.
type Entities struct {
	Age            *int            `json:"age"`
	Gender         Gender          `json:"gender"`
	Procedure      *string         `json:"procedure"`
	Location       *string         `json:"location"`
	PolicyDuration *PolicyDuration `json:"policy_duration"`
	Amount         *int            `json:"amount"`
}
