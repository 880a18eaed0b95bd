package models

// ClauseCategory classifies a policy clause.
type ClauseCategory string

const (
	CategoryDefinitions ClauseCategory = "definitions"
	CategoryCoverage    ClauseCategory = "coverage"
	CategoryExclusions  ClauseCategory = "exclusions"
	CategoryEligibility ClauseCategory = "eligibility"
	CategoryClaims      ClauseCategory = "claims"
	CategoryBenefits    ClauseCategory = "benefits"
	CategoryTerms       ClauseCategory = "terms"
	CategoryGeneral     ClauseCategory = "general"
)

// Clause is an immutable policy clause returned by the retrieval layer.
// It is consumed read-only by the decision engine.
type Clause struct {
	ClauseID   string         `json:"clause_id"`
	Text       string         `json:"text"`
	Category   ClauseCategory `json:"category,omitempty"`
	PolicyName string         `json:"policy_name"`
	Provider   string         `json:"provider,omitempty"`
	Similarity float64        `json:"similarity"`
}
