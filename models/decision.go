package models

// Decision is the outcome of a claim evaluation.
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

// DecisionResult is the full outcome of evaluating a claim: the decision,
// the payable amount (nil when rejected), a justification, a confidence
// score in [0,1], the clauses the decision was grounded on, and the ordered
// audit trail of reasoning steps. Steps are appended in evaluation order and
// never reordered; the trail is the sole explainability mechanism.
type DecisionResult struct {
	Decision       Decision `json:"decision"`
	Amount         *int     `json:"amount"`
	Justification  string   `json:"justification"`
	Confidence     float64  `json:"confidence"`
	SourceClauses  []Clause `json:"source_clauses"`
	ReasoningSteps []string `json:"reasoning_steps"`
}
