package engine

import (
	"fmt"
	"math"
	"strings"

	"claimsight-backend/models"
	"claimsight-backend/rules"
)

// Engine evaluates claims against an immutable rule set. Decide is a pure
// function of its inputs plus the rules passed at construction; it performs
// no I/O and never panics outward.
type Engine struct {
	rules rules.DecisionRules
}

// New creates a decision engine bound to the given rules.
func New(r rules.DecisionRules) *Engine {
	return &Engine{rules: r}
}

// safeDefault is the result returned when evaluation itself fails. The
// internal error is visible only in the reasoning trail, keeping an
// internal-error rejection distinguishable from a business rejection.
func safeDefault(reason string) *models.DecisionResult {
	return &models.DecisionResult{
		Decision:       models.DecisionRejected,
		Amount:         nil,
		Justification:  "Error processing claim",
		Confidence:     0.1,
		SourceClauses:  []models.Clause{},
		ReasoningSteps: []string{"internal error: " + reason},
	}
}

// Decide computes an approval or rejection for the extracted entities,
// citing the retrieved clauses. Gates run in a fixed order and each appends
// a reasoning step; the trail is returned verbatim, in evaluation order.
func (e *Engine) Decide(entities models.Entities, clauses []models.Clause) (result *models.DecisionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = safeDefault(fmt.Sprintf("%v", r))
		}
	}()

	steps := make([]string, 0, 8)

	var age int
	if entities.Age != nil {
		age = *entities.Age
	}
	var procedure string
	if entities.Procedure != nil {
		procedure = strings.ToLower(*entities.Procedure)
	}
	var location string
	if entities.Location != nil {
		location = *entities.Location
	}

	steps = append(steps, fmt.Sprintf("Analyzing query for: Age=%d, Gender=%s, Procedure=%s",
		age, entities.Gender, procedure))

	durationDays := 0
	if d := entities.PolicyDuration; d != nil {
		switch d.Unit {
		case models.UnitMonth:
			durationDays = d.Value * 30
		case models.UnitYear:
			durationDays = d.Value * 365
		}
		steps = append(steps, fmt.Sprintf("Policy duration: %d days", durationDays))
	}

	// Age gate. Terminal when violated.
	if entities.Age != nil && (age < e.rules.AgeLimits.Min || age > e.rules.AgeLimits.Max) {
		steps = append(steps, "Age validation failed")
		return finalize(&models.DecisionResult{
			Decision: models.DecisionRejected,
			Justification: fmt.Sprintf("Age %d is outside the eligible range (%d-%d years)",
				age, e.rules.AgeLimits.Min, e.rules.AgeLimits.Max),
			Confidence: 0.95,
		}, steps)
	}

	// Procedure-presence gate. Terminal when nothing was identified.
	if procedure == "" {
		steps = append(steps, "No procedure identified")
		return finalize(&models.DecisionResult{
			Decision:      models.DecisionRejected,
			Justification: "No medical procedure identified in the query",
			Confidence:    0.8,
		}, steps)
	}

	result = &models.DecisionResult{
		Decision:      models.DecisionRejected,
		Justification: "No matching coverage found",
		Confidence:    0.5,
	}

	matched := false
	for _, rule := range e.rules.Procedures {
		if !rule.Matches(procedure) {
			continue
		}
		matched = true
		steps = append(steps, rule.ProcessingStep)

		if rule.Critical || durationDays >= rule.WaitingDays {
			amount := rule.Amount
			if rule.ElevatedAmount > 0 && age > rule.ElevatedAgeOver {
				amount = rule.ElevatedAmount
			}
			result.Decision = models.DecisionApproved
			result.Amount = &amount
			result.Confidence = rule.ApproveConfidence
			result.Justification = rule.JustifyApproved(entities.PolicyDuration)
			result.SourceClauses = []models.Clause{rule.SourceClause}
			steps = append(steps, rule.ApprovedStep(durationDays))
		} else {
			result.Decision = models.DecisionRejected
			result.Confidence = rule.RejectConfidence
			result.Justification = fmt.Sprintf(
				"Policy duration of %d days is less than the required %d-day waiting period for %s.",
				durationDays, rule.WaitingDays, rule.Label)
			steps = append(steps, rule.RejectedStep(durationDays))
		}
		break
	}

	if !matched {
		for _, u := range e.rules.Uncovered {
			if u.Matches(procedure) {
				steps = append(steps, fmt.Sprintf(
					"No coverage rule configured for procedure category: %s", u.Category))
				break
			}
		}
	}

	// Post-approval adjustments: metro surcharge first, then the mutually
	// exclusive age adjustment, each rounded to the nearest integer.
	if result.Decision == models.DecisionApproved && result.Amount != nil {
		amount := *result.Amount

		if location != "" && e.isMetro(location) {
			amount = adjust(amount, e.rules.MetroAdjustPct)
			steps = append(steps, fmt.Sprintf("Metro city adjustment applied: +%d%%", e.rules.MetroAdjustPct))
		}

		if entities.Age != nil && age > e.rules.SeniorAge {
			amount = adjust(amount, e.rules.SeniorAdjustPct)
			steps = append(steps, fmt.Sprintf("Senior citizen adjustment applied: +%d%%", e.rules.SeniorAdjustPct))
		} else if entities.Age != nil && age < e.rules.YoungAdultAge {
			amount = adjust(amount, -e.rules.YoungAdultDiscountPct)
			steps = append(steps, fmt.Sprintf("Young adult discount applied: -%d%%", e.rules.YoungAdultDiscountPct))
		}

		result.Amount = &amount
	}

	if result.Amount != nil {
		steps = append(steps, fmt.Sprintf("Final decision: %s, Amount: %d", result.Decision, *result.Amount))
	} else {
		steps = append(steps, fmt.Sprintf("Final decision: %s, Amount: none", result.Decision))
	}

	return finalize(result, steps)
}

func (e *Engine) isMetro(location string) bool {
	loc := strings.ToLower(location)
	for _, city := range e.rules.MetroCities {
		if loc == city {
			return true
		}
	}
	return false
}

// adjust applies a percentage change and rounds to the nearest integer.
// Money amounts stay integral; fractional currency units do not exist here.
func adjust(amount, pct int) int {
	return int(math.Round(float64(amount) * (1 + float64(pct)/100)))
}

func finalize(result *models.DecisionResult, steps []string) *models.DecisionResult {
	if result.SourceClauses == nil {
		result.SourceClauses = []models.Clause{}
	}
	result.ReasoningSteps = steps
	return result
}
