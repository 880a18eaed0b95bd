package rules

import (
	"fmt"
	"strings"

	"claimsight-backend/models"
)

// ProviderRules is the static rule table for one insurance provider.
type ProviderRules struct {
	PolicyName          string
	WaitingPeriodDays   map[string]int
	CoverageLimits      map[string]int
	AgeLimits           AgeLimits
	CriticalIllness     []string
	DayCareProcedures   []string
	PreHospitalization  int
	PostHospitalization int
	CumulativeBonus     bool
}

// AgeLimits bounds the eligible claimant age, inclusive.
type AgeLimits struct {
	Min int
	Max int
}

// ProcedureRule is one entry of the ordered procedure classifier. The first
// rule whose Match substrings hit the normalized procedure wins, so slice
// order is policy, not an implementation detail.
type ProcedureRule struct {
	Category          string
	Match             []string
	Critical          bool
	WaitingDays       int
	Amount            int
	ElevatedAmount    int
	ElevatedAgeOver   int
	ApproveConfidence float64
	RejectConfidence  float64
	Label             string
	ProcessingStep    string

	// ApprovedStep and RejectedStep render the audit-trail entries; the
	// duration argument is ignored by critical-illness rules.
	ApprovedStep    func(durationDays int) string
	RejectedStep    func(durationDays int) string
	JustifyApproved func(d *models.PolicyDuration) string

	// SourceClause is the canonical clause cited when retrieval returned
	// nothing usable for this category.
	SourceClause models.Clause
}

// Matches reports whether the normalized procedure text falls under this
// rule.
func (r ProcedureRule) Matches(procedure string) bool {
	for _, m := range r.Match {
		if m != "" && strings.Contains(procedure, m) {
			return true
		}
	}
	return false
}

// UncoveredCategory is a procedure category the extractor recognizes but no
// decision rule covers. Claims landing here fall through to the default
// rejection with a dedicated reasoning step so the gap stays observable.
type UncoveredCategory struct {
	Category string
	Match    []string
}

// Matches reports whether the normalized procedure text falls under this
// uncovered category.
func (u UncoveredCategory) Matches(procedure string) bool {
	for _, m := range u.Match {
		if m != "" && strings.Contains(procedure, m) {
			return true
		}
	}
	return false
}

// DecisionRules is the operative configuration the decision engine runs on.
// Built once, passed at construction, never mutated.
type DecisionRules struct {
	AgeLimits AgeLimits

	Procedures []ProcedureRule
	Uncovered  []UncoveredCategory

	MetroCities           []string
	MetroAdjustPct        int
	SeniorAge             int
	SeniorAdjustPct       int
	YoungAdultAge         int
	YoungAdultDiscountPct int

	Providers map[string]ProviderRules
}

// Providers returns the built-in provider rule tables the default decision
// rules are assembled from.
func Providers() map[string]ProviderRules {
	return map[string]ProviderRules{
		"bajaj_allianz": {
			PolicyName: "Bajaj Allianz Global Health Care",
			WaitingPeriodDays: map[string]int{
				"knee surgery":  90,
				"heart surgery": 180,
				"cancer":        365,
				"eye surgery":   30,
			},
			CoverageLimits: map[string]int{
				"knee surgery":  150000,
				"heart surgery": 500000,
				"cancer":        1000000,
				"eye surgery":   50000,
			},
			AgeLimits:           AgeLimits{Min: 18, Max: 65},
			DayCareProcedures:   []string{"knee surgery", "eye surgery", "cataract"},
			PreHospitalization:  60,
			PostHospitalization: 90,
		},
		"hdfc_ergo": {
			PolicyName: "HDFC Ergo Easy Health",
			WaitingPeriodDays: map[string]int{
				"knee surgery":  90,
				"heart surgery": 0,
				"cancer":        0,
				"eye surgery":   30,
			},
			CoverageLimits: map[string]int{
				"knee surgery":  120000,
				"heart surgery": 500000,
				"cancer":        1000000,
				"eye surgery":   60000,
			},
			AgeLimits:       AgeLimits{Min: 18, Max: 70},
			CriticalIllness: []string{"heart surgery", "cancer", "stroke", "kidney failure"},
			CumulativeBonus: true,
		},
	}
}

// Default assembles the operative decision rules from the provider tables.
// Eligibility bounds follow the widest provider window (HDFC Ergo); knee
// amounts use the HDFC limit as base and the Bajaj limit past the elevated
// age threshold; critical-illness procedures take HDFC's no-waiting terms.
func Default() DecisionRules {
	providers := Providers()
	bajaj := providers["bajaj_allianz"]
	hdfc := providers["hdfc_ergo"]

	dayCareClause := models.Clause{
		ClauseID:   "BAJ-003",
		Text:       "Day care procedures covered where treatment is less than 24 hours",
		Category:   models.CategoryCoverage,
		PolicyName: bajaj.PolicyName,
	}
	criticalClause := models.Clause{
		ClauseID:   "HDFC-001",
		Text:       "Critical illness coverage includes cancer, CABG, heart attack, stroke, kidney failure",
		Category:   models.CategoryCoverage,
		PolicyName: hdfc.PolicyName,
	}

	knee := ProcedureRule{
		Category:          "knee_surgery",
		Match:             []string{"knee"},
		WaitingDays:       hdfc.WaitingPeriodDays["knee surgery"],
		Amount:            hdfc.CoverageLimits["knee surgery"],
		ElevatedAmount:    bajaj.CoverageLimits["knee surgery"],
		ElevatedAgeOver:   45,
		ApproveConfidence: 0.85,
		RejectConfidence:  0.9,
		Label:             "knee surgery",
		ProcessingStep:    "Processing knee surgery claim",
		SourceClause:      withSimilarity(dayCareClause, 0.85),
	}
	knee.ApprovedStep = func(durationDays int) string {
		return fmt.Sprintf("Approved: Waiting period satisfied (%d >= %d days)", durationDays, knee.WaitingDays)
	}
	knee.RejectedStep = func(durationDays int) string {
		return fmt.Sprintf("Rejected: Waiting period not satisfied (%d < %d days)", durationDays, knee.WaitingDays)
	}
	knee.JustifyApproved = func(d *models.PolicyDuration) string {
		var value int
		var unit models.DurationUnit
		if d != nil {
			value = d.Value
			unit = d.Unit
		}
		return fmt.Sprintf(
			"Knee surgery is covered under day care procedures. Policy duration of %d %s meets the %d-day waiting period requirement.",
			value, unit, knee.WaitingDays)
	}

	heart := ProcedureRule{
		Category:          "heart_surgery",
		Match:             []string{"heart", "cardiac", "cabg"},
		Critical:          true,
		WaitingDays:       hdfc.WaitingPeriodDays["heart surgery"],
		Amount:            hdfc.CoverageLimits["heart surgery"],
		ApproveConfidence: 0.9,
		Label:             "heart surgery",
		ProcessingStep:    "Processing heart surgery claim",
		SourceClause:      withSimilarity(criticalClause, 0.9),
	}
	heart.ApprovedStep = func(int) string { return "Approved: Critical illness coverage applies" }
	heart.JustifyApproved = func(*models.PolicyDuration) string {
		return "Heart surgery is covered under critical illness benefits with no waiting period."
	}

	cancer := ProcedureRule{
		Category:          "cancer",
		Match:             []string{"cancer"},
		Critical:          true,
		WaitingDays:       hdfc.WaitingPeriodDays["cancer"],
		Amount:            hdfc.CoverageLimits["cancer"],
		ApproveConfidence: 0.95,
		Label:             "cancer treatment",
		ProcessingStep:    "Processing cancer treatment claim",
		SourceClause:      withSimilarity(criticalClause, 0.95),
	}
	cancer.ApprovedStep = func(int) string { return "Approved: Cancer covered under critical illness" }
	cancer.JustifyApproved = func(*models.PolicyDuration) string {
		return "Cancer treatment is fully covered under critical illness benefits with no waiting period."
	}

	eye := ProcedureRule{
		Category:          "eye_surgery",
		Match:             []string{"eye", "cataract"},
		WaitingDays:       hdfc.WaitingPeriodDays["eye surgery"],
		Amount:            hdfc.CoverageLimits["eye surgery"],
		ApproveConfidence: 0.8,
		RejectConfidence:  0.85,
		Label:             "eye surgery",
		ProcessingStep:    "Processing eye surgery claim",
		SourceClause:      withSimilarity(dayCareClause, 0.8),
	}
	eye.ApprovedStep = func(int) string { return "Approved: Eye surgery waiting period satisfied" }
	eye.RejectedStep = func(int) string { return "Rejected: Eye surgery waiting period not satisfied" }
	eye.JustifyApproved = func(*models.PolicyDuration) string {
		return fmt.Sprintf(
			"Eye surgery is covered under day care procedures. Policy duration meets the %d-day waiting period.",
			eye.WaitingDays)
	}

	return DecisionRules{
		AgeLimits: hdfc.AgeLimits,

		// Evaluation priority: knee > heart/cardiac/cabg > cancer > eye.
		Procedures: []ProcedureRule{knee, heart, cancer, eye},

		// day_care is extracted as a category but carries no coverage rule.
		Uncovered: []UncoveredCategory{
			{Category: "day_care", Match: []string{"day care", "daycare", "outpatient"}},
		},

		// The surcharge list is deliberately narrower than the extractor's
		// city list; Pune and others are detected but not surcharged.
		MetroCities:           []string{"mumbai", "delhi", "bangalore", "chennai", "kolkata", "hyderabad"},
		MetroAdjustPct:        10,
		SeniorAge:             60,
		SeniorAdjustPct:       15,
		YoungAdultAge:         25,
		YoungAdultDiscountPct: 10,

		Providers: providers,
	}
}

func withSimilarity(c models.Clause, similarity float64) models.Clause {
	c.Similarity = similarity
	return c
}
