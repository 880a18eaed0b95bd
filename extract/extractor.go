package extract

import (
	"regexp"
	"strconv"
	"strings"

	"claimsight-backend/models"
)

// procedurePattern maps a procedure category to its surface-form synonyms.
// Categories are scanned in slice order and the first category with any
// synonym present in the query wins, so ordering is a policy decision.
type procedurePattern struct {
	category string
	synonyms []string
}

var procedurePatterns = []procedurePattern{
	{"knee_surgery", []string{"knee surgery", "knee operation", "knee replacement"}},
	{"heart_surgery", []string{"heart surgery", "cardiac surgery", "cabg", "bypass"}},
	{"cancer", []string{"cancer", "tumor", "oncology", "chemotherapy"}},
	{"eye_surgery", []string{"eye surgery", "cataract", "lasik"}},
	{"day_care", []string{"day care", "daycare", "outpatient"}},
}

// knownCities are the locations the extractor recognizes. Broader than the
// metro surcharge list on purpose.
var knownCities = []string{
	"mumbai", "delhi", "bangalore", "pune", "chennai", "kolkata",
	"hyderabad", "ahmedabad", "surat", "jaipur", "lucknow", "kanpur",
}

var (
	ageGenderRe = regexp.MustCompile(`(?i)(\d+)([MF])`)

	// Duration patterns are tried in order; the long-form unit wins over
	// the abbreviated one.
	durationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*-?\s*(month|year)s?`),
		regexp.MustCompile(`(?i)(\d+)\s*-?\s*(m|y)(?:\s|$)`),
	}

	// Amount patterns are tried in order; the first match wins.
	amountRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)₹\s*(\d+(?:,\d+)*)`),
		regexp.MustCompile(`(?i)rs\.?\s*(\d+(?:,\d+)*)`),
		regexp.MustCompile(`(?i)rupees?\s*(\d+(?:,\d+)*)`),
		regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*rupees?`),
	}
)

// Extractor parses free-text claim queries into structured entities.
type Extractor struct{}

// New creates an entity extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract pulls structured fields out of a query. It is total: any input,
// including the empty string, yields a well-formed Entities value, and every
// field is extracted independently of the others with first-match-wins
// semantics per field. An internal panic degrades to an all-absent record.
func (e *Extractor) Extract(query string) (entities models.Entities) {
	defer func() {
		if r := recover(); r != nil {
			entities = models.Entities{}
		}
	}()

	queryLower := strings.ToLower(query)

	if m := ageGenderRe.FindStringSubmatch(query); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			entities.Age = &age
			if strings.EqualFold(m[2], "M") {
				entities.Gender = models.GenderMale
			} else {
				entities.Gender = models.GenderFemale
			}
		}
	}

	for _, re := range durationRes {
		m := re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		value, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit := models.UnitMonth
		switch strings.ToLower(m[2]) {
		case "m", "month":
			unit = models.UnitMonth
		case "y", "year":
			unit = models.UnitYear
		}
		entities.PolicyDuration = &models.PolicyDuration{Value: value, Unit: unit}
		break
	}

	for _, p := range procedurePatterns {
		for _, synonym := range p.synonyms {
			if strings.Contains(queryLower, synonym) {
				s := synonym
				entities.Procedure = &s
				break
			}
		}
		if entities.Procedure != nil {
			break
		}
	}

	for _, city := range knownCities {
		if strings.Contains(queryLower, city) {
			titled := titleCase(city)
			entities.Location = &titled
			break
		}
	}

	for _, re := range amountRes {
		m := re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.Atoi(raw); err == nil {
			entities.Amount = &amount
			break
		}
	}

	return entities
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
