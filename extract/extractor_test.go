package extract

import (
	"testing"

	"claimsight-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFullQuery(t *testing.T) {
	e := New()

	entities := e.Extract("46M, knee surgery, Pune, 3-month policy")

	require.NotNil(t, entities.Age)
	assert.Equal(t, 46, *entities.Age)
	assert.Equal(t, models.GenderMale, entities.Gender)

	require.NotNil(t, entities.Procedure)
	assert.Equal(t, "knee surgery", *entities.Procedure)

	require.NotNil(t, entities.Location)
	assert.Equal(t, "Pune", *entities.Location)

	require.NotNil(t, entities.PolicyDuration)
	assert.Equal(t, 3, entities.PolicyDuration.Value)
	assert.Equal(t, models.UnitMonth, entities.PolicyDuration.Unit)

	assert.Nil(t, entities.Amount)
}

func TestExtractEmptyQuery(t *testing.T) {
	e := New()

	entities := e.Extract("")

	assert.Nil(t, entities.Age)
	assert.Equal(t, models.GenderUnknown, entities.Gender)
	assert.Nil(t, entities.Procedure)
	assert.Nil(t, entities.Location)
	assert.Nil(t, entities.PolicyDuration)
	assert.Nil(t, entities.Amount)
}

func TestExtractGenderFemale(t *testing.T) {
	e := New()

	entities := e.Extract("30F with cataract, Chennai")

	require.NotNil(t, entities.Age)
	assert.Equal(t, 30, *entities.Age)
	assert.Equal(t, models.GenderFemale, entities.Gender)

	require.NotNil(t, entities.Procedure)
	assert.Equal(t, "cataract", *entities.Procedure)

	require.NotNil(t, entities.Location)
	assert.Equal(t, "Chennai", *entities.Location)
}

func TestExtractProcedureFirstMatchWins(t *testing.T) {
	e := New()

	// Both categories are present; knee_surgery is scanned first.
	entities := e.Extract("knee surgery scheduled alongside cataract consultation")

	require.NotNil(t, entities.Procedure)
	assert.Equal(t, "knee surgery", *entities.Procedure)
}

func TestExtractProcedureSynonyms(t *testing.T) {
	e := New()

	cases := map[string]string{
		"scheduled for cabg next week":  "cabg",
		"undergoing chemotherapy":       "chemotherapy",
		"outpatient visit":              "outpatient",
		"knee replacement recommended":  "knee replacement",
	}

	for query, want := range cases {
		entities := e.Extract(query)
		require.NotNil(t, entities.Procedure, query)
		assert.Equal(t, want, *entities.Procedure, query)
	}
}

func TestExtractDurationVariants(t *testing.T) {
	e := New()

	cases := []struct {
		query string
		value int
		unit  models.DurationUnit
	}{
		{"policy held for 3 months", 3, models.UnitMonth},
		{"3-month policy", 3, models.UnitMonth},
		{"2 year policy", 2, models.UnitYear},
		{"policy age 6m ", 6, models.UnitMonth},
		{"active for 2y", 2, models.UnitYear},
	}

	for _, tc := range cases {
		entities := e.Extract(tc.query)
		require.NotNil(t, entities.PolicyDuration, tc.query)
		assert.Equal(t, tc.value, entities.PolicyDuration.Value, tc.query)
		assert.Equal(t, tc.unit, entities.PolicyDuration.Unit, tc.query)
	}
}

func TestExtractAmountVariants(t *testing.T) {
	e := New()

	cases := map[string]int{
		"claim of ₹50000":        50000,
		"claim of Rs. 1,50,000":  150000,
		"claim of rs 2000":       2000,
		"rupees 75,000 claimed":  75000,
		"billed 30,000 rupees":   30000,
	}

	for query, want := range cases {
		entities := e.Extract(query)
		require.NotNil(t, entities.Amount, query)
		assert.Equal(t, want, *entities.Amount, query)
	}
}

func TestExtractFieldsIndependent(t *testing.T) {
	e := New()

	// Location only; every other field stays absent.
	entities := e.Extract("somewhere in hyderabad")

	require.NotNil(t, entities.Location)
	assert.Equal(t, "Hyderabad", *entities.Location)
	assert.Nil(t, entities.Age)
	assert.Nil(t, entities.Procedure)
	assert.Nil(t, entities.PolicyDuration)
	assert.Nil(t, entities.Amount)
}

func TestExtractUnknownCity(t *testing.T) {
	e := New()

	entities := e.Extract("treatment in Springfield")

	assert.Nil(t, entities.Location)
}

func TestExtractTotalOnNoise(t *testing.T) {
	e := New()

	for _, query := range []string{
		"!!!",
		"           ",
		"1234567890",
		"M F m f",
	} {
		assert.NotPanics(t, func() {
			e.Extract(query)
		}, query)
	}
}
