package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposePromptIncludesQuestionAndContext(t *testing.T) {
	prompt := ComposePrompt("What is the waiting period?", []string{
		"Waiting period is 90 days.",
		"Coverage starts at enrollment.",
	})

	assert.Contains(t, prompt, "Question: What is the waiting period?")
	assert.Contains(t, prompt, "Context 1: Waiting period is 90 days.")
	assert.Contains(t, prompt, "Context 2: Coverage starts at enrollment.")
	assert.Contains(t, prompt, "ANSWER:")
	assert.Contains(t, prompt, "REASONING:")
}

func TestComposePromptCapsChunkCount(t *testing.T) {
	prompt := ComposePrompt("q", []string{"one", "two", "three", "four"})

	assert.Contains(t, prompt, "Context 3: three")
	assert.NotContains(t, prompt, "Context 4")
}

func TestComposePromptCapsContextLength(t *testing.T) {
	big := strings.Repeat("a", MaxContextLength-50)
	prompt := ComposePrompt("q", []string{big, "this chunk no longer fits"})

	assert.Contains(t, prompt, "Context 1")
	assert.NotContains(t, prompt, "Context 2")
}

func TestComposePromptEmptyContext(t *testing.T) {
	prompt := ComposePrompt("q", nil)

	assert.Contains(t, prompt, "Question: q")
}

func TestParseAnswerWithMarkers(t *testing.T) {
	answer, reasoning := ParseAnswer("ANSWER: The period is 90 days.\nREASONING: Stated in context 1.")

	assert.Equal(t, "The period is 90 days.", answer)
	assert.Equal(t, "Stated in context 1.", reasoning)
}

func TestParseAnswerWithoutMarkers(t *testing.T) {
	answer, reasoning := ParseAnswer("The period is 90 days.")

	assert.Equal(t, "The period is 90 days.", answer)
	assert.Equal(t, DefaultReasoning, reasoning)
}

func TestParseAnswerAnswerMarkerOnly(t *testing.T) {
	// A lone answer marker is not enough to split on.
	answer, reasoning := ParseAnswer("ANSWER: ninety days")

	assert.Equal(t, "ANSWER: ninety days", answer)
	assert.Equal(t, DefaultReasoning, reasoning)
}

func TestCleanAnswerStripsLeadingMarker(t *testing.T) {
	assert.Equal(t, "ninety days", CleanAnswer("ANSWER: ninety days"))
	assert.Equal(t, "ninety days", CleanAnswer("answer: ninety days"))
}

func TestCleanAnswerShortFallsBack(t *testing.T) {
	assert.Equal(t, FallbackAnswer, CleanAnswer(""))
	assert.Equal(t, FallbackAnswer, CleanAnswer("ok"))
	assert.Equal(t, FallbackAnswer, CleanAnswer("ANSWER: a"))
}

func TestCleanAnswerTruncatesLong(t *testing.T) {
	long := strings.Repeat("x", MaxAnswerLength+100)

	cleaned := CleanAnswer(long)

	require.Len(t, cleaned, MaxAnswerLength+3)
	assert.True(t, strings.HasSuffix(cleaned, "..."))
}

func TestCleanAnswerPassesThrough(t *testing.T) {
	assert.Equal(t, "The claim is approved.", CleanAnswer("  The claim is approved.  "))
}

func TestCleanAnswerTruncatesOnRuneBoundary(t *testing.T) {
	// Three-byte runes ensure the byte cap falls mid-rune without adjustment.
	long := strings.Repeat("₹", MaxAnswerLength)

	cleaned := CleanAnswer(long)

	assert.True(t, utf8.ValidString(cleaned))
	assert.True(t, strings.HasSuffix(cleaned, "..."))
	assert.LessOrEqual(t, len(cleaned), MaxAnswerLength+3)
}
