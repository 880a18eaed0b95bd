package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContextChunks is how many retrieved chunks a prompt may cite.
	MaxContextChunks = 3
	// MaxContextLength caps the accumulated context characters in a prompt.
	MaxContextLength = 2000
	// MaxAnswerLength truncates over-long answers, with a marker appended.
	MaxAnswerLength = 500
	// MinAnswerLength below which an answer is treated as unusable.
	MinAnswerLength = 5

	answerMarker    = "ANSWER:"
	reasoningMarker = "REASONING:"

	// FallbackAnswer replaces an answer when retrieval or generation came
	// up empty for one question. Per-question failures never abort a batch.
	FallbackAnswer = "I cannot find sufficient information to answer this question."

	// DefaultReasoning stands in when the model reply carries no explicit
	// reasoning block.
	DefaultReasoning = "Generated response without explicit reasoning"
)

// ComposePrompt builds the question-answering prompt from at most
// MaxContextChunks chunks, accumulating context only while the running
// character total stays under MaxContextLength. Deterministic given its
// inputs.
func ComposePrompt(question string, contextChunks []string) string {
	var contextParts []string
	currentLength := 0

	for i, chunk := range contextChunks {
		if i >= MaxContextChunks {
			break
		}
		if currentLength+len(chunk) > MaxContextLength {
			break
		}
		contextParts = append(contextParts, fmt.Sprintf("Context %d: %s", i+1, chunk))
		currentLength += len(chunk)
	}

	context := strings.Join(contextParts, "\n\n")

	return fmt.Sprintf(`Based on the provided context, answer the question directly and concisely.

Context:
%s

Question: %s

Instructions:
- Use only the provided context
- Be direct and specific
- If information is insufficient, state clearly
- Keep answer under 200 words

ANSWER: [Your answer here]
REASONING: [Brief explanation]`, context, question)
}

// ParseAnswer splits a raw model reply into answer and reasoning. When both
// markers are present the reply is split on the reasoning marker and each
// half is stripped of its marker; otherwise the whole reply is the answer
// and reasoning is the fixed placeholder.
func ParseAnswer(raw string) (answer, reasoning string) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, answerMarker) && strings.Contains(raw, reasoningMarker) {
		parts := strings.SplitN(raw, reasoningMarker, 2)
		answer = strings.TrimSpace(strings.Replace(parts[0], answerMarker, "", 1))
		reasoning = strings.TrimSpace(parts[1])
		return answer, reasoning
	}
	return raw, DefaultReasoning
}

// CleanAnswer strips a leading answer marker the model sometimes repeats,
// replaces unusably short answers with the fallback, and bounds the length
// with a truncation marker.
func CleanAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(answerMarker)) {
		if idx := strings.Index(strings.ToUpper(trimmed), answerMarker); idx >= 0 {
			trimmed = strings.TrimSpace(trimmed[idx+len(answerMarker):])
		}
	}
	if len(trimmed) < MinAnswerLength {
		return FallbackAnswer
	}
	if len(trimmed) > MaxAnswerLength {
		cut := MaxAnswerLength
		// Keep the cut on a rune boundary.
		for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
			cut--
		}
		return trimmed[:cut] + "..."
	}
	return trimmed
}
