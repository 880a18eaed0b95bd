package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("The policy covers hospitalization expenses subject to the stated terms. ")
	}
	return b.String()
}

func TestSplitShortTextReturnsNothing(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("too short"))
	assert.Nil(t, s.Split(strings.Repeat(" ", 200)))
}

func TestSplitSingleChunk(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	text := sentences(3) // well under one chunk

	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(text), chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, len(chunks[0].Text), chunks[0].Length)
}

func TestSplitEndsOnSentenceBoundary(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	text := sentences(30)

	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk.Text, "."),
			"chunk should end at a sentence terminator: %q", chunk.Text[len(chunk.Text)-20:])
	}
}

func TestSplitChunksOverlap(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	text := sentences(30)

	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].StartOffset, chunks[i-1].StartOffset+chunks[i-1].Length+DefaultOverlap,
			"chunk %d should start within reach of the previous chunk", i)
		assert.Greater(t, chunks[i].StartOffset, chunks[i-1].StartOffset,
			"chunk %d must make forward progress", i)
	}
}

func TestSplitHonorsMaxChunks(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	text := sentences(2000)

	chunks := s.Split(text)

	assert.Len(t, chunks, MaxChunks)
}

func TestSplitPreprocessesBeforeOffsets(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	raw := "Coverage   terms   apply.    " + sentences(5)

	chunks := s.Split(raw)

	require.NotEmpty(t, chunks)
	assert.NotContains(t, chunks[0].Text, "  ",
		"space runs must be collapsed before chunking")
	assert.Equal(t, 0, chunks[0].StartOffset)
}

func TestSplitDropsTrailingFragment(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	// One full chunk plus a tail shorter than the minimum keep length.
	text := sentences(9) + "Short tail."

	chunks := s.Split(text)

	for _, chunk := range chunks {
		assert.Greater(t, len(chunk.Text), MinChunkLength)
	}
}

func TestSplitTerminatesWithLargeOverlap(t *testing.T) {
	// Overlap close to the chunk size must not stall the forward pass.
	s := New(200, 190)
	text := sentences(50)

	chunks := s.Split(text)

	assert.NotEmpty(t, chunks)
	assert.LessOrEqual(t, len(chunks), MaxChunks)
}

func TestNewFallsBackToDefaults(t *testing.T) {
	s := New(0, -1)

	assert.Equal(t, DefaultChunkSize, s.chunkSize)
	assert.Equal(t, DefaultOverlap, s.overlap)
}

func TestSplitKeepsMultiByteRunesIntact(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	// A Devanagari run with no sentence terminator forces the naive boundary,
	// which must not land inside a three-byte rune.
	text := "ab" + strings.Repeat("अ", 600)

	chunks := s.Split(text)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Text),
			"chunk %d must be valid UTF-8", i)
	}
}

func TestSplitOverlapLandsOnRuneBoundary(t *testing.T) {
	s := New(DefaultChunkSize, DefaultOverlap)
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("बीमा पॉलिसी में ₹500000 तक का कवरेज शामिल है और प्रतीक्षा अवधि लागू होती है. ")
	}

	chunks := s.Split(b.String())

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk.Text),
			"chunk %d must be valid UTF-8", i)
	}
}
