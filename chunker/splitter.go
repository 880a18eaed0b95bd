package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"claimsight-backend/models"
)

const (
	// DefaultChunkSize is the naive chunk boundary in characters.
	DefaultChunkSize = 600
	// DefaultOverlap is how far each chunk reaches back into the previous one.
	DefaultOverlap = 100
	// MaxChunks caps how many chunks a single document may produce. The
	// splitter stops once the cap is hit even if text remains; this is a
	// resource bound.
	MaxChunks = 40
	// MinChunkLength drops trailing fragments shorter than this after
	// trimming.
	MinChunkLength = 50
)

var (
	spaceRunRe   = regexp.MustCompile(` +`)
	newlineRunRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Splitter produces bounded, overlapping, sentence-aligned chunks.
type Splitter struct {
	chunkSize int
	overlap   int
	maxChunks int
	minLength int
}

// New creates a splitter. Non-positive size or negative overlap fall back to
// the defaults.
func New(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
		maxChunks: MaxChunks,
		minLength: MinChunkLength,
	}
}

// Split runs a single greedy forward pass over the text. Each chunk ends at
// the nearest sentence terminator found searching backward from the naive
// boundary (no further back than half a chunk, nor more than 100 characters);
// the next chunk starts overlap characters before the previous end. Offsets
// in the returned chunks refer to the preprocessed text.
func (s *Splitter) Split(text string) []models.Chunk {
	if len(strings.TrimSpace(text)) < s.minLength {
		return nil
	}

	// Preprocessing must run before boundary search so offsets refer to the
	// cleaned text.
	text = s.preprocess(text)

	chunks := make([]models.Chunk, 0, s.maxChunks)
	start := 0

	for start < len(text) && len(chunks) < s.maxChunks {
		end := start + s.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = s.snapToSentence(text, start, end)
		}

		chunk := strings.TrimSpace(text[start:end])
		if len(chunk) > s.minLength {
			chunks = append(chunks, models.Chunk{
				Text:        chunk,
				StartOffset: start,
				Length:      len(chunk),
			})
		}

		prev := start
		if end > s.overlap {
			start = runeFloor(text, end-s.overlap)
		} else {
			start = end
		}
		// Overlap must not undo forward progress when a snapped chunk comes
		// out shorter than the overlap.
		if start <= prev {
			start = end
		}
		if start >= len(text) {
			break
		}
	}

	return chunks
}

// snapToSentence searches backward from the naive boundary for a sentence
// terminator, down to half the chunk size past start and at most 100
// characters back. Sentence integrity wins over exact size.
func (s *Splitter) snapToSentence(text string, start, end int) int {
	floor := start + s.chunkSize/2
	if limit := end - 100; limit > floor {
		floor = limit
	}
	for i := end; i > floor; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i + 1
		}
	}
	// No terminator in the window; the naive boundary may sit inside a
	// multi-byte rune.
	return runeFloor(text, end)
}

// runeFloor backs a byte offset up to the start of the rune it falls inside,
// so slicing at it never splits a code point.
func runeFloor(text string, i int) int {
	for i > 0 && i < len(text) && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func (s *Splitter) preprocess(text string) string {
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
