package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"claimsight-backend/llm"
	"claimsight-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	doc *models.Document
	err error
}

func (f *stubFetcher) Fetch(ctx context.Context, docURL string) (*models.Document, error) {
	return f.doc, f.err
}

type stubSplitter struct {
	chunks []models.Chunk
}

func (s *stubSplitter) Split(text string) []models.Chunk {
	return s.chunks
}

type stubEmbedder struct {
	queryErr error
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if e.queryErr != nil {
		return nil, e.queryErr
	}
	return make([]float64, 768), nil
}

func (e *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range out {
		out[i] = make([]float64, 768)
	}
	return out, nil
}

type stubChunkStore struct {
	stored    []models.DocumentChunk
	retrieved []models.DocumentChunk
	searchErr error
}

func (s *stubChunkStore) StoreChunks(ctx context.Context, chunks []models.DocumentChunk, embeddings [][]float64) error {
	s.stored = append(s.stored, chunks...)
	return nil
}

func (s *stubChunkStore) Search(ctx context.Context, docID string, embedding []float64, topK int) ([]models.DocumentChunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	if topK < len(s.retrieved) {
		return s.retrieved[:topK], nil
	}
	return s.retrieved, nil
}

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	return g.reply, g.err
}

func testDocument() *models.Document {
	return &models.Document{
		ID:        "doc-1",
		Title:     "policy",
		Text:      strings.Repeat("The policy covers hospitalization. ", 20),
		SourceURL: "https://example.com/policy.pdf",
	}
}

func testChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{Text: "The policy covers hospitalization.", Length: 34}
	}
	return chunks
}

func newTestAnswerService(store *stubChunkStore, gen *stubGenerator) *AnswerService {
	return NewAnswerService(
		AnswerWithFetcher(&stubFetcher{doc: testDocument()}),
		AnswerWithSplitter(&stubSplitter{chunks: testChunks(4)}),
		AnswerWithEmbedder(&stubEmbedder{}),
		AnswerWithChunkStore(store),
		AnswerWithGenerator(gen),
	)
}

func retrievedChunks(scores ...float64) []models.DocumentChunk {
	chunks := make([]models.DocumentChunk, len(scores))
	for i, score := range scores {
		chunks[i] = models.DocumentChunk{
			DocID:      "doc-1",
			Text:       "The policy covers hospitalization.",
			Similarity: score,
		}
	}
	return chunks
}

func TestRunAnswersQuestions(t *testing.T) {
	store := &stubChunkStore{retrieved: retrievedChunks(0.91, 0.85, 0.7)}
	gen := &stubGenerator{reply: "ANSWER: Hospitalization is covered.\nREASONING: Stated directly."}
	svc := newTestAnswerService(store, gen)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/policy.pdf",
		Questions:    []string{"Is hospitalization covered?"},
	})

	require.NoError(t, err)
	require.Len(t, result.Answers, 1)
	assert.Equal(t, "Hospitalization is covered.", result.Answers[0])

	require.Len(t, result.Explainability, 1)
	trace := result.Explainability[0]
	assert.Equal(t, "Is hospitalization covered?", trace.Question)
	assert.Equal(t, 3, trace.RelevantChunks)
	assert.Len(t, trace.ChunkScores, 3)
	assert.Equal(t, "high", trace.Confidence)
	assert.Equal(t, "Stated directly.", trace.Reasoning)
	assert.Empty(t, trace.Error)

	assert.Equal(t, "policy", result.Metadata.DocTitle)
	assert.Equal(t, 4, result.Metadata.ChunksProcessed)
	assert.Equal(t, 1, result.Metadata.QuestionsProcessed)
	assert.GreaterOrEqual(t, result.Metadata.ProcessingTimeSeconds, 0.0)

	assert.Len(t, store.stored, 4)
}

func TestRunMediumConfidence(t *testing.T) {
	store := &stubChunkStore{retrieved: retrievedChunks(0.6, 0.5)}
	gen := &stubGenerator{reply: "ANSWER: Partially covered.\nREASONING: Weak match."}
	svc := newTestAnswerService(store, gen)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/policy.pdf",
		Questions:    []string{"q"},
	})

	require.NoError(t, err)
	assert.Equal(t, "medium", result.Explainability[0].Confidence)
}

func TestRunGenerationFailureFallsBack(t *testing.T) {
	store := &stubChunkStore{retrieved: retrievedChunks(0.9)}
	gen := &stubGenerator{err: errors.New("generation backend unavailable")}
	svc := newTestAnswerService(store, gen)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/policy.pdf",
		Questions:    []string{"first", "second"},
	})

	require.NoError(t, err)
	require.Len(t, result.Answers, 2)
	for i := range result.Answers {
		assert.Equal(t, llm.FallbackAnswer, result.Answers[i])
		assert.Equal(t, "error", result.Explainability[i].Confidence)
		assert.NotEmpty(t, result.Explainability[i].Error)
	}
	assert.Equal(t, 2, result.Metadata.QuestionsProcessed)
}

func TestRunRetrievalFailureFallsBack(t *testing.T) {
	store := &stubChunkStore{searchErr: errors.New("index offline")}
	gen := &stubGenerator{reply: "unused"}
	svc := newTestAnswerService(store, gen)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/policy.pdf",
		Questions:    []string{"q"},
	})

	require.NoError(t, err)
	assert.Equal(t, llm.FallbackAnswer, result.Answers[0])
	assert.Equal(t, "error", result.Explainability[0].Confidence)
}

func TestRunErrorStringBounded(t *testing.T) {
	store := &stubChunkStore{searchErr: errors.New(strings.Repeat("e", 300))}
	gen := &stubGenerator{reply: "unused"}
	svc := newTestAnswerService(store, gen)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/policy.pdf",
		Questions:    []string{"q"},
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Explainability[0].Error), 100)
}

func TestRunValidation(t *testing.T) {
	svc := newTestAnswerService(&stubChunkStore{}, &stubGenerator{})

	_, err := svc.Run(context.Background(), AnswerRequest{Questions: []string{"q"}})
	assert.ErrorIs(t, err, ErrEmptyDocumentURL)

	_, err = svc.Run(context.Background(), AnswerRequest{DocumentsURL: "https://example.com/p.pdf"})
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/p.pdf",
		Questions:    []string{"1", "2", "3", "4", "5", "6"},
	})
	assert.ErrorIs(t, err, ErrTooManyQuestions)
}

func TestRunShortDocumentRejected(t *testing.T) {
	svc := NewAnswerService(
		AnswerWithFetcher(&stubFetcher{doc: &models.Document{ID: "d", Title: "t", Text: "too short"}}),
		AnswerWithSplitter(&stubSplitter{}),
		AnswerWithEmbedder(&stubEmbedder{}),
		AnswerWithChunkStore(&stubChunkStore{}),
		AnswerWithGenerator(&stubGenerator{}),
	)

	_, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/p.pdf",
		Questions:    []string{"q"},
	})

	assert.ErrorIs(t, err, ErrDocumentTooShort)
}

func TestRunCapsStoredChunks(t *testing.T) {
	store := &stubChunkStore{retrieved: retrievedChunks(0.9)}
	gen := &stubGenerator{reply: "ANSWER: Covered in full.\nREASONING: r"}
	svc := NewAnswerService(
		AnswerWithFetcher(&stubFetcher{doc: testDocument()}),
		AnswerWithSplitter(&stubSplitter{chunks: testChunks(80)}),
		AnswerWithEmbedder(&stubEmbedder{}),
		AnswerWithChunkStore(store),
		AnswerWithGenerator(gen),
	)

	result, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/p.pdf",
		Questions:    []string{"q"},
	})

	require.NoError(t, err)
	assert.Equal(t, MaxStoredChunks, result.Metadata.ChunksProcessed)
	assert.Len(t, store.stored, MaxStoredChunks)
}

func TestRunFetchFailure(t *testing.T) {
	svc := NewAnswerService(
		AnswerWithFetcher(&stubFetcher{err: errors.New("host unreachable")}),
		AnswerWithSplitter(&stubSplitter{}),
		AnswerWithEmbedder(&stubEmbedder{}),
		AnswerWithChunkStore(&stubChunkStore{}),
		AnswerWithGenerator(&stubGenerator{}),
	)

	_, err := svc.Run(context.Background(), AnswerRequest{
		DocumentsURL: "https://example.com/p.pdf",
		Questions:    []string{"q"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch document")
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	devanagari := strings.Repeat("अ", 100) // 300 bytes

	out := truncate(devanagari, maxReasoningLength)

	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), maxReasoningLength)
	assert.Equal(t, devanagari, truncate(devanagari, len(devanagari)))
}
