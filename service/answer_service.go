package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"claimsight-backend/llm"
	"claimsight-backend/models"
)

const (
	// MaxQuestions bounds one question-answering run.
	MaxQuestions = 5
	// MinDocumentLength is the shortest usable cleaned document text.
	MinDocumentLength = 100
	// MaxStoredChunks caps how many chunks of one document get embedded and
	// stored per run.
	MaxStoredChunks = 50
	// TopKChunks is how many chunks each question retrieves.
	TopKChunks = 3
	// GenerationTemperature keeps answers close to the retrieved context.
	GenerationTemperature = 0.1

	// highConfidenceScore is the retrieval similarity above which an answer
	// is reported as high confidence.
	highConfidenceScore = 0.8

	maxReasoningLength = 200
	maxErrorLength     = 100
)

var (
	ErrNoQuestions      = errors.New("at least one question is required")
	ErrTooManyQuestions = errors.New("too many questions")
	ErrEmptyDocumentURL = errors.New("document URL must not be empty")
	ErrDocumentTooShort = errors.New("document text too short to process")
	ErrFetcherNotSet    = errors.New("document fetcher not set")
	ErrSplitterNotSet   = errors.New("chunk splitter not set")
	ErrEmbedderNotSet   = errors.New("embedder not set")
	ErrChunkRepoNotSet  = errors.New("chunk repository not set")
	ErrGeneratorNotSet  = errors.New("generator not set")
)

// DocumentFetcher downloads and cleans a source document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, docURL string) (*models.Document, error)
}

// ChunkSplitter splits cleaned text into bounded chunks.
type ChunkSplitter interface {
	Split(text string) []models.Chunk
}

// DocumentEmbedder embeds queries and document passages.
type DocumentEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// ChunkStore persists and retrieves document chunks.
type ChunkStore interface {
	StoreChunks(ctx context.Context, chunks []models.DocumentChunk, embeddings [][]float64) error
	Search(ctx context.Context, docID string, embedding []float64, topK int) ([]models.DocumentChunk, error)
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

// AnswerService runs the document question-answering pipeline.
type AnswerService struct {
	fetcher   DocumentFetcher
	splitter  ChunkSplitter
	embedder  DocumentEmbedder
	chunks    ChunkStore
	generator Generator
}

// AnswerServiceOption is a functional option for AnswerService.
type AnswerServiceOption func(*AnswerService)

// AnswerWithFetcher sets the document fetcher.
func AnswerWithFetcher(fetcher DocumentFetcher) AnswerServiceOption {
	return func(s *AnswerService) {
		s.fetcher = fetcher
	}
}

// AnswerWithSplitter sets the chunk splitter.
func AnswerWithSplitter(splitter ChunkSplitter) AnswerServiceOption {
	return func(s *AnswerService) {
		s.splitter = splitter
	}
}

// AnswerWithEmbedder sets the embedder.
func AnswerWithEmbedder(embedder DocumentEmbedder) AnswerServiceOption {
	return func(s *AnswerService) {
		s.embedder = embedder
	}
}

// AnswerWithChunkStore sets the chunk store.
func AnswerWithChunkStore(store ChunkStore) AnswerServiceOption {
	return func(s *AnswerService) {
		s.chunks = store
	}
}

// AnswerWithGenerator sets the generation client.
func AnswerWithGenerator(generator Generator) AnswerServiceOption {
	return func(s *AnswerService) {
		s.generator = generator
	}
}

// NewAnswerService creates a new answer service.
func NewAnswerService(opts ...AnswerServiceOption) *AnswerService {
	s := &AnswerService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnswerRequest is one question-answering run over a single document.
type AnswerRequest struct {
	DocumentsURL string   `json:"document_url"`
	Questions    []string `json:"questions"`
}

// QuestionTrace explains how one answer was produced.
type QuestionTrace struct {
	Question       string    `json:"question"`
	RelevantChunks int       `json:"relevant_chunks"`
	ChunkScores    []float64 `json:"chunk_scores"`
	Reasoning      string    `json:"reasoning"`
	Confidence     string    `json:"confidence"`
	Error          string    `json:"error,omitempty"`
}

// RunMetadata summarizes one question-answering run.
type RunMetadata struct {
	DocTitle              string  `json:"doc_title"`
	ChunksProcessed       int     `json:"chunks_processed"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	QuestionsProcessed    int     `json:"questions_processed"`
}

// AnswerResult carries the answers in question order plus explainability.
type AnswerResult struct {
	Answers        []string        `json:"answers"`
	Explainability []QuestionTrace `json:"explainability"`
	Metadata       RunMetadata     `json:"metadata"`
}

// Run fetches the document, indexes its chunks, and answers each question
// against the retrieved context. A failure answering one question yields the
// fallback answer for that question; the run continues.
func (s *AnswerService) Run(ctx context.Context, req AnswerRequest) (*AnswerResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	started := time.Now()

	doc, err := s.fetcher.Fetch(ctx, req.DocumentsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if len(doc.Text) < MinDocumentLength {
		return nil, ErrDocumentTooShort
	}

	chunks := s.splitter.Split(doc.Text)
	if len(chunks) > MaxStoredChunks {
		chunks = chunks[:MaxStoredChunks]
	}
	if len(chunks) == 0 {
		return nil, ErrDocumentTooShort
	}

	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed document chunks: %w", err)
	}

	docChunks := make([]models.DocumentChunk, 0, len(chunks))
	for i, chunk := range chunks {
		docChunks = append(docChunks, models.DocumentChunk{
			DocID:       doc.ID,
			DocTitle:    doc.Title,
			ChunkIndex:  i,
			Text:        chunk.Text,
			ChunkLength: chunk.Length,
		})
	}

	if err := s.chunks.StoreChunks(ctx, docChunks, embeddings); err != nil {
		return nil, fmt.Errorf("failed to store document chunks: %w", err)
	}

	answers := make([]string, 0, len(req.Questions))
	traces := make([]QuestionTrace, 0, len(req.Questions))

	for _, question := range req.Questions {
		answer, trace := s.answerOne(ctx, doc.ID, question)
		answers = append(answers, answer)
		traces = append(traces, trace)
	}

	elapsed := math.Round(time.Since(started).Seconds()*100) / 100

	return &AnswerResult{
		Answers:        answers,
		Explainability: traces,
		Metadata: RunMetadata{
			DocTitle:              doc.Title,
			ChunksProcessed:       len(chunks),
			ProcessingTimeSeconds: elapsed,
			QuestionsProcessed:    len(req.Questions),
		},
	}, nil
}

func (s *AnswerService) validate(req AnswerRequest) error {
	if strings.TrimSpace(req.DocumentsURL) == "" {
		return ErrEmptyDocumentURL
	}
	if len(req.Questions) == 0 {
		return ErrNoQuestions
	}
	if len(req.Questions) > MaxQuestions {
		return fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyQuestions, len(req.Questions), MaxQuestions)
	}

	switch {
	case s.fetcher == nil:
		return ErrFetcherNotSet
	case s.splitter == nil:
		return ErrSplitterNotSet
	case s.embedder == nil:
		return ErrEmbedderNotSet
	case s.chunks == nil:
		return ErrChunkRepoNotSet
	case s.generator == nil:
		return ErrGeneratorNotSet
	}
	return nil
}

// answerOne retrieves context for a question and generates its answer. Errors
// become the fallback answer with an error trace.
func (s *AnswerService) answerOne(ctx context.Context, docID, question string) (string, QuestionTrace) {
	trace := QuestionTrace{
		Question:    question,
		ChunkScores: []float64{},
	}

	fail := func(err error) (string, QuestionTrace) {
		log.Printf("Warning: failed to answer question %q: %v", question, err)
		trace.Confidence = "error"
		trace.Reasoning = "Question could not be answered"
		trace.Error = truncate(err.Error(), maxErrorLength)
		return llm.FallbackAnswer, trace
	}

	embedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return fail(err)
	}

	retrieved, err := s.chunks.Search(ctx, docID, embedding, TopKChunks)
	if err != nil {
		return fail(err)
	}
	if len(retrieved) == 0 {
		return fail(errors.New("no relevant chunks found"))
	}

	contextTexts := make([]string, 0, len(retrieved))
	maxScore := 0.0
	for _, chunk := range retrieved {
		contextTexts = append(contextTexts, chunk.Text)
		trace.ChunkScores = append(trace.ChunkScores, math.Round(chunk.Similarity*1000)/1000)
		if chunk.Similarity > maxScore {
			maxScore = chunk.Similarity
		}
	}
	trace.RelevantChunks = len(retrieved)

	prompt := llm.ComposePrompt(question, contextTexts)

	reply, err := s.generator.Generate(ctx, prompt, GenerationTemperature)
	if err != nil {
		return fail(err)
	}

	answer, reasoning := llm.ParseAnswer(reply)
	answer = llm.CleanAnswer(answer)

	trace.Reasoning = truncate(reasoning, maxReasoningLength)
	if maxScore > highConfidenceScore {
		trace.Confidence = "high"
	} else {
		trace.Confidence = "medium"
	}

	return answer, trace
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Keep the cut on a rune boundary.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
