package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"claimsight-backend/engine"
	"claimsight-backend/extract"
	"claimsight-backend/models"
)

const (
	// TopKClauses is how many policy clauses a query retrieves.
	TopKClauses = 5
	// MinClauseSimilarity filters out retrieved clauses too far from the
	// query to be useful context.
	MinClauseSimilarity = 0.3
)

var (
	ErrEmptyQuery   = errors.New("query must not be empty")
	ErrEngineNotSet = errors.New("decision engine not set")
)

// QueryEmbedder embeds a retrieval query.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// ClauseSearcher retrieves the nearest policy clauses for an embedding.
type ClauseSearcher interface {
	Search(ctx context.Context, embedding []float64, topK int) ([]models.Clause, error)
}

// ClaimService runs the claim decision pipeline: entity extraction, clause
// retrieval, and rule evaluation.
type ClaimService struct {
	extractor *extract.Extractor
	engine    *engine.Engine
	embedder  QueryEmbedder
	clauses   ClauseSearcher
}

// ClaimServiceOption is a functional option for ClaimService.
type ClaimServiceOption func(*ClaimService)

// ClaimWithEngine sets the decision engine.
func ClaimWithEngine(e *engine.Engine) ClaimServiceOption {
	return func(s *ClaimService) {
		s.engine = e
	}
}

// ClaimWithEmbedder sets the query embedder.
func ClaimWithEmbedder(embedder QueryEmbedder) ClaimServiceOption {
	return func(s *ClaimService) {
		s.embedder = embedder
	}
}

// ClaimWithClauseSearcher sets the clause retriever.
func ClaimWithClauseSearcher(searcher ClauseSearcher) ClaimServiceOption {
	return func(s *ClaimService) {
		s.clauses = searcher
	}
}

// NewClaimService creates a new claim service.
func NewClaimService(opts ...ClaimServiceOption) *ClaimService {
	s := &ClaimService{
		extractor: extract.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessQueryResult bundles the extracted entities with the decision.
type ProcessQueryResult struct {
	Query    string                `json:"query"`
	Entities models.Entities       `json:"entities"`
	Result   models.DecisionResult `json:"result"`
}

// ProcessQuery runs a natural-language claim query through the pipeline.
// Retrieval feeds the decision as context; a retrieval failure degrades to an
// entity-only decision rather than failing the query.
func (s *ClaimService) ProcessQuery(ctx context.Context, query string) (*ProcessQueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if s.engine == nil {
		return nil, ErrEngineNotSet
	}

	entities := s.extractor.Extract(query)

	clauses := s.retrieveClauses(ctx, query)

	result := s.engine.Decide(entities, clauses)

	return &ProcessQueryResult{
		Query:    query,
		Entities: entities,
		Result:   *result,
	}, nil
}

// retrieveClauses embeds the query and fetches nearby clauses, dropping any
// below the similarity floor. Missing dependencies or upstream failures yield
// an empty context.
func (s *ClaimService) retrieveClauses(ctx context.Context, query string) []models.Clause {
	if s.embedder == nil || s.clauses == nil {
		return nil
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		log.Printf("Warning: query embedding failed, deciding without retrieval: %v", err)
		return nil
	}

	retrieved, err := s.clauses.Search(ctx, embedding, TopKClauses)
	if err != nil {
		log.Printf("Warning: clause search failed, deciding without retrieval: %v", err)
		return nil
	}

	var clauses []models.Clause
	for _, clause := range retrieved {
		if clause.Similarity >= MinClauseSimilarity {
			clauses = append(clauses, clause)
		}
	}
	return clauses
}
