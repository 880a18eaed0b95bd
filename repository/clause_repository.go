package repository

import (
	"context"
	"fmt"
	"strings"

	"claimsight-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClauseRepository handles database operations for policy clauses.
type ClauseRepository struct {
	db *pgxpool.Pool
}

// NewClauseRepository creates a new clause repository.
func NewClauseRepository(db *pgxpool.Pool) *ClauseRepository {
	return &ClauseRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx.
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Search returns the topK clauses nearest to the query embedding, ordered by
// descending similarity. Similarity is 1 minus the cosine distance the index
// reports.
func (r *ClauseRepository) Search(ctx context.Context, embedding []float64, topK int) ([]models.Clause, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			clause_id,
			clause_text,
			category,
			policy_name,
			provider,
			1 - (embedding <=> $1::vector) AS similarity
		FROM policy_clauses
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query policy clauses: %w", err)
	}
	defer rows.Close()

	var clauses []models.Clause
	for rows.Next() {
		var clause models.Clause
		err := rows.Scan(
			&clause.ClauseID,
			&clause.Text,
			&clause.Category,
			&clause.PolicyName,
			&clause.Provider,
			&clause.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy clause: %w", err)
		}
		clauses = append(clauses, clause)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating policy clauses: %w", err)
	}

	return clauses, nil
}

// Upsert inserts or replaces a clause together with its embedding.
func (r *ClauseRepository) Upsert(ctx context.Context, clause models.Clause, embedding []float64) error {
	if len(embedding) != 768 {
		return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	query := `
		INSERT INTO policy_clauses (clause_id, clause_text, category, policy_name, provider, embedding)
		VALUES ($1, $2, $3, $4, $5, $6::vector)
		ON CONFLICT (clause_id) DO UPDATE SET
			clause_text = EXCLUDED.clause_text,
			category = EXCLUDED.category,
			policy_name = EXCLUDED.policy_name,
			provider = EXCLUDED.provider,
			embedding = EXCLUDED.embedding`

	_, err := r.db.Exec(ctx, query,
		clause.ClauseID,
		clause.Text,
		clause.Category,
		clause.PolicyName,
		clause.Provider,
		formatVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert policy clause: %w", err)
	}

	return nil
}

// Count returns how many clauses the index holds.
func (r *ClauseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM policy_clauses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count policy clauses: %w", err)
	}
	return count, nil
}
