package repository

import (
	"context"
	"fmt"

	"claimsight-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentChunkRepository handles database operations for document chunks.
type DocumentChunkRepository struct {
	db *pgxpool.Pool
}

// NewDocumentChunkRepository creates a new document chunk repository.
func NewDocumentChunkRepository(db *pgxpool.Pool) *DocumentChunkRepository {
	return &DocumentChunkRepository{db: db}
}

// StoreChunks upserts a document's chunks with their embeddings. Chunks are
// keyed by (doc_id, chunk_index) so re-processing the same document replaces
// its rows instead of duplicating them. Lengths of chunks and embeddings must
// match.
func (r *DocumentChunkRepository) StoreChunks(ctx context.Context, chunks []models.DocumentChunk, embeddings [][]float64) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("got %d chunks but %d embeddings", len(chunks), len(embeddings))
	}

	query := `
		INSERT INTO document_chunks (id, doc_id, doc_title, chunk_index, chunk_text, chunk_length, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7::vector)
		ON CONFLICT (doc_id, chunk_index) DO UPDATE SET
			doc_title = EXCLUDED.doc_title,
			chunk_text = EXCLUDED.chunk_text,
			chunk_length = EXCLUDED.chunk_length,
			embedding = EXCLUDED.embedding`

	for i, chunk := range chunks {
		if len(embeddings[i]) != 768 {
			return fmt.Errorf("embedding for chunk %d must be 768 dimensions, got %d", i, len(embeddings[i]))
		}

		id := chunk.ID
		if id == uuid.Nil {
			id = uuid.New()
		}

		_, err := r.db.Exec(ctx, query,
			id,
			chunk.DocID,
			chunk.DocTitle,
			chunk.ChunkIndex,
			chunk.Text,
			chunk.ChunkLength,
			formatVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to store chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	return nil
}

// Search returns the topK chunks of one document nearest to the query
// embedding, ordered by descending similarity.
func (r *DocumentChunkRepository) Search(ctx context.Context, docID string, embedding []float64, topK int) ([]models.DocumentChunk, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			doc_id,
			doc_title,
			chunk_index,
			chunk_text,
			chunk_length,
			1 - (embedding <=> $1::vector) AS similarity
		FROM document_chunks
		WHERE doc_id = $2
		ORDER BY
			embedding <=> $1::vector
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, vectorStr, docID, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var chunk models.DocumentChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.DocTitle,
			&chunk.ChunkIndex,
			&chunk.Text,
			&chunk.ChunkLength,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document chunks: %w", err)
	}

	return chunks, nil
}

// DeleteByDoc removes every chunk stored for a document.
func (r *DocumentChunkRepository) DeleteByDoc(ctx context.Context, docID string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM document_chunks WHERE doc_id = $1", docID)
	if err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}
