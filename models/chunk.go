package models

import (
	"github.com/google/uuid"
)

// Chunk is a bounded, possibly overlapping span of cleaned document text.
// Offsets refer to the cleaned text the splitter ran over, not the raw
// source. Chunks are produced in document order and never reordered.
type Chunk struct {
	Text        string `json:"text"`
	StartOffset int    `json:"start_offset"`
	Length      int    `json:"length"`
}

// DocumentChunk is a chunk persisted to the vector index together with its
// embedding and retrieval metadata.
type DocumentChunk struct {
	ID          uuid.UUID `json:"id"`
	DocID       string    `json:"doc_id"`
	DocTitle    string    `json:"doc_title"`
	ChunkIndex  int       `json:"chunk_index"`
	Text        string    `json:"text"`
	ChunkLength int       `json:"chunk_length"`
	Similarity  float64   `json:"similarity,omitempty"`
}

// Document is a fetched source document after text extraction.
type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	SourceURL   string `json:"source_url"`
	StoragePath string `json:"storage_path,omitempty"`
}
