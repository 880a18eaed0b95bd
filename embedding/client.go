package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

const (
	embedAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"
	batchEmbedAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"

	// Dimensions is the embedding width every vector column in the schema
	// is declared with.
	Dimensions = 768

	// BatchSize bounds how many texts go into one batch request.
	BatchSize = 8

	maxRetries     = 3
	initialBackoff = time.Second
)

// Request is an embedContent API request.
type Request struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput wraps the text parts of an embedding request.
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput is a single text part.
type PartInput struct {
	Text string `json:"text"`
}

// Response is an embedContent API response.
type Response struct {
	Embedding Data `json:"embedding"`
}

// Data carries the embedding values.
type Data struct {
	Values []float64 `json:"values"`
}

type batchRequest struct {
	Requests []Request `json:"requests"`
}

// batchItem is the batch API's per-text result; unlike the single endpoint
// it has no nested "embedding" key.
type batchItem struct {
	Values []float64 `json:"values"`
}

type batchResponse struct {
	Embeddings []batchItem `json:"embeddings"`
}

// Client calls the Gemini embedding REST API.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an embedding client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbedQuery embeds a retrieval query and returns a normalized vector.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return c.embed(ctx, text, "RETRIEVAL_QUERY")
}

// EmbedDocument embeds a single document passage.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return c.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (c *Client) embed(ctx context.Context, text, taskType string) ([]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := Request{
		Model:                "models/gemini-embedding-001",
		Content:              ContentInput{Parts: []PartInput{{Text: text}}},
		TaskType:             taskType,
		OutputDimensionality: Dimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embedAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp Response
			err := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if err != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			return Normalize(apiResp.Embedding.Values), nil
		}

		resp.Body.Close()

		// Client errors will not heal on retry.
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("embedding request exhausted retries")
}

// EmbedDocuments embeds texts through the batch endpoint, BatchSize at a
// time, preserving input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float64, 0, len(texts))
	for i := 0; i < len(texts); i += BatchSize {
		end := i + BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := c.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch starting at %d: %w", i, err)
		}
		all = append(all, embeddings...)
	}

	return all, nil
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	requests := make([]Request, 0, len(texts))
	for _, text := range texts {
		requests = append(requests, Request{
			Model:                "models/gemini-embedding-001",
			Content:              ContentInput{Parts: []PartInput{{Text: text}}},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: Dimensions,
		})
	}

	jsonData, err := json.Marshal(batchRequest{Requests: requests})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", batchEmbedAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send batch after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp batchResponse
			err := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if err != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode batch response: %w", err)
				}
				continue
			}
			if len(apiResp.Embeddings) != len(texts) {
				return nil, fmt.Errorf("batch returned %d embeddings for %d texts", len(apiResp.Embeddings), len(texts))
			}
			out := make([][]float64, 0, len(texts))
			for _, item := range apiResp.Embeddings {
				out = append(out, Normalize(item.Values))
			}
			return out, nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}
		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("batch embedding request exhausted retries")
}

// Normalize scales a vector to unit L2 length. Cosine distance in the index
// assumes unit vectors on both sides.
func Normalize(values []float64) []float64 {
	norm := 0.0
	for _, v := range values {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range values {
			values[i] /= norm
		}
	}
	return values
}
