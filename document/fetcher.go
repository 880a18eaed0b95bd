package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"claimsight-backend/models"
	"claimsight-backend/storage"
)

const (
	// MaxDocumentBytes bounds how large a fetched payload may be.
	MaxDocumentBytes = 20 * 1024 * 1024

	fetchTimeout = 25 * time.Second

	// userAgent mirrors a desktop browser; some document hosts refuse
	// default Go client requests.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

var (
	whitespaceRunRe = regexp.MustCompile(`\s+`)
	wordBoundaryRe  = regexp.MustCompile(`([a-z])([A-Z])`)
	sentenceGapRe   = regexp.MustCompile(`(\.)([A-Z])`)
)

// Fetcher downloads source documents and archives the raw payload before the
// pipeline processes it.
type Fetcher struct {
	httpClient *http.Client
	archive    storage.Storage
}

// NewFetcher creates a fetcher. The archive may be nil, in which case payloads
// are processed without being retained.
func NewFetcher(archive storage.Storage) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
		archive:    archive,
	}
}

// Fetch downloads the document at docURL, archives the raw payload, and
// returns the document with cleaned text. The payload must be text; binary
// formats are extracted upstream before they reach this service.
func (f *Fetcher) Fetch(ctx context.Context, docURL string) (*models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", docURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document fetch returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > MaxDocumentBytes {
		return nil, fmt.Errorf("document too large: %d bytes", resp.ContentLength)
	}

	// Content-Length can lie or be absent, so the read is capped too.
	payload, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	if len(payload) > MaxDocumentBytes {
		return nil, fmt.Errorf("document too large: exceeds %d bytes", MaxDocumentBytes)
	}

	docID := idForURL(docURL)
	title := titleFromURL(docURL)

	doc := &models.Document{
		ID:        docID,
		Title:     title,
		Text:      CleanText(string(payload)),
		SourceURL: docURL,
	}

	if f.archive != nil {
		storagePath, err := f.archive.Put(ctx, docID, title, bytes.NewReader(payload))
		if err != nil {
			// Archiving is best effort; processing continues on the
			// in-memory payload.
			log.Printf("Warning: failed to archive document %s: %v", docID, err)
		} else {
			doc.StoragePath = storagePath
		}
	}

	return doc, nil
}

// idForURL derives a stable document ID from the source URL so re-processing
// the same document replaces its stored chunks.
func idForURL(docURL string) string {
	sum := sha256.Sum256([]byte(docURL))
	return hex.EncodeToString(sum[:8])
}

// titleFromURL takes the URL path basename, stripped of its extension.
func titleFromURL(docURL string) string {
	parsed, err := url.Parse(docURL)
	if err != nil {
		return "Unknown Document"
	}
	base := path.Base(parsed.Path)
	if base == "" || base == "." || base == "/" {
		return "Unknown Document"
	}
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" {
		return "Unknown Document"
	}
	return base
}

// CleanText normalizes extracted document text: whitespace runs collapse to
// one space, and word or sentence boundaries lost during extraction get their
// space back.
func CleanText(text string) string {
	text = whitespaceRunRe.ReplaceAllString(text, " ")
	text = wordBoundaryRe.ReplaceAllString(text, "$1 $2")
	text = sentenceGapRe.ReplaceAllString(text, "$1 $2")
	return strings.TrimSpace(text)
}
