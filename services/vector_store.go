package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

const (
	ChunkSize        = 1000
	ChunkOverlap     = 200
	SearchTopK       = 5
	embedBatchSize   = 64
	contextSeparator = "\n\n---\n\n"
)

// chunkSchema holds the embeddings; it lives outside GORM because pgvector
// columns and the <=> operator are easier to drive through pgx directly.
const chunkSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS document_chunks (
	id          BIGSERIAL PRIMARY KEY,
	document_id UUID NOT NULL,
	chunk_index INT NOT NULL,
	content     TEXT NOT NULL,
	embedding   vector(768) NOT NULL,
	UNIQUE (document_id, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_document_chunks_document_id ON document_chunks (document_id);
`

// SearchResult is one retrieved chunk with its cosine similarity score
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// VectorStore indexes document text as embedded chunks and retrieves the
// most relevant ones for a query.
type VectorStore struct {
	pool   *pgxpool.Pool
	gemini *GeminiService
}

func NewVectorStore(pool *pgxpool.Pool, gemini *GeminiService) *VectorStore {
	return &VectorStore{pool: pool, gemini: gemini}
}

// EnsureSchema creates the vector extension and chunk table
func (s *VectorStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, chunkSchema); err != nil {
		return fmt.Errorf("failed to create chunk schema: %w", err)
	}
	return nil
}

// IndexDocument chunks the text, embeds each chunk and upserts the vectors.
// Any previous chunks for the document are replaced. Returns the chunk count.
func (s *VectorStore) IndexDocument(ctx context.Context, documentID, text string) (int, error) {
	chunks := ChunkText(text, ChunkSize, ChunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document has no indexable text")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin indexing: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return 0, fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		embeddings, err := s.gemini.EmbedTexts(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunks: %w", err)
		}

		for i, embedding := range embeddings {
			_, err := tx.Exec(ctx,
				`INSERT INTO document_chunks (document_id, chunk_index, content, embedding)
				 VALUES ($1, $2, $3, $4)`,
				documentID, start+i, batch[i], pgvector.NewVector(embedding))
			if err != nil {
				return 0, fmt.Errorf("failed to store chunk %d: %w", start+i, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit indexing: %w", err)
	}

	slog.Info("Document indexed", "document_id", documentID, "chunks", len(chunks))
	return len(chunks), nil
}

// Search embeds the query and returns the topK most similar chunks of the
// document, ordered by cosine similarity.
func (s *VectorStore) Search(ctx context.Context, documentID, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = SearchTopK
	}

	embedding, err := s.gemini.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT document_id, chunk_index, content, 1 - (embedding <=> $2) AS score
		 FROM document_chunks
		 WHERE document_id = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		documentID, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocumentID, &r.ChunkIndex, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ContextForGeneration retrieves the chunks most relevant to the query and
// joins them into one context block for the chatbot.
func (s *VectorStore) ContextForGeneration(ctx context.Context, documentID, query string) (string, error) {
	results, err := s.Search(ctx, documentID, query, SearchTopK)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, contextSeparator), nil
}

// RemoveDocument deletes all chunks for a document
func (s *VectorStore) RemoveDocument(ctx context.Context, documentID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to remove document chunks: %w", err)
	}
	return nil
}

// ChunkText splits text into overlapping chunks, preferring paragraph then
// sentence boundaries near the cut point.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = ChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := findSplitPoint(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findSplitPoint walks back from end looking for a paragraph break, then a
// sentence end, then any whitespace, within the last quarter of the window.
func findSplitPoint(runes []rune, start, end int) int {
	limit := end - (end-start)/4

	for i := end; i > limit; i-- {
		if i < len(runes) && runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i
		}
	}
	for i := end; i > limit; i-- {
		if i < len(runes) && (runes[i-1] == '.' || runes[i-1] == '!' || runes[i-1] == '?') {
			return i
		}
	}
	for i := end; i > limit; i-- {
		if i < len(runes) && (runes[i] == ' ' || runes[i] == '\n') {
			return i
		}
	}
	return end
}
