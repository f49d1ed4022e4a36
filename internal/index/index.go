// Package index holds an ephemeral in-process semantic retrieval index. It
// is rebuilt per dataset from the ingested conversation turns and ranks by
// cosine similarity with a full linear scan: the index never holds more
// than a few thousand entries, so O(n) scoring is cheap next to the
// embedding network calls that dominate latency.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/llm"
	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

type entry struct {
	content   string
	embedding []float32
}

// Index is NOT safe for concurrent use; the pipeline owns it exclusively.
type Index struct {
	embedder llm.Embedder
	entries  []entry
}

func New(embedder llm.Embedder) *Index {
	return &Index{embedder: embedder}
}

// AddTurns embeds and indexes conversation turns as "[speaker]: text"
// content strings. Returns the number of turns indexed.
func (ix *Index) AddTurns(ctx context.Context, turns []models.Turn) (int, error) {
	texts := make([]string, 0, len(turns))
	for _, turn := range turns {
		if turn.Text == "" {
			continue
		}
		speaker := turn.Speaker
		if speaker == "" {
			speaker = "unknown"
		}
		texts = append(texts, fmt.Sprintf("[%s]: %s", speaker, turn.Text))
	}
	if len(texts) == 0 {
		return 0, nil
	}

	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed turns: %w", err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d texts",
			len(embeddings), len(texts))
	}

	for i, text := range texts {
		ix.entries = append(ix.entries, entry{content: text, embedding: embeddings[i]})
	}
	metrics.IndexedEntries.Set(float64(len(ix.entries)))

	logger.Info("Indexed conversation turns",
		zap.Int("added", len(texts)),
		zap.Int("total", len(ix.entries)),
	)
	return len(texts), nil
}

// Search returns the contents of the limit most similar entries to the
// query, ranked descending by cosine similarity.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if len(ix.entries) == 0 || limit <= 0 {
		return nil, nil
	}

	queryEmbs, err := ix.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryEmbs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(queryEmbs))
	}
	queryEmb := queryEmbs[0]

	type scored struct {
		sim     float64
		content string
	}
	ranked := make([]scored, len(ix.entries))
	for i, e := range ix.entries {
		ranked[i] = scored{sim: cosineSimilarity(queryEmb, e.embedding), content: e.content}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].sim > ranked[j].sim })

	if limit > len(ranked) {
		limit = len(ranked)
	}
	results := make([]string, limit)
	for i := 0; i < limit; i++ {
		results[i] = ranked[i].content
	}
	return results, nil
}

// Clear drops all entries so the next dataset starts from an empty index.
func (ix *Index) Clear() {
	ix.entries = nil
	metrics.IndexedEntries.Set(0)
}

func (ix *Index) Size() int {
	return len(ix.entries)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
