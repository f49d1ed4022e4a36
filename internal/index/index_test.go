package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membench/membench/internal/models"
)

// fakeEmbedder returns fixed vectors by content lookup so similarity
// rankings are fully controlled by the test.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out[i] = vec
	}
	return out, nil
}

func TestAddTurnsFormatsContent(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	ix := New(embedder)

	added, err := ix.AddTurns(context.Background(), []models.Turn{
		{Speaker: "alice", Text: "hello"},
		{Speaker: "", Text: "hi there"},
		{Speaker: "bob", Text: ""}, // empty text dropped
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 2, ix.Size())
	assert.Equal(t, 1, embedder.calls)

	results, err := ix.Search(context.Background(), "anything", 10)
	require.NoError(t, err)
	assert.Contains(t, results, "[alice]: hello")
	assert.Contains(t, results, "[unknown]: hi there")
}

func TestSearchRanksBySimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"[a]: pottery class":  {1, 0, 0},
		"[b]: moved to town":  {0, 1, 0},
		"[c]: pottery wheel":  {0.9, 0.1, 0},
		"pottery":             {1, 0, 0},
	}}
	ix := New(embedder)

	_, err := ix.AddTurns(context.Background(), []models.Turn{
		{Speaker: "a", Text: "pottery class"},
		{Speaker: "b", Text: "moved to town"},
		{Speaker: "c", Text: "pottery wheel"},
	})
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), "pottery", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "[a]: pottery class", results[0])
	assert.Equal(t, "[c]: pottery wheel", results[1])
}

func TestSearchLimitExceedsSize(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	ix := New(embedder)

	_, err := ix.AddTurns(context.Background(), []models.Turn{{Speaker: "a", Text: "one"}})
	require.NoError(t, err)

	results, err := ix.Search(context.Background(), "one", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := New(&fakeEmbedder{})

	results, err := ix.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClear(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	ix := New(embedder)

	_, err := ix.AddTurns(context.Background(), []models.Turn{{Speaker: "a", Text: "one"}})
	require.NoError(t, err)
	require.Equal(t, 1, ix.Size())

	ix.Clear()
	assert.Zero(t, ix.Size())

	results, err := ix.Search(context.Background(), "one", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddTurnsEmbedderFailure(t *testing.T) {
	ix := New(&fakeEmbedder{err: errors.New("quota exceeded")})

	_, err := ix.AddTurns(context.Background(), []models.Turn{{Speaker: "a", Text: "one"}})
	require.Error(t, err)
	assert.Zero(t, ix.Size())
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Zero-norm vectors score 0 instead of dividing by zero.
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	// Mismatched dimensions score 0.
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 0}))
}
