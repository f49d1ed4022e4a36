package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"CORRECT", true},
		{"correct", true},
		{"  Correct.", true},
		{"CORRECT - the answers match", true},
		{"WRONG", false},
		{"wrong, the cities differ", false},
		{"Yes, that is right", true},
		{"The answer is wrong", false},
		{"", false},
		{"maybe", false},
		{"incorrect", false}, // must not match the "correct" suffix
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseVerdict(tc.content), "content=%q", tc.content)
	}
}

type scriptedChatter struct {
	content string
	err     error
}

func (s *scriptedChatter) Chat(context.Context, string, []Message, int) (string, error) {
	return s.content, s.err
}

func TestJudge(t *testing.T) {
	correct, explanation, err := Judge(context.Background(), &scriptedChatter{content: "CORRECT - same meaning"},
		"judge-model", nil, 100)
	require.NoError(t, err)
	assert.True(t, correct)
	assert.Equal(t, "CORRECT - same meaning", explanation)

	correct, _, err = Judge(context.Background(), &scriptedChatter{content: "WRONG"}, "judge-model", nil, 100)
	require.NoError(t, err)
	assert.False(t, correct)
}

// embeddingBackend answers /embeddings with one-element vectors derived
// from the input text ("text-42" embeds to [42]), deliberately listing the
// items in reverse so callers must honor the declared index field.
func embeddingBackend(t *testing.T, batchSizes *[]int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embeddings", r.URL.Path)

		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*batchSizes = append(*batchSizes, len(req.Input))

		type item struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			n, err := strconv.Atoi(strings.TrimPrefix(req.Input[i], "text-"))
			require.NoError(t, err)
			data = append(data, item{Object: "embedding", Index: i, Embedding: []float32{float32(n)}})
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  "embed-test",
		}))
	})
}

func TestEmbedBatchSplitsAndReorders(t *testing.T) {
	var batchSizes []int
	srv := httptest.NewServer(embeddingBackend(t, &batchSizes))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "embed-test", 5)

	texts := make([]string, 600)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	embeddings, err := client.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, embeddings, 600)

	// 600 inputs split into a full batch and a remainder.
	assert.Equal(t, []int{512, 88}, batchSizes)

	// Despite the shuffled responses, vectors line up with their texts.
	for i, emb := range embeddings {
		require.Len(t, emb, 1)
		require.Equal(t, float32(i), emb[0], "position %d", i)
	}
}

func TestEmbedBatchEmpty(t *testing.T) {
	var batchSizes []int
	srv := httptest.NewServer(embeddingBackend(t, &batchSizes))
	defer srv.Close()

	client := NewClient("test-key", srv.URL, "embed-test", 5)

	embeddings, err := client.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
	assert.Empty(t, batchSizes)
}

func TestJudgeError(t *testing.T) {
	_, _, err := Judge(context.Background(), &scriptedChatter{err: assert.AnError}, "judge-model", nil, 100)
	assert.Error(t, err)
}
