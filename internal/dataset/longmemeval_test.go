package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membench/membench/internal/models"
)

const longMemEvalFixture = `[
  {
    "question_id": "q-100",
    "question_type": "multi-session",
    "question": "Which two cities did I mention moving to?",
    "answer": "Lisbon and Porto",
    "question_date": "2023/06/01",
    "haystack_sessions": [
      [
        {"role": "user", "content": "I might move to Lisbon"},
        {"role": "assistant", "content": "Lisbon is lovely"}
      ],
      [
        {"role": "user", "content": "Actually, Porto is also an option"},
        {"role": "", "content": "role defaults to user"},
        {"role": "assistant", "content": ""}
      ]
    ],
    "haystack_dates": ["2023/05/01", "2023/05/20"]
  },
  {
    "question_id": "q-200_abs",
    "question_type": "single-session-user",
    "question": "What is my dog's name?",
    "answer": "No information available",
    "question_date": "2023/07/01",
    "haystack_sessions": [],
    "haystack_dates": []
  }
]`

func writeLongMemEvalFixture(t *testing.T, name string) string {
	t.Helper()
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "longmemeval", "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(longMemEvalFixture), 0o644))
	return dataDir
}

func TestLongMemEvalParse(t *testing.T) {
	parser := &LongMemEvalParser{Split: "S"}
	conversations, questions, err := parser.Parse(writeLongMemEvalFixture(t, "longmemeval_s_cleaned.json"))
	require.NoError(t, err)

	// Only the entry with haystack sessions yields a conversation.
	require.Len(t, conversations, 1)
	assert.Equal(t, "lme_q-100", conversations[0].ID)

	turns := conversations[0].Turns
	require.Len(t, turns, 4) // empty-content turn dropped
	assert.Equal(t, "0", turns[0].SessionID)
	assert.Equal(t, "2023/05/01", turns[0].Timestamp)
	assert.Equal(t, "1", turns[2].SessionID)
	assert.Equal(t, "user", turns[3].Speaker) // empty role falls back

	require.Len(t, questions, 2)
	assert.Equal(t, "lme_q-100", questions[0].ID)
	assert.Equal(t, "multi_session", questions[0].Category)
	assert.Equal(t, "multi-session", questions[0].Metadata["question_type"])
	assert.Equal(t, models.DatasetLongMemEval, questions[0].Dataset)
}

func TestLongMemEvalAbstentionSuffix(t *testing.T) {
	parser := &LongMemEvalParser{Split: "S"}
	_, questions, err := parser.Parse(writeLongMemEvalFixture(t, "longmemeval_s_cleaned.json"))
	require.NoError(t, err)

	// question_id ending in _abs overrides the question_type category.
	assert.Equal(t, "abstention", questions[1].Category)
	assert.Equal(t, "single-session-user", questions[1].Metadata["question_type"])
}

func TestLongMemEvalFallbackFileDiscovery(t *testing.T) {
	parser := &LongMemEvalParser{Split: "S"}
	_, questions, err := parser.Parse(writeLongMemEvalFixture(t, "some_custom_dump.json"))
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestLongMemEvalDataFileInBaseDir(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "longmemeval")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "longmemeval_oracle.json"), []byte(longMemEvalFixture), 0o644))

	parser := &LongMemEvalParser{Split: "full"}
	_, questions, err := parser.Parse(dataDir)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestLongMemEvalMissingData(t *testing.T) {
	parser := &LongMemEvalParser{Split: "S"}
	_, _, err := parser.Parse(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingData)
}

func TestLongMemEvalTypeMapping(t *testing.T) {
	cases := map[string]string{
		"single-session-user":       "information_extraction",
		"single-session-assistant":  "information_extraction",
		"single-session-preference": "information_extraction",
		"multi-session":             "multi_session",
		"temporal-reasoning":        "temporal_reasoning",
		"knowledge-update":          "knowledge_update",
	}
	for raw, want := range cases {
		assert.Equal(t, want, longMemEvalTypes[raw], raw)
	}
}
