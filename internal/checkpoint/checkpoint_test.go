package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t)

	saved := record{QuestionID: "locomo_1_q0", Answer: "blue"}
	require.NoError(t, store.Save("locomo", "answer_locomo_1_q0", saved))

	var loaded record
	found, err := store.Load("locomo", "answer_locomo_1_q0", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, loaded)
}

func TestLoadMissing(t *testing.T) {
	store := newStore(t)

	var loaded record
	found, err := store.Load("locomo", "answer_never_saved", &loaded)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIsDone(t *testing.T) {
	store := newStore(t)

	assert.False(t, store.IsDone("tofu", "ingest_tofu_author_000"))
	require.NoError(t, store.Save("tofu", "ingest_tofu_author_000", record{}))
	assert.True(t, store.IsDone("tofu", "ingest_tofu_author_000"))
}

func TestAllSkipsCorruptAndReserved(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("locomo", "answer_q1", record{QuestionID: "q1"}))
	require.NoError(t, store.Save("locomo", "answer_q2", record{QuestionID: "q2"}))

	dir := filepath.Join(store.Root(), "locomo")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte(`{"generated_at":"x"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.md"), []byte("# report"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	records, err := store.All("locomo")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAllMissingDataset(t *testing.T) {
	store := newStore(t)

	records, err := store.All("longmemeval")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClearPreservesReports(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("locomo", "answer_q1", record{}))
	require.NoError(t, store.Save("locomo", "judge_q1", record{}))

	dir := filepath.Join(store.Root(), "locomo")
	reportPath := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(reportPath, []byte(`{}`), 0o644))

	removed, err := store.Clear("locomo")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(reportPath)
	assert.NoError(t, err)

	assert.False(t, store.IsDone("locomo", "answer_q1"))
}

func TestClearMissingDataset(t *testing.T) {
	store := newStore(t)

	removed, err := store.Clear("tofu")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestKeySanitization(t *testing.T) {
	store := newStore(t)

	// Hostile key components must not escape the results root.
	require.NoError(t, store.Save("../evil", "../../etc/passwd", record{QuestionID: "x"}))

	var loaded record
	found, err := store.Load("../evil", "../../etc/passwd", &loaded)
	require.NoError(t, err)
	assert.True(t, found)

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "..")
	}
	_, err = os.Stat(filepath.Join(filepath.Dir(store.Root()), "evil"))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveIsAtomicOverwrite(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Save("locomo", "answer_q1", record{Answer: "first"}))
	require.NoError(t, store.Save("locomo", "answer_q1", record{Answer: "second"}))

	var loaded record
	found, err := store.Load("locomo", "answer_q1", &loaded)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", loaded.Answer)

	// No temp file litter after the rename.
	entries, err := os.ReadDir(filepath.Join(store.Root(), "locomo"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
