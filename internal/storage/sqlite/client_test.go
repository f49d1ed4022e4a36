package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membench/membench/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.InitSchema())
	return client
}

func TestInsertAndListRunResults(t *testing.T) {
	client := newTestClient(t)

	require.NoError(t, client.InsertRunResult("run-1", &models.BenchmarkResult{
		Dataset:        models.DatasetLoCoMo,
		Accuracy:       72.5,
		Correct:        29,
		TotalQuestions: 40,
	}))
	require.NoError(t, client.InsertRunResult("run-1", &models.BenchmarkResult{
		Dataset:        models.DatasetTOFU,
		Accuracy:       50.0,
		Correct:        20,
		TotalQuestions: 40,
	}))

	records, err := client.ListRunResults(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first; both share a timestamp so the tiebreak is insert order.
	assert.Equal(t, models.DatasetTOFU, records[0].Dataset)
	assert.Equal(t, "run-1", records[0].RunID)
	assert.InDelta(t, 50.0, records[0].Accuracy, 1e-9)
	assert.Equal(t, 40, records[0].TotalQuestions)
}

func TestListRunResultsLimit(t *testing.T) {
	client := newTestClient(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, client.InsertRunResult("run-x", &models.BenchmarkResult{
			Dataset: models.DatasetLoCoMo,
		}))
	}

	records, err := client.ListRunResults(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Non-positive limit falls back to the default instead of returning
	// nothing.
	records, err = client.ListRunResults(0)
	require.NoError(t, err)
	assert.Len(t, records, 5)
}

func TestListRunResultsEmpty(t *testing.T) {
	client := newTestClient(t)

	records, err := client.ListRunResults(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestInitSchemaIdempotent(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.InitSchema())
}
