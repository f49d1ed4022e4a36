package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/config"
)

func TestForName(t *testing.T) {
	cfg := config.DatasetsConfig{
		LocomoSubset:     "all",
		LongMemEvalSplit: "S",
		TOFUForgetPct:    10,
	}

	for _, name := range []string{models.DatasetLoCoMo, models.DatasetLongMemEval, models.DatasetTOFU} {
		parser, err := ForName(name, cfg)
		require.NoError(t, err, name)
		assert.Equal(t, name, parser.Name())
	}

	_, err := ForName("hotpotqa", cfg)
	assert.Error(t, err)
}

func TestCoerceString(t *testing.T) {
	assert.Equal(t, "", coerceString(nil))
	assert.Equal(t, "hello", coerceString("hello"))
	assert.Equal(t, "42", coerceString(float64(42)))
	assert.Equal(t, "3.5", coerceString(3.5))
	assert.Equal(t, "true", coerceString(true))
}

func TestCoerceInt(t *testing.T) {
	n, ok := coerceInt(float64(3))
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = coerceInt("7")
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = coerceInt("not a number")
	assert.False(t, ok)

	_, ok = coerceInt(nil)
	assert.False(t, ok)
}
