// Package dataset normalizes each benchmark's native schema into the
// uniform ConversationRecord and Question shapes. A dataset's parser is the
// only code allowed to interpret its raw structures.
package dataset

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/config"
)

// ErrMissingData marks an operator-fixable setup error: a required source
// file is absent. Never retried.
var ErrMissingData = errors.New("dataset not found")

// Parser converts one benchmark's raw files into conversations to ingest
// and questions to evaluate.
type Parser interface {
	Name() string
	Parse(dataDir string) ([]models.ConversationRecord, []models.Question, error)
}

// ForName returns the parser for a dataset name, configured from cfg.
func ForName(name string, cfg config.DatasetsConfig) (Parser, error) {
	switch name {
	case models.DatasetLoCoMo:
		return &LoCoMoParser{Subset: cfg.LocomoSubset}, nil
	case models.DatasetLongMemEval:
		return &LongMemEvalParser{Split: cfg.LongMemEvalSplit}, nil
	case models.DatasetTOFU:
		return &TOFUParser{ForgetPct: cfg.TOFUForgetPct}, nil
	default:
		return nil, fmt.Errorf("unknown dataset: %s", name)
	}
}

// coerceString renders a raw JSON value as text. Dataset files are loose
// about types; answers in particular can arrive as numbers.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceInt extracts an integer from a raw JSON value, tolerating numeric
// strings. The second return is false when no integer can be read.
func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
