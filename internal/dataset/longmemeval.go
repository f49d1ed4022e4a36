package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

// longMemEvalTypes maps the dataset's question_type labels to category
// names used in reports.
var longMemEvalTypes = map[string]string{
	"single-session-user":       "information_extraction",
	"single-session-assistant":  "information_extraction",
	"single-session-preference": "information_extraction",
	"multi-session":             "multi_session",
	"temporal-reasoning":        "temporal_reasoning",
	"knowledge-update":          "knowledge_update",
}

// LongMemEvalParser parses the LongMemEval dataset (ICLR 2025). Each entry
// carries a question plus haystack sessions to ingest.
type LongMemEvalParser struct {
	// Split is "S" for the small subset or "full".
	Split string
}

type longMemEvalEntry struct {
	QuestionID       string       `json:"question_id"`
	QuestionType     string       `json:"question_type"`
	Question         string       `json:"question"`
	Answer           any          `json:"answer"`
	QuestionDate     string       `json:"question_date"`
	HaystackSessions [][]lmeTurn  `json:"haystack_sessions"`
	HaystackDates    []string     `json:"haystack_dates"`
}

type lmeTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *LongMemEvalParser) Name() string { return models.DatasetLongMemEval }

func (p *LongMemEvalParser) Parse(dataDir string) ([]models.ConversationRecord, []models.Question, error) {
	base := filepath.Join(dataDir, "longmemeval")
	dataFile := p.findDataFile(base)
	if dataFile == "" {
		return nil, nil, fmt.Errorf("%w: LongMemEval data expected under %s", ErrMissingData, base)
	}

	raw, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read LongMemEval data: %w", err)
	}

	var entries []longMemEvalEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var single longMemEvalEntry
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, nil, fmt.Errorf("failed to parse LongMemEval data: %w", err)
		}
		entries = []longMemEvalEntry{single}
	}

	var conversations []models.ConversationRecord
	var questions []models.Question

	for _, entry := range entries {
		qID := "lme_" + entry.QuestionID

		turns := flattenSessions(entry.HaystackSessions, entry.HaystackDates)
		if len(turns) > 0 {
			conversations = append(conversations, models.ConversationRecord{
				ID:    qID,
				Turns: turns,
			})
		}

		category := longMemEvalTypes[entry.QuestionType]
		if category == "" {
			category = entry.QuestionType
		}
		// Abstention items are marked by a question_id suffix, not a type.
		if strings.HasSuffix(entry.QuestionID, "_abs") {
			category = "abstention"
		}

		questions = append(questions, models.Question{
			ID:             qID,
			Dataset:        models.DatasetLongMemEval,
			Category:       category,
			Text:           entry.Question,
			GoldAnswer:     coerceString(entry.Answer),
			ConversationID: qID,
			Metadata: map[string]string{
				"question_type": entry.QuestionType,
				"question_date": entry.QuestionDate,
				"split":         p.Split,
			},
		})
	}

	logger.Info("LongMemEval parsed",
		zap.String("split", p.Split),
		zap.Int("conversations", len(conversations)),
		zap.Int("questions", len(questions)),
	)
	return conversations, questions, nil
}

// findDataFile locates the JSON file for the requested split, preferring
// split-specific names and falling back to any JSON file present.
func (p *LongMemEvalParser) findDataFile(base string) string {
	searchDirs := []string{filepath.Join(base, "data"), base}

	for _, dir := range searchDirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		if p.Split == "S" {
			for _, pattern := range []string{"longmemeval_s_cleaned.json", "*_s_*.json", "*_S*.json"} {
				if match := firstGlob(dir, pattern); match != "" {
					return match
				}
			}
		}
		for _, pattern := range []string{"longmemeval_m_cleaned.json", "*_m_*.json", "longmemeval_oracle.json"} {
			if match := firstGlob(dir, pattern); match != "" {
				return match
			}
		}
		if match := firstGlob(dir, "*.json"); match != "" {
			return match
		}
	}
	return ""
}

func firstGlob(dir, pattern string) string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func flattenSessions(haystack [][]lmeTurn, dates []string) []models.Turn {
	var turns []models.Turn
	for sessIdx, session := range haystack {
		timestamp := ""
		if sessIdx < len(dates) {
			timestamp = dates[sessIdx]
		}
		for _, turn := range session {
			if turn.Content == "" {
				continue
			}
			role := turn.Role
			if role == "" {
				role = "user"
			}
			turns = append(turns, models.Turn{
				Speaker:   role,
				Text:      turn.Content,
				SessionID: strconv.Itoa(sessIdx),
				Timestamp: timestamp,
			})
		}
	}
	return turns
}
