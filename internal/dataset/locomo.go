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

// locomoCategories maps LoCoMo's numeric category codes to named
// categories. Category 5 (adversarial) is unscorable and intentionally
// absent: its questions are excluded while its conversations still ingest.
var locomoCategories = map[int]string{
	1: "single_hop",
	2: "multi_hop",
	3: "temporal",
	4: "open_domain",
}

// LoCoMoParser parses locomo10.json (ACL 2024). Each entry carries a
// conversation as session_N keys plus a qa list with numeric categories.
type LoCoMoParser struct {
	// Subset is "all" or a specific conversation sample_id.
	Subset string
}

func (p *LoCoMoParser) Name() string { return models.DatasetLoCoMo }

func (p *LoCoMoParser) Parse(dataDir string) ([]models.ConversationRecord, []models.Question, error) {
	path := filepath.Join(dataDir, "locomo", "data", "locomo10.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: LoCoMo data expected at %s", ErrMissingData, path)
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse LoCoMo data: %w", err)
	}

	var conversations []models.ConversationRecord
	var questions []models.Question

	for _, conv := range entries {
		convID := coerceString(conv["sample_id"])
		if p.Subset != "" && p.Subset != "all" && convID != p.Subset {
			continue
		}

		turns := extractLocomoTurns(conv)
		if len(turns) > 0 {
			conversations = append(conversations, models.ConversationRecord{
				ID:    convID,
				Turns: turns,
			})
		}

		qaList, _ := conv["qa"].([]any)
		for i, item := range qaList {
			qa, ok := item.(map[string]any)
			if !ok {
				continue
			}
			catID, ok := coerceInt(qa["category"])
			if !ok {
				continue
			}
			category, scorable := locomoCategories[catID]
			if !scorable {
				continue
			}

			questionText := coerceString(qa["question"])
			answerText := coerceString(qa["answer"])
			if questionText == "" || answerText == "" {
				continue
			}

			questions = append(questions, models.Question{
				ID:             fmt.Sprintf("locomo_%s_q%d", convID, i),
				Dataset:        models.DatasetLoCoMo,
				Category:       category,
				Text:           questionText,
				GoldAnswer:     answerText,
				ConversationID: convID,
				Metadata: map[string]string{
					"category_id": strconv.Itoa(catID),
				},
			})
		}
	}

	logger.Info("LoCoMo parsed",
		zap.Int("conversations", len(conversations)),
		zap.Int("questions", len(questions)),
	)
	return conversations, questions, nil
}

// decodeEntries accepts either a top-level array or an object whose values
// are the entries; LoCoMo releases have shipped both.
func decodeEntries(raw []byte) ([]map[string]any, error) {
	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList, nil
	}

	var asMap map[string]map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(asMap))
	for k := range asMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]map[string]any, 0, len(asMap))
	for _, k := range keys {
		entries = append(entries, asMap[k])
	}
	return entries, nil
}

// extractLocomoTurns flattens the session_N keys of a conversation in
// numeric session order. Session numbers are unbounded integers embedded in
// string keys, so lexicographic ordering would put session_10 before
// session_2.
func extractLocomoTurns(conv map[string]any) []models.Turn {
	convData, ok := conv["conversation"].(map[string]any)
	if !ok {
		return nil
	}

	type session struct {
		num int
		key string
	}
	var sessions []session
	for key := range convData {
		if !strings.HasPrefix(key, "session_") || strings.HasSuffix(key, "_date_time") {
			continue
		}
		num, err := strconv.Atoi(strings.TrimPrefix(key, "session_"))
		if err != nil {
			num = 0
		}
		sessions = append(sessions, session{num: num, key: key})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].num < sessions[j].num })

	var turns []models.Turn
	for _, sess := range sessions {
		sessionID := strings.TrimPrefix(sess.key, "session_")
		timestamp := coerceString(convData[sess.key+"_date_time"])

		rawTurns, ok := convData[sess.key].([]any)
		if !ok {
			continue
		}
		for _, item := range rawTurns {
			turn, ok := item.(map[string]any)
			if !ok {
				continue
			}
			text := coerceString(turn["text"])
			if text == "" {
				continue
			}
			speaker := coerceString(turn["speaker"])
			if speaker == "" {
				speaker = "unknown"
			}
			turns = append(turns, models.Turn{
				Speaker:   speaker,
				Text:      text,
				SessionID: sessionID,
				Timestamp: timestamp,
			})
		}
	}
	return turns
}
