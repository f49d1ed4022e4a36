package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

// TOFU ships 4000 QA pairs about 200 fictitious authors, 20 QA each.
// Grouping into fixed blocks of 20 approximates per-author profiles.
const tofuBlockSize = 20

// TOFUParser parses the TOFU selective-forgetting benchmark. Profiles are
// partitioned into a forget set (the first N% of blocks) and a retain set;
// the split depends only on the percentage and block size, so repeated
// parses of the same source agree.
type TOFUParser struct {
	// ForgetPct is the percentage of profiles labeled "forget", clamped
	// to [1, 50].
	ForgetPct int
}

type tofuEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (p *TOFUParser) Name() string { return models.DatasetTOFU }

func (p *TOFUParser) Parse(dataDir string) ([]models.ConversationRecord, []models.Question, error) {
	forgetPct := p.ForgetPct
	if forgetPct < 1 {
		forgetPct = 1
	}
	if forgetPct > 50 {
		forgetPct = 50
	}

	base := filepath.Join(dataDir, "tofu")
	entries, err := loadTOFUEntries(base)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: TOFU data expected under %s", ErrMissingData, base)
	}

	blockSize := tofuBlockSize
	numBlocks := len(entries) / blockSize
	if numBlocks == 0 {
		numBlocks = 1
		blockSize = len(entries)
	}

	forgetCount := numBlocks * forgetPct / 100
	if forgetCount < 1 {
		forgetCount = 1
	}

	var profiles []models.ConversationRecord
	var questions []models.Question

	for blockIdx := 0; blockIdx < numBlocks; blockIdx++ {
		start := blockIdx * blockSize
		end := start + blockSize
		if end > len(entries) {
			end = len(entries)
		}
		block := entries[start:end]
		if len(block) == 0 {
			continue
		}

		authorID := fmt.Sprintf("author_%03d", blockIdx)
		category := "retain"
		if blockIdx < forgetCount {
			category = "forget"
		}

		profileLines := []string{fmt.Sprintf("Profile of %s:", authorID)}
		for _, qa := range block {
			if qa.Question == "" || qa.Answer == "" {
				continue
			}
			profileLines = append(profileLines, "Q: "+qa.Question, "A: "+qa.Answer)
		}

		profiles = append(profiles, models.ConversationRecord{
			ID: "tofu_" + authorID,
			Turns: []models.Turn{{
				Speaker:   "system",
				Text:      strings.Join(profileLines, "\n"),
				SessionID: "0",
			}},
			Metadata: map[string]string{
				"author":   authorID,
				"category": category,
			},
		})

		for i, qa := range block {
			if qa.Question == "" || qa.Answer == "" {
				continue
			}
			questions = append(questions, models.Question{
				ID:             fmt.Sprintf("tofu_%s_q%d", authorID, i),
				Dataset:        models.DatasetTOFU,
				Category:       category,
				Text:           qa.Question,
				GoldAnswer:     qa.Answer,
				ConversationID: "tofu_" + authorID,
				Metadata:       map[string]string{"author": authorID},
			})
		}
	}

	logger.Info("TOFU parsed",
		zap.Int("profiles", len(profiles)),
		zap.Int("forget", forgetCount),
		zap.Int("retain", len(profiles)-forgetCount),
		zap.Int("questions", len(questions)),
	)
	return profiles, questions, nil
}

// loadTOFUEntries reads the first JSON or JSONL file found under the base
// directory or its train/ subdirectory.
func loadTOFUEntries(base string) ([]tofuEntry, error) {
	for _, dir := range []string{base, filepath.Join(base, "train")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}
		for _, pattern := range []string{"*.json", "*.jsonl"} {
			path := firstGlob(dir, pattern)
			if path == "" {
				continue
			}
			entries, err := loadTOFUFile(path)
			if err != nil {
				return nil, err
			}
			return entries, nil
		}
	}
	return nil, nil
}

func loadTOFUFile(path string) ([]tofuEntry, error) {
	if strings.HasSuffix(path, ".jsonl") {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open TOFU data: %w", err)
		}
		defer file.Close()

		var entries []tofuEntry
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var entry tofuEntry
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				return nil, fmt.Errorf("failed to parse TOFU line: %w", err)
			}
			entries = append(entries, entry)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read TOFU data: %w", err)
		}
		return entries, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read TOFU data: %w", err)
	}
	var entries []tofuEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		var single tofuEntry
		if err2 := json.Unmarshal(raw, &single); err2 != nil {
			return nil, fmt.Errorf("failed to parse TOFU data: %w", err)
		}
		entries = []tofuEntry{single}
	}
	return entries, nil
}
