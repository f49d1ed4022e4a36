// Package pipeline implements the per-question evaluation stages: ingest,
// answer, judge, and metric aggregation. Stages are strictly sequential and
// checkpoint every completed unit of work, so an interrupted run resumes
// without re-paying network cost or double-counting results.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/checkpoint"
	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

// MemoryStorer is the narrow ingestion contract offered by the memory
// service under evaluation.
type MemoryStorer interface {
	StoreMemory(ctx context.Context, content string, metadata map[string]any) error
}

type ingestRecord struct {
	ConversationID string `json:"conversation_id"`
	MessagesStored int    `json:"messages_stored"`
	Timestamp      string `json:"timestamp"`
}

// IngestConversations stores every conversation turn in the memory service,
// one memory per turn. A store failure is logged and the loop continues;
// the conversation's checkpoint is only written once at least one turn
// stored, so fully-failed conversations stay eligible for the next run.
// Returns the number of memories stored.
func IngestConversations(ctx context.Context, store MemoryStorer, conversations []models.ConversationRecord, ckpt *checkpoint.Store, dataset string) (int, error) {
	stored := 0
	skipped := 0

	for _, conv := range conversations {
		key := "ingest_" + conv.ID

		if ckpt.IsDone(dataset, key) {
			skipped++
			metrics.CheckpointHits.WithLabelValues("ingest").Inc()
			continue
		}

		convStored := 0
		for turnIdx, turn := range conv.Turns {
			if turn.Text == "" {
				continue
			}
			speaker := turn.Speaker
			if speaker == "" {
				speaker = "unknown"
			}

			content := fmt.Sprintf("[%s]: %s", speaker, turn.Text)
			metadata := map[string]any{
				"conversation_id": conv.ID,
				"session_id":      turn.SessionID,
				"speaker":         speaker,
				"turn_index":      turnIdx,
				"dataset":         dataset,
			}

			if err := store.StoreMemory(ctx, content, metadata); err != nil {
				metrics.StoreFailures.WithLabelValues(dataset).Inc()
				logger.Warn("Failed to store conversation turn",
					zap.String("conversation_id", conv.ID),
					zap.Int("turn_index", turnIdx),
					zap.Error(err),
				)
				continue
			}
			convStored++
			stored++
			metrics.MemoriesStored.WithLabelValues(dataset).Inc()
		}

		if convStored == 0 {
			logger.Warn("All stores failed for conversation, will retry on next run",
				zap.String("conversation_id", conv.ID),
			)
			continue
		}

		record := ingestRecord{
			ConversationID: conv.ID,
			MessagesStored: convStored,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := ckpt.Save(dataset, key, record); err != nil {
			return stored, fmt.Errorf("failed to checkpoint ingestion: %w", err)
		}

		logger.Info("Ingested conversation",
			zap.String("conversation_id", conv.ID),
			zap.Int("messages_stored", convStored),
		)
	}

	logger.Info("Ingestion complete",
		zap.String("dataset", dataset),
		zap.Int("stored", stored),
		zap.Int("skipped", skipped),
	)
	return stored, nil
}
