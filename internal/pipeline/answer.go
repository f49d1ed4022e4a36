package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/checkpoint"
	"github.com/membench/membench/internal/llm"
	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

// noContextSentinel stands in when retrieval finds nothing; the prompt
// always carries a context block.
const noContextSentinel = "No relevant memories found."

// Retriever fetches context snippets for a question.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// AnswerOptions are the answering stage's knobs.
type AnswerOptions struct {
	Model       string
	SearchLimit int
	MaxTokens   int
}

// AnswerKey names the checkpoint record holding a question's answer.
func AnswerKey(questionID string) string {
	return "answer_" + questionID
}

// AnswerQuestions generates one Answer per question. A checkpointed answer
// is returned unchanged with no network calls. A generation failure is not
// caught here: it propagates and aborts the dataset, leaving completed
// checkpoints valid for resume.
func AnswerQuestions(ctx context.Context, chat llm.Chatter, questions []models.Question, retriever Retriever, opts AnswerOptions, ckpt *checkpoint.Store) ([]models.Answer, error) {
	answers := make([]models.Answer, 0, len(questions))
	skipped := 0

	for _, question := range questions {
		key := AnswerKey(question.ID)

		var cached models.Answer
		hit, err := ckpt.Load(question.Dataset, key, &cached)
		if err != nil {
			return answers, err
		}
		if hit {
			answers = append(answers, cached)
			skipped++
			metrics.CheckpointHits.WithLabelValues("answer").Inc()
			continue
		}

		// Latency covers the full retrieval+generation span.
		start := time.Now()

		var contexts []string
		if retriever != nil {
			contexts, err = retriever.Search(ctx, question.Text, opts.SearchLimit)
			if err != nil {
				return answers, fmt.Errorf("failed to retrieve context for %s: %w", question.ID, err)
			}
		}

		contextText := noContextSentinel
		if len(contexts) > 0 {
			contextText = strings.Join(contexts, "\n")
		}

		messages := llm.BuildAnswerMessages(question.Dataset, question.Text, contextText)
		generated, err := chat.Chat(ctx, opts.Model, messages, opts.MaxTokens)
		if err != nil {
			return answers, fmt.Errorf("failed to generate answer for %s: %w", question.ID, err)
		}
		metrics.LLMCalls.WithLabelValues("answer").Inc()

		elapsedMS := float64(time.Since(start).Nanoseconds()) / 1e6

		answer := models.Answer{
			QuestionID:        question.ID,
			RetrievedContexts: contexts,
			GeneratedAnswer:   generated,
			LatencyMS:         elapsedMS,
		}
		if err := ckpt.Save(question.Dataset, key, answer); err != nil {
			return answers, fmt.Errorf("failed to checkpoint answer: %w", err)
		}
		answers = append(answers, answer)

		logger.Debug("Question answered",
			zap.String("question_id", question.ID),
			zap.Int("contexts", len(contexts)),
			zap.Float64("latency_ms", elapsedMS),
		)
	}

	logger.Info("Answering complete",
		zap.Int("generated", len(answers)-skipped),
		zap.Int("from_cache", skipped),
	)
	return answers, nil
}
