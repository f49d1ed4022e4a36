package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/membench/membench/internal/checkpoint"
	"github.com/membench/membench/internal/llm"
	"github.com/membench/membench/internal/metrics"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/pkg/logger"
)

// JudgeOptions are the judging stage's knobs. LoCoMo is judged with the
// answer model and LongMemEval with the judge model, per the respective
// papers' protocols.
type JudgeOptions struct {
	AnswerModel string
	JudgeModel  string
	MaxTokens   int
}

// judgeRecord is the persisted judgment. It carries the question's category
// so a report-only run can rebuild per-category statistics without
// re-parsing the dataset.
type judgeRecord struct {
	QuestionID       string  `json:"question_id"`
	Category         string  `json:"category"`
	Correct          bool    `json:"correct"`
	Score            float64 `json:"score"`
	JudgeExplanation string  `json:"judge_explanation"`
}

// JudgeAnswers scores each answer with the dataset-specific method: ROUGE-L
// for the selective-forgetting dataset (no network call), LLM-as-judge
// otherwise. Checkpointed judgments are reused without re-judging.
func JudgeAnswers(ctx context.Context, chat llm.Chatter, questions []models.Question, answers []models.Answer, opts JudgeOptions, ckpt *checkpoint.Store) ([]models.JudgeResult, error) {
	answerMap := make(map[string]models.Answer, len(answers))
	for _, a := range answers {
		answerMap[a.QuestionID] = a
	}

	results := make([]models.JudgeResult, 0, len(questions))
	skipped := 0

	for _, question := range questions {
		answer, ok := answerMap[question.ID]
		if !ok {
			logger.Warn("No answer for question, skipping", zap.String("question_id", question.ID))
			continue
		}

		key := "judge_" + question.ID

		var cached judgeRecord
		hit, err := ckpt.Load(question.Dataset, key, &cached)
		if err != nil {
			return results, err
		}
		if hit {
			results = append(results, models.JudgeResult{
				QuestionID:  question.ID,
				Correct:     cached.Correct,
				Score:       cached.Score,
				Explanation: cached.JudgeExplanation,
			})
			skipped++
			metrics.CheckpointHits.WithLabelValues("judge").Inc()
			continue
		}

		var result models.JudgeResult
		if question.Dataset == models.DatasetTOFU {
			score := RougeL(answer.GeneratedAnswer, question.GoldAnswer)
			result = models.JudgeResult{
				QuestionID:  question.ID,
				Correct:     score > 0.5,
				Score:       score,
				Explanation: fmt.Sprintf("ROUGE-L: %.3f", score),
			}
		} else {
			messages, err := llm.BuildJudgeMessages(
				question.Dataset,
				question.Text,
				question.GoldAnswer,
				answer.GeneratedAnswer,
				questionType(question),
			)
			if err != nil {
				return results, err
			}

			model := opts.JudgeModel
			if question.Dataset == models.DatasetLoCoMo {
				model = opts.AnswerModel
			}

			correct, explanation, err := llm.Judge(ctx, chat, model, messages, opts.MaxTokens)
			if err != nil {
				return results, fmt.Errorf("failed to judge %s: %w", question.ID, err)
			}
			metrics.LLMCalls.WithLabelValues("judge").Inc()

			score := 0.0
			if correct {
				score = 1.0
			}
			result = models.JudgeResult{
				QuestionID:  question.ID,
				Correct:     correct,
				Score:       score,
				Explanation: explanation,
			}
		}

		record := judgeRecord{
			QuestionID:       question.ID,
			Category:         question.Category,
			Correct:          result.Correct,
			Score:            result.Score,
			JudgeExplanation: result.Explanation,
		}
		if err := ckpt.Save(question.Dataset, key, record); err != nil {
			return results, fmt.Errorf("failed to checkpoint judgment: %w", err)
		}

		results = append(results, result)
		metrics.QuestionsEvaluated.WithLabelValues(question.Dataset).Inc()
	}

	logger.Info("Judging complete",
		zap.Int("evaluated", len(results)-skipped),
		zap.Int("from_cache", skipped),
	)
	return results, nil
}

// questionType picks the judge-prompt selector for multi-type benchmarks.
func questionType(q models.Question) string {
	if t := q.Metadata["question_type"]; t != "" {
		return t
	}
	return q.Category
}
