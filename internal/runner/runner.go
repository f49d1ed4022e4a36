// Package runner orchestrates a full benchmark run: parse, ingest, index,
// answer, judge, aggregate, report. Each dataset runs to completion before
// the next starts, and every stage checkpoints through the shared store so a
// rerun picks up exactly where the last run stopped.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/membench/membench/internal/checkpoint"
	"github.com/membench/membench/internal/dataset"
	"github.com/membench/membench/internal/index"
	"github.com/membench/membench/internal/llm"
	"github.com/membench/membench/internal/memsvc"
	"github.com/membench/membench/internal/models"
	"github.com/membench/membench/internal/pipeline"
	"github.com/membench/membench/internal/report"
	"github.com/membench/membench/internal/storage/sqlite"
	"github.com/membench/membench/pkg/config"
	"github.com/membench/membench/pkg/logger"
)

// Runner wires the pipeline stages together. All collaborators are
// interfaces or injectable fields so tests can run the full orchestration
// against fakes.
type Runner struct {
	cfg     *config.Config
	chat    llm.Chatter
	embed   llm.Embedder
	store   pipeline.MemoryStorer
	ckpt    *checkpoint.Store
	history *sqlite.Client

	closers []func() error
}

// New builds a Runner with real clients from the configuration. Run history
// is best-effort: a SQLite failure logs a warning and the run proceeds
// without it.
func New(cfg *config.Config) (*Runner, error) {
	ckpt, err := checkpoint.New(cfg.Paths.ResultsDir)
	if err != nil {
		return nil, err
	}

	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel, cfg.LLM.TimeoutSec)
	svc := memsvc.NewClient(cfg.Service.URL, cfg.Service.APIKey, cfg.Service.Zone)

	r := &Runner{
		cfg:   cfg,
		chat:  llmClient,
		embed: llmClient,
		store: svc,
		ckpt:  ckpt,
	}
	r.closers = append(r.closers, func() error { svc.Close(); return nil })

	history, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		logger.Warn("Run history unavailable", zap.Error(err))
	} else if err := history.InitSchema(); err != nil {
		logger.Warn("Run history schema init failed", zap.Error(err))
		history.Close()
	} else {
		r.history = history
		r.closers = append(r.closers, history.Close)
	}

	return r, nil
}

// NewWithDeps builds a Runner from pre-constructed collaborators.
func NewWithDeps(cfg *config.Config, chat llm.Chatter, embed llm.Embedder, store pipeline.MemoryStorer, ckpt *checkpoint.Store, history *sqlite.Client) *Runner {
	return &Runner{cfg: cfg, chat: chat, embed: embed, store: store, ckpt: ckpt, history: history}
}

// Close releases the runner's clients.
func (r *Runner) Close() {
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			logger.Warn("Close failed", zap.Error(err))
		}
	}
}

// Checkpoints exposes the underlying store for checkpoint maintenance
// commands.
func (r *Runner) Checkpoints() *checkpoint.Store {
	return r.ckpt
}

// Run evaluates every configured dataset and generates the report. A
// missing dataset file aborts the run; datasets already completed in the
// checkpoint store are replayed from disk at no network cost.
func (r *Runner) Run(ctx context.Context) ([]models.BenchmarkResult, error) {
	runID := uuid.NewString()
	logger.Info("Benchmark run starting",
		zap.String("run_id", runID),
		zap.Strings("datasets", r.cfg.Datasets.Run),
	)

	var results []models.BenchmarkResult

	for _, name := range r.cfg.Datasets.Run {
		result, err := r.runDataset(ctx, name)
		if err != nil {
			return results, fmt.Errorf("dataset %s: %w", name, err)
		}
		if result == nil {
			continue
		}
		results = append(results, *result)

		if r.history != nil {
			if err := r.history.InsertRunResult(runID, result); err != nil {
				logger.Warn("Failed to record run history", zap.Error(err))
			}
		}
	}

	if len(results) > 0 {
		path, err := report.Generate(results, r.ckpt.Root())
		if err != nil {
			return results, err
		}
		logger.Info("Report generated", zap.String("path", path))
	}

	return results, nil
}

func (r *Runner) runDataset(ctx context.Context, name string) (*models.BenchmarkResult, error) {
	parser, err := dataset.ForName(name, r.cfg.Datasets)
	if err != nil {
		return nil, err
	}

	conversations, questions, err := parser.Parse(r.cfg.Paths.DataDir)
	if err != nil {
		if errors.Is(err, dataset.ErrMissingData) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if len(questions) == 0 {
		logger.Warn("Dataset has no questions, skipping", zap.String("dataset", name))
		return nil, nil
	}

	// Fresh retrieval index per dataset; memories from one benchmark must
	// not answer another's questions.
	idx := index.New(r.embed)

	if _, err := pipeline.IngestConversations(ctx, r.store, conversations, r.ckpt, name); err != nil {
		return nil, err
	}

	// When every answer is already checkpointed retrieval never runs, so
	// re-embedding the corpus would be pure waste.
	if !r.allAnswered(name, questions) {
		var turns []models.Turn
		for _, conv := range conversations {
			turns = append(turns, conv.Turns...)
		}
		if _, err := idx.AddTurns(ctx, turns); err != nil {
			return nil, err
		}
	}

	answers, err := pipeline.AnswerQuestions(ctx, r.chat, questions, idx, pipeline.AnswerOptions{
		Model:       r.cfg.LLM.AnswerModel,
		SearchLimit: r.cfg.Query.MemorySearchLimit,
		MaxTokens:   r.cfg.Query.AnswerMaxTokens,
	}, r.ckpt)
	if err != nil {
		return nil, err
	}

	judgments, err := pipeline.JudgeAnswers(ctx, r.chat, questions, answers, pipeline.JudgeOptions{
		AnswerModel: r.cfg.LLM.AnswerModel,
		JudgeModel:  r.cfg.LLM.JudgeModel,
		MaxTokens:   r.cfg.Query.JudgeMaxTokens,
	}, r.ckpt)
	if err != nil {
		return nil, err
	}

	result := pipeline.Compute(name, questions, judgments, answers, time.Now().UTC().Format(time.RFC3339))
	logger.Info("Dataset evaluated",
		zap.String("dataset", name),
		zap.Float64("accuracy", result.Accuracy),
		zap.Int("questions", result.TotalQuestions),
	)
	return &result, nil
}

func (r *Runner) allAnswered(dataset string, questions []models.Question) bool {
	for _, question := range questions {
		if !r.ckpt.IsDone(dataset, pipeline.AnswerKey(question.ID)) {
			return false
		}
	}
	return true
}

// checkpointProbe discriminates checkpoint record shapes by which fields
// decoded. A judge record carries correct+score, an answer record carries
// generated_answer, anything else is an ingest record.
type checkpointProbe struct {
	QuestionID      *string  `json:"question_id"`
	Category        *string  `json:"category"`
	Correct         *bool    `json:"correct"`
	Score           *float64 `json:"score"`
	Explanation     *string  `json:"judge_explanation"`
	GeneratedAnswer *string  `json:"generated_answer"`
	LatencyMS       *float64 `json:"latency_ms"`
}

// ReportOnly rebuilds dataset results from checkpoint records alone and
// regenerates the report, with no parsing, no network calls, and no new
// checkpoints.
func (r *Runner) ReportOnly() ([]models.BenchmarkResult, error) {
	var results []models.BenchmarkResult

	for _, name := range r.cfg.Datasets.Run {
		records, err := r.ckpt.All(name)
		if err != nil {
			return results, fmt.Errorf("dataset %s: %w", name, err)
		}

		var questions []models.Question
		var judgments []models.JudgeResult
		var answers []models.Answer
		judged := make(map[string]bool)

		for _, raw := range records {
			var probe checkpointProbe
			if err := json.Unmarshal(raw, &probe); err != nil || probe.QuestionID == nil {
				continue
			}

			switch {
			case probe.Correct != nil && probe.Score != nil:
				judgment := models.JudgeResult{
					QuestionID: *probe.QuestionID,
					Correct:    *probe.Correct,
					Score:      *probe.Score,
				}
				if probe.Explanation != nil {
					judgment.Explanation = *probe.Explanation
				}
				judgments = append(judgments, judgment)
				judged[*probe.QuestionID] = true

				question := models.Question{ID: *probe.QuestionID, Dataset: name}
				if probe.Category != nil {
					question.Category = *probe.Category
				}
				questions = append(questions, question)

			case probe.GeneratedAnswer != nil:
				answer := models.Answer{
					QuestionID:      *probe.QuestionID,
					GeneratedAnswer: *probe.GeneratedAnswer,
				}
				if probe.LatencyMS != nil {
					answer.LatencyMS = *probe.LatencyMS
				}
				answers = append(answers, answer)
			}
		}

		if len(judgments) == 0 {
			logger.Warn("No judged checkpoints for dataset", zap.String("dataset", name))
			continue
		}

		// An answer whose judgment never landed is still in flight; its
		// latency belongs to the run that finishes it.
		kept := answers[:0]
		for _, answer := range answers {
			if judged[answer.QuestionID] {
				kept = append(kept, answer)
			}
		}
		answers = kept

		result := pipeline.Compute(name, questions, judgments, answers, time.Now().UTC().Format(time.RFC3339))
		results = append(results, result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no completed results found under %s", r.ckpt.Root())
	}

	path, err := report.Generate(results, r.ckpt.Root())
	if err != nil {
		return results, err
	}
	logger.Info("Report regenerated", zap.String("path", path))
	return results, nil
}
