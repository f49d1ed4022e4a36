// Package models holds the immutable records flowing through the benchmark
// pipeline. Every dataset parser emits these shapes; no downstream component
// ever sees a raw dataset schema.
package models

// Dataset names understood by the pipeline.
const (
	DatasetLoCoMo      = "locomo"
	DatasetLongMemEval = "longmemeval"
	DatasetTOFU        = "tofu"
)

// Question is a single benchmark evaluation question. Created once during
// normalization and never mutated.
type Question struct {
	ID             string
	Dataset        string
	Category       string
	Text           string
	GoldAnswer     string
	ConversationID string
	Metadata       map[string]string
}

// Turn is one message inside a conversation record.
type Turn struct {
	Speaker   string
	Text      string
	SessionID string
	Timestamp string
}

// ConversationRecord is a dataset-agnostic conversation to ingest. It is
// consumed once by ingestion/indexing and then discarded.
type ConversationRecord struct {
	ID       string
	Turns    []Turn
	Metadata map[string]string
}

// Answer is the generated answer for one question, persisted to the
// checkpoint store keyed by question ID.
type Answer struct {
	QuestionID        string   `json:"question_id"`
	RetrievedContexts []string `json:"retrieved_contexts"`
	GeneratedAnswer   string   `json:"generated_answer"`
	LatencyMS         float64  `json:"latency_ms"`
}

// JudgeResult is the scored verdict for one answer. Score is binary for the
// LLM judge and a continuous ROUGE-L F1 for the string-overlap judge.
type JudgeResult struct {
	QuestionID  string  `json:"question_id"`
	Correct     bool    `json:"correct"`
	Score       float64 `json:"score"`
	Explanation string  `json:"judge_explanation"`
}

// LatencyStats are percentile statistics over answer latencies.
type LatencyStats struct {
	Count  int     `json:"count"`
	MinMS  float64 `json:"min_ms"`
	MaxMS  float64 `json:"max_ms"`
	P50MS  float64 `json:"p50_ms"`
	P95MS  float64 `json:"p95_ms"`
	P99MS  float64 `json:"p99_ms"`
	MeanMS float64 `json:"mean_ms"`
}

// CategoryResult is the accuracy bucket for a single category.
type CategoryResult struct {
	Category string  `json:"category"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// BenchmarkResult aggregates one dataset's judgments. It is a derived view,
// recomputed from checkpoint records on every report generation.
type BenchmarkResult struct {
	Dataset        string                    `json:"dataset"`
	TotalQuestions int                       `json:"total_questions"`
	Correct        int                       `json:"correct"`
	Accuracy       float64                   `json:"accuracy"`
	ByCategory     map[string]CategoryResult `json:"by_category"`
	Latency        *LatencyStats             `json:"latency,omitempty"`
	Timestamp      string                    `json:"timestamp,omitempty"`
}
