package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membench_llm_calls_total",
			Help: "Total language backend calls by purpose",
		},
		[]string{"type"},
	)

	EmbeddingBatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "membench_embedding_batches_total",
			Help: "Total embedding API batches issued",
		},
	)

	MemoriesStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membench_memories_stored_total",
			Help: "Total memories stored in the memory service",
		},
		[]string{"dataset"},
	)

	StoreFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membench_store_failures_total",
			Help: "Total failed memory store calls",
		},
		[]string{"dataset"},
	)

	CheckpointHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membench_checkpoint_hits_total",
			Help: "Total pipeline steps skipped via checkpoint",
		},
		[]string{"stage"},
	)

	QuestionsEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "membench_questions_evaluated_total",
			Help: "Total questions judged per dataset",
		},
		[]string{"dataset"},
	)

	IndexedEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "membench_index_entries",
			Help: "Entries currently held by the memory index",
		},
	)
)

func Init() {
	prometheus.MustRegister(LLMCalls)
	prometheus.MustRegister(EmbeddingBatches)
	prometheus.MustRegister(MemoriesStored)
	prometheus.MustRegister(StoreFailures)
	prometheus.MustRegister(CheckpointHits)
	prometheus.MustRegister(QuestionsEvaluated)
	prometheus.MustRegister(IndexedEntries)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
