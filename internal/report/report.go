package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/membench/membench/internal/models"
)

// systemName labels the system under test in report columns.
const systemName = "Nexus"

// coreDatasets fixes the summary table's row order.
var coreDatasets = []string{
	models.DatasetLoCoMo,
	models.DatasetLongMemEval,
	models.DatasetTOFU,
}

// Generate writes report.md and report.json into outputDir and returns the
// markdown path. Output is deterministic for a given set of results apart
// from the generation timestamp.
func Generate(results []models.BenchmarkResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	now := time.Now().UTC()

	mdPath := filepath.Join(outputDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(buildMarkdown(results, now)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write markdown report: %w", err)
	}

	sidecar, err := json.MarshalIndent(buildSidecar(results, now), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report JSON: %w", err)
	}
	jsonPath := filepath.Join(outputDir, "report.json")
	if err := os.WriteFile(jsonPath, sidecar, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON report: %w", err)
	}

	return mdPath, nil
}

func buildMarkdown(results []models.BenchmarkResult, now time.Time) string {
	var b strings.Builder

	b.WriteString("# " + systemName + " Memory Benchmark Report\n\n")
	b.WriteString("Generated: " + now.Format("2006-01-02 15:04:05 UTC") + "\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString(summaryTable(results))
	b.WriteString("\n\n")

	for _, r := range results {
		b.WriteString(datasetSection(r))
	}

	b.WriteString(metricGridSection("Consolidation Baselines", ConsolidationBaselines,
		[]string{"f1", "compression_ratio", "construction_time_s", "tokens_per_query",
			"tgc_improvement_pct", "adaptation_latency_reduction_pct"}))
	b.WriteString(metricListSection("Knowledge Graph Baselines", KnowledgeGraphBaselines))
	b.WriteString(metricListSection("Reflective Memory Baselines", ReflectiveMemoryBaselines))
	b.WriteString(metricGridSection("GraphRAG-Bench (Novel Dataset, 16 Disciplines)", GraphRAGBenchBaselines,
		[]string{"fact_retrieval", "complex_reasoning", "summarization", "creative", "evidence_recall"}))
	b.WriteString(metricListSection("Cognee / HotPotQA Comparison", CogneeBaselines))
	b.WriteString(metricListSection("RLM Baselines (Recursive Language Model)", RLMBaselines))

	return b.String()
}

// summaryTable has one row per core dataset and one column per system, the
// system under test first and published baselines after in sorted order.
func summaryTable(results []models.BenchmarkResult) string {
	systemSet := map[string]bool{}
	for _, perSystem := range PublishedBaselines {
		for system := range perSystem {
			systemSet[system] = true
		}
	}
	systems := make([]string, 0, len(systemSet))
	for system := range systemSet {
		systems = append(systems, system)
	}
	sort.Strings(systems)
	systems = append([]string{systemName}, systems...)

	resultMap := make(map[string]models.BenchmarkResult, len(results))
	for _, r := range results {
		resultMap[r.Dataset] = r
	}

	w := table.NewWriter()
	header := table.Row{"Dataset"}
	for _, system := range systems {
		header = append(header, system)
	}
	w.AppendHeader(header)

	for _, ds := range coreDatasets {
		row := table.Row{titleCase(ds)}
		for _, system := range systems {
			row = append(row, summaryCell(ds, system, resultMap))
		}
		w.AppendRow(row)
	}
	return w.RenderMarkdown()
}

func summaryCell(dataset, system string, resultMap map[string]models.BenchmarkResult) string {
	if system == systemName {
		r, ok := resultMap[dataset]
		if !ok {
			return "—"
		}
		if dataset == models.DatasetTOFU {
			return fmt.Sprintf("F:%s R:%s",
				categoryAccuracy(r, "forget"), categoryAccuracy(r, "retain"))
		}
		return fmt.Sprintf("%.1f%%", r.Accuracy)
	}

	metrics := PublishedBaselines[dataset][system]
	if overall, ok := metrics["overall"]; ok {
		return fmt.Sprintf("%.1f%%", overall)
	}
	if dataset == models.DatasetTOFU {
		if fr, ok := metrics["forget_rouge"]; ok {
			return fmt.Sprintf("F:%.2f R:%.2f", fr, metrics["retain_rouge"])
		}
	}
	return "—"
}

func categoryAccuracy(r models.BenchmarkResult, category string) string {
	if bucket, ok := r.ByCategory[category]; ok {
		return fmt.Sprintf("%.1f%%", bucket.Accuracy)
	}
	return "—"
}

func datasetSection(r models.BenchmarkResult) string {
	var b strings.Builder

	b.WriteString("## " + titleCase(r.Dataset) + " Breakdown\n\n")
	b.WriteString(fmt.Sprintf("- **Overall accuracy**: %.1f%% (%d/%d)\n\n",
		r.Accuracy, r.Correct, r.TotalQuestions))

	if len(r.ByCategory) > 0 {
		w := table.NewWriter()
		w.AppendHeader(table.Row{"Category", "Accuracy", "Correct/Total"})
		for _, name := range sortedKeys(r.ByCategory) {
			bucket := r.ByCategory[name]
			w.AppendRow(table.Row{
				name,
				fmt.Sprintf("%.1f%%", bucket.Accuracy),
				fmt.Sprintf("%d/%d", bucket.Correct, bucket.Total),
			})
		}
		b.WriteString(w.RenderMarkdown())
		b.WriteString("\n\n")
	}

	if perSystem := PublishedBaselines[r.Dataset]; len(perSystem) > 0 {
		b.WriteString("### vs. Published Baselines\n\n")
		w := table.NewWriter()
		w.AppendHeader(table.Row{"System", "Overall"})
		w.AppendRow(table.Row{"**" + systemName + "**", fmt.Sprintf("**%.1f%%**", r.Accuracy)})
		for _, system := range sortedKeys(perSystem) {
			if overall, ok := perSystem[system]["overall"]; ok {
				w.AppendRow(table.Row{system, fmt.Sprintf("%.1f%%", overall)})
			}
		}
		b.WriteString(w.RenderMarkdown())
		b.WriteString("\n\n")
	}

	if r.Latency != nil {
		ls := r.Latency
		b.WriteString("### Latency\n\n")
		b.WriteString(fmt.Sprintf("- p50: %.0fms\n", ls.P50MS))
		b.WriteString(fmt.Sprintf("- p95: %.0fms\n", ls.P95MS))
		b.WriteString(fmt.Sprintf("- p99: %.0fms\n", ls.P99MS))
		b.WriteString(fmt.Sprintf("- mean: %.0fms\n", ls.MeanMS))
		b.WriteString(fmt.Sprintf("- samples: %d\n\n", ls.Count))
	}

	return b.String()
}

// metricGridSection renders systems as rows and a fixed metric list as
// columns, skipping columns no system reports.
func metricGridSection(title string, baselines map[string]map[string]float64, metricOrder []string) string {
	used := make([]string, 0, len(metricOrder))
	for _, metric := range metricOrder {
		for _, vals := range baselines {
			if _, ok := vals[metric]; ok {
				used = append(used, metric)
				break
			}
		}
	}

	w := table.NewWriter()
	header := table.Row{"System"}
	for _, metric := range used {
		header = append(header, metric)
	}
	w.AppendHeader(header)

	for _, system := range sortedKeys(baselines) {
		row := table.Row{system}
		for _, metric := range used {
			if val, ok := baselines[system][metric]; ok {
				row = append(row, formatMetric(val))
			} else {
				row = append(row, "—")
			}
		}
		w.AppendRow(row)
	}

	return "## " + title + "\n\n" + w.RenderMarkdown() + "\n\n"
}

// metricListSection renders one row per (system, metric) pair for baseline
// sets whose systems report disjoint metrics.
func metricListSection(title string, baselines map[string]map[string]float64) string {
	w := table.NewWriter()
	w.AppendHeader(table.Row{"System", "Metric", "Value"})
	for _, system := range sortedKeys(baselines) {
		for _, metric := range sortedKeys(baselines[system]) {
			w.AppendRow(table.Row{system, metric, formatMetric(baselines[system][metric])})
		}
	}
	return "## " + title + "\n\n" + w.RenderMarkdown() + "\n\n"
}

func formatMetric(val float64) string {
	if val < 1.0 {
		return fmt.Sprintf("%.3f", val)
	}
	if val == float64(int64(val)) {
		return fmt.Sprintf("%.0f", val)
	}
	return fmt.Sprintf("%.2f", val)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type sidecar struct {
	GeneratedAt string                   `json:"generated_at"`
	Results     []models.BenchmarkResult `json:"results"`

	Baselines                 map[string]map[string]map[string]float64 `json:"baselines"`
	ConsolidationBaselines    map[string]map[string]float64            `json:"consolidation_baselines"`
	KnowledgeGraphBaselines   map[string]map[string]float64            `json:"knowledge_graph_baselines"`
	ReflectiveMemoryBaselines map[string]map[string]float64            `json:"reflective_memory_baselines"`
	GraphRAGBenchBaselines    map[string]map[string]float64            `json:"graphrag_bench_baselines"`
	CogneeBaselines           map[string]map[string]float64            `json:"cognee_baselines"`
	RLMBaselines              map[string]map[string]float64            `json:"rlm_baselines"`
}

func buildSidecar(results []models.BenchmarkResult, now time.Time) sidecar {
	if results == nil {
		results = []models.BenchmarkResult{}
	}
	return sidecar{
		GeneratedAt:               now.Format(time.RFC3339),
		Results:                   results,
		Baselines:                 PublishedBaselines,
		ConsolidationBaselines:    ConsolidationBaselines,
		KnowledgeGraphBaselines:   KnowledgeGraphBaselines,
		ReflectiveMemoryBaselines: ReflectiveMemoryBaselines,
		GraphRAGBenchBaselines:    GraphRAGBenchBaselines,
		CogneeBaselines:           CogneeBaselines,
		RLMBaselines:              RLMBaselines,
	}
}
