package pipeline

import (
	"sort"

	"github.com/membench/membench/internal/models"
)

// Compute aggregates judgments into a BenchmarkResult. Accuracy is a
// percentage; a dataset with zero judged questions reports 0, never NaN.
func Compute(dataset string, questions []models.Question, results []models.JudgeResult, answers []models.Answer, timestamp string) models.BenchmarkResult {
	categoryOf := make(map[string]string, len(questions))
	for _, q := range questions {
		categoryOf[q.ID] = q.Category
	}

	correct := 0
	perCategory := make(map[string]*models.CategoryResult)
	for _, r := range results {
		category := categoryOf[r.QuestionID]
		if category == "" {
			category = "unknown"
		}
		bucket, ok := perCategory[category]
		if !ok {
			bucket = &models.CategoryResult{Category: category}
			perCategory[category] = bucket
		}
		bucket.Total++
		if r.Correct {
			bucket.Correct++
			correct++
		}
	}

	byCategory := make(map[string]models.CategoryResult, len(perCategory))
	for name, bucket := range perCategory {
		if bucket.Total > 0 {
			bucket.Accuracy = 100 * float64(bucket.Correct) / float64(bucket.Total)
		}
		byCategory[name] = *bucket
	}

	accuracy := 0.0
	if len(results) > 0 {
		accuracy = 100 * float64(correct) / float64(len(results))
	}

	return models.BenchmarkResult{
		Dataset:        dataset,
		TotalQuestions: len(results),
		Correct:        correct,
		Accuracy:       accuracy,
		ByCategory:     byCategory,
		Latency:        computeLatency(answers),
		Timestamp:      timestamp,
	}
}

// computeLatency summarizes answer latencies with nearest-rank percentiles.
// Cached answers replayed from checkpoints keep their original latency;
// non-positive latencies are excluded. Returns nil when nothing was timed.
func computeLatency(answers []models.Answer) *models.LatencyStats {
	var samples []float64
	for _, a := range answers {
		if a.LatencyMS > 0 {
			samples = append(samples, a.LatencyMS)
		}
	}
	if len(samples) == 0 {
		return nil
	}
	sort.Float64s(samples)

	sum := 0.0
	for _, s := range samples {
		sum += s
	}

	pct := func(p float64) float64 {
		idx := int(p / 100 * float64(len(samples)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		return samples[idx]
	}

	return &models.LatencyStats{
		Count:  len(samples),
		MinMS:  samples[0],
		MaxMS:  samples[len(samples)-1],
		P50MS:  pct(50),
		P95MS:  pct(95),
		P99MS:  pct(99),
		MeanMS: sum / float64(len(samples)),
	}
}
