package pipeline

import "strings"

// RougeL computes the ROUGE-L F1 score between a prediction and a reference.
// Both sides are lowercased and split on whitespace; either being empty
// scores zero.
func RougeL(prediction, reference string) float64 {
	predTokens := strings.Fields(strings.ToLower(prediction))
	refTokens := strings.Fields(strings.ToLower(reference))
	if len(predTokens) == 0 || len(refTokens) == 0 {
		return 0
	}

	lcs := lcsLength(predTokens, refTokens)
	if lcs == 0 {
		return 0
	}

	precision := float64(lcs) / float64(len(predTokens))
	recall := float64(lcs) / float64(len(refTokens))
	return 2 * precision * recall / (precision + recall)
}

// lcsLength is the longest-common-subsequence length, keeping only two DP
// rows so long answers stay cheap.
func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
