package loadtest

import (
	"math"
	"sort"
)

// Stats aggregates one slice of test results.
type Stats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	SuccessRate float64 `json:"success_rate"`
	Avg         float64 `json:"avg_response_time"`
	Median      float64 `json:"median_response_time"`
	P95         float64 `json:"p95_response_time"`
}

// Analysis is the derived view of a run: overall, per-agent and per-test-type
// breakdowns.
type Analysis struct {
	Overall Stats            `json:"overall"`
	ByAgent map[string]Stats `json:"by_agent"`
	ByTest  map[string]Stats `json:"by_test"`
}

// Analyze computes the aggregate statistics for a set of result records.
func Analyze(results []TestResult) Analysis {
	byAgent := map[string][]TestResult{}
	byTest := map[string][]TestResult{}
	for _, r := range results {
		byAgent[r.AgentName] = append(byAgent[r.AgentName], r)
		byTest[r.TestName] = append(byTest[r.TestName], r)
	}

	analysis := Analysis{
		Overall: computeStats(results),
		ByAgent: map[string]Stats{},
		ByTest:  map[string]Stats{},
	}
	for agent, rs := range byAgent {
		analysis.ByAgent[agent] = computeStats(rs)
	}
	for test, rs := range byTest {
		analysis.ByTest[test] = computeStats(rs)
	}
	return analysis
}

func computeStats(results []TestResult) Stats {
	stats := Stats{Total: len(results)}
	if len(results) == 0 {
		return stats
	}

	times := make([]float64, 0, len(results))
	sum := 0.0
	for _, r := range results {
		if r.Success {
			stats.Successful++
		}
		times = append(times, r.ResponseTime)
		sum += r.ResponseTime
	}
	stats.SuccessRate = float64(stats.Successful) / float64(stats.Total) * 100
	stats.Avg = sum / float64(len(times))

	sort.Float64s(times)
	stats.Median = median(times)
	stats.P95 = percentile95(times)
	return stats
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// percentile95 takes the floor(n*0.95)th element of the sorted series,
// clamped to the last index.
func percentile95(sorted []float64) float64 {
	n := len(sorted)
	idx := int(math.Floor(float64(n) * 0.95))
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
