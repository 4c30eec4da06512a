package model

import "math"

// RunOverview aggregates run outcomes for one (game_id, game_version).
// quits is derived: total − completions − deaths. avg_duration_ms is null
// when no run has both timestamps set.
type RunOverview struct {
	TotalRuns     int      `json:"total_runs"`
	Completions   int      `json:"completions"`
	Deaths        int      `json:"deaths"`
	Quits         int      `json:"quits"`
	AvgDurationMs *float64 `json:"avg_duration_ms"`
}

// ComputeRunOverview derives the overview from a set of runs in memory.
// An empty slice yields zeros and a null average, not an error.
func ComputeRunOverview(runs []Run) RunOverview {
	ov := RunOverview{TotalRuns: len(runs)}

	var durationSum float64
	var durationCount int
	for _, r := range runs {
		if r.EndReason != nil {
			switch *r.EndReason {
			case EndReasonWin:
				ov.Completions++
			case EndReasonLoss:
				ov.Deaths++
			}
		}
		if r.EndedAt != nil {
			durationSum += float64(r.EndedAt.Sub(r.StartedAt).Milliseconds())
			durationCount++
		}
	}

	ov.Quits = ov.TotalRuns - ov.Completions - ov.Deaths
	if durationCount > 0 {
		avg := Round2(durationSum / float64(durationCount))
		ov.AvgDurationMs = &avg
	}
	return ov
}

// Round2 rounds half-up to two decimal places, matching the ROUND(x, 2)
// the SQL aggregations apply on the database side.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
