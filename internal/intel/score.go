package intel

import "github.com/tracelight/osint-cli/internal/model"

// overallConfidence derives the aggregate trust score from the per-source
// results. A lone source is penalized; corroboration across independent
// sources is rewarded; failures among the attempted sources drag the score
// down proportionally to the failure ratio.
func overallConfidence(results []model.IntelligenceResult, cfg *Config) float64 {
	var successes []model.IntelligenceResult
	for _, r := range results {
		if r.Success {
			successes = append(successes, r)
		}
	}

	switch len(successes) {
	case 0:
		return 0
	case 1:
		return clamp(successes[0].Confidence * cfg.Scoring.SingleSourcePenalty)
	}

	var weightedSum, weightTotal float64
	for _, r := range successes {
		w := cfg.Weight(r.Source)
		weightedSum += r.Confidence * w
		weightTotal += w
	}
	score := weightedSum / weightTotal

	if len(successes) > 3 {
		score *= cfg.Scoring.ManyBoost
	} else {
		score *= cfg.Scoring.PairBoost
	}

	if len(results) > 0 {
		failureRatio := float64(len(results)-len(successes)) / float64(len(results))
		score *= 1 - cfg.Scoring.FailurePenalty*failureRatio
	}

	return clamp(score)
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
