package intel

import (
	"fmt"
	"sort"

	"github.com/tracelight/osint-cli/internal/model"
)

// candidate is one successful source's answer for one field.
type candidate struct {
	source     model.Source
	value      any
	confidence float64
}

// mergeResults resolves field-level conflicts across successful results.
// The outcome depends only on the set of results, never on their order: the
// winner is re-derived from priorities and confidence, not arrival.
func mergeResults(results []model.IntelligenceResult, cfg *Config) map[string]model.MergedField {
	byField := make(map[string][]candidate)
	for _, r := range results {
		if !r.Success {
			continue
		}
		for key, value := range r.Fields.Items() {
			byField[key] = append(byField[key], candidate{
				source:     r.Source,
				value:      value,
				confidence: r.Confidence,
			})
		}
	}

	merged := make(map[string]model.MergedField, len(byField))
	for key, cands := range byField {
		winner := pickWinner(key, cands, cfg)

		mf := model.MergedField{
			Value:  winner.value,
			Source: winner.source,
		}

		if cfg.IsCritical(key) {
			winnerRepr := fmt.Sprintf("%v", winner.value)
			for _, c := range sortedCandidates(cands) {
				if c.source == winner.source {
					continue
				}
				if fmt.Sprintf("%v", c.value) == winnerRepr {
					continue // agreement is corroboration, not an alternative
				}
				mf.Alternatives = append(mf.Alternatives, model.Alternative{
					Source:     c.source,
					Value:      c.value,
					Confidence: c.confidence,
				})
			}
		}

		merged[key] = mf
	}

	return merged
}

// pickWinner applies the field's priority list first; when no prioritized
// source produced the field, the highest confidence x weight product wins.
func pickWinner(field string, cands []candidate, cfg *Config) candidate {
	if prio, ok := cfg.FieldPriorities[field]; ok {
		for _, preferred := range prio {
			for _, c := range cands {
				if c.source == preferred {
					return c
				}
			}
		}
	}

	best := cands[0]
	bestScore := best.confidence * cfg.Weight(best.source)
	for _, c := range cands[1:] {
		score := c.confidence * cfg.Weight(c.source)
		// Ties break on source name so the result is stable under input
		// reordering.
		if score > bestScore || (score == bestScore && c.source < best.source) {
			best = c
			bestScore = score
		}
	}
	return best
}

// sortedCandidates returns the candidates in stable source order so
// alternative lists do not depend on dispatch order.
func sortedCandidates(cands []candidate) []candidate {
	out := make([]candidate, len(cands))
	copy(out, cands)
	sort.Slice(out, func(i, j int) bool { return out[i].source < out[j].source })
	return out
}
