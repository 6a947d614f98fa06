package model

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
)

// IntelligenceResult is one source's answer to one query. Immutable after
// construction; create through NewResult or FailedResult.
type IntelligenceResult struct {
	Source       Source        `json:"source"`
	Fields       Fields        `json:"fields"`
	Confidence   float64       `json:"confidence"`
	Timestamp    time.Time     `json:"timestamp"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
}

// NewResult builds a successful result. Confidence outside [0,100] is
// rejected rather than clamped; a provider reporting an out-of-range score
// is a programming error, not data.
func NewResult(source Source, fields Fields, confidence float64, elapsed time.Duration) (IntelligenceResult, error) {
	if confidence < 0 || confidence > 100 {
		return IntelligenceResult{}, eris.Errorf("model: confidence %.2f out of range [0,100] for source %s", confidence, source)
	}
	return IntelligenceResult{
		Source:       source,
		Fields:       fields,
		Confidence:   confidence,
		Timestamp:    time.Now().UTC(),
		Success:      true,
		ResponseTime: elapsed,
	}, nil
}

// FailedResult builds a failure record for a source. The error message is
// the only payload; confidence is zero by definition.
func FailedResult(source Source, err error, elapsed time.Duration) IntelligenceResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return IntelligenceResult{
		Source:       source,
		Timestamp:    time.Now().UTC(),
		Success:      false,
		Error:        msg,
		ResponseTime: elapsed,
	}
}

// Alternative is a losing value for a contested field, tagged with its source.
type Alternative struct {
	Source     Source  `json:"source"`
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// MergedField is the winning value for one field key after merge.
type MergedField struct {
	Value        any           `json:"value"`
	Source       Source        `json:"source"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// AggregatedIntelligence is the merged answer for one query. It is the
// terminal return value of one aggregation; ownership passes to the caller.
type AggregatedIntelligence struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Region     string `json:"region"`

	// Results preserves dispatch order for diagnostics; merge does not
	// depend on it.
	Results []IntelligenceResult   `json:"results"`
	Merged  map[string]MergedField `json:"merged"`

	OverallConfidence float64 `json:"overall_confidence"`
	ConfidenceLevel   Level   `json:"confidence_level"`

	SourcesUsed       []Source `json:"sources_used"`
	TotalSources      int      `json:"total_sources"`
	SuccessfulSources int      `json:"successful_sources"`

	Errors   []string  `json:"errors,omitempty"`
	Warnings []Warning `json:"warnings,omitempty"`

	ProcessingTime time.Duration `json:"processing_time"`
	CreatedAt      time.Time     `json:"created_at"`
}

// FlatMap renders the merged record in companion-key form: each field key
// maps to its winning value, with "<field>_source" naming the winner and
// "<field>_alternatives" carrying losing values where recorded. This is the
// shape exports and reports consume.
func (a *AggregatedIntelligence) FlatMap() map[string]any {
	out := make(map[string]any, len(a.Merged)*3)
	for key, mf := range a.Merged {
		out[key] = mf.Value
		out[key+"_source"] = string(mf.Source)
		if len(mf.Alternatives) > 0 {
			alts := make([]map[string]any, 0, len(mf.Alternatives))
			for _, alt := range mf.Alternatives {
				alts = append(alts, map[string]any{
					"source": string(alt.Source),
					"value":  alt.Value,
				})
			}
			out[key+"_alternatives"] = alts
		}
	}
	return out
}

// Field returns the winning value for a field key, if any.
func (a *AggregatedIntelligence) Field(key string) (any, bool) {
	mf, ok := a.Merged[key]
	if !ok {
		return nil, false
	}
	return mf.Value, true
}

// RecordError appends a per-source failure in "source: message" form.
func (a *AggregatedIntelligence) RecordError(source Source, msg string) {
	a.Errors = append(a.Errors, fmt.Sprintf("%s: %s", source, msg))
}
