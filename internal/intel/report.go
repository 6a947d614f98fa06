package intel

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tracelight/osint-cli/internal/model"
)

const timeRounding = time.Millisecond

// WriteReport renders an aggregated record as a human-readable summary:
// header, merged fields with their winning source, contested alternatives,
// and any warnings or per-source errors.
func WriteReport(out io.Writer, agg *model.AggregatedIntelligence) {
	_, _ = fmt.Fprintf(out, "Identifier: %s (region %s)\n", agg.Identifier, agg.Region)
	_, _ = fmt.Fprintf(out, "Confidence: %.1f%% (%s)\n", agg.OverallConfidence, agg.ConfidenceLevel)
	_, _ = fmt.Fprintf(out, "Sources:    %d/%d succeeded in %s\n\n",
		agg.SuccessfulSources, agg.TotalSources, agg.ProcessingTime.Round(timeRounding))

	if len(agg.Merged) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "FIELD\tVALUE\tSOURCE\tALTERNATIVES")
		_, _ = fmt.Fprintln(w, "-----\t-----\t------\t------------")
		for _, key := range sortedFieldKeys(agg.Merged) {
			mf := agg.Merged[key]
			_, _ = fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", key, mf.Value, mf.Source, formatAlternatives(mf.Alternatives))
		}
		_ = w.Flush()
	}

	for _, warn := range agg.Warnings {
		_, _ = fmt.Fprintf(out, "\nwarning [%s]: %s\n", warn.Code, warn.Message)
	}
	if len(agg.Errors) > 0 {
		_, _ = fmt.Fprintln(out, "\nSource errors:")
		for _, e := range agg.Errors {
			_, _ = fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}

func sortedFieldKeys(merged map[string]model.MergedField) []string {
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatAlternatives(alts []model.Alternative) string {
	if len(alts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(alts))
	for _, alt := range alts {
		parts = append(parts, fmt.Sprintf("%v (%s)", alt.Value, alt.Source))
	}
	return strings.Join(parts, ", ")
}
