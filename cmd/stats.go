package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/monitoring"
)

var (
	statsLookback int
	statsJSON     bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show lookup quality and source health statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("stats"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, statsLookback)
		if err != nil {
			return err
		}

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		formatStats(os.Stdout, snap)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLookback, "lookback-hours", 0, "restrict to the last N hours (0 = all history)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON")
	rootCmd.AddCommand(statsCmd)
}

func formatStats(out io.Writer, snap *monitoring.MetricsSnapshot) {
	window := "all history"
	if snap.LookbackHours > 0 {
		window = fmt.Sprintf("last %dh", snap.LookbackHours)
	}
	fmt.Fprintf(out, "Investigations: %d (%s)\n", snap.Total, window)
	if snap.Total == 0 {
		return
	}
	fmt.Fprintf(out, "Avg confidence: %.1f%%\n", snap.AvgConfidence)
	fmt.Fprintf(out, "Degraded rate:  %.1f%%\n\n", snap.DegradedRate*100)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tSUCCESS RATE")
	_, _ = fmt.Fprintln(w, "------\t------------")
	sources := make([]string, 0, len(snap.SourceSuccessRate))
	for src := range snap.SourceSuccessRate {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)
	for _, src := range sources {
		rate := snap.SourceSuccessRate[model.Source(src)]
		_, _ = fmt.Fprintf(w, "%s\t%.1f%%\n", src, rate*100)
	}
	_ = w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LEVEL\tCOUNT")
	_, _ = fmt.Fprintln(w, "-----\t-----")
	levels := make([]string, 0, len(snap.ByLevel))
	for lvl := range snap.ByLevel {
		levels = append(levels, string(lvl))
	}
	sort.Strings(levels)
	for _, lvl := range levels {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", lvl, snap.ByLevel[model.Level(lvl)])
	}
	_ = w.Flush()
}
