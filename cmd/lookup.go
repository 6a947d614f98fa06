package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/tracelight/osint-cli/internal/intel"
	"github.com/tracelight/osint-cli/internal/model"
)

var (
	lookupRegion  string
	lookupSources []string
	lookupJSON    bool
	lookupNoStore bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <number>",
	Short: "Investigate a single phone number across all sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("lookup"); err != nil {
			return err
		}

		env, err := initEngine(ctx, !lookupNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		sources, err := parseSources(lookupSources)
		if err != nil {
			return err
		}

		agg, err := env.Aggregator.Aggregate(ctx, args[0], lookupRegion, sources)
		if err != nil {
			return err
		}

		env.persist(ctx, agg)

		if lookupJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(agg)
		}

		intel.WriteReport(os.Stdout, agg)
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupRegion, "region", "", "ISO country code (auto-detected when empty)")
	lookupCmd.Flags().StringSliceVar(&lookupSources, "sources", nil, "restrict to specific sources (default all)")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print full JSON record")
	lookupCmd.Flags().BoolVar(&lookupNoStore, "no-store", false, "skip persisting the investigation")
	rootCmd.AddCommand(lookupCmd)
}

func parseSources(names []string) ([]model.Source, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]model.Source, 0, len(names))
	for _, name := range names {
		src, err := model.ParseSource(name)
		if err != nil {
			return nil, eris.Wrapf(err, "flag --sources")
		}
		out = append(out, src)
	}
	return out, nil
}
