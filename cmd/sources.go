package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tracelight/osint-cli/internal/intel"
	"github.com/tracelight/osint-cli/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List intelligence sources and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sources"); err != nil {
			return err
		}

		env, err := initEngine(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer env.Close()

		formatSources(os.Stdout, env.Registry, env.Config)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func formatSources(out io.Writer, reg *source.Registry, engineCfg *intel.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tKIND\tWEIGHT\tAVAILABLE")
	_, _ = fmt.Fprintln(w, "------\t----\t------\t---------")

	for _, src := range reg.List() {
		p := reg.Get(src)
		kind := "offline"
		if p.Remote() {
			kind = "remote"
		}
		available := "yes"
		if !p.Available() {
			available = "no (missing api key)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", src, kind, engineCfg.Weight(src), available)
	}
	_ = w.Flush()
}
