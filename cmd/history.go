package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/store"
)

var (
	historyIdentifier string
	historyRegion     string
	historyLevel      string
	historyLimit      int
	historyJSON       bool
	historyPurgeDays  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored investigations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("history"); err != nil {
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

		if historyPurgeDays > 0 {
			cutoff := time.Now().UTC().AddDate(0, 0, -historyPurgeDays)
			n, err := st.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "purged %d investigations older than %d days\n", n, historyPurgeDays)
			return nil
		}

		invs, err := st.ListInvestigations(ctx, store.Filter{
			Identifier: historyIdentifier,
			Region:     historyRegion,
			Level:      model.Level(historyLevel),
			Limit:      historyLimit,
		})
		if err != nil {
			return err
		}

		if historyJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(invs)
		}

		formatInvestigations(os.Stdout, invs)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyIdentifier, "identifier", "", "filter by phone number")
	historyCmd.Flags().StringVar(&historyRegion, "region", "", "filter by ISO country code")
	historyCmd.Flags().StringVar(&historyLevel, "level", "", "filter by confidence level")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "max rows")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print full JSON records")
	historyCmd.Flags().IntVar(&historyPurgeDays, "purge-older-than", 0, "delete investigations older than N days and exit")
	rootCmd.AddCommand(historyCmd)
}

func formatInvestigations(out io.Writer, invs []model.Investigation) {
	if len(invs) == 0 {
		fmt.Fprintln(out, "no investigations found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tIDENTIFIER\tREGION\tCONFIDENCE\tLEVEL\tSOURCES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----------\t------\t----------\t-----\t-------\t-------")

	for _, inv := range invs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%d/%d\t%s\n",
			shortID(inv.ID),
			inv.Identifier,
			inv.Region,
			inv.OverallConfidence,
			inv.ConfidenceLevel,
			inv.SuccessfulSources,
			inv.TotalSources,
			inv.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
