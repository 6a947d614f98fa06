package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tracelight/osint-cli/internal/model"
)

var (
	batchFile        string
	batchRegion      string
	batchLimit       int
	batchConcurrency int
	batchOutput      string
	batchNoStore     bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Investigate phone numbers from a CSV file",
	Long: `Reads phone numbers from a CSV file and investigates them concurrently.

The first column of each row is the number; an optional second column is the
ISO region. The --region flag provides a default for rows without one.

Examples:
  osint-cli batch --file numbers.csv
  osint-cli batch --file numbers.csv --region IN --concurrency 10 --output results.jsonl`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		entries, err := readBatchFile(batchFile, batchRegion)
		if err != nil {
			return err
		}
		if batchLimit > 0 && batchLimit < len(entries) {
			entries = entries[:batchLimit]
		}
		if len(entries) == 0 {
			zap.L().Info("no numbers to process")
			return nil
		}

		env, err := initEngine(ctx, !batchNoStore)
		if err != nil {
			return err
		}
		defer env.Close()

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentNumbers
		}
		zap.L().Info("processing batch",
			zap.Int("numbers", len(entries)),
			zap.Int("concurrency", concurrency),
		)

		results := make([]*model.AggregatedIntelligence, len(entries))
		var succeeded, failed atomic.Int64

		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, entry := range entries {
			g.Go(func() error {
				agg, lookupErr := env.Aggregator.Aggregate(gCtx, entry.number, entry.region, nil)
				if lookupErr != nil {
					failed.Add(1)
					zap.L().Error("batch: lookup failed",
						zap.String("number", entry.number),
						zap.Error(lookupErr),
					)
					return nil // don't abort batch on individual failure
				}
				succeeded.Add(1)
				env.persist(gCtx, agg)
				results[i] = agg
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int64("succeeded", succeeded.Load()),
			zap.Int64("failed", failed.Load()),
		)

		if batchOutput != "" {
			return writeBatchResults(batchOutput, results)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "CSV file of numbers (required)")
	batchCmd.Flags().StringVar(&batchRegion, "region", "", "default ISO country code for rows without one")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max numbers to process (0 = all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent lookups (default from config)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results as JSON lines to this file")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip persisting investigations")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

type batchEntry struct {
	number string
	region string
}

// readBatchFile parses the input CSV. Rows starting with # and a header row
// naming a "number"/"phone" column are skipped.
func readBatchFile(path, defaultRegion string) ([]batchEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var entries []batchEntry
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read %s", path)
		}
		if len(row) == 0 || row[0] == "" || strings.HasPrefix(row[0], "#") {
			continue
		}
		first := strings.ToLower(strings.TrimSpace(row[0]))
		if first == "number" || first == "phone" || first == "phone_number" {
			continue
		}

		entry := batchEntry{number: strings.TrimSpace(row[0]), region: defaultRegion}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			entry.region = strings.ToUpper(strings.TrimSpace(row[1]))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// writeBatchResults writes one JSON record per line, skipping failed slots.
func writeBatchResults(path string, results []*model.AggregatedIntelligence) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "batch: create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, agg := range results {
		if agg == nil {
			continue
		}
		if err := enc.Encode(agg); err != nil {
			return eris.Wrap(err, "batch: encode result")
		}
	}
	zap.L().Info("results written", zap.String("path", path))
	return nil
}
