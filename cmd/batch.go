package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/corpus"
	"github.com/sells-group/intake-cli/internal/model"
	"github.com/sells-group/intake-cli/internal/pipeline"
)

var (
	batchCorpus      string
	batchOutput      string
	batchConcurrency int
	batchMinPass     float64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a labelled corpus and report per-field accuracy",
	Long:  "Runs every case of a CSV, XLSX, JSON or YAML corpus through the pipeline in parallel, prints per-field accuracy and mismatches, and optionally writes the full report as JSON.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchConcurrency > 0 {
			cfg.Batch.Concurrency = batchConcurrency
		}

		p, err := initPipeline("batch")
		if err != nil {
			return err
		}

		cases, err := corpus.Load(batchCorpus)
		if err != nil {
			return err
		}

		rep, err := processBatch(ctx, p, cases, cfg.Batch.Concurrency)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), rep.Format())

		if batchOutput != "" {
			if err := writeReport(batchOutput, rep); err != nil {
				return err
			}
			zap.L().Info("batch report written", zap.String("path", batchOutput))
		}

		if batchMinPass > 0 && rep.Total > 0 {
			rate := float64(rep.Passed) / float64(rep.Total)
			if rate < batchMinPass {
				return eris.Errorf("batch: pass rate %.3f below --min-pass %.3f", rate, batchMinPass)
			}
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchCorpus, "corpus", "", "labelled corpus file (.csv, .xlsx, .json, .yaml)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write the full report as JSON to this path")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "parallel extractions (default from config)")
	batchCmd.Flags().Float64Var(&batchMinPass, "min-pass", 0, "fail when the fraction of fully passing cases is below this value")
	_ = batchCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(batchCmd)
}

// processBatch runs cases concurrently and scores the results.
func processBatch(ctx context.Context, p *pipeline.Pipeline, cases []corpus.Case, concurrency int) (*corpus.Report, error) {
	inputs := make([]model.Input, len(cases))
	for i, c := range cases {
		inputs[i] = c.Input()
	}

	traces, err := p.RunBatch(ctx, inputs, concurrency)
	if err != nil {
		return nil, err
	}

	results := make([]*model.ExtractionResult, len(traces))
	for i, t := range traces {
		results[i] = t.Result
	}

	rep, err := corpus.Evaluate(cases, results)
	if err != nil {
		return nil, err
	}

	zap.L().Info("batch complete",
		zap.Int("cases", rep.Total),
		zap.Int("passed", rep.Passed),
	)
	return rep, nil
}

func writeReport(path string, rep *corpus.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "batch: create output")
	}
	defer f.Close() //nolint:errcheck
	return encodeReport(f, rep)
}

func encodeReport(w io.Writer, rep *corpus.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return eris.Wrap(err, "batch: encode report")
	}
	return nil
}
