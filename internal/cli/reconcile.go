package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/pipeline"
)

var (
	summonsRef    string
	sentencingRef string
	policeRef     string
	outJSON       string
	runTimeout    time.Duration
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Merge court documents into one case record",
	Long: `Reconcile extracts the case fields of each given document and merges
them into a single case record.

When documents disagree the summons wins, then the sentencing order, then
the police report. The sentencing order's further instructions always win.
A document that cannot be read or extracted is reported under
parsing_errors instead of failing the run.

Documents may be local files (.txt, .md, .html) or http(s) URLs. A .json
file is taken as an already extracted record and skips the oracle.

Example:
  docket reconcile --summons summons.txt --sentencing order.html
  docket reconcile --police report.json --json case.json
  docket reconcile --sentencing https://court.example.org/orders/24CR00981`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&summonsRef, "summons", "", "summons document (file or URL)")
	reconcileCmd.Flags().StringVar(&sentencingRef, "sentencing", "", "sentencing order (file or URL)")
	reconcileCmd.Flags().StringVar(&policeRef, "police", "", "police report (file or URL)")
	reconcileCmd.Flags().StringVar(&outJSON, "json", "-", "output JSON path, - for stdout")
	reconcileCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall timeout")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	docs := documentsFromFlags()
	p, cleanup, err := newPipeline()
	if err != nil {
		return err
	}
	defer cleanup()

	progressf("⚙️  Reconciling %d documents\n", len(docs))
	rec, err := p.ReconcileDocuments(ctx, docs)
	if err != nil {
		return err
	}
	progressf("✓ Case record built (%d parsing errors)\n", len(rec.ParsingErrors))

	if err := pipeline.NewRenderer(cmd.OutOrStdout()).RenderJSON(rec, outJSON); err != nil {
		return err
	}
	if outJSON != "-" && outJSON != "" {
		progressf("✓ Wrote JSON: %s\n", outJSON)
	}
	return nil
}

// documentsFromFlags lists the given documents in priority order
func documentsFromFlags() []pipeline.Document {
	return pipeline.ManifestCase{
		Summons:    summonsRef,
		Sentencing: sentencingRef,
		Police:     policeRef,
	}.Documents()
}

// newPipeline builds the pipeline from the effective config and returns a
// cleanup func that flushes the logger
func newPipeline() (*pipeline.Pipeline, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return newPipelineFrom(cfg)
}

func newPipelineFrom(cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	logger, err := newLogger(verbose)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = logger.Sync() }

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}
