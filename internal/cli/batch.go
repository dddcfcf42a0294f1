package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docket/internal/pipeline"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Reconcile many cases from a manifest in parallel",
	Long: `Batch reconciles every case listed in a YAML manifest and writes one case
record per case into the output directory.

Manifest format:
  cases:
    - id: doe-2024
      summons: doe/summons.txt
      sentencing: https://court.example.org/orders/24CR00981
      police: doe/police.json

Example:
  docket batch cases.yaml
  docket batch cases.yaml --concurrency 4 --output-dir ./records`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of cases processed at once")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./docket-records", "output directory for case records")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	manifest, err := pipeline.LoadManifest(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, cleanup, err := newPipeline()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(os.Stderr, "⚙️  Reconciling %d cases with %d workers\n\n", len(manifest.Cases), concurrency)

	renderer := pipeline.NewRenderer(cmd.OutOrStdout())
	failures := 0
	for _, result := range p.ReconcileBatch(ctx, manifest, concurrency) {
		if result.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, result.Err)
			continue
		}

		path := filepath.Join(outputDir, sanitizeFilename(result.ID)+".json")
		if err := renderer.RenderJSON(result.Record, path); err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ID, err)
			continue
		}

		note := ""
		if n := len(result.Record.ParsingErrors); n > 0 {
			note = fmt.Sprintf(" (%d parsing errors)", n)
		}
		fmt.Fprintf(os.Stderr, "✓ %s → %s%s\n", result.ID, path, note)
	}

	fmt.Fprintf(os.Stderr, "\n  Total:     %d cases\n", len(manifest.Cases))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", len(manifest.Cases)-failures)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)

	if failures > 0 {
		return fmt.Errorf("%d of %d cases failed", failures, len(manifest.Cases))
	}
	return nil
}

// sanitizeFilename turns a case id into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		return "case"
	}
	return s
}
