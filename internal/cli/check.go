package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/pipeline"
)

var (
	checkCase    string
	checkSession string
	checkAnswers string
	checkJSON    string
	checkMD      string
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the eligibility oracle about a case",
	Long: `Check sends a reconciled case record and the typed intake answers to the
eligibility oracle and prints its determination.

The oracle only sees the case record and the answers, never the raw
documents or the transcript. Its verdict is advisory.

Example:
  docket reconcile --summons summons.txt --json case.json
  docket check --case case.json --session 3f2c...
  docket check --case case.json --answers answers.json --md report.md`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkCase, "case", "", "case record JSON produced by reconcile (required)")
	checkCmd.Flags().StringVar(&checkSession, "session", "", "stored session id or file supplying the answers")
	checkCmd.Flags().StringVar(&checkAnswers, "answers", "", "answers JSON file or .jsonl transcript")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", "write the full report as JSON (- for stdout)")
	checkCmd.Flags().StringVar(&checkMD, "md", "", "write the report as Markdown")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
	_ = checkCmd.MarkFlagRequired("case")
	checkCmd.MarkFlagsMutuallyExclusive("session", "answers")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	caseRecord, err := readCaseRecord(checkCase)
	if err != nil {
		return err
	}
	answers, err := checkAnswerSet()
	if err != nil {
		return err
	}

	p, cleanup, err := newPipeline()
	if err != nil {
		return err
	}
	defer cleanup()

	progressf("⚙️  Assessing eligibility (%d answers)\n", len(answers))
	det, err := p.CheckEligibility(ctx, caseRecord, answers)
	if err != nil {
		return err
	}

	report := &pipeline.EligibilityReport{
		GeneratedAt:   time.Now().UTC(),
		Case:          caseRecord,
		Answers:       answers,
		Determination: det,
	}
	r := pipeline.NewRenderer(cmd.OutOrStdout())

	if checkJSON != "" {
		if err := r.RenderJSON(report, checkJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if checkJSON != "-" {
			progressf("✓ Wrote JSON: %s\n", checkJSON)
		}
	}
	if checkMD != "" {
		if err := r.RenderMarkdown(report, checkMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		progressf("✓ Wrote Markdown: %s\n", checkMD)
	}
	if checkJSON != "-" {
		r.RenderSummary(det)
	}
	return nil
}

func readCaseRecord(path string) (*model.CaseRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case record: %w", err)
	}
	var rec model.CaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, derrors.Wrap(fmt.Errorf("decode case record %s: %w", path, err),
			derrors.CategoryInvalidInput, derrors.CodeMissingCase, "produce one with `docket reconcile --json case.json`")
	}
	return &rec, nil
}

// checkAnswerSet loads the answers named by --session or --answers. With
// neither, the assessment runs on the case record alone.
func checkAnswerSet() (model.Answers, error) {
	switch {
	case checkSession != "":
		return answersFor(checkSession)
	case checkAnswers == "":
		return model.Answers{}, nil
	}

	if strings.EqualFold(filepath.Ext(checkAnswers), ".jsonl") {
		return answersFor(checkAnswers)
	}

	data, err := os.ReadFile(checkAnswers)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers model.Answers
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, derrors.Input(derrors.CodeInvalidSession, "decode answers %s: %v", checkAnswers, err)
	}
	return answers, nil
}
