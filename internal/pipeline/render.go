package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/util"
)

// EligibilityReport bundles everything an eligibility check looked at
// together with the verdict
type EligibilityReport struct {
	GeneratedAt   time.Time            `json:"generated_at"`
	Case          *model.CaseRecord    `json:"case"`
	Answers       model.Answers        `json:"answers"`
	Determination *model.Determination `json:"determination"`
}

// Renderer writes results as JSON or Markdown, to a file or to out
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer that writes to out when no path is given
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// RenderJSON writes v as indented JSON. An empty path or "-" writes to the
// renderer's output.
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return r.write(data, path)
}

// RenderMarkdown writes a human-readable eligibility report
func (r *Renderer) RenderMarkdown(report *EligibilityReport, path string) error {
	return r.write([]byte(Markdown(report)), path)
}

// RenderSummary prints a short verdict line
func (r *Renderer) RenderSummary(det *model.Determination) {
	if det == nil {
		return
	}
	verdict := "NOT ELIGIBLE"
	if det.Eligible {
		verdict = "ELIGIBLE"
	}
	_, _ = fmt.Fprintf(r.out, "%s (confidence %d%%)\n", verdict, det.Confidence)
	for _, step := range det.NextSteps {
		_, _ = fmt.Fprintf(r.out, "  → %s\n", step)
	}
}

func (r *Renderer) write(data []byte, path string) error {
	if path == "" || path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if err := util.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown formats an eligibility report
func Markdown(report *EligibilityReport) string {
	var b strings.Builder

	b.WriteString("# Eligibility Report\n\n")
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "_Generated %s_\n\n", report.GeneratedAt.UTC().Format(time.RFC3339))
	}

	if det := report.Determination; det != nil {
		verdict := "Not eligible"
		if det.Eligible {
			verdict = "Eligible"
		}
		fmt.Fprintf(&b, "**Verdict:** %s (confidence %d%%)\n\n", verdict, det.Confidence)

		if len(det.KeyFindings) > 0 {
			b.WriteString("## Key Findings\n\n")
			for _, f := range det.KeyFindings {
				fmt.Fprintf(&b, "- **%s**: %s\n", f.Title, f.Description)
			}
			b.WriteString("\n")
		}
		if len(det.NextSteps) > 0 {
			b.WriteString("## Next Steps\n\n")
			for i, step := range det.NextSteps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
			b.WriteString("\n")
		}
	}

	if report.Case != nil {
		b.WriteString("## Case Record\n\n| Field | Value |\n|---|---|\n")
		for _, fd := range model.Fields {
			fmt.Fprintf(&b, "| %s | %s |\n", fd.Name, caseValue(&report.Case.CaseFields, fd))
		}
		b.WriteString("\n")
		if len(report.Case.ParsingErrors) > 0 {
			b.WriteString("### Parsing Errors\n\n")
			for _, e := range report.Case.ParsingErrors {
				fmt.Fprintf(&b, "- %s\n", e)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Answers) > 0 {
		b.WriteString("## Intake Answers\n\n| Question | Answer |\n|---|---|\n")
		for _, ans := range report.Answers {
			fmt.Fprintf(&b, "| %s | %v |\n", ans.Key, ans.Value)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func caseValue(f *model.CaseFields, fd model.Field) string {
	switch v := fd.Value(f).(type) {
	case nil:
		return "—"
	case []string:
		return escapeCell(strings.Join(v, "; "))
	case float64:
		return fmt.Sprintf("$%.2f", v)
	default:
		return escapeCell(fmt.Sprint(v))
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
