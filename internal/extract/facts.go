package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/docket/internal/model"
)

// MinArrestYear is the earliest year accepted as an arrest year.
const MinArrestYear = 1950

var (
	jurisdictionPattern = regexp.MustCompile(`\b([A-Z]{2})\b`)
	datePattern         = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})\b`)
	caseNumberPattern   = regexp.MustCompile(`\b([A-Z0-9][A-Z0-9-]{5,})\b`)
	isoDatePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern         = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	namePattern         = regexp.MustCompile(`\b(?i:my name is)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)+)\b`)
	dobPattern          = regexp.MustCompile(`(?i)\b(?:dob|date of birth)\s*[:\-]?\s*(\d{1,2}/\d{1,2}/\d{2,4})\b`)
)

// chargeKeywords is ordered longest first so "petty theft" wins over "theft".
var chargeKeywords = []string{
	"drug possession",
	"petty theft",
	"misdemeanor",
	"burglary",
	"assault",
	"felony",
	"theft",
	"dui",
}

var chargePattern = regexp.MustCompile(`(?i)\b(` + strings.Join(chargeKeywords, "|") + `)\b`)

// FactExtractor mines user utterances for loosely structured facts
type FactExtractor struct {
	now func() time.Time
}

// NewFactExtractor creates a fact extractor bounded by the current year
func NewFactExtractor() *FactExtractor {
	return &FactExtractor{now: time.Now}
}

// NewFactExtractorAt creates a fact extractor with a fixed clock
func NewFactExtractorAt(now func() time.Time) *FactExtractor {
	return &FactExtractor{now: now}
}

// Observe folds every fact found in utterance into facts. Each rule runs
// independently, so one utterance can populate several fields. Nothing is
// ever removed from facts.
func (e *FactExtractor) Observe(facts *model.FactSet, utterance string) {
	if facts == nil || strings.TrimSpace(utterance) == "" {
		return
	}

	if m := jurisdictionPattern.FindStringSubmatch(utterance); m != nil {
		facts.SetJurisdiction(m[1])
	}

	for _, m := range datePattern.FindAllStringSubmatch(utterance, -1) {
		facts.AddDispositionDate(m[1])
	}

	for _, m := range caseNumberPattern.FindAllStringSubmatch(utterance, -1) {
		// ISO dates are date-shaped, not case numbers
		if isoDatePattern.MatchString(m[1]) {
			continue
		}
		facts.AddCaseNumber(m[1])
	}

	maxYear := e.now().Year()
	for _, m := range yearPattern.FindAllStringSubmatch(utterance, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil || year < MinArrestYear || year > maxYear {
			continue
		}
		facts.AddArrestYear(year)
	}

	for _, m := range chargePattern.FindAllStringSubmatch(utterance, -1) {
		facts.AddCharge(strings.ToLower(m[1]))
	}

	if m := namePattern.FindStringSubmatch(utterance); m != nil {
		facts.SetFullName(m[1])
	}

	if m := dobPattern.FindStringSubmatch(utterance); m != nil {
		facts.SetDateOfBirth(m[1])
	}
}
