// Package reconcile merges per-document extraction records into one
// canonical case record.
//
// Merge is pure: it performs no I/O and never mutates its inputs, so the
// same input always produces the same record.
package reconcile

import (
	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
)

// Source names a kind of court document.
type Source string

const (
	SourceSummons    Source = "summons"
	SourceSentencing Source = "sentencing"
	SourcePolice     Source = "police"
)

// Priority is the tie-break order applied when sources disagree.
var Priority = []Source{SourceSummons, SourceSentencing, SourcePolice}

// OverrideSource supplies further_instruction regardless of Priority.
const OverrideSource = SourceSentencing

// ParseSource returns the Source named s.
func ParseSource(s string) (Source, bool) {
	for _, src := range Priority {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// Merge reconciles the given source records. For each canonical field the
// first non-missing value in Priority order wins; afterwards a non-missing
// further_instruction from OverrideSource replaces the chosen value.
// Records carrying an error marker contribute nothing except their error,
// which is reported in ParsingErrors.
func Merge(records map[Source]model.SourceRecord) (*model.CaseRecord, error) {
	if len(records) == 0 {
		return nil, derrors.Input(derrors.CodeNoDocuments, "at least one document required")
	}
	for src := range records {
		if _, ok := ParseSource(string(src)); !ok {
			return nil, derrors.Input(derrors.CodeUnknownSource, "unknown document source %q", src)
		}
	}

	usable := make([]*model.CaseFields, 0, len(Priority))
	var parsingErrors []string
	for _, src := range Priority {
		rec, ok := records[src]
		if !ok {
			continue
		}
		if rec.Error != "" {
			parsingErrors = append(parsingErrors, rec.Error)
			continue
		}
		fields := rec.CaseFields
		usable = append(usable, &fields)
	}

	merged := &model.CaseRecord{}
	for _, field := range model.Fields {
		for _, fields := range usable {
			if field.Present(fields) {
				field.CopyTo(&merged.CaseFields, fields)
				break
			}
		}
	}

	if override, ok := records[OverrideSource]; ok && override.Error == "" {
		field, _ := model.FieldByName(model.FieldFurtherInstruction)
		if field.Present(&override.CaseFields) {
			field.CopyTo(&merged.CaseFields, &override.CaseFields)
		}
	}

	if len(parsingErrors) > 0 {
		merged.ParsingErrors = parsingErrors
	}

	return merged, nil
}
