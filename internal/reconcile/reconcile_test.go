package reconcile

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
)

func TestMergePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		records map[Source]model.SourceRecord
		want    string
	}{
		{
			name: "summons wins over sentencing",
			records: map[Source]model.SourceRecord{
				SourceSummons:    {CaseFields: model.CaseFields{CaseNumber: model.String("A1")}},
				SourceSentencing: {CaseFields: model.CaseFields{CaseNumber: model.String("B1")}},
			},
			want: "A1",
		},
		{
			name: "missing summons falls through",
			records: map[Source]model.SourceRecord{
				SourceSummons:    {},
				SourceSentencing: {CaseFields: model.CaseFields{CaseNumber: model.String("B1")}},
			},
			want: "B1",
		},
		{
			name: "empty string counts as missing",
			records: map[Source]model.SourceRecord{
				SourceSummons:    {CaseFields: model.CaseFields{CaseNumber: model.String("")}},
				SourceSentencing: {CaseFields: model.CaseFields{CaseNumber: model.String("B1")}},
			},
			want: "B1",
		},
		{
			name: "police used last",
			records: map[Source]model.SourceRecord{
				SourcePolice: {CaseFields: model.CaseFields{CaseNumber: model.String("C1")}},
			},
			want: "C1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Merge(tt.records)
			if err != nil {
				t.Fatalf("Merge() error = %v", err)
			}
			if got.CaseNumber == nil || *got.CaseNumber != tt.want {
				t.Errorf("case_number = %v, want %q", got.CaseNumber, tt.want)
			}
		})
	}
}

func TestMergeSentencingOverridesFurtherInstruction(t *testing.T) {
	records := map[Source]model.SourceRecord{
		SourceSummons:    {CaseFields: model.CaseFields{FurtherInstruction: model.String("appear in person")}},
		SourceSentencing: {CaseFields: model.CaseFields{FurtherInstruction: model.String("X")}},
		SourcePolice:     {CaseFields: model.CaseFields{FurtherInstruction: model.String("none")}},
	}

	got, err := Merge(records)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.FurtherInstruction == nil || *got.FurtherInstruction != "X" {
		t.Errorf("further_instruction = %v, want X", got.FurtherInstruction)
	}
}

func TestMergeOverrideIgnoresMissingSentencingValue(t *testing.T) {
	records := map[Source]model.SourceRecord{
		SourceSummons:    {CaseFields: model.CaseFields{FurtherInstruction: model.String("appear in person")}},
		SourceSentencing: {CaseFields: model.CaseFields{FurtherInstruction: model.String("")}},
	}

	got, err := Merge(records)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.FurtherInstruction == nil || *got.FurtherInstruction != "appear in person" {
		t.Errorf("further_instruction = %v, want summons value", got.FurtherInstruction)
	}
}

func TestMergeNoDocuments(t *testing.T) {
	_, err := Merge(nil)
	if err == nil {
		t.Fatal("expected error for zero documents")
	}
	if !derrors.IsInput(err) {
		t.Errorf("expected input error, got %v", err)
	}
	if !strings.Contains(err.Error(), "at least one document required") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestMergeUnknownSource(t *testing.T) {
	_, err := Merge(map[Source]model.SourceRecord{"affidavit": {}})
	if derrors.CodeOf(err) != derrors.CodeUnknownSource {
		t.Fatalf("expected unknown source error, got %v", err)
	}
}

func TestMergeErrorMarkerDegradesSource(t *testing.T) {
	records := map[Source]model.SourceRecord{
		SourceSummons: {
			CaseFields: model.CaseFields{CaseNumber: model.String("A1")},
			Error:      "Failed to parse summons.pdf: timeout",
		},
		SourceSentencing: {CaseFields: model.CaseFields{CaseNumber: model.String("B1")}},
		SourcePolice:     {Error: "Failed to parse police.pdf: bad json"},
	}

	got, err := Merge(records)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if got.CaseNumber == nil || *got.CaseNumber != "B1" {
		t.Errorf("case_number = %v, want B1", got.CaseNumber)
	}
	want := []string{
		"Failed to parse summons.pdf: timeout",
		"Failed to parse police.pdf: bad json",
	}
	if !reflect.DeepEqual(got.ParsingErrors, want) {
		t.Errorf("parsing_errors = %v, want %v", got.ParsingErrors, want)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	records := map[Source]model.SourceRecord{
		SourceSummons: {CaseFields: model.CaseFields{
			Name:                  model.String("Jane Doe"),
			ViolationsChargedWith: []string{"VC 12500(a)"},
		}},
		SourceSentencing: {CaseFields: model.CaseFields{
			Fine:       model.Float(250),
			Sentencing: model.String("probation"),
		}},
		SourcePolice: {CaseFields: model.CaseFields{
			Officer:               model.String("Ofc. Smith"),
			ViolationsChargedWith: []string{"PC 484"},
		}},
	}

	first, err := Merge(records)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	firstJSON, _ := json.Marshal(first)

	for i := 0; i < 20; i++ {
		again, err := Merge(records)
		if err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		againJSON, _ := json.Marshal(again)
		if string(firstJSON) != string(againJSON) {
			t.Fatalf("non-deterministic merge:\n%s\n%s", firstJSON, againJSON)
		}
	}

	if !reflect.DeepEqual(first.ViolationsChargedWith, []string{"VC 12500(a)"}) {
		t.Errorf("violations = %v, want summons list", first.ViolationsChargedWith)
	}
	if first.Fine == nil || *first.Fine != 250 {
		t.Errorf("fine = %v, want 250", first.Fine)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	violations := []string{"PC 484"}
	records := map[Source]model.SourceRecord{
		SourceSummons: {CaseFields: model.CaseFields{ViolationsChargedWith: violations}},
	}

	got, err := Merge(records)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	got.ViolationsChargedWith[0] = "changed"
	if violations[0] != "PC 484" {
		t.Error("merged record shares memory with its input")
	}
}

func TestMergeMissingFieldsSerializeAsNull(t *testing.T) {
	got, err := Merge(map[Source]model.SourceRecord{
		SourceSummons: {CaseFields: model.CaseFields{Name: model.String("Jane Doe")}},
	})
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded) != len(model.Fields) {
		t.Errorf("got %d keys, want %d: %s", len(decoded), len(model.Fields), data)
	}
	for _, field := range model.Fields {
		v, ok := decoded[field.Name]
		if !ok {
			t.Errorf("missing key %s", field.Name)
			continue
		}
		if field.Name == model.FieldName {
			if v != "Jane Doe" {
				t.Errorf("name = %v", v)
			}
			continue
		}
		if v != nil {
			t.Errorf("%s = %v, want null", field.Name, v)
		}
	}
	if _, ok := decoded["parsing_errors"]; ok {
		t.Error("parsing_errors must be omitted when empty")
	}
}
