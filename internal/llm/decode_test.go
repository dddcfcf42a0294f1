package llm

import (
	"reflect"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```JSON\n{\"a\":1}```  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.input); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeSourceRecordLenientTypes(t *testing.T) {
	rec, err := DecodeSourceRecord(`Here you go: {"case_number": 12345678, "fine": 250,
		"violations_charged_with": ["VC 23152(a)", "", null, "VC 14601"], "name": "  "}`)
	if err != nil {
		t.Fatalf("DecodeSourceRecord() error = %v", err)
	}
	if rec.CaseNumber == nil || *rec.CaseNumber != "12345678" {
		t.Errorf("case_number = %v", rec.CaseNumber)
	}
	if rec.Fine == nil || *rec.Fine != 250 {
		t.Errorf("fine = %v", rec.Fine)
	}
	if !reflect.DeepEqual(rec.ViolationsChargedWith, []string{"VC 23152(a)", "VC 14601"}) {
		t.Errorf("violations = %v", rec.ViolationsChargedWith)
	}
	if rec.Name != nil {
		t.Errorf("blank name must be missing, got %q", *rec.Name)
	}
}

func TestDecodeSourceRecordEmptyCollections(t *testing.T) {
	rec, err := DecodeSourceRecord(`{"violations_charged_with": [], "fine": "n/a", "officer": {}}`)
	if err != nil {
		t.Fatalf("DecodeSourceRecord() error = %v", err)
	}
	if rec.ViolationsChargedWith != nil || rec.Fine != nil || rec.Officer != nil {
		t.Errorf("expected all missing, got %+v", rec.CaseFields)
	}
}

func TestDecodeSourceRecordRejectsNonFiniteFine(t *testing.T) {
	for _, fine := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`} {
		rec, err := DecodeSourceRecord(`{"fine": ` + fine + `}`)
		if err != nil {
			t.Fatalf("DecodeSourceRecord(fine=%s) error = %v", fine, err)
		}
		if rec.Fine != nil {
			t.Errorf("fine=%s decoded as %v, want missing", fine, *rec.Fine)
		}
	}
}

func TestDecodeSourceRecordKeepsErrorMarker(t *testing.T) {
	rec, err := DecodeSourceRecord(`{"case_number": "24CR00981", "error": "Failed to parse order.pdf: timeout"}`)
	if err != nil {
		t.Fatalf("DecodeSourceRecord() error = %v", err)
	}
	if rec.Error != "Failed to parse order.pdf: timeout" {
		t.Errorf("error = %q", rec.Error)
	}
}

func TestDecodeDetermination(t *testing.T) {
	d, err := DecodeDetermination(`{"eligible": "false", "confidence": 140, "next_steps": "Wait for probation to end"}`)
	if err != nil {
		t.Fatalf("DecodeDetermination() error = %v", err)
	}
	if d.Eligible {
		t.Error("expected not eligible")
	}
	if d.Confidence != 100 {
		t.Errorf("confidence = %d, want clamped 100", d.Confidence)
	}
	if !reflect.DeepEqual(d.NextSteps, []string{"Wait for probation to end"}) {
		t.Errorf("next steps = %v", d.NextSteps)
	}
	if d.KeyFindings == nil {
		t.Error("key findings must be an empty list, not nil")
	}
}

func TestDecodeDeterminationRequiresEligibleFlag(t *testing.T) {
	if _, err := DecodeDetermination(`{"confidence": 50}`); err == nil {
		t.Fatal("expected error without eligible flag")
	}
	if _, err := DecodeDetermination(`no json here`); err == nil {
		t.Fatal("expected error for prose response")
	}
}
