package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
)

// DecodeSourceRecord parses an extraction response or a saved source record.
// Both are loose with types, so a fine given as "$1,250.00" and a single
// violation given as a string are accepted. Empty values decode as missing.
func DecodeSourceRecord(raw string) (*model.SourceRecord, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	rec := &model.SourceRecord{}
	f := &rec.CaseFields
	f.CityOrCounty = looseString(obj[model.FieldCityOrCounty])
	f.CaseNumber = looseString(obj[model.FieldCaseNumber])
	f.Name = looseString(obj[model.FieldName])
	f.DateToAppear = looseString(obj[model.FieldDateToAppear])
	f.ViolationsChargedWith = looseStrings(obj[model.FieldViolationsChargedWith])
	f.Sentencing = looseString(obj[model.FieldSentencing])
	f.Fine = looseNumber(obj[model.FieldFine])
	f.FurtherInstruction = looseString(obj[model.FieldFurtherInstruction])
	f.ReportNumber = looseString(obj[model.FieldReportNumber])
	f.DateOfIncident = looseString(obj[model.FieldDateOfIncident])
	f.Officer = looseString(obj[model.FieldOfficer])
	f.LocationOfOccurrence = looseString(obj[model.FieldLocationOfOccurrence])
	if e := looseString(obj["error"]); e != nil {
		rec.Error = *e
	}
	return rec, nil
}

// DecodeDetermination parses an eligibility response. Confidence is clamped
// to 0-100.
func DecodeDetermination(raw string) (*model.Determination, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	d := &model.Determination{
		KeyFindings: []model.Finding{},
		NextSteps:   []string{},
	}

	eligible, ok := looseBool(obj["eligible"])
	if !ok {
		return nil, badResponse(fmt.Errorf("eligibility response has no eligible flag"))
	}
	d.Eligible = eligible

	if c := looseNumber(obj["confidence"]); c != nil {
		d.Confidence = int(math.Round(math.Max(0, math.Min(100, *c))))
	}

	if msg, ok := obj["key_findings"]; ok {
		var findings []model.Finding
		if err := json.Unmarshal(msg, &findings); err == nil {
			for _, f := range findings {
				if strings.TrimSpace(f.Title) == "" && strings.TrimSpace(f.Description) == "" {
					continue
				}
				d.KeyFindings = append(d.KeyFindings, f)
			}
		}
	}

	if steps := looseStrings(obj["next_steps"]); steps != nil {
		d.NextSteps = steps
	}
	return d, nil
}

// StripCodeFences removes a surrounding markdown code block
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func decodeObject(raw string) (map[string]json.RawMessage, error) {
	s := StripCodeFences(raw)

	// tolerate prose around the object
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, badResponse(fmt.Errorf("response contains no JSON object"))
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, badResponse(fmt.Errorf("decode response: %w", err))
	}
	return obj, nil
}

func badResponse(err error) error {
	return derrors.Wrap(err, derrors.CategoryOracleFailure, derrors.CodeOracleResponse, "retry or switch llm.model")
}

func looseString(msg json.RawMessage) *string {
	if len(msg) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil
	}
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

func looseStrings(msg json.RawMessage) []string {
	if len(msg) == 0 {
		return nil
	}
	var list []any
	if err := json.Unmarshal(msg, &list); err != nil {
		if s := looseString(msg); s != nil {
			return []string{*s}
		}
		return nil
	}

	var out []string
	for _, item := range list {
		data, _ := json.Marshal(item)
		if s := looseString(data); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func looseNumber(msg json.RawMessage) *float64 {
	if len(msg) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(t)
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		return &n
	}
	return nil
}

func looseBool(msg json.RawMessage) (bool, bool) {
	if len(msg) == 0 {
		return false, false
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}
