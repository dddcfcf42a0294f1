package model

// CaseFields holds the twelve canonical fields shared by per-document
// extraction records and the merged case record. A nil pointer, an empty
// string and an empty slice all mean "missing".
type CaseFields struct {
	CityOrCounty          *string  `json:"city_or_county"`
	CaseNumber            *string  `json:"case_number"`
	Name                  *string  `json:"name"`
	DateToAppear          *string  `json:"date_to_appear"`
	ViolationsChargedWith []string `json:"violations_charged_with"`
	Sentencing            *string  `json:"sentencing"`
	Fine                  *float64 `json:"fine"`
	FurtherInstruction    *string  `json:"further_instruction"`
	ReportNumber          *string  `json:"report_number"`
	DateOfIncident        *string  `json:"date_of_incident"`
	Officer               *string  `json:"officer"`
	LocationOfOccurrence  *string  `json:"location_of_occurrence"`
}

// SourceRecord is what the document extraction oracle produced for one
// document. A non-empty Error marks the whole record as unusable.
type SourceRecord struct {
	CaseFields
	Error string `json:"error,omitempty"`
}

// CaseRecord is the canonical record merged from all source documents.
type CaseRecord struct {
	CaseFields
	ParsingErrors []string `json:"parsing_errors,omitempty"`
}

// Field describes one canonical field: how to tell whether a record carries
// a value for it and how to copy that value into another record.
type Field struct {
	Name    string
	present func(f *CaseFields) bool
	copy    func(dst, src *CaseFields)
	value   func(f *CaseFields) any
}

// Present reports whether f carries a non-missing value for the field.
func (fd Field) Present(f *CaseFields) bool {
	return f != nil && fd.present(f)
}

// CopyTo copies the field value from src into dst. The copy shares no memory
// with src.
func (fd Field) CopyTo(dst, src *CaseFields) {
	fd.copy(dst, src)
}

// Value returns the field value of f, or nil when it is missing.
func (fd Field) Value(f *CaseFields) any {
	if !fd.Present(f) {
		return nil
	}
	return fd.value(f)
}

// Field names in canonical order.
const (
	FieldCityOrCounty          = "city_or_county"
	FieldCaseNumber            = "case_number"
	FieldName                  = "name"
	FieldDateToAppear          = "date_to_appear"
	FieldViolationsChargedWith = "violations_charged_with"
	FieldSentencing            = "sentencing"
	FieldFine                  = "fine"
	FieldFurtherInstruction    = "further_instruction"
	FieldReportNumber          = "report_number"
	FieldDateOfIncident        = "date_of_incident"
	FieldOfficer               = "officer"
	FieldLocationOfOccurrence  = "location_of_occurrence"
)

// Fields is the fixed, ordered list of canonical fields.
var Fields = []Field{
	stringField(FieldCityOrCounty, func(f *CaseFields) **string { return &f.CityOrCounty }),
	stringField(FieldCaseNumber, func(f *CaseFields) **string { return &f.CaseNumber }),
	stringField(FieldName, func(f *CaseFields) **string { return &f.Name }),
	stringField(FieldDateToAppear, func(f *CaseFields) **string { return &f.DateToAppear }),
	{
		Name:    FieldViolationsChargedWith,
		present: func(f *CaseFields) bool { return len(f.ViolationsChargedWith) > 0 },
		copy: func(dst, src *CaseFields) {
			dst.ViolationsChargedWith = append([]string(nil), src.ViolationsChargedWith...)
		},
		value: func(f *CaseFields) any { return f.ViolationsChargedWith },
	},
	stringField(FieldSentencing, func(f *CaseFields) **string { return &f.Sentencing }),
	{
		Name:    FieldFine,
		present: func(f *CaseFields) bool { return f.Fine != nil },
		copy: func(dst, src *CaseFields) {
			v := *src.Fine
			dst.Fine = &v
		},
		value: func(f *CaseFields) any { return *f.Fine },
	},
	stringField(FieldFurtherInstruction, func(f *CaseFields) **string { return &f.FurtherInstruction }),
	stringField(FieldReportNumber, func(f *CaseFields) **string { return &f.ReportNumber }),
	stringField(FieldDateOfIncident, func(f *CaseFields) **string { return &f.DateOfIncident }),
	stringField(FieldOfficer, func(f *CaseFields) **string { return &f.Officer }),
	stringField(FieldLocationOfOccurrence, func(f *CaseFields) **string { return &f.LocationOfOccurrence }),
}

// FieldByName returns the canonical field with the given name.
func FieldByName(name string) (Field, bool) {
	for _, fd := range Fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

func stringField(name string, ref func(f *CaseFields) **string) Field {
	return Field{
		Name: name,
		present: func(f *CaseFields) bool {
			p := *ref(f)
			return p != nil && *p != ""
		},
		copy: func(dst, src *CaseFields) {
			v := **ref(src)
			*ref(dst) = &v
		},
		value: func(f *CaseFields) any { return **ref(f) },
	}
}

// String returns a pointer to s, for building records in code and tests.
func String(s string) *string {
	return &s
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
