package model

import "time"

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one utterance in a conversation. Turns are append-only.
type Turn struct {
	Role    Role   `json:"role"`
	Text    string `json:"text"`
	Ordinal int    `json:"ordinal"`
}

// SessionState is the lifecycle state of a conversation session.
type SessionState string

const (
	SessionOpen   SessionState = "open"
	SessionClosed SessionState = "closed"
)

// Session is the persisted shape of one guided intake conversation.
type Session struct {
	ID        string       `json:"id"`
	StartedAt time.Time    `json:"started_at"`
	EndedAt   *time.Time   `json:"ended_at"`
	State     SessionState `json:"state"`
	Turns     []Turn       `json:"turns"`

	// Questions holds the semantically keyed answers and is authoritative.
	Questions Answers `json:"questions"`

	// LegacyQuestions is the positional q1..qN echo kept for older consumers.
	LegacyQuestions map[string]string `json:"legacy_questions,omitempty"`

	Facts *FactSet `json:"extracted_facts"`
}

// FactSet accumulates loosely structured facts mined from user turns.
// Scalar facts are first-write-wins; list facts only grow.
type FactSet struct {
	FullName         *string  `json:"full_name"`
	Jurisdiction     *string  `json:"jurisdiction"`
	DateOfBirth      *string  `json:"date_of_birth"`
	CaseNumbers      []string `json:"case_numbers"`
	Charges          []string `json:"charges"`
	DispositionDates []string `json:"disposition_dates"`
	ArrestYears      []int    `json:"arrest_years"`
}

// NewFactSet returns an empty fact set with non-nil lists.
func NewFactSet() *FactSet {
	return &FactSet{
		CaseNumbers:      []string{},
		Charges:          []string{},
		DispositionDates: []string{},
		ArrestYears:      []int{},
	}
}

// SetFullName sets the full name unless one is already known.
func (f *FactSet) SetFullName(name string) bool {
	return setOnce(&f.FullName, name)
}

// SetJurisdiction sets the jurisdiction unless one is already known.
func (f *FactSet) SetJurisdiction(code string) bool {
	return setOnce(&f.Jurisdiction, code)
}

// SetDateOfBirth sets the date of birth unless one is already known.
func (f *FactSet) SetDateOfBirth(dob string) bool {
	return setOnce(&f.DateOfBirth, dob)
}

// AddCaseNumber appends a case number if it is not already present.
func (f *FactSet) AddCaseNumber(cn string) bool {
	return appendUnique(&f.CaseNumbers, cn)
}

// AddCharge appends a charge if it is not already present.
func (f *FactSet) AddCharge(charge string) bool {
	return appendUnique(&f.Charges, charge)
}

// AddDispositionDate appends a date. Duplicates are kept.
func (f *FactSet) AddDispositionDate(d string) {
	f.DispositionDates = append(f.DispositionDates, d)
}

// AddArrestYear appends a year if it is not already present.
func (f *FactSet) AddArrestYear(year int) bool {
	for _, y := range f.ArrestYears {
		if y == year {
			return false
		}
	}
	f.ArrestYears = append(f.ArrestYears, year)
	return true
}

func setOnce(dst **string, v string) bool {
	if *dst != nil || v == "" {
		return false
	}
	*dst = &v
	return true
}

func appendUnique(dst *[]string, v string) bool {
	for _, existing := range *dst {
		if existing == v {
			return false
		}
	}
	*dst = append(*dst, v)
	return true
}
