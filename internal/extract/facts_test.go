package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/ppiankov/docket/internal/model"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
}

func TestObserveSingleUtterance(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "My name is Jane Marie Doe, I was arrested in CA in 2019 for petty theft, case CR123456, DOB: 4/12/1990")

	if facts.FullName == nil || *facts.FullName != "Jane Marie Doe" {
		t.Errorf("full name = %v", facts.FullName)
	}
	if facts.Jurisdiction == nil || *facts.Jurisdiction != "CA" {
		t.Errorf("jurisdiction = %v", facts.Jurisdiction)
	}
	if facts.DateOfBirth == nil || *facts.DateOfBirth != "4/12/1990" {
		t.Errorf("date of birth = %v", facts.DateOfBirth)
	}
	if !reflect.DeepEqual(facts.CaseNumbers, []string{"CR123456"}) {
		t.Errorf("case numbers = %v", facts.CaseNumbers)
	}
	if !reflect.DeepEqual(facts.Charges, []string{"petty theft"}) {
		t.Errorf("charges = %v", facts.Charges)
	}
	if !reflect.DeepEqual(facts.ArrestYears, []int{2019, 1990}) {
		t.Errorf("arrest years = %v", facts.ArrestYears)
	}
	if !reflect.DeepEqual(facts.DispositionDates, []string{"4/12/1990"}) {
		t.Errorf("disposition dates = %v", facts.DispositionDates)
	}
}

func TestObserveCaseNumbersAreDeduplicated(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "the case is 24CR00981")
	e.Observe(facts, "yes, 24CR00981 again")
	e.Observe(facts, "and also 24CR00982")

	want := []string{"24CR00981", "24CR00982"}
	if !reflect.DeepEqual(facts.CaseNumbers, want) {
		t.Errorf("case numbers = %v, want %v", facts.CaseNumbers, want)
	}
}

func TestObserveSkipsISODatesAsCaseNumbers(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "it was dismissed on 2021-05-14")

	if len(facts.CaseNumbers) != 0 {
		t.Errorf("case numbers = %v, want none", facts.CaseNumbers)
	}
	if !reflect.DeepEqual(facts.DispositionDates, []string{"2021-05-14"}) {
		t.Errorf("disposition dates = %v", facts.DispositionDates)
	}
}

func TestObserveArrestYearBounds(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "years 1949 1950 2024 2025 2099 and 2010 then 2010")

	want := []int{1950, 2024, 2010}
	if !reflect.DeepEqual(facts.ArrestYears, want) {
		t.Errorf("arrest years = %v, want %v", facts.ArrestYears, want)
	}
	for _, y := range facts.ArrestYears {
		if y < MinArrestYear || y > 2024 {
			t.Errorf("year %d out of range", y)
		}
	}
}

func TestObserveFirstWriteWins(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "my name is John Smith and I live in TX")
	e.Observe(facts, "Sorry, my name is Jack Smith, I moved to NV")

	if *facts.FullName != "John Smith" {
		t.Errorf("full name = %s, want John Smith", *facts.FullName)
	}
	if *facts.Jurisdiction != "TX" {
		t.Errorf("jurisdiction = %s, want TX", *facts.Jurisdiction)
	}
}

func TestObserveChargesLowerCasedAndDeduplicated(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "a DUI and a Misdemeanor")
	e.Observe(facts, "the dui was reduced")

	want := []string{"dui", "misdemeanor"}
	if !reflect.DeepEqual(facts.Charges, want) {
		t.Errorf("charges = %v, want %v", facts.Charges, want)
	}
}

func TestObserveDispositionDatesKeepDuplicates(t *testing.T) {
	e := NewFactExtractorAt(fixedClock())
	facts := model.NewFactSet()

	e.Observe(facts, "on 3/4/2020")
	e.Observe(facts, "yes 3/4/2020")

	if len(facts.DispositionDates) != 2 {
		t.Errorf("disposition dates = %v, want duplicate kept", facts.DispositionDates)
	}
}

func TestObserveIgnoresBlankUtterance(t *testing.T) {
	e := NewFactExtractor()
	facts := model.NewFactSet()
	e.Observe(facts, "   ")
	e.Observe(nil, "my name is Jane Doe")

	if facts.FullName != nil || len(facts.Charges) != 0 {
		t.Error("blank utterance must not change facts")
	}
}
