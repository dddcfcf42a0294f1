package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const isoLayout = "2006-01-02"

const (
	minYear = 1900
	maxYear = 2099
)

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April, "may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var units = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teens = map[string]int{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var ordinals = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14,
	"fifteenth": 15, "sixteenth": 16, "seventeenth": 17, "eighteenth": 18,
	"nineteenth": 19, "twentieth": 20, "thirtieth": 30,
}

var (
	monthPattern = regexp.MustCompile(`(?i)\b(january|jan|february|feb|march|mar|april|apr|may|june|jun|july|jul|august|aug|september|sept|sep|october|oct|november|nov|december|dec)\b`)

	numericYearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	spelledYearPattern = regexp.MustCompile(`(?i)\btwo[\s-]+thousand\b(?:\s+and\b)?` +
		`(?:\s+(?:(twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)(?:[\s-]+(one|two|three|four|five|six|seven|eight|nine))?` +
		`|(ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen)` +
		`|(one|two|three|four|five|six|seven|eight|nine))\b)?`)

	ordinalDayPattern = regexp.MustCompile(`(?i)\b(?:(twenty|thirty)[\s-]+(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth)` +
		`|(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth|thirteenth|fourteenth|fifteenth|sixteenth|seventeenth|eighteenth|nineteenth|twentieth|thirtieth))\b`)
	numericDayPattern  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\b`)
	cardinalDayPattern = regexp.MustCompile(`(?i)\b(?:(twenty|thirty)(?:[\s-]+(one|two|three|four|five|six|seven|eight|nine))?` +
		`|(ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen)` +
		`|(one|two|three|four|five|six|seven|eight|nine))\b`)

	embeddedDatePattern = regexp.MustCompile(`\b(\d{4}-\d{1,2}-\d{1,2}|\d{1,2}/\d{1,2}/\d{2,4})\b`)
)

// Date resolves a free-text date answer to YYYY-MM-DD. A general parse is
// tried first, then any embedded numeric date, then a manual resolver that
// needs a month name, a day and a year. When no complete date can be built
// the raw answer is returned unchanged.
func Date(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return raw
	}

	if iso, ok := parseGeneral(text); ok {
		return iso
	}
	if iso, ok := resolveDate(text); ok {
		return iso
	}
	return raw
}

// parseGeneral runs the general parser on text, then on any embedded numeric
// date. Text without a year is left to the manual resolver, since the general
// parser fills a missing year with zero.
func parseGeneral(text string) (string, bool) {
	if !looksParseable(text) || !hasYear(text) {
		return "", false
	}
	for _, candidate := range []string{text, embeddedDatePattern.FindString(text)} {
		if candidate == "" {
			continue
		}
		t, err := dateparse.ParseIn(candidate, time.UTC)
		if err == nil && t.Year() >= minYear && t.Year() <= maxYear {
			return t.Format(isoLayout), true
		}
	}
	return "", false
}

func hasYear(text string) bool {
	return numericYearPattern.MatchString(text) || embeddedDatePattern.MatchString(text)
}

// looksParseable keeps bare numbers like "12" or "2019" away from the
// general parser, which would otherwise invent the missing parts.
func looksParseable(text string) bool {
	if !strings.ContainsAny(text, "0123456789") {
		return false
	}
	return len(strings.Fields(text)) > 1 || strings.ContainsAny(text, "-/.")
}

// resolveDate is the manual month/day/year resolver.
func resolveDate(text string) (string, bool) {
	month, ok := findMonth(text)
	if !ok {
		return "", false
	}

	year, span, ok := findYear(text)
	if !ok {
		return "", false
	}
	// The year span may contain words or digits that look like a day.
	rest := text[:span[0]] + strings.Repeat(" ", span[1]-span[0]) + text[span[1]:]

	day, ok := findDay(rest)
	if !ok {
		return "", false
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return "", false
	}
	return t.Format(isoLayout), true
}

func findMonth(text string) (time.Month, bool) {
	m := monthPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return months[strings.ToLower(m[1])], true
}

func findYear(text string) (int, [2]int, bool) {
	if loc := numericYearPattern.FindStringSubmatchIndex(text); loc != nil {
		year, _ := strconv.Atoi(text[loc[2]:loc[3]])
		return year, [2]int{loc[0], loc[1]}, true
	}

	loc := spelledYearPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, [2]int{}, false
	}
	year := 2000
	switch {
	case loc[2] >= 0:
		year += tens[strings.ToLower(text[loc[2]:loc[3]])]
		if loc[4] >= 0 {
			year += units[strings.ToLower(text[loc[4]:loc[5]])]
		}
	case loc[6] >= 0:
		year += teens[strings.ToLower(text[loc[6]:loc[7]])]
	case loc[8] >= 0:
		year += units[strings.ToLower(text[loc[8]:loc[9]])]
	}
	return year, [2]int{loc[0], loc[1]}, true
}

func findDay(text string) (int, bool) {
	if m := ordinalDayPattern.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return tens[strings.ToLower(m[1])] + ordinals[strings.ToLower(m[2])], true
		}
		return ordinals[strings.ToLower(m[3])], true
	}

	for _, m := range numericDayPattern.FindAllStringSubmatch(text, -1) {
		day, err := strconv.Atoi(m[1])
		if err == nil && day >= 1 && day <= 31 {
			return day, true
		}
	}

	if m := cardinalDayPattern.FindStringSubmatch(text); m != nil {
		switch {
		case m[1] != "":
			day := tens[strings.ToLower(m[1])]
			if m[2] != "" {
				day += units[strings.ToLower(m[2])]
			}
			return day, true
		case m[3] != "":
			return teens[strings.ToLower(m[3])], true
		default:
			return units[strings.ToLower(m[4])], true
		}
	}
	return 0, false
}
