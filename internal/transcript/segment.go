// Package transcript turns an ordered conversation into the fixed schema of
// typed intake answers.
package transcript

import (
	"strings"

	"github.com/ppiankov/docket/internal/model"
)

// RawAnswer is a slot filled with the untouched response text.
type RawAnswer struct {
	Slot model.Slot
	Text string
}

// Segment pairs assistant prompts with the user responses that immediately
// follow them. The n-th answered pair fills schema[n]; question wording is
// never consulted. Turns before the first assistant turn are skipped. A pair
// whose response is blank is consumed without filling a slot. The result is
// in slot order and may be shorter than schema.
func Segment(turns []model.Turn, schema []model.Slot) []RawAnswer {
	start := len(turns)
	for i, turn := range turns {
		if turn.Role == model.RoleAssistant {
			start = i
			break
		}
	}

	out := make([]RawAnswer, 0, len(schema))
	for i := start; i+1 < len(turns) && len(out) < len(schema); {
		if turns[i].Role != model.RoleAssistant || turns[i+1].Role != model.RoleUser {
			i++
			continue
		}
		if answer := strings.TrimSpace(turns[i+1].Text); answer != "" {
			out = append(out, RawAnswer{Slot: schema[len(out)], Text: answer})
		}
		i += 2
	}
	return out
}
