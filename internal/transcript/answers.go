package transcript

import (
	"fmt"
	"strings"

	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/normalize"
)

// Analyze segments turns against the intake schema and normalizes each
// answer according to its slot type.
func Analyze(turns []model.Turn) model.Answers {
	return Assemble(Segment(turns, model.IntakeSchema))
}

// Assemble normalizes already segmented answers.
func Assemble(raw []RawAnswer) model.Answers {
	answers := make(model.Answers, 0, len(raw))
	for _, r := range raw {
		answers = append(answers, model.Answer{
			Key:   r.Slot.Key,
			Type:  r.Slot.Type,
			Raw:   r.Text,
			Value: normalize.Normalize(r.Text, r.Slot.Type),
		})
	}
	return answers
}

// LegacyEcho tracks the positional q1..qN echo of an in-progress
// conversation. Any assistant turn containing a question mark advances the
// question counter; the next user turn is echoed under that number when it
// is within the schema length.
type LegacyEcho struct {
	limit    int
	question int
	entries  map[string]string
}

// NewLegacyEcho returns an echo holding at most limit entries.
func NewLegacyEcho(limit int) *LegacyEcho {
	return &LegacyEcho{limit: limit, entries: make(map[string]string)}
}

// Observe records one turn.
func (e *LegacyEcho) Observe(role model.Role, text string) {
	switch role {
	case model.RoleAssistant:
		if strings.Contains(text, "?") {
			e.question++
		}
	case model.RoleUser:
		if e.question >= 1 && e.question <= e.limit {
			e.entries[fmt.Sprintf("q%d", e.question)] = text
		}
	}
}

// Entries returns a copy of the echoed answers, or nil when there are none.
func (e *LegacyEcho) Entries() map[string]string {
	if len(e.entries) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.entries))
	for k, v := range e.entries {
		out[k] = v
	}
	return out
}
