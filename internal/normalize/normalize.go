// Package normalize converts raw intake answers into typed values.
//
// Every function here is total: unclassifiable input falls back to a
// documented default (false for booleans, the raw string for dates) rather
// than returning an error.
package normalize

import (
	"strings"

	"github.com/ppiankov/docket/internal/model"
)

// Normalize converts raw according to the slot type. Text and date slots
// yield a string, boolean slots yield a bool.
func Normalize(raw string, typ model.SlotType) any {
	switch typ {
	case model.SlotBoolean:
		return Boolean(raw)
	case model.SlotDate:
		return Date(raw)
	default:
		return Text(raw)
	}
}

// Text returns the trimmed answer.
func Text(raw string) string {
	return strings.TrimSpace(raw)
}
