package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SlotType is the declared type of an answer slot.
type SlotType string

const (
	SlotText    SlotType = "text"
	SlotBoolean SlotType = "boolean"
	SlotDate    SlotType = "date"
)

// Slot is one named answer expected from the guided intake.
type Slot struct {
	Key  string   `json:"key"`
	Type SlotType `json:"type"`
}

// Slot keys of the intake questionnaire.
const (
	SlotConvictionType          = "conviction_type"
	SlotDateKey                 = "date"
	SlotTermsOfServiceCompleted = "terms_of_service_completed"
	SlotOtherConvictions        = "other_convictions"
	SlotPendingChargesOrCases   = "pending_charges_or_cases"
)

// IntakeSchema is the fixed, ordered question schema. Slot assignment is
// positional: the n-th answered prompt fills IntakeSchema[n].
var IntakeSchema = []Slot{
	{Key: SlotConvictionType, Type: SlotText},
	{Key: SlotDateKey, Type: SlotDate},
	{Key: SlotTermsOfServiceCompleted, Type: SlotBoolean},
	{Key: SlotOtherConvictions, Type: SlotBoolean},
	{Key: SlotPendingChargesOrCases, Type: SlotBoolean},
}

// Answer is a filled slot. Value is a string for text and date slots and a
// bool for boolean slots.
type Answer struct {
	Key   string
	Type  SlotType
	Raw   string
	Value any
}

// Answers is an ordered answer set. It marshals to a flat JSON object whose
// keys follow slot order.
type Answers []Answer

// Get returns the answer stored under key.
func (a Answers) Get(key string) (Answer, bool) {
	for _, ans := range a {
		if ans.Key == key {
			return ans, true
		}
	}
	return Answer{}, false
}

// MarshalJSON writes {"conviction_type": "...", "date": "...", ...} in slot order.
func (a Answers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ans := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ans.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ans.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal answer %s: %w", ans.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat answer object. Unknown keys are ignored; known
// keys are returned in schema order.
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Answers, 0, len(IntakeSchema))
	for _, slot := range IntakeSchema {
		msg, ok := raw[slot.Key]
		if !ok {
			continue
		}
		ans := Answer{Key: slot.Key, Type: slot.Type}
		if slot.Type == SlotBoolean {
			var b bool
			if err := json.Unmarshal(msg, &b); err != nil {
				return fmt.Errorf("answer %s: expected boolean: %w", slot.Key, err)
			}
			ans.Value = b
		} else {
			var s string
			if err := json.Unmarshal(msg, &s); err != nil {
				return fmt.Errorf("answer %s: expected string: %w", slot.Key, err)
			}
			ans.Raw = s
			ans.Value = s
		}
		out = append(out, ans)
	}

	*a = out
	return nil
}
