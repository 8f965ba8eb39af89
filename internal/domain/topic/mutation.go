package topic

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names accepted by update.
const (
	FieldTitle             = "title"
	FieldType              = "type"
	FieldStatus            = "status"
	FieldSessionID         = "session_id"
	FieldRound             = "round"
	FieldMaxRounds         = "max_rounds"
	FieldOutputDir         = "output_dir"
	FieldTerminationReason = "termination_reason"
)

// UpdatableFields is the update whitelist, sorted.
var UpdatableFields = []string{
	FieldMaxRounds,
	FieldOutputDir,
	FieldRound,
	FieldSessionID,
	FieldStatus,
	FieldTerminationReason,
	FieldTitle,
	FieldType,
}

// Mutation is a validated change to exactly one metadata field.
// The set of implementations is closed; see ParseMutation.
type Mutation interface {
	Field() string
	// Value is the new value as it appears in JSON output (nil clears).
	Value() any
	apply(t *Topic)
}

type SetTitle struct{ Title string }
type SetType struct{ Type Type }
type SetStatus struct{ Status Status }
type SetSessionID struct{ SessionID *string }
type SetRound struct{ Round int }
type SetMaxRounds struct{ MaxRounds int }
type SetOutputDir struct{ OutputDir *string }
type SetTerminationReason struct{ Reason *TerminationReason }

func (m SetTitle) Field() string             { return FieldTitle }
func (m SetType) Field() string              { return FieldType }
func (m SetStatus) Field() string            { return FieldStatus }
func (m SetSessionID) Field() string         { return FieldSessionID }
func (m SetRound) Field() string             { return FieldRound }
func (m SetMaxRounds) Field() string         { return FieldMaxRounds }
func (m SetOutputDir) Field() string         { return FieldOutputDir }
func (m SetTerminationReason) Field() string { return FieldTerminationReason }

func (m SetTitle) Value() any             { return m.Title }
func (m SetType) Value() any              { return m.Type }
func (m SetStatus) Value() any            { return m.Status }
func (m SetSessionID) Value() any         { return nullable(m.SessionID) }
func (m SetRound) Value() any             { return m.Round }
func (m SetMaxRounds) Value() any         { return m.MaxRounds }
func (m SetOutputDir) Value() any         { return nullable(m.OutputDir) }
func (m SetTerminationReason) Value() any { return nullable(m.Reason) }

func (m SetTitle) apply(t *Topic)             { t.Title = m.Title }
func (m SetType) apply(t *Topic)              { t.Type = m.Type }
func (m SetStatus) apply(t *Topic)            { t.Status = m.Status }
func (m SetSessionID) apply(t *Topic)         { t.SessionID = m.SessionID }
func (m SetRound) apply(t *Topic)             { t.Round = m.Round }
func (m SetMaxRounds) apply(t *Topic)         { t.MaxRounds = m.MaxRounds }
func (m SetOutputDir) apply(t *Topic)         { t.OutputDir = m.OutputDir }
func (m SetTerminationReason) apply(t *Topic) { t.TerminationReason = m.Reason }

// ParseMutation validates a raw field/value pair from the command line.
// The literal "null" (any case) clears session_id, output_dir and
// termination_reason.
func ParseMutation(field, raw string) (Mutation, error) {
	switch field {
	case FieldTitle:
		return SetTitle{Title: raw}, nil
	case FieldType:
		t := Type(raw)
		if !t.Valid() {
			return nil, fmt.Errorf("%w for %s: %s", ErrInvalidValue, field, raw)
		}
		return SetType{Type: t}, nil
	case FieldStatus:
		s := Status(raw)
		if !s.Valid() {
			return nil, fmt.Errorf("%w for %s: %s", ErrInvalidValue, field, raw)
		}
		return SetStatus{Status: s}, nil
	case FieldSessionID:
		return SetSessionID{SessionID: nullOrString(raw)}, nil
	case FieldOutputDir:
		return SetOutputDir{OutputDir: nullOrString(raw)}, nil
	case FieldTerminationReason:
		value := nullOrString(raw)
		if value == nil {
			return SetTerminationReason{}, nil
		}
		reason := TerminationReason(*value)
		if !reason.Valid() {
			return nil, fmt.Errorf("%w for %s: %s", ErrInvalidValue, field, raw)
		}
		return SetTerminationReason{Reason: &reason}, nil
	case FieldRound:
		n, err := parseInt(field, raw)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("%w for %s: must not be negative", ErrInvalidValue, field)
		}
		return SetRound{Round: n}, nil
	case FieldMaxRounds:
		n, err := parseInt(field, raw)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			return nil, fmt.Errorf("%w for %s: must be positive", ErrInvalidValue, field)
		}
		return SetMaxRounds{MaxRounds: n}, nil
	default:
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnknownField, field, strings.Join(UpdatableFields, ", "))
	}
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %s", ErrInvalidInteger, field, raw)
	}
	return n, nil
}

func nullOrString(raw string) *string {
	if strings.EqualFold(raw, "null") {
		return nil
	}
	return &raw
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
