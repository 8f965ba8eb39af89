package topic

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyActive indicates another topic is still active.
	ErrAlreadyActive = errors.New("active topic exists")
	// ErrNoActiveTopic indicates the active pointer is unset.
	ErrNoActiveTopic = errors.New("no active topic")
	// ErrTopicDirMissing indicates the active pointer names a missing directory.
	ErrTopicDirMissing = errors.New("topic directory not found")
	// ErrMetaUnreadable indicates meta.json is missing or cannot be decoded.
	ErrMetaUnreadable = errors.New("cannot read meta.json")
	// ErrInvalidType indicates an unrecognised topic type.
	ErrInvalidType = errors.New("invalid topic type")
	// ErrUnknownField indicates a field outside the update whitelist.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue indicates a value outside the field's domain.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidInteger indicates a value that does not parse as an integer.
	ErrInvalidInteger = errors.New("invalid integer value")
	// ErrInvalidTransition indicates a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid topic status transition")
)

// AlreadyActiveError carries the topic that blocks a create.
type AlreadyActiveError struct {
	TopicID string
	Title   string
}

func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("already have an active topic: %s", e.TopicID)
}

func (e *AlreadyActiveError) Is(target error) bool {
	return target == ErrAlreadyActive
}
