package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/topic"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var active *topic.AlreadyActiveError
	if errors.As(err, &active) {
		return &APIError{
			Code:         "ACTIVE_TOPIC_EXISTS",
			Message:      fmt.Sprintf("topic %s is still active", active.TopicID),
			Details:      map[string]string{"topic_id": active.TopicID, "title": active.Title},
			RecoveryHint: "Complete it or run topic_auto_cleanup",
		}
	}

	switch {
	case errors.Is(err, topic.ErrNoActiveTopic):
		return &APIError{Code: "NO_ACTIVE_TOPIC", Message: "no active topic", RecoveryHint: "Call topic_create first"}
	case errors.Is(err, topic.ErrTopicDirMissing):
		return &APIError{Code: "TOPIC_DIR_MISSING", Message: err.Error(), RecoveryHint: "Run topic_auto_cleanup to clear the stale pointer"}
	case errors.Is(err, topic.ErrMetaUnreadable):
		return &APIError{Code: "META_UNREADABLE", Message: err.Error(), RecoveryHint: "Run topic_auto_cleanup to clear the pointer"}
	case errors.Is(err, topic.ErrInvalidType):
		return &APIError{Code: "INVALID_TYPE", Message: err.Error()}
	case errors.Is(err, topic.ErrUnknownField):
		return &APIError{Code: "UNKNOWN_FIELD", Message: err.Error()}
	case errors.Is(err, topic.ErrInvalidValue), errors.Is(err, topic.ErrInvalidInteger):
		return &APIError{Code: "INVALID_VALUE", Message: err.Error()}
	case errors.Is(err, topic.ErrInvalidTransition):
		return &APIError{Code: "INVALID_TRANSITION", Message: err.Error(), RecoveryHint: "Only active topics can be completed or abandoned"}
	case errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// toolError prefers the mapped API error so clients see a stable code.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
