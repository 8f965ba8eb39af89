package activity

import "time"

// ActivityType represents the type of lifecycle event
type ActivityType string

const (
	TypeTopicCreated   ActivityType = "topic_created"
	TypeTopicUpdated   ActivityType = "topic_updated"
	TypeTopicCompleted ActivityType = "topic_completed"
	TypeTopicAbandoned ActivityType = "topic_abandoned"
	TypePointerCleared ActivityType = "pointer_cleared"
)

// ActivityEntry represents an event in the activity journal
type ActivityEntry struct {
	ID           int64        `json:"id"`
	InvocationID string       `json:"invocation_id,omitempty"`
	TopicID      string       `json:"topic_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
