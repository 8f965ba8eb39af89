package report

import "github.com/rpggio/topics/internal/domain/topic"

// Entry is one row of the topic listing.
type Entry struct {
	TopicID     string       `json:"topic_id"`
	Title       string       `json:"title"`
	Type        topic.Type   `json:"type"`
	Status      topic.Status `json:"status"`
	Round       int          `json:"round"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   string       `json:"created_at"`
	CompletedAt *string      `json:"completed_at"`
}

// ActiveTopic summarizes the topic the active pointer names.
type ActiveTopic struct {
	TopicID   string     `json:"topic_id"`
	Title     string     `json:"title"`
	Type      topic.Type `json:"type"`
	Round     int        `json:"round"`
	MaxRounds int        `json:"max_rounds"`
	SessionID *string    `json:"session_id"`
	UpdatedAt string     `json:"updated_at"`
}

// StatusReport is the project-wide overview.
type StatusReport struct {
	ActiveTopic *ActiveTopic   `json:"active_topic"`
	TotalTopics int            `json:"total_topics"`
	ByStatus    map[string]int `json:"by_status"`
}

// UnknownStatus buckets topics whose metadata carries no status.
const UnknownStatus = "unknown"
