package topic

import (
	"encoding/json"
	"slices"
	"time"
)

// Type classifies what kind of discussion a topic holds.
type Type string

const (
	TypeCodeImplementation Type = "code-implementation"
	TypeArchitectureDesign Type = "architecture-design"
	TypeBugAnalysis        Type = "bug-analysis"
	TypeTechnicalDecision  Type = "technical-decision"
	TypeOpenDiscussion     Type = "open-discussion"
)

// ValidTypes lists every recognised topic type.
var ValidTypes = []Type{
	TypeCodeImplementation,
	TypeArchitectureDesign,
	TypeBugAnalysis,
	TypeTechnicalDecision,
	TypeOpenDiscussion,
}

// Valid reports whether t is a recognised topic type.
func (t Type) Valid() bool {
	return slices.Contains(ValidTypes, t)
}

// Status represents the lifecycle status of a topic
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// ValidStatuses lists every lifecycle status.
var ValidStatuses = []Status{StatusActive, StatusCompleted, StatusAbandoned}

func (s Status) Valid() bool {
	return slices.Contains(ValidStatuses, s)
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// TerminationReason explains why a topic left the active status.
type TerminationReason string

const (
	ReasonConsensus       TerminationReason = "consensus"
	ReasonUserStopped     TerminationReason = "user_stopped"
	ReasonMaxRounds       TerminationReason = "max_rounds"
	ReasonAbandoned       TerminationReason = "abandoned"
	ReasonBudgetExhausted TerminationReason = "budget_exhausted"
)

// ValidReasons lists every termination reason.
var ValidReasons = []TerminationReason{
	ReasonConsensus,
	ReasonUserStopped,
	ReasonMaxRounds,
	ReasonAbandoned,
	ReasonBudgetExhausted,
}

func (r TerminationReason) Valid() bool {
	return slices.Contains(ValidReasons, r)
}

const (
	// DefaultMaxRounds is the round budget given to new topics.
	DefaultMaxRounds = 5
	// DefaultCleanupMinutes is the idle time after which an active topic is abandoned.
	DefaultCleanupMinutes = 120

	// TimestampLayout is the naive local time format stored in meta.json.
	TimestampLayout = "2006-01-02T15:04:05"
	// IDTimeLayout prefixes topic identifiers so they sort chronologically.
	IDTimeLayout = "20060102-150405"
)

// Topic is the metadata record persisted as meta.json.
// ID is the directory name and is not part of the record itself.
type Topic struct {
	ID                string             `json:"-"`
	Title             string             `json:"title"`
	Type              Type               `json:"type"`
	Status            Status             `json:"status"`
	SessionID         *string            `json:"session_id"`
	Round             int                `json:"round"`
	MaxRounds         int                `json:"max_rounds"`
	OutputDir         *string            `json:"output_dir"`
	TerminationReason *TerminationReason `json:"termination_reason"`
	CreatedAt         string             `json:"created_at"`
	UpdatedAt         string             `json:"updated_at"`
	CompletedAt       *string            `json:"completed_at"`

	// Extra holds meta.json keys this version does not know. They are
	// written back unchanged on save.
	Extra map[string]json.RawMessage `json:"-"`
}

// FormatTimestamp renders t the way meta.json stores it.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a meta.json timestamp as local time.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

// ReadResult is the outcome of reading the active topic.
type ReadResult struct {
	Active  bool   `json:"active"`
	Error   string `json:"error,omitempty"`
	TopicID string `json:"topic_id,omitempty"`
	Meta    *Topic `json:"meta,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Degraded read outcomes for a pointer that cannot be followed.
const (
	ReadTopicDirMissing = "topic_dir_missing"
	ReadMetaMissing     = "meta_missing"
)

// CreateResult describes a newly created topic.
type CreateResult struct {
	TopicID string `json:"topic_id"`
	Title   string `json:"title"`
	Type    Type   `json:"type"`
	Status  Status `json:"status"`
}

// UpdateResult names the field that changed and its new value.
type UpdateResult struct {
	TopicID string         `json:"topic_id"`
	Updated map[string]any `json:"updated"`
}

// CompleteResult describes a completed topic.
type CompleteResult struct {
	TopicID           string            `json:"topic_id"`
	Status            Status            `json:"status"`
	TerminationReason TerminationReason `json:"termination_reason"`
}

// CleanupReason is the outcome reported by AutoCleanup.
type CleanupReason string

const (
	CleanupNoActiveTopic CleanupReason = "no_active_topic"
	CleanupStalePointer  CleanupReason = "stale_pointer"
	CleanupNotActive     CleanupReason = "not_active"
	CleanupNoTimestamp   CleanupReason = "no_timestamp"
	CleanupBadTimestamp  CleanupReason = "bad_timestamp"
	CleanupExpired       CleanupReason = "expired"
	CleanupStillActive   CleanupReason = "still_active"
)

// CleanupResult reports what an auto-cleanup sweep did.
type CleanupResult struct {
	Cleaned        bool          `json:"cleaned"`
	Reason         CleanupReason `json:"reason"`
	TopicID        string        `json:"topic_id,omitempty"`
	ElapsedMinutes *int          `json:"elapsed_minutes,omitempty"`
}
