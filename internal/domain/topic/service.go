package topic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/repository"
)

// Service is the only writer of topic metadata and the active pointer.
//
// The check that no topic is active and the write of the new pointer in
// Create are not atomic with respect to other processes: two concurrent
// creates can both pass the check and the last pointer write wins.
type Service struct {
	topics    Repository
	pointer   ActivePointer
	activity  ActivityLogger
	render    SummaryRenderer
	logger    *slog.Logger
	now       func() time.Time
	maxRounds int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxRounds sets the round budget given to new topics.
func WithMaxRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// WithActivity journals lifecycle events through journal.
func WithActivity(journal ActivityLogger) Option {
	return func(s *Service) { s.activity = journal }
}

// NewService creates a new lifecycle service.
func NewService(
	topics Repository,
	pointer ActivePointer,
	render SummaryRenderer,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		topics:    topics,
		pointer:   pointer,
		render:    render,
		logger:    logger,
		now:       time.Now,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new active topic. It fails with an *AlreadyActiveError when
// the active pointer names a topic whose status is still active.
func (s *Service) Create(ctx context.Context, title string, topicType Type) (*CreateResult, error) {
	if !topicType.Valid() {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidType, topicType, joinTypes())
	}

	current, err := s.currentTopic(ctx)
	if err != nil {
		return nil, err
	}
	if current != nil && current.Status == StatusActive {
		return nil, &AlreadyActiveError{TopicID: current.ID, Title: current.Title}
	}

	now := s.now()
	ts := FormatTimestamp(now)
	t := &Topic{
		ID:        NewID(now, title),
		Title:     title,
		Type:      topicType,
		Status:    StatusActive,
		Round:     0,
		MaxRounds: s.maxRounds,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if err := s.topics.Create(ctx, t, s.render(title, topicType, s.maxRounds)); err != nil {
		return nil, fmt.Errorf("creating topic: %w", err)
	}
	if err := s.pointer.Set(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("setting active pointer: %w", err)
	}

	s.logger.Info("topic created", "topic_id", t.ID, "type", t.Type)
	s.journal(ctx, t.ID, activity.TypeTopicCreated, fmt.Sprintf("created topic %q", title), map[string]any{
		"type":       t.Type,
		"max_rounds": t.MaxRounds,
	})

	return &CreateResult{TopicID: t.ID, Title: t.Title, Type: t.Type, Status: t.Status}, nil
}

// Read returns the active topic with its summary. A stale pointer is
// reported, not repaired.
func (s *Service) Read(ctx context.Context) (*ReadResult, error) {
	id, err := s.pointer.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &ReadResult{Active: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active pointer: %w", err)
	}

	if _, err := s.topics.Resolve(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ReadResult{Active: false, Error: ReadTopicDirMissing, TopicID: id}, nil
		}
		return nil, fmt.Errorf("resolving topic: %w", err)
	}

	t, err := s.topics.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrCorrupt) {
			s.logger.Warn("active topic metadata unreadable", "topic_id", id, "error", err)
			return &ReadResult{Active: false, Error: ReadMetaMissing, TopicID: id}, nil
		}
		return nil, fmt.Errorf("loading topic: %w", err)
	}

	result := &ReadResult{Active: true, TopicID: id, Meta: t}
	if summary, ok := s.topics.Summary(ctx, id); ok {
		result.Summary = summary
	}
	return result, nil
}

// Update parses and applies a single field change to the active topic.
func (s *Service) Update(ctx context.Context, field, value string) (*UpdateResult, error) {
	t, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ParseMutation(field, value)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, t, m)
}

func (s *Service) apply(ctx context.Context, t *Topic, m Mutation) (*UpdateResult, error) {
	terminal := false
	if status, ok := m.(SetStatus); ok {
		if err := ValidateTransition(t.Status, status.Status); err != nil {
			return nil, err
		}
		terminal = status.Status.Terminal() && !t.Status.Terminal()
	}

	ts := FormatTimestamp(s.now())
	m.apply(t)
	t.UpdatedAt = ts
	if terminal {
		finalize(t, ts)
	}

	if err := s.topics.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("saving topic: %w", err)
	}
	if terminal {
		if err := s.pointer.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clearing active pointer: %w", err)
		}
	}

	s.logger.Info("topic updated", "topic_id", t.ID, "field", m.Field())
	s.journal(ctx, t.ID, activity.TypeTopicUpdated, fmt.Sprintf("set %s", m.Field()), map[string]any{
		m.Field(): m.Value(),
	})

	return &UpdateResult{TopicID: t.ID, Updated: map[string]any{m.Field(): m.Value()}}, nil
}

// Complete marks the active topic completed and clears the active pointer.
// An explicit termination reason is kept; otherwise it becomes consensus.
func (s *Service) Complete(ctx context.Context) (*CompleteResult, error) {
	t, err := s.loadActive(ctx)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusActive {
		return nil, fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, t.ID, t.Status)
	}

	ts := FormatTimestamp(s.now())
	t.Status = StatusCompleted
	t.UpdatedAt = ts
	finalize(t, ts)

	if err := s.topics.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("saving topic: %w", err)
	}
	if err := s.pointer.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing active pointer: %w", err)
	}

	s.logger.Info("topic completed", "topic_id", t.ID, "reason", *t.TerminationReason)
	s.journal(ctx, t.ID, activity.TypeTopicCompleted, "completed topic", map[string]any{
		"termination_reason": *t.TerminationReason,
		"round":              t.Round,
	})

	return &CompleteResult{
		TopicID:           t.ID,
		Status:            t.Status,
		TerminationReason: *t.TerminationReason,
	}, nil
}

// AutoCleanup inspects the topic named by the active pointer, heals a stale
// pointer, and abandons the topic once it has been idle for thresholdMinutes.
func (s *Service) AutoCleanup(ctx context.Context, thresholdMinutes int) (*CleanupResult, error) {
	id, err := s.pointer.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &CleanupResult{Reason: CleanupNoActiveTopic}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active pointer: %w", err)
	}

	if _, err := s.topics.Resolve(ctx, id); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("resolving topic: %w", err)
		}
		if err := s.clearPointer(ctx, id, CleanupStalePointer); err != nil {
			return nil, err
		}
		return &CleanupResult{Cleaned: true, Reason: CleanupStalePointer, TopicID: id}, nil
	}

	t, err := s.topics.Load(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrCorrupt) {
		return nil, fmt.Errorf("loading topic: %w", err)
	}
	if err != nil || t.Status != StatusActive {
		if err := s.clearPointer(ctx, id, CleanupNotActive); err != nil {
			return nil, err
		}
		return &CleanupResult{Cleaned: true, Reason: CleanupNotActive, TopicID: id}, nil
	}

	if t.UpdatedAt == "" {
		return &CleanupResult{Reason: CleanupNoTimestamp, TopicID: id}, nil
	}
	updated, err := ParseTimestamp(t.UpdatedAt)
	if err != nil {
		s.logger.Warn("unparsable updated_at", "topic_id", id, "value", t.UpdatedAt)
		return &CleanupResult{Reason: CleanupBadTimestamp, TopicID: id}, nil
	}

	now := s.now()
	elapsedMinutes := now.Sub(updated).Minutes()
	elapsed := int(elapsedMinutes)

	if elapsedMinutes < float64(thresholdMinutes) {
		return &CleanupResult{Reason: CleanupStillActive, TopicID: id, ElapsedMinutes: &elapsed}, nil
	}

	ts := FormatTimestamp(now)
	reason := ReasonAbandoned
	t.Status = StatusAbandoned
	t.TerminationReason = &reason
	t.UpdatedAt = ts

	if err := s.topics.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("saving topic: %w", err)
	}
	if err := s.pointer.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing active pointer: %w", err)
	}

	s.logger.Info("topic abandoned", "topic_id", id, "elapsed_minutes", elapsed, "threshold_minutes", thresholdMinutes)
	s.journal(ctx, id, activity.TypeTopicAbandoned, fmt.Sprintf("abandoned after %d idle minutes", elapsed), map[string]any{
		"elapsed_minutes":   elapsed,
		"threshold_minutes": thresholdMinutes,
	})

	return &CleanupResult{Cleaned: true, Reason: CleanupExpired, TopicID: id, ElapsedMinutes: &elapsed}, nil
}

// ValidateTransition checks a status change against the lifecycle:
// active may move to completed or abandoned, and nothing leaves a terminal
// status. Keeping the same status is always allowed.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from == StatusActive && to.Terminal() {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// currentTopic returns the topic the pointer names, or nil when the pointer is
// unset or cannot be followed.
func (s *Service) currentTopic(ctx context.Context) (*Topic, error) {
	id, err := s.pointer.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading active pointer: %w", err)
	}
	t, err := s.topics.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrCorrupt) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading topic: %w", err)
	}
	return t, nil
}

func (s *Service) loadActive(ctx context.Context) (*Topic, error) {
	id, err := s.pointer.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoActiveTopic
	}
	if err != nil {
		return nil, fmt.Errorf("reading active pointer: %w", err)
	}

	t, err := s.topics.Load(ctx, id)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, repository.ErrMetaMissing), errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn("active topic metadata unreadable", "topic_id", id, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrMetaUnreadable, id)
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrTopicDirMissing, id)
	default:
		return nil, fmt.Errorf("loading topic: %w", err)
	}
}

func (s *Service) clearPointer(ctx context.Context, id string, reason CleanupReason) error {
	if err := s.pointer.Clear(ctx); err != nil {
		return fmt.Errorf("clearing active pointer: %w", err)
	}
	s.logger.Info("active pointer cleared", "topic_id", id, "reason", reason)
	s.journal(ctx, id, activity.TypePointerCleared, fmt.Sprintf("cleared pointer: %s", reason), nil)
	return nil
}

func (s *Service) journal(ctx context.Context, topicID string, kind activity.ActivityType, summary string, details map[string]any) {
	if s.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{
		TopicID:      topicID,
		ActivityType: kind,
		Summary:      summary,
		CreatedAt:    s.now(),
	}
	if details != nil {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("activity journal write failed", "topic_id", topicID, "type", kind, "error", err)
	}
}

// finalize fills the fields a terminal status requires.
func finalize(t *Topic, ts string) {
	if t.TerminationReason == nil {
		reason := ReasonConsensus
		if t.Status == StatusAbandoned {
			reason = ReasonAbandoned
		}
		t.TerminationReason = &reason
	}
	if t.Status == StatusCompleted {
		t.CompletedAt = &ts
	}
}

func joinTypes() string {
	names := make([]string, len(ValidTypes))
	for i, t := range ValidTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
