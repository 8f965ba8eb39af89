package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/topics/internal/domain/topic"
	"github.com/rpggio/topics/internal/repository"
)

// Service builds read-only projections of the topic store. It never repairs
// what it finds: a pointer naming a finished topic is reported as is.
type Service struct {
	topics  TopicRepository
	pointer ActivePointer
	logger  *slog.Logger
}

// NewService creates a new report service.
func NewService(topics TopicRepository, pointer ActivePointer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{topics: topics, pointer: pointer, logger: logger}
}

// List returns every readable topic, newest first, flagging the one the
// active pointer names.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	activeID, err := s.activeID(ctx)
	if err != nil {
		return nil, err
	}
	topics, err := s.topics.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}

	entries := make([]Entry, 0, len(topics))
	for _, t := range topics {
		entries = append(entries, Entry{
			TopicID:     t.ID,
			Title:       t.Title,
			Type:        t.Type,
			Status:      t.Status,
			Round:       t.Round,
			IsActive:    activeID != "" && t.ID == activeID,
			CreatedAt:   t.CreatedAt,
			CompletedAt: t.CompletedAt,
		})
	}
	return entries, nil
}

// Status summarizes the active topic, if resolvable, and counts topics by
// status.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	result := &StatusReport{ByStatus: map[string]int{}}

	activeID, err := s.activeID(ctx)
	if err != nil {
		return nil, err
	}
	if activeID != "" {
		t, err := s.topics.Load(ctx, activeID)
		switch {
		case err == nil:
			maxRounds := t.MaxRounds
			if maxRounds == 0 {
				maxRounds = topic.DefaultMaxRounds
			}
			result.ActiveTopic = &ActiveTopic{
				TopicID:   activeID,
				Title:     t.Title,
				Type:      t.Type,
				Round:     t.Round,
				MaxRounds: maxRounds,
				SessionID: t.SessionID,
				UpdatedAt: t.UpdatedAt,
			}
		case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrCorrupt):
			s.logger.Debug("active topic not resolvable", "topic_id", activeID, "error", err)
		default:
			return nil, fmt.Errorf("loading active topic: %w", err)
		}
	}

	topics, err := s.topics.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	for _, t := range topics {
		status := string(t.Status)
		if status == "" {
			status = UnknownStatus
		}
		result.ByStatus[status]++
	}
	result.TotalTopics = len(topics)
	return result, nil
}

func (s *Service) activeID(ctx context.Context) (string, error) {
	id, err := s.pointer.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading active pointer: %w", err)
	}
	return id, nil
}
