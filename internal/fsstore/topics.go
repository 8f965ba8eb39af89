package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/rpggio/topics/internal/domain/topic"
	"github.com/rpggio/topics/internal/repository"
)

// TopicRepository stores each topic in its own directory under the topics
// directory of a Layout.
type TopicRepository struct {
	layout Layout
	logger *slog.Logger
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(layout Layout, logger *slog.Logger) *TopicRepository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TopicRepository{layout: layout, logger: logger}
}

// Resolve returns the directory of topic id. Only the topics directory itself
// is searched.
func (r *TopicRepository) Resolve(_ context.Context, id string) (string, error) {
	if !validID(id) {
		return "", repository.ErrNotFound
	}
	dir := r.layout.TopicDir(id)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("failed to stat topic dir: %w", err)
	}
	if !info.IsDir() {
		return "", repository.ErrNotFound
	}
	return dir, nil
}

// Load reads the metadata record of topic id
func (r *TopicRepository) Load(ctx context.Context, id string) (*topic.Topic, error) {
	if _, err := r.Resolve(ctx, id); err != nil {
		return nil, err
	}
	res := ReadRecord[topic.Topic](r.layout.MetaPath(id))
	switch res.State {
	case NotFound:
		return nil, repository.ErrMetaMissing
	case Corrupt:
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, res.Err)
	}
	t := res.Value
	t.ID = id
	return &t, nil
}

// Create allocates the topic directory with its artifacts subdirectory, then
// writes the metadata record and the summary document.
func (r *TopicRepository) Create(_ context.Context, t *topic.Topic, summary string) error {
	if t == nil || !validID(t.ID) {
		return repository.ErrInvalidInput
	}
	if err := os.MkdirAll(r.layout.ArtifactsDir(t.ID), dirPerms); err != nil {
		return fmt.Errorf("failed to create topic dir: %w", err)
	}
	if err := WriteRecord(r.layout.MetaPath(t.ID), t); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := WriteText(r.layout.SummaryPath(t.ID), summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// Save replaces the metadata record of an existing topic
func (r *TopicRepository) Save(ctx context.Context, t *topic.Topic) error {
	if t == nil {
		return repository.ErrInvalidInput
	}
	if _, err := r.Resolve(ctx, t.ID); err != nil {
		return err
	}
	if err := WriteRecord(r.layout.MetaPath(t.ID), t); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// Summary returns the summary document of topic id, if readable.
func (r *TopicRepository) Summary(_ context.Context, id string) (string, bool) {
	if !validID(id) {
		return "", false
	}
	res := ReadText(r.layout.SummaryPath(id))
	if res.State == Corrupt {
		r.logger.Warn("summary unreadable", "topic_id", id, "error", res.Err)
	}
	return res.Value, res.OK()
}

// ListAll returns every topic with readable metadata, newest first.
// Directories without a readable meta.json are skipped.
func (r *TopicRepository) ListAll(_ context.Context) ([]topic.Topic, error) {
	entries, err := os.ReadDir(r.layout.TopicsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []topic.Topic{}, nil
		}
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	slices.Reverse(names)

	topics := make([]topic.Topic, 0, len(names))
	for _, name := range names {
		res := ReadRecord[topic.Topic](r.layout.MetaPath(name))
		if !res.OK() {
			if res.State == Corrupt {
				r.logger.Debug("skipping topic with unreadable metadata", "topic_id", name, "error", res.Err)
			}
			continue
		}
		t := res.Value
		t.ID = name
		topics = append(topics, t)
	}
	return topics, nil
}
