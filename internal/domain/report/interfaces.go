package report

import (
	"context"

	"github.com/rpggio/topics/internal/domain/topic"
)

// TopicRepository is the read side of topic storage.
type TopicRepository interface {
	ListAll(ctx context.Context) ([]topic.Topic, error)
	Load(ctx context.Context, id string) (*topic.Topic, error)
}

// ActivePointer reads the active topic id.
type ActivePointer interface {
	Get(ctx context.Context) (string, error)
}
