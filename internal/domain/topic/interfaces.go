package topic

import (
	"context"

	"github.com/rpggio/topics/internal/domain/activity"
)

// Repository provides persistence for topic directories.
type Repository interface {
	Resolve(ctx context.Context, id string) (string, error)
	Load(ctx context.Context, id string) (*Topic, error)
	Create(ctx context.Context, t *Topic, summary string) error
	Save(ctx context.Context, t *Topic) error
	Summary(ctx context.Context, id string) (string, bool)
}

// ActivePointer names the project's single active topic.
type ActivePointer interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ActivityLogger journals lifecycle events. *activity.Service satisfies it.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// SummaryRenderer produces the initial summary document for a topic.
type SummaryRenderer func(title string, topicType Type, maxRounds int) string
