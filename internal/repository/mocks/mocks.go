package mocks

import (
	"context"

	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/topic"
	"github.com/stretchr/testify/mock"
)

// TopicRepository is a mock for topic.Repository and report.TopicRepository.
type TopicRepository struct {
	mock.Mock
}

func (m *TopicRepository) Resolve(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *TopicRepository) Load(ctx context.Context, id string) (*topic.Topic, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*topic.Topic); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TopicRepository) Create(ctx context.Context, t *topic.Topic, summary string) error {
	args := m.Called(ctx, t, summary)
	return args.Error(0)
}

func (m *TopicRepository) Save(ctx context.Context, t *topic.Topic) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TopicRepository) Summary(ctx context.Context, id string) (string, bool) {
	args := m.Called(ctx, id)
	return args.String(0), args.Bool(1)
}

func (m *TopicRepository) ListAll(ctx context.Context) ([]topic.Topic, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]topic.Topic); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivePointer is a mock for topic.ActivePointer.
type ActivePointer struct {
	mock.Mock
}

func (m *ActivePointer) Get(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ActivePointer) Set(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ActivePointer) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
