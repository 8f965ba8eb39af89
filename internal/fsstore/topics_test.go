package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/topics/internal/domain/topic"
	"github.com/rpggio/topics/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T) Layout {
	t.Helper()
	return NewLayout(t.TempDir(), "")
}

func newTopic(id, title string, status topic.Status) *topic.Topic {
	return &topic.Topic{
		ID:        id,
		Title:     title,
		Type:      topic.TypeOpenDiscussion,
		Status:    status,
		MaxRounds: topic.DefaultMaxRounds,
		CreatedAt: "2026-01-02T03:04:05",
		UpdatedAt: "2026-01-02T03:04:05",
	}
}

func TestLayout_Paths(t *testing.T) {
	l := NewLayout("/proj", "")
	require.Equal(t, filepath.Join("/proj", ".cc-codex", "active.json"), l.ActivePath())
	require.Equal(t, filepath.Join("/proj", ".cc-codex", "topics", "x", "meta.json"), l.MetaPath("x"))
	require.Equal(t, filepath.Join("/proj", ".cc-codex", "topics", "x", "summary.md"), l.SummaryPath("x"))
	require.Equal(t, filepath.Join("/proj", ".cc-codex", "topics", "x", "artifacts"), l.ArtifactsDir("x"))

	custom := NewLayout("/proj", ".talks")
	require.Equal(t, filepath.Join("/proj", ".talks", "topics"), custom.TopicsDir())
}

func TestTopicRepository_CreateLoad(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	repo := NewTopicRepository(layout, nil)

	sessionID := "sess-1"
	tp := newTopic("20260102-030405-cache", "Cache", topic.StatusActive)
	tp.SessionID = &sessionID
	require.NoError(t, repo.Create(ctx, tp, "# Cache\n"))

	info, err := os.Stat(layout.ArtifactsDir(tp.ID))
	require.NoError(t, err)
	require.True(t, info.IsDir())

	dir, err := repo.Resolve(ctx, tp.ID)
	require.NoError(t, err)
	require.Equal(t, layout.TopicDir(tp.ID), dir)

	loaded, err := repo.Load(ctx, tp.ID)
	require.NoError(t, err)
	require.Equal(t, tp, loaded)

	summary, ok := repo.Summary(ctx, tp.ID)
	require.True(t, ok)
	require.Equal(t, "# Cache\n", summary)
}

func TestTopicRepository_LoadErrors(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	repo := NewTopicRepository(layout, nil)

	_, err := repo.Load(ctx, "absent")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NotErrorIs(t, err, repository.ErrMetaMissing)

	require.NoError(t, os.MkdirAll(layout.TopicDir("empty"), 0o755))
	_, err = repo.Load(ctx, "empty")
	require.ErrorIs(t, err, repository.ErrMetaMissing)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, os.MkdirAll(layout.TopicDir("broken"), 0o755))
	require.NoError(t, os.WriteFile(layout.MetaPath("broken"), []byte("{"), 0o644))
	_, err = repo.Load(ctx, "broken")
	require.ErrorIs(t, err, repository.ErrCorrupt)
}

func TestTopicRepository_ResolveRejectsEscapes(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	repo := NewTopicRepository(layout, nil)
	require.NoError(t, os.MkdirAll(layout.TopicsDir(), 0o755))

	for _, id := range []string{"", ".", "..", "../topics", "a/b"} {
		_, err := repo.Resolve(ctx, id)
		require.ErrorIs(t, err, repository.ErrNotFound, id)
	}

	// a plain file named like a topic is not a topic
	require.NoError(t, os.WriteFile(filepath.Join(layout.TopicsDir(), "file"), nil, 0o644))
	_, err := repo.Resolve(ctx, "file")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTopicRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewTopicRepository(newTestLayout(t), nil)

	tp := newTopic("t1", "One", topic.StatusActive)
	require.ErrorIs(t, repo.Save(ctx, tp), repository.ErrNotFound)

	require.NoError(t, repo.Create(ctx, tp, ""))
	tp.Round = 3
	require.NoError(t, repo.Save(ctx, tp))

	loaded, err := repo.Load(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Round)
}

func TestTopicRepository_ListAll(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	repo := NewTopicRepository(layout, nil)

	topics, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, topics)

	require.NoError(t, repo.Create(ctx, newTopic("20260101-090000-a", "A", topic.StatusCompleted), ""))
	require.NoError(t, repo.Create(ctx, newTopic("20260103-090000-c", "C", topic.StatusActive), ""))
	require.NoError(t, repo.Create(ctx, newTopic("20260102-090000-b", "B", topic.StatusAbandoned), ""))
	require.NoError(t, os.MkdirAll(layout.TopicDir("20260104-090000-nometa"), 0o755))
	require.NoError(t, os.MkdirAll(layout.TopicDir("20260105-090000-bad"), 0o755))
	require.NoError(t, os.WriteFile(layout.MetaPath("20260105-090000-bad"), []byte("]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(layout.TopicsDir(), "stray.txt"), nil, 0o644))

	topics, err = repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 3)
	require.Equal(t, "20260103-090000-c", topics[0].ID)
	require.Equal(t, "20260102-090000-b", topics[1].ID)
	require.Equal(t, "20260101-090000-a", topics[2].ID)
}

func TestActivePointer(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	ptr := NewActivePointer(layout, nil)

	_, err := ptr.Get(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, ptr.Clear(ctx))

	require.NoError(t, ptr.Set(ctx, "t1"))
	id, err := ptr.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "t1", id)

	data, err := os.ReadFile(layout.ActivePath())
	require.NoError(t, err)
	require.JSONEq(t, `{"topic_id":"t1"}`, string(data))

	require.NoError(t, ptr.Clear(ctx))
	require.NoError(t, ptr.Clear(ctx))
	_, err = ptr.Get(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActivePointer_UnusableRecordReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	layout := newTestLayout(t)
	ptr := NewActivePointer(layout, nil)
	require.NoError(t, os.MkdirAll(layout.DataDir(), 0o755))

	for _, content := range []string{"garbage", `{"other":"x"}`, `{"topic_id":""}`} {
		require.NoError(t, os.WriteFile(layout.ActivePath(), []byte(content), 0o644))
		_, err := ptr.Get(ctx)
		require.ErrorIs(t, err, repository.ErrNotFound, content)
	}
}
