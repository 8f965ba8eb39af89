package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/rpggio/topics/internal/repository"
)

type pointerRecord struct {
	TopicID string `json:"topic_id"`
}

// ActivePointer is the single active.json record naming the active topic.
type ActivePointer struct {
	layout Layout
	logger *slog.Logger
}

// NewActivePointer creates a new ActivePointer
func NewActivePointer(layout Layout, logger *slog.Logger) *ActivePointer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ActivePointer{layout: layout, logger: logger}
}

// Get returns the active topic id. A missing, unreadable or empty pointer
// reads as repository.ErrNotFound.
func (p *ActivePointer) Get(_ context.Context) (string, error) {
	res := ReadRecord[pointerRecord](p.layout.ActivePath())
	if res.State == Corrupt {
		p.logger.Warn("active pointer unreadable", "path", p.layout.ActivePath(), "error", res.Err)
	}
	if !res.OK() || res.Value.TopicID == "" {
		return "", repository.ErrNotFound
	}
	return res.Value.TopicID, nil
}

// Set points at topic id, creating the namespace directory if needed.
func (p *ActivePointer) Set(_ context.Context, id string) error {
	if id == "" {
		return repository.ErrInvalidInput
	}
	if err := os.MkdirAll(p.layout.DataDir(), dirPerms); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	return WriteRecord(p.layout.ActivePath(), pointerRecord{TopicID: id})
}

// Clear removes the pointer. Clearing an absent pointer is not an error.
func (p *ActivePointer) Clear(_ context.Context) error {
	if err := os.Remove(p.layout.ActivePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear active pointer: %w", err)
	}
	return nil
}
