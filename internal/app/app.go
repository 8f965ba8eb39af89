// Package app wires the stores and services for one project root.
package app

import (
	"log/slog"
	"path/filepath"

	"github.com/rpggio/topics/internal/config"
	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/report"
	"github.com/rpggio/topics/internal/domain/topic"
	"github.com/rpggio/topics/internal/fsstore"
	"github.com/rpggio/topics/internal/sqlite"
	"github.com/rpggio/topics/internal/summary"
)

// App holds the services operating on one project root.
type App struct {
	Layout   fsstore.Layout
	Topics   *topic.Service
	Reports  *report.Service
	Activity *activity.Service

	journal *sqlite.ActivityRepository
}

// New builds the services for projectRoot. Nothing is created on disk until
// a write happens. Extra options are applied to the lifecycle service after
// the configured ones.
func New(projectRoot string, cfg config.Config, logger *slog.Logger, invocationID string, opts ...topic.Option) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if abs, err := filepath.Abs(projectRoot); err == nil {
		projectRoot = abs
	}

	layout := fsstore.NewLayout(projectRoot, cfg.Store.Namespace)
	topicRepo := fsstore.NewTopicRepository(layout, logger)
	pointer := fsstore.NewActivePointer(layout, logger)
	journal := sqlite.NewActivityRepository(layout.JournalPath(), invocationID)
	activitySvc := activity.NewService(journal, logger)

	topicOpts := []topic.Option{topic.WithMaxRounds(cfg.Store.MaxRounds)}
	if cfg.Journal.Enabled {
		topicOpts = append(topicOpts, topic.WithActivity(activitySvc))
	}
	topicOpts = append(topicOpts, opts...)

	return &App{
		Layout:   layout,
		Topics:   topic.NewService(topicRepo, pointer, summary.Render, logger, topicOpts...),
		Reports:  report.NewService(topicRepo, pointer, logger),
		Activity: activitySvc,
		journal:  journal,
	}
}

// Close releases the journal database if it was opened.
func (a *App) Close() error {
	return a.journal.Close()
}
