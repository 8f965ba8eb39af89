package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/topics/internal/domain/activity"
)

// ActivityRepository implements activity.Repository for SQLite.
//
// The database file is opened on first use. Listing before anything was
// logged does not create it.
type ActivityRepository struct {
	path         string
	invocationID string

	mu sync.Mutex
	db *DB
}

// NewActivityRepository creates an ActivityRepository backed by the database
// file at path. Entries logged without an invocation id get invocationID.
func NewActivityRepository(path, invocationID string) *ActivityRepository {
	return &ActivityRepository{path: path, invocationID: invocationID}
}

// NewActivityRepositoryWithDB creates an ActivityRepository on an open database.
func NewActivityRepositoryWithDB(db *DB, invocationID string) *ActivityRepository {
	return &ActivityRepository{db: db, invocationID: invocationID}
}

// Close closes the database if it was opened.
func (r *ActivityRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *ActivityRepository) conn(create bool) (*DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.db != nil {
		return r.db, nil
	}
	if !create {
		if _, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}
	db, err := Open(r.path)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// Log inserts a new activity entry
func (r *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	db, err := r.conn(true)
	if err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	invocationID := entry.InvocationID
	if invocationID == "" {
		invocationID = r.invocationID
	}

	query := `
		INSERT INTO activity_log (
			invocation_id, topic_id, activity_type, summary, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		invocationID,
		entry.TopicID,
		entry.ActivityType,
		entry.Summary,
		entry.Details,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		entry.ID = id
	}

	entry.InvocationID = invocationID
	entry.CreatedAt = createdAt

	return nil
}

// List returns activity entries matching the given filters, newest first
func (r *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	db, err := r.conn(false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return []activity.ActivityEntry{}, nil
	}

	query := `
		SELECT
			id, invocation_id, topic_id, activity_type, summary, details, created_at
		FROM activity_log
	`

	args := []any{}
	conditions := []string{}

	if opts.TopicID != "" {
		conditions = append(conditions, "topic_id = ?")
		args = append(args, opts.TopicID)
	}
	if opts.ActivityType != nil {
		conditions = append(conditions, "activity_type = ?")
		args = append(args, *opts.ActivityType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC, id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []activity.ActivityEntry{}
	for rows.Next() {
		var entry activity.ActivityEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.InvocationID,
			&entry.TopicID,
			&entry.ActivityType,
			&entry.Summary,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return entries, nil
}
