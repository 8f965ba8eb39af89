// Package fsstore persists topics as JSON and text files under a
// project-local namespace directory. Every write replaces its target
// atomically, so readers see either the old or the new content.
package fsstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

const (
	dirPerms  = 0o755
	filePerms = 0o644
)

// State classifies the outcome of a read.
type State int

const (
	Found State = iota
	NotFound
	Corrupt
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "corrupt"
	}
}

// Result is the outcome of reading a record. Err carries the decode or read
// failure when State is Corrupt.
type Result[T any] struct {
	Value T
	State State
	Err   error
}

// OK reports whether the value was read successfully.
func (r Result[T]) OK() bool {
	return r.State == Found
}

// WriteRecord encodes value as indented JSON and atomically replaces path.
// The parent directory must exist.
func WriteRecord(path string, value any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return writeAtomic(path, &buf)
}

// WriteText atomically replaces path with content.
func WriteText(path, content string) error {
	return writeAtomic(path, strings.NewReader(content))
}

func writeAtomic(path string, r io.Reader) error {
	if err := atomic.WriteFile(path, r); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// atomic.WriteFile leaves new files with the temp file's 0600 mode.
	if err := os.Chmod(path, filePerms); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return nil
}

// ReadRecord decodes the JSON record at path. It never returns an error
// directly: a missing file is NotFound, anything unreadable or undecodable
// is Corrupt.
func ReadRecord[T any](path string) Result[T] {
	var r Result[T]
	data, err := os.ReadFile(path)
	if err != nil {
		return readFailure[T](err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		r.State = Corrupt
		r.Err = fmt.Errorf("%s: empty record", path)
		return r
	}
	if err := json.Unmarshal(data, &r.Value); err != nil {
		r.State = Corrupt
		r.Err = fmt.Errorf("decoding %s: %w", path, err)
		return r
	}
	r.State = Found
	return r
}

// ReadText reads the text document at path with the same classification as
// ReadRecord.
func ReadText(path string) Result[string] {
	data, err := os.ReadFile(path)
	if err != nil {
		return readFailure[string](err)
	}
	return Result[string]{Value: string(data), State: Found}
}

func readFailure[T any](err error) Result[T] {
	if errors.Is(err, fs.ErrNotExist) {
		return Result[T]{State: NotFound}
	}
	return Result[T]{State: Corrupt, Err: err}
}
