package fsstore

import (
	"path/filepath"
	"strings"
)

// DefaultNamespace is the directory, relative to the project root, that
// holds all topic state.
const DefaultNamespace = ".cc-codex"

const (
	activeFile   = "active.json"
	topicsDir    = "topics"
	metaFile     = "meta.json"
	summaryFile  = "summary.md"
	artifactsDir = "artifacts"
	journalFile  = "activity.db"
)

// Layout maps a project root to the paths of its topic store:
//
//	<root>/<namespace>/active.json
//	<root>/<namespace>/topics/<id>/meta.json
//	<root>/<namespace>/topics/<id>/summary.md
//	<root>/<namespace>/topics/<id>/artifacts/
type Layout struct {
	root      string
	namespace string
}

// NewLayout returns the layout for projectRoot. An empty namespace selects
// DefaultNamespace.
func NewLayout(projectRoot, namespace string) Layout {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return Layout{root: projectRoot, namespace: namespace}
}

func (l Layout) Root() string       { return l.root }
func (l Layout) DataDir() string    { return filepath.Join(l.root, l.namespace) }
func (l Layout) ActivePath() string { return filepath.Join(l.DataDir(), activeFile) }
func (l Layout) TopicsDir() string  { return filepath.Join(l.DataDir(), topicsDir) }

// JournalPath is the activity journal database.
func (l Layout) JournalPath() string { return filepath.Join(l.DataDir(), journalFile) }

func (l Layout) TopicDir(id string) string     { return filepath.Join(l.TopicsDir(), id) }
func (l Layout) MetaPath(id string) string     { return filepath.Join(l.TopicDir(id), metaFile) }
func (l Layout) SummaryPath(id string) string  { return filepath.Join(l.TopicDir(id), summaryFile) }
func (l Layout) ArtifactsDir(id string) string { return filepath.Join(l.TopicDir(id), artifactsDir) }

// validID rejects identifiers that would escape the topics directory.
func validID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}
