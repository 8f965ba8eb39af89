package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `topics tracks discussion topics for one project directory.

Core concepts:
- Topic: a record with a title, a type, a status (active, completed, abandoned) and a round counter.
- Active topic: at most one topic is active at a time. Every write tool acts on it.

Workflow:
1) Orient: call topic_status (or topic_read for the full summary).
2) Start: topic_create when no topic is active. ACTIVE_TOPIC_EXISTS means finish the current one first.
3) Progress: topic_update with field=round after each round; set session_id when a review session starts.
4) Finish: topic_complete. Set termination_reason first if the ending was not consensus.
5) Housekeeping: topic_auto_cleanup abandons a topic that has been idle too long and clears stale pointers.

Docs:
- topics://docs/lifecycle
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "topics://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Topic lifecycle",
		Description: "Statuses, allowed transitions, updatable fields and the auto-cleanup rules.",
		Content: `# Topic lifecycle

## Statuses

- ` + "`active`" + ` is the only status a topic is created with.
- ` + "`completed`" + ` and ` + "`abandoned`" + ` are terminal. Nothing leaves a terminal status.

Reaching a terminal status clears the active pointer and sets ` + "`termination_reason`" + `
when it is still empty (` + "`consensus`" + ` for completion, ` + "`abandoned`" + ` otherwise).
A reason set earlier with ` + "`topic_update`" + ` is kept.

## Updatable fields

| field | value |
|---|---|
| title | non-empty text |
| type | code-implementation, architecture-design, bug-analysis, technical-decision, open-discussion |
| status | active, completed, abandoned |
| session_id | text or null |
| round | integer >= 0 |
| max_rounds | integer >= 1 |
| output_dir | text or null |
| termination_reason | consensus, user_stopped, max_rounds, abandoned, budget_exhausted, or null |

Invalid values are rejected before anything is written.

## Auto-cleanup

` + "`topic_auto_cleanup`" + ` only looks at the topic the active pointer names:

1. no pointer: ` + "`no_active_topic`" + `
2. pointer names a missing directory: pointer cleared, ` + "`stale_pointer`" + `
3. topic is not active or its metadata is unreadable: pointer cleared, ` + "`not_active`" + `
4. ` + "`updated_at`" + ` missing or unparsable: ` + "`no_timestamp`" + ` / ` + "`bad_timestamp`" + `, nothing changes
5. idle for at least the threshold: topic abandoned, ` + "`expired`" + `
6. otherwise ` + "`still_active`" + `

## Storage

Everything lives under ` + "`<project>/.<namespace>/`" + ` (default ` + "`.cc-codex`" + `): ` + "`active.json`" + ` names the active topic and
` + "`topics/<id>/`" + ` holds ` + "`meta.json`" + `, ` + "`summary.md`" + ` and an ` + "`artifacts/`" + ` directory.
Topic ids start with a ` + "`YYYYMMDD-HHMMSS`" + ` timestamp, so they sort by creation time.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
