package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/report"
	"github.com/rpggio/topics/internal/domain/topic"
)

type emptyInput struct{}

type createInput struct {
	Title string `json:"title" jsonschema:"Topic title, also used to build the topic id"`
	Type  string `json:"type,omitempty" jsonschema:"One of code-implementation, architecture-design, bug-analysis, technical-decision, open-discussion (default)"`
}

type updateInput struct {
	Field string `json:"field" jsonschema:"Metadata field: title, type, status, session_id, round, max_rounds, output_dir or termination_reason"`
	Value string `json:"value" jsonschema:"New value as text; null clears session_id, output_dir and termination_reason"`
}

type autoCleanupInput struct {
	Minutes *int `json:"minutes,omitempty" jsonschema:"Idle threshold in minutes (server default when omitted)"`
}

type historyInput struct {
	TopicID string `json:"topic_id,omitempty" jsonschema:"Only entries for this topic"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of entries (default 50)"`
}

type listOutput struct {
	Topics []report.Entry `json:"topics"`
}

type historyEntry struct {
	ID           int64  `json:"id"`
	InvocationID string `json:"invocation_id"`
	TopicID      string `json:"topic_id"`
	Type         string `json:"type"`
	Summary      string `json:"summary"`
	Details      string `json:"details,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type historyOutput struct {
	Entries []historyEntry `json:"entries"`
}

// registerTools adds one tool per lifecycle operation. Results are returned
// as structured content; the SDK mirrors them as JSON text.
func registerTools(server *sdkmcp.Server, cfg Config) {
	svc := cfg.Services

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_create",
		Description: "Start a new topic and make it the active one. Fails with ACTIVE_TOPIC_EXISTS while another topic is active.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args createInput) (*sdkmcp.CallToolResult, topic.CreateResult, error) {
		topicType := topic.TypeOpenDiscussion
		if args.Type != "" {
			topicType = topic.Type(args.Type)
		}
		res, err := svc.Topics.Create(ctx, args.Title, topicType)
		if err != nil {
			return nil, topic.CreateResult{}, toolError(err)
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:         "topic_read",
		Description:  "Read the active topic's metadata and summary. Reports active=false when there is none.",
		OutputSchema: readOutputSchema(),
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, topic.ReadResult, error) {
		res, err := svc.Topics.Read(ctx)
		if err != nil {
			return nil, topic.ReadResult{}, toolError(err)
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_update",
		Description: "Change one metadata field of the active topic.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args updateInput) (*sdkmcp.CallToolResult, topic.UpdateResult, error) {
		res, err := svc.Topics.Update(ctx, args.Field, args.Value)
		if err != nil {
			return nil, topic.UpdateResult{}, toolError(err)
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_complete",
		Description: "Mark the active topic completed and clear the active pointer.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, topic.CompleteResult, error) {
		res, err := svc.Topics.Complete(ctx)
		if err != nil {
			return nil, topic.CompleteResult{}, toolError(err)
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_list",
		Description: "List every topic, newest first, flagging the active one.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, listOutput, error) {
		entries, err := svc.Reports.List(ctx)
		if err != nil {
			return nil, listOutput{}, toolError(err)
		}
		return nil, listOutput{Topics: entries}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_status",
		Description: "Summarize the active topic and count topics by status.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, report.StatusReport, error) {
		res, err := svc.Reports.Status(ctx)
		if err != nil {
			return nil, report.StatusReport{}, toolError(err)
		}
		return nil, *res, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_auto_cleanup",
		Description: "Clear a stale active pointer, or abandon the active topic once it has been idle past the threshold.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args autoCleanupInput) (*sdkmcp.CallToolResult, topic.CleanupResult, error) {
		minutes := cfg.CleanupMinutes
		if args.Minutes != nil {
			minutes = *args.Minutes
		}
		res, err := svc.Topics.AutoCleanup(ctx, minutes)
		if err != nil {
			return nil, topic.CleanupResult{}, toolError(err)
		}
		return nil, *res, nil
	})

	if svc.Activity == nil {
		return
	}
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "topic_history",
		Description: "List journaled lifecycle events, newest first.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, args historyInput) (*sdkmcp.CallToolResult, historyOutput, error) {
		entries, err := svc.Activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			TopicID: args.TopicID,
			Limit:   args.Limit,
		})
		if err != nil {
			return nil, historyOutput{}, toolError(err)
		}
		out := historyOutput{Entries: make([]historyEntry, 0, len(entries))}
		for _, e := range entries {
			out.Entries = append(out.Entries, historyEntry{
				ID:           e.ID,
				InvocationID: e.InvocationID,
				TopicID:      e.TopicID,
				Type:         string(e.ActivityType),
				Summary:      e.Summary,
				Details:      e.Details,
				CreatedAt:    e.CreatedAt.Format(time.RFC3339),
			})
		}
		return nil, out, nil
	})
}

// readOutputSchema is the inferred ReadResult schema with meta left open,
// since meta.json may carry keys Topic keeps in Extra.
func readOutputSchema() *jsonschema.Schema {
	schema, err := jsonschema.For[topic.ReadResult](nil)
	if err != nil {
		panic(fmt.Sprintf("read output schema: %v", err))
	}
	schema.Properties["meta"].AdditionalProperties = nil
	return schema
}
