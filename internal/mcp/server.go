package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/report"
	"github.com/rpggio/topics/internal/domain/topic"
)

// TopicService defines lifecycle operations needed by MCP.
type TopicService interface {
	Create(ctx context.Context, title string, topicType topic.Type) (*topic.CreateResult, error)
	Read(ctx context.Context) (*topic.ReadResult, error)
	Update(ctx context.Context, field, value string) (*topic.UpdateResult, error)
	Complete(ctx context.Context) (*topic.CompleteResult, error)
	AutoCleanup(ctx context.Context, thresholdMinutes int) (*topic.CleanupResult, error)
}

// ReportService defines read-only projections needed by MCP.
type ReportService interface {
	List(ctx context.Context) ([]report.Entry, error)
	Status(ctx context.Context) (*report.StatusReport, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Topics   TopicService
	Reports  ReportService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services Services
	// CleanupMinutes is the idle threshold used when topic_auto_cleanup
	// is called without one.
	CleanupMinutes int
	Version        string
	Logger         *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.CleanupMinutes <= 0 {
		cfg.CleanupMinutes = topic.DefaultCleanupMinutes
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "topics",
		Version: cfg.Version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
