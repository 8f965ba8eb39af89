package transport

import (
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSessionTimeout closes idle streamable HTTP sessions.
const DefaultSessionTimeout = 30 * time.Minute

// HTTPOptions configures NewHandler.
type HTTPOptions struct {
	// Verifier, when set, guards /mcp with bearer authentication.
	// /health is always open.
	Verifier       TokenVerifier
	SessionTimeout time.Duration
	Logger         *slog.Logger
}

// NewHandler serves the MCP server over streamable HTTP at /mcp and a
// liveness probe at /health.
func NewHandler(server *sdkmcp.Server, opts HTTPOptions) http.Handler {
	timeout := opts.SessionTimeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}

	var mcpHandler http.Handler = sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: timeout,
		},
	)
	if opts.Verifier != nil {
		mcpHandler = AuthMiddleware(opts.Verifier)(mcpHandler)
	}

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.HandleFunc("/health", handleHealth)

	return SessionMiddleware(AccessLog(opts.Logger)(router))
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
