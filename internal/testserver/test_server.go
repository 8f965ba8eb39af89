// Package testserver runs the HTTP MCP endpoint over a temporary project root.
package testserver

import (
	"net/http/httptest"
	"testing"

	"github.com/rpggio/topics/internal/app"
	"github.com/rpggio/topics/internal/config"
	"github.com/rpggio/topics/internal/mcp"
	"github.com/rpggio/topics/internal/transport"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Root   string
	Token  string
}

// New starts a server guarded by token. An empty token disables auth.
func New(t *testing.T, token string) *TestServer {
	t.Helper()

	root := t.TempDir()
	a := app.New(root, config.Default(), nil, "testserver")

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Topics:   a.Topics,
			Reports:  a.Reports,
			Activity: a.Activity,
		},
		Version: "test",
	})

	opts := transport.HTTPOptions{}
	if token != "" {
		opts.Verifier = transport.NewStaticToken(token, "test-client")
	}
	httpServer := httptest.NewServer(transport.NewHandler(server, opts))

	ts := &TestServer{
		Server: httpServer,
		App:    a,
		Root:   root,
		Token:  token,
	}

	t.Cleanup(func() {
		httpServer.Close()
		_ = a.Close()
	})

	return ts
}

// Endpoint is the streamable HTTP MCP URL.
func (ts *TestServer) Endpoint() string {
	return ts.Server.URL + "/mcp"
}
