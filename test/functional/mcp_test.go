package functional_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/topics/internal/testserver"
	"github.com/stretchr/testify/require"
)

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(req)
}

// connectHTTP opens an MCP client session against the test server.
func connectHTTP(t *testing.T, ts *testserver.TestServer) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	transport := &sdkmcp.StreamableClientTransport{
		Endpoint: ts.Endpoint(),
		HTTPClient: &http.Client{
			Transport: &bearerTransport{token: ts.Token, base: http.DefaultTransport},
		},
	}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool makes a tools/call request and decodes the JSON text result.
func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) {
	t.Helper()
	result := callToolRaw(t, session, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, resultText(result))
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), out))
}

func callToolRaw(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "tool %s returned no content", name)
	return result
}

func resultText(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token")

	req, err := http.NewRequest(http.MethodPost, ts.Endpoint(), bytes.NewBufferString(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"topic_list"},"id":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err = http.NewRequest(http.MethodPost, ts.Endpoint(), bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestFunctional_HealthIsOpen(t *testing.T) {
	ts := testserver.New(t, "token")

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
}

func TestFunctional_LifecycleOverHTTP(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts)

	var created struct {
		TopicID string `json:"topic_id"`
		Title   string `json:"title"`
		Type    string `json:"type"`
		Status  string `json:"status"`
	}
	callTool(t, session, "topic_create", map[string]any{"title": "Cache Strategy", "type": "architecture-design"}, &created)
	require.Contains(t, created.TopicID, "cache-strategy")
	require.Equal(t, "architecture-design", created.Type)
	require.Equal(t, "active", created.Status)

	var read struct {
		Active  bool   `json:"active"`
		TopicID string `json:"topic_id"`
		Summary string `json:"summary"`
		Meta    struct {
			Round     int `json:"round"`
			MaxRounds int `json:"max_rounds"`
		} `json:"meta"`
	}
	callTool(t, session, "topic_read", nil, &read)
	require.True(t, read.Active)
	require.Equal(t, created.TopicID, read.TopicID)
	require.Contains(t, read.Summary, "Cache Strategy")
	require.Equal(t, 5, read.Meta.MaxRounds)

	var updated struct {
		TopicID string         `json:"topic_id"`
		Updated map[string]any `json:"updated"`
	}
	callTool(t, session, "topic_update", map[string]any{"field": "round", "value": "2"}, &updated)
	require.Equal(t, created.TopicID, updated.TopicID)
	require.Equal(t, float64(2), updated.Updated["round"])

	var completed struct {
		TopicID           string `json:"topic_id"`
		Status            string `json:"status"`
		TerminationReason string `json:"termination_reason"`
	}
	callTool(t, session, "topic_complete", nil, &completed)
	require.Equal(t, "completed", completed.Status)
	require.Equal(t, "consensus", completed.TerminationReason)

	var status struct {
		ActiveTopic *struct{}      `json:"active_topic"`
		TotalTopics int            `json:"total_topics"`
		ByStatus    map[string]int `json:"by_status"`
	}
	callTool(t, session, "topic_status", nil, &status)
	require.Nil(t, status.ActiveTopic)
	require.Equal(t, 1, status.TotalTopics)
	require.Equal(t, 1, status.ByStatus["completed"])
}

func TestFunctional_ConflictReportsBlockingTopic(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts)

	var first struct {
		TopicID string `json:"topic_id"`
	}
	callTool(t, session, "topic_create", map[string]any{"title": "First"}, &first)

	result := callToolRaw(t, session, "topic_create", map[string]any{"title": "Second"})
	require.True(t, result.IsError)
	require.Contains(t, resultText(result), "ACTIVE_TOPIC_EXISTS")
	require.Contains(t, resultText(result), first.TopicID)

	var list struct {
		Topics []struct {
			TopicID  string `json:"topic_id"`
			IsActive bool   `json:"is_active"`
		} `json:"topics"`
	}
	callTool(t, session, "topic_list", nil, &list)
	require.Len(t, list.Topics, 1)
	require.True(t, list.Topics[0].IsActive)
}

func TestFunctional_HistoryOverHTTP(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts)

	var created struct {
		TopicID string `json:"topic_id"`
	}
	callTool(t, session, "topic_create", map[string]any{"title": "Journaled"}, &created)
	callTool(t, session, "topic_update", map[string]any{"field": "status", "value": "abandoned"}, &struct{}{})

	var history struct {
		Entries []struct {
			TopicID      string `json:"topic_id"`
			Type         string `json:"type"`
			InvocationID string `json:"invocation_id"`
		} `json:"entries"`
	}
	callTool(t, session, "topic_history", map[string]any{"topic_id": created.TopicID}, &history)
	require.NotEmpty(t, history.Entries)
	for _, e := range history.Entries {
		require.Equal(t, created.TopicID, e.TopicID)
		require.Equal(t, "testserver", e.InvocationID)
	}
}

func TestFunctional_MCPProtocolCompliance(t *testing.T) {
	ts := testserver.New(t, "token")
	session := connectHTTP(t, ts)

	initResult := session.InitializeResult()
	require.NotNil(t, initResult)
	require.Equal(t, "topics", initResult.ServerInfo.Name)
	require.Equal(t, "test", initResult.ServerInfo.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
		require.NotEmpty(t, tool.Description, "tool %s should have description", tool.Name)
		require.NotNil(t, tool.InputSchema, "tool %s should have inputSchema", tool.Name)
	}
	for _, name := range []string{"topic_create", "topic_read", "topic_update", "topic_complete", "topic_list", "topic_status", "topic_auto_cleanup", "topic_history"} {
		require.True(t, names[name], "missing tool %s", name)
	}
}
