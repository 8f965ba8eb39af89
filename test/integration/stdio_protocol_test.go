package integration_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func findBinary(t *testing.T) string {
	t.Helper()
	for _, candidate := range []string{"./bin/topics", "../../bin/topics"} {
		if _, err := os.Stat(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			require.NoError(t, err)
			return abs
		}
	}
	t.Skip("topics binary not found. Run 'go build -o bin/topics ./cmd/topics' first.")
	return ""
}

type cliRun struct {
	code   int
	stdout []byte
	stderr string
}

// runBinary executes one CLI invocation with debug logging enabled so that
// any log line leaking onto stdout is caught.
func runBinary(t *testing.T, binary string, args ...string) cliRun {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append(os.Environ(), "TOPICS_CONFIG_PATH=", "TOPICS_LOG_LEVEL=debug")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return cliRun{code: code, stdout: stdout.Bytes(), stderr: stderr.String()}
}

// TestStdioProtocolCompliance verifies the serve command works over stdio
// using the official MCP SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	binary := findBinary(t)
	root := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "serve", "--root", root)
	cmd.Env = append(os.Environ(), "TOPICS_CONFIG_PATH=", "TOPICS_TRANSPORT=stdio")

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "topics", initResult.ServerInfo.Name)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "tools/list failed")

		toolNames := make(map[string]bool)
		for _, tool := range tools.Tools {
			toolNames[tool.Name] = true
		}
		for _, name := range []string{"topic_create", "topic_read", "topic_update", "topic_complete", "topic_list", "topic_status", "topic_auto_cleanup"} {
			require.True(t, toolNames[name], "Missing expected tool: %s", name)
		}
	})

	t.Run("CallCreate", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "topic_create",
			Arguments: map[string]any{"title": "Protocol Check"},
		})
		require.NoError(t, err, "tools/call topic_create failed")
		require.False(t, result.IsError, "topic_create returned error: %v", result)
	})

	t.Run("CLISeesServerWrites", func(t *testing.T) {
		res := runBinary(t, binary, "read", root)
		require.Equal(t, 0, res.code, res.stderr)
		var read struct {
			Active bool `json:"active"`
			Meta   struct {
				Title string `json:"title"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(res.stdout, &read))
		require.True(t, read.Active)
		require.Equal(t, "Protocol Check", read.Meta.Title)
	})
}

// TestStdioProtocol_StdoutHygiene verifies that serve writes nothing to
// stdout except JSON-RPC messages, even at debug log level.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	binary := findBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "serve", "--root", t.TempDir(), "--transport", "stdio")
	cmd.Env = append(os.Environ(), "TOPICS_CONFIG_PATH=", "TOPICS_LOG_LEVEL=debug")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = stdin.Write([]byte(initReq + "\n"))
	require.NoError(t, err)

	lines := make(chan string, 1)
	go func() {
		line, _ := bufio.NewReader(stdout).ReadString('\n')
		lines <- line
	}()

	var first string
	select {
	case first = <-lines:
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for server response")
	}
	_ = stdin.Close()

	require.NotEmpty(t, first, "Server produced no stdout output")
	require.True(t, strings.HasPrefix(first, "{"), "stdout should start with a JSON object, got: %q", first)
	var msg struct {
		JSONRPC string          `json:"jsonrpc"`
		Result  json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(first), &msg))
	require.Equal(t, "2.0", msg.JSONRPC)
	require.NotEmpty(t, msg.Result)
}

// TestCLIProtocol_ExitCodesAndStdout checks that each command prints exactly
// one JSON document on stdout and reports failures through the exit code.
func TestCLIProtocol_ExitCodesAndStdout(t *testing.T) {
	binary := findBinary(t)
	root := t.TempDir()

	res := runBinary(t, binary, "list", root)
	require.Equal(t, 0, res.code, res.stderr)
	require.JSONEq(t, `[]`, string(res.stdout))
	require.NoDirExists(t, filepath.Join(root, ".cc-codex"))

	res = runBinary(t, binary, "topic-create", root, "Binary Check", "bug-analysis")
	require.Equal(t, 0, res.code, res.stderr)
	var created map[string]any
	require.NoError(t, json.Unmarshal(res.stdout, &created))
	require.Equal(t, "bug-analysis", created["type"])
	require.Contains(t, res.stderr, "topic created")

	res = runBinary(t, binary, "create", root, "Blocked")
	require.Equal(t, 1, res.code)
	var conflict map[string]any
	require.NoError(t, json.Unmarshal(res.stdout, &conflict))
	require.Equal(t, "active_topic_exists", conflict["error"])
	require.Equal(t, created["topic_id"], conflict["topic_id"])

	res = runBinary(t, binary, "create", root, "Bad Type", "brainstorm")
	require.Equal(t, 1, res.code)
	require.Empty(t, res.stdout)
	require.Contains(t, res.stderr, "invalid topic type")

	res = runBinary(t, binary, "update", root, "color", "blue")
	require.Equal(t, 1, res.code)
	require.Empty(t, res.stdout)

	res = runBinary(t, binary, "topic-status", root)
	require.Equal(t, 0, res.code, res.stderr)
	var status struct {
		TotalTopics int `json:"total_topics"`
	}
	require.NoError(t, json.Unmarshal(res.stdout, &status))
	require.Equal(t, 1, status.TotalTopics)

	res = runBinary(t, binary, "history", root, "--type", "topic_created")
	require.Equal(t, 0, res.code, res.stderr)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(res.stdout, &history))
	require.Len(t, history, 1)
}
