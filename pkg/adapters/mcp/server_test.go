package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/aiterm/internal/testutils"
	"github.com/aretw0/aiterm/pkg/adapters/mcp"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/aretw0/aiterm/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// call sends one JSON-RPC request through the server and decodes the response.
func call(t *testing.T, s *mcp.Server, method string, params any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), raw)
	encoded, err := json.Marshal(resp)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(encoded, &out))
	require.Nil(t, out["error"], "unexpected JSON-RPC error: %s", encoded)
	return out["result"].(map[string]any)
}

func toolText(t *testing.T, result map[string]any) string {
	t.Helper()
	content := result["content"].([]any)
	require.NotEmpty(t, content)
	return content[0].(map[string]any)["text"].(string)
}

func TestServer_ListTools(t *testing.T) {
	s := mcp.NewServer(nil)
	result := call(t, s, "tools/list", map[string]any{})

	var names []string
	for _, tool := range result["tools"].([]any) {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"match_commands", "describe_command", "list_categories", "suggest"}, names)
}

func TestServer_MatchCommandsTool(t *testing.T) {
	s := mcp.NewServer(registry.Default())
	result := call(t, s, "tools/call", map[string]any{
		"name":      "match_commands",
		"arguments": map[string]any{"partial": "git", "limit": 2},
	})
	assert.NotEqual(t, true, result["isError"])

	var resp mcp.MatchResponse
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &resp))
	require.Len(t, resp.Matches, 2)
	for _, m := range resp.Matches {
		assert.Contains(t, m.Command, "git")
	}
}

func TestServer_DescribeCommandTool(t *testing.T) {
	s := mcp.NewServer(nil)

	result := call(t, s, "tools/call", map[string]any{
		"name":      "describe_command",
		"arguments": map[string]any{"command": "git status"},
	})
	assert.Contains(t, toolText(t, result), "# git status")

	result = call(t, s, "tools/call", map[string]any{
		"name":      "describe_command",
		"arguments": map[string]any{"command": "frobnicate"},
	})
	assert.Equal(t, true, result["isError"])
	assert.Contains(t, toolText(t, result), "unknown command")
}

func TestServer_CatalogResource(t *testing.T) {
	s := mcp.NewServer(nil)
	result := call(t, s, "resources/read", map[string]any{"uri": mcp.CatalogURI})

	contents := result["contents"].([]any)
	require.Len(t, contents, 1)
	var entries []domain.RegistryEntry
	require.NoError(t, json.Unmarshal([]byte(contents[0].(map[string]any)["text"].(string)), &entries))
	assert.Equal(t, registry.Default().Len(), len(entries))
}

func TestServer_Match(t *testing.T) {
	s := mcp.NewServer(nil)

	resp, err := s.Match("zzz-nothing", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)

	t.Setenv("AITERM_MAX_INPUT_SIZE", "4")
	_, err = s.Match("git status", 0)
	assert.Error(t, err)
}

func TestServer_Categories(t *testing.T) {
	resp := mcp.NewServer(nil).Categories()
	assert.Contains(t, resp.Categories, "version-control")
	assert.Contains(t, resp.Groups, "git")
}

func TestServer_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("Local only", func(t *testing.T) {
		resp, err := mcp.NewServer(nil).Suggest(ctx, "git st")
		require.NoError(t, err)
		assert.Equal(t, []string{"git status"}, resp.Suggestions)
	})

	t.Run("Merged", func(t *testing.T) {
		remote := testutils.NewFakeSuggester(map[string][]string{
			"git st": {"git status", "git stash", "git stash pop"},
		})
		resp, err := mcp.NewServer(nil, mcp.WithSuggester(remote)).Suggest(ctx, "git st")
		require.NoError(t, err)
		assert.Equal(t, []string{"git status", "git stash", "git stash pop"}, resp.Suggestions)
		assert.False(t, resp.RemoteFailed)
	})

	t.Run("Capped", func(t *testing.T) {
		var many []string
		for i := 0; i < 20; i++ {
			many = append(many, fmt.Sprintf("gremote-%02d", i))
		}
		remote := testutils.NewFakeSuggester(map[string][]string{"g": many})
		resp, err := mcp.NewServer(nil, mcp.WithSuggester(remote)).Suggest(ctx, "g")
		require.NoError(t, err)
		assert.Len(t, resp.Suggestions, 10)
	})

	t.Run("Remote failure keeps local", func(t *testing.T) {
		remote := testutils.NewFakeSuggester(nil)
		remote.Err = errors.New("connection refused")
		resp, err := mcp.NewServer(nil, mcp.WithSuggester(remote)).Suggest(ctx, "pw")
		require.NoError(t, err)
		assert.Equal(t, []string{"pwd"}, resp.Suggestions)
		assert.True(t, resp.RemoteFailed)
	})

	t.Run("Blank", func(t *testing.T) {
		resp, err := mcp.NewServer(nil).Suggest(ctx, "  ")
		require.NoError(t, err)
		assert.Empty(t, resp.Suggestions)
	})
}
