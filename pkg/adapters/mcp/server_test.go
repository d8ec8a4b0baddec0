package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aretw0/beatbox"
	"github.com/aretw0/beatbox/pkg/adapters/mcp"
	"github.com/aretw0/beatbox/pkg/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type toolResult struct {
	IsError           bool            `json:"isError"`
	StructuredContent json.RawMessage `json:"structuredContent"`
	Content           []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func newServer(t *testing.T, opts ...mcp.Option) *mcp.Server {
	t.Helper()
	eng, err := beatbox.New("",
		beatbox.WithLoader(memory.NewLoader(map[string]string{
			"A": "BC",
			"B": "__",
			"C": "-0",
			"E": "AAAA",
			"L": "",
			"R": "_R",
			"U": "0",
		})),
		beatbox.WithMaxSteps(1000),
	)
	require.NoError(t, err)

	s := mcp.NewServer(eng, "0.1.0\n", opts...)
	call(t, s, "initialize", map[string]any{
		"protocolVersion": "2025-03-26",
		"clientInfo":      map[string]any{"name": "test", "version": "0"},
		"capabilities":    map[string]any{},
	})
	return s
}

var nextID int

func send(t *testing.T, s *mcp.Server, method string, params any) rpcResponse {
	t.Helper()
	nextID++
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      nextID,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	out, err := json.Marshal(s.MCPServer().HandleMessage(context.Background(), msg))
	require.NoError(t, err)

	var resp rpcResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func call(t *testing.T, s *mcp.Server, method string, params any) json.RawMessage {
	t.Helper()
	resp := send(t, s, method, params)
	require.Nil(t, resp.Error, "%s failed: %+v", method, resp.Error)
	return resp.Result
}

// toolFails reports whether a tool call was rejected, either as a protocol error or as an
// error result.
func toolFails(t *testing.T, s *mcp.Server, name string, args map[string]any) bool {
	t.Helper()
	resp := send(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	if resp.Error != nil {
		return true
	}
	var res toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	return res.IsError
}

func callTool(t *testing.T, s *mcp.Server, name string, args map[string]any) toolResult {
	t.Helper()
	raw := call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	var res toolResult
	require.NoError(t, json.Unmarshal(raw, &res))
	return res
}

func TestTools_Listed(t *testing.T) {
	s := newServer(t)
	raw := call(t, s, "tools/list", map[string]any{})

	var list struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(raw, &list))

	var names []string
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"expand", "count", "validate", "list_rules"}, names)
}

func TestExpandTool(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		args      map[string]any
		terminals string
		truncated bool
	}{
		{map[string]any{"start": "A"}, "__-0", false},
		{map[string]any{"start": "L"}, "", false},
		{map[string]any{"start": "E", "limit": 5}, "__-0_", true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.args), func(t *testing.T) {
			res := callTool(t, s, "expand", tt.args)
			require.False(t, res.IsError, res.Content)

			var out mcp.ExpandResult
			require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
			assert.Equal(t, tt.terminals, out.Terminals)
			assert.Equal(t, len(tt.terminals), out.Count)
			assert.Equal(t, tt.truncated, out.Truncated)
		})
	}
}

func TestExpandTool_MaxTerminals(t *testing.T) {
	s := newServer(t, mcp.WithMaxTerminals(2))
	res := callTool(t, s, "expand", map[string]any{"start": "A", "limit": 100})
	require.False(t, res.IsError)

	var out mcp.ExpandResult
	require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
	assert.Equal(t, "__", out.Terminals)
	assert.True(t, out.Truncated)
}

func TestExpandTool_Errors(t *testing.T) {
	s := newServer(t)
	assert.True(t, toolFails(t, s, "expand", map[string]any{"start": "Z"}))
	assert.True(t, toolFails(t, s, "expand", map[string]any{"start": "R"}))
}

func TestCountTool(t *testing.T) {
	s := newServer(t)
	res := callTool(t, s, "count", map[string]any{"starts": []string{"A", "E"}})
	require.False(t, res.IsError, res.Content)

	var out mcp.CountResult
	require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
	assert.Equal(t, map[string]int{"A": 4, "E": 16}, out.Counts)
	assert.InDelta(t, 0.002, out.Seconds["E"], 1e-9)

	assert.True(t, toolFails(t, s, "count", map[string]any{"starts": []string{}}))
}

func TestValidateTool(t *testing.T) {
	s := newServer(t)
	res := callTool(t, s, "validate", map[string]any{"start": "A"})
	require.False(t, res.IsError, res.Content)

	var out mcp.ValidateResult
	require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
	assert.ElementsMatch(t, []string{"A", "B", "C"}, out.Reachable)
	assert.ElementsMatch(t, []string{"E", "L", "R", "U"}, out.Unused)
	assert.ElementsMatch(t, []string{"_", "-", "0"}, out.Terminals)

	assert.True(t, toolFails(t, s, "validate", map[string]any{"start": "a"}))
}

func TestListRulesTool(t *testing.T) {
	s := newServer(t)
	res := callTool(t, s, "list_rules", nil)
	require.False(t, res.IsError)

	var out mcp.RulesResult
	require.NoError(t, json.Unmarshal(res.StructuredContent, &out))
	assert.Equal(t, "BC", out.Rules["A"])
	assert.Equal(t, "", out.Rules["L"])
	assert.Len(t, out.Fingerprint, 64)
}

func TestResources(t *testing.T) {
	s := newServer(t)

	var contents struct {
		Contents []struct {
			URI      string `json:"uri"`
			MIMEType string `json:"mimeType"`
			Text     string `json:"text"`
		} `json:"contents"`
	}

	raw := call(t, s, "resources/read", map[string]any{"uri": "beatbox://rules"})
	require.NoError(t, json.Unmarshal(raw, &contents))
	require.Len(t, contents.Contents, 1)
	assert.Equal(t, "application/json", contents.Contents[0].MIMEType)
	assert.Contains(t, contents.Contents[0].Text, `"A":"BC"`)

	raw = call(t, s, "resources/read", map[string]any{"uri": "beatbox://graph"})
	require.NoError(t, json.Unmarshal(raw, &contents))
	require.Len(t, contents.Contents, 1)
	assert.Contains(t, contents.Contents[0].Text, "graph TD")
}
