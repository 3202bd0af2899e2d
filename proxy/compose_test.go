package proxy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"straico-gateway/promptformat"
	"straico-gateway/types"
)

func textMsg(role, text string) types.Message {
	return types.Message{Role: role, Content: &types.Content{Parts: []types.ContentPart{{Type: "text", Text: text}}}}
}

func TestComposeFlattensSystemUserTurns(t *testing.T) {
	req := types.ChatRequest{
		Model: "claude-3-5-sonnet",
		Messages: []types.Message{
			textMsg("system", "You are helpful."),
			textMsg("user", "Hello there."),
		},
	}
	format := promptformat.Lookup(req.Model)
	out, err := Compose(req, format, nil)
	require.NoError(t, err)
	require.Contains(t, out.Message, "You are helpful.")
	require.Contains(t, out.Message, "Hello there.")
	require.Equal(t, req.Model, out.Model)
}

func TestComposeRejectsEmptyMessages(t *testing.T) {
	req := types.ChatRequest{Model: "claude-3-5-sonnet"}
	_, err := Compose(req, promptformat.Lookup(req.Model), nil)
	require.Error(t, err)
}

func TestComposeSynthesizesSystemTurnForToolsWithoutOne(t *testing.T) {
	req := types.ChatRequest{
		Model:    "claude-3-5-sonnet",
		Messages: []types.Message{textMsg("user", "what's the weather")},
		Tools: []types.ToolDefinition{
			{Type: "function", Function: types.ToolFunction{Name: "get_weather", Description: "look up weather"}},
		},
	}
	out, err := Compose(req, promptformat.Lookup(req.Model), nil)
	require.NoError(t, err)
	require.Contains(t, out.Message, "get_weather")

	toolIdx := strings.Index(out.Message, "get_weather")
	userIdx := strings.Index(out.Message, "what's the weather")
	require.GreaterOrEqual(t, toolIdx, 0)
	require.GreaterOrEqual(t, userIdx, 0)
	require.Less(t, toolIdx, userIdx, "synthesized tool block must lead the prompt")
}

func TestComposePrependsToolBlockBeforeExistingSystemTurn(t *testing.T) {
	req := types.ChatRequest{
		Model: "claude-3-5-sonnet",
		Messages: []types.Message{
			textMsg("system", "You are a careful assistant."),
			textMsg("user", "what's the weather"),
		},
		Tools: []types.ToolDefinition{
			{Type: "function", Function: types.ToolFunction{Name: "get_weather", Description: "look up weather"}},
		},
	}
	out, err := Compose(req, promptformat.Lookup(req.Model), nil)
	require.NoError(t, err)

	toolIdx := strings.Index(out.Message, "get_weather")
	systemIdx := strings.Index(out.Message, "You are a careful assistant.")
	require.GreaterOrEqual(t, toolIdx, 0)
	require.GreaterOrEqual(t, systemIdx, 0)
	require.Less(t, toolIdx, systemIdx, "tool block must lead even an explicit system turn")
}

func TestComposeRejectsUnknownRole(t *testing.T) {
	req := types.ChatRequest{
		Model:    "claude-3-5-sonnet",
		Messages: []types.Message{textMsg("narrator", "once upon a time")},
	}
	_, err := Compose(req, promptformat.Lookup(req.Model), nil)
	require.Error(t, err)
}

func TestComposeAssistantToolCallsAreWrapped(t *testing.T) {
	req := types.ChatRequest{
		Model: "claude-3-5-sonnet",
		Messages: []types.Message{
			textMsg("user", "what's the weather"),
			{
				Role: "assistant",
				ToolCalls: []types.ToolCall{
					{ID: "func_0", Type: "function", Function: types.ToolCallFunction{Name: "get_weather", Arguments: `{"city":"Paris"}`}},
				},
			},
		},
	}
	out, err := Compose(req, promptformat.Lookup(req.Model), nil)
	require.NoError(t, err)
	require.Contains(t, out.Message, "get_weather")
	require.Contains(t, out.Message, "Paris")
	require.Contains(t, out.Message, "<tool_calls><tool_call>{\"name\": \"get_weather\"")
}
