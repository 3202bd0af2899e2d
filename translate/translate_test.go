package translate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"straico-gateway/promptformat"
	"straico-gateway/types"
)

func unmarshalUpstream(t *testing.T, raw string) types.UpstreamResponse {
	t.Helper()
	var resp types.UpstreamResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestTranslatePlainTextStop(t *testing.T) {
	resp := unmarshalUpstream(t, `{
		"success": true,
		"data": {
			"model": "claude-3-5-sonnet",
			"completion": {
				"choices": [{"message": {"content": "The sky is blue."}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
			}
		}
	}`)

	format := promptformat.Lookup("claude-3-5-sonnet")
	out, err := Translate(resp, "claude-3-5-sonnet", format, 1234)
	require.NoError(t, err)
	require.Equal(t, "stop", out.Choices[0].FinishReason)
	require.Equal(t, "The sky is blue.", out.Choices[0].Message.Text())
	require.Equal(t, 15, out.Usage.TotalTokens)
}

func TestTranslateToolCallSetsNullContent(t *testing.T) {
	content := `<tool_calls><tool_call>{"name": "get_weather", "arguments": {"city": "Paris"}}</tool_call></tool_calls>`
	raw, _ := json.Marshal(content)
	resp := unmarshalUpstream(t, `{
		"success": true,
		"data": {
			"model": "claude-3-5-sonnet",
			"completion": {
				"choices": [{"message": {"content": `+string(raw)+`}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
			}
		}
	}`)

	format := promptformat.Lookup("claude-3-5-sonnet")
	out, err := Translate(resp, "claude-3-5-sonnet", format, 1234)
	require.NoError(t, err)
	require.Equal(t, "tool_calls", out.Choices[0].FinishReason)
	require.Len(t, out.Choices[0].Message.ToolCalls, 1)
	require.Nil(t, out.Choices[0].Message.Content)

	encoded, err := json.Marshal(out.Choices[0].Message)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	require.Nil(t, decoded["content"])
}

func TestTranslateNoChoicesIsResponseParseError(t *testing.T) {
	resp := unmarshalUpstream(t, `{"success": true, "data": {"model": "x", "completion": {"choices": [], "usage": {}}}}`)
	_, err := Translate(resp, "x", promptformat.Lookup("x"), 1234)
	require.Error(t, err)
}

func TestNewChatCompletionIDHasExpectedShape(t *testing.T) {
	id := NewChatCompletionID()
	require.Len(t, id, len("chatcmpl-")+12)
	require.True(t, len(id) >= 9 && id[:9] == "chatcmpl-")
}
