package translate

import (
	"crypto/rand"
	"encoding/json"

	"straico-gateway/apierror"
	"straico-gateway/promptformat"
	"straico-gateway/toolcall"
	"straico-gateway/types"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewChatCompletionID generates the "chatcmpl-" + 12 random alphanumeric
// characters identifier used for both the non-streaming response id and
// every chunk of a streamed response.
func NewChatCompletionID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read on the standard reader does not fail in
		// practice; degrade to a fixed id rather than panic.
		return "chatcmpl-000000000000"
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return "chatcmpl-" + string(buf)
}

// Translate assembles the OpenAI chat completion response from a
// Straico completion, per spec.md §4.F: extracting any tool calls from
// the raw text, picking the finish reason, and copying usage through.
func Translate(upstream types.UpstreamResponse, requestModel string, format promptformat.Format, nowUnix int64) (types.ChatResponse, error) {
	if len(upstream.Data.Completion.Choices) == 0 {
		return types.ChatResponse{}, apierror.New(apierror.ResponseParse, "upstream returned no choices")
	}

	raw := upstream.Data.Completion.Choices[0]
	calls, visible, err := toolcall.Extract(raw.Message.Content, format)
	if err != nil {
		return types.ChatResponse{}, apierror.Wrap(apierror.ResponseParse, "failed to parse tool calls from completion", err)
	}

	model := upstream.Data.Model
	if model == "" {
		model = requestModel
	}

	msg := types.Message{Role: "assistant"}
	finishReason := "stop"
	if len(calls) > 0 {
		msg.ToolCalls = calls
		finishReason = "tool_calls"
	} else {
		msg.Content = textContent(visible)
	}

	return types.ChatResponse{
		ID:      NewChatCompletionID(),
		Object:  "chat.completion",
		Created: nowUnix,
		Model:   model,
		Choices: []types.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: finishReason,
		}},
		Usage: types.Usage{
			PromptTokens:     upstream.Data.Completion.Usage.PromptTokens,
			CompletionTokens: upstream.Data.Completion.Usage.CompletionTokens,
			TotalTokens:      upstream.Data.Completion.Usage.TotalTokens,
		},
	}, nil
}

func textContent(s string) *types.Content {
	raw, _ := json.Marshal(s)
	return &types.Content{Raw: raw, Parts: []types.ContentPart{{Type: "text", Text: s}}}
}
