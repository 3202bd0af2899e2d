package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentPart is one element of a multi-part message content array, as
// accepted by the OpenAI chat completions wire format. Only the "text"
// kind is meaningful to this gateway; any other kind is rejected during
// validation since the upstream has no way to act on it.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Content holds a message's body, which OpenAI clients may send either
// as a bare string or as an array of typed parts. Raw preserves whichever
// form was sent so re-encoding (in tests and in error echoes) is
// lossless; Parts is always populated for callers that only care about
// the flattened text.
type Content struct {
	Raw   json.RawMessage
	Parts []ContentPart
}

// UnmarshalJSON accepts both wire forms described in the OpenAI chat
// completions schema: a plain string, or an array of typed parts.
func (c *Content) UnmarshalJSON(data []byte) error {
	c.Raw = append(c.Raw[:0], data...)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		c.Parts = nil
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("content: %w", err)
		}
		c.Parts = []ContentPart{{Type: "text", Text: s}}
		return nil
	}

	if trimmed[0] == '[' {
		var parts []ContentPart
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("content: %w", err)
		}
		c.Parts = parts
		return nil
	}

	return fmt.Errorf("content: unsupported JSON shape %q", string(trimmed))
}

// MarshalJSON re-emits the original wire form when it is known, so a
// request that arrived as a plain string round-trips as a plain string.
func (c Content) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	return json.Marshal(c.Text())
}

// Text flattens the content to a single string, joining multi-part
// content with a single space between parts, in order.
func (c Content) Text() string {
	if len(c.Parts) == 0 {
		return ""
	}
	if len(c.Parts) == 1 {
		return c.Parts[0].Text
	}
	out := c.Parts[0].Text
	for _, p := range c.Parts[1:] {
		out += " " + p.Text
	}
	return out
}

// ToolFunction describes the callable function half of a ToolDefinition.
type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  interface{} `json:"parameters,omitempty"`
}

// ToolDefinition is a tool made available to the model for this request.
// Kind is always "function" in the wire format this gateway accepts.
type ToolDefinition struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolCallFunction carries the name and JSON-encoded argument string the
// model chose for one invocation of a tool.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is one function invocation the model emitted, reconstructed
// by the tool-call extractor from delimited text in the completion.
type ToolCall struct {
	Index    int              `json:"index,omitempty"`
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is one turn of the conversation, in either direction. Content
// is a pointer so an assistant message carrying only tool calls can
// serialize its content as JSON null, matching the OpenAI wire format.
type Message struct {
	Role       string     `json:"role"`
	Content    *Content   `json:"content"`
	Name       string     `json:"name,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// Text flattens a message's content, returning "" for a nil Content
// (an assistant message whose only payload is tool calls).
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return m.Content.Text()
}

// ChatRequest is the ingress payload for POST /v1/chat/completions.
type ChatRequest struct {
	Model       string           `json:"model"`
	Messages    []Message        `json:"messages"`
	Tools       []ToolDefinition `json:"tools,omitempty"`
	ToolChoice  interface{}      `json:"tool_choice,omitempty"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Stream      bool             `json:"stream,omitempty"`
}

// UpstreamRequest is the single-prompt payload Straico's completion
// endpoint accepts. There is no concept of roles or tool schemas on the
// wire; the prompt composer flattens everything into Message.
type UpstreamRequest struct {
	Model    string   `json:"model"`
	Message  string   `json:"message"`
	FileURLs []string `json:"file_urls,omitempty"`
}

// UpstreamResponse is Straico's completion payload. The shape below
// mirrors the documented "data.completion" envelope: a single choice of
// generated text plus whatever usage accounting the provider returns.
// Success and Error are the envelope-level signal Straico sends
// alongside (and sometimes instead of) an HTTP error status; a 2xx
// response with success=false still describes a failed completion.
type UpstreamResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Completion struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
				FinishReason string `json:"finish_reason"`
			} `json:"choices"`
			Usage struct {
				PromptTokens     int `json:"prompt_tokens"`
				CompletionTokens int `json:"completion_tokens"`
				TotalTokens      int `json:"total_tokens"`
			} `json:"usage"`
		} `json:"completion"`
		Model string `json:"model"`
	} `json:"data"`
}

// Usage reports token accounting, copied through from the upstream when
// present.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Choice is one completion candidate in a non-streaming ChatResponse.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse is the egress payload for a non-streaming chat completion.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage,omitempty"`
}

// StreamDelta is the incremental portion of a streamed choice.
type StreamDelta struct {
	Role      string     `json:"role,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// StreamChoice wraps one delta within a StreamChunk.
type StreamChoice struct {
	Index        int          `json:"index"`
	Delta        StreamDelta  `json:"delta"`
	FinishReason *string      `json:"finish_reason"`
}

// StreamChunk is one `data: ` line of an emulated SSE response. Every
// chunk in a given stream shares ID and Created; Object is always
// "chat.completion.chunk".
type StreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []StreamChoice `json:"choices"`
}
