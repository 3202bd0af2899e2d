package proxy

import (
	"fmt"
	"strings"

	"straico-gateway/apierror"
	"straico-gateway/promptformat"
	"straico-gateway/toolcall"
	"straico-gateway/types"
)

// Compose builds the single flattened upstream prompt for a ChatRequest,
// per spec.md §4.D. It is a pure function of (request, format, override)
// and carries no state beyond its local accumulator.
func Compose(req types.ChatRequest, format promptformat.Format, override toolcall.DescriptionOverride) (types.UpstreamRequest, error) {
	if len(req.Messages) == 0 {
		return types.UpstreamRequest{}, apierror.New(apierror.MissingRequiredField, "messages must not be empty")
	}

	toolBlock := toolcall.Encode(req.Tools, format, override)
	hasSystem := false
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			hasSystem = true
			break
		}
	}

	var b strings.Builder
	systemWritten := false

	if toolBlock != "" && !hasSystem {
		writeTurn(&b, format.SystemPrefix, format.SystemSuffix, toolBlock)
		systemWritten = true
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			text := msg.Text()
			if toolBlock != "" && !systemWritten {
				text = toolBlock + "\n" + text
			}
			writeTurn(&b, format.SystemPrefix, format.SystemSuffix, text)
			systemWritten = true
		case "user":
			writeTurn(&b, format.UserPrefix, format.UserSuffix, msg.Text())
		case "tool":
			text := fmt.Sprintf("Tool result for %s: %s", msg.ToolCallID, msg.Text())
			writeTurn(&b, format.UserPrefix, format.UserSuffix, text)
		case "assistant":
			writeAssistantTurn(&b, format, msg)
		default:
			return types.UpstreamRequest{}, apierror.New(apierror.InvalidParameter, "unsupported message role: "+msg.Role)
		}
	}

	return types.UpstreamRequest{
		Model:   req.Model,
		Message: b.String(),
	}, nil
}

func writeTurn(b *strings.Builder, prefix, suffix, text string) {
	b.WriteString(prefix)
	b.WriteString(text)
	b.WriteString(suffix)
}

func writeAssistantTurn(b *strings.Builder, format promptformat.Format, msg types.Message) {
	b.WriteString(format.AssistantPrefix)
	if text := msg.Text(); text != "" {
		b.WriteString(text)
	}
	if len(msg.ToolCalls) > 0 {
		b.WriteString(format.ToolCallsWrapOpen)
		for _, call := range msg.ToolCalls {
			b.WriteString(format.ToolCallOpen)
			b.WriteString(fmt.Sprintf(`{"name": %q, "arguments": %s}`, call.Function.Name, orEmptyObject(call.Function.Arguments)))
			b.WriteString(format.ToolCallClose)
		}
		b.WriteString(format.ToolCallsWrapClose)
	}
	b.WriteString(format.AssistantSuffix)
}

func orEmptyObject(s string) string {
	if s == "" {
		return "{}"
	}
	return s
}
