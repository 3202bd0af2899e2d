// Package toolcall implements the tool encoder and tool-call extractor:
// the two halves of emulating function calling over an upstream that
// has no native concept of tools.
package toolcall

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"straico-gateway/promptformat"
	"straico-gateway/types"
)

const preamble = "You have access to the following tools. When you need to call a tool, respond with the tool call wrapped in the exact delimiters shown below, with no other text inside the wrapper."

const postambleTemplate = "To call a tool, emit %s containing one or more %s{\"name\": <tool name>, \"arguments\": <JSON object>}%s blocks, then stop."

// DescriptionOverride resolves a per-tool description override, if one
// is configured. Implementations are supplied by config.Config so this
// package stays free of a direct config dependency.
type DescriptionOverride func(toolName string) (string, bool)

// Encode renders ToolDefinitions into the single text block that gets
// prepended to the system turn by the prompt composer. The output is
// deterministic: tool order is preserved as given and JSON fields use
// Go's stable struct-field encoding order, so identical input always
// produces an identical block.
func Encode(tools []types.ToolDefinition, format promptformat.Format, override DescriptionOverride) string {
	if len(tools) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n")
	b.WriteString(format.ToolsBlockOpen)
	b.WriteString("\n")

	for _, tool := range tools {
		def := tool
		if override != nil {
			if desc, ok := override(tool.Function.Name); ok {
				def.Function.Description = desc
			}
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(def.Function); err != nil {
			continue
		}
		b.WriteString(buf.String())
	}

	b.WriteString(format.ToolsBlockClose)
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(postambleTemplate,
		wrapped(format.ToolCallsWrapOpen, format.ToolCallsWrapClose),
		format.ToolCallOpen, format.ToolCallClose))
	return b.String()
}

func wrapped(open, close string) string {
	if open == "" && close == "" {
		return "a tool-calls block"
	}
	return open + "..." + close
}
