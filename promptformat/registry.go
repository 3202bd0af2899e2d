// Package promptformat maps a model identifier to the turn-marker and
// tool-call delimiter markup used to flatten a chat request into a
// single upstream prompt string.
package promptformat

import "strings"

// Formats is the ordered family table. Lookup is first-match-wins on a
// case-insensitive substring of the request's model field, so entries
// earlier in this slice take priority when a model name could match
// more than one token (e.g. "anthropic" is checked before the generic
// fallback).
var Formats = []struct {
	Family  string
	Tokens  []string
	Format  Format
}{
	{Family: "anthropic", Tokens: []string{"claude", "anthropic"}, Format: anthropicFormat},
	{Family: "mistral", Tokens: []string{"mistral", "mixtral"}, Format: mistralFormat},
	{Family: "llama3", Tokens: []string{"llama3", "llama-3", "llama4", "llama-4"}, Format: llama3Format},
	{Family: "command", Tokens: []string{"command"}, Format: commandFormat},
	{Family: "qwen", Tokens: []string{"qwen"}, Format: qwenFormat},
	{Family: "deepseek", Tokens: []string{"deepseek"}, Format: deepseekFormat},
}

// Format is the model-family-specific markup used by the prompt
// composer (proxy.Compose), the tool encoder (toolcall.Encode) and the
// tool-call extractor (toolcall.Extract). All three consult the same
// record for a given model so encoding and extraction never drift.
type Format struct {
	Name string

	SystemPrefix, SystemSuffix       string
	UserPrefix, UserSuffix           string
	AssistantPrefix, AssistantSuffix string

	ToolsBlockOpen, ToolsBlockClose string

	ToolCallsWrapOpen, ToolCallsWrapClose string
	ToolCallOpen, ToolCallClose            string
}

var genericFormat = Format{
	Name:               "generic",
	SystemPrefix:       "System: ",
	SystemSuffix:       "\n\n",
	UserPrefix:         "User: ",
	UserSuffix:         "\n\n",
	AssistantPrefix:    "Assistant: ",
	AssistantSuffix:    "\n\n",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

var anthropicFormat = Format{
	Name:               "anthropic",
	SystemPrefix:       "\n\nSystem: ",
	SystemSuffix:       "\n",
	UserPrefix:         "\n\nHuman: ",
	UserSuffix:         "\n",
	AssistantPrefix:    "\n\nAssistant: ",
	AssistantSuffix:    "\n",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

var mistralFormat = Format{
	Name:               "mistral",
	SystemPrefix:       "[SYSTEM_PROMPT]",
	SystemSuffix:       "[/SYSTEM_PROMPT]",
	UserPrefix:         "[INST]",
	UserSuffix:         "[/INST]",
	AssistantPrefix:    "",
	AssistantSuffix:    "</s>",
	ToolsBlockOpen:     "[AVAILABLE_TOOLS]",
	ToolsBlockClose:    "[/AVAILABLE_TOOLS]",
	ToolCallsWrapOpen:  "[TOOL_CALLS]",
	ToolCallsWrapClose: "[/TOOL_CALLS]",
	ToolCallOpen:       "",
	ToolCallClose:      "",
}

var llama3Format = Format{
	Name:               "llama3",
	SystemPrefix:       "<|start_header_id|>system<|end_header_id|>\n\n",
	SystemSuffix:       "<|eot_id|>",
	UserPrefix:         "<|start_header_id|>user<|end_header_id|>\n\n",
	UserSuffix:         "<|eot_id|>",
	AssistantPrefix:    "<|start_header_id|>assistant<|end_header_id|>\n\n",
	AssistantSuffix:    "<|eot_id|>",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

var commandFormat = Format{
	Name:               "command",
	SystemPrefix:       "<|START_OF_TURN_TOKEN|><|SYSTEM_TOKEN|>",
	SystemSuffix:       "<|END_OF_TURN_TOKEN|>",
	UserPrefix:         "<|START_OF_TURN_TOKEN|><|USER_TOKEN|>",
	UserSuffix:         "<|END_OF_TURN_TOKEN|>",
	AssistantPrefix:    "<|START_OF_TURN_TOKEN|><|CHATBOT_TOKEN|>",
	AssistantSuffix:    "<|END_OF_TURN_TOKEN|>",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

var qwenFormat = Format{
	Name:               "qwen",
	SystemPrefix:       "<|im_start|>system\n",
	SystemSuffix:       "<|im_end|>\n",
	UserPrefix:         "<|im_start|>user\n",
	UserSuffix:         "<|im_end|>\n",
	AssistantPrefix:    "<|im_start|>assistant\n",
	AssistantSuffix:    "<|im_end|>\n",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

var deepseekFormat = Format{
	Name:               "deepseek",
	SystemPrefix:       "",
	SystemSuffix:       "\n\n",
	UserPrefix:         "User: ",
	UserSuffix:         "\n\n",
	AssistantPrefix:    "Assistant: ",
	AssistantSuffix:    "<｜end▁of▁sentence｜>",
	ToolsBlockOpen:     "<tools>",
	ToolsBlockClose:    "</tools>",
	ToolCallsWrapOpen:  "<tool_calls>",
	ToolCallsWrapClose: "</tool_calls>",
	ToolCallOpen:       "<tool_call>",
	ToolCallClose:      "</tool_call>",
}

// Lookup returns the format for a model. The matched family is
// available as the returned Format's Name ("generic" when no family
// token matched).
func Lookup(model string) Format {
	lower := strings.ToLower(model)
	for _, entry := range Formats {
		for _, tok := range entry.Tokens {
			if strings.Contains(lower, tok) {
				return entry.Format
			}
		}
	}
	return genericFormat
}

// Families lists the recognized family names, in priority order, for
// use by the models-listing endpoint.
func Families() []string {
	names := make([]string, 0, len(Formats)+1)
	for _, entry := range Formats {
		names = append(names, entry.Family)
	}
	return append(names, genericFormat.Name)
}
