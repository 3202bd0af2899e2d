package toolcall

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"straico-gateway/promptformat"
	"straico-gateway/types"
)

// ExtractError reports a tool-call region that was found but could not
// be parsed as JSON. The extractor never emits a partial tool-call list:
// a single malformed region fails the whole extraction.
type ExtractError struct {
	Region string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("tool call extraction: %v (region: %q)", e.Err, e.Region)
}

func (e *ExtractError) Unwrap() error { return e.Err }

type rawCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Extract scans completion text for the format's tool-call delimiter
// pairs, in source order, and parses each region as {"name","arguments"}.
// It returns the extracted calls, the visible content with the
// outermost tool-calls block removed, and an error if any delimited
// region failed to parse as a well-formed tool call.
//
// When no delimiter is present, Extract returns a nil slice and the
// original text unchanged.
func Extract(text string, format promptformat.Format) ([]types.ToolCall, string, error) {
	if format.ToolCallOpen == "" || format.ToolCallClose == "" {
		return extractWrapped(text, format)
	}

	pattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(format.ToolCallOpen) + `(.*?)` + regexp.QuoteMeta(format.ToolCallClose))
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, text, nil
	}

	calls := make([]types.ToolCall, 0, len(matches))
	for i, m := range matches {
		region := text[m[2]:m[3]]
		call, err := parseCall(region, i)
		if err != nil {
			return nil, text, &ExtractError{Region: region, Err: err}
		}
		calls = append(calls, call)
	}

	start := matches[0][0]
	end := matches[len(matches)-1][1]
	if format.ToolCallsWrapOpen != "" {
		if idx := strings.LastIndex(text[:start], format.ToolCallsWrapOpen); idx >= 0 {
			start = idx
		}
	}
	if format.ToolCallsWrapClose != "" {
		if idx := strings.Index(text[end:], format.ToolCallsWrapClose); idx >= 0 {
			end += idx + len(format.ToolCallsWrapClose)
		}
	}
	visible := strings.TrimSpace(text[:start] + text[end:])
	return calls, visible, nil
}

// extractWrapped handles formats (e.g. Mistral) that have no per-call
// delimiter, only a wrapping block containing a JSON array of calls.
func extractWrapped(text string, format promptformat.Format) ([]types.ToolCall, string, error) {
	if format.ToolCallsWrapOpen == "" || format.ToolCallsWrapClose == "" {
		return nil, text, nil
	}
	pattern := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(format.ToolCallsWrapOpen) + `(.*?)` + regexp.QuoteMeta(format.ToolCallsWrapClose))
	m := pattern.FindStringSubmatchIndex(text)
	if m == nil {
		return nil, text, nil
	}
	region := strings.TrimSpace(text[m[2]:m[3]])
	var raws []rawCall
	if err := json.Unmarshal([]byte(region), &raws); err != nil {
		return nil, text, &ExtractError{Region: region, Err: err}
	}
	calls := make([]types.ToolCall, 0, len(raws))
	for i, r := range raws {
		args, err := compactArguments(r.Arguments)
		if err != nil {
			return nil, text, &ExtractError{Region: region, Err: err}
		}
		calls = append(calls, types.ToolCall{
			Index: i,
			ID:    "func_" + strconv.Itoa(i),
			Type:  "function",
			Function: types.ToolCallFunction{
				Name:      r.Name,
				Arguments: args,
			},
		})
	}
	visible := strings.TrimSpace(text[:m[0]] + text[m[1]:])
	return calls, visible, nil
}

func parseCall(region string, index int) (types.ToolCall, error) {
	stripped := strings.Join(strings.Fields(region), " ")
	stripped = strings.TrimSpace(stripped)

	var raw rawCall
	if err := json.Unmarshal([]byte(stripped), &raw); err != nil {
		// tolerate genuine newlines inside the JSON by retrying on the
		// untouched region before giving up.
		if err2 := json.Unmarshal([]byte(strings.TrimSpace(region)), &raw); err2 != nil {
			return types.ToolCall{}, err
		}
	}
	if raw.Name == "" {
		return types.ToolCall{}, fmt.Errorf("tool call missing \"name\"")
	}

	args, err := compactArguments(raw.Arguments)
	if err != nil {
		return types.ToolCall{}, err
	}

	return types.ToolCall{
		Index: index,
		ID:    "func_" + strconv.Itoa(index),
		Type:  "function",
		Function: types.ToolCallFunction{
			Name:      raw.Name,
			Arguments: args,
		},
	}, nil
}

func compactArguments(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "{}", nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("tool call arguments: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
