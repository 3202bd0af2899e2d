package promptformat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupMatchesByFamilyToken(t *testing.T) {
	cases := map[string]string{
		"claude-3-5-sonnet":    "anthropic",
		"mistral-large-latest": "mistral",
		"meta-llama3-70b":      "llama3",
		"command-r-plus":       "command",
		"qwen2.5-72b-instruct": "qwen",
		"deepseek-chat":        "deepseek",
		"some-unlisted-model":  "generic",
	}
	for model, wantName := range cases {
		require.Equal(t, wantName, Lookup(model).Name, "model %q", model)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	require.Equal(t, "anthropic", Lookup("CLAUDE-3-OPUS").Name)
}

func TestFamiliesIncludesGeneric(t *testing.T) {
	families := Families()
	require.Contains(t, families, "generic")
	require.Len(t, families, len(Formats)+1)
}
