package logger

import "context"

// Emoji constants for the gateway's request lifecycle log lines,
// carried over from the teacher's visual logging style.
const (
	EmojiReceived = "📨"
	EmojiLaunch   = "🚀"
	EmojiStream   = "🌊"
	EmojiSuccess  = "✅"
	EmojiTool     = "🔧"
	EmojiAlert    = "🚨"
)

// LogRequest logs an incoming chat completion request.
func LogRequest(ctx context.Context, l Logger, model string, toolCount int, stream bool) {
	l.WithModel(model).Info("%s chat completion request: model=%s tools=%d stream=%v", EmojiReceived, model, toolCount, stream)
}

// LogDispatch logs the outgoing upstream dispatch.
func LogDispatch(ctx context.Context, l Logger, baseURL string, stream bool) {
	l.Info("%s dispatching to upstream: %s (stream: %v)", EmojiLaunch, baseURL, stream)
}

// LogStreamStart logs the start of an emulated SSE stream.
func LogStreamStart(ctx context.Context, l Logger) {
	l.Info("%s starting emulated stream", EmojiStream)
}

// LogToolCallsExtracted logs how many tool calls were found in a
// completion.
func LogToolCallsExtracted(ctx context.Context, l Logger, count int) {
	if count > 0 {
		l.Info("%s extracted %d tool call(s) from completion", EmojiTool, count)
	}
}

// LogResponseSummary logs the shape of the final response sent to the
// client.
func LogResponseSummary(ctx context.Context, l Logger, finishReason string, toolCalls int) {
	l.Info("%s response summary: finish_reason=%s tool_calls=%d", EmojiSuccess, finishReason, toolCalls)
}

// LogUpstreamFailure logs an upstream dispatch failure.
func LogUpstreamFailure(ctx context.Context, l Logger, err error) {
	l.Error("%s upstream request failed: %v", EmojiAlert, err)
}
