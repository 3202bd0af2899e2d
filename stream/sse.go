// Package stream emulates Server-Sent-Events streaming over Straico's
// single non-streaming completion call: an initial chunk, a heartbeat
// ticker that runs until the upstream resolves, a terminal chunk built
// from the resolved payload, and a closing [DONE] marker.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"straico-gateway/apierror"
	"straico-gateway/promptformat"
	"straico-gateway/translate"
	"straico-gateway/types"
)

// HeartbeatChar selects the near-invisible character emitted in
// keepalive chunks.
type HeartbeatChar string

const (
	HeartbeatEmpty HeartbeatChar = "empty"
	HeartbeatZWSP  HeartbeatChar = "zwsp"
	HeartbeatZWNJ  HeartbeatChar = "zwnj"
	HeartbeatWJ    HeartbeatChar = "wj"
)

func (h HeartbeatChar) Rune() string {
	switch h {
	case HeartbeatZWSP:
		return "​"
	case HeartbeatZWNJ:
		return "‌"
	case HeartbeatWJ:
		return "⁠"
	default:
		return ""
	}
}

// Result is what the dispatch goroutine sends once, either a completed
// upstream response or the error it failed with. It is the "completion
// signal" of spec.md §5: a single-send, single-receive handoff between
// the live upstream future and the heartbeat ticker that must stop as
// soon as it resolves.
type Result struct {
	Response types.UpstreamResponse
	Err      error
}

// Emit drives the emulated SSE response to w. dispatch is invoked once,
// in its own goroutine, and its return values are handed back as a
// single Result on a buffered channel. heartbeatInterval is a parameter (not a constant) so tests
// can drive the ticker without a real 3-second wait.
func Emit(ctx context.Context, w http.ResponseWriter, req types.ChatRequest, format promptformat.Format, heartbeat HeartbeatChar, heartbeatInterval time.Duration, dispatch func(context.Context) (types.UpstreamResponse, error)) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return apierror.New(apierror.ServerConfiguration, "response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	id := translate.NewChatCompletionID()
	created := time.Now().Unix()

	writeChunk(w, flusher, types.StreamChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
		Choices: []types.StreamChoice{{Index: 0, Delta: types.StreamDelta{Role: "assistant"}}},
	})

	resultCh := make(chan Result, 1)
	dispatchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		resp, err := dispatch(dispatchCtx)
		resultCh <- Result{Response: resp, Err: err}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	var result Result
heartbeatLoop:
	for {
		select {
		case <-ticker.C:
			writeChunk(w, flusher, types.StreamChunk{
				ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
				Choices: []types.StreamChoice{{Index: 0, Delta: types.StreamDelta{Content: heartbeat.Rune()}}},
			})
		case result = <-resultCh:
			break heartbeatLoop
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if result.Err != nil {
		apiErr := apierror.As(result.Err)
		env := apiErr.ToEnvelope()
		data, _ := json.Marshal(env)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		return result.Err
	}

	translated, err := translate.Translate(result.Response, req.Model, format, time.Now().Unix())
	if err != nil {
		apiErr := apierror.As(err)
		env := apiErr.ToEnvelope()
		data, _ := json.Marshal(env)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
		return err
	}

	finishReason := translated.Choices[0].FinishReason
	delta := types.StreamDelta{}
	if len(translated.Choices[0].Message.ToolCalls) > 0 {
		delta.ToolCalls = translated.Choices[0].Message.ToolCalls
	} else {
		delta.Content = translated.Choices[0].Message.Text()
	}

	writeChunk(w, flusher, types.StreamChunk{
		ID: id, Object: "chat.completion.chunk", Created: created, Model: translated.Model,
		Choices: []types.StreamChoice{{Index: 0, Delta: delta, FinishReason: &finishReason}},
	})

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}

func writeChunk(w http.ResponseWriter, flusher http.Flusher, chunk types.StreamChunk) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
