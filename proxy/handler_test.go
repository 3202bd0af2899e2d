package proxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"straico-gateway/config"
)

func newTestHandler(t *testing.T, upstreamHandler http.HandlerFunc) (*Handler, *httptest.Server) {
	t.Helper()
	upstream := httptest.NewServer(upstreamHandler)
	cfg := config.GetDefaultConfig()
	cfg.StraicoBaseURL = upstream.URL
	cfg.StraicoAPIKey = "test-key"
	cfg.UpstreamTimeout = 5 * time.Second
	cfg.HeartbeatInterval = 10 * time.Millisecond
	return NewHandler(cfg), upstream
}

func TestHandleChatCompletionsNonStreaming(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"model":"claude-3-5-sonnet","completion":{"choices":[{"message":{"content":"hello back"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}}}`)
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","messages":[{"role":"user","content":"hi"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	choices := decoded["choices"].([]interface{})
	msg := choices[0].(map[string]interface{})["message"].(map[string]interface{})
	require.Equal(t, "hello back", msg["content"])
}

func TestHandleChatCompletionsRejectsMissingModel(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called for an invalid request")
	})
	defer upstream.Close()

	body := []byte(`{"messages":[{"role":"user","content":"hi"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatCompletionsRejectsNonPost(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called")
	})
	defer upstream.Close()

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/completions", nil)
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatCompletionsStreaming(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"model":"claude-3-5-sonnet","completion":{"choices":[{"message":{"content":"streamed reply"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}}}`)
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","stream":true,"messages":[{"role":"user","content":"hi"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), "data: [DONE]")
}

func TestHandleChatCompletionsRejectsFirstMessageAssistant(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called for an invalid request")
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","messages":[{"role":"assistant","content":"hi"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatCompletionsRejectsToolMessageWithoutMatchingCall(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called for an invalid request")
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","messages":[{"role":"user","content":"hi"},{"role":"tool","tool_call_id":"bogus","content":"42"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleChatCompletionsAcceptsToolMessageAfterMatchingCall(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"model":"claude-3-5-sonnet","completion":{"choices":[{"message":{"content":"it's sunny"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}}}`)
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","messages":[
		{"role":"user","content":"what's the weather"},
		{"role":"assistant","tool_calls":[{"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{}"}}]},
		{"role":"tool","tool_call_id":"call_1","content":"sunny"}
	]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestHandleChatCompletionsRejectsEmptyTextField(t *testing.T) {
	handler, upstream := newTestHandler(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("upstream should not be called for an invalid request")
	})
	defer upstream.Close()

	body := []byte(`{"model":"claude-3-5-sonnet","messages":[{"role":"user","content":"   "}]}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.HandleChatCompletions(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
