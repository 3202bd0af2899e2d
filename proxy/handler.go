package proxy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"straico-gateway/apierror"
	"straico-gateway/config"
	"straico-gateway/internal"
	"straico-gateway/logger"
	"straico-gateway/promptformat"
	"straico-gateway/straico"
	"straico-gateway/stream"
	"straico-gateway/toolcall"
	"straico-gateway/translate"
	"straico-gateway/types"
)

// Handler serves POST /v1/chat/completions, translating each request
// into a single Straico prompt-completion call and translating the
// result back, emulating SSE streaming when the caller asked for it.
type Handler struct {
	config *config.Config
	client *straico.Client
}

// NewHandler builds a Handler bound to cfg, constructing the upstream
// client once so every request reuses its connection pool.
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{
		config: cfg,
		client: straico.New(cfg.StraicoBaseURL, cfg.StraicoAPIKey, cfg.UpstreamTimeout),
	}
}

// HandleChatCompletions implements component I's request-handler state
// machine: parse & validate, select format, compose prompt, dispatch,
// translate, respond — branching into the SSE emulator when streaming.
func (h *Handler) HandleChatCompletions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	streamed := false
	var outcome error
	defer func() { observeRequest(start, streamed, outcome) }()

	if r.Method != http.MethodPost {
		outcome = apierror.New(apierror.BadRequest, "method not allowed")
		writeJSONError(w, outcome)
		return
	}

	requestID := generateRequestID()
	ctx := internal.WithRequestID(r.Context(), requestID)
	ctx, log := logger.ContextLoggerFromConfig(ctx, h.config)
	log = log.WithComponent("handler")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		outcome = apierror.Wrap(apierror.BadRequest, "failed to read request body", err)
		writeJSONError(w, outcome)
		return
	}

	var req types.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		outcome = apierror.Wrap(apierror.InvalidParameter, "failed to parse request body", err)
		writeJSONError(w, outcome)
		return
	}
	streamed = req.Stream

	if err := validate(req); err != nil {
		outcome = err
		writeJSONError(w, err)
		return
	}

	logger.LogRequest(ctx, log, req.Model, len(req.Tools), req.Stream)

	format := promptformat.Lookup(req.Model)
	override := overrideFromConfig(h.config)

	upstreamReq, err := Compose(req, format, override)
	if err != nil {
		outcome = err
		writeJSONError(w, err)
		return
	}

	logger.LogDispatch(ctx, log, h.config.StraicoBaseURL, req.Stream)

	if req.Stream {
		outcome = h.handleStreaming(ctx, w, req, format, upstreamReq)
		return
	}
	outcome = h.handleNonStreaming(ctx, w, req, format, upstreamReq)
}

func (h *Handler) handleNonStreaming(ctx context.Context, w http.ResponseWriter, req types.ChatRequest, format promptformat.Format, upstreamReq types.UpstreamRequest) error {
	log := loggerFromContext(ctx)

	resp, err := h.client.Complete(ctx, upstreamReq)
	if err != nil {
		logger.LogUpstreamFailure(ctx, log, err)
		writeJSONError(w, err)
		return err
	}

	translated, err := translate.Translate(resp, req.Model, format, time.Now().Unix())
	if err != nil {
		writeJSONError(w, err)
		return err
	}

	logger.LogResponseSummary(ctx, log, translated.Choices[0].FinishReason, len(translated.Choices[0].Message.ToolCalls))
	logger.LogToolCallsExtracted(ctx, log, len(translated.Choices[0].Message.ToolCalls))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(translated)
	return nil
}

func (h *Handler) handleStreaming(ctx context.Context, w http.ResponseWriter, req types.ChatRequest, format promptformat.Format, upstreamReq types.UpstreamRequest) error {
	log := loggerFromContext(ctx)
	logger.LogStreamStart(ctx, log)

	heartbeat := stream.HeartbeatChar(h.config.HeartbeatChar)
	err := stream.Emit(ctx, w, req, format, heartbeat, h.config.HeartbeatInterval, func(dispatchCtx context.Context) (types.UpstreamResponse, error) {
		return h.client.Complete(dispatchCtx, upstreamReq)
	})
	if err != nil {
		logger.LogUpstreamFailure(ctx, log, err)
	}
	return err
}

func validate(req types.ChatRequest) error {
	if req.Model == "" {
		return apierror.New(apierror.MissingRequiredField, "model is required")
	}
	if len(req.Messages) == 0 {
		return apierror.New(apierror.MissingRequiredField, "messages must not be empty")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return apierror.New(apierror.InvalidParameter, "temperature must be between 0 and 2")
	}

	if first := req.Messages[0].Role; first != "system" && first != "user" {
		return apierror.New(apierror.InvalidParameter, "first message must have role system or user")
	}

	issuedToolCallIDs := map[string]bool{}
	for _, msg := range req.Messages {
		if msg.Content != nil {
			for _, part := range msg.Content.Parts {
				if part.Type != "" && part.Type != "text" {
					return apierror.New(apierror.InvalidParameter, fmt.Sprintf("unsupported content part type: %s", part.Type))
				}
			}
		}

		switch msg.Role {
		case "assistant":
			for _, call := range msg.ToolCalls {
				issuedToolCallIDs[call.ID] = true
			}
			if len(msg.ToolCalls) == 0 && strings.TrimSpace(msg.Text()) == "" {
				return apierror.New(apierror.InvalidParameter, "assistant message must have text or tool calls")
			}
		case "tool":
			if !issuedToolCallIDs[msg.ToolCallID] {
				return apierror.New(apierror.InvalidParameter, fmt.Sprintf("tool message references unknown tool_call_id: %s", msg.ToolCallID))
			}
			if strings.TrimSpace(msg.Text()) == "" {
				return apierror.New(apierror.InvalidParameter, "tool message must have a non-empty text field")
			}
		case "system", "user":
			if strings.TrimSpace(msg.Text()) == "" {
				return apierror.New(apierror.InvalidParameter, fmt.Sprintf("%s message must have a non-empty text field", msg.Role))
			}
		}
	}
	return nil
}

func overrideFromConfig(cfg *config.Config) toolcall.DescriptionOverride {
	return func(toolName string) (string, bool) {
		desc, ok := cfg.ToolDescriptions[toolName]
		return desc, ok
	}
}

func writeJSONError(w http.ResponseWriter, err error) {
	apiErr := apierror.As(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status())
	json.NewEncoder(w).Encode(apiErr.ToEnvelope())
}

func generateRequestID() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return hex.EncodeToString(sum[:])[:12]
}

// loggerFromContext recovers the logger stashed by
// logger.ContextLoggerFromConfig, falling back to a bare logger if
// absent so helper functions never need a nil check.
func loggerFromContext(ctx context.Context) logger.Logger {
	return logger.FromContext(ctx, noopLoggerConfig{})
}

type noopLoggerConfig struct{}

func (noopLoggerConfig) ShouldLogForModel(string) bool { return true }
func (noopLoggerConfig) GetMinLogLevel() logger.Level  { return logger.INFO }
func (noopLoggerConfig) ShouldMaskAPIKeys() bool       { return true }
