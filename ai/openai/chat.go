package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client      llms.Model
	temperature float64
	counter     *tokenCounter
	logger      *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: config.Temperature,
		counter:     newTokenCounter(config.ChatModel),
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Generate submits the conversation and blocks until the model replies.
func (m *ChatModel) Generate(ctx context.Context, req ai.ChatRequest) (*core.Reply, error) {
	return m.generate(ctx, req, nil)
}

// GenerateStream submits the conversation and forwards text chunks to
// onToken in emission order. The chunks arrive on a transport-managed
// goroutine; callers must not assume delivery on their own goroutine.
func (m *ChatModel) GenerateStream(ctx context.Context, req ai.ChatRequest, onToken func(token string)) (*core.Reply, error) {
	return m.generate(ctx, req, onToken)
}

func (m *ChatModel) generate(ctx context.Context, req ai.ChatRequest, onToken func(token string)) (*core.Reply, error) {
	content := toMessageContent(req.Messages)

	opts := []llms.CallOption{llms.WithTemperature(m.temperature)}
	if len(req.Tools) > 0 {
		opts = append(opts, llms.WithTools(toTools(req.Tools)))
	}
	if onToken != nil {
		opts = append(opts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) > 0 {
				onToken(string(chunk))
			}
			return nil
		}))
	}

	response, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		m.logger.Error("failed to generate content", "err", err)
		return nil, err
	}
	if len(response.Choices) < 1 {
		m.logger.Debug("no choices returned from model")
		return &core.Reply{FinishReason: core.FinishOther}, nil
	}

	choice := response.Choices[0]
	reply := &core.Reply{
		Text:         choice.Content,
		ToolCalls:    fromToolCalls(choice.ToolCalls),
		FinishReason: finishReason(choice.StopReason, len(choice.ToolCalls)),
		Usage:        m.usage(choice, req.Messages),
	}

	if err := reply.Validate(); err != nil {
		m.logger.Error("model reply violates invariants", "err", err)
		return nil, err
	}
	return reply, nil
}

// usage extracts token counts from the vendor response, estimating with
// the tokenizer when the transport reports none (common for streams).
func (m *ChatModel) usage(choice *llms.ContentChoice, messages []core.Message) core.TokenUsage {
	input := infoInt(choice.GenerationInfo, "PromptTokens")
	output := infoInt(choice.GenerationInfo, "CompletionTokens")
	if input > 0 || output > 0 {
		return core.NewTokenUsage(input, output)
	}

	for _, msg := range messages {
		input += m.counter.count(msg.Text)
	}
	return core.NewTokenUsage(input, m.counter.count(choice.Content))
}

func infoInt(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toMessageContent(messages []core.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, llms.MessageContent{
				Role:  llms.ChatMessageTypeSystem,
				Parts: []llms.ContentPart{llms.TextPart(msg.Text)},
			})
		case core.RoleUser:
			out = append(out, llms.MessageContent{
				Role:  llms.ChatMessageTypeHuman,
				Parts: []llms.ContentPart{llms.TextPart(msg.Text)},
			})
		case core.RoleAI:
			parts := make([]llms.ContentPart, 0, len(msg.ToolCalls)+1)
			if msg.Text != "" {
				parts = append(parts, llms.TextPart(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   call.Id,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			out = append(out, llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts})
		case core.RoleTool:
			if msg.ToolResult == nil {
				continue
			}
			out = append(out, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: msg.ToolResult.CallId,
					Name:       msg.ToolResult.Name,
					Content:    msg.ToolResult.Text,
				}},
			})
		}
	}
	return out
}

func toTools(specs []core.ToolSpec) []llms.Tool {
	out := make([]llms.Tool, len(specs))
	for i, spec := range specs {
		out[i] = llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		}
	}
	return out
}

func fromToolCalls(calls []llms.ToolCall) []core.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]core.ToolCall, 0, len(calls))
	for _, call := range calls {
		if call.FunctionCall == nil {
			continue
		}
		out = append(out, core.ToolCall{
			Id:        call.ID,
			Name:      call.FunctionCall.Name,
			Arguments: call.FunctionCall.Arguments,
		})
	}
	return out
}

// finishReason maps vendor stop reasons onto the core taxonomy.
// A reply that carries tool calls is a tool-call turn regardless of
// what the vendor string says.
func finishReason(stopReason string, toolCalls int) core.FinishReason {
	if toolCalls > 0 {
		return core.FinishToolCall
	}
	switch stopReason {
	case "stop", "end_turn", "stop_sequence":
		return core.FinishStop
	case "tool_calls", "tool_use", "function_call":
		return core.FinishToolCall
	case "length", "max_tokens":
		return core.FinishLength
	default:
		return core.FinishOther
	}
}
