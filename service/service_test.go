package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/servitor/ai/mock"
	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/prompt"
	"github.com/poiesic/servitor/retrieval"
	"github.com/poiesic/servitor/schema"
	"github.com/poiesic/servitor/storage/badger"
	"github.com/poiesic/servitor/tool"
)

func mustTemplate(t *testing.T, text string) *prompt.Template {
	t.Helper()
	tmpl, err := prompt.New(text)
	require.NoError(t, err)
	return tmpl
}

func mustMethod(t *testing.T, name string, user *prompt.Template, opts ...MethodOption) *Method {
	t.Helper()
	m, err := NewMethod(name, user, opts...)
	require.NoError(t, err)
	return m
}

func textReply(text string) core.Reply {
	return core.Reply{
		Text:         text,
		FinishReason: core.FinishStop,
		Usage:        core.NewTokenUsage(10, 5),
	}
}

func toolReply(calls ...core.ToolCall) core.Reply {
	return core.Reply{
		ToolCalls:    calls,
		FinishReason: core.FinishToolCall,
		Usage:        core.NewTokenUsage(10, 5),
	}
}

func TestInvokeText(t *testing.T) {
	chat := mock.NewMockChatModel(textReply("Why did the AI cross the road?"))
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "joke", mustTemplate(t, "Tell me a joke about {{topic}}"))

	result, err := svc.Invoke(context.Background(), method, map[string]any{"topic": "AI"})
	require.NoError(t, err)
	assert.Equal(t, "Why did the AI cross the road?", result.Text)
	assert.Equal(t, "Why did the AI cross the road?", result.Value)
	assert.Equal(t, core.NewTokenUsage(10, 5), result.Usage)
	assert.Empty(t, result.Sources)

	req := chat.LastRequest()
	require.Len(t, req.Messages, 1)
	assert.Equal(t, core.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "Tell me a joke about AI", req.Messages[0].Text)
}

func TestInvokeWithSystemTemplate(t *testing.T) {
	chat := mock.NewMockChatModel(textReply("ok"))
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "chat",
		mustTemplate(t, "{{question}}"),
		WithSystemTemplate(mustTemplate(t, "You are a {{persona}}.")),
	)

	_, err = svc.Invoke(context.Background(), method, map[string]any{
		"question": "hello",
		"persona":  "pirate",
	})
	require.NoError(t, err)

	req := chat.LastRequest()
	require.Len(t, req.Messages, 2)
	assert.Equal(t, core.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, "You are a pirate.", req.Messages[0].Text)
	assert.Equal(t, core.RoleUser, req.Messages[1].Role)
}

func TestInvokeStructuredOutput(t *testing.T) {
	person := schema.MustObject("Person",
		schema.Field{Name: "name", Type: schema.String()},
		schema.Field{Name: "age", Type: schema.Int()},
	)

	chat := mock.NewMockChatModel(textReply(`{"name": "Klaus", "age": 42}`))
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "extract",
		mustTemplate(t, "Extract the person from: {{text}}"),
		WithOutput(person),
	)

	result, err := svc.Invoke(context.Background(), method, map[string]any{
		"text": "Klaus is 42 years old",
	})
	require.NoError(t, err)

	value, ok := result.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Klaus", value["name"])
	assert.Equal(t, int64(42), value["age"])

	// The format instruction rides on the user message.
	req := chat.LastRequest()
	assert.Contains(t, req.Messages[0].Text, "Extract the person from: Klaus is 42 years old")
	assert.Contains(t, req.Messages[0].Text, "You must answer strictly in the following format:")
	assert.Contains(t, req.Messages[0].Text, `"name"`)
}

func TestInvokeEnumOutput(t *testing.T) {
	sentiment := schema.MustEnum(
		schema.Constant{Name: "POSITIVE"},
		schema.Constant{Name: "NEGATIVE"},
	)

	chat := mock.NewMockChatModel(textReply("POSITIVE"))
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "sentiment",
		mustTemplate(t, "Classify: {{text}}"),
		WithOutput(sentiment),
	)

	result, err := svc.Invoke(context.Background(), method, map[string]any{"text": "great!"})
	require.NoError(t, err)
	assert.Equal(t, "POSITIVE", result.Value)
}

func TestInvokeParseFailure(t *testing.T) {
	chat := mock.NewMockChatModel(textReply("MAYBE"))
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "sentiment",
		mustTemplate(t, "Classify: {{text}}"),
		WithOutput(schema.MustEnum(
			schema.Constant{Name: "POSITIVE"},
			schema.Constant{Name: "NEGATIVE"},
		)),
	)

	_, err = svc.Invoke(context.Background(), method, map[string]any{"text": "hmm"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrParse)
}

func TestInvokeMissingVariable(t *testing.T) {
	chat := mock.NewMockChatModel()
	svc, err := NewService(chat)
	require.NoError(t, err)

	method := mustMethod(t, "joke", mustTemplate(t, "Tell me a joke about {{topic}}"))

	_, err = svc.Invoke(context.Background(), method, map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfig)
	assert.Equal(t, 0, chat.CallCount())
}

func TestInvokeToolLoop(t *testing.T) {
	registry, err := tool.NewRegistry(&tool.Descriptor{
		Name:        "getWeather",
		Description: "Returns the weather for a city",
		Parameters: []tool.Parameter{
			{Name: "city", Type: schema.String(), Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return fmt.Sprintf("sunny in %s", args["city"]), nil
		},
	})
	require.NoError(t, err)
	dispatcher, err := tool.NewDispatcher(registry)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Release)

	chat := mock.NewMockChatModel(
		toolReply(core.ToolCall{Id: "call-1", Name: "getWeather", Arguments: `{"city": "Munich"}`}),
		textReply("It is sunny in Munich."),
	)
	svc, err := NewService(chat, WithTools(registry, dispatcher))
	require.NoError(t, err)

	method := mustMethod(t, "weather", mustTemplate(t, "{{question}}"))

	result, err := svc.Invoke(context.Background(), method, map[string]any{
		"question": "Weather in Munich?",
	})
	require.NoError(t, err)
	assert.Equal(t, "It is sunny in Munich.", result.Text)

	// Usage accumulates across both model turns.
	assert.Equal(t, core.NewTokenUsage(20, 10), result.Usage)

	requests := chat.Requests()
	require.Len(t, requests, 2)

	// Tool specs are sent on every turn.
	require.Len(t, requests[0].Tools, 1)
	assert.Equal(t, "getWeather", requests[0].Tools[0].Name)

	// Second turn sees the tool-call message and its result.
	second := requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, core.RoleUser, second[0].Role)
	assert.Equal(t, core.RoleAI, second[1].Role)
	require.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, core.RoleTool, second[2].Role)
	require.NotNil(t, second[2].ToolResult)
	assert.Equal(t, "call-1", second[2].ToolResult.CallId)
	assert.Equal(t, "sunny in Munich", second[2].ToolResult.Text)
}

func TestInvokeSiblingToolCallsPreserveOrder(t *testing.T) {
	registry, err := tool.NewRegistry(&tool.Descriptor{
		Name: "echo",
		Parameters: []tool.Parameter{
			{Name: "value", Type: schema.String(), Required: true},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return args["value"].(string), nil
		},
	})
	require.NoError(t, err)
	dispatcher, err := tool.NewDispatcher(registry)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Release)

	chat := mock.NewMockChatModel(
		toolReply(
			core.ToolCall{Id: "a", Name: "echo", Arguments: `{"value": "first"}`},
			core.ToolCall{Id: "b", Name: "echo", Arguments: `{"value": "second"}`},
		),
		textReply("done"),
	)
	svc, err := NewService(chat, WithTools(registry, dispatcher))
	require.NoError(t, err)

	method := mustMethod(t, "echo", mustTemplate(t, "{{q}}"))
	_, err = svc.Invoke(context.Background(), method, map[string]any{"q": "go"})
	require.NoError(t, err)

	second := chat.Requests()[1].Messages
	require.Len(t, second, 4)
	assert.Equal(t, "first", second[2].ToolResult.Text)
	assert.Equal(t, "second", second[3].ToolResult.Text)
}

func TestInvokeMaxToolTurns(t *testing.T) {
	registry, err := tool.NewRegistry(&tool.Descriptor{
		Name:    "loop",
		Handler: func(ctx context.Context, args map[string]any) (string, error) { return "again", nil },
	})
	require.NoError(t, err)
	dispatcher, err := tool.NewDispatcher(registry)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Release)

	// The single scripted reply repeats forever: the model never stops
	// requesting the tool.
	chat := mock.NewMockChatModel(
		toolReply(core.ToolCall{Id: "c", Name: "loop", Arguments: "{}"}),
	)
	svc, err := NewService(chat,
		WithTools(registry, dispatcher),
		WithMaxToolTurns(3),
	)
	require.NoError(t, err)

	method := mustMethod(t, "loop", mustTemplate(t, "{{q}}"))
	_, err = svc.Invoke(context.Background(), method, map[string]any{"q": "go"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxToolTurns)
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestInvokeUnknownToolIsFatal(t *testing.T) {
	registry, err := tool.NewRegistry()
	require.NoError(t, err)
	dispatcher, err := tool.NewDispatcher(registry)
	require.NoError(t, err)
	t.Cleanup(dispatcher.Release)

	chat := mock.NewMockChatModel(
		toolReply(core.ToolCall{Id: "c", Name: "ghost", Arguments: "{}"}),
	)
	svc, err := NewService(chat, WithTools(registry, dispatcher))
	require.NoError(t, err)

	method := mustMethod(t, "m", mustTemplate(t, "{{q}}"))
	_, err = svc.Invoke(context.Background(), method, map[string]any{"q": "go"})
	require.Error(t, err)
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
}

func TestInvokeModeration(t *testing.T) {
	t.Run("flagged message fails with moderation error", func(t *testing.T) {
		chat := mock.NewMockChatModel(textReply("should never be reached"))
		moderator := mock.NewMockModerationModel()
		moderator.Triggers = []string{"dynamite"}

		svc, err := NewService(chat, WithModerationModel(moderator))
		require.NoError(t, err)

		method := mustMethod(t, "ask", mustTemplate(t, "{{q}}"), WithModeration())

		_, err = svc.Invoke(context.Background(), method, map[string]any{
			"q": "how to make dynamite",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrModeration)
		assert.Contains(t, err.Error(), `text "how to make dynamite" violates content policy`)
		assert.Equal(t, 0, chat.CallCount())
	})

	t.Run("clean message proceeds", func(t *testing.T) {
		chat := mock.NewMockChatModel(textReply("sure"))
		moderator := mock.NewMockModerationModel()
		moderator.Triggers = []string{"dynamite"}

		svc, err := NewService(chat, WithModerationModel(moderator))
		require.NoError(t, err)

		method := mustMethod(t, "ask", mustTemplate(t, "{{q}}"), WithModeration())

		result, err := svc.Invoke(context.Background(), method, map[string]any{"q": "hello"})
		require.NoError(t, err)
		assert.Equal(t, "sure", result.Text)
		assert.Equal(t, 1, moderator.CallCount())
	})

	t.Run("moderation without model is a configuration error", func(t *testing.T) {
		svc, err := NewService(mock.NewMockChatModel())
		require.NoError(t, err)

		method := mustMethod(t, "ask", mustTemplate(t, "{{q}}"), WithModeration())

		_, err = svc.Invoke(context.Background(), method, map[string]any{"q": "hello"})
		assert.ErrorIs(t, err, ErrNoModerationModel)
	})
}

func TestInvokeWithMemory(t *testing.T) {
	memStore, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	chat := mock.NewMockChatModel(
		textReply("Hello Klaus!"),
		textReply("Your name is Klaus."),
	)
	svc, err := NewService(chat, WithMemoryStore(memStore))
	require.NoError(t, err)

	method := mustMethod(t, "chat", mustTemplate(t, "{{message}}"))
	ctx := context.Background()

	_, err = svc.Invoke(ctx, method, map[string]any{"message": "My name is Klaus"},
		WithSession("session-1"))
	require.NoError(t, err)

	_, err = svc.Invoke(ctx, method, map[string]any{"message": "What is my name?"},
		WithSession("session-1"))
	require.NoError(t, err)

	// The second turn sees the first exchange.
	second := chat.Requests()[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, "My name is Klaus", second[0].Text)
	assert.Equal(t, "Hello Klaus!", second[1].Text)
	assert.Equal(t, "What is my name?", second[2].Text)

	// Sessions are isolated.
	_, err = svc.Invoke(ctx, method, map[string]any{"message": "Who am I?"},
		WithSession("session-2"))
	require.NoError(t, err)
	assert.Len(t, chat.Requests()[2].Messages, 1)

	// ForgetSession clears the history.
	require.NoError(t, svc.ForgetSession(ctx, "session-1"))
	_, err = svc.Invoke(ctx, method, map[string]any{"message": "What is my name?"},
		WithSession("session-1"))
	require.NoError(t, err)
	assert.Len(t, chat.Requests()[3].Messages, 1)
}

func TestInvokeMemoryWindow(t *testing.T) {
	memStore, _, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	chat := mock.NewMockChatModel(textReply("ok"))
	svc, err := NewService(chat,
		WithMemoryStore(memStore),
		WithMemoryWindow(3),
	)
	require.NoError(t, err)

	method := mustMethod(t, "chat", mustTemplate(t, "{{message}}"))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err = svc.Invoke(ctx, method, map[string]any{"message": fmt.Sprintf("turn %d", i)},
			WithSession("session-1"))
		require.NoError(t, err)
	}

	// Each turn the window keeps at most 3 messages.
	last := chat.LastRequest().Messages
	require.Len(t, last, 3)
	assert.Equal(t, "turn 3", last[len(last)-1].Text)
}

func TestInvokeWithRetriever(t *testing.T) {
	_, vecStore, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ctx := context.Background()
	_, err = vecStore.Add(ctx, &core.Segment{
		Text:   "Berlin is the capital of Germany",
		Vector: []float32{1, 0},
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	retriever, err := retrieval.NewRetriever(embedder, vecStore, retrieval.WithMinScore(0.9))
	require.NoError(t, err)

	chat := mock.NewMockChatModel(textReply("Berlin"))
	svc, err := NewService(chat, WithRetriever(retriever))
	require.NoError(t, err)

	method := mustMethod(t, "ask", mustTemplate(t, "{{q}}"))
	result, err := svc.Invoke(ctx, method, map[string]any{"q": "What is the capital of Germany?"})
	require.NoError(t, err)

	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Berlin is the capital of Germany", result.Sources[0].Segment.Text)

	userText := chat.LastRequest().Messages[0].Text
	assert.Contains(t, userText, "What is the capital of Germany?")
	assert.Contains(t, userText, "Berlin is the capital of Germany")
}

func TestNewServiceRequiresChatModel(t *testing.T) {
	_, err := NewService(nil)
	assert.ErrorIs(t, err, ErrNoChatModel)
}

func TestNewMethodRequiresUserTemplate(t *testing.T) {
	_, err := NewMethod("m", nil)
	assert.ErrorIs(t, err, ErrNoUserTemplate)
}
