// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.ChatModel,
// ai.ModerationModel, ai.Embedder, and ai.Provider for use in unit tests.
// The mocks allow tests to run without external AI service dependencies and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Scripted replies returned in order
//	chat := mock.NewMockChatModel(
//	    core.Reply{Text: "hello", FinishReason: core.FinishStop},
//	)
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
//	// Inspect what the model was asked
//	req := chat.LastRequest()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockChatModel: Returns scripted replies in order; streams reply text word by word
//   - MockModerationModel: Flags nothing
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockProvider: Aggregates mock chat, moderation and embedder services
package mock
