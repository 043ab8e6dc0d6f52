package ai

import (
	"context"

	"github.com/poiesic/servitor/core"
)

// ChatRequest is one model turn: the full conversation so far plus the
// tool descriptors the model may call.
type ChatRequest struct {
	Messages []core.Message
	Tools    []core.ToolSpec
}

// ChatModel generates model replies for a conversation.
// Implementations must be thread-safe for concurrent use; retry policy,
// if any, lives inside the implementation, never in callers.
type ChatModel interface {
	// Generate submits the request and blocks until the model produces
	// a reply or the context is done.
	Generate(ctx context.Context, req ChatRequest) (*core.Reply, error)

	// GenerateStream submits the request and forwards text chunks to
	// onToken in emission order as they arrive. onToken may be invoked
	// from a transport-managed goroutine. The final reply is returned
	// once the stream completes.
	GenerateStream(ctx context.Context, req ChatRequest, onToken func(token string)) (*core.Reply, error)
}

// ModerationModel classifies text as violating content policy or not.
// Implementations must be thread-safe for concurrent use.
type ModerationModel interface {
	// Moderate returns true when the text is flagged.
	Moderate(ctx context.Context, text string) (bool, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the model services for convenient initialization
// and lifecycle management.
type Provider interface {
	// ChatModel returns the chat generation service.
	ChatModel() ChatModel

	// ModerationModel returns the moderation service.
	ModerationModel() ModerationModel

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
