package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/servitor/ai/mock"
	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/storage/badger"
)

func newTestRetriever(t *testing.T, opts ...Option) (*Retriever, *mock.MockEmbedder) {
	t.Helper()

	_, vecStore, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		// Direction encodes the topic so tests control similarity.
		switch text {
		case "capitals", "What is the capital of Germany?":
			return []float32{1, 0}, nil
		case "fruit":
			return []float32{0, 1}, nil
		default:
			// Equidistant from both stored segments.
			return []float32{1, 1}, nil
		}
	}

	retriever, err := NewRetriever(embedder, vecStore, opts...)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = vecStore.Add(ctx,
		&core.Segment{Text: "Berlin is the capital of Germany", Vector: []float32{1, 0}},
		&core.Segment{Text: "Bananas are rich in potassium", Vector: []float32{0, 1}},
	)
	require.NoError(t, err)

	return retriever, embedder
}

func TestRetrieve(t *testing.T) {
	retriever, embedder := newTestRetriever(t, WithMinScore(0.9))

	matches, err := retriever.Retrieve(context.Background(), "What is the capital of Germany?")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Berlin is the capital of Germany", matches[0].Segment.Text)
	assert.InDelta(t, 1.0, matches[0].Score, 0.01)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestAugment(t *testing.T) {
	t.Run("appends relevant content", func(t *testing.T) {
		retriever, _ := newTestRetriever(t, WithMinScore(0.9))

		text, sources, err := retriever.Augment(context.Background(), "What is the capital of Germany?")
		require.NoError(t, err)
		require.Len(t, sources, 1)
		assert.Contains(t, text, "What is the capital of Germany?")
		assert.Contains(t, text, "Answer using the following information:")
		assert.Contains(t, text, "Berlin is the capital of Germany")
	})

	t.Run("no matches leaves question unchanged", func(t *testing.T) {
		retriever, _ := newTestRetriever(t, WithMinScore(0.99))

		text, sources, err := retriever.Augment(context.Background(), "Tell me about something else")
		require.NoError(t, err)
		assert.Equal(t, "Tell me about something else", text)
		assert.Empty(t, sources)
	})
}

func TestNewRetrieverValidation(t *testing.T) {
	_, vecStore, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(nil, vecStore)
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewRetriever(mock.NewMockEmbedder(), nil)
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("bad min score", func(t *testing.T) {
		_, err := NewRetriever(mock.NewMockEmbedder(), vecStore, WithMinScore(1.5))
		assert.ErrorIs(t, err, core.ErrConfig)
	})

	t.Run("bad max results", func(t *testing.T) {
		_, err := NewRetriever(mock.NewMockEmbedder(), vecStore, WithMaxResults(-1))
		assert.ErrorIs(t, err, core.ErrConfig)
	})
}
