package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("session-42")
		b := IDFromContent("session-42")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		a := IDFromContent("session-42")
		b := IDFromContent("session-43")
		assert.NotEqual(t, a, b)
	})
}

func TestTokenUsage(t *testing.T) {
	t.Run("constructor derives total", func(t *testing.T) {
		u := NewTokenUsage(10, 5)
		assert.Equal(t, 15, u.Total)
		assert.NoError(t, u.Validate())
	})

	t.Run("add accumulates", func(t *testing.T) {
		u := NewTokenUsage(10, 5).Add(NewTokenUsage(3, 7))
		assert.Equal(t, 13, u.Input)
		assert.Equal(t, 12, u.Output)
		assert.Equal(t, 25, u.Total)
	})

	t.Run("mismatched total is a defect", func(t *testing.T) {
		u := TokenUsage{Input: 1, Output: 2, Total: 5}
		assert.ErrorIs(t, u.Validate(), ErrTokenUsage)
	})
}

func TestConversationWindow(t *testing.T) {
	t.Run("retains leading system message", func(t *testing.T) {
		c := NewConversation(
			NewSystemMessage("be terse"),
			NewUserMessage("one"),
			NewAIMessage("1"),
			NewUserMessage("two"),
			NewAIMessage("2"),
		)
		c.Window(2)

		msgs := c.Messages()
		require.Len(t, msgs, 3)
		assert.Equal(t, RoleSystem, msgs[0].Role)
		assert.Equal(t, "two", msgs[1].Text)
		assert.Equal(t, "2", msgs[2].Text)
	})

	t.Run("no-op when under limit", func(t *testing.T) {
		c := NewConversation(NewUserMessage("hello"))
		c.Window(10)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("trims without system message", func(t *testing.T) {
		c := NewConversation(NewUserMessage("a"), NewAIMessage("b"), NewUserMessage("c"))
		c.Window(1)
		msgs := c.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "c", msgs[0].Text)
	})
}

func TestRelevanceScore(t *testing.T) {
	assert.InDelta(t, 1.0, RelevanceFromCosine(1), 1e-6)
	assert.InDelta(t, 0.5, RelevanceFromCosine(0), 1e-6)
	assert.InDelta(t, 0.0, RelevanceFromCosine(-1), 1e-6)
	assert.InDelta(t, 0.2, CosineFromRelevance(RelevanceFromCosine(0.2)), 1e-6)
}
