package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/core"
)

// MockChatModel is a test double for ai.ChatModel.
// It returns scripted replies in order and records every request it receives,
// so tests can assert on the exact messages and tools sent to the model.
type MockChatModel struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns the next scripted reply.
	GenerateFunc func(ctx context.Context, req ai.ChatRequest) (*core.Reply, error)

	// GenerateStreamFunc is called by GenerateStream if set.
	// If nil, emits the next scripted reply's text word by word.
	GenerateStreamFunc func(ctx context.Context, req ai.ChatRequest, onToken func(string)) (*core.Reply, error)

	mu        sync.Mutex
	replies   []core.Reply
	next      int
	requests  []ai.ChatRequest
	callCount int
}

// NewMockChatModel creates a mock chat model that returns the given replies
// in order. Once the script is exhausted the last reply repeats.
// Note: Returns concrete type to allow test assertions via LastRequest().
func NewMockChatModel(replies ...core.Reply) *MockChatModel {
	return &MockChatModel{replies: replies}
}

// Generate returns the next scripted reply and records the request.
func (m *MockChatModel) Generate(ctx context.Context, req ai.ChatRequest) (*core.Reply, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}

	reply := m.nextReply()
	return &reply, nil
}

// GenerateStream emits the next scripted reply's text word by word through
// onToken, then returns the full reply.
func (m *MockChatModel) GenerateStream(ctx context.Context, req ai.ChatRequest, onToken func(string)) (*core.Reply, error) {
	m.mu.Lock()
	m.callCount++
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateStreamFunc != nil {
		return m.GenerateStreamFunc(ctx, req, onToken)
	}

	reply := m.nextReply()
	for i, word := range strings.Fields(reply.Text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			onToken(" ")
		}
		onToken(word)
	}
	return &reply, nil
}

func (m *MockChatModel) nextReply() core.Reply {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.replies) == 0 {
		return core.Reply{
			Text:         "mock reply",
			FinishReason: core.FinishStop,
			Usage:        core.NewTokenUsage(1, 1),
		}
	}
	reply := m.replies[m.next]
	if m.next < len(m.replies)-1 {
		m.next++
	}
	return reply
}

// Requests returns a copy of all requests received so far.
func (m *MockChatModel) Requests() []ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ai.ChatRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or a zero request if none.
func (m *MockChatModel) LastRequest() ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ai.ChatRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// CallCount returns the number of times any method was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the script position, recorded requests and call count.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = 0
	m.requests = nil
	m.callCount = 0
	m.GenerateFunc = nil
	m.GenerateStreamFunc = nil
}
