// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package service

import (
	"context"
	"log/slog"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/retrieval"
	"github.com/poiesic/servitor/storage"
	"github.com/poiesic/servitor/tool"
)

const (
	// defaultMaxToolTurns bounds sequential tool-requesting model turns
	// within one session.
	defaultMaxToolTurns = 100

	// defaultMemoryWindow is the number of stored messages kept when a
	// session's memory is loaded. The leading system message is retained
	// on top of the window.
	defaultMemoryWindow = 20
)

// Service binds a chat model to its collaborators and executes methods
// against them. A Service is safe for concurrent use; each invocation
// owns its conversation exclusively.
type Service struct {
	chat         ai.ChatModel
	moderator    ai.ModerationModel
	memory       storage.MemoryStore
	retriever    *retrieval.Retriever
	registry     *tool.Registry
	dispatcher   *tool.Dispatcher
	maxToolTurns int
	memoryWindow int
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithModerationModel sets the moderation collaborator.
func WithModerationModel(m ai.ModerationModel) Option {
	return func(s *Service) {
		s.moderator = m
	}
}

// WithMemoryStore sets the conversation memory collaborator. Sessions
// invoked with a session id load and persist their messages through it.
func WithMemoryStore(store storage.MemoryStore) Option {
	return func(s *Service) {
		s.memory = store
	}
}

// WithRetriever sets the content retriever. Retrieved segments augment
// the user message and surface as Result.Sources.
func WithRetriever(r *retrieval.Retriever) Option {
	return func(s *Service) {
		s.retriever = r
	}
}

// WithTools sets the tool registry and dispatcher.
func WithTools(registry *tool.Registry, dispatcher *tool.Dispatcher) Option {
	return func(s *Service) {
		s.registry = registry
		s.dispatcher = dispatcher
	}
}

// WithMaxToolTurns bounds sequential tool-requesting turns per session.
func WithMaxToolTurns(n int) Option {
	return func(s *Service) {
		s.maxToolTurns = n
	}
}

// WithMemoryWindow sets how many stored messages are kept when loading
// session memory.
func WithMemoryWindow(n int) Option {
	return func(s *Service) {
		s.memoryWindow = n
	}
}

// NewService creates a service around the given chat model.
func NewService(chat ai.ChatModel, opts ...Option) (*Service, error) {
	if chat == nil {
		return nil, ErrNoChatModel
	}
	s := &Service{
		chat:         chat,
		maxToolTurns: defaultMaxToolTurns,
		memoryWindow: defaultMemoryWindow,
		logger:       slog.Default().With("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result is the outcome of one completed session.
type Result struct {
	// Value is the parsed output: the raw text for text methods, or the
	// value materialized by the method's output schema.
	Value any

	// Text is the model's final reply text before parsing.
	Text string

	// Usage accumulates token usage over every model turn in the session.
	Usage core.TokenUsage

	// Sources are the retrieved segments that augmented the user message,
	// when a retriever was configured.
	Sources []core.SegmentMatch
}

// CallOption configures one invocation.
type CallOption func(*callConfig)

type callConfig struct {
	sessionId string
}

// WithSession binds the invocation to a persistent conversation keyed by
// the given opaque session identifier. Requires a memory store.
func WithSession(sessionId string) CallOption {
	return func(c *callConfig) {
		c.sessionId = sessionId
	}
}

// Invoke runs one synchronous session of the method with the given
// template variables and blocks until it reaches a terminal state.
func (s *Service) Invoke(ctx context.Context, method *Method, vars map[string]any, opts ...CallOption) (*Result, error) {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	sess := newSession(s, method, vars, cfg.sessionId)
	return sess.run(ctx, nil)
}

// Stream prepares a streaming session of the method. The returned stream
// does nothing until Start is called, giving the caller a chance to attach
// token and terminal handlers.
func (s *Service) Stream(ctx context.Context, method *Method, vars map[string]any, opts ...CallOption) *TokenStream {
	cfg := &callConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return newTokenStream(ctx, newSession(s, method, vars, cfg.sessionId))
}

// ForgetSession removes the persisted conversation for a session id.
func (s *Service) ForgetSession(ctx context.Context, sessionId string) error {
	if s.memory == nil {
		return nil
	}
	return s.memory.DeleteMessages(ctx, sessionId)
}
