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


// Package servitor assembles storage, model providers and the service
// orchestrator behind a single entry point.
package servitor

import (
	"log/slog"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/ai/openai"
	"github.com/poiesic/servitor/retrieval"
	"github.com/poiesic/servitor/service"
	"github.com/poiesic/servitor/storage"
	"github.com/poiesic/servitor/storage/badger"
)

// Runtime bundles the badger-backed stores and the model provider that
// services are built on.
type Runtime struct {
	backend     *badger.Backend
	memoryStore storage.MemoryStore
	vectorStore storage.VectorStore
	provider    ai.Provider
	logger      *slog.Logger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeOptions)

type runtimeOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the model provider configuration.
func WithAIConfig(config *ai.Config) RuntimeOption {
	return func(o *runtimeOptions) {
		o.aiConfig = config
	}
}

// WithInMemoryStorage keeps all state in memory, for tests and
// ephemeral sessions.
func WithInMemoryStorage() RuntimeOption {
	return func(o *runtimeOptions) {
		o.inMemory = true
	}
}

// NewRuntime opens the storage backend at filePath and connects the
// model provider.
func NewRuntime(filePath string, opts ...RuntimeOption) (*Runtime, error) {
	// Apply options
	options := &runtimeOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Runtime{
		backend:     backend,
		memoryStore: badger.NewMemoryStore(backend),
		vectorStore: badger.NewVectorStore(backend),
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the provider and storage backend.
func (r *Runtime) Close() error {
	if err := r.provider.Close(); err != nil {
		r.logger.Error("error closing AI provider", "err", err)
	}
	if err := r.backend.Close(); err != nil {
		r.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// MemoryStore returns the conversation memory store.
func (r *Runtime) MemoryStore() storage.MemoryStore {
	return r.memoryStore
}

// VectorStore returns the embedding segment store.
func (r *Runtime) VectorStore() storage.VectorStore {
	return r.vectorStore
}

// Provider returns the model provider.
func (r *Runtime) Provider() ai.Provider {
	return r.provider
}

// NewRetriever creates a retriever over the runtime's embedder and
// vector store.
func (r *Runtime) NewRetriever(opts ...retrieval.Option) (*retrieval.Retriever, error) {
	return retrieval.NewRetriever(r.provider.Embedder(), r.vectorStore, opts...)
}

// NewService creates a service around the runtime's chat model, wired to
// the runtime's moderation model and memory store. Additional options are
// applied on top.
func (r *Runtime) NewService(opts ...service.Option) (*service.Service, error) {
	base := []service.Option{
		service.WithModerationModel(r.provider.ModerationModel()),
		service.WithMemoryStore(r.memoryStore),
	}
	return service.NewService(r.provider.ChatModel(), append(base, opts...)...)
}
