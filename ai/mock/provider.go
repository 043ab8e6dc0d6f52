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


package mock

import "github.com/poiesic/servitor/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock chat, moderation and embedder instances.
type MockProvider struct {
	chat      *MockChatModel
	moderator *MockModerationModel
	embedder  *MockEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockChatModel()/GetMockModerationModel()/GetMockEmbedder() to access
// concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		chat:      NewMockChatModel(),
		moderator: NewMockModerationModel(),
		embedder:  NewMockEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(chat *MockChatModel, moderator *MockModerationModel, embedder *MockEmbedder) ai.Provider {
	return &MockProvider{
		chat:      chat,
		moderator: moderator,
		embedder:  embedder,
	}
}

// ChatModel returns the mock chat model.
func (p *MockProvider) ChatModel() ai.ChatModel {
	return p.chat
}

// ModerationModel returns the mock moderation model.
func (p *MockProvider) ModerationModel() ai.ModerationModel {
	return p.moderator
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockChatModel returns the underlying mock chat model for test assertions.
func (p *MockProvider) GetMockChatModel() *MockChatModel {
	return p.chat
}

// GetMockModerationModel returns the underlying mock moderation model for test assertions.
func (p *MockProvider) GetMockModerationModel() *MockModerationModel {
	return p.moderator
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}
