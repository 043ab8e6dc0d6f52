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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/servitor/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const moderationSystemPrompt = `You are a content policy classifier. Decide whether the given text
violates content policy: threats of violence, harassment, hate speech, sexual content involving
minors, or instructions for serious harm.

Output ONLY valid JSON of the form {"flagged": true} or {"flagged": false}. Do not include any
preamble, explanation, greeting, or acknowledgment. Start your response directly with the opening
brace { and end with the closing brace }.`

// ModerationModel implements ai.ModerationModel by asking an
// OpenAI-compatible chat model to classify the text.
type ModerationModel struct {
	client llms.Model
	logger *slog.Logger
}

// verdict is an internal type used for JSON unmarshaling.
type verdict struct {
	Flagged bool `json:"flagged"`
}

// newModerationModel is an internal constructor that returns the concrete type.
func newModerationModel(config *ai.Config) (*ModerationModel, error) {
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

	return &ModerationModel{
		client: client,
		logger: slog.Default().With("component", "openai-moderation"),
	}, nil
}

// NewModerationModel creates a new moderation model using the provided configuration.
//
// Returns ai.ModerationModel interface to enforce abstraction.
func NewModerationModel(config *ai.Config) (ai.ModerationModel, error) {
	return newModerationModel(config)
}

// Moderate classifies text and returns true when it is flagged.
func (m *ModerationModel) Moderate(ctx context.Context, text string) (bool, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(moderationSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result verdict
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			m.logger.Error("failed to generate verdict", "attempt", attempt+1, "err", err)
			return false, err
		}
		if len(response.Choices) < 1 {
			m.logger.Debug("no choices returned from model")
			return false, nil
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response.Choices[0].Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			m.logger.Warn("error parsing moderation verdict",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		m.logger.Error("failed to parse moderation verdict after retries", "err", lastErr)
		return false, lastErr
	}
	return result.Flagged, nil
}
