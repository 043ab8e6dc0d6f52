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


package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Configuration errors are fatal and raised before any
// model call; parse errors and moderation violations are fatal to the
// session that produced them; tool execution failures are recoverable
// and never surface as errors (they become tool-result messages).
var (
	// ErrConfig indicates an invalid or incomplete configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrParse indicates the model's final reply could not be decoded
	// into the declared output schema.
	ErrParse = errors.New("cannot parse model reply")

	// ErrModeration indicates a moderation model flagged the input.
	ErrModeration = errors.New("content policy violation")

	// ErrTokenUsage indicates token accounting where total != input + output.
	// This is an invariant violation, not a runtime condition.
	ErrTokenUsage = errors.New("token usage total does not equal input + output")

	// ErrEmptyMessage indicates a message with no content.
	ErrEmptyMessage = errors.New("message content cannot be empty")

	// ErrInvalidRole indicates an unknown Role value.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrToolCallsMissing indicates a reply that reports a tool-call
	// finish reason without carrying any tool calls.
	ErrToolCallsMissing = errors.New("tool-call reply carries no tool calls")
)

// ModerationError reports that input text violates content policy.
// It carries the offending text for diagnostics.
type ModerationError struct {
	Text string
}

// Error implements the error interface.
func (e *ModerationError) Error() string {
	return fmt.Sprintf("text %q violates content policy", e.Text)
}

// Unwrap makes the error match ErrModeration via errors.Is.
func (e *ModerationError) Unwrap() error {
	return ErrModeration
}
