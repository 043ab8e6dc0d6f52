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

// Validate checks the structural invariants of a message.
func (m *Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if m.Text == "" {
			return ErrEmptyMessage
		}
	case RoleAI:
		if m.Text == "" && len(m.ToolCalls) == 0 {
			return ErrEmptyMessage
		}
	case RoleTool:
		if m.ToolResult == nil {
			return ErrEmptyMessage
		}
	default:
		return ErrInvalidRole
	}
	return nil
}

// Validate checks the token accounting invariant. A failure here is a
// defect in the reporting model adapter, not a condition to handle.
func (u TokenUsage) Validate() error {
	if u.Total != u.Input+u.Output {
		return ErrTokenUsage
	}
	return nil
}

// Validate checks the structural invariants of a model reply: a reply
// whose finish reason signals tool calls must carry at least one, and
// its usage accounting must balance.
func (r *Reply) Validate() error {
	if r.FinishReason == FinishToolCall && len(r.ToolCalls) == 0 {
		return ErrToolCallsMissing
	}
	return r.Usage.Validate()
}
