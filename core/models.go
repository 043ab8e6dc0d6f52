package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the source of a conversation message.
type Role int

const (
	// RoleSystem represents instructions that frame the whole conversation.
	RoleSystem Role = iota + 1
	// RoleUser represents the human caller.
	RoleUser
	// RoleAI represents the assistant.
	RoleAI
	// RoleTool represents the result of a tool execution.
	RoleTool
)

// String returns the canonical lowercase name of the role.
func (r Role) String() string {
	switch r {
	case RoleSystem:
		return "system"
	case RoleUser:
		return "user"
	case RoleAI:
		return "ai"
	case RoleTool:
		return "tool"
	default:
		return "unknown"
	}
}

// ToolCall is a model-emitted request to invoke a registered tool.
// Arguments is the raw JSON object string produced by the model.
type ToolCall struct {
	Id        string
	Name      string
	Arguments string
}

// ToolResult carries the outcome of executing one ToolCall.
// Text holds either the serialized return value or a failure description.
type ToolResult struct {
	CallId string
	Name   string
	Text   string
}

// Message is a single entry in a Conversation.
// Text, ToolCalls and ToolResult are populated according to the Role:
// tool-call requests ride on AI messages, results on tool messages.
type Message struct {
	Role       Role
	Text       string
	ToolCalls  []ToolCall  // AI messages that request tool execution
	ToolResult *ToolResult // Tool messages
	Timestamp  time.Time   // When the message was created
}

// NewSystemMessage creates a system message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Text: text, Timestamp: time.Now().UTC()}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, Timestamp: time.Now().UTC()}
}

// NewAIMessage creates an assistant message carrying reply text.
func NewAIMessage(text string) Message {
	return Message{Role: RoleAI, Text: text, Timestamp: time.Now().UTC()}
}

// NewToolCallMessage creates an assistant message that requests tool execution.
func NewToolCallMessage(text string, calls []ToolCall) Message {
	return Message{Role: RoleAI, Text: text, ToolCalls: calls, Timestamp: time.Now().UTC()}
}

// NewToolResultMessage creates a tool-result message answering one ToolCall.
func NewToolResultMessage(callId, name, text string) Message {
	return Message{
		Role:       RoleTool,
		ToolResult: &ToolResult{CallId: callId, Name: name, Text: text},
		Timestamp:  time.Now().UTC(),
	}
}

// ToolSpec is the model-facing description of one registered tool:
// its name, natural-language description and a JSON-schema object
// describing the parameters.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FinishReason is the terminal status of one model turn.
type FinishReason int

const (
	// FinishStop indicates the model produced a final answer.
	FinishStop FinishReason = iota + 1
	// FinishToolCall indicates the model requested tool execution.
	FinishToolCall
	// FinishLength indicates the reply was truncated by a token limit.
	FinishLength
	// FinishOther covers vendor-specific terminal statuses.
	FinishOther
)

// String returns the canonical name of the finish reason.
func (f FinishReason) String() string {
	switch f {
	case FinishStop:
		return "stop"
	case FinishToolCall:
		return "tool_call"
	case FinishLength:
		return "length"
	default:
		return "other"
	}
}

// TokenUsage holds token accounting for one or more model turns.
// Total always equals Input + Output; NewTokenUsage and Add keep the
// invariant by construction.
type TokenUsage struct {
	Input  int
	Output int
	Total  int
}

// NewTokenUsage creates a TokenUsage with Total derived from Input and Output.
func NewTokenUsage(input, output int) TokenUsage {
	return TokenUsage{Input: input, Output: output, Total: input + output}
}

// Add combines two usage records into a new one.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return NewTokenUsage(u.Input+other.Input, u.Output+other.Output)
}

// Reply is the outcome of one model turn.
type Reply struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        TokenUsage
}

// Conversation is the ordered, append-only message sequence for one session.
// It is owned exclusively by the orchestrator for the session's lifetime and
// is not safe for concurrent use.
type Conversation struct {
	messages []Message
}

// NewConversation creates a conversation seeded with the given messages.
func NewConversation(messages ...Message) *Conversation {
	c := &Conversation{messages: make([]Message, 0, len(messages)+8)}
	c.messages = append(c.messages, messages...)
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(messages ...Message) {
	c.messages = append(c.messages, messages...)
}

// Messages returns a copy of the message sequence.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Window trims the conversation to the most recent max messages.
// A leading system message is always retained and does not count
// against the window.
func (c *Conversation) Window(max int) {
	if max <= 0 || len(c.messages) <= max {
		return
	}
	if c.messages[0].Role == RoleSystem {
		rest := c.messages[1:]
		if len(rest) > max {
			rest = rest[len(rest)-max:]
		}
		trimmed := make([]Message, 0, len(rest)+1)
		trimmed = append(trimmed, c.messages[0])
		trimmed = append(trimmed, rest...)
		c.messages = trimmed
		return
	}
	c.messages = c.messages[len(c.messages)-max:]
}

// Segment is a text fragment stored in the embedding store together
// with its vector and optional metadata.
type Segment struct {
	Id         ID
	Text       string
	Vector     []float32
	Metadata   map[string]string
	InsertedAt time.Time
}

// SegmentMatch is one ranked result of a similarity search.
// Score is a normalized relevance score in [0,1].
type SegmentMatch struct {
	Segment *Segment
	Score   float32
}

// RelevanceFromCosine maps a cosine similarity in [-1,1] to a
// relevance score in [0,1].
func RelevanceFromCosine(cosine float32) float32 {
	return (1 + cosine) / 2
}

// CosineFromRelevance is the inverse of RelevanceFromCosine.
func CosineFromRelevance(relevance float32) float32 {
	return 2*relevance - 1
}
