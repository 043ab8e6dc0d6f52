package service

import (
	"context"
	"fmt"

	"github.com/poiesic/servitor/ai"
	"github.com/poiesic/servitor/core"
	"github.com/poiesic/servitor/schema"
)

// state identifies one phase of a session's lifecycle.
type state int

const (
	stateRender state = iota + 1
	stateAwaitModel
	stateDispatchTools
	stateParseFinal
	stateDone
	stateFailed
)

// String returns the canonical name of the state.
func (s state) String() string {
	switch s {
	case stateRender:
		return "render"
	case stateAwaitModel:
		return "await_model"
	case stateDispatchTools:
		return "dispatch_tools"
	case stateParseFinal:
		return "parse_final"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// session is one top-level invocation of a method. It owns its
// conversation exclusively and is never reused: DONE and FAILED are
// terminal.
type session struct {
	svc       *Service
	method    *Method
	vars      map[string]any
	sessionId string

	conversation *core.Conversation
	state        state
	usage        core.TokenUsage
	sources      []core.SegmentMatch
	reply        *core.Reply
	toolTurns    int
	result       *Result
	err          error
}

func newSession(svc *Service, method *Method, vars map[string]any, sessionId string) *session {
	return &session{
		svc:       svc,
		method:    method,
		vars:      vars,
		sessionId: sessionId,
		state:     stateRender,
	}
}

// run drives the state machine to a terminal state. A non-nil onToken
// switches model turns to the streaming transport.
func (s *session) run(ctx context.Context, onToken func(string)) (*Result, error) {
	for {
		switch s.state {
		case stateRender:
			s.state = s.render(ctx)
		case stateAwaitModel:
			s.state = s.awaitModel(ctx, onToken)
		case stateDispatchTools:
			s.state = s.dispatchTools(ctx)
		case stateParseFinal:
			s.state = s.parseFinal(ctx)
		case stateDone:
			return s.result, nil
		case stateFailed:
			s.svc.logger.Debug("session failed",
				"method", s.method.name, "err", s.err)
			return nil, s.err
		default:
			return nil, fmt.Errorf("%w: session in unknown state %d", core.ErrConfig, s.state)
		}
	}
}

func (s *session) fail(err error) state {
	s.err = err
	return stateFailed
}

// render builds the initial conversation: system and user templates,
// moderation of the rendered user message, retrieval augmentation,
// output format instruction, and the session's memory window.
func (s *session) render(ctx context.Context) state {
	userText, err := s.method.user.Render(s.vars)
	if err != nil {
		return s.fail(err)
	}

	if s.method.moderated {
		if s.svc.moderator == nil {
			return s.fail(ErrNoModerationModel)
		}
		flagged, err := s.svc.moderator.Moderate(ctx, userText)
		if err != nil {
			return s.fail(err)
		}
		if flagged {
			return s.fail(&core.ModerationError{Text: userText})
		}
	}

	if s.svc.retriever != nil {
		augmented, sources, err := s.svc.retriever.Augment(ctx, userText)
		if err != nil {
			return s.fail(err)
		}
		userText = augmented
		s.sources = sources
	}

	if output := s.method.output; output != nil {
		if instruction := output.Instruction(); instruction != "" {
			userText += "\n" + instruction
		}
	}

	s.conversation = core.NewConversation()
	if s.method.system != nil {
		systemText, err := s.method.system.Render(s.vars)
		if err != nil {
			return s.fail(err)
		}
		s.conversation.Append(core.NewSystemMessage(systemText))
	}

	if s.sessionId != "" && s.svc.memory != nil {
		stored, err := s.svc.memory.Messages(ctx, s.sessionId)
		if err != nil {
			return s.fail(err)
		}
		for _, m := range stored {
			// The method's own system template wins over a stored one.
			if m.Role == core.RoleSystem && s.method.system != nil {
				continue
			}
			s.conversation.Append(m)
		}
	}

	s.conversation.Append(core.NewUserMessage(userText))
	s.conversation.Window(s.svc.memoryWindow)
	return stateAwaitModel
}

// awaitModel submits the conversation to the chat model and routes the
// reply: tool calls loop back through the dispatcher, anything else moves
// to the final parse.
func (s *session) awaitModel(ctx context.Context, onToken func(string)) state {
	req := ai.ChatRequest{Messages: s.conversation.Messages()}
	if s.svc.registry != nil && s.svc.registry.Len() > 0 {
		req.Tools = s.svc.registry.Specs()
	}

	var reply *core.Reply
	var err error
	if onToken != nil {
		reply, err = s.svc.chat.GenerateStream(ctx, req, onToken)
	} else {
		reply, err = s.svc.chat.Generate(ctx, req)
	}
	if err != nil {
		return s.fail(err)
	}
	if err := reply.Validate(); err != nil {
		return s.fail(err)
	}

	s.reply = reply
	s.usage = s.usage.Add(reply.Usage)

	if reply.FinishReason == core.FinishToolCall {
		s.conversation.Append(core.NewToolCallMessage(reply.Text, reply.ToolCalls))
		return stateDispatchTools
	}
	s.conversation.Append(core.NewAIMessage(reply.Text))
	return stateParseFinal
}

// dispatchTools runs the pending tool calls and appends their results in
// the original call order before the next model turn.
func (s *session) dispatchTools(ctx context.Context) state {
	s.toolTurns++
	if s.toolTurns > s.svc.maxToolTurns {
		return s.fail(fmt.Errorf("%w (%d)", ErrMaxToolTurns, s.svc.maxToolTurns))
	}
	if s.svc.dispatcher == nil {
		return s.fail(fmt.Errorf("%w: model requested tools but no dispatcher configured", core.ErrConfig))
	}

	results, err := s.svc.dispatcher.Dispatch(ctx, s.reply.ToolCalls)
	if err != nil {
		return s.fail(err)
	}
	for _, r := range results {
		s.conversation.Append(core.NewToolResultMessage(r.CallId, r.Name, r.Text))
	}
	return stateAwaitModel
}

// parseFinal materializes the declared output from the final reply text
// and persists the session's messages when memory is configured.
func (s *session) parseFinal(ctx context.Context) state {
	text := s.reply.Text

	var value any = text
	if output := s.method.output; output != nil && output.Kind() != schema.KindString {
		parsed, err := output.Parse(text)
		if err != nil {
			return s.fail(err)
		}
		value = parsed
	}

	if s.sessionId != "" && s.svc.memory != nil {
		if err := s.svc.memory.ReplaceMessages(ctx, s.sessionId, s.conversation.Messages()); err != nil {
			return s.fail(err)
		}
	}

	s.result = &Result{
		Value:   value,
		Text:    text,
		Usage:   s.usage,
		Sources: s.sources,
	}
	return stateDone
}
