package service

import (
	"fmt"

	"github.com/poiesic/servitor/core"
)

var (
	// ErrNoChatModel indicates the service was built without a chat model.
	ErrNoChatModel = fmt.Errorf("%w: service requires a chat model", core.ErrConfig)

	// ErrNoUserTemplate indicates a method has no user message template.
	ErrNoUserTemplate = fmt.Errorf("%w: method requires a user template", core.ErrConfig)

	// ErrNoModerationModel indicates a method demands moderation but the
	// service has no moderation model.
	ErrNoModerationModel = fmt.Errorf("%w: moderation requested but no moderation model configured", core.ErrConfig)

	// ErrMaxToolTurns indicates the model kept requesting tools past the
	// configured bound, which points at a tool or prompt misconfiguration.
	ErrMaxToolTurns = fmt.Errorf("%w: exceeded maximum sequential tool turns", core.ErrConfig)

	// ErrStreamStarted indicates Start was called twice on one stream.
	ErrStreamStarted = fmt.Errorf("%w: stream already started", core.ErrConfig)
)
