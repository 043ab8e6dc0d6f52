package tool

import (
	"fmt"

	"github.com/poiesic/servitor/core"
)

var (
	// ErrUnknownTool indicates a tool call referenced a name that was
	// never registered. This is a configuration fault, not a model fault.
	ErrUnknownTool = fmt.Errorf("%w: unknown tool", core.ErrConfig)

	// ErrDuplicateTool indicates two descriptors were registered under
	// the same name.
	ErrDuplicateTool = fmt.Errorf("%w: duplicate tool name", core.ErrConfig)

	// ErrInvalidDescriptor indicates a descriptor is missing its name
	// or handler.
	ErrInvalidDescriptor = fmt.Errorf("%w: invalid tool descriptor", core.ErrConfig)

	// ErrBadArguments indicates the model-supplied argument payload could
	// not be decoded or coerced to the declared parameter types.
	ErrBadArguments = fmt.Errorf("%w: bad tool arguments", core.ErrParse)
)
