package schema

import (
	"fmt"

	"github.com/poiesic/servitor/core"
)

// Construction failures are configuration errors; decoding failures are
// parse errors. The two classes are distinct members of the core taxonomy.
var (
	// ErrNoConstants indicates an enum declared without constants.
	ErrNoConstants = fmt.Errorf("%w: enum requires at least one constant", core.ErrConfig)

	// ErrNoFields indicates an object declared without fields.
	ErrNoFields = fmt.Errorf("%w: object requires at least one field", core.ErrConfig)

	// ErrDuplicateField indicates two object fields sharing a name.
	ErrDuplicateField = fmt.Errorf("%w: duplicate object field", core.ErrConfig)

	// ErrUnknownConstant indicates a reply that matches no enum constant.
	ErrUnknownConstant = fmt.Errorf("%w: reply matches no enum constant", core.ErrParse)

	// ErrMalformedJSON indicates a reply whose JSON payload cannot be decoded.
	ErrMalformedJSON = fmt.Errorf("%w: malformed JSON in reply", core.ErrParse)

	// ErrFieldType indicates a JSON field whose value does not match the
	// declared field type.
	ErrFieldType = fmt.Errorf("%w: field value does not match declared type", core.ErrParse)

	// ErrBadValue indicates a scalar reply that cannot be decoded.
	ErrBadValue = fmt.Errorf("%w: reply is not a valid value", core.ErrParse)
)
