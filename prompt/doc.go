// Package prompt provides named-placeholder templates for model messages.
//
// A template is an immutable string with {{name}} placeholders, loaded
// inline or from an external resource. Rendering binds a variable map and
// substitutes every placeholder; a placeholder without a value, a missing
// resource, or an empty template is a configuration error surfaced before
// any model call.
package prompt
