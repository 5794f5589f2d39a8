package errors

import (
	"fmt"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SpecError captures structural problems in a pipeline spec: missing
// component references, conflicting keys, steps declared out of order.
// Step names the offending step or role ("source", "sink", "step[2]", ...).
type SpecError struct {
	Step    string
	Message string
}

// NewSpecError constructs a SpecError for the named step or role.
func NewSpecError(step, message string) error {
	return &SpecError{Step: step, Message: message}
}

func (e *SpecError) Error() string {
	if e == nil {
		return ""
	}
	if e.Step != "" {
		return fmt.Sprintf("spec error: %s: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("spec error: %s", e.Message)
}

// ModuleNotFoundError is returned when a component reference names a module
// path that no loaded package has registered.
type ModuleNotFoundError struct {
	Module string
}

func (e *ModuleNotFoundError) Error() string {
	if e.Module == "" {
		return "module not found: reference has no module path"
	}
	return fmt.Sprintf("module not found: no components registered under %q", e.Module)
}

// AttributeNotFoundError is returned when the module path of a component
// reference is registered but the trailing name is not.
type AttributeNotFoundError struct {
	Module    string
	Attribute string
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("attribute not found: module %q has no component %q", e.Module, e.Attribute)
}

// PluginNotFoundError is returned when an "ep:" reference names an entry
// point that no installed plugin has registered under the group.
type PluginNotFoundError struct {
	Group string
	Name  string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin not registered: no %q entry point named %q", e.Group, e.Name)
}

// OrderingError reports a steps-mode step that required a record stream
// before any source produced one.
type OrderingError struct {
	Step    string
	Message string
}

// NewOrderingError constructs an OrderingError for the named step.
func NewOrderingError(step, message string) error {
	return &OrderingError{Step: step, Message: message}
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("step ordering error: %s: %s", e.Step, e.Message)
}

// StateCorruptError reports an unparsable state backing file. It is only
// returned when the state backend is configured to fail on corruption;
// the default behaviour starts from an empty map.
type StateCorruptError struct {
	Path string
	Err  error
}

func (e *StateCorruptError) Error() string {
	return fmt.Sprintf("state file corrupt: %s: %v", e.Path, e.Err)
}

// Unwrap exposes the deserialization error.
func (e *StateCorruptError) Unwrap() error {
	return e.Err
}
