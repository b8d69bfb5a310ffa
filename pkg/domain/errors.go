package domain

import (
	"errors"
	"fmt"
)

// ErrLayoutNotFound is returned when yield or contentFor is evaluated outside
// of any rendered layout.
var ErrLayoutNotFound = errors.New("arbor: couldn't find a Layout component in the rendered component tree")

// ErrAlreadyRendered is returned when a controller is rendered twice.
var ErrAlreadyRendered = errors.New("arbor: layout already rendered")

// ErrDestroyed is returned when a destroyed controller is rendered again.
var ErrDestroyed = errors.New("arbor: layout destroyed")

// ErrFlushInProgress is returned when Flush is called from inside a flush.
var ErrFlushInProgress = errors.New("arbor: flush already in progress")

// ErrFlushLimit is returned when a flush keeps re-invalidating computations.
var ErrFlushLimit = errors.New("arbor: flush exceeded the rerun limit")

// ErrHelperNotFound is returned when a helper name resolves nowhere.
var ErrHelperNotFound = errors.New("arbor: helper not found")

// ErrDocumentNotFound is returned by template loaders for unknown names.
var ErrDocumentNotFound = errors.New("template document not found")

// ErrSnapshotNotFound is returned when a snapshot ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ArgumentError reports a required name that the caller omitted.
type ArgumentError struct {
	Op  string
	Arg string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("arbor: %s requires a %s argument", e.Op, e.Arg)
}

// TemplateNotFoundError reports a name that no lookup scope could resolve.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("arbor: sorry, couldn't find a template named %s. Are you sure you defined it?", e.Name)
}

// TemplateCompileError reports a template that exists but could not be
// compiled.
type TemplateCompileError struct {
	Name string
	Err  error
}

func (e *TemplateCompileError) Error() string {
	return fmt.Sprintf("arbor: template %s failed to compile: %v", e.Name, e.Err)
}

func (e *TemplateCompileError) Unwrap() error { return e.Err }

// UnrenderedStateError reports a facade call made before any layout was rendered.
type UnrenderedStateError struct {
	Method string
}

func (e *UnrenderedStateError) Error() string {
	return fmt.Sprintf("arbor: %s called before a layout was rendered", e.Method)
}

// IsTemplateNotFound reports whether err carries a TemplateNotFoundError.
func IsTemplateNotFound(err error) bool {
	var tnf *TemplateNotFoundError
	return errors.As(err, &tnf)
}
