// SPDX-License-Identifier: Apache-2.0

// Package xerrors defines the closed set of error kinds that flow out of
// orapgsync's extraction, write and verification jobs.
package xerrors

import "fmt"

// NotConfigured is returned when a required connector is absent. It is
// fatal to the current job; the pipeline marks the stage failed.
type NotConfigured struct {
	Connector string
}

func (e NotConfigured) Error() string {
	return fmt.Sprintf("connector %q is not configured", e.Connector)
}

// DependencyMissing is returned when prerequisite metadata is absent from
// the state store. The job completes with zero work and a warning.
type DependencyMissing struct {
	Side string
	Kind string
}

func (e DependencyMissing) Error() string {
	return fmt.Sprintf("no %s metadata for %s in state store", e.Kind, e.Side)
}

// ParseError is returned when a source object could not be parsed.
type ParseError struct {
	Object  string
	Line    int
	Column  int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Object, e.Line, e.Column, e.Message)
}

// TranslationError is returned when parsing succeeded but a rewriter
// refused to translate a construct.
type TranslationError struct {
	Object string
	Span   string
	Reason string
}

func (e TranslationError) Error() string {
	return fmt.Sprintf("%s: cannot translate %q: %s", e.Object, e.Span, e.Reason)
}

// DialectUnsupported is returned when a type or construct has no mapping
// between dialects.
type DialectUnsupported struct {
	Object     string
	Construct  string
	Suggestion string
}

func (e DialectUnsupported) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %q has no postgres equivalent; %s", e.Object, e.Construct, e.Suggestion)
	}
	return fmt.Sprintf("%s: %q has no postgres equivalent", e.Object, e.Construct)
}

// DdlExecutionError is returned when the target rejected an emitted
// statement.
type DdlExecutionError struct {
	Object     string
	SQL        string
	DriverText string
}

func (e DdlExecutionError) Error() string {
	return fmt.Sprintf("%s: %s (statement: %s)", e.Object, e.DriverText, e.SQL)
}

// AlreadyExists is returned when the target already has a same-named
// object. Callers classify this as `skipped`, not `error`.
type AlreadyExists struct {
	Object string
}

func (e AlreadyExists) Error() string {
	return fmt.Sprintf("%s already exists", e.Object)
}

// Cancelled is returned when cooperative cancellation interrupts a job.
type Cancelled struct {
	Stage string
}

func (e Cancelled) Error() string {
	return fmt.Sprintf("stage %q cancelled", e.Stage)
}

// Infrastructure is returned for connection loss, statement timeouts and
// state corruption. It bubbles up and aborts the stage.
type Infrastructure struct {
	Reason string
	Err    error
}

func (e Infrastructure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("infrastructure failure: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("infrastructure failure: %s", e.Reason)
}

func (e Infrastructure) Unwrap() error { return e.Err }

// Abortable reports whether err is of a kind that aborts the enclosing
// stage. Every other kind is recorded on the stage's result and processing
// continues to the next object.
func Abortable(err error) bool {
	switch err.(type) {
	case Infrastructure, *Infrastructure:
		return true
	case Cancelled, *Cancelled:
		return true
	default:
		return false
	}
}
