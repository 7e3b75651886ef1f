// SPDX-License-Identifier: Apache-2.0

// Package job defines the cooperative, single-shot unit of work every
// extraction and write stage runs as: a typed Job reporting progress
// through a ProgressSink and honoring context cancellation at the
// checkpoints it chooses to poll.
package job

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sayiza/orapgsync-sub012/pkg/xerrors"
)

// ProgressSink receives progress updates from a running Job. Percent is
// either in [0,100] or -1 for an update that carries no completion
// percentage: callers send -1 with per-object failures, warnings and
// summary lines. Implementations must be safe
// to call from the goroutine Execute runs on; they are never called
// concurrently with each other for a single Job.
type ProgressSink interface {
	Progress(percent int, stage, detail string)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(percent int, stage, detail string)

func (f ProgressFunc) Progress(percent int, stage, detail string) { f(percent, stage, detail) }

// Kind classifies what a Job does, matching spec.md §4.9's two base job
// kinds.
type Kind int

const (
	KindExtraction Kind = iota
	KindWrite
)

// Job is the generic unit of work a pipeline stage runs. T is the result
// type the job produces on success.
type Job[T any] interface {
	ID() string
	Kind() Kind
	Description() string
	Execute(ctx context.Context, sink ProgressSink) (T, error)
}

// AlreadyExecutedError is returned by Run when a Job instance is reused;
// each Job value is single-shot by design, since extraction jobs often
// hold a live cursor that cannot be rewound.
type AlreadyExecutedError struct{ ID string }

func (e AlreadyExecutedError) Error() string {
	return fmt.Sprintf("job %s has already been executed", e.ID)
}

// Base provides the single-shot execution guard and cancellation
// checkpoint helper that concrete ExtractionJob/WriteJob implementations
// embed, mirroring how the teacher's migration Operation lifecycle is
// driven from a small shared base rather than duplicated per operation.
type Base struct {
	id          string
	kind        Kind
	description string

	mu  sync.Mutex
	ran bool
}

// NewBase constructs the shared bookkeeping for a Job implementation.
func NewBase(id string, kind Kind, description string) Base {
	return Base{id: id, kind: kind, description: description}
}

func (b *Base) ID() string          { return b.id }
func (b *Base) Kind() Kind          { return b.kind }
func (b *Base) Description() string { return b.description }

// MarkStarted enforces the single-shot rule: the first call succeeds,
// every subsequent call returns AlreadyExecutedError.
func (b *Base) MarkStarted() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ran {
		return AlreadyExecutedError{ID: b.id}
	}
	b.ran = true
	return nil
}

// CheckCancelled is the cooperative cancellation checkpoint a Job calls
// between units of work (rows, objects, statements). It returns a
// xerrors.Cancelled error wrapping the job's current stage name when the
// context has been cancelled.
func CheckCancelled(ctx context.Context, stage string) error {
	select {
	case <-ctx.Done():
		return xerrors.Cancelled{Stage: stage}
	default:
		return nil
	}
}

// Run wraps a Job's Execute call with the single-shot guard, so callers
// never need to remember to call MarkStarted themselves.
func Run[T any](ctx context.Context, j Job[T], base *Base, sink ProgressSink) (T, error) {
	var zero T
	if err := base.MarkStarted(); err != nil {
		return zero, err
	}
	return j.Execute(ctx, sink)
}
