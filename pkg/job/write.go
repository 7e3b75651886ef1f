// SPDX-License-Identifier: Apache-2.0

package job

import "context"

// WriteFunc is the work a WriteJob performs: apply DDL/DML against the
// target connector and produce a typed result (typically a
// pkg/model.Result).
type WriteFunc[R any] func(ctx context.Context, sink ProgressSink) (R, error)

// WriteJob is the concrete Job kind every target-side stage (object type
// creation, table creation, constraint application, view/routine stubs
// and implementations) is built from.
type WriteJob[R any] struct {
	Base
	fn WriteFunc[R]
}

// NewWriteJob constructs a single-shot write job.
func NewWriteJob[R any](id, description string, fn WriteFunc[R]) *WriteJob[R] {
	return &WriteJob[R]{Base: NewBase(id, KindWrite, description), fn: fn}
}

func (j *WriteJob[R]) Execute(ctx context.Context, sink ProgressSink) (R, error) {
	return Run(ctx, runnerFunc[R](j.fn), &j.Base, sink)
}
