// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/job"
	"github.com/Sayiza/orapgsync-sub012/pkg/pipeline"
	"github.com/Sayiza/orapgsync-sub012/pkg/store"
	"github.com/Sayiza/orapgsync-sub012/pkg/xerrors"
)

func noopSink() job.ProgressSink {
	return job.ProgressFunc(func(percent int, stage, detail string) {})
}

func TestRunSkipsStageWithMissingInput(t *testing.T) {
	st := store.New(nil)
	ran := false

	stages := []pipeline.Stage{
		{
			Name:     "write-tables",
			Requires: []store.Kind{store.KindTables},
			Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
				ran = true
				return nil
			},
		},
	}

	p := pipeline.New(st, stages)
	reports, err := p.Run(context.Background(), noopSink())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Skipped)
	assert.False(t, ran)
}

func TestRunAbortsOnInfrastructureError(t *testing.T) {
	st := store.New(nil)
	st.Put(store.Key{Side: store.Source, Kind: store.KindSchemas}, []string{"HR"})

	secondRan := false
	stages := []pipeline.Stage{
		{
			Name:     "extract-schemas",
			Requires: []store.Kind{store.KindSchemas},
			Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
				return xerrors.Infrastructure{Reason: "connection lost"}
			},
		},
		{
			Name: "extract-tables",
			Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
				secondRan = true
				return nil
			},
		},
	}

	p := pipeline.New(st, stages)
	reports, err := p.Run(context.Background(), noopSink())
	require.Error(t, err)
	require.Len(t, reports, 1)
	assert.False(t, secondRan)
}

func TestRunContinuesPastNonAbortingError(t *testing.T) {
	st := store.New(nil)

	secondRan := false
	stages := []pipeline.Stage{
		{
			Name: "write-views",
			Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
				return xerrors.DdlExecutionError{Object: "v1", SQL: "CREATE VIEW v1 ...", DriverText: "syntax error"}
			},
		},
		{
			Name: "verify",
			Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
				secondRan = true
				return nil
			},
		},
	}

	p := pipeline.New(st, stages)
	_, err := p.Run(context.Background(), noopSink())
	require.NoError(t, err)
	assert.True(t, secondRan)
}
