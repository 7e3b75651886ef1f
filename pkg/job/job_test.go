// SPDX-License-Identifier: Apache-2.0

package job_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/job"
)

func TestExtractionJobSingleShot(t *testing.T) {
	calls := 0
	j := job.NewExtractionJob("extract-schemas", "list schemas", func(ctx context.Context, sink job.ProgressSink) ([]string, error) {
		calls++
		sink.Progress(100, "extract", "done")
		return []string{"HR", "SALES"}, nil
	})

	var lastPercent int
	sink := job.ProgressFunc(func(percent int, stage, detail string) { lastPercent = percent })

	result, err := j.Execute(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"HR", "SALES"}, result)
	assert.Equal(t, 100, lastPercent)
	assert.Equal(t, 1, calls)

	_, err = j.Execute(context.Background(), sink)
	var already job.AlreadyExecutedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, 1, calls)
}

func TestCheckCancelledReportsStage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := job.CheckCancelled(ctx, "write-constraints")
	require.Error(t, err)
}
