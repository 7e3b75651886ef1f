// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/job"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

// applyDDL executes one rendered statement per item against conn, in
// autocommit mode: each CREATE TABLE/TYPE/VIEW/FUNCTION is already atomic
// on its own, so a failed object is recorded in the returned model.Result
// and the rest of the batch still runs, the same continue-past-failures
// policy pkg/constraintwriter applies with savepoints for ALTER TABLE.
func applyDDL[T any](ctx context.Context, conn connector.Connection, stage string, items []T, objectName func(T) string, ddl func(T) (string, error), sink job.ProgressSink) model.Result {
	result := model.Result{}
	for i, item := range items {
		name := objectName(item)
		sql, err := ddl(item)
		if err != nil {
			result = result.AddError(name, err.Error(), "")
			sink.Progress(-1, stage, "skipped "+name+": "+err.Error())
			continue
		}
		if err := conn.Exec(ctx, sql); err != nil {
			result = result.AddError(name, err.Error(), sql)
			sink.Progress(-1, stage, "failed "+name+": "+err.Error())
			continue
		}
		result = result.AddCreated()
		sink.Progress(100*(i+1)/max(1, len(items)), stage, name)
	}
	return result
}
