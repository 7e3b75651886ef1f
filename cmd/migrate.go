// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Sayiza/orapgsync-sub012/cmd/flags"
	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/job"
	"github.com/Sayiza/orapgsync-sub012/pkg/pipeline"
	"github.com/Sayiza/orapgsync-sub012/pkg/store"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate schema objects and code from an Oracle source to a PostgreSQL target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}

	flags.ConnectionFlags(cmd)
	flags.ScopeFlags(cmd)
	return cmd
}

func runMigrate(ctx context.Context) error {
	if flags.SourceDSN() == "" {
		return fmt.Errorf("--source-dsn is required")
	}

	source := connector.SQLConnector{DriverName: "oracle", DSN: flags.SourceDSN()}
	target := connector.SQLConnector{DriverName: "postgres", DSN: flags.TargetDSN()}

	srcConn, err := source.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to source: %w", err)
	}
	defer srcConn.Close()

	tgtConn, err := target.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to target: %w", err)
	}
	defer tgtConn.Close()

	st := store.New(func(key store.Key, err any) {
		pterm.Warning.Printfln("observer for %s/%s panicked or failed: %v", key.Side, key.Kind, err)
	})

	sink := job.ProgressFunc(func(percent int, stage, detail string) {
		if percent < 0 {
			pterm.Info.Printfln("[%s] %s", stage, detail)
			return
		}
		pterm.Success.Printfln("[%s] %d%% %s", stage, percent, detail)
	})

	scope := scopeFromFlags()
	p := pipeline.New(st, stages(srcConn, tgtConn, scope))

	reports, err := p.Run(ctx, sink)
	for _, r := range reports {
		switch {
		case r.Skipped:
			pterm.Warning.Printfln("stage %q skipped", r.Stage)
		case r.Err != nil:
			pterm.Error.Printfln("stage %q: %v", r.Stage, r.Err)
		default:
			pterm.Success.Printfln("stage %q completed", r.Stage)
		}
	}
	return err
}

// scope describes which Oracle schemas a run considers.
type scope struct {
	allSchemas   bool
	onlyTest     string
	excludeNames map[string]bool
}

func scopeFromFlags() scope {
	excl := make(map[string]bool)
	for _, s := range flags.ExcludedSchemas() {
		excl[s] = true
	}
	return scope{allSchemas: flags.AllSchemas(), onlyTest: flags.OnlyTestSchema(), excludeNames: excl}
}

func (s scope) includes(schemaName string) bool {
	if s.excludeNames[schemaName] {
		return false
	}
	if s.allSchemas {
		return true
	}
	return s.onlyTest != "" && s.onlyTest == schemaName
}
