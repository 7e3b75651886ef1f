// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Sayiza/orapgsync-sub012/cmd/flags"
	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/verify"
)

// verifyCmd reports each migrated object's status (implemented, stub,
// missing) against the target catalog alone, without touching the Oracle
// source or re-running extraction. It exists for operators re-checking a
// target database days after a migrate run, once the store's in-process
// state from that run is long gone.
func verifyCmd() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Report the implementation status of every object already present on the PostgreSQL target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), schema)
		},
	}

	flags.ConnectionFlags(cmd)
	cmd.Flags().StringVar(&schema, "schema", "", "limit verification to a single target schema (default: every schema pg_namespace reports)")
	return cmd
}

func runVerify(ctx context.Context, schema string) error {
	target := connector.SQLConnector{DriverName: "postgres", DSN: flags.TargetDSN()}
	conn, err := target.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to target: %w", err)
	}
	defer conn.Close()

	v := verify.New(conn)

	tables, err := catalogTables(ctx, conn, schema)
	if err != nil {
		return fmt.Errorf("list target tables: %w", err)
	}
	views, err := catalogViews(ctx, conn, schema)
	if err != nil {
		return fmt.Errorf("list target views: %w", err)
	}
	routines, err := catalogRoutines(ctx, conn, schema)
	if err != nil {
		return fmt.Errorf("list target routines: %w", err)
	}

	findings, err := collectFindings(ctx, v, tables, views, routines)
	if err != nil {
		return err
	}

	printFindings(findings)
	return nil
}

func catalogTables(ctx context.Context, conn connector.Connection, schema string) ([]verify.QualifiedName, error) {
	return catalogNames(ctx, conn, schema, `
		SELECT n.nspname AS schema, c.relname AS name
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'`)
}

func catalogViews(ctx context.Context, conn connector.Connection, schema string) ([]verify.QualifiedName, error) {
	return catalogNames(ctx, conn, schema, `
		SELECT table_schema AS schema, table_name AS name
		FROM information_schema.views`)
}

func catalogRoutines(ctx context.Context, conn connector.Connection, schema string) ([]verify.QualifiedName, error) {
	return catalogNames(ctx, conn, schema, `
		SELECT n.nspname AS schema, p.proname AS name
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace`)
}

func catalogNames(ctx context.Context, conn connector.Connection, schema, query string) ([]verify.QualifiedName, error) {
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	names := make([]verify.QualifiedName, 0, len(rows))
	for _, row := range rows {
		q := verify.QualifiedName{Schema: sqlString(row["schema"]), Name: sqlString(row["name"])}
		if schema != "" && q.Schema != schema {
			continue
		}
		names = append(names, q)
	}
	return names, nil
}

func printFindings(findings []verify.Finding) {
	for _, f := range findings {
		switch f.Status {
		case verify.StatusImplemented:
			pterm.Success.Printfln("%s.%s: %s", f.Schema, f.Name, f.Status)
		case verify.StatusStub:
			pterm.Warning.Printfln("%s.%s: %s", f.Schema, f.Name, f.Status)
		default:
			pterm.Error.Printfln("%s.%s: %s", f.Schema, f.Name, f.Status)
		}
	}
	pterm.Info.Printfln("%s", summarizeFindings(findings))
}
