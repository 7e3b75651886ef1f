// SPDX-License-Identifier: Apache-2.0

// Package connector defines the narrow interfaces extraction and write
// jobs use to reach the source (Oracle) and target (PostgreSQL) databases,
// plus a generic database/sql-backed implementation usable for either
// side. This package imports no driver itself; driver registration is left
// to the importing package (the cmd package blank-imports lib/pq and
// go-ora).
package connector

import (
	"context"
	"database/sql"
)

// Row is a single result row, column name to driver value.
type Row map[string]any

// Connection is a live database handle capable of running read queries
// and, for the target side, DDL/DML statements inside an explicit
// transaction.
type Connection interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Exec(ctx context.Context, query string, args ...any) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is an open transaction, used by write jobs so that one savepoint can
// back out a single failed object without aborting the whole stage.
type Tx interface {
	Exec(ctx context.Context, query string, args ...any) error
	Savepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error
	Commit() error
	Rollback() error
}

// SourceConnector opens a connection to the Oracle source database.
type SourceConnector interface {
	Connect(ctx context.Context) (Connection, error)
}

// TargetConnector opens a connection to the PostgreSQL target database.
type TargetConnector interface {
	Connect(ctx context.Context) (Connection, error)
}

// SQLConnector is a generic database/sql-backed Connection/SourceConnector/
// TargetConnector. It is driver-agnostic: the caller supplies the driver
// name and DSN, and must have already imported the matching driver package
// for its side effect of registering with database/sql (lib/pq for
// PostgreSQL; an Oracle driver such as go-ora, which the cmd package
// registers, for the source side).
type SQLConnector struct {
	DriverName string
	DSN        string
}

func (c SQLConnector) Connect(ctx context.Context) (Connection, error) {
	db, err := sql.Open(c.DriverName, c.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &sqlConnection{db: db}, nil
}

type sqlConnection struct {
	db *sql.DB
}

func (c *sqlConnection) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (c *sqlConnection) Exec(ctx context.Context, query string, args ...any) error {
	_, err := c.db.ExecContext(ctx, query, args...)
	return err
}

func (c *sqlConnection) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

func (c *sqlConnection) Close() error { return c.db.Close() }

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) error {
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) Savepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

func (t *sqlTx) RollbackTo(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }
