// SPDX-License-Identifier: Apache-2.0

// Package verify inspects the migrated PostgreSQL target's catalogs to
// classify every object as implemented, still a stub, erroring, or
// missing entirely, closing the loop on the migration pipeline's
// stub/implementation scheme (pkg/viewwriter, rewrite.RenderStub).
package verify

import (
	"context"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
)

// Status classifies a single migrated object.
type Status int

const (
	StatusMissing Status = iota
	StatusStub
	StatusImplemented
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusMissing:
		return "missing"
	case StatusStub:
		return "stub"
	case StatusImplemented:
		return "implemented"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Finding is the verification result for one object.
type Finding struct {
	Schema string
	Name   string
	Status Status
	Detail string
}

// Verifier runs catalog queries against a target connection.
type Verifier struct {
	conn connector.Connection
}

func New(conn connector.Connection) *Verifier {
	return &Verifier{conn: conn}
}

// Tables reports, for each expected table, whether it exists in
// pg_class/pg_namespace.
func (v *Verifier) Tables(ctx context.Context, expected []QualifiedName) ([]Finding, error) {
	rows, err := v.conn.Query(ctx, `
		SELECT n.nspname AS schema, c.relname AS name
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind = 'r'`)
	if err != nil {
		return nil, err
	}
	existing := toSet(rows)
	return classifyExistence(expected, existing), nil
}

// Constraints reports, for each expected constraint, whether it exists in
// pg_constraint.
func (v *Verifier) Constraints(ctx context.Context, expected []QualifiedName) ([]Finding, error) {
	rows, err := v.conn.Query(ctx, `
		SELECT n.nspname AS schema, con.conname AS name
		FROM pg_constraint con
		JOIN pg_class c ON c.oid = con.conrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace`)
	if err != nil {
		return nil, err
	}
	existing := toSet(rows)
	return classifyExistence(expected, existing), nil
}

// FKIndexes reports, for each expected index name, whether it exists in
// pg_index/pg_class.
func (v *Verifier) FKIndexes(ctx context.Context, expected []QualifiedName) ([]Finding, error) {
	rows, err := v.conn.Query(ctx, `
		SELECT n.nspname AS schema, c.relname AS name
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		JOIN pg_index i ON i.indexrelid = c.oid
		WHERE c.relkind = 'i'`)
	if err != nil {
		return nil, err
	}
	existing := toSet(rows)
	return classifyExistence(expected, existing), nil
}

// Views reports each expected view's status by reading its definition
// back from information_schema.views and checking for the stub's "WHERE false"
// marker (case-insensitive, since PostgreSQL may reformat the clause).
func (v *Verifier) Views(ctx context.Context, expected []QualifiedName) ([]Finding, error) {
	rows, err := v.conn.Query(ctx, `
		SELECT table_schema AS schema, table_name AS name, view_definition AS definition
		FROM information_schema.views`)
	if err != nil {
		return nil, err
	}

	defs := make(map[string]string, len(rows))
	for _, r := range rows {
		key := stringOf(r["schema"]) + "." + stringOf(r["name"])
		defs[key] = stringOf(r["definition"])
	}

	var findings []Finding
	for _, q := range expected {
		key := q.Schema + "." + q.Name
		def, ok := defs[key]
		if !ok {
			findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusMissing})
			continue
		}
		if strings.Contains(strings.ToUpper(def), "WHERE FALSE") {
			findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusStub})
			continue
		}
		findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusImplemented})
	}
	return findings, nil
}

// Routines reports each expected function/procedure's status, looking at
// pg_proc's source text and flagging the stub body (a bare "RETURN NULL"
// or "RETURN" with no other statement) as StatusStub.
func (v *Verifier) Routines(ctx context.Context, expected []QualifiedName) ([]Finding, error) {
	rows, err := v.conn.Query(ctx, `
		SELECT n.nspname AS schema, p.proname AS name, p.prosrc AS source
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace`)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string, len(rows))
	for _, r := range rows {
		key := stringOf(r["schema"]) + "." + stringOf(r["name"])
		sources[key] = stringOf(r["source"])
	}

	var findings []Finding
	for _, q := range expected {
		key := q.Schema + "." + q.Name
		src, ok := sources[key]
		if !ok {
			findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusMissing})
			continue
		}
		if isStubBody(src) {
			findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusStub})
			continue
		}
		findings = append(findings, Finding{Schema: q.Schema, Name: q.Name, Status: StatusImplemented})
	}
	return findings, nil
}

// isStubBody reports whether a routine body reads like the minimal stub
// rewrite.RenderStub writes: a single RETURN statement and nothing that
// looks like it reads data (no SELECT/FROM).
func isStubBody(src string) bool {
	upper := strings.ToUpper(src)
	if strings.Contains(upper, "SELECT") || strings.Contains(upper, "FROM") {
		return false
	}
	trimmed := strings.TrimSpace(upper)
	return trimmed == "BEGIN\n  RETURN NULL;\nEND;" ||
		trimmed == "BEGIN\n  RETURN;\nEND;" ||
		strings.Count(trimmed, "RETURN") == 1 && strings.Count(trimmed, ";") <= 2
}

// QualifiedName is a schema-qualified object name to check for.
type QualifiedName struct {
	Schema string
	Name   string
}

func classifyExistence(expected []QualifiedName, existing map[string]bool) []Finding {
	findings := make([]Finding, len(expected))
	for i, q := range expected {
		key := q.Schema + "." + q.Name
		if existing[key] {
			findings[i] = Finding{Schema: q.Schema, Name: q.Name, Status: StatusImplemented}
		} else {
			findings[i] = Finding{Schema: q.Schema, Name: q.Name, Status: StatusMissing}
		}
	}
	return findings
}

func toSet(rows []connector.Row) map[string]bool {
	set := make(map[string]bool, len(rows))
	for _, r := range rows {
		set[stringOf(r["schema"])+"."+stringOf(r["name"])] = true
	}
	return set
}

func stringOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return ""
}
