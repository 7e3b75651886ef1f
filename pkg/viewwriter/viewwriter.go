// SPDX-License-Identifier: Apache-2.0

// Package viewwriter synthesizes the two DDL statements a view migrates
// through: an empty typed stub created early so other objects that
// reference it can be created before its real definition is ready, and a
// CREATE OR REPLACE implementation that casts the transpiled SELECT's
// columns to the stub's declared types by position, since the transpiled
// query's own inferred column types do not always match Oracle's
// (extraction-time) declared column types exactly.
package viewwriter

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/ident"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

// StubDDL renders an empty, typed view: "SELECT NULL::type0 AS col0, ...
// WHERE false", so the view exists with the right column set and types before
// its real query can be attached.
func StubDDL(v model.ViewMetadata) string {
	name := qualify(v.Schema(), v.Name())
	parts := make([]string, len(v.Columns()))
	for i, c := range v.Columns() {
		parts[i] = fmt.Sprintf("NULL::%s AS %s", c.Type, ident.Normalize(c.Name))
	}
	return fmt.Sprintf("CREATE VIEW %s AS SELECT %s WHERE false", name, strings.Join(parts, ", "))
}

// ImplementationDDL renders the "CREATE OR REPLACE VIEW" that attaches the
// transpiled query, casting each projected column to the view's declared
// type by position so the replaced view's column types never silently
// drift from what dependents were built against.
func ImplementationDDL(v model.ViewMetadata, transpiledSelect string) string {
	name := qualify(v.Schema(), v.Name())

	subAliases := make([]string, len(v.Columns()))
	projected := make([]string, len(v.Columns()))
	for i, c := range v.Columns() {
		colAlias := fmt.Sprintf("c%d", i)
		subAliases[i] = colAlias
		projected[i] = fmt.Sprintf("%s::%s AS %s", colAlias, c.Type, ident.Normalize(c.Name))
	}

	return fmt.Sprintf(
		"CREATE OR REPLACE VIEW %s AS SELECT %s FROM (%s) AS subq(%s)",
		name,
		strings.Join(projected, ", "),
		transpiledSelect,
		strings.Join(subAliases, ", "),
	)
}

func qualify(schema, name string) string {
	return ident.Normalize(schema) + "." + ident.Normalize(name)
}
