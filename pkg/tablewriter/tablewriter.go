// SPDX-License-Identifier: Apache-2.0

// Package tablewriter renders the CREATE TABLE and CREATE TYPE statements
// that bring a table's (or composite object type's) shape across to the
// PostgreSQL target, ahead of the later constraint and view/routine
// writers that depend on the tables already existing.
package tablewriter

import (
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/dialect"
	"github.com/Sayiza/orapgsync-sub012/pkg/ident"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

// TableDDL renders "CREATE TABLE schema.name (...)" for t, mapping each
// column's Oracle base type through dialect.OracleToPG. Constraints are
// deliberately left for pkg/constraintwriter: adding them here would
// recreate the ordering problem that package's dependency graph exists to
// solve.
func TableDDL(t model.TableMetadata, knownType dialect.KnownTypeChecker) (string, error) {
	cols := make([]string, len(t.Columns()))
	for i, c := range t.Columns() {
		pgType, err := dialect.OracleToPG(oracleDecl(c), knownType)
		if err != nil {
			return "", fmt.Errorf("column %s.%s: %w", t.QualifiedName(), c.Name(), err)
		}

		col := fmt.Sprintf("%s %s", ident.Normalize(c.Name()), pgType)
		if !c.Nullable() {
			col += " NOT NULL"
		}
		if c.Default() != "" {
			col += " DEFAULT " + c.Default()
		}
		cols[i] = col
	}

	storage := ""
	if t.Storage() != "" {
		storage = " " + t.Storage()
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)%s", qualify(t.Schema(), t.Name()), strings.Join(cols, ", "), storage), nil
}

// ObjectTypeDDL renders "CREATE TYPE schema.name AS (...)" for a composite
// Oracle object type.
func ObjectTypeDDL(o model.ObjectDataType, knownType dialect.KnownTypeChecker) (string, error) {
	attrs := make([]string, len(o.Attributes()))
	for i, a := range o.Attributes() {
		pgType, err := dialect.OracleToPG(a.Type, knownType)
		if err != nil {
			return "", fmt.Errorf("attribute %s.%s.%s: %w", o.Schema(), o.Name(), a.Name, err)
		}
		attrs[i] = fmt.Sprintf("%s %s", ident.Normalize(a.Name), pgType)
	}
	return fmt.Sprintf("CREATE TYPE %s AS (%s)", qualify(o.Schema(), o.Name()), strings.Join(attrs, ", ")), nil
}

// oracleDecl reconstructs the declaration string dialect.OracleToPG expects
// from a column's separately-stored length/precision/scale fields.
func oracleDecl(c model.ColumnMetadata) string {
	if c.IsUserType() {
		return c.TypeOwner() + "." + c.BaseType()
	}
	if c.CharLength() > 0 {
		return fmt.Sprintf("%s(%d)", c.BaseType(), c.CharLength())
	}
	if c.Precision() > 0 {
		if scale, ok := c.Scale(); ok {
			return fmt.Sprintf("%s(%d,%d)", c.BaseType(), c.Precision(), scale)
		}
		return fmt.Sprintf("%s(%d)", c.BaseType(), c.Precision())
	}
	return c.BaseType()
}

func qualify(schema, name string) string {
	return ident.Normalize(schema) + "." + ident.Normalize(name)
}
