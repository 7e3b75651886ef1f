// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

// tableCatalog answers pkg/typeinfer's ColumnCatalog interface from the
// tables a migration run already extracted. View SQL is type-inferred
// against the base tables it selects from. A lookup with no schema, or
// whose qualified name is not indexed, falls back to the unqualified-name
// index below, which is unambiguous as long as no two extracted tables
// share a bare name across schemas. Only tables are indexed: columns read
// from another view resolve to no type.
type tableCatalog struct {
	byQualified map[string]map[string]string
	byName      map[string]map[string]string
}

func newTableCatalog(tables []model.TableMetadata) tableCatalog {
	c := tableCatalog{
		byQualified: make(map[string]map[string]string),
		byName:      make(map[string]map[string]string),
	}
	for _, t := range tables {
		cols := make(map[string]string, len(t.Columns()))
		for _, col := range t.Columns() {
			cols[strings.ToLower(col.Name())] = col.BaseType()
		}
		c.byQualified[strings.ToLower(t.Schema())+"."+strings.ToLower(t.Name())] = cols
		c.byName[strings.ToLower(t.Name())] = cols
	}
	return c
}

func (c tableCatalog) ColumnType(schema, table, column string) (string, bool) {
	column = strings.ToLower(column)
	if schema != "" {
		if cols, ok := c.byQualified[strings.ToLower(schema)+"."+strings.ToLower(table)]; ok {
			t, ok := cols[column]
			return t, ok
		}
	}
	cols, ok := c.byName[strings.ToLower(table)]
	if !ok {
		return "", false
	}
	t, ok := cols[column]
	return t, ok
}
