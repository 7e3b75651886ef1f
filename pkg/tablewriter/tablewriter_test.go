// SPDX-License-Identifier: Apache-2.0

package tablewriter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/model"
	"github.com/Sayiza/orapgsync-sub012/pkg/tablewriter"
)

func TestTableDDLRendersColumns(t *testing.T) {
	cols := []model.ColumnMetadata{
		model.NewColumn("id", "NUMBER", model.WithPrecision(10), model.WithNullable(false)),
		model.NewColumn("name", "VARCHAR2", model.WithCharLength(50), model.WithNullable(true)),
	}
	table := model.NewTable("hr", "employees", cols, nil, "")

	ddl, err := tablewriter.TableDDL(table, nil)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE hr.employees (id numeric(10) NOT NULL, name varchar(50))", ddl)
}

func TestObjectTypeDDLRendersAttributes(t *testing.T) {
	attrs := []model.TypeAttribute{
		{Name: "street", Type: "VARCHAR2(100)"},
		{Name: "zip", Type: "NUMBER(5)"},
	}
	typ := model.NewObjectDataType("hr", "address_t", attrs)

	ddl, err := tablewriter.ObjectTypeDDL(typ, nil)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TYPE hr.address_t AS (street varchar(100), zip numeric(5))", ddl)
}
