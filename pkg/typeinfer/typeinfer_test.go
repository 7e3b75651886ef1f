// SPDX-License-Identifier: Apache-2.0

package typeinfer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/dialect"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
	"github.com/Sayiza/orapgsync-sub012/pkg/typeinfer"
)

type fakeCatalog map[string]string

func (f fakeCatalog) ColumnType(schema, table, column string) (string, bool) {
	t, ok := f[schema+"."+table+"."+column]
	return t, ok
}

func TestInferColumnAndArithmetic(t *testing.T) {
	catalog := fakeCatalog{
		"hr.employees.hire_date": "DATE",
		"hr.employees.salary":    "NUMBER(10,2)",
	}

	p := oraparse.NewParser()
	stmt, err := p.ParseSelect("SELECT hire_date + 30, salary * 1.1 FROM hr.employees e")
	require.NoError(t, err)

	result := typeinfer.Infer(stmt, catalog)

	assert.Equal(t, dialect.Date, result.TypeOf(stmt.Columns[0].Expr).Category)
	assert.Equal(t, dialect.Numeric, result.TypeOf(stmt.Columns[1].Expr).Category)
}

func TestInferNvlPassthrough(t *testing.T) {
	catalog := fakeCatalog{"hr.employees.bonus": "NUMBER"}
	p := oraparse.NewParser()
	stmt, err := p.ParseSelect("SELECT NVL(bonus, 0) FROM hr.employees")
	require.NoError(t, err)

	result := typeinfer.Infer(stmt, catalog)
	assert.Equal(t, dialect.Numeric, result.TypeOf(stmt.Columns[0].Expr).Category)
}

func TestInferComparisonIsBoolean(t *testing.T) {
	p := oraparse.NewParser()
	stmt, err := p.ParseSelect("SELECT 1 FROM dual WHERE 1 = 1")
	require.NoError(t, err)

	result := typeinfer.Infer(stmt, catalog())
	assert.Equal(t, dialect.Boolean, result.TypeOf(stmt.Where).Category)
}

func catalog() fakeCatalog { return fakeCatalog{} }
