// SPDX-License-Identifier: Apache-2.0

package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
	"github.com/Sayiza/orapgsync-sub012/pkg/rewrite"
	"github.com/Sayiza/orapgsync-sub012/pkg/typeinfer"
)

func render(t *testing.T, sql string) string {
	t.Helper()
	p := oraparse.NewParser()
	stmt, err := p.ParseSelect(sql)
	require.NoError(t, err)
	r := rewrite.New(typeinfer.Result{}, nil)
	out, err := r.Render(stmt, "test_object")
	require.NoError(t, err)
	return out
}

func TestRenderDropsDualAndRownum(t *testing.T) {
	out := render(t, "SELECT 1 FROM dual WHERE ROWNUM <= 10")
	assert.Equal(t, "SELECT 1 LIMIT 10", out)
}

func TestRenderNvlAndSysdate(t *testing.T) {
	out := render(t, "SELECT NVL(bonus, 0), SYSDATE FROM employees e")
	assert.Equal(t, "SELECT COALESCE(bonus, 0), CURRENT_TIMESTAMP FROM employees AS e", out)
}

func TestRenderAddMonths(t *testing.T) {
	out := render(t, "SELECT ADD_MONTHS(hire_date, 3) FROM employees")
	assert.Equal(t, "SELECT (hire_date + (3 || ' months')::interval) FROM employees", out)
}

func TestRenderRefusesCompoundQuery(t *testing.T) {
	p := oraparse.NewParser()
	stmt, err := p.ParseSelect("SELECT id FROM employees START WITH manager_id IS NULL CONNECT BY PRIOR id = manager_id")
	require.NoError(t, err)
	r := rewrite.New(typeinfer.Result{}, nil)
	_, err = r.Render(stmt, "hierarchy_query")
	assert.Error(t, err)
}

func TestRenderInstrTwoArgs(t *testing.T) {
	out := render(t, "SELECT INSTR(name, 'a') FROM employees")
	assert.Equal(t, "SELECT strpos(name, 'a') FROM employees", out)
}

// TestRenderDateArithmetic is spec.md's literal S2 scenario: adding a bare
// integer to a date column must become interval arithmetic, since
// PostgreSQL has no implicit integer-to-interval conversion. Type
// inference has no catalog here, so this also exercises the column-name
// fallback heuristic (hire_date matches the HIRE prefix).
func TestRenderDateArithmetic(t *testing.T) {
	out := render(t, "SELECT hire_date + 7 FROM employees")
	assert.Equal(t, "SELECT hire_date + ( 7 * INTERVAL '1 day' ) FROM employees", out)
}

func TestRenderDateArithmeticCommutative(t *testing.T) {
	out := render(t, "SELECT 7 + hire_date FROM employees")
	assert.Equal(t, "SELECT hire_date + ( 7 * INTERVAL '1 day' ) FROM employees", out)
}

func TestRenderDateMinusDateUnchanged(t *testing.T) {
	out := render(t, "SELECT hire_date - created_at FROM employees")
	assert.Equal(t, "SELECT hire_date - created_at FROM employees", out)
}

func TestRenderInstrThreeArgsBoundsChecked(t *testing.T) {
	out := render(t, "SELECT INSTR(name, 'a', 2) FROM employees")
	assert.Equal(t, "SELECT CASE WHEN 2 > 0 AND 2 <= LENGTH(name) THEN strpos(substring(name from 2), 'a') + (2 - 1) ELSE 0 END FROM employees", out)
}

func TestRenderInstrFourArgsDefaultPositionCollapses(t *testing.T) {
	out := render(t, "SELECT INSTR(name, 'a', 1, 1) FROM employees")
	assert.Equal(t, "SELECT strpos(name, 'a') FROM employees", out)
}

func TestRenderInstrFourArgsOccurrenceDelegates(t *testing.T) {
	out := render(t, "SELECT INSTR(name, 'a', 1, 2) FROM employees")
	assert.Equal(t, "SELECT instr_with_occurrence(name, 'a', 1, 2) FROM employees", out)
}

// TestRenderRoundDateFormat exercises ROUND's date overload via the
// argument-shape fallback (a string-literal format model implies a date
// argument when type inference couldn't resolve a category).
func TestRenderRoundDateFormat(t *testing.T) {
	out := render(t, "SELECT ROUND(hire_date, 'MM') FROM employees")
	assert.Equal(t, "SELECT (CASE WHEN EXTRACT(DAY FROM hire_date) >= 16 THEN DATE_TRUNC('month', hire_date) + INTERVAL '1 month' ELSE DATE_TRUNC('month', hire_date) END)::DATE FROM employees", out)
}

func TestRenderRoundNumericUnaffected(t *testing.T) {
	out := render(t, "SELECT ROUND(salary, 2) FROM employees")
	assert.Equal(t, "SELECT round(salary, 2) FROM employees", out)
}

func TestRenderRegexpReplaceThreeArgsAppendsGlobalFlag(t *testing.T) {
	out := render(t, "SELECT REGEXP_REPLACE(name, 'a', 'b') FROM employees")
	assert.Equal(t, "SELECT regexp_replace(name, 'a', 'b', 'g') FROM employees", out)
}

func TestRenderRegexpReplaceOccurrenceOneOmitsGlobalFlag(t *testing.T) {
	out := render(t, "SELECT REGEXP_REPLACE(name, 'a', 'b', 1, 1) FROM employees")
	assert.Equal(t, "SELECT regexp_replace(name, 'a', 'b') FROM employees", out)
}

func TestRenderRegexpReplaceOccurrenceAboveOneRefused(t *testing.T) {
	p := oraparse.NewParser()
	stmt, err := p.ParseSelect("SELECT REGEXP_REPLACE(name, 'a', 'b', 1, 2) FROM employees")
	require.NoError(t, err)
	r := rewrite.New(typeinfer.Result{}, nil)
	_, err = r.Render(stmt, "test_object")
	assert.Error(t, err)
}
