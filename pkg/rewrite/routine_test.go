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

func TestRenderRoutineFunction(t *testing.T) {
	p := oraparse.NewParser()
	ast, err := p.ParseFunctionBody(`total_for(p_id IN NUMBER) RETURN NUMBER IS
BEGIN
  IF p_id > 0 THEN
    RETURN p_id * 2;
  ELSE
    RETURN 0;
  END IF;
END;`)
	require.NoError(t, err)

	r := rewrite.New(typeinfer.Result{}, nil)
	ddl, err := r.RenderRoutine("hr", ast, "hr.total_for")
	require.NoError(t, err)

	assert.Contains(t, ddl, "CREATE OR REPLACE FUNCTION hr.total_for(IN p_id numeric) RETURNS numeric LANGUAGE plpgsql AS $$")
	assert.Contains(t, ddl, "IF p_id > 0 THEN")
	assert.Contains(t, ddl, "RETURN p_id * 2;")
	assert.Contains(t, ddl, "ELSE")
	assert.Contains(t, ddl, "RETURN 0;")
	assert.Contains(t, ddl, "END IF;")
}

func TestRenderRoutineProcedureSelectInto(t *testing.T) {
	p := oraparse.NewParser()
	ast, err := p.ParseProcedureBody(`apply_credit(p_id IN NUMBER) IS
  v_balance NUMBER;
BEGIN
  SELECT balance INTO v_balance FROM accounts WHERE id = p_id;
  v_balance := v_balance + 1;
END;`)
	require.NoError(t, err)

	r := rewrite.New(typeinfer.Result{}, nil)
	ddl, err := r.RenderRoutine("hr", ast, "hr.apply_credit")
	require.NoError(t, err)

	assert.Contains(t, ddl, "CREATE OR REPLACE PROCEDURE hr.apply_credit(IN p_id numeric) LANGUAGE plpgsql AS $$")
	assert.Contains(t, ddl, "SELECT balance INTO v_balance FROM accounts WHERE id = p_id;")
	assert.Contains(t, ddl, "v_balance := v_balance + 1;")
}
