// SPDX-License-Identifier: Apache-2.0

package boundary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/boundary"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
)

const samplePackageBody = `
PACKAGE BODY billing AS

  FUNCTION total_for(p_id IN NUMBER) RETURN NUMBER;

  FUNCTION total_for(p_id IN NUMBER) RETURN NUMBER IS
    v_total NUMBER;
  BEGIN
    IF p_id > 0 THEN
      SELECT SUM(amount) INTO v_total FROM invoices WHERE customer_id = p_id;
    END IF;
    RETURN v_total;
  END total_for;

  PROCEDURE apply_credit(p_id IN NUMBER, p_amount IN NUMBER) IS
  BEGIN
    FOR r IN (SELECT id FROM invoices WHERE customer_id = p_id) LOOP
      UPDATE invoices SET amount = amount - p_amount WHERE id = r.id;
    END LOOP;
  END apply_credit;

END billing;
`

func TestScanFindsImplementedMembersOnly(t *testing.T) {
	members := boundary.Scan(samplePackageBody)
	require.Len(t, members, 2)

	assert.Equal(t, oraparse.KindFunction, members[0].Kind)
	assert.Equal(t, "total_for", members[0].Name)
	assert.True(t, members[0].HasBody)

	assert.Equal(t, oraparse.KindProcedure, members[1].Kind)
	assert.Equal(t, "apply_credit", members[1].Name)
	assert.True(t, members[1].HasBody)
}

func TestScanBodySpanCoversNestedBlocks(t *testing.T) {
	members := boundary.Scan(samplePackageBody)
	require.Len(t, members, 2)

	body := members[0].BodySpan.Text(samplePackageBody)
	assert.Contains(t, body, "IF p_id > 0 THEN")
	assert.Contains(t, body, "RETURN v_total;")
	assert.True(t, strings.TrimSpace(body) != "")
}

const sampleObjectTypeBody = `
TYPE BODY money_box AS

  MEMBER FUNCTION balance RETURN NUMBER IS
  BEGIN
    RETURN 0;
  END balance;

  STATIC PROCEDURE reset_all IS
  BEGIN
    NULL;
  END reset_all;

  MAP MEMBER FUNCTION sort_key RETURN NUMBER IS
  BEGIN
    RETURN 0;
  END sort_key;

  ORDER MEMBER FUNCTION compare(p_other IN money_box) RETURN NUMBER IS
  BEGIN
    RETURN 0;
  END compare;

END;
`

func TestScanRecognizesObjectTypeRoutineModifiers(t *testing.T) {
	members := boundary.Scan(sampleObjectTypeBody)
	require.Len(t, members, 4)

	assert.Equal(t, oraparse.KindMember, members[0].Kind)
	assert.Equal(t, "balance", members[0].Name)

	assert.Equal(t, oraparse.KindStatic, members[1].Kind)
	assert.Equal(t, "reset_all", members[1].Name)

	assert.Equal(t, oraparse.KindMap, members[2].Kind)
	assert.Equal(t, "sort_key", members[2].Name)

	assert.Equal(t, oraparse.KindOrder, members[3].Kind)
	assert.Equal(t, "compare", members[3].Name)
}

func TestStubSourceProducesMinimalBody(t *testing.T) {
	members := boundary.Scan(samplePackageBody)
	require.Len(t, members, 2)

	stub := boundary.StubSource(members[0], samplePackageBody)
	assert.Contains(t, stub, "FUNCTION total_for")
	assert.Contains(t, stub, "RETURN NULL;")

	procStub := boundary.StubSource(members[1], samplePackageBody)
	assert.Contains(t, procStub, "PROCEDURE apply_credit")
	assert.Contains(t, procStub, "RETURN;")
	assert.NotContains(t, procStub, "RETURN NULL;")
}
