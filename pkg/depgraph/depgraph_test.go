// SPDX-License-Identifier: Apache-2.0

package depgraph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sayiza/orapgsync-sub012/pkg/depgraph"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

func names(constraints []model.ConstraintMetadata) []string {
	out := make([]string, len(constraints))
	for i, c := range constraints {
		out[i] = c.Name()
	}
	return out
}

// TestOrderFKTopology is spec.md's literal S5 scenario: A(id PK), B(a_id
// FK->A), C(b_id FK->B, a_id FK->A), C(parent_id FK->C). The expected
// emission order is PK_A, PK_B, PK_C, FK_B_A, FK_C_B, FK_C_A, FK_C_C: all
// primary keys first, then foreign keys ordered by table dependency (C
// depends on B and A, B depends only on A), with the self-referencing FK
// on C emitted last.
func TestOrderFKTopology(t *testing.T) {
	pkA := model.NewConstraint(model.PrimaryKey, "PK_A", "s", "a", []string{"id"})
	pkB := model.NewConstraint(model.PrimaryKey, "PK_B", "s", "b", []string{"id"})
	pkC := model.NewConstraint(model.PrimaryKey, "PK_C", "s", "c", []string{"id"})
	fkBA := model.NewConstraint(model.ForeignKey, "FK_B_A", "s", "b", []string{"a_id"}).
		WithForeignKey("s", "a", []string{"id"}, model.NoAction)
	fkCB := model.NewConstraint(model.ForeignKey, "FK_C_B", "s", "c", []string{"b_id"}).
		WithForeignKey("s", "b", []string{"id"}, model.NoAction)
	fkCA := model.NewConstraint(model.ForeignKey, "FK_C_A", "s", "c", []string{"a_id"}).
		WithForeignKey("s", "a", []string{"id"}, model.NoAction)
	fkCC := model.NewConstraint(model.ForeignKey, "FK_C_C", "s", "c", []string{"parent_id"}).
		WithForeignKey("s", "c", []string{"id"}, model.NoAction)

	ordered, warnings := depgraph.Order([]model.ConstraintMetadata{pkA, pkB, pkC, fkCB, fkCA, fkCC, fkBA})

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"PK_A", "PK_B", "PK_C", "FK_B_A", "FK_C_B", "FK_C_A", "FK_C_C"}, names(ordered))
}

func TestOrderGroupsByKindBeforeFKTopology(t *testing.T) {
	pk := model.NewConstraint(model.PrimaryKey, "PK_T", "s", "t", []string{"id"})
	unique := model.NewConstraint(model.Unique, "UQ_T", "s", "t", []string{"code"})
	check := model.NewConstraint(model.Check, "CHK_T", "s", "t", nil).WithCheckExpression("code IS NOT NULL")
	fk := model.NewConstraint(model.ForeignKey, "FK_T_U", "s", "t", []string{"u_id"}).
		WithForeignKey("s", "u", []string{"id"}, model.NoAction)

	ordered, warnings := depgraph.Order([]model.ConstraintMetadata{check, fk, unique, pk})

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"PK_T", "UQ_T", "FK_T_U", "CHK_T"}, names(ordered))
}

// TestOrderReportsCycle covers a genuine mutual FK cycle between two
// tables: neither table's FK can be ordered before the other's, so Order
// falls back to lexicographic table order and reports the cycle instead
// of dropping either constraint.
func TestOrderReportsCycle(t *testing.T) {
	fkAB := model.NewConstraint(model.ForeignKey, "FK_A_B", "s", "a", []string{"b_id"}).
		WithForeignKey("s", "b", []string{"id"}, model.NoAction)
	fkBA := model.NewConstraint(model.ForeignKey, "FK_B_A", "s", "b", []string{"a_id"}).
		WithForeignKey("s", "a", []string{"id"}, model.NoAction)

	ordered, warnings := depgraph.Order([]model.ConstraintMetadata{fkAB, fkBA})

	require.Len(t, warnings, 1)
	assert.ElementsMatch(t, []string{"s.a", "s.b"}, warnings[0].Members)
	assert.ElementsMatch(t, []string{"FK_A_B", "FK_B_A"}, names(ordered))
}
