// SPDX-License-Identifier: Apache-2.0

// Package depgraph orders constraint and FK-index creation the way
// spec.md's dependency analyzer does: primary keys, then unique
// constraints, then foreign keys in table-dependency order (self-
// referencing ones last), then check constraints.
package depgraph

import (
	"sort"

	"github.com/Sayiza/orapgsync-sub012/pkg/model"
)

// Node is one constraint to be ordered, keyed by its qualified name.
type Node struct {
	Key        string
	Constraint model.ConstraintMetadata
}

// CycleWarning records a table-level FK dependency cycle Order broke by
// falling back to lexicographic table order for the cycle's members.
type CycleWarning struct {
	Members []string
}

// Order emits every constraint in four groups: all PRIMARY KEYs in
// insertion order, all UNIQUE constraints in insertion order, all FOREIGN
// KEYs (non-self-referencing ones ordered by table dependency, then
// self-referencing ones), and finally all CHECK constraints. NOT NULL
// constraints, if any reach here, are emitted alongside CHECK constraints
// since neither participates in the FK dependency graph.
//
// A non-self FK's owning table depends on its referenced table: the
// referenced table's own FKs (if it has any) are emitted first, so a
// table is never asked to add a foreign key before every table it reads
// from has already had its own foreign keys resolved. Ties between tables
// with no remaining dependency are broken by lexicographic schema.table
// order, and a genuine cycle (mutual foreign keys) is reported via the
// returned warning list, with every cycle member still emitted —
// lexicographically ordered — rather than dropped.
func Order(constraints []model.ConstraintMetadata) ([]model.ConstraintMetadata, []CycleWarning) {
	var pks, uniques, checks, selfFKs []model.ConstraintMetadata
	fksByTable := map[string][]model.ConstraintMetadata{}
	dependsOn := map[string]map[string]bool{} // table -> set of tables it must follow
	tables := map[string]bool{}

	for _, c := range constraints {
		switch c.Kind() {
		case model.PrimaryKey:
			pks = append(pks, c)
		case model.Unique:
			uniques = append(uniques, c)
		case model.ForeignKey:
			table, ref := c.QualifiedTable(), c.QualifiedRefTable()
			if table == ref {
				selfFKs = append(selfFKs, c)
				continue
			}
			fksByTable[table] = append(fksByTable[table], c)
			tables[table] = true
			tables[ref] = true
			if dependsOn[table] == nil {
				dependsOn[table] = map[string]bool{}
			}
			dependsOn[table][ref] = true
		default: // model.Check, model.NotNull
			checks = append(checks, c)
		}
	}

	orderedFKs, warnings := orderTables(tables, dependsOn, fksByTable)

	var ordered []model.ConstraintMetadata
	ordered = append(ordered, pks...)
	ordered = append(ordered, uniques...)
	ordered = append(ordered, orderedFKs...)
	ordered = append(ordered, selfFKs...)
	ordered = append(ordered, checks...)
	return ordered, warnings
}

// orderTables runs Kahn's algorithm over the table-level FK dependency
// graph: a table becomes ready once every table it depends on has already
// been processed, and each ready table contributes its own foreign keys
// (in their original insertion order) to the result when it is popped.
func orderTables(tables map[string]bool, dependsOn map[string]map[string]bool, fksByTable map[string][]model.ConstraintMetadata) ([]model.ConstraintMetadata, []CycleWarning) {
	remaining := map[string]int{}
	for t := range tables {
		remaining[t] = len(dependsOn[t])
	}

	dependents := map[string][]string{} // table -> tables that depend on it
	for t, deps := range dependsOn {
		for ref := range deps {
			dependents[ref] = append(dependents[ref], t)
		}
	}

	var ready []string
	for t := range tables {
		if remaining[t] == 0 {
			ready = append(ready, t)
		}
	}

	var ordered []model.ConstraintMetadata
	processed := map[string]bool{}

	for len(ready) > 0 {
		sort.Strings(ready)
		t := ready[0]
		ready = ready[1:]
		if processed[t] {
			continue
		}
		processed[t] = true
		ordered = append(ordered, fksByTable[t]...)

		for _, dep := range dependents[t] {
			remaining[dep]--
			if remaining[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	var warnings []CycleWarning
	if len(processed) < len(tables) {
		var stuck []string
		for t := range tables {
			if !processed[t] {
				stuck = append(stuck, t)
			}
		}
		sort.Strings(stuck)
		warnings = append(warnings, CycleWarning{Members: stuck})
		for _, t := range stuck {
			ordered = append(ordered, fksByTable[t]...)
		}
	}

	return ordered, warnings
}
