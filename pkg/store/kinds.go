// SPDX-License-Identifier: Apache-2.0

package store

// Further object kind names, beside the ones declared in store.go. No
// stage in cmd reads or writes these keys.
const (
	KindFunctions   Kind = "functions"
	KindProcedures  Kind = "procedures"

	KindSchemaResult     Kind = "schema_result"
	KindObjectTypeResult Kind = "object_type_result"
	KindTableResult      Kind = "table_result"
	KindConstraintResult Kind = "constraint_result"
	KindFKIndexResult    Kind = "fk_index_result"
	KindViewStubResult   Kind = "view_stub_result"
	KindViewImplResult   Kind = "view_impl_result"
	KindRoutineStubResult Kind = "routine_stub_result"
	KindRoutineImplResult Kind = "routine_impl_result"
)
