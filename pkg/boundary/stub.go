// SPDX-License-Identifier: Apache-2.0

package boundary

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
)

// StubBody returns the minimal body Oracle accepts for a forward-declared
// routine, used to materialize a package member before its real
// implementation is written in a later pipeline stage. Functions must
// return a value even if the caller never inspects it; procedures need
// nothing more than a bare return. Function, constructor, map and order
// kinds always denote functions; member and static kinds do not record
// whether the routine is a function or a procedure and get the procedure
// body.
func StubBody(kind oraparse.RoutineKind) string {
	switch kind {
	case oraparse.KindFunction, oraparse.KindConstructor, oraparse.KindMap, oraparse.KindOrder:
		return "IS\nBEGIN\n  RETURN NULL;\nEND;"
	}
	return "IS\nBEGIN\n  RETURN;\nEND;"
}

// StubSource rebuilds a full "FUNCTION name(...) [RETURN type] IS BEGIN
// ... END;" source for a member by splicing its original signature (taken
// verbatim from src, preserving parameter types and default expressions
// exactly) onto a synthesized stub body.
func StubSource(m Member, src string) string {
	sig := strings.TrimSpace(m.SignatureSpan.Text(src))
	return sig + "\n" + StubBody(m.Kind) + "\n"
}
