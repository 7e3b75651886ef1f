// SPDX-License-Identifier: Apache-2.0

package oraparse

import "strings"

// ParseError carries a line/column and message, per spec.md §7's
// ParseError kind.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e ParseError) Error() string {
	return e.Message
}

// ParseErrors is a non-empty collection of ParseError, returned by the
// full-prediction parse path which recovers across errors instead of
// aborting on the first one.
type ParseErrors []ParseError

func (e ParseErrors) Error() string {
	parts := make([]string, len(e))
	for i, pe := range e {
		parts[i] = pe.Error()
	}
	return strings.Join(parts, "; ")
}

// errAmbiguous is returned internally by the fast-path parser when it
// encounters a construct it does not parse deterministically (subqueries
// in FROM, analytic OVER clauses, CONNECT BY hierarchical queries). It is
// never returned to callers of ParseSelect; it only triggers a fallback to
// the full-prediction path.
type errAmbiguous struct {
	reason string
}

func (e errAmbiguous) Error() string { return "ambiguous: " + e.reason }
