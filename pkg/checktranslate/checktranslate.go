// SPDX-License-Identifier: Apache-2.0

// Package checktranslate does a lightweight, regex-driven textual rewrite
// of Oracle CHECK constraint expressions into PostgreSQL form. Unlike
// pkg/rewrite, it never builds an AST: CHECK expressions extracted from
// Oracle's data dictionary arrive as a single string with no statement
// structure around them, and are simple enough in practice that a handful
// of targeted substitutions cover the common cases.
package checktranslate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	instrRe    = regexp.MustCompile(`(?i)\bINSTR\s*\(\s*([^,()]+?)\s*,\s*([^,()]+?)\s*(?:,\s*([^,()]+?)\s*(?:,\s*([^,()]+?)\s*)?)?\)`)
	nvlRe      = regexp.MustCompile(`(?i)\bNVL\s*\(\s*([^,()]+)\s*,\s*([^()]+?)\s*\)`)
	substrRe   = regexp.MustCompile(`(?i)\bSUBSTR\s*\(`)
	rawtohexRe = regexp.MustCompile(`(?i)\bRAWTOHEX\s*\(\s*([^()]+?)\s*\)`)
)

// Translate rewrites the common function calls a CHECK expression can
// contain. It only handles flat (non-nested) calls to these functions:
// nested parentheses inside an argument (e.g. INSTR(f(x), 'y')) are passed
// through unchanged for that occurrence, since the regex-based approach
// cannot balance nested parens. Callers that need full correctness on
// deeply nested expressions should route through pkg/rewrite's full parser
// instead; most Oracle CHECK constraints are shallow enough not to need it.
func Translate(expr string) string {
	out := expr
	out = instrRe.ReplaceAllStringFunc(out, translateInstr)
	out = nvlRe.ReplaceAllString(out, "COALESCE($1, $2)")
	out = substrRe.ReplaceAllString(out, "substr(")
	out = rawtohexRe.ReplaceAllString(out, "upper(encode($1, 'hex'))")
	return out
}

// translateInstr implements spec.md's per-arity INSTR rules: the 2-arg and
// position=1/occurrence=1 4-arg forms both collapse to a plain strpos
// call; a bare position (3-arg) form needs a bounds-checked CASE, since
// Oracle's INSTR returns 0 rather than erroring on an out-of-range start;
// any other position/occurrence combination has no PostgreSQL built-in
// equivalent and is delegated to a target-side instr_with_occurrence
// helper function.
func translateInstr(match string) string {
	groups := instrRe.FindStringSubmatch(match)
	s, t, p, n := groups[1], groups[2], groups[3], groups[4]

	if p == "" {
		return fmt.Sprintf("strpos(%s, %s)", s, t)
	}
	if n == "" {
		return fmt.Sprintf(
			"CASE WHEN %s > 0 AND %s <= LENGTH(%s) THEN strpos(substring(%s from %s), %s) + (%s - 1) ELSE 0 END",
			p, p, s, s, p, t, p,
		)
	}
	if strings.TrimSpace(p) == "1" && strings.TrimSpace(n) == "1" {
		return fmt.Sprintf("strpos(%s, %s)", s, t)
	}
	return fmt.Sprintf("instr_with_occurrence(%s, %s, %s, %s)", s, t, p, n)
}
