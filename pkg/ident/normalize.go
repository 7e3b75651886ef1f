// SPDX-License-Identifier: Apache-2.0

// Package ident implements the identifier normalizer (C4): folding Oracle
// identifiers to PostgreSQL case/length rules deterministically.
//
// Grounded on the teacher's pkg/migrations/name.go, which enforces
// PostgreSQL's 63-byte identifier limit (spec.md's own MaxNameLength
// constant); this package adds the lowercase-folding and overflow-hashing
// rules spec.md §4.3 requires beyond a simple length check.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// MaxBytes is PostgreSQL's identifier length limit.
// https://www.postgresql.org/docs/current/sql-syntax-lexical.html#SQL-SYNTAX-IDENTIFIERS
const MaxBytes = 63

var validRe = regexp.MustCompile(`^[a-z_][a-z0-9_$#]*$`)

// Normalize folds name to PostgreSQL's identifier rules: lowercase, outer
// quotes stripped, truncated to MaxBytes with a deterministic hash suffix
// on overflow.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x) — the
// output of one call is already lowercase, already quote-free and already
// within the byte limit (or ends in its own hash suffix, which is itself
// a fixed point since re-hashing the already-normalized text would only be
// reached if it overflowed again, and a 63-byte string never does).
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.ToLower(s)

	if len(s) > MaxBytes {
		s = truncateWithHash(s)
	}

	if !validRe.MatchString(s) {
		s = sanitize(s)
		if len(s) > MaxBytes {
			s = truncateWithHash(s)
		}
	}

	return s
}

// NeedsQuoting reports whether name must be double-quoted when emitted in
// DDL: it fails PostgreSQL's unquoted-identifier grammar (e.g. it is
// mixed-case, or contains characters outside [a-z0-9_$#]). Length is not
// checked: a valid name longer than MaxBytes reports false.
func NeedsQuoting(name string) bool {
	return !validRe.MatchString(name)
}

// Quote double-quotes name, doubling any embedded double quotes, for use
// when NeedsQuoting reports true.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func truncateWithHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	suffix := "_" + hex.EncodeToString(sum[:])[:8]
	keep := MaxBytes - len(suffix)
	if keep < 0 {
		keep = 0
	}
	if keep > len(s) {
		keep = len(s)
	}
	return s[:keep] + suffix
}

// sanitize replaces any byte outside the allowed alphabet with '_' and
// ensures the result starts with a letter or underscore.
func sanitize(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '$', r == '#':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		_ = i
	}
	out := b.String()
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}
	return out
}
