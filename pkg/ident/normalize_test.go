// SPDX-License-Identifier: Apache-2.0

package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBasic(t *testing.T) {
	assert.Equal(t, "employees", Normalize("EMPLOYEES"))
	assert.Equal(t, "employees", Normalize(`"EMPLOYEES"`))
	assert.Equal(t, "mixed_case", Normalize("Mixed_Case"))
}

func TestNormalizeOverflow(t *testing.T) {
	long := strings.Repeat("a", 100)
	out := Normalize(long)
	assert.LessOrEqual(t, len(out), MaxBytes)
	assert.Regexp(t, `^[a-z_][a-z0-9_$#]*$`, out)
	assert.Contains(t, out, "_")
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"EMPLOYEES",
		`"Weird Name With Spaces!!"`,
		strings.Repeat("x", 200),
		"123_starts_with_digit",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "not idempotent for input %q", in)
		if once != "" {
			require.LessOrEqual(t, len(once), MaxBytes)
			assert.Regexp(t, `^[a-z_][a-z0-9_$#]*$`, once)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	a := Normalize(strings.Repeat("q", 200))
	b := Normalize(strings.Repeat("q", 200))
	assert.Equal(t, a, b)
}
