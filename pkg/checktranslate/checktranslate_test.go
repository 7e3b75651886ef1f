// SPDX-License-Identifier: Apache-2.0

package checktranslate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sayiza/orapgsync-sub012/pkg/checktranslate"
)

func TestTranslateInstrAndNvl(t *testing.T) {
	out := checktranslate.Translate(`INSTR(status, 'X') > 0 AND NVL(amount, 0) >= 0`)
	assert.Equal(t, `strpos(status, 'X') > 0 AND COALESCE(amount, 0) >= 0`, out)
}

// TestTranslateInstrFourArgDefaultPosition is spec.md's literal S6 scenario:
// INSTR's position=1/occurrence=1 form is equivalent to the 2-arg form.
func TestTranslateInstrFourArgDefaultPosition(t *testing.T) {
	out := checktranslate.Translate(`INSTR(name,'@',1,1) > 0`)
	assert.Equal(t, `strpos(name, '@') > 0`, out)
}

func TestTranslateInstrThreeArgBoundsChecked(t *testing.T) {
	out := checktranslate.Translate(`INSTR(name, '@', 2) > 0`)
	assert.Equal(t, `CASE WHEN 2 > 0 AND 2 <= LENGTH(name) THEN strpos(substring(name from 2), '@') + (2 - 1) ELSE 0 END > 0`, out)
}

func TestTranslateInstrFourArgOccurrenceDelegates(t *testing.T) {
	out := checktranslate.Translate(`INSTR(name, '@', 1, 2) > 0`)
	assert.Equal(t, `instr_with_occurrence(name, '@', 1, 2) > 0`, out)
}

func TestTranslateSubstrCaseInsensitive(t *testing.T) {
	out := checktranslate.Translate(`SUBSTR(code, 1, 1) = 'A'`)
	assert.Equal(t, `substr(code, 1, 1) = 'A'`, out)
}
