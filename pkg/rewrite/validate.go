// SPDX-License-Identifier: Apache-2.0

package rewrite

import (
	pgq "github.com/xataio/pg_query_go/v6"

	"github.com/Sayiza/orapgsync-sub012/pkg/xerrors"
)

// ValidatePostgreSQL parses generated SQL text with the real PostgreSQL
// grammar and returns a TranslationError if it does not parse. It only
// parses; it does not render the tree back to text. No code in the module
// calls it at present.
func ValidatePostgreSQL(objectName, sql string) error {
	if _, err := pgq.Parse(sql); err != nil {
		return xerrors.TranslationError{Object: objectName, Span: sql, Reason: "translated statement does not parse as PostgreSQL: " + err.Error()}
	}
	return nil
}
