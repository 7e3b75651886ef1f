// SPDX-License-Identifier: Apache-2.0

// Package dialect implements the type system and dialect mapper (C3): a
// pure function from an Oracle type declaration to its PostgreSQL
// equivalent, plus the scalar category inference C7 builds type inference
// on top of.
//
// Grounded on joaosoft-db-mcp/mcp/dialect_oracle.go and dialect_postgres.go,
// which draw the same Oracle/PostgreSQL line for identifier quoting,
// pagination and system-schema lists; this package narrows that dialect
// split down to the single concern spec.md assigns it: type declarations.
package dialect

import "strings"

// Category is the common scalar classification spec.md §2/§4.2 requires:
// {numeric, text, date, timestamp, boolean, null, unknown, custom}.
type Category int

const (
	Unknown Category = iota
	Numeric
	Text
	Date
	Timestamp
	Boolean
	Null
	Custom
)

func (c Category) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Boolean:
		return "boolean"
	case Null:
		return "null"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// CategoryOf classifies an Oracle base type name into the common category
// set. Unknown base types yield Unknown, per spec.md §4.2.
func CategoryOf(baseType string) Category {
	t := strings.ToUpper(strings.TrimSpace(baseType))
	// Strip any parenthesised precision/scale/length suffix: NUMBER(10,2) -> NUMBER
	if idx := strings.IndexByte(t, '('); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	switch t {
	case "NUMBER", "INTEGER", "INT", "BINARY_FLOAT", "BINARY_DOUBLE", "FLOAT", "DEC", "DECIMAL", "NUMERIC":
		return Numeric
	case "VARCHAR2", "NVARCHAR2", "CHAR", "NCHAR", "CLOB", "NCLOB", "LONG", "VARCHAR":
		return Text
	case "RAW", "BLOB", "BFILE":
		return Text // dialect mapper sends these to bytea, but category-wise they are not comparable with numerics/dates
	case "DATE":
		return Date
	case "TIMESTAMP":
		return Timestamp
	case "BOOLEAN":
		return Boolean
	case "XMLTYPE":
		return Text
	default:
		return Unknown
	}
}

// IsDateLike reports whether a category participates in date arithmetic.
func IsDateLike(c Category) bool { return c == Date || c == Timestamp }
