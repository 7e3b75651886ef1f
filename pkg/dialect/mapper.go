// SPDX-License-Identifier: Apache-2.0

package dialect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// KnownTypeChecker reports whether a user-defined composite type (OWNER.T)
// is known to have already been created on the target side. The dialect
// mapper consults it so that OracleToPG never forward-references a type
// that hasn't been created yet in the pipeline's ExtractSourceTypes /
// CreateTargetTypes stage.
type KnownTypeChecker func(owner, name string) bool

var (
	numberRe    = regexp.MustCompile(`(?i)^NUMBER\s*(?:\(\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*)?\))?$`)
	varcharRe   = regexp.MustCompile(`(?i)^(VARCHAR2|NVARCHAR2|CHAR|NCHAR)\s*\(\s*(\d+)\s*(?:CHAR|BYTE)?\s*\)$`)
	timestampRe = regexp.MustCompile(`(?i)^TIMESTAMP\s*(?:\(\s*(\d+)\s*\))?\s*(WITH(?:\s+LOCAL)?\s+TIME\s+ZONE)?$`)
	rawRe       = regexp.MustCompile(`(?i)^RAW\s*\(\s*(\d+)\s*\)$`)
	userTypeRe  = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_$#]*)\.([A-Za-z_][A-Za-z0-9_$#]*)$`)
)

// OracleToPG converts a single Oracle type declaration string (as found in
// ALL_TAB_COLUMNS / ALL_TYPE_ATTRS, e.g. "NUMBER(10,2)", "VARCHAR2(50)",
// "MY_SCHEMA.ADDRESS_T") to its PostgreSQL declaration, per the mapping
// table in spec.md §4.2.
//
// knownType may be nil, in which case composite user types are always
// mapped optimistically (used by tests and by the dry-run path).
func OracleToPG(typeDecl string, knownType KnownTypeChecker) (string, error) {
	decl := strings.TrimSpace(typeDecl)
	upper := strings.ToUpper(decl)

	if m := numberRe.FindStringSubmatch(decl); m != nil {
		switch {
		case m[1] == "":
			return "numeric", nil
		case m[2] == "":
			return fmt.Sprintf("numeric(%s)", m[1]), nil
		default:
			return fmt.Sprintf("numeric(%s,%s)", m[1], m[2]), nil
		}
	}

	switch upper {
	case "INTEGER", "INT":
		return "numeric", nil
	case "BINARY_FLOAT":
		return "real", nil
	case "BINARY_DOUBLE":
		return "double precision", nil
	case "FLOAT":
		return "numeric", nil
	case "BOOLEAN":
		return "boolean", nil
	case "CLOB", "NCLOB":
		return "text", nil
	case "BLOB":
		return "bytea", nil
	case "DATE":
		return "timestamp", nil
	case "XMLTYPE":
		return "xml", nil
	}

	if m := varcharRe.FindStringSubmatch(decl); m != nil {
		n, _ := strconv.Atoi(m[2])
		switch strings.ToUpper(m[1]) {
		case "VARCHAR2", "NVARCHAR2":
			return fmt.Sprintf("varchar(%d)", n), nil
		default: // CHAR, NCHAR
			return fmt.Sprintf("char(%d)", n), nil
		}
	}

	if m := rawRe.FindStringSubmatch(decl); m != nil {
		_ = m
		return "bytea", nil
	}

	if m := timestampRe.FindStringSubmatch(decl); m != nil {
		base := "timestamp"
		if m[1] != "" {
			base = fmt.Sprintf("timestamp(%s)", m[1])
		}
		if m[2] != "" {
			return base + " with time zone", nil
		}
		return base, nil
	}

	if m := userTypeRe.FindStringSubmatch(decl); m != nil {
		owner, name := m[1], m[2]
		if knownType == nil || knownType(owner, name) {
			return strings.ToLower(owner) + "." + strings.ToLower(name), nil
		}
		return "", UnknownCompositeTypeError{Owner: owner, Name: name}
	}

	// Unrecognized complex system type: fall back to jsonb per spec.md §4.2.
	if looksComplex(upper) {
		return "jsonb", nil
	}

	// Final fallback: unknown scalar type, logged by the caller.
	return "text", nil
}

// looksComplex is a conservative heuristic for "unrecognized complex system
// type": Oracle system types that aren't plain scalars typically carry a
// recognizable suffix such as _TYPE or VARRAY/TABLE OF.
func looksComplex(upper string) bool {
	return strings.HasSuffix(upper, "_TYPE") ||
		strings.Contains(upper, "VARRAY") ||
		strings.Contains(upper, "TABLE OF") ||
		strings.HasPrefix(upper, "SDO_") ||
		strings.HasPrefix(upper, "ANYDATA")
}

// UnknownCompositeTypeError is returned by OracleToPG when a user-defined
// composite type is referenced before it has been created on the target,
// classified as DialectUnsupported by callers.
type UnknownCompositeTypeError struct {
	Owner string
	Name  string
}

func (e UnknownCompositeTypeError) Error() string {
	return fmt.Sprintf("composite type %s.%s has not been created on the target yet", e.Owner, e.Name)
}

// PGToOracleCategory is the inverse mapping: given a PostgreSQL catalog
// type name, return the common category it corresponds to. No package in
// the module calls it.
func PGToOracleCategory(pgType string) Category {
	t := strings.ToLower(strings.TrimSpace(pgType))
	switch {
	case strings.HasPrefix(t, "numeric"), strings.HasPrefix(t, "real"), strings.HasPrefix(t, "double precision"), t == "integer", t == "bigint", t == "smallint":
		return Numeric
	case strings.HasPrefix(t, "varchar"), strings.HasPrefix(t, "char"), t == "text", t == "bpchar":
		return Text
	case strings.HasPrefix(t, "timestamp"):
		if strings.Contains(t, "with time zone") {
			return Timestamp
		}
		return Timestamp
	case t == "date":
		return Date
	case t == "boolean":
		return Boolean
	case t == "bytea":
		return Text
	case t == "xml", t == "jsonb", t == "json":
		return Custom
	default:
		return Unknown
	}
}
