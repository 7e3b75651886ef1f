// SPDX-License-Identifier: Apache-2.0

// Package typeinfer assigns an Oracle type category to every expression
// node of a parsed SELECT statement, producing the node_id -> TypeInfo
// cache the AST rewriter (pkg/rewrite) needs to choose a translation for
// constructs whose correct PostgreSQL form depends on operand types (date
// arithmetic, NVL/COALESCE, implicit string/number conversion).
package typeinfer

import (
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/dialect"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
)

// TypeInfo is the inferred type of one expression node. Schema/Name are
// populated only when Category is dialect.Custom.
type TypeInfo struct {
	Category dialect.Category
	Schema   string
	Name     string
}

// ColumnCatalog resolves a table.column reference to its declared Oracle
// base type (e.g. "NUMBER", "VARCHAR2"), as recorded by the extraction
// stage's TableMetadata. Returning ok=false leaves the column's type
// Unknown rather than failing the whole inference pass, matching spec.md
// §4.5's resolution-failure behavior.
type ColumnCatalog interface {
	ColumnType(schema, table, column string) (baseType string, ok bool)
}

// Result is the output of Infer: every node the visitor reached, keyed by
// its NodeID.
type Result struct {
	types map[oraparse.NodeID]TypeInfo
}

// TypeOf returns the inferred type of a node, or the zero TypeInfo
// (Category Unknown) if the node was never visited.
func (r Result) TypeOf(n oraparse.Node) TypeInfo {
	if n == nil {
		return TypeInfo{}
	}
	if t, ok := r.types[n.ID()]; ok {
		return t
	}
	return TypeInfo{}
}

// Infer performs the two-pass walk spec.md §4.5 describes: first resolving
// the FROM clause into an alias -> (schema, table) map, then visiting
// every expression bottom-up so each parent's category can depend on its
// children's already-resolved categories.
func Infer(stmt *oraparse.SelectStatement, catalog ColumnCatalog) Result {
	v := &visitor{
		catalog: catalog,
		aliases: resolveAliases(stmt.From),
		types:   make(map[oraparse.NodeID]TypeInfo),
	}

	for _, item := range stmt.Columns {
		v.visit(item.Expr)
	}
	v.visit(stmt.Where)
	for _, e := range stmt.GroupBy {
		v.visit(e)
	}
	v.visit(stmt.Having)
	for _, o := range stmt.OrderBy {
		v.visit(o.Expr)
	}

	return Result{types: v.types}
}

type tableRefInfo struct {
	schema string
	table  string
}

// resolveAliases builds alias -> table map; unaliased tables are keyed
// under their own table name so "table.column" and "alias.column" both
// resolve the same way.
func resolveAliases(from []oraparse.TableRef) map[string]tableRefInfo {
	m := make(map[string]tableRefInfo)
	for _, f := range from {
		if f.Subquery != nil {
			continue // inline views carry no catalog-resolvable columns here
		}
		info := tableRefInfo{schema: f.Schema, table: f.Table}
		key := strings.ToLower(f.Table)
		if f.Alias != "" {
			key = strings.ToLower(f.Alias)
		}
		m[key] = info
	}
	return m
}

type visitor struct {
	catalog ColumnCatalog
	aliases map[string]tableRefInfo
	types   map[oraparse.NodeID]TypeInfo
}

func (v *visitor) set(n oraparse.Node, t TypeInfo) TypeInfo {
	if n != nil {
		v.types[n.ID()] = t
	}
	return t
}

func (v *visitor) visit(e oraparse.Expr) TypeInfo {
	if e == nil {
		return TypeInfo{}
	}

	switch n := e.(type) {
	case *oraparse.Literal:
		return v.set(n, TypeInfo{Category: literalCategory(n.Kind)})

	case *oraparse.ColumnRef:
		return v.set(n, v.resolveColumn(n))

	case *oraparse.Star:
		return TypeInfo{}

	case *oraparse.Paren:
		return v.set(n, v.visit(n.Inner))

	case *oraparse.UnaryExpr:
		return v.set(n, v.unaryType(n))

	case *oraparse.BinaryExpr:
		return v.set(n, v.binaryType(n))

	case *oraparse.FuncCall:
		return v.set(n, v.funcType(n))

	case *oraparse.CaseExpr:
		return v.set(n, v.caseType(n))

	default:
		return TypeInfo{}
	}
}

func literalCategory(k oraparse.LiteralKind) dialect.Category {
	switch k {
	case oraparse.LitNumber:
		return dialect.Numeric
	case oraparse.LitString:
		return dialect.Text
	case oraparse.LitNull:
		return dialect.Null
	case oraparse.LitDate:
		return dialect.Date
	case oraparse.LitTimestamp:
		return dialect.Timestamp
	case oraparse.LitBool:
		return dialect.Boolean
	default:
		return dialect.Unknown
	}
}

func (v *visitor) resolveColumn(ref *oraparse.ColumnRef) TypeInfo {
	if v.catalog == nil {
		return TypeInfo{Category: dialect.Unknown}
	}

	qualifier := strings.ToLower(ref.Qualifier)
	if qualifier != "" {
		info, ok := v.aliases[qualifier]
		if !ok {
			return TypeInfo{Category: dialect.Unknown}
		}
		return v.lookupColumn(info.schema, info.table, ref.Name)
	}

	// Unqualified reference: only resolvable unambiguously when exactly
	// one table is in scope; otherwise leave Unknown rather than guess.
	if len(v.aliases) != 1 {
		return TypeInfo{Category: dialect.Unknown}
	}
	for _, info := range v.aliases {
		return v.lookupColumn(info.schema, info.table, ref.Name)
	}
	return TypeInfo{Category: dialect.Unknown}
}

func (v *visitor) lookupColumn(schema, table, column string) TypeInfo {
	baseType, ok := v.catalog.ColumnType(schema, table, column)
	if !ok {
		return TypeInfo{Category: dialect.Unknown}
	}
	cat := dialect.CategoryOf(baseType)
	if cat == dialect.Custom {
		return TypeInfo{Category: dialect.Custom, Schema: schema, Name: baseType}
	}
	return TypeInfo{Category: cat}
}

func (v *visitor) unaryType(u *oraparse.UnaryExpr) TypeInfo {
	operand := v.visit(u.Operand)
	if strings.EqualFold(u.Op, "NOT") {
		return TypeInfo{Category: dialect.Boolean}
	}
	return operand
}

var comparisonOps = map[string]bool{
	"=": true, "<>": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"AND": true, "OR": true, "LIKE": true, "IN": true, "NOT IN": true,
	"NOT LIKE": true, "IS": true, "BETWEEN": true, "NOT BETWEEN": true,
}

func (v *visitor) binaryType(b *oraparse.BinaryExpr) TypeInfo {
	left := v.visit(b.Left)
	right := v.visit(b.Right)
	op := strings.ToUpper(b.Op)

	if comparisonOps[op] {
		return TypeInfo{Category: dialect.Boolean}
	}
	if op == "||" {
		return TypeInfo{Category: dialect.Text}
	}

	switch op {
	case "+", "-":
		// Date/timestamp arithmetic: (date +/- number) stays date-like;
		// (date - date) yields a number of days in Oracle.
		if dialect.IsDateLike(left.Category) && right.Category == dialect.Numeric {
			return left
		}
		if dialect.IsDateLike(right.Category) && left.Category == dialect.Numeric && op == "+" {
			return right
		}
		if dialect.IsDateLike(left.Category) && dialect.IsDateLike(right.Category) && op == "-" {
			return TypeInfo{Category: dialect.Numeric}
		}
		return TypeInfo{Category: dialect.Numeric}
	case "*", "/", "MOD", "**":
		return TypeInfo{Category: dialect.Numeric}
	default:
		return TypeInfo{Category: dialect.Unknown}
	}
}

// fixedReturnFuncs maps function names whose return category never depends
// on their arguments.
var fixedReturnFuncs = map[string]dialect.Category{
	"TO_CHAR":        dialect.Text,
	"TO_DATE":        dialect.Date,
	"TO_TIMESTAMP":   dialect.Timestamp,
	"TO_NUMBER":      dialect.Numeric,
	"COUNT":          dialect.Numeric,
	"INSTR":          dialect.Numeric,
	"LENGTH":         dialect.Numeric,
	"MONTHS_BETWEEN": dialect.Numeric,
	"SYSDATE":        dialect.Date,
	"SYSTIMESTAMP":   dialect.Timestamp,
	"UPPER":          dialect.Text,
	"LOWER":          dialect.Text,
	"TRIM":           dialect.Text,
	"LTRIM":          dialect.Text,
	"RTRIM":          dialect.Text,
	"SUBSTR":         dialect.Text,
	"LPAD":           dialect.Text,
	"RPAD":           dialect.Text,
	"REPLACE":        dialect.Text,
	"TRANSLATE":      dialect.Text,
	"RAWTOHEX":       dialect.Text,
	"REGEXP_SUBSTR":  dialect.Text,
	"REGEXP_REPLACE": dialect.Text,
	"ADD_MONTHS":     dialect.Date,
	"LAST_DAY":       dialect.Date,
	"TRUNC":          dialect.Date, // overridden below when the first arg is Numeric
	"ROUND":          dialect.Numeric,
}

// passthroughFuncs return the category of their first argument unchanged
// (null-coalescing and aggregate functions).
var passthroughFuncs = map[string]bool{
	"NVL": true, "NVL2": true, "COALESCE": true,
	"SUM": true, "AVG": true, "MIN": true, "MAX": true,
}

func (v *visitor) funcType(f *oraparse.FuncCall) TypeInfo {
	var argTypes []TypeInfo
	for _, a := range f.Args {
		argTypes = append(argTypes, v.visit(a))
	}

	name := strings.ToUpper(lastSegment(f.Name))

	if passthroughFuncs[name] {
		if len(argTypes) > 0 {
			return argTypes[0]
		}
		return TypeInfo{Category: dialect.Unknown}
	}

	if name == "TRUNC" && len(argTypes) > 0 && argTypes[0].Category == dialect.Numeric {
		return TypeInfo{Category: dialect.Numeric}
	}

	if cat, ok := fixedReturnFuncs[name]; ok {
		return TypeInfo{Category: cat}
	}

	return TypeInfo{Category: dialect.Unknown}
}

func lastSegment(qualified string) string {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return qualified
	}
	return qualified[idx+1:]
}

func (v *visitor) caseType(c *oraparse.CaseExpr) TypeInfo {
	v.visit(c.Operand)

	var result TypeInfo
	seen := false
	consider := func(t TypeInfo) {
		if t.Category == dialect.Null || t.Category == dialect.Unknown {
			return
		}
		if !seen {
			result = t
			seen = true
			return
		}
		if result.Category != t.Category {
			result = TypeInfo{Category: dialect.Unknown}
		}
	}

	for _, w := range c.Whens {
		v.visit(w.When)
		consider(v.visit(w.Then))
	}
	if c.Else != nil {
		consider(v.visit(c.Else))
	}

	if !seen {
		return TypeInfo{Category: dialect.Unknown}
	}
	return result
}
