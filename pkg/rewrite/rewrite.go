// SPDX-License-Identifier: Apache-2.0

// Package rewrite turns a parsed Oracle SELECT statement (pkg/oraparse)
// into PostgreSQL SQL text, using pkg/typeinfer's category cache to choose
// between date and numeric translations where Oracle overloads a function
// name across both (TRUNC, ROUND). Constructs with no faithful PostgreSQL
// equivalent are refused with a structured xerrors.TranslationError or
// xerrors.DialectUnsupported rather than silently emitting wrong SQL.
package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/dialect"
	"github.com/Sayiza/orapgsync-sub012/pkg/ident"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
	"github.com/Sayiza/orapgsync-sub012/pkg/typeinfer"
	"github.com/Sayiza/orapgsync-sub012/pkg/xerrors"
)

// SchemaResolver maps an Oracle schema.object reference (as it appears in
// a FROM clause or qualified call) to the schema it actually lives under
// once synonyms are resolved. An empty input schema means "current user's
// default schema" in the original query.
type SchemaResolver interface {
	Resolve(schema, object string) (resolvedSchema string)
}

// Rewriter holds the context a single statement's translation needs:
// resolved column types (may be the zero Result if unavailable) and the
// synonym resolver.
type Rewriter struct {
	Types    typeinfer.Result
	Resolver SchemaResolver
}

// New constructs a Rewriter. Resolver may be nil, in which case schema
// qualifiers are passed through unchanged.
func New(types typeinfer.Result, resolver SchemaResolver) *Rewriter {
	return &Rewriter{Types: types, Resolver: resolver}
}

// Render translates a single parsed SELECT statement into PostgreSQL SQL
// text.
func (r *Rewriter) Render(stmt *oraparse.SelectStatement, objectName string) (string, error) {
	if stmt.RawTail != "" {
		return "", xerrors.DialectUnsupported{
			Object:     objectName,
			Construct:  "compound or hierarchical query: " + stmt.RawTail,
			Suggestion: "rewrite CONNECT BY / set-operator queries by hand; this transpiler only translates single SELECT statements",
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if stmt.Distinct {
		b.WriteString("DISTINCT ")
	}

	cols, err := r.renderSelectList(stmt.Columns, objectName)
	if err != nil {
		return "", err
	}
	b.WriteString(cols)

	from := dropDual(stmt.From)
	if len(from) > 0 {
		fromText, err := r.renderFrom(from, objectName)
		if err != nil {
			return "", err
		}
		b.WriteString(" FROM ")
		b.WriteString(fromText)
	}

	where, limit, err := r.extractPagination(stmt.Where, objectName)
	if err != nil {
		return "", err
	}
	if where != nil {
		whereText, err := r.expr(where, objectName)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(whereText)
	}

	if len(stmt.GroupBy) > 0 {
		parts := make([]string, len(stmt.GroupBy))
		for i, e := range stmt.GroupBy {
			parts[i], err = r.expr(e, objectName)
			if err != nil {
				return "", err
			}
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(parts, ", "))

		if stmt.Having != nil {
			havingText, err := r.expr(stmt.Having, objectName)
			if err != nil {
				return "", err
			}
			b.WriteString(" HAVING ")
			b.WriteString(havingText)
		}
	}

	if len(stmt.OrderBy) > 0 {
		parts := make([]string, len(stmt.OrderBy))
		for i, o := range stmt.OrderBy {
			text, err := r.expr(o.Expr, objectName)
			if err != nil {
				return "", err
			}
			if o.Desc {
				text += " DESC"
			}
			parts[i] = text
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if limit != "" {
		b.WriteString(" LIMIT ")
		b.WriteString(limit)
	}

	return b.String(), nil
}

func (r *Rewriter) renderSelectList(items []oraparse.SelectItem, objectName string) (string, error) {
	parts := make([]string, len(items))
	for i, item := range items {
		text, err := r.expr(item.Expr, objectName)
		if err != nil {
			return "", err
		}
		if item.Alias != "" {
			text += " AS " + ident.Normalize(item.Alias)
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

func dropDual(from []oraparse.TableRef) []oraparse.TableRef {
	if len(from) != 1 {
		return from
	}
	if from[0].Subquery == nil && strings.EqualFold(from[0].Table, "DUAL") {
		return nil
	}
	return from
}

func (r *Rewriter) renderFrom(refs []oraparse.TableRef, objectName string) (string, error) {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		if ref.Subquery != nil {
			sub, err := r.Render(ref.Subquery, objectName)
			if err != nil {
				return "", err
			}
			text := "(" + sub + ")"
			if ref.Alias != "" {
				text += " AS " + ident.Normalize(ref.Alias)
			}
			parts[i] = text
			continue
		}

		schema := ref.Schema
		if r.Resolver != nil {
			schema = r.Resolver.Resolve(ref.Schema, ref.Table)
		}
		text := ident.Normalize(ref.Table)
		if schema != "" {
			text = ident.Normalize(schema) + "." + text
		}
		if ref.Alias != "" {
			text += " AS " + ident.Normalize(ref.Alias)
		}
		parts[i] = text
	}
	return strings.Join(parts, ", "), nil
}

// extractPagination looks for a top-level "ROWNUM <= n" or "ROWNUM < n"
// conjunct (spec.md's DUAL/ROWNUM/pagination family) and, if found,
// returns the remaining WHERE tree (nil if nothing is left) plus the
// LIMIT literal to use instead.
func (r *Rewriter) extractPagination(where oraparse.Expr, objectName string) (oraparse.Expr, string, error) {
	if where == nil {
		return nil, "", nil
	}
	remaining, limit, err := stripRownumClause(where, objectName)
	return remaining, limit, err
}

func stripRownumClause(e oraparse.Expr, objectName string) (oraparse.Expr, string, error) {
	if be, ok := e.(*oraparse.BinaryExpr); ok {
		if limit, ok, err := rownumLimit(be, objectName); err != nil {
			return nil, "", err
		} else if ok {
			return nil, limit, nil
		}
		if strings.EqualFold(be.Op, "AND") {
			left, leftLimit, err := stripRownumClause(be.Left, objectName)
			if err != nil {
				return nil, "", err
			}
			if leftLimit != "" {
				if left != nil {
					return &oraparse.BinaryExpr{Op: be.Op, Left: left, Right: be.Right}, leftLimit, nil
				}
				return be.Right, leftLimit, nil
			}
			right, rightLimit, err := stripRownumClause(be.Right, objectName)
			if err != nil {
				return nil, "", err
			}
			if rightLimit != "" {
				if right != nil {
					return &oraparse.BinaryExpr{Op: be.Op, Left: be.Left, Right: right}, rightLimit, nil
				}
				return be.Left, rightLimit, nil
			}
			return e, "", nil
		}
	}
	return e, "", nil
}

func rownumLimit(be *oraparse.BinaryExpr, objectName string) (string, bool, error) {
	left, ok := be.Left.(*oraparse.ColumnRef)
	if !ok || !strings.EqualFold(left.Name, "ROWNUM") {
		return "", false, nil
	}
	lit, ok := be.Right.(*oraparse.Literal)
	if !ok || lit.Kind != oraparse.LitNumber {
		return "", false, xerrors.DialectUnsupported{
			Object:     objectName,
			Construct:  "ROWNUM comparison against a non-literal bound",
			Suggestion: "rewrite as an explicit LIMIT after the migration",
		}
	}

	n, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return "", false, xerrors.TranslationError{Object: objectName, Span: "ROWNUM", Reason: "non-numeric ROWNUM bound"}
	}

	switch strings.ToUpper(be.Op) {
	case "<=":
		return strconv.FormatFloat(n, 'f', -1, 64), true, nil
	case "<":
		return strconv.FormatFloat(n-1, 'f', -1, 64), true, nil
	default:
		return "", false, nil
	}
}

func (r *Rewriter) expr(e oraparse.Expr, objectName string) (string, error) {
	switch n := e.(type) {
	case *oraparse.Literal:
		return r.literal(n), nil

	case *oraparse.ColumnRef:
		return r.columnRef(n), nil

	case *oraparse.Star:
		if n.Qualifier != "" {
			return ident.Normalize(n.Qualifier) + ".*", nil
		}
		return "*", nil

	case *oraparse.Paren:
		inner, err := r.expr(n.Inner, objectName)
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil

	case *oraparse.UnaryExpr:
		operand, err := r.expr(n.Operand, objectName)
		if err != nil {
			return "", err
		}
		if strings.EqualFold(n.Op, "NOT") {
			return "NOT " + operand, nil
		}
		return n.Op + operand, nil

	case *oraparse.BinaryExpr:
		return r.binary(n, objectName)

	case *oraparse.FuncCall:
		return r.call(n, objectName)

	case *oraparse.CaseExpr:
		return r.caseExpr(n, objectName)

	default:
		return "", xerrors.TranslationError{Object: objectName, Reason: fmt.Sprintf("unhandled expression node %T", e)}
	}
}

func (r *Rewriter) literal(lit *oraparse.Literal) string {
	switch lit.Kind {
	case oraparse.LitString:
		return "'" + strings.ReplaceAll(lit.Value, "'", "''") + "'"
	case oraparse.LitNull:
		return "NULL"
	case oraparse.LitBool:
		return strings.ToUpper(lit.Value)
	case oraparse.LitDate:
		return "DATE '" + lit.Value + "'"
	case oraparse.LitTimestamp:
		return "TIMESTAMP '" + lit.Value + "'"
	default:
		return lit.Value
	}
}

func (r *Rewriter) columnRef(ref *oraparse.ColumnRef) string {
	switch strings.ToUpper(ref.Name) {
	case "SYSDATE":
		return "CURRENT_TIMESTAMP"
	case "ROWNUM":
		return "row_number() OVER ()"
	}
	if strings.HasPrefix(ref.Name, ":") {
		return ref.Name
	}
	name := ident.Normalize(ref.Name)
	if ref.Qualifier != "" {
		return ident.Normalize(ref.Qualifier) + "." + name
	}
	return name
}

func (r *Rewriter) binary(b *oraparse.BinaryExpr, objectName string) (string, error) {
	left, err := r.expr(b.Left, objectName)
	if err != nil {
		return "", err
	}
	right, err := r.expr(b.Right, objectName)
	if err != nil {
		return "", err
	}

	op := strings.ToUpper(b.Op)
	switch op {
	case "<>":
		op = "<>"
	case "!=":
		op = "<>"
	}

	if op == "+" || op == "-" {
		return r.dateArithmetic(b, left, right, op), nil
	}
	return fmt.Sprintf("%s %s %s", left, op, right), nil
}

// dateArithmetic implements the date-arithmetic rewrite: a date plus or
// minus a number becomes a date plus or minus an explicit day interval,
// since PostgreSQL (unlike Oracle) has no implicit integer-to-interval
// conversion for timestamp arithmetic; integer + date is commutatively
// rewritten with the date operand first so the same template applies.
// date - date and numeric-only expressions pass through unchanged. When
// type inference leaves an operand's category Unknown, dateArithmetic
// falls back to the textual/column-name heuristic instead of refusing,
// so a cache miss never blocks translation outright.
func (r *Rewriter) dateArithmetic(b *oraparse.BinaryExpr, left, right, op string) string {
	leftCat, rightCat := r.argCategory(b.Left), r.argCategory(b.Right)
	leftIsDate, rightIsDate := dialect.IsDateLike(leftCat), dialect.IsDateLike(rightCat)
	if leftCat == dialect.Unknown {
		leftIsDate = looksDateLike(b.Left, left)
	}
	if rightCat == dialect.Unknown {
		rightIsDate = looksDateLike(b.Right, right)
	}

	switch {
	case leftIsDate && !rightIsDate:
		return fmt.Sprintf("%s %s ( %s * INTERVAL '1 day' )", left, op, right)
	case rightIsDate && !leftIsDate && op == "+":
		return fmt.Sprintf("%s + ( %s * INTERVAL '1 day' )", right, left)
	default:
		return fmt.Sprintf("%s %s %s", left, op, right)
	}
}

// dateHeuristicKeywords are the Oracle date-producing function names
// spec.md's fallback heuristic checks for in an operand's rendered text.
var dateHeuristicKeywords = []string{
	"SYSDATE", "TO_DATE", "ADD_MONTHS", "LAST_DAY", "CURRENT_", "DATE_TRUNC", "TO_TIMESTAMP",
}

var dateColumnPrefixes = []string{"CREATED", "MODIFIED", "UPDATED", "BIRTH", "HIRE", "START", "END"}

// looksDateLike is the column-name/function-name fallback spec.md's date
// arithmetic rule applies when type inference couldn't resolve an
// operand's category.
func looksDateLike(e oraparse.Expr, rendered string) bool {
	upper := strings.ToUpper(rendered)
	for _, kw := range dateHeuristicKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}

	ref, ok := e.(*oraparse.ColumnRef)
	if !ok {
		return false
	}
	name := strings.ToUpper(ref.Name)
	if strings.Contains(name, "DATE") || strings.Contains(name, "TIME") {
		return true
	}
	for _, prefix := range dateColumnPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return strings.HasSuffix(name, "_AT") || strings.HasSuffix(name, "_ON")
}

func (r *Rewriter) caseExpr(c *oraparse.CaseExpr, objectName string) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	if c.Operand != nil {
		operand, err := r.expr(c.Operand, objectName)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(operand)
	}
	for _, w := range c.Whens {
		when, err := r.expr(w.When, objectName)
		if err != nil {
			return "", err
		}
		then, err := r.expr(w.Then, objectName)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHEN ")
		b.WriteString(when)
		b.WriteString(" THEN ")
		b.WriteString(then)
	}
	if c.Else != nil {
		elseText, err := r.expr(c.Else, objectName)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE ")
		b.WriteString(elseText)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (r *Rewriter) argCategory(e oraparse.Expr) dialect.Category {
	return r.Types.TypeOf(e).Category
}
