// SPDX-License-Identifier: Apache-2.0

package oraparse

// NodeID uniquely identifies an AST node within a single parse so that C7's
// type cache can key on it (node_id -> TypeInfo) without retaining a
// pointer identity contract across parses, per spec.md's "AST nodes exist
// only for the lifetime of a single transpilation call" ownership rule.
type NodeID int

// Node is implemented by every AST node. ID is assigned during parsing and
// is stable only for the lifetime of the tree that produced it.
type Node interface {
	ID() NodeID
}

type base struct {
	id NodeID
}

func (b base) ID() NodeID { return b.id }

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

type exprBase struct{ base }

func (exprBase) exprNode() {}

// Literal kinds.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitNull
	LitDate
	LitTimestamp
	LitBool
)

// Literal is a constant value: numbers, quoted strings, NULL,
// DATE '...'/TIMESTAMP '...', TRUE/FALSE.
type Literal struct {
	exprBase
	Kind  LiteralKind
	Value string // raw text, e.g. "42", "hello", "2024-01-01"
}

// ColumnRef is a (possibly qualified) column or table.column reference.
// Qualifier is empty when unqualified.
type ColumnRef struct {
	exprBase
	Qualifier string
	Name      string
}

// Star represents "*" or "alias.*" in a select list.
type Star struct {
	exprBase
	Qualifier string
}

// BinaryExpr is a binary operator application, e.g. a + b, a || b.
type BinaryExpr struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is a prefix unary operator application, e.g. -a, NOT a.
type UnaryExpr struct {
	exprBase
	Op      string
	Operand Expr
}

// FuncCall is a function call, e.g. NVL(x, 0), SUBSTR(s, 1, 3).
// Over, if non-empty, is the raw text of a trailing analytic OVER(...)
// clause, captured verbatim rather than parsed (C8 passes it through
// unchanged; analytic functions are out of the translator's families).
type FuncCall struct {
	exprBase
	Name string
	Args []Expr
	Over string
}

// CaseWhen is a single WHEN/THEN branch of a CaseExpr.
type CaseWhen struct {
	When Expr
	Then Expr
}

// CaseExpr represents both simple (CASE x WHEN ...) and searched
// (CASE WHEN cond ...) forms. Operand is non-nil only for the simple form.
type CaseExpr struct {
	exprBase
	Operand Expr
	Whens   []CaseWhen
	Else    Expr
}

// Paren wraps a parenthesized expression, preserved so the rewriter can
// reproduce explicit grouping where it matters for numeric precedence.
type Paren struct {
	exprBase
	Inner Expr
}

// RawExpr captures a span of source text the parser did not need to
// understand structurally (e.g. inside an unsupported construct during
// full-prediction recovery).
type RawExpr struct {
	exprBase
	Text string
}

// TableRef is one entry of a FROM clause: schema-qualified table name plus
// optional alias. Subquery is non-nil for inline views, only produced by
// the full-prediction path.
type TableRef struct {
	Schema  string
	Table   string
	Alias   string
	Subquery *SelectStatement
}

// OrderByItem is one ORDER BY expression with its direction.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// SelectItem is one projected column of a SELECT list: an expression with
// an optional alias.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// SelectStatement is the root AST node produced by ParseSelect.
type SelectStatement struct {
	base
	Distinct bool
	Columns  []SelectItem
	From     []TableRef
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	// RawTail holds any trailing clause text the parser chose not to
	// structure (CONNECT BY, hierarchical START WITH, set operations).
	// It is appended verbatim by the rewriter after translating the rest.
	RawTail string
}
