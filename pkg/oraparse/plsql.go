// SPDX-License-Identifier: Apache-2.0

package oraparse

import "strings"

// Stmt is any PL/SQL statement node within a routine body.
type Stmt interface {
	Node
	stmtNode()
}

type stmtBase struct{ base }

func (stmtBase) stmtNode() {}

// ReturnStmt is "RETURN expr;" (functions) or bare "RETURN;" (procedures).
type ReturnStmt struct {
	stmtBase
	Value Expr // nil for a bare RETURN
}

// AssignStmt is "target := expr;".
type AssignStmt struct {
	stmtBase
	Target string
	Value  Expr
}

// SelectIntoStmt is "SELECT ... INTO var[, var...] FROM ...;".
type SelectIntoStmt struct {
	stmtBase
	Select *SelectStatement
	Into   []string
}

// IfBranch is one WHEN/THEN-equivalent branch of an IfStmt.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is "IF cond THEN ... [ELSIF cond THEN ...] [ELSE ...] END IF;".
type IfStmt struct {
	stmtBase
	Branches []IfBranch
	Else     []Stmt
}

// NullStmt is the literal "NULL;" statement stub bodies consist of.
type NullStmt struct{ stmtBase }

// RawStmt captures a statement the body parser did not model structurally
// (INSERT/UPDATE/DELETE/EXECUTE IMMEDIATE/raise, loops, cursors). Text is
// the statement's token texts joined by single spaces. C8 does not
// translate these; it emits them as a "-- NEEDS MANUAL REVIEW:" comment.
type RawStmt struct {
	stmtBase
	Text string
}

// RoutineKind distinguishes the routine flavors the boundary scanner (C6)
// enumerates.
type RoutineKind int

const (
	KindFunction RoutineKind = iota
	KindProcedure
	KindMember
	KindStatic
	KindMap
	KindOrder
	KindConstructor
)

// RoutineSignature is a parsed routine header.
type RoutineSignature struct {
	Kind       RoutineKind
	Name       string
	Params     []SignatureParam
	ReturnType string // functions only
}

// SignatureParam is one parameter of a routine signature.
type SignatureParam struct {
	Name      string
	Direction string // IN, OUT, IN OUT; empty defaults to IN
	Type      string
}

// RoutineAST is the parsed form of a single function or procedure body.
type RoutineAST struct {
	Signature RoutineSignature
	Body      []Stmt
}

// PackageBodyAST is the parsed form of a package body: one RoutineAST per
// member found by the internal boundary walk.
type PackageBodyAST struct {
	Routines []RoutineAST
}

// PackageSpecAST is the parsed form of a package spec: signatures only, no
// bodies (forward declarations).
type PackageSpecAST struct {
	Signatures []RoutineSignature
}

// ParseFunctionBody parses a single isolated "FUNCTION name(...) RETURN
// type IS ... BEGIN ... END;" span, as produced by the boundary scanner
// (C6) or supplied whole for a standalone function.
func (p *Parser) ParseFunctionBody(text string) (*RoutineAST, error) {
	return p.parseRoutine(text, KindFunction)
}

// ParseProcedureBody parses a single isolated "PROCEDURE name(...) IS ...
// BEGIN ... END;" span.
func (p *Parser) ParseProcedureBody(text string) (*RoutineAST, error) {
	return p.parseRoutine(text, KindProcedure)
}

func (p *Parser) parseRoutine(text string, kind RoutineKind) (ast *RoutineAST, err error) {
	defer func() { clearCache(p.predCache) }()

	toks, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	p.reset(toks)
	p.full = true // routine bodies always use the recovering grammar: PL/SQL statement variety is too broad for a strict fast path to be useful here.

	sig, err := p.parseSignature(kind)
	if err != nil {
		return nil, err
	}

	if !p.isKeyword(p.peek(), "IS") && !p.isKeyword(p.peek(), "AS") {
		return nil, p.errorf("expected IS/AS, got %s", p.peek())
	}
	p.advance()

	// Skip any declare section up to BEGIN.
	for !p.isKeyword(p.peek(), "BEGIN") && !p.atEOF() {
		p.advance()
	}
	if p.atEOF() {
		return nil, p.errorf("missing BEGIN")
	}
	p.advance()

	body, err := p.parseStmtsUntil("END")
	if err != nil {
		return nil, err
	}

	return &RoutineAST{Signature: sig, Body: body}, nil
}

func (p *Parser) parseSignature(kind RoutineKind) (RoutineSignature, error) {
	// Skip MEMBER/STATIC/CONSTRUCTOR qualifiers already classified by the
	// boundary scanner; tolerate them appearing in the raw text too.
	for {
		t := p.peek()
		if p.isKeyword(t, "MEMBER") || p.isKeyword(t, "STATIC") || p.isKeyword(t, "FINAL") || p.isKeyword(t, "OVERRIDING") {
			p.advance()
			continue
		}
		break
	}

	if p.isKeyword(p.peek(), "FUNCTION") || p.isKeyword(p.peek(), "PROCEDURE") || p.isKeyword(p.peek(), "CONSTRUCTOR") {
		p.advance()
	}

	sig := RoutineSignature{Kind: kind, Name: p.advance().Text}

	if p.isOp(p.peek(), "(") {
		p.advance()
		for !p.isOp(p.peek(), ")") && !p.atEOF() {
			param := SignatureParam{Name: p.advance().Text, Direction: "IN"}
			dir := p.parseDirection()
			if dir != "" {
				param.Direction = dir
			}
			var typeParts []string
			for !p.isOp(p.peek(), ",") && !p.isOp(p.peek(), ")") && !p.atEOF() {
				typeParts = append(typeParts, p.advance().Text)
			}
			param.Type = strings.Join(typeParts, " ")
			sig.Params = append(sig.Params, param)
			if p.isOp(p.peek(), ",") {
				p.advance()
			}
		}
		if p.isOp(p.peek(), ")") {
			p.advance()
		}
	}

	if kind == KindFunction && p.isKeyword(p.peek(), "RETURN") {
		p.advance()
		var typeParts []string
		for !p.isKeyword(p.peek(), "IS") && !p.isKeyword(p.peek(), "AS") && !p.isOp(p.peek(), ";") && !p.atEOF() {
			typeParts = append(typeParts, p.advance().Text)
		}
		sig.ReturnType = strings.Join(typeParts, " ")
	}

	return sig, nil
}

func (p *Parser) parseDirection() string {
	var parts []string
	for {
		t := p.peek()
		if p.isKeyword(t, "IN") || p.isKeyword(t, "OUT") {
			parts = append(parts, strings.ToUpper(t.Text))
			p.advance()
			continue
		}
		break
	}
	return strings.Join(parts, " ")
}

// parseStmtsUntil parses statements until a top-level occurrence of the
// given terminal keyword (typically "END"), which it consumes along with
// its trailing ";" and optional routine name / semicolon.
func (p *Parser) parseStmtsUntil(terminal string) ([]Stmt, error) {
	var stmts []Stmt
	for {
		if p.atEOF() {
			return stmts, nil
		}
		if p.isKeyword(p.peek(), terminal) {
			p.advance()
			// Optional trailing identifier (END <name>) and ";".
			if p.peek().Kind == TokIdent && !isKeyword(p.peek().Text) {
				p.advance()
			}
			if p.isOp(p.peek(), ";") {
				p.advance()
			}
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			p.recordAndSkip(err.Error())
			continue
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseStmt() (Stmt, error) {
	t := p.peek()

	switch {
	case p.isKeyword(t, "NULL"):
		p.advance()
		p.consumeSemi()
		return &NullStmt{stmtBase{base{p.newID()}}}, nil

	case p.isKeyword(t, "RETURN"):
		p.advance()
		if p.isOp(p.peek(), ";") {
			p.advance()
			return &ReturnStmt{stmtBase: stmtBase{base{p.newID()}}}, nil
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		p.consumeSemi()
		return &ReturnStmt{stmtBase: stmtBase{base{p.newID()}}, Value: val}, nil

	case p.isKeyword(t, "IF"):
		return p.parseIf()

	case p.isKeyword(t, "SELECT"):
		return p.parseSelectInto()

	default:
		return p.parseAssignOrRaw()
	}
}

func (p *Parser) consumeSemi() {
	if p.isOp(p.peek(), ";") {
		p.advance()
	}
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // IF
	stmt := &IfStmt{stmtBase: stmtBase{base{p.newID()}}}

	for {
		cond, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if !p.isKeyword(p.peek(), "THEN") {
			return nil, p.errorf("expected THEN, got %s", p.peek())
		}
		p.advance()
		body, err := p.parseStmtsUntilAny("ELSIF", "ELSE", "END")
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})

		if p.isKeyword(p.peek(), "ELSIF") {
			p.advance()
			continue
		}
		break
	}

	if p.isKeyword(p.peek(), "ELSE") {
		p.advance()
		body, err := p.parseStmtsUntilAny("END")
		if err != nil {
			return nil, err
		}
		stmt.Else = body
	}

	if p.isKeyword(p.peek(), "END") {
		p.advance()
		if p.isKeyword(p.peek(), "IF") {
			p.advance()
		}
		p.consumeSemi()
	}

	return stmt, nil
}

// parseStmtsUntilAny parses statements until a top-level occurrence of any
// of the given keywords, WITHOUT consuming it (the caller decides what to
// do next, unlike parseStmtsUntil which always consumes "END").
func (p *Parser) parseStmtsUntilAny(terminals ...string) ([]Stmt, error) {
	var stmts []Stmt
	for {
		if p.atEOF() {
			return stmts, nil
		}
		for _, term := range terminals {
			if p.isKeyword(p.peek(), term) {
				return stmts, nil
			}
		}
		stmt, err := p.parseStmt()
		if err != nil {
			p.recordAndSkip(err.Error())
			continue
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) parseSelectInto() (Stmt, error) {
	sel, err := p.parseSelectIntoInner()
	if err != nil {
		return nil, err
	}
	p.consumeSemi()
	return sel, nil
}

// parseSelectIntoInner parses "SELECT <list> INTO <vars> FROM ... [WHERE ...]"
// by reusing the SELECT grammar with an INTO clause spliced out before
// FROM, since INTO has no equivalent in a bare SELECT statement.
func (p *Parser) parseSelectIntoInner() (*SelectIntoStmt, error) {
	p.advance() // SELECT
	stmt := &SelectStatement{base: base{p.newID()}}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = items

	var into []string
	if p.isKeyword(p.peek(), "INTO") {
		p.advance()
		for {
			into = append(into, p.advance().Text)
			if p.isOp(p.peek(), ",") {
				p.advance()
				continue
			}
			break
		}
	}

	if p.isKeyword(p.peek(), "FROM") {
		p.advance()
		from, err := p.parseFromList()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}
	if p.isKeyword(p.peek(), "WHERE") {
		p.advance()
		where, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	return &SelectIntoStmt{stmtBase: stmtBase{base{p.newID()}}, Select: stmt, Into: into}, nil
}

// parseAssignOrRaw handles "target := expr;" and falls back to capturing
// any other statement verbatim up to its terminating top-level ";".
func (p *Parser) parseAssignOrRaw() (Stmt, error) {
	start := p.pos
	if p.peek().Kind == TokIdent {
		name := p.peek().Text
		save := p.pos
		p.advance()
		if p.isOp(p.peek(), ":=") {
			p.advance()
			val, err := p.parseExpr(0)
			if err != nil {
				p.pos = save
				return p.parseRawStmt(start)
			}
			p.consumeSemi()
			return &AssignStmt{stmtBase: stmtBase{base{p.newID()}}, Target: name, Value: val}, nil
		}
		p.pos = save
	}
	return p.parseRawStmt(start)
}

func (p *Parser) parseRawStmt(start int) (Stmt, error) {
	p.pos = start
	var b strings.Builder
	depth := 0
	for {
		if p.atEOF() {
			break
		}
		t := p.peek()
		if depth == 0 && p.isOp(t, ";") {
			p.advance()
			break
		}
		if depth == 0 && (p.isKeyword(t, "END") || p.isKeyword(t, "ELSIF") || p.isKeyword(t, "ELSE")) {
			break
		}
		if p.isOp(t, "(") {
			depth++
		}
		if p.isOp(t, ")") {
			depth--
		}
		b.WriteString(p.advance().Text)
		b.WriteByte(' ')
	}
	return &RawStmt{stmtBase: stmtBase{base{p.newID()}}, Text: strings.TrimSpace(b.String())}, nil
}

// ParsePackageSpec parses a package spec's forward declarations: routine
// signatures terminated by ";" with no body, per spec.md §4.4's rule that
// forward declarations (no IS/AS) are discarded by the boundary scanner;
// a package spec is nothing but forward declarations, so every signature
// found here is kept (there is no body to discard it in favor of).
func (p *Parser) ParsePackageSpec(text string) (ast *PackageSpecAST, err error) {
	defer func() { clearCache(p.predCache) }()

	toks, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}
	p.reset(toks)
	p.full = true

	spec := &PackageSpecAST{}
	for !p.atEOF() {
		t := p.peek()
		if p.isKeyword(t, "FUNCTION") {
			sig, err := p.parseSignature(KindFunction)
			if err != nil {
				p.recordAndSkip(err.Error())
				continue
			}
			p.consumeSemi()
			spec.Signatures = append(spec.Signatures, sig)
			continue
		}
		if p.isKeyword(t, "PROCEDURE") {
			sig, err := p.parseSignature(KindProcedure)
			if err != nil {
				p.recordAndSkip(err.Error())
				continue
			}
			p.consumeSemi()
			spec.Signatures = append(spec.Signatures, sig)
			continue
		}
		p.advance()
	}
	return spec, nil
}

// ParsePackageBody parses an entire package body by locating each member's
// signature/body span with a lightweight top-level token walk (mirroring,
// at coarser grain, the boundary scanner's state machine) and parsing each
// span with parseRoutine. Pipelines that already ran the boundary scanner
// (C6) should call ParseFunctionBody/ParseProcedureBody per span instead;
// this entry point exists for package bodies small enough not to need C6's
// O(lines) bypass.
func (p *Parser) ParsePackageBody(text string) (*PackageBodyAST, error) {
	toks, err := NewLexer(text).Tokenize()
	if err != nil {
		return nil, err
	}

	ast := &PackageBodyAST{}
	i := 0
	for i < len(toks) && toks[i].Kind != TokEOF {
		t := toks[i]
		var kind RoutineKind
		switch {
		case strings.EqualFold(t.Text, "FUNCTION") && t.Kind == TokIdent:
			kind = KindFunction
		case strings.EqualFold(t.Text, "PROCEDURE") && t.Kind == TokIdent:
			kind = KindProcedure
		default:
			i++
			continue
		}

		start := i
		depth := 0
		hasBody := false
		j := i
		for ; j < len(toks) && toks[j].Kind != TokEOF; j++ {
			tj := toks[j]
			if tj.Kind == TokOp && tj.Text == "(" {
				depth++
			}
			if tj.Kind == TokOp && tj.Text == ")" {
				depth--
			}
			if depth == 0 && tj.Kind == TokIdent && (strings.EqualFold(tj.Text, "IS") || strings.EqualFold(tj.Text, "AS")) {
				hasBody = true
			}
			if depth == 0 && tj.Kind == TokOp && tj.Text == ";" && !hasBody {
				// forward declaration: discard per spec.md §4.4.
				break
			}
			if hasBody && tj.Kind == TokIdent && strings.EqualFold(tj.Text, "END") {
				j++ // consume END
				if j < len(toks) && toks[j].Kind == TokIdent && !isKeyword(toks[j].Text) {
					j++
				}
				if j < len(toks) && toks[j].Kind == TokOp && toks[j].Text == ";" {
					j++
				}
				break
			}
		}

		if hasBody {
			span := joinTokens(toks[start:j])
			routine, err := p.parseRoutine(span, kind)
			if err == nil {
				ast.Routines = append(ast.Routines, *routine)
			}
		}

		i = j
		if i <= start {
			i = start + 1
		}
	}

	return ast, nil
}

func joinTokens(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind {
		case TokString:
			b.WriteByte('\'')
			b.WriteString(strings.ReplaceAll(t.Text, "'", "''"))
			b.WriteByte('\'')
		case TokQuotedIdent:
			b.WriteByte('"')
			b.WriteString(t.Text)
			b.WriteByte('"')
		default:
			b.WriteString(t.Text)
		}
		b.WriteByte(' ')
	}
	return b.String()
}
