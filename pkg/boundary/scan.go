// SPDX-License-Identifier: Apache-2.0

// Package boundary locates routine signature and body spans inside a
// package spec or body's source text without invoking the full SQL/PL-SQL
// parser (pkg/oraparse). It is a plain state-machine walk over the text:
// cheap enough to run once per package while the full parser only ever
// sees one isolated routine at a time.
package boundary

import (
	"strings"
	"unicode"

	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
)

// Span is a half-open byte range [Start, End) into the source text that was
// scanned.
type Span struct {
	Start int
	End   int
}

func (s Span) Text(src string) string { return src[s.Start:s.End] }

// Member describes one routine found by Scan.
type Member struct {
	Kind          oraparse.RoutineKind
	Name          string
	SignatureSpan Span
	BodySpan      Span // zero value when HasBody is false
	HasBody       bool
}

// scanState is the state machine's mode: top_level is scanning for the next
// routine keyword; in_signature is walking a signature up to IS/AS or a
// forward-declaration ";"; in_body is walking a body tracking nested
// BEGIN/IF/LOOP/CASE blocks until the matching bare END.
type scanState int

const (
	stateTopLevel scanState = iota
	stateInSignature
	stateInBody
)

// Scan walks src and returns every member it finds. Forward declarations
// (signature terminated by ";" with no IS/AS) are discarded, matching the
// rule that only implemented routines participate in stub/implementation
// synthesis.
func Scan(src string) []Member {
	w := newWalker(src)
	var members []Member

	for {
		kw, start, ok := w.nextRoutineKeyword()
		if !ok {
			break
		}
		kind, ok := kindForKeyword(kw)
		if !ok {
			continue
		}

		name := w.nextIdentifier()

		sigStart := start
		sigEnd, hasBody, bodyStart, bodyEnd := w.scanSignatureAndBody()
		if !hasBody {
			continue
		}

		m := Member{
			Kind:          kind,
			Name:          name,
			SignatureSpan: Span{Start: sigStart, End: sigEnd},
			HasBody:       hasBody,
		}
		if hasBody {
			m.BodySpan = Span{Start: bodyStart, End: bodyEnd}
		}
		members = append(members, m)
	}

	return members
}

// kindForKeyword maps a routine keyword as returned by nextRoutineKeyword
// (the trailing FUNCTION/PROCEDURE/CONSTRUCTOR, optionally preceded by
// space-separated MEMBER/STATIC/MAP/ORDER modifiers) to the RoutineKind it
// denotes. MAP and ORDER always appear together with MEMBER on an object
// type's ordering method ("MAP MEMBER FUNCTION"/"ORDER MEMBER FUNCTION")
// and take priority over the plain MEMBER kind.
func kindForKeyword(kw string) (oraparse.RoutineKind, bool) {
	parts := strings.Fields(strings.ToUpper(kw))
	if len(parts) == 0 {
		return 0, false
	}
	trailing := parts[len(parts)-1]
	modifiers := parts[:len(parts)-1]

	switch trailing {
	case "CONSTRUCTOR":
		return oraparse.KindConstructor, true
	case "FUNCTION", "PROCEDURE":
	default:
		return 0, false
	}

	for _, m := range modifiers {
		if m == "MAP" {
			return oraparse.KindMap, true
		}
	}
	for _, m := range modifiers {
		if m == "ORDER" {
			return oraparse.KindOrder, true
		}
	}
	for _, m := range modifiers {
		if m == "STATIC" {
			return oraparse.KindStatic, true
		}
	}
	for _, m := range modifiers {
		if m == "MEMBER" {
			return oraparse.KindMember, true
		}
	}

	if trailing == "FUNCTION" {
		return oraparse.KindFunction, true
	}
	return oraparse.KindProcedure, true
}

// walker is the comment/string-aware cursor the state machine rides on. It
// exposes word-at-a-time movement rather than a rune-at-a-time one, since
// the boundary scanner only ever needs to recognize whole keywords.
type walker struct {
	src []rune
	pos int
}

func newWalker(src string) *walker {
	return &walker{src: []rune(src)}
}

func (w *walker) eof() bool { return w.pos >= len(w.src) }

func (w *walker) peek() rune {
	if w.eof() {
		return 0
	}
	return w.src[w.pos]
}

// skipTrivia advances past whitespace, line comments and block comments,
// and past string/quoted-identifier literals (whose contents must never be
// mistaken for keywords).
func (w *walker) skipTrivia() {
	for !w.eof() {
		c := w.peek()
		switch {
		case unicode.IsSpace(c):
			w.pos++
		case c == '-' && w.at(w.pos+1) == '-':
			for !w.eof() && w.peek() != '\n' {
				w.pos++
			}
		case c == '/' && w.at(w.pos+1) == '*':
			w.pos += 2
			for !w.eof() && !(w.peek() == '*' && w.at(w.pos+1) == '/') {
				w.pos++
			}
			if !w.eof() {
				w.pos += 2
			}
		case c == '\'':
			w.pos++
			for !w.eof() {
				if w.peek() == '\'' {
					if w.at(w.pos+1) == '\'' {
						w.pos += 2
						continue
					}
					w.pos++
					break
				}
				w.pos++
			}
		case c == '"':
			w.pos++
			for !w.eof() && w.peek() != '"' {
				w.pos++
			}
			if !w.eof() {
				w.pos++
			}
		default:
			return
		}
	}
}

func (w *walker) at(i int) rune {
	if i < 0 || i >= len(w.src) {
		return 0
	}
	return w.src[i]
}

func isWordRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$' || c == '#'
}

// readWord reads one identifier/keyword starting at the current position,
// which must already sit on a word rune; it does not skip trivia first.
func (w *walker) readWord() string {
	start := w.pos
	for !w.eof() && isWordRune(w.peek()) {
		w.pos++
	}
	return string(w.src[start:w.pos])
}

// nextRoutineKeyword scans forward for the next top-level occurrence of
// FUNCTION, PROCEDURE or CONSTRUCTOR, optionally preceded by a run of
// MEMBER/STATIC/MAP/ORDER modifier keywords (as in "MAP MEMBER FUNCTION"),
// skipping over any routine body it passes through along the way (so a
// nested END inside an earlier routine is never mistaken for a new
// top-level keyword). It returns the keyword text — the modifiers and the
// trailing FUNCTION/PROCEDURE/CONSTRUCTOR joined by spaces — the byte
// offset the first modifier (or the keyword itself) starts at, and false
// once it reaches end of input.
func (w *walker) nextRoutineKeyword() (string, int, bool) {
	var modifiers []string
	modStart := 0
	for {
		w.skipTrivia()
		if w.eof() {
			return "", 0, false
		}
		start := w.pos
		if !isWordRune(w.peek()) {
			w.pos++
			modifiers = nil
			continue
		}
		word := w.readWord()
		switch strings.ToUpper(word) {
		case "FUNCTION", "PROCEDURE", "CONSTRUCTOR":
			if len(modifiers) > 0 {
				return strings.Join(append(modifiers, strings.ToUpper(word)), " "), modStart, true
			}
			return word, start, true
		case "MEMBER", "STATIC", "MAP", "ORDER":
			if len(modifiers) == 0 {
				modStart = start
			}
			modifiers = append(modifiers, strings.ToUpper(word))
		default:
			modifiers = nil
		}
	}
}

// nextIdentifier skips trivia and reads the next word as a routine name.
func (w *walker) nextIdentifier() string {
	w.skipTrivia()
	if w.eof() || !isWordRune(w.peek()) {
		return ""
	}
	return w.readWord()
}

// scanSignatureAndBody walks from the current position (just past the
// routine name) through the parameter list and return clause, then either
// a forward-declaration ";" (no body) or "IS"/"AS" followed by an optional
// declare section, "BEGIN", the statement sequence and the matching "END".
// It returns the signature's end offset, whether a body was found, and the
// body's [start, end) span.
func (w *walker) scanSignatureAndBody() (sigEnd int, hasBody bool, bodyStart, bodyEnd int) {
	depth := 0
	for {
		w.skipTrivia()
		if w.eof() {
			return w.pos, false, 0, 0
		}
		c := w.peek()
		if c == '(' {
			depth++
			w.pos++
			continue
		}
		if c == ')' {
			depth--
			w.pos++
			continue
		}
		if depth > 0 {
			w.pos++
			continue
		}
		if c == ';' {
			w.pos++
			return w.pos, false, 0, 0
		}
		if isWordRune(c) {
			wordStart := w.pos
			word := w.readWord()
			up := strings.ToUpper(word)
			if up == "IS" || up == "AS" {
				sigEnd = wordStart
				bodyStart = wordStart
				bodyEnd = w.scanBody()
				return sigEnd, true, bodyStart, bodyEnd
			}
			continue
		}
		w.pos++
	}
}

// scanBody walks from just after the routine's IS/AS through any declare
// section, BEGIN, nested IF/LOOP/CASE/BEGIN blocks, to the matching END of
// the outermost BEGIN, returning the offset just past the trailing ";".
func (w *walker) scanBody() int {
	// Skip the declare section up to BEGIN.
	for {
		w.skipTrivia()
		if w.eof() {
			return w.pos
		}
		if isWordRune(w.peek()) {
			start := w.pos
			word := w.readWord()
			if strings.EqualFold(word, "BEGIN") {
				w.pos = start
				break
			}
			continue
		}
		w.pos++
	}

	var stack []string
	for {
		w.skipTrivia()
		if w.eof() {
			return w.pos
		}
		if !isWordRune(w.peek()) {
			w.pos++
			continue
		}
		word := w.readWord()
		up := strings.ToUpper(word)

		switch up {
		case "BEGIN", "IF", "LOOP", "CASE":
			stack = append(stack, up)
		case "END":
			w.skipTrivia()
			next := w.peekWordUpper()
			switch next {
			case "IF":
				w.readWord()
				stack = popIf(stack, "IF")
			case "LOOP":
				w.readWord()
				stack = popIf(stack, "LOOP")
			case "CASE":
				w.readWord()
				stack = popIf(stack, "CASE")
			default:
				stack = popIf(stack, "BEGIN")
			}
			if len(stack) == 0 {
				// Optional trailing routine name, then ";".
				w.skipTrivia()
				if isWordRune(w.peek()) {
					w.readWord()
				}
				w.skipTrivia()
				if w.peek() == ';' {
					w.pos++
				}
				return w.pos
			}
		}
	}
}

func popIf(stack []string, want string) []string {
	if len(stack) == 0 {
		return stack
	}
	top := stack[len(stack)-1]
	if top == want || want == "BEGIN" {
		return stack[:len(stack)-1]
	}
	// Mismatched closer (malformed input): pop whatever is on top so the
	// walk still terminates rather than looping forever.
	return stack[:len(stack)-1]
}

func (w *walker) peekWordUpper() string {
	save := w.pos
	if !isWordRune(w.peek()) {
		return ""
	}
	word := w.readWord()
	w.pos = save
	return strings.ToUpper(word)
}
