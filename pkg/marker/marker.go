// Package marker parses PEP 508 environment-marker expressions.
//
// An environment marker is a boolean expression over environment variables
// such as sys_platform and python_version, for example:
//
//	python_version >= "3.6" and sys_platform == "win32"
//
// The package answers the two questions the exporter needs per dependency:
// which platform (if any) the requirement is pinned to ([Platform]), and
// which language versions the marker admits ([PythonVersions]).
package marker

import (
	"strings"
	"unicode"

	"github.com/matzehuels/lockport/pkg/errors"
)

// Expr is a node in a parsed marker expression tree.
type Expr interface {
	isExpr()
}

// Comparison is a single clause comparing a marker variable to a literal,
// e.g. sys_platform == "linux". The variable is always on the Var side;
// clauses written literal-first are mirrored during parsing.
type Comparison struct {
	Var   string // marker variable name (e.g. "sys_platform")
	Op    string // comparison operator (==, !=, <, <=, >, >=, ~=, in, not in)
	Value string // unquoted literal operand
}

// And is a conjunction of sub-expressions.
type And struct {
	Exprs []Expr
}

// Or is a disjunction of sub-expressions.
type Or struct {
	Exprs []Expr
}

func (Comparison) isExpr() {}
func (And) isExpr()        {}
func (Or) isExpr()         {}

// Parse parses a marker expression into an expression tree.
// An empty expression parses to nil (a marker that is always true).
func Parse(expr string) (Expr, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{input: expr, toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, errors.New(errors.ErrCodeInvalidMarker,
			"unexpected %q in marker %q", p.toks[p.pos].text, expr)
	}
	return e, nil
}

// Walk visits every comparison clause in e, left to right.
func Walk(e Expr, fn func(Comparison)) {
	switch v := e.(type) {
	case Comparison:
		fn(v)
	case And:
		for _, sub := range v.Exprs {
			Walk(sub, fn)
		}
	case Or:
		for _, sub := range v.Exprs {
			Walk(sub, fn)
		}
	}
}

// =============================================================================
// Lexer
// =============================================================================

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

// operators accepted in marker clauses. "===" is arbitrary equality per
// PEP 440; it parses like "==" but contributes no version range.
var operators = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true,
	">": true, ">=": true, "~=": true, "===": true,
}

func lex(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, errors.New(errors.ErrCodeInvalidMarker,
					"unterminated string in marker %q", expr)
			}
			toks = append(toks, token{tokString, string(runes[i+1 : j])})
			i = j + 1
		case strings.ContainsRune("<>=!~", r):
			j := i
			for j < len(runes) && strings.ContainsRune("<>=!~", runes[j]) {
				j++
			}
			op := string(runes[i:j])
			if !operators[op] {
				return nil, errors.New(errors.ErrCodeInvalidMarker,
					"unknown operator %q in marker %q", op, expr)
			}
			toks = append(toks, token{tokOp, op})
			i = j
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) ||
				strings.ContainsRune("._-", runes[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, string(runes[i:j])})
			i = j
		default:
			return nil, errors.New(errors.ErrCodeInvalidMarker,
				"unexpected character %q in marker %q", string(r), expr)
		}
	}

	return toks, nil
}

// =============================================================================
// Parser
// =============================================================================

// parser is a recursive-descent parser over the token stream.
// Grammar (standard precedence, "and" binds tighter than "or"):
//
//	or      := and ("or" and)*
//	and     := primary ("and" primary)*
//	primary := "(" or ")" | comparison
type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	exprs := []Expr{first}
	for p.peekIdent("or") {
		p.pos++
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return Or{Exprs: exprs}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	exprs := []Expr{first}
	for p.peekIdent("and") {
		p.pos++
		next, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return And{Exprs: exprs}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == tokLParen {
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return nil, errors.New(errors.ErrCodeInvalidMarker,
				"missing closing parenthesis in marker %q", p.input)
		}
		p.pos++
		return e, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, leftIsVar, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	right, rightIsVar, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	switch {
	case leftIsVar && !rightIsVar:
		return Comparison{Var: left, Op: op, Value: right}, nil
	case !leftIsVar && rightIsVar:
		return Comparison{Var: right, Op: mirror(op), Value: left}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidMarker,
			"comparison needs one variable and one literal in marker %q", p.input)
	}
}

func (p *parser) parseOperand() (text string, isVar bool, err error) {
	if p.pos >= len(p.toks) {
		return "", false, errors.New(errors.ErrCodeInvalidMarker,
			"unexpected end of marker %q", p.input)
	}
	tok := p.toks[p.pos]
	switch tok.kind {
	case tokIdent:
		p.pos++
		return tok.text, true, nil
	case tokString:
		p.pos++
		return tok.text, false, nil
	default:
		return "", false, errors.New(errors.ErrCodeInvalidMarker,
			"expected operand, got %q in marker %q", tok.text, p.input)
	}
}

func (p *parser) parseOperator() (string, error) {
	if p.pos >= len(p.toks) {
		return "", errors.New(errors.ErrCodeInvalidMarker,
			"unexpected end of marker %q", p.input)
	}
	tok := p.toks[p.pos]
	if tok.kind == tokOp {
		p.pos++
		return tok.text, nil
	}
	if tok.kind == tokIdent && tok.text == "in" {
		p.pos++
		return "in", nil
	}
	if tok.kind == tokIdent && tok.text == "not" {
		p.pos++
		if !p.peekIdent("in") {
			return "", errors.New(errors.ErrCodeInvalidMarker,
				"expected \"in\" after \"not\" in marker %q", p.input)
		}
		p.pos++
		return "not in", nil
	}
	return "", errors.New(errors.ErrCodeInvalidMarker,
		"expected operator, got %q in marker %q", tok.text, p.input)
}

func (p *parser) peekIdent(word string) bool {
	return p.pos < len(p.toks) &&
		p.toks[p.pos].kind == tokIdent &&
		p.toks[p.pos].text == word
}

// mirror flips a relational operator so the variable can be moved to the
// left-hand side ("3.6" < python_version becomes python_version > "3.6").
// Membership operators are not mirrored; they contribute no version bound.
func mirror(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	default:
		return op
	}
}
