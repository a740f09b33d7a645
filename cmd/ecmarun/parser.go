package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-ecma/engine/cps"
	"github.com/go-ecma/engine/value"
)

// parseDemoScript is a deliberately tiny recursive-descent parser over a
// single expression statement: number/string literals, identifiers,
// `ident.prop`/`ident(args...)`, and the binary operators cps.Binary
// understands. Tokenizing and parsing full ECMAScript source is an
// external collaborator the engine module itself never implements
// (spec.md §1); this is the minimum needed for ecmarun to demonstrate the
// embedding API end to end against a real source string instead of a
// hand-built cps.Node tree, not a substitute for a real parser.
func parseDemoScript(source string) (*cps.Node, error) {
	p := &demoParser{src: []rune(strings.TrimSpace(source))}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return &cps.Node{Body: []*cps.Node{cps.ExprStmt(expr)}}, nil
}

type demoParser struct {
	src []rune
	pos int
}

var binaryOps = []string{"===", "!==", "<=", ">=", "&&", "||", "+", "-", "*", "/", "%", "<", ">"}

func (p *demoParser) parseExpr() (*cps.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.matchOp()
		if op == "" {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = cps.Binary(op, left, right)
	}
}

func (p *demoParser) matchOp() string {
	for _, op := range binaryOps {
		if strings.HasPrefix(string(p.src[p.pos:]), op) {
			p.pos += len(op)
			return op
		}
	}
	return ""
}

func (p *demoParser) parseUnary() (*cps.Node, error) {
	p.skipSpace()
	if p.peek() == '!' {
		p.pos++
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return cps.Not(e), nil
	}
	return p.parsePrimary()
}

func (p *demoParser) parsePrimary() (*cps.Node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch c := p.peek(); {
	case c == '(':
		p.pos++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, fmt.Errorf("expected ')' at offset %d", p.pos)
		}
		p.pos++
		return p.parseTrailers(e)

	case c == '"' || c == '\'':
		return p.parseString(c)

	case unicode.IsDigit(c):
		return p.parseNumber()

	case unicode.IsLetter(c) || c == '_':
		return p.parseIdentOrCall()

	default:
		return nil, fmt.Errorf("unexpected character %q at offset %d", c, p.pos)
	}
}

func (p *demoParser) parseString(quote rune) (*cps.Node, error) {
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, fmt.Errorf("unterminated string literal")
	}
	s := string(p.src[start:p.pos])
	p.pos++
	return &cps.Node{Kind: cps.KindLiteral, Value: value.String(s)}, nil
}

func (p *demoParser) parseNumber() (*cps.Node, error) {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
		p.pos++
	}
	n, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal: %w", err)
	}
	return &cps.Node{Kind: cps.KindLiteral, Value: value.Number(n)}, nil
}

func (p *demoParser) parseIdentOrCall() (*cps.Node, error) {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	name := string(p.src[start:p.pos])

	switch name {
	case "true":
		return &cps.Node{Kind: cps.KindLiteral, Value: value.Bool(true)}, nil
	case "false":
		return &cps.Node{Kind: cps.KindLiteral, Value: value.Bool(false)}, nil
	case "undefined":
		return &cps.Node{Kind: cps.KindLiteral, Value: value.Undefined}, nil
	}

	return p.parseTrailers(cps.Ident(name))
}

// parseTrailers handles zero or more `.prop`/`(args)` suffixes applied to
// base, left-associatively — enough for `console.log("hi")`-shaped calls.
func (p *demoParser) parseTrailers(base *cps.Node) (*cps.Node, error) {
	for {
		p.skipSpace()
		switch p.peek() {
		case '.':
			p.pos++
			start := p.pos
			for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || unicode.IsDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
				p.pos++
			}
			if start == p.pos {
				return nil, fmt.Errorf("expected property name at offset %d", p.pos)
			}
			base = cps.Member(base, string(p.src[start:p.pos]))

		case '(':
			p.pos++
			var args []*cps.Node
			p.skipSpace()
			if p.peek() != ')' {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					p.skipSpace()
					if p.peek() == ',' {
						p.pos++
						continue
					}
					break
				}
			}
			p.skipSpace()
			if p.peek() != ')' {
				return nil, fmt.Errorf("expected ')' at offset %d", p.pos)
			}
			p.pos++
			base = cps.Call(base, args...)

		default:
			return base, nil
		}
	}
}

func (p *demoParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *demoParser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}
