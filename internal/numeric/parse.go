// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package numeric

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"code.hybscloud.com/uarray"
)

// ErrSyntax is returned for malformed expressions.
var ErrSyntax = errors.New("numeric: syntax error")

// Parse builds an unevaluated expression from prefix notation, e.g.
//
//	(add 1 (neg 2.5))
//
// Numbers become [Literal] boxes; lists become calls of the named
// operation. A bare number parses to a single Literal box.
func Parse(src string) (*uarray.Box, error) {
	p := &parser{toks: tokenize(src)}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	b, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, p.toks[p.pos])
	}
	return b, nil
}

func tokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range src {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) expr() (*uarray.Box, error) {
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	tok := p.toks[p.pos]
	p.pos++
	switch tok {
	case ")":
		return nil, fmt.Errorf("%w: unexpected )", ErrSyntax)
	case "(":
	default:
		return uarray.NewBox(Literal(tok)), nil
	}
	if p.pos >= len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	name := p.toks[p.pos]
	p.pos++
	op, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", ErrSyntax, name)
	}
	var args []any
	for {
		if p.pos >= len(p.toks) {
			return nil, fmt.Errorf("%w: missing )", ErrSyntax)
		}
		if p.toks[p.pos] == ")" {
			p.pos++
			break
		}
		a, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return op.Expr(args...)
}
