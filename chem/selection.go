/*
 * selection.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Selection is a compiled atom selection expression.
type Selection struct {
	expr string
	root matcher
}

type matcher func(*Atom) bool

// CompileSelection parses expr. An empty expression selects all atoms.
func CompileSelection(expr string) (*Selection, error) {
	p := &selParser{toks: tokenizeSelection(expr)}
	if len(p.toks) == 0 {
		return &Selection{expr: expr, root: func(*Atom) bool { return true }}, nil
	}
	m, err := p.or()
	if err != nil {
		return nil, newCError(fmt.Sprintf("selection %q: %s", expr, err.Error()), true, "CompileSelection")
	}
	if p.pos != len(p.toks) {
		return nil, newCError(fmt.Sprintf("selection %q: unexpected %q", expr, p.toks[p.pos]), true, "CompileSelection")
	}
	return &Selection{expr: expr, root: m}, nil
}

// MustCompileSelection is like CompileSelection but panics on error.
func MustCompileSelection(expr string) *Selection {
	s, err := CompileSelection(expr)
	if err != nil {
		panic(err.Error())
	}
	return s
}

func (S *Selection) String() string { return S.expr }

// Match reports whether the atom is selected.
func (S *Selection) Match(A *Atom) bool { return S.root(A) }

// Indexes returns the indexes of the atoms of mol selected by S, in order.
func (S *Selection) Indexes(mol Atomer) []int {
	ret := make([]int, 0, mol.Len()/4)
	for i := 0; i < mol.Len(); i++ {
		if S.root(mol.Atom(i)) {
			ret = append(ret, i)
		}
	}
	return ret
}

// Select returns the indexes of the atoms of mol matched by the expression expr.
func Select(mol Atomer, expr string) ([]int, error) {
	s, err := CompileSelection(expr)
	if err != nil {
		return nil, errDecorate(err, "Select")
	}
	return s.Indexes(mol), nil
}

func tokenizeSelection(expr string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range expr {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type selParser struct {
	toks []string
	pos  int
}

func (p *selParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *selParser) or() (matcher, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "or") {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a *Atom) bool { return l(a) || right(a) }
	}
	return left, nil
}

func (p *selParser) and() (matcher, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for strings.EqualFold(p.peek(), "and") {
		p.pos++
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(a *Atom) bool { return l(a) && right(a) }
	}
	return left, nil
}

func (p *selParser) not() (matcher, error) {
	if strings.EqualFold(p.peek(), "not") {
		p.pos++
		m, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(a *Atom) bool { return !m(a) }, nil
	}
	return p.primary()
}

func (p *selParser) primary() (matcher, error) {
	tok := p.peek()
	switch tok {
	case "":
		return nil, fmt.Errorf("unexpected end of expression")
	case ")":
		return nil, fmt.Errorf("unbalanced parenthesis")
	case "(":
		p.pos++
		m, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return m, nil
	}
	if l := strings.ToLower(tok); l == "and" || l == "or" {
		return nil, fmt.Errorf("operator %q without a left operand", tok)
	}
	p.pos++
	return termMatcher(tok)
}

var keywords = map[string]matcher{
	"all":       func(*Atom) bool { return true },
	"*":         func(*Atom) bool { return true },
	"none":      func(*Atom) bool { return false },
	"protein":   func(a *Atom) bool { return IsProtein(a.ResName) },
	"nucleic":   func(a *Atom) bool { return IsNucleic(a.ResName) },
	"water":     func(a *Atom) bool { return IsWater(a.ResName) },
	"ion":       func(a *Atom) bool { return IsIon(a.ResName) },
	"hetero":    func(a *Atom) bool { return a.Het },
	"hydrogen":  func(a *Atom) bool { return a.Symbol == "H" },
	"heavy":     func(a *Atom) bool { return a.Symbol != "H" },
	"backbone":  IsBackbone,
	"sidechain": func(a *Atom) bool { return IsProtein(a.ResName) && !proteinBackbone[a.Name] },
}

// residue term: [resname | resnum | resnum-resnum][:chain][.atomname]
var specRe = regexp.MustCompile(`^(?:(-?\d+)(?:-(-?\d+))?|([A-Za-z0-9'+\-]*[A-Za-z'+][A-Za-z0-9'+\-]*))?(?::([A-Za-z0-9]))?(?:\.([A-Za-z0-9'*]+))?$`)

func termMatcher(tok string) (matcher, error) {
	if m, ok := keywords[strings.ToLower(tok)]; ok {
		return m, nil
	}
	if strings.HasPrefix(tok, "_") && len(tok) > 1 {
		sym := NormalizeSymbol(tok[1:])
		return func(a *Atom) bool { return a.Symbol == sym }, nil
	}
	parts := specRe.FindStringSubmatch(tok)
	if parts == nil || tok == "" {
		return nil, fmt.Errorf("can't parse %q", tok)
	}
	var ms []matcher
	if parts[1] != "" {
		from, _ := strconv.Atoi(parts[1])
		to := from
		if parts[2] != "" {
			to, _ = strconv.Atoi(parts[2])
		}
		if to < from {
			return nil, fmt.Errorf("empty residue range %q", tok)
		}
		ms = append(ms, func(a *Atom) bool { return a.ResID >= from && a.ResID <= to })
	}
	if parts[3] != "" {
		name := strings.ToUpper(parts[3])
		ms = append(ms, func(a *Atom) bool { return strings.ToUpper(a.ResName) == name })
	}
	if parts[4] != "" {
		chain := parts[4][0]
		ms = append(ms, func(a *Atom) bool { return a.Chain == chain })
	}
	if parts[5] != "" {
		name := strings.ToUpper(parts[5])
		ms = append(ms, func(a *Atom) bool { return strings.ToUpper(a.Name) == name })
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("can't parse %q", tok)
	}
	return func(a *Atom) bool {
		for _, m := range ms {
			if !m(a) {
				return false
			}
		}
		return true
	}, nil
}
