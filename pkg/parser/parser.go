package parser

import (
	"errors"
	"fmt"

	"github.com/obentoo/ebuildkit/pkg/dep"
	"github.com/obentoo/ebuildkit/pkg/eapi"
)

// ErrSyntax is the sentinel wrapped by every parse failure, carrying the
// byte offset and input snippet per spec.md §4.4's error contract.
var ErrSyntax = errors.New("dependency grammar syntax error")

// ParseError records the position, the remaining expected tokens, and
// the text leading up to the failure, per spec.md §4.4 ("parse error
// with byte offset, expected-token set, and pretext").
type ParseError struct {
	Offset   int
	Expected []string
	Pretext  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at offset %d (expected %v) after %q", ErrSyntax, e.Offset, e.Expected, e.Pretext)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

// LeafParser parses one whitespace-delimited token into a leaf value.
type LeafParser[T dep.Leaf] func(token string) (T, error)

// Grammar bundles the EAPI-gated switches the dependency grammar needs:
// whether ^^ and ?? groupings are accepted (REQUIRED_USE only, and only
// under EAPIs with the required-use-one-of feature).
type Grammar struct {
	AllowExactlyOneOf bool
	AllowAtMostOneOf  bool
}

// RequiredUseGrammar returns the grammar switches for parsing
// REQUIRED_USE under e.
func RequiredUseGrammar(e *eapi.Eapi) Grammar {
	ok := e.Has(eapi.FeatureRequiredUseOneOf)
	return Grammar{AllowExactlyOneOf: ok, AllowAtMostOneOf: ok}
}

// PlainGrammar is the grammar for every non-REQUIRED_USE dependency
// variable: ^^ and ?? are never legal there.
var PlainGrammar = Grammar{}

// ParseDependencySet parses a full metadata-variable value into a
// DependencySet[T], per spec.md §4.3's parser rules.
func ParseDependencySet[T dep.Leaf](input string, g Grammar, leaf LeafParser[T]) (dep.DependencySet[T], error) {
	toks, err := tokenize(input)
	if err != nil {
		return dep.DependencySet[T]{}, err
	}
	p := &assembler[T]{toks: toks, grammar: g, leaf: leaf}
	children, err := p.parseGroupBody(len(toks))
	if err != nil {
		return dep.DependencySet[T]{}, err
	}
	if p.pos != len(toks) {
		return dep.DependencySet[T]{}, p.errorAt("end of input")
	}
	return dep.NewSet(children...), nil
}

type assembler[T dep.Leaf] struct {
	toks    []tok
	pos     int
	grammar Grammar
	leaf    LeafParser[T]
}

func (p *assembler[T]) errorAt(expected ...string) error {
	offset := 0
	pretext := ""
	if p.pos < len(p.toks) {
		offset = p.toks[p.pos].offset
	} else if len(p.toks) > 0 {
		offset = p.toks[len(p.toks)-1].offset
	}
	for i := 0; i < p.pos && i < len(p.toks); i++ {
		if i > 0 {
			pretext += " "
		}
		pretext += p.toks[i].text
	}
	return &ParseError{Offset: offset, Expected: expected, Pretext: pretext}
}

func (p *assembler[T]) peek() (tok, bool) {
	if p.pos >= len(p.toks) {
		return tok{}, false
	}
	return p.toks[p.pos], true
}

// parseGroupBody parses a sequence of dependency nodes until pos reaches
// end (the matching ')' or end of input), per the grammar's "tokens
// separated by whitespace, groupings nest" rule.
func (p *assembler[T]) parseGroupBody(end int) ([]dep.Dependency[T], error) {
	var out []dep.Dependency[T]
	for p.pos < end {
		t, ok := p.peek()
		if !ok || t.kind == "RParen" {
			break
		}
		node, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (p *assembler[T]) expectGroup(startKind string) ([]dep.Dependency[T], error) {
	open, ok := p.peek()
	if !ok || open.kind != "LParen" {
		return nil, p.errorAt("(")
	}
	p.pos++
	children, err := p.parseGroupBody(len(p.toks))
	if err != nil {
		return nil, err
	}
	close_, ok := p.peek()
	if !ok || close_.kind != "RParen" {
		return nil, p.errorAt(")")
	}
	p.pos++
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: empty %s group", dep.ErrEmptyGroup, startKind)
	}
	return children, nil
}

func (p *assembler[T]) parseOne() (dep.Dependency[T], error) {
	t, ok := p.peek()
	if !ok {
		return dep.Dependency[T]{}, p.errorAt("a dependency token")
	}

	switch t.kind {
	case "LParen":
		children, err := p.expectGroup("(")
		if err != nil {
			return dep.Dependency[T]{}, err
		}
		return dep.AllOf(children...)

	case "AnyOf":
		p.pos++
		children, err := p.expectGroup("||")
		if err != nil {
			return dep.Dependency[T]{}, err
		}
		return dep.AnyOf(children...)

	case "ExactlyOneOf":
		if !p.grammar.AllowExactlyOneOf {
			return dep.Dependency[T]{}, fmt.Errorf("%w: ^^ not permitted here", ErrSyntax)
		}
		p.pos++
		children, err := p.expectGroup("^^")
		if err != nil {
			return dep.Dependency[T]{}, err
		}
		return dep.ExactlyOneOf(children...)

	case "AtMostOneOf":
		if !p.grammar.AllowAtMostOneOf {
			return dep.Dependency[T]{}, fmt.Errorf("%w: ?? not permitted here", ErrSyntax)
		}
		p.pos++
		children, err := p.expectGroup("??")
		if err != nil {
			return dep.Dependency[T]{}, err
		}
		return dep.AtMostOneOf(children...)

	case "UseCond":
		p.pos++
		head, err := parseUseCond(t.text)
		if err != nil {
			return dep.Dependency[T]{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		children, err := p.expectGroup(t.text)
		if err != nil {
			return dep.Dependency[T]{}, err
		}
		return dep.Conditional(head, children...)

	case "Token":
		disabled := false
		text := t.text
		if len(text) > 1 && text[0] == '!' {
			disabled = true
			text = text[1:]
		}
		p.pos++
		v, err := p.leaf(text)
		if err != nil {
			return dep.Dependency[T]{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		if disabled {
			return dep.Disabled(v), nil
		}
		return dep.Enabled(v), nil

	default:
		return dep.Dependency[T]{}, p.errorAt("a dependency token")
	}
}

func parseUseCond(text string) (dep.UseDepHead, error) {
	if len(text) < 2 || text[len(text)-1] != '?' {
		return dep.UseDepHead{}, fmt.Errorf("malformed USE conditional %q", text)
	}
	body := text[:len(text)-1]
	if len(body) > 0 && body[0] == '!' {
		return dep.UseDepHead{Flag: body[1:], Negated: true}, nil
	}
	return dep.UseDepHead{Flag: body}, nil
}
