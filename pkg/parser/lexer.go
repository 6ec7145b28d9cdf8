// Package parser implements the PEG-based grammar (spec.md C4) that
// produces Version, Atom, Dependency, and DependencySet values from
// ebuild source text.
//
// participle's struct-tag grammar model (github.com/alecthomas/
// participle/v2) fits a fixed concrete AST, not a generic sum type
// parametric over leaf type T — there is no way to tag a Go struct field
// with "one of these N alternatives, recursively, with a type
// parameter". So participle is used only for what it's unconditionally
// good at, tokenization via its lexer subpackage, and the recursive
// descent that assembles Dependency[T] trees from that token stream is
// hand-written below. This is the "use participle for the part of the
// problem that's actually a grammar-of-tokens, write the recursive part
// by hand" design choice recorded in SPEC_FULL.md.
package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var depLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\n\r]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "AnyOf", Pattern: `\|\|`},
	{Name: "ExactlyOneOf", Pattern: `\^\^`},
	{Name: "AtMostOneOf", Pattern: `\?\?`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "UseCond", Pattern: `!?[A-Za-z0-9][A-Za-z0-9+_.-]*\?`},
	{Name: "Token", Pattern: `[^\s()]+`},
})

// tok is one lexed token: its participle token kind name and literal
// text, plus the byte offset it started at (for ParseError.Offset).
type tok struct {
	kind   string
	text   string
	offset int
}

// tokenize lexes input into a flat, whitespace-stripped token stream.
func tokenize(input string) ([]tok, error) {
	lex, err := depLexer.Lex("", strings.NewReader(input))
	if err != nil {
		return nil, fmt.Errorf("parser: building lexer: %w", err)
	}
	symbols := depLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	var out []tok
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		if t.EOF() {
			break
		}
		name := names[t.Type]
		if name == "Whitespace" {
			continue
		}
		out = append(out, tok{kind: name, text: t.Value, offset: int(t.Pos.Offset)})
	}
	return out, nil
}

// tokenizeReader reads r to the end and lexes its contents the same way
// tokenize lexes a string.
func tokenizeReader(r io.Reader) ([]tok, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return tokenize(string(b))
}
