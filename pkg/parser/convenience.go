package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/obentoo/ebuildkit/pkg/atom"
	"github.com/obentoo/ebuildkit/pkg/dep"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/version"
)

// cacheKey is the memoization key for both the Version and Atom caches:
// spec.md §4.4 "Version and Atom parsing memoise by input string and
// EAPI." The cache is a pure-function memo, not an eviction-tuned LRU;
// a sync.Map is enough since memoized results never change for a given
// key and the EAPI registry is small and immutable after init.
type cacheKey struct {
	input string
	eapi  string
}

var versionCache sync.Map // cacheKey -> versionCacheEntry
var atomCache sync.Map    // cacheKey -> atomCacheEntry

type versionCacheEntry struct {
	v   version.Version
	err error
}

type atomCacheEntry struct {
	a   atom.Atom
	err error
}

// ParseVersion parses and memoizes a version string. Version parsing
// takes no EAPI, so the cache key is the input string alone.
func ParseVersion(s string) (version.Version, error) {
	key := cacheKey{input: s}
	if v, ok := versionCache.Load(key); ok {
		e := v.(versionCacheEntry)
		return e.v, e.err
	}
	val, err := version.Parse(s)
	versionCache.Store(key, versionCacheEntry{v: val, err: err})
	return val, err
}

// ParseAtom parses and memoizes an atom string under the given EAPI.
func ParseAtom(s string, e *eapi.Eapi) (atom.Atom, error) {
	key := cacheKey{input: s, eapi: e.ID()}
	if v, ok := atomCache.Load(key); ok {
		entry := v.(atomCacheEntry)
		return entry.a, entry.err
	}
	val, err := atom.Parse(s, e)
	atomCache.Store(key, atomCacheEntry{a: val, err: err})
	return val, err
}

// ParseAtomDependencySet parses a package-dependency metadata variable
// (DEPEND, RDEPEND, BDEPEND, PDEPEND, IDEPEND) into a DependencySet of
// Atom leaves.
func ParseAtomDependencySet(input string, e *eapi.Eapi) (dep.DependencySet[atom.Atom], error) {
	return ParseDependencySet(input, PlainGrammar, func(token string) (atom.Atom, error) {
		return ParseAtom(token, e)
	})
}

// ParseStringDependencySet parses a bare-token metadata variable
// (LICENSE, PROPERTIES, RESTRICT) into a DependencySet of Str leaves.
// REQUIRED_USE reuses this leaf type but needs RequiredUseGrammar(e)
// instead of PlainGrammar, since it alone permits ^^ and ??.
func ParseStringDependencySet(input string, g Grammar) (dep.DependencySet[dep.Str], error) {
	return ParseDependencySet(input, g, func(token string) (dep.Str, error) {
		return dep.Str(token), nil
	})
}

// ParseURIDependencySet parses SRC_URI into a DependencySet of URI
// leaves, joining "url -> rename" pairs into a single leaf before the
// generic assembler ever sees them — the one piece of this grammar that
// needs more than one whitespace-delimited token per leaf.
func ParseURIDependencySet(input string) (dep.DependencySet[dep.URI], error) {
	toks, err := tokenize(input)
	if err != nil {
		return dep.DependencySet[dep.URI]{}, err
	}
	merged, err := mergeURIArrows(toks)
	if err != nil {
		return dep.DependencySet[dep.URI]{}, err
	}
	p := &assembler[dep.URI]{toks: merged, grammar: PlainGrammar, leaf: parseURIToken}
	children, err := p.parseGroupBody(len(merged))
	if err != nil {
		return dep.DependencySet[dep.URI]{}, err
	}
	if p.pos != len(merged) {
		return dep.DependencySet[dep.URI]{}, p.errorAt("end of input")
	}
	return dep.NewSet(children...), nil
}

func mergeURIArrows(toks []tok) ([]tok, error) {
	var out []tok
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == "Token" && i+2 < len(toks) && toks[i+1].kind == "Arrow" && toks[i+2].kind == "Token" {
			out = append(out, tok{kind: "Token", text: t.text + " -> " + toks[i+2].text, offset: t.offset})
			i += 2
			continue
		}
		if t.kind == "Arrow" {
			return nil, fmt.Errorf("%w: unexpected '->'", ErrSyntax)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseURIToken(token string) (dep.URI, error) {
	if idx := strings.Index(token, " -> "); idx >= 0 {
		return dep.URI{URL: token[:idx], Rename: token[idx+4:]}, nil
	}
	return dep.URI{URL: token}, nil
}
