package parser

import (
	"testing"

	"github.com/obentoo/ebuildkit/pkg/eapi"
)

func mustEapi(t *testing.T, id string) *eapi.Eapi {
	t.Helper()
	e, err := eapi.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// Scenario from spec.md §8: parsing and evaluating
// "a/b || ( c/d e/f ) u? ( g/h !v? ( i/j ) )" under a modern EAPI. The
// parsed tree has three top-level members (a/b, the || group, and the
// u? conditional); evaluating with {u} set splices the conditional's
// survivors in as their own members, producing spec.md's four-item
// result: a/b, || ( c/d e/f ), g/h, i/j.
func TestParseScenario(t *testing.T) {
	e := mustEapi(t, "8")
	set, err := ParseAtomDependencySet("a/b || ( c/d e/f ) u? ( g/h !v? ( i/j ) )", e)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 top-level children, got %d: %s", set.Len(), set.Render())
	}

	evaluated := set.Evaluate(map[string]bool{"u": true})
	if evaluated.Len() != 4 {
		t.Fatalf("evaluate({u}) produced %d top-level members, want 4: %s", evaluated.Len(), evaluated.Render())
	}
	leaves := evaluated.IterFlatten()
	if len(leaves) != 5 {
		t.Fatalf("evaluate({u}) produced %d leaves, want 5: %v", len(leaves), leaves)
	}
}

func TestEmptyGroupIsParseError(t *testing.T) {
	e := mustEapi(t, "8")
	if _, err := ParseAtomDependencySet("|| ( )", e); err == nil {
		t.Fatal("expected parse error for empty group")
	}
}

func TestRequiredUseGating(t *testing.T) {
	e0 := mustEapi(t, "0")
	g0 := RequiredUseGrammar(e0)
	if _, err := ParseStringDependencySet("^^ ( a b )", g0); err == nil {
		t.Fatal("expected ^^ to be rejected under EAPI 0")
	}

	e5 := mustEapi(t, "5")
	g5 := RequiredUseGrammar(e5)
	set, err := ParseStringDependencySet("^^ ( a b )", g5)
	if err != nil {
		t.Fatalf("unexpected error under EAPI 5: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 top-level child, got %d", set.Len())
	}
}

func TestURIRename(t *testing.T) {
	set, err := ParseURIDependencySet("https://example.com/foo-1.0.tar.gz -> foo.tar.gz https://example.com/bar.tar.gz")
	if err != nil {
		t.Fatal(err)
	}
	leaves := set.IterFlatten()
	if len(leaves) != 2 {
		t.Fatalf("expected 2 uris, got %d", len(leaves))
	}
	if leaves[0].Rename != "foo.tar.gz" && leaves[1].Rename != "foo.tar.gz" {
		t.Fatalf("expected one leaf with rename foo.tar.gz, got %+v", leaves)
	}
}

func TestMemoizedAtomCache(t *testing.T) {
	e := mustEapi(t, "8")
	a1, err := ParseAtom("app-misc/foo", e)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := ParseAtom("app-misc/foo", e)
	if err != nil {
		t.Fatal(err)
	}
	if a1.Render() != a2.Render() {
		t.Fatalf("cached parse diverged: %q vs %q", a1.Render(), a2.Render())
	}
}
