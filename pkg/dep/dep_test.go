package dep

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func leaf(s string) Dependency[Str] { return Enabled(Str(s)) }

// Scenario from spec.md §8: "a/b || ( c/d e/f ) u? ( g/h !v? ( i/j ) )".
func buildScenarioTree(t *testing.T) Dependency[Str] {
	t.Helper()
	anyOf, err := AnyOf(leaf("c/d"), leaf("e/f"))
	if err != nil {
		t.Fatal(err)
	}
	inner, err := Conditional(UseDepHead{Flag: "v", Negated: true}, leaf("i/j"))
	if err != nil {
		t.Fatal(err)
	}
	cond, err := Conditional(UseDepHead{Flag: "u"}, leaf("g/h"), inner)
	if err != nil {
		t.Fatal(err)
	}
	root, err := AllOf(leaf("a/b"), anyOf, cond)
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestEvaluateScenario(t *testing.T) {
	root := buildScenarioTree(t)

	withU, ok := root.Evaluate(map[string]bool{"u": true})
	if !ok {
		t.Fatal("expected non-empty result")
	}
	leaves := withU.IterFlatten()
	got := make([]string, len(leaves))
	for i, l := range leaves {
		got[i] = l.String()
	}
	want := []string{"a/b", "c/d", "e/f", "g/h", "i/j"}
	if !equalStrings(got, want) {
		t.Fatalf("evaluate({u}) leaves = %v, want %v", got, want)
	}

	withUV, ok := root.Evaluate(map[string]bool{"u": true, "v": true})
	if !ok {
		t.Fatal("expected non-empty result")
	}
	leaves2 := withUV.IterFlatten()
	got2 := make([]string, len(leaves2))
	for i, l := range leaves2 {
		got2[i] = l.String()
	}
	want2 := []string{"a/b", "c/d", "e/f", "g/h"}
	if !equalStrings(got2, want2) {
		t.Fatalf("evaluate({u,v}) leaves = %v, want %v", got2, want2)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEmptyGroupRejected(t *testing.T) {
	if _, err := AllOf[Str](); err == nil {
		t.Fatal("expected ErrEmptyGroup")
	}
	if _, err := AnyOf[Str](); err == nil {
		t.Fatal("expected ErrEmptyGroup")
	}
}

func TestAllOfDedupeAndSort(t *testing.T) {
	g, err := AllOf(leaf("b/b"), leaf("a/a"), leaf("b/b"))
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected dedup to 2 children, got %d", g.Len())
	}
	if g.Render() != "( a/a b/b )" {
		t.Fatalf("Render() = %q", g.Render())
	}
}

func TestAnyOfPreservesOrder(t *testing.T) {
	g, err := AnyOf(leaf("z/z"), leaf("a/a"))
	if err != nil {
		t.Fatal(err)
	}
	if g.Render() != "|| ( z/z a/a )" {
		t.Fatalf("Render() = %q", g.Render())
	}
}

func TestSetAlgebra(t *testing.T) {
	a := NewSet(leaf("a/a"), leaf("b/b"))
	b := NewSet(leaf("b/b"), leaf("c/c"))

	if got := a.Intersect(b).Render(); got != "b/b" {
		t.Fatalf("Intersect = %q", got)
	}
	if got := a.Union(b).Render(); got != "a/a b/b c/c" {
		t.Fatalf("Union = %q", got)
	}
	if got := a.Difference(b).Render(); got != "a/a" {
		t.Fatalf("Difference = %q", got)
	}
	if got := a.SymmetricDifference(b).Render(); got != "a/a c/c" {
		t.Fatalf("SymmetricDifference = %q", got)
	}
}

// Evaluate-pruning property from spec.md §8: for every tree and USE set,
// evaluate(t, u) contains no empty group, and every leaf it yields also
// appears in the unevaluated tree's flatten.
func TestEvaluatePruningProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluate result leaves subset of flatten", prop.ForAll(
		func(uOn, vOn, wOn bool) bool {
			root := buildScenarioTree(t)
			useSet := map[string]bool{"u": uOn, "v": vOn, "w": wOn}
			all := root.IterFlatten()
			allSet := make(map[string]bool, len(all))
			for _, l := range all {
				allSet[l.String()] = true
			}
			result, ok := root.Evaluate(useSet)
			if !ok {
				return true
			}
			for _, l := range result.IterFlatten() {
				if !allSet[l.String()] {
					return false
				}
			}
			for _, n := range result.IterRecursive() {
				if n.Kind() != KindEnabled && n.Kind() != KindDisabled && n.IsEmpty() {
					return false
				}
			}
			return true
		},
		gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}

// buildScenarioSet mirrors buildScenarioTree but as the top-level
// DependencySet spec.md §8 scenario 3 actually describes: three members
// (a/b, the || group, and the u? conditional), not one AllOf wrapping
// them. This is what exposes conditional-splicing, since IterFlatten
// can't distinguish "spliced into the set" from "wrapped in a group".
func buildScenarioSet(t *testing.T) DependencySet[Str] {
	t.Helper()
	anyOf, err := AnyOf(leaf("c/d"), leaf("e/f"))
	if err != nil {
		t.Fatal(err)
	}
	inner, err := Conditional(UseDepHead{Flag: "v", Negated: true}, leaf("i/j"))
	if err != nil {
		t.Fatal(err)
	}
	cond, err := Conditional(UseDepHead{Flag: "u"}, leaf("g/h"), inner)
	if err != nil {
		t.Fatal(err)
	}
	return NewSet(leaf("a/b"), anyOf, cond)
}

// spec.md §8 scenario 3, read literally: evaluating with {u} set yields
// four flat members — a/b, the || group, g/h, and i/j — not g/h and i/j
// still nested under an extra wrapper where the conditional used to be.
func TestEvaluateSplicesConditionalIntoTopLevel(t *testing.T) {
	set := buildScenarioSet(t)

	withU := set.Evaluate(map[string]bool{"u": true})
	if got, want := withU.Render(), "a/b g/h i/j || ( c/d e/f )"; got != want {
		t.Fatalf("evaluate({u}) = %q, want %q", got, want)
	}

	withUV := set.Evaluate(map[string]bool{"u": true, "v": true})
	if got, want := withUV.Render(), "a/b g/h || ( c/d e/f )"; got != want {
		t.Fatalf("evaluate({u,v}) = %q, want %q", got, want)
	}

	neither := set.Evaluate(map[string]bool{})
	if got, want := neither.Render(), "a/b || ( c/d e/f )"; got != want {
		t.Fatalf("evaluate({}) = %q, want %q", got, want)
	}
}

func TestContainsFamily(t *testing.T) {
	root := buildScenarioTree(t)
	if !root.ContainsString("i/j") {
		t.Fatal("expected i/j to be found")
	}
	if !root.ContainsUseDep(UseDepHead{Flag: "v", Negated: true}) {
		t.Fatal("expected !v? guard to be found")
	}
	if root.ContainsString("zzz/not-there") {
		t.Fatal("unexpected match")
	}
}
