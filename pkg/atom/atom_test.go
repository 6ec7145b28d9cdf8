package atom

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

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

func TestParseBareCatPkg(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("app-misc/foo", e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Category != "app-misc" || a.Package != "foo" {
		t.Fatalf("got %+v", a)
	}
	if a.Render() != "app-misc/foo" {
		t.Fatalf("Render() = %q", a.Render())
	}
}

func TestParseVersionedAtom(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse(">=app-misc/foo-1.2.3-r1", e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Version == nil {
		t.Fatal("expected a version")
	}
	if got, want := a.Render(), ">=app-misc/foo-1.2.3-r1"; got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

// Scenario 5 from spec.md §8: gated slot-dep syntax under EAPI 0 fails,
// the same syntax under a slot-deps EAPI succeeds.
func TestEAPIGatingSlotDeps(t *testing.T) {
	e0 := mustEapi(t, "0")
	if _, err := Parse("app-misc/foo:0", e0); err == nil {
		t.Fatal("expected InvalidAtom for slot deps under EAPI 0")
	}
	e1 := mustEapi(t, "1")
	if _, err := Parse("app-misc/foo:0", e1); err != nil {
		t.Fatalf("unexpected error under EAPI 1: %v", err)
	}
}

func TestBlockerGating(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("!!app-misc/foo", e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Blocker != StrongBlocker {
		t.Fatalf("got blocker %v", a.Blocker)
	}
	if a.Render() != "!!app-misc/foo" {
		t.Fatalf("Render() = %q", a.Render())
	}
}

func TestUseDeps(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("app-misc/foo[bar,-baz,qux(+)=,!quux?]", e)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.UseDeps) != 4 {
		t.Fatalf("got %d use deps", len(a.UseDeps))
	}
	if a.Render() != "app-misc/foo[bar,-baz,qux(+)=,!quux?]" {
		t.Fatalf("Render() = %q", a.Render())
	}
}

func TestSlotSubslotOperator(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("app-misc/foo:2/3=", e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Slot.Slot != "2" || a.Slot.Subslot != "3" || a.Slot.Operator != SlotOperatorEqual {
		t.Fatalf("got slot %+v", a.Slot)
	}
	if a.Render() != "app-misc/foo:2/3=" {
		t.Fatalf("Render() = %q", a.Render())
	}
}

func TestRepoID(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("app-misc/foo::gentoo", e)
	if err != nil {
		t.Fatal(err)
	}
	if a.Repo != "gentoo" {
		t.Fatalf("got repo %q", a.Repo)
	}
	e0 := mustEapi(t, "0")
	if _, err := Parse("app-misc/foo::gentoo", e0); err == nil {
		t.Fatal("expected InvalidAtom for repo ids under EAPI 0")
	}
}

func TestIntersectsSameCatPkgDisjointSlots(t *testing.T) {
	e := mustEapi(t, "8")
	a, err := Parse("app-misc/foo:1", e)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse("app-misc/foo:2", e)
	if err != nil {
		t.Fatal(err)
	}
	if Intersects(a, b) {
		t.Fatal("atoms pinned to different slots must not intersect")
	}
}

// Atom round-trip property from spec.md §8: for every atom string accepted
// under an EAPI, render(parse(s, e)) == s.
func TestAtomRoundTripProperty(t *testing.T) {
	e := mustEapi(t, "8")
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	catGen := gen.RegexMatch(`[a-z][a-z-]{1,8}`)
	pkgGen := gen.RegexMatch(`[a-z][a-z0-9-]{1,8}`)

	properties.Property("bare atom round-trips", prop.ForAll(
		func(cat, pkgName string) bool {
			if strings.HasSuffix(cat, "-") || strings.HasSuffix(pkgName, "-") {
				return true
			}
			s := cat + "/" + pkgName
			a, err := Parse(s, e)
			if err != nil {
				return true // generated string happened to be unparseable; skip
			}
			return a.Render() == s
		},
		catGen, pkgGen,
	))

	properties.TestingRun(t)
}
