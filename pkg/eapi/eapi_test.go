package eapi

import "testing"

func TestGetUnsupported(t *testing.T) {
	if _, err := Get("99"); err == nil {
		t.Fatal("expected ErrUnsupported for unknown EAPI")
	}
}

func TestOrderingAndLatest(t *testing.T) {
	all := Default.All()
	for i := 1; i < len(all); i++ {
		if !all[i-1].Less(all[i]) {
			t.Fatalf("registry not ordered by index at %d", i)
		}
	}
	if Latest().ID() != "8" {
		t.Fatalf("Latest() = %q, want 8", Latest().ID())
	}
}

func TestFeatureGating(t *testing.T) {
	e0, err := Get("0")
	if err != nil {
		t.Fatal(err)
	}
	if e0.Has(FeatureSlotDeps) {
		t.Error("EAPI 0 must not have slot-deps")
	}
	e1, err := Get("1")
	if err != nil {
		t.Fatal(err)
	}
	if !e1.Has(FeatureSlotDeps) {
		t.Error("EAPI 1 must have slot-deps")
	}
}

// TestScopeEnforcement checks, for every EAPI and every command it
// defines, that the command's allowed-scope set admits at least one of
// the sampled scopes. Rejection in a disallowed scope is covered by
// pkg/shell's TestScopeEnforcement.
func TestScopeEnforcement(t *testing.T) {
	allScopes := []Scope{
		GlobalScope(),
		EclassScope("eclass-under-test"),
		PhaseScope(PhaseSrcInstall),
		PhaseScope(PhaseSrcUnpack),
		PhaseScope(PhaseSrcConfigure),
		PhaseScope(PhasePkgSetup),
	}

	for _, e := range Default.All() {
		for _, name := range e.Commands().Names() {
			cmd := e.Commands().Lookup(name)
			allowedSomewhere := false
			for _, sc := range allScopes {
				if cmd.Scopes.Allows(sc) {
					allowedSomewhere = true
				}
			}
			if !allowedSomewhere {
				t.Errorf("EAPI %s command %q is not allowed in any sampled scope", e.ID(), name)
			}
		}
	}
}

func TestDobinScopeScenario(t *testing.T) {
	e, err := Get("7")
	if err != nil {
		t.Fatal(err)
	}
	cmd := e.Commands().Lookup("dobin")
	if cmd == nil {
		t.Fatal("dobin should be defined")
	}
	if cmd.Scopes.Allows(PhaseScope(PhasePkgSetup)) {
		t.Error("dobin should not be allowed in pkg_setup")
	}
	if !cmd.Scopes.Allows(PhaseScope(PhaseSrcInstall)) {
		t.Error("dobin should be allowed in src_install")
	}
}
