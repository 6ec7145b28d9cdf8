package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/obentoo/ebuildkit/internal/commands"
	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/version"
)

func newRuntime(t *testing.T, eapiID string) (*Runtime, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	e, err := eapi.Get(eapiID)
	if err != nil {
		t.Fatal(err)
	}
	v, err := version.Parse("1.0")
	if err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	bs := buildstate.New(e, buildstate.PackageIdentity{Category: "app-misc", Package: "foo", Version: v}, nil, &stdout, &stderr)
	rt, err := New(bs, commands.Table())
	if err != nil {
		t.Fatal(err)
	}
	return rt, &stdout, &stderr
}

// spec.md §8 scenario 6: a command invoked outside its allowed scope is
// ScopeDisabled; in an allowed scope, the same invocation succeeds.
func TestScopeEnforcement(t *testing.T) {
	rt, _, _ := newRuntime(t, "8")

	rt.SetScope(eapi.PhaseScope(eapi.PhasePkgSetup))
	_, err := rt.Invoke(context.Background(), "dobin", []string{"mybin"})
	scopeErr, ok := err.(*ScopeDisabled)
	if !ok {
		t.Fatalf("expected *ScopeDisabled, got %T (%v)", err, err)
	}
	if scopeErr.Name != "dobin" {
		t.Fatalf("got command name %q", scopeErr.Name)
	}

	rt.SetScope(eapi.PhaseScope(eapi.PhaseSrcInstall))
	status, err := rt.Invoke(context.Background(), "dobin", []string{"mybin"})
	if err != nil || status != 0 {
		t.Fatalf("status=%d err=%v", status, err)
	}
}

func TestCommandDisabledForUnknownName(t *testing.T) {
	rt, _, _ := newRuntime(t, "8")
	rt.SetScope(eapi.PhaseScope(eapi.PhaseSrcInstall))
	_, err := rt.Invoke(context.Background(), "dowhatever", nil)
	if _, ok := err.(*CommandDisabled); !ok {
		t.Fatalf("expected *CommandDisabled, got %T (%v)", err, err)
	}
}

// spec.md §8 scenario 7: `nonfatal die -n oops` writes "oops" to stderr
// and returns a plain status, never a Bail; `die oops` alone aborts with
// Bail.
func TestNonfatalContract(t *testing.T) {
	rt, _, stderr := newRuntime(t, "8") // EAPI 8 has nonfatal-die
	rt.SetScope(eapi.GlobalScope())

	status, err := rt.Invoke(context.Background(), "nonfatal", []string{"die", "-n", "oops"})
	if err != nil {
		t.Fatalf("nonfatal die -n should not bail, got %v", err)
	}
	if status != 1 {
		t.Fatalf("expected status 1, got %d", status)
	}
	if got := stderr.String(); got != "oops\n" {
		t.Fatalf("expected stderr %q, got %q", "oops\n", got)
	}

	_, err = rt.Invoke(context.Background(), "die", []string{"boom"})
	bail, ok := err.(*Bail)
	if !ok {
		t.Fatalf("expected *Bail from unwrapped die, got %T (%v)", err, err)
	}
	if bail.Message != "boom" {
		t.Fatalf("got bail message %q", bail.Message)
	}
}

// nonfatal is itself gated behind the nonfatal-die feature (EAPI >= 4);
// under EAPI 0 it is simply an unknown command.
func TestNonfatalUnavailableBeforeEAPI4(t *testing.T) {
	rt, _, _ := newRuntime(t, "0")
	rt.SetScope(eapi.GlobalScope())
	_, err := rt.Invoke(context.Background(), "nonfatal", []string{"die", "-n", "oops"})
	if _, ok := err.(*CommandDisabled); !ok {
		t.Fatalf("expected *CommandDisabled, got %T (%v)", err, err)
	}
}
