package phase

import (
	"context"
	"testing"

	"github.com/obentoo/ebuildkit/internal/commands"
	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/shell"
	"github.com/obentoo/ebuildkit/pkg/version"
)

func newDriver(t *testing.T) (*Driver, *buildstate.BuildState) {
	t.Helper()
	e, err := eapi.Get("8")
	if err != nil {
		t.Fatal(err)
	}
	v, err := version.Parse("1.0")
	if err != nil {
		t.Fatal(err)
	}
	bs := buildstate.New(e, buildstate.PackageIdentity{Category: "app-misc", Package: "foo", Version: v}, nil, nullWriter{}, nullWriter{})
	rt, err := shell.New(bs, commands.Table())
	if err != nil {
		t.Fatal(err)
	}
	return &Driver{EAPI: e, Runtime: rt, Funcs: rt}, bs
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

// default src_unpack unpacks every distfile when the ebuild doesn't
// define its own, per spec.md §4.9.
func TestDefaultSrcUnpack(t *testing.T) {
	d, bs := newDriver(t)
	bs.Distfiles = []string{"foo-1.0.tar.gz"}
	if err := d.RunOne(context.Background(), eapi.PhaseSrcUnpack); err != nil {
		t.Fatal(err)
	}
}

// default src_install installs DOCS/HTML_DOCS when the ebuild doesn't
// define its own, per spec.md §4.9.
func TestDefaultSrcInstall(t *testing.T) {
	d, bs := newDriver(t)
	bs.Vars["DOCS"] = "README CHANGELOG"
	if err := d.RunOne(context.Background(), eapi.PhaseSrcInstall); err != nil {
		t.Fatal(err)
	}
	if len(bs.Installed) != 1 {
		t.Fatalf("expected one recorded install action, got %d: %+v", len(bs.Installed), bs.Installed)
	}
	got := bs.Installed[0]
	if got.Command != "dodoc" || len(got.Sources) != 2 {
		t.Fatalf("got %+v", got)
	}
}

// A phase the ebuild's own function defines runs that function instead
// of the EAPI default, under Phase(name) scope either way.
func TestUserFunctionOverridesDefault(t *testing.T) {
	d, bs := newDriver(t)
	if err := d.Runtime.Source(context.Background(), "ebuild", "src_install() { dodoc README; }"); err != nil {
		t.Fatal(err)
	}
	if err := d.RunOne(context.Background(), eapi.PhaseSrcInstall); err != nil {
		t.Fatal(err)
	}
	if len(bs.Installed) != 1 || bs.Installed[0].Sources[0] != "README" {
		t.Fatalf("expected the user's src_install to run, got %+v", bs.Installed)
	}
}

// A phase absent from the EAPI's list is a no-op, not an error.
func TestUnsupportedPhaseIsNoop(t *testing.T) {
	d, _ := newDriver(t)
	if err := d.RunOne(context.Background(), eapi.Phase("pkg_not_a_real_phase")); err != nil {
		t.Fatal(err)
	}
}
