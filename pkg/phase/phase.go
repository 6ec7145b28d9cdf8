// Package phase implements the phase driver (spec.md C9): for each
// phase in the active EAPI's ordered phase list, run the ebuild's
// shell function of that name if it defined one, otherwise run the
// EAPI's default implementation; either way under Phase(name) scope.
package phase

import (
	"context"
	"fmt"
	"strings"

	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/shell"
)

// FuncSource reports whether the sourced ebuild/eclass body defined a
// shell function named name, and if so runs it. This is the seam
// between the phase driver and whatever shell integration a caller
// wires in; pkg/shell's Runtime satisfies it via DefinedFunc/CallFunc.
type FuncSource interface {
	DefinedFunc(name string) bool
	CallFunc(ctx context.Context, name string) error
}

// Driver runs an EAPI's phase list against one build.
type Driver struct {
	EAPI    *eapi.Eapi
	Runtime *shell.Runtime
	Funcs   FuncSource
}

// Run executes every phase in e's ordered list in turn, stopping at the
// first failure and reporting it as PkgBuildFailed.
func (d *Driver) Run(ctx context.Context) error {
	for _, p := range d.EAPI.Phases() {
		if err := d.RunOne(ctx, p); err != nil {
			return &shell.PkgBuildFailed{Phase: p, Reason: err.Error()}
		}
	}
	return nil
}

// RunOne executes a single named phase: the ebuild's own function if it
// defined one, otherwise this EAPI's default implementation, under
// Phase(name) scope either way.
func (d *Driver) RunOne(ctx context.Context, p eapi.Phase) error {
	if !d.EAPI.HasPhase(p) {
		return nil
	}
	d.Runtime.SetScope(eapi.PhaseScope(p))

	if d.Funcs != nil && d.Funcs.DefinedFunc(string(p)) {
		return d.Funcs.CallFunc(ctx, string(p))
	}
	return d.runDefault(ctx, p)
}

func (d *Driver) runDefault(ctx context.Context, p eapi.Phase) error {
	bs := d.Runtime.State()
	switch p {
	case eapi.PhaseSrcUnpack:
		for _, f := range bs.Distfiles {
			if _, err := d.Runtime.Invoke(ctx, "unpack", []string{f}); err != nil {
				return err
			}
		}
		return nil

	case eapi.PhaseSrcCompile:
		if hasExecutableConfigure(bs) {
			if _, err := d.Runtime.Invoke(ctx, "econf", nil); err != nil {
				return err
			}
		}
		return nil

	case eapi.PhaseSrcTest:
		if !d.EAPI.Has(eapi.FeatureParallelTests) {
			bs.Vars["__make_jobs"] = "1"
		}
		return nil

	case eapi.PhaseSrcInstall:
		docs := splitDocsVar(bs.Vars["DOCS"])
		if len(docs) > 0 {
			if _, err := d.Runtime.Invoke(ctx, "dodoc", docs); err != nil {
				return err
			}
		}
		htmlDocs := splitDocsVar(bs.Vars["HTML_DOCS"])
		if len(htmlDocs) > 0 {
			if _, err := d.Runtime.Invoke(ctx, "dodoc", htmlDocs); err != nil {
				return err
			}
		}
		return nil

	case eapi.PhaseSrcPrepare:
		patches := splitDocsVar(bs.Vars["PATCHES"])
		for _, patch := range patches {
			bs.Vars["__last_patch"] = patch
		}
		return nil

	case eapi.PhasePkgNofetch:
		for _, f := range bs.Distfiles {
			fmt.Fprintln(bs.Stderr, f)
		}
		return nil

	default:
		return nil
	}
}

func hasExecutableConfigure(_ *buildstate.BuildState) bool {
	// The core never inspects a real filesystem (no live-install
	// surface). This always reports false and reads nothing from
	// BuildState, so the default src_compile never invokes econf, and
	// it runs no make step either.
	return false
}

// splitDocsVar parses DOCS/HTML_DOCS/PATCHES, which may be either a
// bash array (already whitespace-split by the shell before BuildState
// saw it) or a single whitespace-separated string, per spec.md §4.9.
func splitDocsVar(v string) []string {
	return strings.Fields(v)
}
