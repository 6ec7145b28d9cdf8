// Package buildstate implements BuildState (spec.md C8): the flat,
// mutable record a single build mutates as the shell runtime sources an
// ebuild and runs its phases.
//
// Grounded on _examples/obentoo-bentoo-tools/internal/autoupdate/config.go
// for the "flat struct of accumulated fields, mutated by named setter
// methods rather than exported field writes" shape; mutators here are
// the methods internal/commands calls, never direct field assignment
// from ebuild-facing code, per spec.md §4.8 "Mutators are always routed
// through commands."
package buildstate

import (
	"fmt"
	"io"

	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/version"
)

// PackageIdentity is the category/package/version triple a build is
// bound to.
type PackageIdentity struct {
	Category string
	Package  string
	Version  version.Version
}

func (p PackageIdentity) String() string {
	return fmt.Sprintf("%s/%s-%s", p.Category, p.Package, p.Version.Render())
}

// FileOpts is the current destination/permission context; commands like
// `into`, `insinto`, and `fperms` replace the active frame, per spec.md's
// "consistent-file-opts" feature and "stacks for install destination,
// file modes, documentation destination" field list.
type FileOpts struct {
	Dest           string // current insinto/into destination
	FileMode       string // dofile/doins file mode, e.g. "0644"
	DirMode        string // diropts directory mode
	DocDest        string // docinto destination under /usr/share/doc/...
	CompressInclude []string
	CompressExclude []string
}

// BuildState is created empty, bound to a package + EAPI, mutated by
// every sourced line, and discarded at the end of one build (spec.md
// §3 "Lifecycle").
type BuildState struct {
	EAPI    *eapi.Eapi
	Scope   eapi.Scope
	Package PackageIdentity

	// Vars holds every accumulated metadata variable, keyed by name, as
	// raw shell text; pkg/ebuild parses these into typed DependencySet
	// values once sourcing completes.
	Vars map[string]string

	// fileOptsStack holds saved file-destination contexts, pushed and
	// popped via PushFileOpts/PopFileOpts; commands such as into/insinto
	// only replace the top entry, which is always the active one.
	fileOptsStack []FileOpts

	// Inherited is the set of eclass names this build has sourced, in
	// inheritance order (spec.md's "depth-first, left-to-right"
	// ordering guarantee).
	Inherited []string

	// Distfiles is the ordered list of source distfile names SRC_URI
	// resolved to, consumed by the default src_unpack implementation.
	Distfiles []string

	// UseFlags is the consolidated, resolved USE-flag set active for
	// this build.
	UseFlags map[string]bool

	// Nonfatal is true while executing inside a `nonfatal` invocation:
	// `die -n` becomes a non-unwinding status return rather than a Bail.
	Nonfatal bool

	// Installed is the ordered log of install-phase actions recorded by
	// commands like dobin/doins/dodoc/dosym; the core never touches a
	// live filesystem (installing to a live system is out of scope), so
	// these commands record intent here instead of copying files.
	Installed []InstallAction

	Stdout io.Writer
	Stderr io.Writer
}

// InstallAction is one recorded install-phase effect: which command
// produced it, the source path(s) involved, the resolved destination,
// and the file mode in force at the time.
type InstallAction struct {
	Command string
	Sources []string
	Dest    string
	Mode    string
}

// RecordInstall appends a to the install log.
func (s *BuildState) RecordInstall(a InstallAction) {
	s.Installed = append(s.Installed, a)
}

// New creates an empty BuildState bound to pkg under e, with a single
// default FileOpts frame and a writable Vars/UseFlags map ready for
// commands to mutate.
func New(e *eapi.Eapi, pkg PackageIdentity, useFlags map[string]bool, stdout, stderr io.Writer) *BuildState {
	if useFlags == nil {
		useFlags = map[string]bool{}
	}
	return &BuildState{
		EAPI:          e,
		Scope:         eapi.GlobalScope(),
		Package:       pkg,
		Vars:          map[string]string{},
		fileOptsStack: []FileOpts{{Dest: "/"}},
		UseFlags:      useFlags,
		Stdout:        stdout,
		Stderr:        stderr,
	}
}

// FileOpts returns the active (top-of-stack) file-destination context.
func (s *BuildState) FileOpts() FileOpts {
	return s.fileOptsStack[len(s.fileOptsStack)-1]
}

// SetFileOpts replaces the active file-destination context in place,
// the mutation `into`/`insinto`/`fperms` perform.
func (s *BuildState) SetFileOpts(f FileOpts) {
	s.fileOptsStack[len(s.fileOptsStack)-1] = f
}

// PushFileOpts saves the current context, used when entering a nested
// scope that must restore the outer destination on exit.
func (s *BuildState) PushFileOpts() {
	top := s.FileOpts()
	s.fileOptsStack = append(s.fileOptsStack, top)
}

// PopFileOpts restores the previous file-destination context.
func (s *BuildState) PopFileOpts() {
	if len(s.fileOptsStack) > 1 {
		s.fileOptsStack = s.fileOptsStack[:len(s.fileOptsStack)-1]
	}
}

// Inherit records an eclass as sourced, appending to the inheritance
// order; re-inheriting an already-inherited eclass is a no-op, matching
// `inherit`'s idempotence.
func (s *BuildState) Inherit(name string) {
	for _, n := range s.Inherited {
		if n == name {
			return
		}
	}
	s.Inherited = append(s.Inherited, name)
}

// HasInherited reports whether name has been inherited.
func (s *BuildState) HasInherited(name string) bool {
	for _, n := range s.Inherited {
		if n == name {
			return true
		}
	}
	return false
}

// AppendIncremental implements the EAPI's incremental-variable
// accumulation rule (spec.md §4.7): prepend contribution ahead of the
// variable's current value, preserving eclass order.
func (s *BuildState) AppendIncremental(name, contribution string) {
	if contribution == "" {
		return
	}
	cur := s.Vars[name]
	if cur == "" {
		s.Vars[name] = contribution
		return
	}
	s.Vars[name] = contribution + " " + cur
}

// UseEnabled reports whether flag is set in this build's USE-flag set.
func (s *BuildState) UseEnabled(flag string) bool {
	return s.UseFlags[flag]
}

