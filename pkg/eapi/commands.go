package eapi

// Command is a named handler's metadata as registered in an EAPI's
// CommandTable (spec.md C6): which scopes it may run in, and whether a
// non-zero return from its handler escalates to `die` by default.
//
// The handler itself is not part of this record — it lives in
// internal/commands and is wired into pkg/shell's dispatch table at
// runtime construction, per the "dynamic command dispatch... flat
// function pointer" design note in spec.md §9.
type Command struct {
	Name    string
	Scopes  ScopeSet
	// DieOnError is false for pure query commands (use, has, usev, ...)
	// whose non-zero exit is an ordinary boolean result, never a fatal
	// condition, even outside nonfatal mode.
	DieOnError bool
}

// CommandTable is the set of commands one EAPI makes available, keyed by
// name.
type CommandTable struct {
	byName map[string]*Command
}

// Lookup returns the command descriptor for name, or nil if this EAPI
// does not define it.
func (t *CommandTable) Lookup(name string) *Command {
	return t.byName[name]
}

// Names returns every command name this EAPI defines.
func (t *CommandTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	return names
}

// commandSpec is a command's registration entry in the flat, version-free
// master list below: MinEAPIIndex is the lowest EAPI index that defines
// it. A CommandTable is built per EAPI by filtering this list, which is
// the command-table analogue of the "small helper to express 'same as
// EAPI-n plus these features'" design note in spec.md §9 — applied to the
// command surface instead of a virtual-dispatch inheritance chain.
type commandSpec struct {
	Name           string
	MinEAPIIndex   int
	Scopes         ScopeSet
	DieOnError     bool
	RequireFeature Feature // empty means "no extra feature gate"
}

var masterCommandList = []commandSpec{
	// Install-phase destination commands, grounded on
	// crates/pkgcraft/src/shell/commands/{into,insinto,doheader,doenvd,
	// doconfd,doinitd,dosym,fperms,unpack,econf}.rs in original_source/.
	{Name: "into", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "insinto", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "dobin", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "doins", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "dodoc", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "dosym", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "doheader", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "doenvd", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "doconfd", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "doinitd", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall)}, DieOnError: true},
	{Name: "fperms", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcInstall), InPhase(PhasePkgPreinst)}, DieOnError: true},

	// Build commands.
	{Name: "unpack", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcUnpack)}, DieOnError: true},
	{Name: "econf", MinEAPIIndex: 0, Scopes: ScopeSet{InPhase(PhaseSrcConfigure), InPhase(PhaseSrcCompile)}, DieOnError: true},

	// Query/boolean commands usable broadly; failure is a plain status,
	// never fatal, grounded on shell/commands/{usev,usex,use_enable}.rs.
	{Name: "use", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},
	{Name: "usev", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},
	{Name: "usex", MinEAPIIndex: 4, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},
	{Name: "use_enable", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},
	{Name: "use_with", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},
	{Name: "has", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: false},

	// Eclass inheritance, global/eclass scope only.
	{Name: "inherit", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass()}, DieOnError: true},

	// Error signalling, usable everywhere.
	{Name: "die", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: true},
	{Name: "assert", MinEAPIIndex: 0, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: true},
	{Name: "nonfatal", MinEAPIIndex: 4, Scopes: ScopeSet{InGlobal(), InEclass(), AnyPhase()}, DieOnError: true, RequireFeature: FeatureNonfatalDie},
}

// knownCommandNames is the full set of command names any EAPI might
// define, regardless of which EAPI actually enables each — used to tell
// "this name is one of our commands, just not in this EAPI" apart from
// "this name is an external program the shell should just exec".
var knownCommandNames = func() map[string]bool {
	m := make(map[string]bool, len(masterCommandList))
	for _, spec := range masterCommandList {
		m[spec.Name] = true
	}
	return m
}()

// IsKnownCommandName reports whether name is one of the commands some
// EAPI defines, independent of whether the given EAPI happens to enable
// it.
func IsKnownCommandName(name string) bool { return knownCommandNames[name] }

// buildCommandTable filters masterCommandList down to the commands this
// EAPI defines: its index must meet MinEAPIIndex, and any RequireFeature
// must be enabled.
func buildCommandTable(e *Eapi) *CommandTable {
	t := &CommandTable{byName: make(map[string]*Command)}
	for _, spec := range masterCommandList {
		if e.index < spec.MinEAPIIndex {
			continue
		}
		if spec.RequireFeature != "" && !e.features[spec.RequireFeature] {
			continue
		}
		t.byName[spec.Name] = &Command{
			Name:       spec.Name,
			Scopes:     spec.Scopes,
			DieOnError: spec.DieOnError,
		}
	}
	return t
}
