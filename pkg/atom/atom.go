// Package atom implements the package dependency atom grammar (spec.md
// C2): category/package plus optional version constraint, blocker,
// slot/subslot/slot-operator, USE-dep list, and repo id.
//
// Grounded on _examples/alowayed-go-univers/pkg/ecosystem/gentoo/range.go
// for the overall "small struct holding parsed sub-fields + operator"
// shape, generalized to the full atom grammar spec.md §3/§4.2 describe
// (that file only models a bare version range, not a full atom).
package atom

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/version"
)

// ErrInvalid is the sentinel wrapped by every atom parse/validation
// failure.
var ErrInvalid = errors.New("invalid atom")

// Blocker marks an atom as a "do not install alongside" constraint rather
// than a positive dependency.
type Blocker int

const (
	NoBlocker Blocker = iota
	WeakBlocker
	StrongBlocker
)

// SlotOperator refines how a slot dependency binds to the depended-on
// package's installed subslot.
type SlotOperator int

const (
	NoSlotOperator SlotOperator = iota
	// SlotOperatorEqual records a dependency on the installed subslot
	// ("libfoo:2=").
	SlotOperatorEqual
	// SlotOperatorStar accepts any slot ("libfoo:*").
	SlotOperatorStar
)

// Slot is an atom's optional slot/subslot/operator refinement.
type Slot struct {
	Slot     string // empty if unset
	Subslot  string // empty if unset
	Operator SlotOperator
}

func (s Slot) isZero() bool {
	return s.Slot == "" && s.Subslot == "" && s.Operator == NoSlotOperator
}

func (s Slot) render() string {
	if s.isZero() {
		return ""
	}
	var b strings.Builder
	b.WriteByte(':')
	switch {
	case s.Operator == SlotOperatorStar && s.Slot == "" && s.Subslot == "":
		b.WriteByte('*')
		return b.String()
	case s.Operator == SlotOperatorEqual && s.Slot == "" && s.Subslot == "":
		b.WriteByte('=')
		return b.String()
	}
	b.WriteString(s.Slot)
	if s.Subslot != "" {
		b.WriteByte('/')
		b.WriteString(s.Subslot)
	}
	if s.Operator == SlotOperatorEqual {
		b.WriteByte('=')
	}
	return b.String()
}

// UseDepState is the required/forbidden/conditional state a USE-dep
// places on a flag.
type UseDepState int

const (
	// UseEnabled requires the flag is (or is made) enabled: "flag".
	UseEnabled UseDepState = iota
	// UseDisabled requires the flag is (or is made) disabled: "-flag".
	UseDisabled
	// UseNotEqual requires the dependency's flag match the depender's
	// current flag value negated: "!flag".
	UseNotEqual
	// UseEqual requires the dependency's flag match the depender's
	// current flag value: "flag=" / "!flag=" (per spec, "!flag=" is the
	// opposite-parity conditional form).
	UseEqual
	// UseConditional only applies the requirement when the depender's
	// flag is enabled ("flag?") or, with Negated set, not enabled ("!flag?").
	UseConditional
)

// UseDefault is the optional "(+)"/"(-)" default marker on a USE-dep.
type UseDefault int

const (
	NoDefault UseDefault = iota
	DefaultEnabled
	DefaultDisabled
)

// UseDep is one entry of an atom's USE-dep list, e.g. "flag(+)=" or "!flag?".
type UseDep struct {
	Flag     string
	State    UseDepState
	Negated  bool // the leading "!" on !flag / !flag? / !flag=
	Default  UseDefault
}

func (u UseDep) Render() string {
	var b strings.Builder
	if u.Negated {
		b.WriteByte('!')
	}
	b.WriteString(u.Flag)
	switch u.Default {
	case DefaultEnabled:
		b.WriteString("(+)")
	case DefaultDisabled:
		b.WriteString("(-)")
	}
	switch u.State {
	case UseDisabled:
		// rendered via leading '-' instead of suffix; handled by caller
	case UseEqual:
		b.WriteByte('=')
	case UseConditional:
		b.WriteByte('?')
	}
	return b.String()
}

func (u UseDep) String() string {
	if u.State == UseDisabled {
		var b strings.Builder
		b.WriteByte('-')
		b.WriteString(u.Flag)
		switch u.Default {
		case DefaultEnabled:
			b.WriteString("(+)")
		case DefaultDisabled:
			b.WriteString("(-)")
		}
		return b.String()
	}
	return u.Render()
}

// Atom identifies a set of packages: a category/package plus optional
// version, blocker, slot, USE-deps, and repo refinements (spec.md §3).
type Atom struct {
	Category string
	Package  string
	Version  *version.Version // nil if unset
	Blocker  Blocker
	Slot     Slot
	UseDeps  []UseDep
	Repo     string // empty if unset
}

// CategoryPackage returns the bare "category/package" identity, the
// minimal part every atom carries.
func (a Atom) CategoryPackage() string {
	return a.Category + "/" + a.Package
}

// Render returns the bytewise-exact form of the atom, inverse of Parse.
func (a Atom) Render() string {
	var b strings.Builder
	switch a.Blocker {
	case WeakBlocker:
		b.WriteByte('!')
	case StrongBlocker:
		b.WriteString("!!")
	}
	if a.Version != nil {
		op := a.Version.Operator()
		if op == version.OpEqualGlob {
			op = version.OpEqual // the glob's '*' is written after the version
		}
		b.WriteString(string(op))
	}
	b.WriteString(a.CategoryPackage())
	if a.Version != nil {
		b.WriteByte('-')
		b.WriteString(a.Version.ValueString())
		if a.Version.Operator() == version.OpEqualGlob {
			b.WriteByte('*')
		}
	}
	b.WriteString(a.Slot.render())
	if len(a.UseDeps) > 0 {
		b.WriteByte('[')
		parts := make([]string, len(a.UseDeps))
		for i, u := range a.UseDeps {
			parts[i] = u.String()
		}
		b.WriteString(strings.Join(parts, ","))
		b.WriteByte(']')
	}
	if a.Repo != "" {
		b.WriteString("::")
		b.WriteString(a.Repo)
	}
	return b.String()
}

func (a Atom) String() string { return a.Render() }

// Identity is a concrete package instance an Atom is tested against via
// Matches.
type Identity struct {
	Category string
	Package  string
	Version  version.Version
	Slot     string
	Subslot  string
	Repo     string
}

// Matches reports whether candidate satisfies every field the atom
// specifies; absent atom fields wildcard (spec.md §4.2).
func Matches(a Atom, candidate Identity) bool {
	if a.Category != candidate.Category || a.Package != candidate.Package {
		return false
	}
	if a.Version != nil {
		if !version.Intersects(*a.Version, candidate.Version) {
			return false
		}
	}
	if a.Slot.Slot != "" && a.Slot.Slot != candidate.Slot {
		return false
	}
	if a.Slot.Subslot != "" && a.Slot.Subslot != candidate.Subslot {
		return false
	}
	if a.Repo != "" && a.Repo != candidate.Repo {
		return false
	}
	return true
}

// Intersects reports whether two atoms could both match some common
// candidate: category/package must match exactly, version constraints
// (if both present) must intersect, and slot/subslot/repo must agree
// wherever both sides specify (spec.md §4.2).
func Intersects(a, b Atom) bool {
	if a.Category != b.Category || a.Package != b.Package {
		return false
	}
	if a.Version != nil && b.Version != nil {
		if !version.Intersects(*a.Version, *b.Version) {
			return false
		}
	}
	if a.Slot.Slot != "" && b.Slot.Slot != "" && a.Slot.Slot != b.Slot.Slot {
		return false
	}
	if a.Slot.Subslot != "" && b.Slot.Subslot != "" && a.Slot.Subslot != b.Slot.Subslot {
		return false
	}
	if a.Repo != "" && b.Repo != "" && a.Repo != b.Repo {
		return false
	}
	return true
}

// Sort orders a slice of atoms by rendered form, providing the
// deterministic ordering DependencySet relies on for its T=Atom
// instantiation (spec.md §3 "Rendered form is bytewise deterministic").
func Sort(atoms []Atom) {
	sort.Slice(atoms, func(i, j int) bool { return atoms[i].Render() < atoms[j].Render() })
}

// requireFeature returns an error naming both the feature and the EAPI
// when gated syntax is used under an EAPI that doesn't enable it, per the
// error-message contract in spec.md §4.2.
func requireFeature(e *eapi.Eapi, f eapi.Feature, what string) error {
	if !e.Has(f) {
		return fmt.Errorf("%w: %s requires EAPI feature %q, not enabled by EAPI %s", ErrInvalid, what, f, e.ID())
	}
	return nil
}

var (
	// atomRe splits the blocker/operator/cat-pkg/version/slot/use-deps/repo
	// shell apart; the grammar in spec.md §4.2:
	// [!!?][op?]CAT/PN[-VERSION[*?]][:SLOT[/SUBSLOT][=]|:=|:*][USE-DEPS][::REPO]
	atomRe = regexp.MustCompile(
		`^(?P<blocker>!!?)?` +
			`(?P<op><=|>=|=\*|<|>|=|~)?` +
			`(?P<cat>[A-Za-z0-9+_][A-Za-z0-9+_.-]*)/(?P<pkg>[A-Za-z0-9+_][A-Za-z0-9+_-]*)` +
			`(?:-(?P<ver>\d[^:\[]*))?` +
			`(?::(?P<slotpart>[^\[:]*))?` +
			`(?:\[(?P<usedeps>[^\]]*)\])?` +
			`(?:::(?P<repo>[A-Za-z0-9+_][A-Za-z0-9+_.-]*))?$`,
	)
	useDepRe = regexp.MustCompile(`^(?P<neg>!)?(?P<flag>[A-Za-z0-9+_-]+)(?P<default>\(\+\)|\(-\))?(?P<state>[=?])?$`)
)

// Parse parses an atom string under the grammar the given EAPI's feature
// set gates (spec.md §4.2). Category and package are mandatory; every
// other element is optional, and using gated syntax under an EAPI that
// doesn't enable the corresponding feature is InvalidAtom.
func Parse(s string, e *eapi.Eapi) (Atom, error) {
	m := atomRe.FindStringSubmatch(s)
	if m == nil {
		return Atom{}, fmt.Errorf("%w: %q: malformed atom", ErrInvalid, s)
	}
	groups := make(map[string]string, len(m))
	for i, name := range atomRe.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}

	a := Atom{Category: groups["cat"], Package: groups["pkg"]}

	switch groups["blocker"] {
	case "!":
		a.Blocker = WeakBlocker
	case "!!":
		a.Blocker = StrongBlocker
	}
	if a.Blocker != NoBlocker {
		if err := requireFeature(e, eapi.FeatureBlockers, "blockers"); err != nil {
			return Atom{}, err
		}
	}

	if verStr := groups["ver"]; verStr != "" {
		full := groups["op"] + verStr
		v, err := version.Parse(full)
		if err != nil {
			return Atom{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		a.Version = &v
	} else if groups["op"] != "" {
		return Atom{}, fmt.Errorf("%w: %q: version operator without a version", ErrInvalid, s)
	}

	if slotPart := groups["slotpart"]; slotPart != "" {
		slot, err := parseSlot(slotPart)
		if err != nil {
			return Atom{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		a.Slot = slot
		if err := requireFeature(e, eapi.FeatureSlotDeps, "slot deps"); err != nil {
			return Atom{}, err
		}
		if slot.Subslot != "" && !e.Has(eapi.FeatureSubslots) {
			return Atom{}, fmt.Errorf("%w: %q: subslots require EAPI feature %q, not enabled by EAPI %s", ErrInvalid, s, eapi.FeatureSubslots, e.ID())
		}
		if slot.Operator != NoSlotOperator && !e.Has(eapi.FeatureSlotOperators) {
			return Atom{}, fmt.Errorf("%w: %q: slot operators require EAPI feature %q, not enabled by EAPI %s", ErrInvalid, s, eapi.FeatureSlotOperators, e.ID())
		}
	}

	if useStr := groups["usedeps"]; groups["usedeps"] != "" || strings.Contains(s, "[]") {
		deps, err := parseUseDeps(useStr)
		if err != nil {
			return Atom{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		a.UseDeps = deps
		if err := requireFeature(e, eapi.FeatureUseDeps, "USE deps"); err != nil {
			return Atom{}, err
		}
		for _, d := range deps {
			if d.Default != NoDefault {
				if err := requireFeature(e, eapi.FeatureUseDepDefaults, "USE-dep defaults"); err != nil {
					return Atom{}, err
				}
			}
		}
	}

	if repo := groups["repo"]; repo != "" {
		a.Repo = repo
		if err := requireFeature(e, eapi.FeatureRepoIDs, "repo ids"); err != nil {
			return Atom{}, err
		}
	}

	return a, nil
}

func parseSlot(s string) (Slot, error) {
	var slot Slot
	switch {
	case s == "*":
		slot.Operator = SlotOperatorStar
		return slot, nil
	case s == "=":
		slot.Operator = SlotOperatorEqual
		return slot, nil
	case strings.HasSuffix(s, "="):
		slot.Operator = SlotOperatorEqual
		s = s[:len(s)-1]
	}
	parts := strings.SplitN(s, "/", 2)
	slot.Slot = parts[0]
	if len(parts) == 2 {
		slot.Subslot = parts[1]
	}
	if slot.Slot == "" {
		return Slot{}, fmt.Errorf("empty slot name")
	}
	return slot, nil
}

func parseUseDeps(s string) ([]UseDep, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	deps := make([]UseDep, 0, len(fields))
	for _, f := range fields {
		disabled := false
		if strings.HasPrefix(f, "-") {
			disabled = true
			f = f[1:]
		}
		m := useDepRe.FindStringSubmatch(f)
		if m == nil {
			return nil, fmt.Errorf("malformed USE dep %q", f)
		}
		groups := make(map[string]string, len(m))
		for i, name := range useDepRe.SubexpNames() {
			if name != "" {
				groups[name] = m[i]
			}
		}
		d := UseDep{Flag: groups["flag"], Negated: groups["neg"] != ""}
		switch groups["default"] {
		case "(+)":
			d.Default = DefaultEnabled
		case "(-)":
			d.Default = DefaultDisabled
		}
		switch {
		case disabled:
			d.State = UseDisabled
		case groups["state"] == "=":
			d.State = UseEqual
		case groups["state"] == "?":
			d.State = UseConditional
		case d.Negated:
			d.State = UseNotEqual
		default:
			d.State = UseEnabled
		}
		deps = append(deps, d)
	}
	return deps, nil
}
