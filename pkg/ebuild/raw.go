// Package ebuild supplements spec.md's core with the raw/validated
// metadata split the source material actually uses: RawMetadata holds
// the sourced-but-unparsed variable map handed up from pkg/shell;
// Metadata is the fully parsed, mandatory-variable-checked result every
// other collaborator consumes.
//
// Grounded on original_source/crates/pkgcraft/src/pkg/ebuild/raw.rs
// (the EAPI= first-line sniff and the raw/cooked metadata split) and
// crates/pkgcraft/src/pkg/ebuild/metadata.rs's MetadataRaw/Metadata
// distinction; this package is the Go home for that split, since
// spec.md's own C8/C9 treat BuildState.Vars as the lowest common
// denominator and leave "who parses it into trees" to a collaborator.
package ebuild

import (
	"fmt"
	"strings"

	"github.com/obentoo/ebuildkit/pkg/atom"
	"github.com/obentoo/ebuildkit/pkg/dep"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/parser"
)

// RawMetadata is the as-sourced variable map for one ebuild, before
// mandatory-variable validation or tree parsing.
type RawMetadata struct {
	EAPI *eapi.Eapi
	Vars map[string]string
}

// SniffEAPI extracts the EAPI= assignment from an ebuild's first
// non-comment, non-blank line, defaulting to "0" if absent — the same
// rule original_source's Pkg::parse_eapi uses, since ebuild tooling
// must know the EAPI before it can safely source the rest of the file.
func SniffEAPI(data string) string {
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rest, ok := strings.CutPrefix(line, "EAPI=")
		if !ok {
			return "0"
		}
		if idx := strings.Index(rest, "#"); idx >= 0 {
			rest = rest[:idx]
		}
		return strings.Trim(strings.TrimSpace(rest), `"'`)
	}
	return "0"
}

// Metadata is the fully parsed, validated result of sourcing one
// ebuild: every metadata variable spec.md §6 lists, parsed into its
// typed tree form.
type Metadata struct {
	EAPI        *eapi.Eapi
	Description string
	Homepage    []string
	Slot        atom.Slot
	Keywords    []string
	IUSE        []string
	Inherited   []string

	License     dep.DependencySet[dep.Str]
	Properties  dep.DependencySet[dep.Str]
	Restrict    dep.DependencySet[dep.Str]
	RequiredUse dep.DependencySet[dep.Str]
	SrcURI      dep.DependencySet[dep.URI]
	Depend      dep.DependencySet[atom.Atom]
	RDepend     dep.DependencySet[atom.Atom]
	BDepend     dep.DependencySet[atom.Atom]
	IDepend     dep.DependencySet[atom.Atom]
	PDepend     dep.DependencySet[atom.Atom]
}

// FromRaw validates mandatory variables and parses every metadata
// variable present in raw into its typed form, per spec.md §6:
// "absence is a valid empty tree except where the EAPI lists the
// variable as mandatory".
func FromRaw(raw RawMetadata) (*Metadata, error) {
	e := raw.EAPI
	for _, name := range e.MandatoryVars() {
		if strings.TrimSpace(raw.Vars[name]) == "" {
			return nil, fmt.Errorf("invalid ebuild: missing mandatory variable %s", name)
		}
	}

	m := &Metadata{EAPI: e}
	m.Description = raw.Vars["DESCRIPTION"]
	m.Homepage = strings.Fields(raw.Vars["HOMEPAGE"])
	m.Keywords = strings.Fields(raw.Vars["KEYWORDS"])
	m.IUSE = strings.Fields(raw.Vars["IUSE"])
	m.Inherited = strings.Fields(raw.Vars["INHERITED"])

	if slotField := raw.Vars["SLOT"]; slotField != "" {
		slot, err := parseSlotField(slotField)
		if err != nil {
			return nil, fmt.Errorf("invalid ebuild: SLOT: %w", err)
		}
		m.Slot = slot
	}

	var err error
	if m.License, err = parser.ParseStringDependencySet(raw.Vars["LICENSE"], parser.PlainGrammar); err != nil {
		return nil, fmt.Errorf("invalid ebuild: LICENSE: %w", err)
	}
	if m.Properties, err = parser.ParseStringDependencySet(raw.Vars["PROPERTIES"], parser.PlainGrammar); err != nil {
		return nil, fmt.Errorf("invalid ebuild: PROPERTIES: %w", err)
	}
	if m.Restrict, err = parser.ParseStringDependencySet(raw.Vars["RESTRICT"], parser.PlainGrammar); err != nil {
		return nil, fmt.Errorf("invalid ebuild: RESTRICT: %w", err)
	}
	if m.RequiredUse, err = parser.ParseStringDependencySet(raw.Vars["REQUIRED_USE"], parser.RequiredUseGrammar(e)); err != nil {
		return nil, fmt.Errorf("invalid ebuild: REQUIRED_USE: %w", err)
	}
	if m.SrcURI, err = parser.ParseURIDependencySet(raw.Vars["SRC_URI"]); err != nil {
		return nil, fmt.Errorf("invalid ebuild: SRC_URI: %w", err)
	}
	if m.Depend, err = parser.ParseAtomDependencySet(raw.Vars["DEPEND"], e); err != nil {
		return nil, fmt.Errorf("invalid ebuild: DEPEND: %w", err)
	}
	if m.RDepend, err = parser.ParseAtomDependencySet(raw.Vars["RDEPEND"], e); err != nil {
		return nil, fmt.Errorf("invalid ebuild: RDEPEND: %w", err)
	}
	if m.BDepend, err = parser.ParseAtomDependencySet(raw.Vars["BDEPEND"], e); err != nil {
		return nil, fmt.Errorf("invalid ebuild: BDEPEND: %w", err)
	}
	if m.IDepend, err = parser.ParseAtomDependencySet(raw.Vars["IDEPEND"], e); err != nil {
		return nil, fmt.Errorf("invalid ebuild: IDEPEND: %w", err)
	}
	if m.PDepend, err = parser.ParseAtomDependencySet(raw.Vars["PDEPEND"], e); err != nil {
		return nil, fmt.Errorf("invalid ebuild: PDEPEND: %w", err)
	}

	return m, nil
}

// parseSlotField parses the bare SLOT variable, which carries only
// slot[/subslot] with no operator or USE-deps (those belong to atoms
// depending on this package, not to the package's own declaration).
func parseSlotField(s string) (atom.Slot, error) {
	parts := strings.SplitN(s, "/", 2)
	if parts[0] == "" {
		return atom.Slot{}, fmt.Errorf("empty slot name")
	}
	slot := atom.Slot{Slot: parts[0]}
	if len(parts) == 2 {
		slot.Subslot = parts[1]
	}
	return slot, nil
}
