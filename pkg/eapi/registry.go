// Package eapi implements the EAPI feature registry (spec.md C5) and the
// command table each EAPI exposes to the shell runtime (C6).
//
// Grounded on _examples/obentoo-bentoo-tools/internal/autoupdate/config.go
// for the embed/unmarshal-into-struct shape (that file reads
// packages.toml with BurntSushi/toml; this one reads an embedded
// eapis.yaml with gopkg.in/yaml.v3, which is a wiring home for a teacher
// dependency the retained source files never directly imported). The
// "flat registry, no inheritance chain" shape follows the design note in
// spec.md §9.
package eapi

import (
	"embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/eapis.yaml
var dataFS embed.FS

// ErrUnsupported is returned by Get for an EAPI id the registry doesn't
// know, per spec.md's UnsupportedEapi error kind.
var ErrUnsupported = errors.New("unsupported EAPI")

// Eapi is an immutable record describing one EAPI's feature set, command
// table, phase list, and variable semantics (spec.md §3 "EAPI").
type Eapi struct {
	id              string
	index           int
	official        bool
	features        map[Feature]bool
	phases          []Phase
	mandatoryVars   []string
	incrementalVars []string
	configDefaults  []string
	commands        *CommandTable
}

func (e *Eapi) ID() string      { return e.id }
func (e *Eapi) Index() int      { return e.index }
func (e *Eapi) Official() bool  { return e.official }

// Has reports whether this EAPI enables the given feature.
func (e *Eapi) Has(f Feature) bool { return e.features[f] }

// Phases returns the ordered phase list this EAPI defines.
func (e *Eapi) Phases() []Phase { return e.phases }

// HasPhase reports whether p is one of this EAPI's phases.
func (e *Eapi) HasPhase(p Phase) bool {
	for _, q := range e.phases {
		if q == p {
			return true
		}
	}
	return false
}

func (e *Eapi) MandatoryVars() []string   { return e.mandatoryVars }
func (e *Eapi) IncrementalVars() []string { return e.incrementalVars }
func (e *Eapi) ConfigDefaults() []string  { return e.configDefaults }
func (e *Eapi) Commands() *CommandTable   { return e.commands }

// IsIncremental reports whether varName accumulates across eclass
// inheritance under this EAPI (spec.md §3 "incremental metadata variable").
func (e *Eapi) IsIncremental(varName string) bool {
	for _, v := range e.incrementalVars {
		if v == varName {
			return true
		}
	}
	return false
}

// IsMandatory reports whether varName must be non-empty for this EAPI.
func (e *Eapi) IsMandatory(varName string) bool {
	for _, v := range e.mandatoryVars {
		if v == varName {
			return true
		}
	}
	return false
}

// Less orders EAPIs by registration index, per spec.md §4.5.
func (e *Eapi) Less(o *Eapi) bool { return e.index < o.index }

func (e *Eapi) String() string { return "EAPI " + e.id }

type yamlEapi struct {
	ID              string   `yaml:"id"`
	Index           int      `yaml:"index"`
	Official        bool     `yaml:"official"`
	Features        []string `yaml:"features"`
	Phases          []string `yaml:"phases"`
	MandatoryVars   []string `yaml:"mandatory_vars"`
	IncrementalVars []string `yaml:"incremental_vars"`
	ConfigDefaults  []string `yaml:"config_defaults"`
}

type yamlRoot struct {
	Eapis []yamlEapi `yaml:"eapis"`
}

// Registry is an ordered, lookup-by-id collection of EAPIs. The zero value
// is not usable; use NewRegistry or the package-level Default.
type Registry struct {
	byID    map[string]*Eapi
	ordered []*Eapi
}

// Get looks up an EAPI by id.
func (r *Registry) Get(id string) (*Eapi, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, id)
	}
	return e, nil
}

// All returns every registered EAPI in registration order.
func (r *Registry) All() []*Eapi { return r.ordered }

// Latest returns the highest-index registered EAPI.
func (r *Registry) Latest() *Eapi { return r.ordered[len(r.ordered)-1] }

// LatestOfficial returns the highest-index registered EAPI marked official.
func (r *Registry) LatestOfficial() *Eapi {
	for i := len(r.ordered) - 1; i >= 0; i-- {
		if r.ordered[i].official {
			return r.ordered[i]
		}
	}
	return nil
}

// NewRegistry builds a Registry from embedded YAML data plus the static
// command specs in commands.go. It panics on malformed embedded data,
// since that data ships with the binary and a malformed build is a
// programming error, not a runtime condition.
func NewRegistry() *Registry {
	var root yamlRoot
	raw, err := dataFS.ReadFile("data/eapis.yaml")
	if err != nil {
		panic(fmt.Sprintf("eapi: reading embedded registry data: %v", err))
	}
	if err := yaml.Unmarshal(raw, &root); err != nil {
		panic(fmt.Sprintf("eapi: parsing embedded registry data: %v", err))
	}

	r := &Registry{byID: make(map[string]*Eapi, len(root.Eapis))}
	for _, y := range root.Eapis {
		features := make(map[Feature]bool, len(y.Features))
		for _, fname := range y.Features {
			f := Feature(fname)
			if !allFeatures[f] {
				panic(fmt.Sprintf("eapi: EAPI %s: unknown feature %q", y.ID, fname))
			}
			features[f] = true
		}
		phases := make([]Phase, len(y.Phases))
		for i, p := range y.Phases {
			phases[i] = Phase(p)
		}
		e := &Eapi{
			id:              y.ID,
			index:           y.Index,
			official:        y.Official,
			features:        features,
			phases:          phases,
			mandatoryVars:   y.MandatoryVars,
			incrementalVars: y.IncrementalVars,
			configDefaults:  y.ConfigDefaults,
		}
		e.commands = buildCommandTable(e)
		r.byID[e.id] = e
		r.ordered = append(r.ordered, e)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].index < r.ordered[j].index })
	return r
}

// Default is the process-wide registry, built once at package init from
// the embedded eapis.yaml. EAPI records are immutable after construction
// and safe for concurrent read access from multiple goroutines building
// packages in parallel, per spec.md §5.
var Default = NewRegistry()

// Get looks up an EAPI by id in the default registry.
func Get(id string) (*Eapi, error) { return Default.Get(id) }

// Latest returns the default registry's highest-index EAPI.
func Latest() *Eapi { return Default.Latest() }

// LatestOfficial returns the default registry's highest-index official EAPI.
func LatestOfficial() *Eapi { return Default.LatestOfficial() }
