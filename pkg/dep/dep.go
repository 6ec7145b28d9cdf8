// Package dep implements the dependency expression tree and its
// top-level set container (spec.md C3): the recursive sum type backing
// every ebuild metadata variable (DEPEND, LICENSE, SRC_URI,
// REQUIRED_USE, RESTRICT, PROPERTIES), generic over leaf type T.
//
// Go has no tagged-union/sum-type construct, so Dependency[T] is
// represented the way this codebase's other closed variant types are
// (see pkg/eapi.Scope): a struct carrying a Kind discriminant plus the
// fields relevant to that kind, with unexported fields and constructor
// functions enforcing the invariants a Rust enum would get for free.
// Structural identity (for dedup, sort, and Contains) uses each node's
// deterministic rendered form as its key, since T is only required to
// support String(), not equality or ordering.
package dep

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyGroup is returned by every group constructor when given zero
// children, per spec.md §4.3 "An empty group is rejected."
var ErrEmptyGroup = errors.New("empty dependency group")

// Leaf is the constraint T must satisfy: a deterministic, bytewise-exact
// rendering, the same property Atom, a bare string, and URI all carry.
type Leaf interface {
	String() string
}

// Kind discriminates the sum type's variants.
type Kind int

const (
	KindEnabled Kind = iota
	KindDisabled
	KindAllOf
	KindAnyOf
	KindExactlyOneOf
	KindAtMostOneOf
	KindConditional
)

func (k Kind) String() string {
	switch k {
	case KindEnabled:
		return "Enabled"
	case KindDisabled:
		return "Disabled"
	case KindAllOf:
		return "AllOf"
	case KindAnyOf:
		return "AnyOf"
	case KindExactlyOneOf:
		return "ExactlyOneOf"
	case KindAtMostOneOf:
		return "AtMostOneOf"
	case KindConditional:
		return "Conditional"
	default:
		return "?"
	}
}

// UseDepHead is the USE-conditional guard on a Conditional subtree:
// "flag?" or "!flag?".
type UseDepHead struct {
	Flag    string
	Negated bool
}

func (u UseDepHead) String() string {
	if u.Negated {
		return "!" + u.Flag + "?"
	}
	return u.Flag + "?"
}

// satisfied reports whether this guard admits the given USE set.
func (u UseDepHead) satisfied(useSet map[string]bool) bool {
	if u.Negated {
		return !useSet[u.Flag]
	}
	return useSet[u.Flag]
}

// Dependency is one node of the tree: a literal leaf, a boolean/ordering
// group, or a USE-conditional subtree.
type Dependency[T Leaf] struct {
	kind     Kind
	leaf     T
	children []Dependency[T]
	cond     UseDepHead
}

// Enabled constructs a literal leaf node.
func Enabled[T Leaf](leaf T) Dependency[T] {
	return Dependency[T]{kind: KindEnabled, leaf: leaf}
}

// Disabled constructs a negated literal leaf, meaningful only inside
// REQUIRED_USE.
func Disabled[T Leaf](leaf T) Dependency[T] {
	return Dependency[T]{kind: KindDisabled, leaf: leaf}
}

func newGroup[T Leaf](kind Kind, children []Dependency[T]) (Dependency[T], error) {
	if len(children) == 0 {
		return Dependency[T]{}, fmt.Errorf("%w: %s", ErrEmptyGroup, kind)
	}
	cs := dedupe(children)
	if kind == KindAllOf {
		sortByRender(cs)
	}
	return Dependency[T]{kind: kind, children: cs}, nil
}

// AllOf constructs an unordered "( ... )" group: children deduplicate
// and sort structurally.
func AllOf[T Leaf](children ...Dependency[T]) (Dependency[T], error) {
	return newGroup(KindAllOf, children)
}

// AnyOf constructs a "|| ( ... )" group: children deduplicate but
// preserve source order, since meaning depends on it.
func AnyOf[T Leaf](children ...Dependency[T]) (Dependency[T], error) {
	return newGroup(KindAnyOf, children)
}

// ExactlyOneOf constructs a "^^ ( ... )" group, legal only in
// REQUIRED_USE.
func ExactlyOneOf[T Leaf](children ...Dependency[T]) (Dependency[T], error) {
	return newGroup(KindExactlyOneOf, children)
}

// AtMostOneOf constructs a "?? ( ... )" group, legal only in
// REQUIRED_USE.
func AtMostOneOf[T Leaf](children ...Dependency[T]) (Dependency[T], error) {
	return newGroup(KindAtMostOneOf, children)
}

// Conditional constructs a USE-conditional subtree headed by cond;
// children deduplicate and sort structurally, like AllOf.
func Conditional[T Leaf](cond UseDepHead, children ...Dependency[T]) (Dependency[T], error) {
	if len(children) == 0 {
		return Dependency[T]{}, fmt.Errorf("%w: Conditional(%s)", ErrEmptyGroup, cond)
	}
	cs := dedupe(children)
	sortByRender(cs)
	return Dependency[T]{kind: KindConditional, cond: cond, children: cs}, nil
}

func dedupe[T Leaf](children []Dependency[T]) []Dependency[T] {
	seen := make(map[string]bool, len(children))
	out := make([]Dependency[T], 0, len(children))
	for _, c := range children {
		k := c.Render()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

func sortByRender[T Leaf](children []Dependency[T]) {
	sort.Slice(children, func(i, j int) bool { return children[i].Render() < children[j].Render() })
}

// Kind reports this node's variant.
func (d Dependency[T]) Kind() Kind { return d.kind }

// Leaf returns the leaf value; only meaningful for Enabled/Disabled.
func (d Dependency[T]) Leaf() T { return d.leaf }

// Cond returns the USE guard; only meaningful for Conditional.
func (d Dependency[T]) Cond() UseDepHead { return d.cond }

// IsEmpty reports whether this node has no children (always true for
// leaves).
func (d Dependency[T]) IsEmpty() bool { return len(d.children) == 0 }

// Len returns the immediate child count; leaves have length 1.
func (d Dependency[T]) Len() int {
	switch d.kind {
	case KindEnabled, KindDisabled:
		return 1
	default:
		return len(d.children)
	}
}

// Iter returns the immediate children, empty for leaves.
func (d Dependency[T]) Iter() []Dependency[T] {
	return append([]Dependency[T]{}, d.children...)
}

// IterFlatten yields every leaf in depth-first left-to-right order.
func (d Dependency[T]) IterFlatten() []T {
	var out []T
	d.walkLeaves(&out)
	return out
}

func (d Dependency[T]) walkLeaves(out *[]T) {
	switch d.kind {
	case KindEnabled, KindDisabled:
		*out = append(*out, d.leaf)
	default:
		for _, c := range d.children {
			c.walkLeaves(out)
		}
	}
}

// IterRecursive yields every node, including the root, in pre-order.
func (d Dependency[T]) IterRecursive() []Dependency[T] {
	out := []Dependency[T]{d}
	for _, c := range d.children {
		out = append(out, c.IterRecursive()...)
	}
	return out
}

// IterConditionals yields every UseDepHead encountered in pre-order.
func (d Dependency[T]) IterConditionals() []UseDepHead {
	var out []UseDepHead
	for _, n := range d.IterRecursive() {
		if n.kind == KindConditional {
			out = append(out, n.cond)
		}
	}
	return out
}

// ConditionalLeaf is one (guard-stack, leaf) pair yielded by
// IterConditionalFlatten.
type ConditionalLeaf[T Leaf] struct {
	Stack []UseDepHead
	Leaf  T
}

// IterConditionalFlatten yields every leaf paired with the stack of
// Conditional guards from root to that leaf.
func (d Dependency[T]) IterConditionalFlatten() []ConditionalLeaf[T] {
	var out []ConditionalLeaf[T]
	d.walkConditionalFlatten(nil, &out)
	return out
}

func (d Dependency[T]) walkConditionalFlatten(stack []UseDepHead, out *[]ConditionalLeaf[T]) {
	switch d.kind {
	case KindEnabled, KindDisabled:
		cp := append([]UseDepHead{}, stack...)
		*out = append(*out, ConditionalLeaf[T]{Stack: cp, Leaf: d.leaf})
	case KindConditional:
		next := append(append([]UseDepHead{}, stack...), d.cond)
		for _, c := range d.children {
			c.walkConditionalFlatten(next, out)
		}
	default:
		for _, c := range d.children {
			c.walkConditionalFlatten(stack, out)
		}
	}
}

// Sort recursively canonicalizes AllOf and Conditional child ordering;
// AnyOf/ExactlyOneOf/AtMostOneOf children keep source order since their
// meaning depends on it, but are themselves still recursed into.
func (d Dependency[T]) Sort() Dependency[T] {
	if d.kind == KindEnabled || d.kind == KindDisabled {
		return d
	}
	children := make([]Dependency[T], len(d.children))
	for i, c := range d.children {
		children[i] = c.Sort()
	}
	if d.kind == KindAllOf || d.kind == KindConditional {
		sortByRender(children)
	}
	out := d
	out.children = children
	return out
}

// Evaluate reduces the tree to branches selected by useSet: a
// Conditional(flag?, ...) is kept iff flag is set, !flag? iff it's not.
// All other kinds recurse and drop if they become empty; Enabled/
// Disabled leaves always pass through. ok is false if the whole tree was
// pruned away.
func (d Dependency[T]) Evaluate(useSet map[string]bool) (Dependency[T], bool) {
	return d.evaluate(func(c UseDepHead) bool { return c.satisfied(useSet) })
}

// EvaluateForce is like Evaluate but every Conditional is kept when
// value is true and dropped when false, regardless of flag name — used
// to enumerate every possibly-reachable dependency.
func (d Dependency[T]) EvaluateForce(value bool) (Dependency[T], bool) {
	return d.evaluate(func(UseDepHead) bool { return value })
}

// evaluateSplice reduces this node to the list of nodes that should
// appear at its position once keep is applied: zero, one, or many. A
// satisfied Conditional dissolves entirely, splicing its surviving
// children directly into the caller's list rather than wrapping them;
// every other group kind recurses, drops if it becomes empty, and
// otherwise rewraps its survivors in a new node of the same kind. This
// mirrors pkgcraft's IterEvaluate (original_source/crates/pkgcraft/src/
// dep.rs): only UseConditional dissolves on evaluation, every other
// group kind re-forms around its flattened children.
func (d Dependency[T]) evaluateSplice(keep func(UseDepHead) bool) []Dependency[T] {
	switch d.kind {
	case KindEnabled, KindDisabled:
		return []Dependency[T]{d}
	case KindConditional:
		if !keep(d.cond) {
			return nil
		}
		var kept []Dependency[T]
		for _, c := range d.children {
			kept = append(kept, c.evaluateSplice(keep)...)
		}
		return kept
	default:
		var kept []Dependency[T]
		for _, c := range d.children {
			kept = append(kept, c.evaluateSplice(keep)...)
		}
		if len(kept) == 0 {
			return nil
		}
		return []Dependency[T]{{kind: d.kind, children: kept}}
	}
}

func (d Dependency[T]) evaluate(keep func(UseDepHead) bool) (Dependency[T], bool) {
	results := d.evaluateSplice(keep)
	switch len(results) {
	case 0:
		return Dependency[T]{}, false
	case 1:
		return results[0], true
	default:
		// d was itself a bare Conditional that dissolved into multiple
		// siblings; DependencySet.Evaluate splices those into separate
		// top-level members directly instead of going through this
		// single-node path, so this case only bites a caller evaluating a
		// lone Conditional outside of a set. Fold the survivors back into
		// an AllOf so the single-Dependency contract still holds.
		return Dependency[T]{kind: KindAllOf, children: results}, true
	}
}

// Render returns the deterministic textual form: operator keyword (if
// any), space, "(", space-separated child renderings, ")"; leaves render
// themselves via T.String().
func (d Dependency[T]) Render() string {
	switch d.kind {
	case KindEnabled:
		return d.leaf.String()
	case KindDisabled:
		return "!" + d.leaf.String()
	}
	var prefix string
	switch d.kind {
	case KindAnyOf:
		prefix = "|| "
	case KindExactlyOneOf:
		prefix = "^^ "
	case KindAtMostOneOf:
		prefix = "?? "
	case KindConditional:
		prefix = d.cond.String() + " "
	}
	parts := make([]string, len(d.children))
	for i, c := range d.children {
		parts[i] = c.Render()
	}
	return prefix + "( " + strings.Join(parts, " ") + " )"
}

func (d Dependency[T]) String() string { return d.Render() }

// ContainsTree reports whether this node's subtree structurally includes
// other, compared via rendered form.
func (d Dependency[T]) ContainsTree(other Dependency[T]) bool {
	target := other.Render()
	for _, n := range d.IterRecursive() {
		if n.Render() == target {
			return true
		}
	}
	return false
}

// ContainsUseDep reports whether u appears as a Conditional guard
// anywhere in this subtree.
func (d Dependency[T]) ContainsUseDep(u UseDepHead) bool {
	for _, c := range d.IterConditionals() {
		if c == u {
			return true
		}
	}
	return false
}

// ContainsLeaf reports whether leaf appears (by rendered form) anywhere
// in this subtree.
func (d Dependency[T]) ContainsLeaf(leaf T) bool {
	return d.ContainsString(leaf.String())
}

// ContainsString reports whether s matches the rendered form of any
// leaf in this subtree; this is Contains's type-dispatched "string
// matching a leaf's to_string" case (spec.md §4.3), split into its own
// method since Go's type switches cannot dispatch on a type parameter.
func (d Dependency[T]) ContainsString(s string) bool {
	for _, l := range d.IterFlatten() {
		if l.String() == s {
			return true
		}
	}
	return false
}
