package dep

import "sort"

// DependencySet is the sorted top-level container of Dependency[T]
// nodes: the value every ebuild metadata variable (DEPEND, LICENSE,
// SRC_URI, REQUIRED_USE, RESTRICT, PROPERTIES) parses into (spec.md
// §4.3). It supports the same traversals as Dependency[T] plus
// structural set algebra.
type DependencySet[T Leaf] struct {
	children []Dependency[T]
}

// NewSet builds a DependencySet from top-level dependency nodes,
// deduplicating and sorting them the same way AllOf's children are.
func NewSet[T Leaf](children ...Dependency[T]) DependencySet[T] {
	cs := dedupe(children)
	sortByRender(cs)
	return DependencySet[T]{children: cs}
}

func (s DependencySet[T]) IsEmpty() bool { return len(s.children) == 0 }
func (s DependencySet[T]) Len() int      { return len(s.children) }

// Iter returns the top-level members.
func (s DependencySet[T]) Iter() []Dependency[T] {
	return append([]Dependency[T]{}, s.children...)
}

// IterFlatten yields every leaf across every top-level member, in order.
func (s DependencySet[T]) IterFlatten() []T {
	var out []T
	for _, c := range s.children {
		out = append(out, c.IterFlatten()...)
	}
	return out
}

// IterRecursive yields every node of every member, pre-order.
func (s DependencySet[T]) IterRecursive() []Dependency[T] {
	var out []Dependency[T]
	for _, c := range s.children {
		out = append(out, c.IterRecursive()...)
	}
	return out
}

// IterConditionals yields every UseDepHead across every member.
func (s DependencySet[T]) IterConditionals() []UseDepHead {
	var out []UseDepHead
	for _, c := range s.children {
		out = append(out, c.IterConditionals()...)
	}
	return out
}

// IterConditionalFlatten yields every (guard-stack, leaf) pair across
// every member.
func (s DependencySet[T]) IterConditionalFlatten() []ConditionalLeaf[T] {
	var out []ConditionalLeaf[T]
	for _, c := range s.children {
		out = append(out, c.IterConditionalFlatten()...)
	}
	return out
}

// SortRecursive canonicalizes ordering throughout every member, and
// re-sorts the top level.
func (s DependencySet[T]) SortRecursive() DependencySet[T] {
	children := make([]Dependency[T], len(s.children))
	for i, c := range s.children {
		children[i] = c.Sort()
	}
	sortByRender(children)
	return DependencySet[T]{children: children}
}

// Evaluate reduces every member by useSet, splicing a dissolved
// top-level Conditional's survivors in as their own members rather than
// leaving them wrapped, and dropping members pruned to nothing.
func (s DependencySet[T]) Evaluate(useSet map[string]bool) DependencySet[T] {
	keep := func(c UseDepHead) bool { return c.satisfied(useSet) }
	return s.evaluateSplice(keep)
}

// EvaluateForce is like Evaluate but every Conditional is kept when
// value is true and dropped when false, regardless of flag name.
func (s DependencySet[T]) EvaluateForce(value bool) DependencySet[T] {
	return s.evaluateSplice(func(UseDepHead) bool { return value })
}

func (s DependencySet[T]) evaluateSplice(keep func(UseDepHead) bool) DependencySet[T] {
	var kept []Dependency[T]
	for _, c := range s.children {
		kept = append(kept, c.evaluateSplice(keep)...)
	}
	sortByRender(kept)
	return DependencySet[T]{children: kept}
}

// ContainsTree, ContainsUseDep, ContainsLeaf, and ContainsString mirror
// Dependency's Contains family at the set level.

func (s DependencySet[T]) ContainsTree(other Dependency[T]) bool {
	for _, c := range s.children {
		if c.ContainsTree(other) {
			return true
		}
	}
	return false
}

func (s DependencySet[T]) ContainsUseDep(u UseDepHead) bool {
	for _, c := range s.children {
		if c.ContainsUseDep(u) {
			return true
		}
	}
	return false
}

func (s DependencySet[T]) ContainsLeaf(leaf T) bool {
	return s.ContainsString(leaf.String())
}

func (s DependencySet[T]) ContainsString(str string) bool {
	for _, c := range s.children {
		if c.ContainsString(str) {
			return true
		}
	}
	return false
}

func setKeys[T Leaf](s DependencySet[T]) map[string]Dependency[T] {
	m := make(map[string]Dependency[T], len(s.children))
	for _, c := range s.children {
		m[c.Render()] = c
	}
	return m
}

// Intersect (∧) returns members present, by rendered form, in both sets.
func (s DependencySet[T]) Intersect(o DependencySet[T]) DependencySet[T] {
	other := setKeys(o)
	var kept []Dependency[T]
	for _, c := range s.children {
		if _, ok := other[c.Render()]; ok {
			kept = append(kept, c)
		}
	}
	return NewSet(kept...)
}

// Union (∨) returns every member of either set, deduplicated.
func (s DependencySet[T]) Union(o DependencySet[T]) DependencySet[T] {
	all := append(append([]Dependency[T]{}, s.children...), o.children...)
	return NewSet(all...)
}

// Difference (−) returns members of s not present, by rendered form, in o.
func (s DependencySet[T]) Difference(o DependencySet[T]) DependencySet[T] {
	other := setKeys(o)
	var kept []Dependency[T]
	for _, c := range s.children {
		if _, ok := other[c.Render()]; !ok {
			kept = append(kept, c)
		}
	}
	return NewSet(kept...)
}

// SymmetricDifference (△) returns members present in exactly one set.
func (s DependencySet[T]) SymmetricDifference(o DependencySet[T]) DependencySet[T] {
	a, b := setKeys(s), setKeys(o)
	var kept []Dependency[T]
	for k, v := range a {
		if _, ok := b[k]; !ok {
			kept = append(kept, v)
		}
	}
	for k, v := range b {
		if _, ok := a[k]; !ok {
			kept = append(kept, v)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Render() < kept[j].Render() })
	return DependencySet[T]{children: kept}
}

// Render renders every member space-separated, in sorted order.
func (s DependencySet[T]) Render() string {
	parts := make([]string, len(s.children))
	for i, c := range s.children {
		parts[i] = c.Render()
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func (s DependencySet[T]) String() string { return s.Render() }
