// Package restrict implements a boolean query mini-language over package
// attributes: "category == "dev-libs" && slot == "0"" style expressions
// combining attribute comparisons with &&, ||, ^^, !, and parens.
//
// This supplements spec.md's core (a query DSL over parsed packages isn't
// one of the nine core components) grounded on
// original_source/crates/pkgcraft/src/restrict/parse/pkg.rs, scoped down
// to the attributes this module's types actually expose (category,
// package, slot, subslot, description, eapi, repo) — the original's
// maintainer/depset/ordered-set sub-grammars query repository metadata
// this core doesn't model (Manifest/fetch tooling and repo/profile
// discovery are both spec.md Non-goals), so they're left out rather than
// built against data this module never has.
package restrict

import (
	"fmt"
	"regexp"
	"strings"
)

// Target is the attribute surface a Restrict evaluates against: anything
// identifying a single package instance this module knows how to
// describe.
type Target struct {
	Category    string
	Package     string
	Slot        string
	Subslot     string
	Description string
	EAPI        string
	Repo        string
}

// Restrict is a boolean predicate over a Target.
type Restrict interface {
	Matches(t Target) bool
	render() string
}

func (a *andRestrict) String() string { return render(a) }
func (o *orRestrict) String() string  { return render(o) }
func (x *xorRestrict) String() string { return render(x) }
func (n *notRestrict) String() string { return render(n) }
func (a *attrRestrict) String() string { return render(a) }

func render(r Restrict) string { return r.render() }

type andRestrict struct{ left, right Restrict }

func (a *andRestrict) Matches(t Target) bool { return a.left.Matches(t) && a.right.Matches(t) }
func (a *andRestrict) render() string        { return "(" + a.left.render() + " && " + a.right.render() + ")" }

type orRestrict struct{ left, right Restrict }

func (o *orRestrict) Matches(t Target) bool { return o.left.Matches(t) || o.right.Matches(t) }
func (o *orRestrict) render() string        { return "(" + o.left.render() + " || " + o.right.render() + ")" }

type xorRestrict struct{ left, right Restrict }

func (x *xorRestrict) Matches(t Target) bool { return x.left.Matches(t) != x.right.Matches(t) }
func (x *xorRestrict) render() string        { return "(" + x.left.render() + " ^^ " + x.right.render() + ")" }

type notRestrict struct{ inner Restrict }

func (n *notRestrict) Matches(t Target) bool { return !n.inner.Matches(t) }
func (n *notRestrict) render() string        { return "!" + n.inner.render() }

// And, Or, Xor, Not build Restrict trees directly, for callers
// constructing queries programmatically instead of parsing them.
func And(left, right Restrict) Restrict { return &andRestrict{left, right} }
func Or(left, right Restrict) Restrict  { return &orRestrict{left, right} }
func Xor(left, right Restrict) Restrict { return &xorRestrict{left, right} }
func Not(r Restrict) Restrict           { return &notRestrict{r} }

// strOp is one of the comparison operators the original grammar's
// string_ops rule accepts.
type strOp int

const (
	opEqual strOp = iota
	opNotEqual
	opSubstr
	opRegex
	opNotRegex
)

// attrRestrict compares one named attribute against a value using op.
type attrRestrict struct {
	attr  string
	op    strOp
	value string
	re    *regexp.Regexp // compiled at parse time for opRegex/opNotRegex
}

func (a *attrRestrict) attrValue(t Target) string {
	switch a.attr {
	case "category":
		return t.Category
	case "package":
		return t.Package
	case "slot":
		return t.Slot
	case "subslot":
		return t.Subslot
	case "description":
		return t.Description
	case "eapi":
		return t.EAPI
	case "repo":
		return t.Repo
	default:
		return ""
	}
}

func (a *attrRestrict) Matches(t Target) bool {
	got := a.attrValue(t)
	switch a.op {
	case opEqual:
		return got == a.value
	case opNotEqual:
		return got != a.value
	case opSubstr:
		return strings.Contains(got, a.value)
	case opRegex:
		return a.re != nil && a.re.MatchString(got)
	case opNotRegex:
		return a.re == nil || !a.re.MatchString(got)
	default:
		return false
	}
}

func (a *attrRestrict) render() string {
	ops := map[strOp]string{opEqual: "==", opNotEqual: "!=", opSubstr: ">=", opRegex: "=~", opNotRegex: "!~"}
	return fmt.Sprintf("%s %s %q", a.attr, ops[a.op], a.value)
}

var knownAttrs = map[string]bool{
	"category": true, "package": true, "slot": true, "subslot": true,
	"description": true, "eapi": true, "repo": true,
}
