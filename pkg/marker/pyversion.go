package marker

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// versionVars are the marker variables that constrain the Python version.
var versionVars = map[string]bool{
	"python_version":      true,
	"python_full_version": true,
}

// PythonVersions derives the minimal version range implied by the entire
// marker expression, not only its platform projection. Clauses that do not
// reference a Python version variable contribute no constraint. The result
// renders as a range string such as ">=3.6,<4.0", with "or" branches joined
// by " || ", "*" when the marker admits every version, and "<empty>" when
// the branches are contradictory.
//
// Malformed version literals are treated as unconstrained rather than
// failing: the upstream resolver has already validated the marker, and a
// constraint we cannot read must not invent a bound.
func PythonVersions(e Expr) string {
	return pythonRange(e).String()
}

func pythonRange(e Expr) intervalSet {
	switch v := e.(type) {
	case Comparison:
		return comparisonRange(v)
	case And:
		set := universe()
		for _, sub := range v.Exprs {
			set = set.intersect(pythonRange(sub))
		}
		return set
	case Or:
		var set intervalSet
		for _, sub := range v.Exprs {
			set = append(set, pythonRange(sub)...)
		}
		return set.normalize()
	default:
		return universe()
	}
}

// comparisonRange translates one clause into a version interval set.
//
// python_version compares major.minor prefixes, so inclusive bounds on a
// two-segment literal cover the whole minor series: == "3.6" admits every
// 3.6.x release and <= "3.6" means < 3.7. python_full_version (or any
// three-segment literal) compares exact versions.
func comparisonRange(c Comparison) intervalSet {
	if !versionVars[c.Var] {
		return universe()
	}
	v, err := semver.NewVersion(c.Value)
	if err != nil {
		return universe()
	}
	segments := strings.Count(c.Value, ".") + 1
	prefix := segments < 3

	exact := interval{
		lo: &bound{version: v, inclusive: true, text: c.Value},
		hi: &bound{version: v, inclusive: true, text: c.Value},
	}
	series := interval{
		lo: &bound{version: v, inclusive: true, text: c.Value},
		hi: bumpBound(v, segments),
	}

	switch c.Op {
	case "==":
		if prefix {
			return intervalSet{series}
		}
		return intervalSet{exact}
	case "!=":
		var excluded interval
		if prefix {
			excluded = series
		} else {
			excluded = exact
		}
		return intervalSet{
			{hi: &bound{version: excluded.lo.version, inclusive: false, text: excluded.lo.text}},
			{lo: &bound{version: excluded.hi.version, inclusive: !excluded.hi.inclusive, text: excluded.hi.text}},
		}.normalize()
	case "<":
		return intervalSet{{hi: &bound{version: v, inclusive: false, text: c.Value}}}
	case "<=":
		if prefix {
			return intervalSet{{hi: bumpBound(v, segments)}}
		}
		return intervalSet{{hi: &bound{version: v, inclusive: true, text: c.Value}}}
	case ">":
		if prefix {
			next := bumpBound(v, segments)
			return intervalSet{{lo: &bound{version: next.version, inclusive: true, text: next.text}}}
		}
		return intervalSet{{lo: &bound{version: v, inclusive: false, text: c.Value}}}
	case ">=":
		return intervalSet{{lo: &bound{version: v, inclusive: true, text: c.Value}}}
	case "~=":
		// Compatible release: >= value, < next release of the second-most
		// specific segment (~= "3.6.1" caps at 3.7, ~= "3.6" caps at 4).
		if segments < 2 {
			return universe()
		}
		return intervalSet{{
			lo: &bound{version: v, inclusive: true, text: c.Value},
			hi: bumpBound(v, segments-1),
		}}
	default:
		// Membership and arbitrary-equality operators carry no usable
		// version bound.
		return universe()
	}
}

// bumpBound returns the exclusive upper bound one step above v at the given
// specificity: 1 segment bumps the major, 2 segments bump the minor.
func bumpBound(v *semver.Version, segments int) *bound {
	if segments <= 1 {
		return &bound{
			version: newVersion(fmt.Sprintf("%d", v.Major()+1)),
			text:    fmt.Sprintf("%d", v.Major()+1),
		}
	}
	text := fmt.Sprintf("%d.%d", v.Major(), v.Minor()+1)
	return &bound{version: newVersion(text), text: text}
}

func newVersion(s string) *semver.Version {
	v, err := semver.NewVersion(s)
	if err != nil {
		panic(fmt.Sprintf("marker: bad generated version %q: %v", s, err))
	}
	return v
}

// =============================================================================
// Interval algebra
// =============================================================================

// bound is one end of a version interval. A nil *bound means unbounded.
// text preserves the literal spelling for rendering (so "3.6" does not
// round-trip as "3.6.0").
type bound struct {
	version   *semver.Version
	inclusive bool
	text      string
}

// interval is a contiguous version range. Either end may be nil (unbounded).
type interval struct {
	lo *bound
	hi *bound
}

// intervalSet is a union of intervals, kept sorted and disjoint by
// normalize. An empty set admits no version.
type intervalSet []interval

func universe() intervalSet {
	return intervalSet{{}}
}

func (iv interval) valid() bool {
	if iv.lo == nil || iv.hi == nil {
		return true
	}
	switch iv.lo.version.Compare(iv.hi.version) {
	case -1:
		return true
	case 0:
		return iv.lo.inclusive && iv.hi.inclusive
	default:
		return false
	}
}

// isPoint reports whether the interval admits exactly one version.
func (iv interval) isPoint() bool {
	return iv.lo != nil && iv.hi != nil &&
		iv.lo.inclusive && iv.hi.inclusive &&
		iv.lo.version.Equal(iv.hi.version)
}

func (s intervalSet) intersect(other intervalSet) intervalSet {
	var out intervalSet
	for _, a := range s {
		for _, b := range other {
			lo := tighterLo(a.lo, b.lo)
			hi := tighterHi(a.hi, b.hi)
			iv := interval{lo: lo, hi: hi}
			if iv.valid() {
				out = append(out, iv)
			}
		}
	}
	return out.normalize()
}

// tighterLo picks the more restrictive lower bound (nil is -inf).
func tighterLo(a, b *bound) *bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	switch a.version.Compare(b.version) {
	case 1:
		return a
	case -1:
		return b
	default:
		if a.inclusive {
			return b
		}
		return a
	}
}

// tighterHi picks the more restrictive upper bound (nil is +inf).
func tighterHi(a, b *bound) *bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	switch a.version.Compare(b.version) {
	case -1:
		return a
	case 1:
		return b
	default:
		if a.inclusive {
			return b
		}
		return a
	}
}

// normalize sorts intervals by lower bound and merges overlapping or
// touching neighbors, producing a canonical disjoint union.
func (s intervalSet) normalize() intervalSet {
	if len(s) <= 1 {
		return s
	}

	sorted := make(intervalSet, len(s))
	copy(sorted, s)
	// Insertion sort by lower bound; sets here are tiny.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && lessLo(sorted[j].lo, sorted[j-1].lo); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	out := intervalSet{sorted[0]}
	for _, next := range sorted[1:] {
		last := &out[len(out)-1]
		if joinable(*last, next) {
			if looserHi(last.hi, next.hi) {
				last.hi = next.hi
			}
			continue
		}
		out = append(out, next)
	}
	return out
}

// lessLo orders lower bounds: nil (-inf) first, then by version, with
// inclusive bounds before exclusive ones at the same version.
func lessLo(a, b *bound) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	switch a.version.Compare(b.version) {
	case -1:
		return true
	case 1:
		return false
	default:
		return a.inclusive && !b.inclusive
	}
}

// joinable reports whether next overlaps or touches cur (cur.lo <= next.lo).
func joinable(cur, next interval) bool {
	if cur.hi == nil || next.lo == nil {
		return true
	}
	switch next.lo.version.Compare(cur.hi.version) {
	case -1:
		return true
	case 0:
		return next.lo.inclusive || cur.hi.inclusive
	default:
		return false
	}
}

// looserHi reports whether b extends further up than a (nil is +inf).
func looserHi(a, b *bound) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	switch b.version.Compare(a.version) {
	case 1:
		return true
	case -1:
		return false
	default:
		return b.inclusive && !a.inclusive
	}
}

// String renders the set in the exporter's normalized range syntax.
func (s intervalSet) String() string {
	if len(s) == 0 {
		return "<empty>"
	}
	parts := make([]string, 0, len(s))
	for _, iv := range s {
		parts = append(parts, iv.String())
	}
	return strings.Join(parts, " || ")
}

func (iv interval) String() string {
	if iv.lo == nil && iv.hi == nil {
		return "*"
	}
	if iv.isPoint() {
		return iv.lo.text
	}
	var parts []string
	if iv.lo != nil {
		op := ">="
		if !iv.lo.inclusive {
			op = ">"
		}
		parts = append(parts, op+iv.lo.text)
	}
	if iv.hi != nil {
		op := "<"
		if iv.hi.inclusive {
			op = "<="
		}
		parts = append(parts, op+iv.hi.text)
	}
	return strings.Join(parts, ",")
}
