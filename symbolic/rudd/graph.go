package rudd

import (
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/symbnet/hctlmc/symbolic"
)

// Transition gives, for one network variable, the BDD node over the state-bit family
// that is true in exactly the states where that variable is "unstable" (its update
// function's value differs from its current one) for a given colour; Graph asks for the
// relation on every Pre, VarPre and VarPost call and does not cache it.
type Transition interface {
	// Unstable returns, for variable name, the coloured-vertex set of (colour, state)
	// pairs in which the variable's update function disagrees with its current value.
	// The returned set depends only on state and colour bits (never on any extra
	// bit-group).
	Unstable(name string) symbolic.ColouredSet
}

// Graph is the rudd-backed symbolic.Graph: one shared *rudd.BDD laid out by layout,
// a static "valid parametrization" unit set, and a Transition supplying each network
// variable's instability relation.
type Graph struct {
	l          *layout
	unit       rudd.Node
	transition Transition
}

var (
	_ symbolic.Graph        = (*Graph)(nil)
	_ symbolic.Restrictable = (*Graph)(nil)
)

// New builds a Graph over variables (in a fixed order that determines BDD variable
// index assignment), reserving extrasPerVar auxiliary bit-groups per variable, with
// transition supplying the per-variable instability relation used by Pre/VarPre/VarPost.
// The returned Graph's unit set is initially "everything" (bdd.True()); a caller
// representing a statically constrained parametrization space narrows it afterwards with
// WithUnit, built from this Graph's own primitives (StateProposition, comparators, or any
// set this Graph's operations can express) -- the BDD must exist before a constraint
// naming its variables can be built, so the two steps cannot be collapsed into one call.
func New(variables []string, extrasPerVar int, transition Transition) (*Graph, error) {
	l, err := newLayout(variables, extrasPerVar)
	if err != nil {
		return nil, err
	}
	return &Graph{l: l, unit: l.bdd.True(), transition: transition}, nil
}

// WithUnit returns a Graph sharing this Graph's layout and transition but with its unit
// set replaced by unit -- used once, after construction, to install a static
// parametrization-consistency constraint built from this Graph's own primitives.
func (g *Graph) WithUnit(unit symbolic.ColouredSet) *Graph {
	return &Graph{l: g.l, unit: unit.(ColouredSet).node, transition: g.transition}
}

// Unit implements symbolic.Graph.
func (g *Graph) Unit() symbolic.ColouredSet { return g.l.wrap(g.unit) }

// Empty implements symbolic.Graph.
func (g *Graph) Empty() symbolic.ColouredSet { return g.l.wrap(g.l.bdd.False()) }

// Full implements symbolic.Graph.
func (g *Graph) Full() symbolic.ColouredSet { return g.l.wrap(g.l.bdd.True()) }

// HasVariable implements symbolic.Graph and hctl.PropositionChecker.
func (g *Graph) HasVariable(name string) bool {
	_, ok := g.l.varIndex[name]
	return ok
}

// ExtrasPerVar implements symbolic.Graph.
func (g *Graph) ExtrasPerVar() int { return g.l.extras }

// Variables implements symbolic.VariableOrdering.
func (g *Graph) Variables() []string { return g.l.variables }

// Canonical returns the Graph a ColouredSet produced by g should be Sanitize-d against:
// the same underlying BDD and state-bit indices, with no extra bit-groups. Sharing one
// BDD manager means sanitizing is simply projecting out every extra bit-group -- no
// cross-manager diagram translation is needed, which would otherwise require walking
// node tables this package's reconstructed rudd API does not expose.
func (g *Graph) Canonical() *Graph {
	canonicalLayout := &layout{bdd: g.l.bdd, variables: g.l.variables, varIndex: g.l.varIndex, stateBits: g.l.stateBits, stateSet: g.l.stateSet}
	return &Graph{l: canonicalLayout, unit: g.l.bdd.True(), transition: g.transition}
}

// StateProposition implements symbolic.Graph.
func (g *Graph) StateProposition(p string) (symbolic.ColouredSet, bool) {
	idx, ok := g.l.varIndex[p]
	if !ok {
		return nil, false
	}
	n, err := g.l.bdd.Ithvar(g.l.stateBits[idx])
	if err != nil {
		panic(fmt.Sprintf("rudd: Ithvar(%d): %v", g.l.stateBits[idx], err))
	}
	return g.l.wrap(n), true
}

// StateVarSet implements symbolic.Graph: pointwise equality between the state-bit
// family and extra bit-group extraIndex, expressed as a conjunction of per-variable
// biimplications.
func (g *Graph) StateVarSet(extraIndex int) symbolic.ColouredSet {
	return g.comparatorOver(g.l.stateBits, g.l.extraBits[extraIndex])
}

// VarComparator implements symbolic.Graph: pointwise equality between extra bit-groups
// i and j.
func (g *Graph) VarComparator(i, j int) symbolic.ColouredSet {
	return g.comparatorOver(g.l.extraBits[i], g.l.extraBits[j])
}

func (g *Graph) comparatorOver(left, right []int) symbolic.ColouredSet {
	acc := g.l.bdd.True()
	for k := range left {
		lv, err := g.l.bdd.Ithvar(left[k])
		if err != nil {
			panic(fmt.Sprintf("rudd: Ithvar(%d): %v", left[k], err))
		}
		rv, err := g.l.bdd.Ithvar(right[k])
		if err != nil {
			panic(fmt.Sprintf("rudd: Ithvar(%d): %v", right[k], err))
		}
		acc = g.l.bdd.And(acc, g.l.bdd.Biimp(lv, rv))
	}
	return g.l.wrap(acc)
}

// Pre implements symbolic.Graph: the union, over every network variable, of VarPre.
func (g *Graph) Pre(phi symbolic.ColouredSet) symbolic.ColouredSet {
	acc := g.Empty()
	for _, v := range g.l.variables {
		acc = acc.Union(g.VarPre(v, phi))
	}
	return acc
}

// VarPre implements symbolic.Graph: phi's predecessors under a single step that flips
// exactly variable's state bit, restricted to states where variable is unstable: phi
// with variable's state bit replaced by its negation (rudd.Compose, see flipStateBit),
// intersected with the unstable relation -- i.e. Compose(phi, var -> !var) ∧
// unstable(var).
func (g *Graph) VarPre(variable string, phi symbolic.ColouredSet) symbolic.ColouredSet {
	idx, ok := g.l.varIndex[variable]
	if !ok {
		return g.Empty()
	}
	flipped := g.flipStateBit(phi, idx)
	unstable := g.transition.Unstable(variable)
	return flipped.Intersect(unstable).(ColouredSet)
}

// VarPost implements symbolic.Graph, the dual of VarPre.
func (g *Graph) VarPost(variable string, phi symbolic.ColouredSet) symbolic.ColouredSet {
	idx, ok := g.l.varIndex[variable]
	if !ok {
		return g.Empty()
	}
	unstable := g.transition.Unstable(variable)
	restricted := phi.Intersect(unstable)
	return g.flipStateBit(restricted, idx)
}

// flipStateBit returns the set obtained by substituting variable idx's state bit with
// its own negation everywhere in phi -- i.e. relabelling phi's membership by toggling
// that one bit, via rudd.Compose against a fresh node for !var.
func (g *Graph) flipStateBit(phi symbolic.ColouredSet, idx int) symbolic.ColouredSet {
	bitIdx := g.l.stateBits[idx]
	v, err := g.l.bdd.Ithvar(bitIdx)
	if err != nil {
		panic(fmt.Sprintf("rudd: Ithvar(%d): %v", bitIdx, err))
	}
	notV := g.l.bdd.Not(v)
	composed := g.l.bdd.Compose(phi.(ColouredSet).node, bitIdx, notV)
	return g.l.wrap(composed)
}

// Restrict implements symbolic.Restrictable: domain is assumed already expressed over
// extraIndex's bit group (package kernel's RestrictDomain does that transplant via the
// JUMP-style construction before calling Restrict, so every Graph implementation shares
// one transplant formula instead of reimplementing it per backend).
func (g *Graph) Restrict(domain symbolic.ColouredSet, extraIndex int) (symbolic.Graph, error) {
	narrowed := g.l.bdd.And(g.unit, domain.(ColouredSet).node)
	return &Graph{l: g.l, unit: narrowed, transition: g.transition}, nil
}

// RestrictColours implements symbolic.Restrictable: colours is already expressed over
// this Graph's own bit space (no transplant -- package classify builds it via
// kernel.ProjectStateBits over a result this same Graph produced), so narrowing Unit is
// a direct intersection.
func (g *Graph) RestrictColours(colours symbolic.ColouredSet) (symbolic.Graph, error) {
	narrowed := g.l.bdd.And(g.unit, colours.(ColouredSet).node)
	return &Graph{l: g.l, unit: narrowed, transition: g.transition}, nil
}
