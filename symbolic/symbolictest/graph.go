// Package symbolictest provides a small, explicitly-enumerated (as opposed to
// BDD-backed) implementation of the symbolic package's interfaces, for use in unit and
// property tests of package kernel and package eval where a brute-force-correct
// reference model matters more than the production decision-diagram backing that
// symbolic/rudd provides. Networks handled here are tiny (a handful of Boolean
// variables, a handful of colours) by construction -- this package exists to check the
// HCTL operator algebra, not to scale.
package symbolictest

import (
	"fmt"

	"github.com/symbnet/hctlmc/symbolic"
)

const maxExtras = 4

// tuple is one element of a coloured-vertex set: a parameter-assignment index, a
// bitmask over the network's state variables, and up to maxExtras auxiliary bitmasks
// (one per supported HCTL state variable), each likewise a bitmask over the network's
// state variables.
type tuple struct {
	colour int
	state  uint64
	extras [maxExtras]uint64
}

// Set is the symbolictest ColouredSet: an explicit set of tuples. bits is the number of
// network variables, shared by every set built off the same Graph -- Project needs it to
// enumerate a removed bit-group's full domain rather than merely zeroing it.
type Set struct {
	bits    int
	members map[tuple]struct{}
}

func newSet(bits int) *Set { return &Set{bits: bits, members: make(map[tuple]struct{})} }

func (s *Set) Intersect(other symbolic.ColouredSet) symbolic.ColouredSet {
	o := other.(*Set)
	out := newSet(s.bits)
	for t := range s.members {
		if _, ok := o.members[t]; ok {
			out.members[t] = struct{}{}
		}
	}
	return out
}

func (s *Set) Union(other symbolic.ColouredSet) symbolic.ColouredSet {
	o := other.(*Set)
	out := newSet(s.bits)
	for t := range s.members {
		out.members[t] = struct{}{}
	}
	for t := range o.members {
		out.members[t] = struct{}{}
	}
	return out
}

func (s *Set) Minus(other symbolic.ColouredSet) symbolic.ColouredSet {
	o := other.(*Set)
	out := newSet(s.bits)
	for t := range s.members {
		if _, ok := o.members[t]; !ok {
			out.members[t] = struct{}{}
		}
	}
	return out
}

func (s *Set) IsEmpty() bool { return len(s.members) == 0 }

// Size implements symbolic.ColouredSet: the tuples are already explicitly enumerated, so
// the exact count is free.
func (s *Set) Size() float64 { return float64(len(s.members)) }

func (s *Set) Equals(other symbolic.ColouredSet) bool {
	o := other.(*Set)
	if len(s.members) != len(o.members) {
		return false
	}
	for t := range s.members {
		if _, ok := o.members[t]; !ok {
			return false
		}
	}
	return true
}

// Sanitize implements symbolic.Sanitizable: since a tuple already stores its state and
// colour bits separately from its extras array, sanitizing is simply discarding the
// extras (package eval has already verified canonical's variables are a name-based
// prefix of this set's owning graph's variables).
func (s *Set) Sanitize(canonical symbolic.Graph) (symbolic.ColouredSet, error) {
	if _, ok := canonical.(*Graph); !ok {
		return nil, fmt.Errorf("symbolictest: Sanitize: canonical graph is not a *symbolictest.Graph")
	}
	out := newSet(s.bits)
	for t := range s.members {
		out.members[tuple{colour: t.colour, state: t.state}] = struct{}{}
	}
	return out, nil
}

// Project implements existential projection over a bit-group: a tuple with the group's
// bits cleared survives if ANY assignment to those bits was present in s, and once it
// survives, EVERY assignment to those bits becomes a member -- merely zeroing the group
// (as opposed to expanding it) would silently narrow the result to whichever single
// assignment happened to be present, which is wrong whenever the group is later
// recombined with a set that still varies over it.
func (s *Set) Project(bg symbolic.BitGroup) symbolic.ColouredSet {
	out := newSet(s.bits)
	n := s.domainSize()
	seen := make(map[tuple]struct{}, len(s.members))
	for t := range s.members {
		base := t
		if bg.StateBits {
			base.state = 0
		} else {
			base.extras[bg.Index] = 0
		}
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		for v := uint64(0); v < n; v++ {
			p := base
			if bg.StateBits {
				p.state = v
			} else {
				p.extras[bg.Index] = v
			}
			out.members[p] = struct{}{}
		}
	}
	return out
}

func (s *Set) domainSize() uint64 { return uint64(1) << uint(s.bits) }

// Graph is a brute-force symbolic.Graph: Names is the ordered list of network
// variable names; Colours is the number of distinct parameter assignments; Update, for
// each colour and state bitmask, returns the successor state bitmask each variable
// would take on (i.e. Update(colour, state) already encodes every variable's update
// function evaluated at once) -- this mirrors the "Boolean network with colour-indexed
// update functions" input the core consumes, without parsing any textual BN format
// (loading from text remains out of scope, per spec.md's Non-goals).
type Graph struct {
	Names     []string
	Colours   int
	Extras    int
	Update    func(colour int, state uint64) uint64

	varIndex  map[string]int
	unitCache *Set
}

// NewGraph builds a Graph and precomputes its full unit set (every (colour, state)
// pair crossed with every possible assignment to each extra bit-group) -- tractable
// because this package is for small test fixtures only.
func NewGraph(variables []string, colours int, extrasPerVar int, update func(colour int, state uint64) uint64) *Graph {
	g := &Graph{Names: variables, Colours: colours, Extras: extrasPerVar, Update: update}
	g.varIndex = make(map[string]int, len(variables))
	for i, v := range variables {
		g.varIndex[v] = i
	}
	g.unitCache = g.buildUnit()
	return g
}

func (g *Graph) numStates() uint64 { return uint64(1) << uint(len(g.Names)) }

func (g *Graph) buildUnit() *Set {
	out := newSet(len(g.Names))
	g.forEachExtrasAssignment(func(extras [maxExtras]uint64) {
		for c := 0; c < g.Colours; c++ {
			for s := uint64(0); s < g.numStates(); s++ {
				out.members[tuple{colour: c, state: s, extras: extras}] = struct{}{}
			}
		}
	})
	return out
}

// forEachExtrasAssignment enumerates every assignment to the ExtrasPerVar active extra
// bit-groups (each an independent full state bitmask).
func (g *Graph) forEachExtrasAssignment(f func(extras [maxExtras]uint64)) {
	n := g.numStates()
	total := uint64(1)
	for i := 0; i < g.Extras; i++ {
		total *= n
	}
	for combo := uint64(0); combo < total; combo++ {
		var extras [maxExtras]uint64
		rest := combo
		for i := 0; i < g.Extras; i++ {
			extras[i] = rest % n
			rest /= n
		}
		f(extras)
	}
}

func (g *Graph) Unit() symbolic.ColouredSet { return g.unitCache }

func (g *Graph) Empty() symbolic.ColouredSet { return newSet(len(g.Names)) }

func (g *Graph) Full() symbolic.ColouredSet { return g.buildUnit() }

func (g *Graph) HasVariable(name string) bool {
	_, ok := g.varIndex[name]
	return ok
}

func (g *Graph) ExtrasPerVar() int { return g.Extras }

// Variables implements symbolic.VariableOrdering.
func (g *Graph) Variables() []string { return g.Names }

func (g *Graph) StateProposition(p string) (symbolic.ColouredSet, bool) {
	idx, ok := g.varIndex[p]
	if !ok {
		return nil, false
	}
	out := newSet(len(g.Names))
	for t := range g.unitCache.members {
		if t.state&(1<<uint(idx)) != 0 {
			out.members[t] = struct{}{}
		}
	}
	return out, true
}

func (g *Graph) StateVarSet(extraIndex int) symbolic.ColouredSet {
	out := newSet(len(g.Names))
	for t := range g.unitCache.members {
		if t.extras[extraIndex] == t.state {
			out.members[t] = struct{}{}
		}
	}
	return out
}

func (g *Graph) VarComparator(i, j int) symbolic.ColouredSet {
	out := newSet(len(g.Names))
	for t := range g.unitCache.members {
		if t.extras[i] == t.extras[j] {
			out.members[t] = struct{}{}
		}
	}
	return out
}

func (g *Graph) Pre(phi symbolic.ColouredSet) symbolic.ColouredSet {
	out := newSet(len(g.Names))
	p := phi.(*Set)
	for i := range g.Names {
		g.accumulateVarPre(p, i, out)
	}
	return out
}

func (g *Graph) VarPre(variable string, phi symbolic.ColouredSet) symbolic.ColouredSet {
	idx, ok := g.varIndex[variable]
	if !ok {
		return newSet(len(g.Names))
	}
	out := newSet(len(g.Names))
	g.accumulateVarPre(phi.(*Set), idx, out)
	return out
}

func (g *Graph) accumulateVarPre(phi *Set, varIdx int, out *Set) {
	for t := range g.unitCache.members {
		next := g.Update(t.colour, t.state)
		bit := uint64(1) << uint(varIdx)
		if next&bit == t.state&bit {
			continue // variable varIdx is stable in t -- it cannot fire
		}
		successor := t.state ^ bit
		if _, ok := phi.members[tuple{colour: t.colour, state: successor, extras: t.extras}]; ok {
			out.members[t] = struct{}{}
		}
	}
}

func (g *Graph) VarPost(variable string, phi symbolic.ColouredSet) symbolic.ColouredSet {
	idx, ok := g.varIndex[variable]
	if !ok {
		return newSet(len(g.Names))
	}
	p := phi.(*Set)
	out := newSet(len(g.Names))
	bit := uint64(1) << uint(idx)
	for t := range p.members {
		next := g.Update(t.colour, t.state)
		if next&bit == t.state&bit {
			continue
		}
		successor := t.state ^ bit
		out.members[tuple{colour: t.colour, state: successor, extras: t.extras}] = struct{}{}
	}
	return out
}

// restrictedGraph is the cheap derived view Restrict returns: same Update/variables,
// but a narrowed unit set.
type restrictedGraph struct {
	*Graph
	unit *Set
}

func (r *restrictedGraph) Unit() symbolic.ColouredSet { return r.unit }

// Restrict and RestrictColours narrow this view's own unit set, so successive
// restrictions compose instead of restarting from the underlying Graph's unit.
func (r *restrictedGraph) Restrict(domain symbolic.ColouredSet, extraIndex int) (symbolic.Graph, error) {
	return &restrictedGraph{Graph: r.Graph, unit: r.unit.Intersect(domain).(*Set)}, nil
}

func (r *restrictedGraph) RestrictColours(colours symbolic.ColouredSet) (symbolic.Graph, error) {
	return &restrictedGraph{Graph: r.Graph, unit: r.unit.Intersect(colours).(*Set)}, nil
}

// Restrict implements symbolic.Restrictable: the new unit is this graph's unit
// intersected with domain transplanted onto extraIndex's bit-group (the transplant
// itself -- projecting domain over state bits then re-expressing it as a comparator on
// extraIndex -- is done by package kernel's RestrictDomain; Restrict here only takes
// the already-transplanted set and narrows Unit).
func (g *Graph) Restrict(domain symbolic.ColouredSet, extraIndex int) (symbolic.Graph, error) {
	narrowed := g.Unit().Intersect(domain).(*Set)
	return &restrictedGraph{Graph: g, unit: narrowed}, nil
}

// RestrictColours implements symbolic.Restrictable: colours needs no transplant, since it
// is already expressed over this graph's own bit space.
func (g *Graph) RestrictColours(colours symbolic.ColouredSet) (symbolic.Graph, error) {
	narrowed := g.Unit().Intersect(colours).(*Set)
	return &restrictedGraph{Graph: g, unit: narrowed}, nil
}
