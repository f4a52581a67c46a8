// Package rudd is the one concrete implementation of package symbolic's interfaces: it
// backs ColouredSet with github.com/dalzilio/rudd.Node values sharing a single
// *rudd.BDD, and lays out that BDD's variables as one bit per network variable (the
// state-bit family) followed by ExtrasPerVar auxiliary bit-groups, each likewise one bit
// per network variable. The per-family index slices (stateBits, extraBits) give every
// projection and comparator its BDD variable indices, so no operation re-derives index
// arithmetic inline; golang.org/x/tools/container/intsets.Sparse sets of the same
// indices are built alongside them but no operation reads them.
package rudd

import (
	"fmt"

	"github.com/dalzilio/rudd"
	"golang.org/x/tools/container/intsets"

	"github.com/symbnet/hctlmc/symbolic"
)

// layout is shared (by pointer) by every ColouredSet and Graph built from the same
// rudd.BDD: it fixes which BDD variable index belongs to which network variable, in
// which bit family.
type layout struct {
	bdd       *rudd.BDD
	variables []string
	varIndex  map[string]int
	extras    int

	// stateBits[i] is the BDD variable index for network variable i's state bit.
	stateBits []int
	// extraBits[k][i] is the BDD variable index for network variable i's bit in extra
	// bit-group k.
	extraBits [][]int

	stateSet *intsets.Sparse // all indices in stateBits, precomputed once
	extraSet []*intsets.Sparse
}

func newLayout(variables []string, extras int) (*layout, error) {
	n := len(variables)
	total := n * (1 + extras)
	bdd, err := rudd.New(total)
	if err != nil {
		return nil, fmt.Errorf("rudd: allocating BDD with %d variables: %w", total, err)
	}
	l := &layout{bdd: bdd, variables: variables, extras: extras}
	l.varIndex = make(map[string]int, n)
	for i, v := range variables {
		l.varIndex[v] = i
	}
	l.stateBits = make([]int, n)
	for i := range variables {
		l.stateBits[i] = i
	}
	l.stateSet = &intsets.Sparse{}
	for _, idx := range l.stateBits {
		l.stateSet.Insert(idx)
	}
	l.extraBits = make([][]int, extras)
	l.extraSet = make([]*intsets.Sparse, extras)
	for k := 0; k < extras; k++ {
		group := make([]int, n)
		set := &intsets.Sparse{}
		for i := range variables {
			idx := n*(k+1) + i
			group[i] = idx
			set.Insert(idx)
		}
		l.extraBits[k] = group
		l.extraSet[k] = set
	}
	return l, nil
}

func (l *layout) wrap(n rudd.Node) ColouredSet { return ColouredSet{l: l, node: n} }

// bitsOf returns the BDD variable indices that make up bg.
func (l *layout) bitsOf(bg symbolic.BitGroup) []int {
	if bg.StateBits {
		return l.stateBits
	}
	return l.extraBits[bg.Index]
}

// ColouredSet wraps a rudd.Node together with the layout (and BDD) it belongs to.
type ColouredSet struct {
	l    *layout
	node rudd.Node
}

var _ symbolic.ColouredSet = ColouredSet{}

func (c ColouredSet) other(o symbolic.ColouredSet) rudd.Node { return o.(ColouredSet).node }

// Intersect implements symbolic.ColouredSet.
func (c ColouredSet) Intersect(other symbolic.ColouredSet) symbolic.ColouredSet {
	return c.l.wrap(c.l.bdd.And(c.node, c.other(other)))
}

// Union implements symbolic.ColouredSet.
func (c ColouredSet) Union(other symbolic.ColouredSet) symbolic.ColouredSet {
	return c.l.wrap(c.l.bdd.Or(c.node, c.other(other)))
}

// Minus implements symbolic.ColouredSet.
func (c ColouredSet) Minus(other symbolic.ColouredSet) symbolic.ColouredSet {
	return c.l.wrap(c.l.bdd.And(c.node, c.l.bdd.Not(c.other(other))))
}

// IsEmpty implements symbolic.ColouredSet.
func (c ColouredSet) IsEmpty() bool { return c.node == c.l.bdd.False() }

// Equals implements symbolic.ColouredSet.
func (c ColouredSet) Equals(other symbolic.ColouredSet) bool { return c.node == c.other(other) }

// Project implements symbolic.ColouredSet: existentially quantify out bitGroup's BDD
// variables.
func (c ColouredSet) Project(bitGroup symbolic.BitGroup) symbolic.ColouredSet {
	set, err := c.l.bdd.Makeset(c.l.bitsOf(bitGroup))
	if err != nil {
		panic(fmt.Sprintf("rudd: Makeset for project: %v", err))
	}
	return c.l.wrap(c.l.bdd.Exist(c.node, set))
}

// Size implements symbolic.ColouredSet via rudd's model-count primitive.
func (c ColouredSet) Size() float64 {
	return c.l.bdd.Satcount(c.node)
}

// Sanitize implements symbolic.Sanitizable by existentially projecting out every extra
// bit-group -- see Graph.Canonical for why this is sufficient rather than a genuine
// cross-manager diagram translation.
func (c ColouredSet) Sanitize(canonical symbolic.Graph) (symbolic.ColouredSet, error) {
	cg, ok := canonical.(*Graph)
	if !ok || cg.l.bdd != c.l.bdd {
		return nil, fmt.Errorf("rudd: Sanitize: canonical graph does not share this set's BDD manager")
	}
	result := symbolic.ColouredSet(c)
	for k := range c.l.extraBits {
		result = result.Project(symbolic.BitGroup{Index: k})
	}
	return result, nil
}
