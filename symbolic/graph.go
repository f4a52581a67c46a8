// Package symbolic declares the external collaborators spec.md calls C11: the extended
// symbolic transition graph, the coloured-vertex set it is built from, and the two
// oracles (attractor, fixed-point) the evaluator consults. These are interfaces only --
// this package's one concrete implementation, symbolic/rudd, backs them with a shared
// github.com/dalzilio/rudd BDD; package kernel and package eval import only the
// interfaces declared here, never symbolic/rudd directly, so an alternative
// decision-diagram backend can be swapped in without touching the evaluator.
package symbolic

// ColouredSet is a symbolic set of (parameter assignment, network state,
// assignments-to-extra-bit-groups) triples backed by a single decision diagram. Every
// operation returns a new value; ColouredSet values are immutable.
type ColouredSet interface {
	// Intersect, Union and Minus are the three set operations the kernel composes
	// every Boolean and temporal operator from.
	Intersect(other ColouredSet) ColouredSet
	Union(other ColouredSet) ColouredSet
	Minus(other ColouredSet) ColouredSet

	// IsEmpty tests emptiness without materializing a new set.
	IsEmpty() bool

	// Equals tests equality of the underlying diagrams (used by fixed-point loops to
	// detect convergence, and by the sanitize-round-trip test property).
	Equals(other ColouredSet) bool

	// Project existentially projects out the named decision-diagram bit group(s),
	// returning a new set. bitGroup identifies which family of bits to project --
	// see BitGroup.
	Project(bitGroup BitGroup) ColouredSet

	// Size estimates the set's cardinality over the decision diagram's full variable
	// space. Implementations are not required to agree on an absolute scale (a bit
	// group the set never depends on still multiplies the count by its full domain
	// size) -- package classify only ever compares Size across sets produced by the
	// same Graph, where that uniform multiplier cancels out and relative order is all
	// that matters.
	Size() float64
}

// BitGroup identifies a family of decision-diagram variables inside a Graph: either the
// network's whole state-bit family (one bit per network variable), or the Index-th
// auxiliary ("extra") bit-group, which is likewise one bit per network variable -- an
// extra group encodes the state "pointed to" by one HCTL state variable.
type BitGroup struct {
	// StateBits, when true, selects the state-bit family (used by JUMP's projection).
	// When false, Index selects one extra bit-group.
	StateBits bool
	Index     int
}

// Graph is the extended symbolic transition graph: a decision-diagram-backed object
// with one state bit per network variable, plus ExtrasPerVar auxiliary bit-groups per
// network variable so that HCTL state variables can be quantified symbolically.
// Implementations must not be mutated by anything in package kernel or package eval.
type Graph interface {
	// Unit is the coloured-vertex set representing everything valid under the graph's
	// static constraints (parametrization consistency, etc).
	Unit() ColouredSet

	// Empty and Full construct the two Boolean constants as coloured-vertex sets
	// (relative to the whole encoding, not relative to Unit -- callers intersect with
	// Unit themselves where spec.md requires it).
	Empty() ColouredSet
	Full() ColouredSet

	// HasVariable reports whether name is a network variable known to this graph; it
	// is the PropositionChecker hctl.ValidateAndRename consults.
	HasVariable(name string) bool

	// ExtrasPerVar is k, the number of auxiliary bit-groups reserved per network
	// variable. A formula using more distinct HCTL state variables than this at any
	// point in its tree cannot be evaluated against this graph (CapacityError).
	ExtrasPerVar() int

	// StateProposition returns { s : p holds in s }, derived from the state bit of
	// network variable p. The caller (package kernel) intersects with Unit.
	StateProposition(p string) (ColouredSet, bool)

	// StateVarSet returns a comparator set expressing pointwise equality between the
	// state-bit family and the extra bit-group at index extraIndex (the group reserved
	// for the HCTL state variable currently assigned that index). The caller
	// intersects with Unit.
	StateVarSet(extraIndex int) ColouredSet

	// VarComparator returns a comparator set expressing pointwise equality between the
	// extra bit-groups at indices i and j. The caller intersects with Unit.
	VarComparator(i, j int) ColouredSet

	// Pre returns the symbolic predecessor set of phi under the network's
	// asynchronous transition relation.
	Pre(phi ColouredSet) ColouredSet

	// VarPre returns the symbolic predecessor set of phi restricted to updating
	// exactly the named network variable -- the single-variable-step primitive the
	// EU saturation fixed point iterates over.
	VarPre(variable string, phi ColouredSet) ColouredSet

	// VarPost is the dual of VarPre (symbolic successor restricted to one variable);
	// kept for symmetry -- nothing in package kernel or package eval calls it.
	VarPost(variable string, phi ColouredSet) ColouredSet
}

// Sanitizable is implemented by ColouredSet values that can re-express themselves over a
// canonical graph lacking auxiliary bit-groups (spec.md's result sanitizer, C10). Package
// eval verifies the name-based prefix requirement itself before calling Sanitize, so an
// implementation may assume it already holds.
type Sanitizable interface {
	Sanitize(canonical Graph) (ColouredSet, error)
}

// VariableOrdering is implemented by Graph values that expose the network's variable
// names in the fixed canonical order spec.md's EU saturation iterates in reverse; both
// concrete implementations (symbolic/rudd.Graph and symbolic/symbolictest.Graph) satisfy
// it.
type VariableOrdering interface {
	Variables() []string
}

// Restrictable is implemented by Graph values that can construct a cheap restricted view
// for a domain-labelled quantifier (spec.md section 4.8, "variable-domain restriction").
// A restricted view is a Graph whose Unit() is Unit() ∩ validDomain(D, v); it is
// constructed on demand and discarded when the quantifier's evaluation returns.
type Restrictable interface {
	Graph
	// Restrict returns a new Graph view whose unit set is this graph's unit set
	// intersected with domain, which callers must already have transplanted onto
	// extraIndex's extra bit group -- see kernel.RestrictDomain, the one place that
	// transplant is performed, shared by every Graph implementation.
	Restrict(domain ColouredSet, extraIndex int) (Graph, error)

	// RestrictColours returns a new Graph view whose unit set is this graph's unit set
	// intersected directly with colours -- no transplant, since colours is already
	// expressed in the same bit space as Unit. Used by package classify to narrow the
	// graph to the colours surviving a set of mandatory assertions.
	RestrictColours(colours ColouredSet) (Graph, error)
}

// AttractorOracle computes the union of terminal strongly connected components of the
// graph's asynchronous transition relation, restricted to an initial coloured-vertex
// universe. Its implementation (interleaved-transition-guided reduction, Xie-Beerel,
// or anything else) is out of scope for this engine -- spec.md section 1 treats it as
// an external collaborator.
type AttractorOracle interface {
	Attractors(g Graph, universe ColouredSet) ColouredSet
}

// FixedPointOracle computes the self-loop set L = {(c,s) : for every network variable
// v, update_v(s,c) = s(v)}, used once per evaluation by EX/AX's self-loop injection and
// by the "BIND v. AX v" pattern optimization. Its implementation is out of scope here.
type FixedPointOracle interface {
	SelfLoops(g Graph) ColouredSet
}
