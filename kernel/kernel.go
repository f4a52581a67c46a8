// Package kernel implements the HCTL operator kernel (spec.md C8): every per-operator
// symbolic routine -- Boolean, comparator/projection, hybrid rewrite, and temporal
// saturation -- built exclusively on the symbolic.Graph/ColouredSet interfaces, so it has
// zero import on symbolic/rudd and works identically against symbolic/symbolictest's
// brute-force fakes.
package kernel

import "github.com/symbnet/hctlmc/symbolic"

// Neg returns U \ phi, U being g's unit set.
func Neg(g symbolic.Graph, phi symbolic.ColouredSet) symbolic.ColouredSet {
	return g.Unit().Minus(phi)
}

// And, Or are the Boolean binary operators, relative to g's unit set implicitly (their
// operands are already unit-restricted, so no further intersection is needed here).
func And(a, b symbolic.ColouredSet) symbolic.ColouredSet { return a.Intersect(b) }
func Or(a, b symbolic.ColouredSet) symbolic.ColouredSet  { return a.Union(b) }

// Xor, Imp, Iff are defined complement-style from And/Or/Neg, as spec.md names them.
func Xor(g symbolic.Graph, a, b symbolic.ColouredSet) symbolic.ColouredSet {
	return Or(And(a, Neg(g, b)), And(Neg(g, a), b))
}

func Imp(g symbolic.Graph, a, b symbolic.ColouredSet) symbolic.ColouredSet {
	return Or(Neg(g, a), b)
}

func Iff(g symbolic.Graph, a, b symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, Xor(g, a, b))
}

// Proposition returns { s : p holds in s } intersected with g's unit set, or false if p
// is not a network variable known to g.
func Proposition(g symbolic.Graph, p string) (symbolic.ColouredSet, bool) {
	raw, ok := g.StateProposition(p)
	if !ok {
		return nil, false
	}
	return raw.Intersect(g.Unit()), true
}

// StateVar returns the state-var(v) comparator for the extra bit-group at extraIndex,
// intersected with g's unit set.
func StateVar(g symbolic.Graph, extraIndex int) symbolic.ColouredSet {
	return g.StateVarSet(extraIndex).Intersect(g.Unit())
}

// Comparator returns the comparator between two HCTL state variables' extra bit-groups,
// intersected with g's unit set.
func Comparator(g symbolic.Graph, i, j int) symbolic.ColouredSet {
	return g.VarComparator(i, j).Intersect(g.Unit())
}

// ProjectOut existentially projects phi over the extra bit-group for v.
func ProjectOut(phi symbolic.ColouredSet, extraIndex int) symbolic.ColouredSet {
	return phi.Project(symbolic.BitGroup{Index: extraIndex})
}

// ProjectStateBits existentially projects phi over the state-bit family (JUMP).
func ProjectStateBits(phi symbolic.ColouredSet) symbolic.ColouredSet {
	return phi.Project(symbolic.BitGroup{StateBits: true})
}

// Rename returns phi with extra bit-group vFrom renamed to vTo: if the indices are equal
// this is a no-op; otherwise it intersects phi with the two-variable comparator and
// projects vFrom out. The caller must ensure phi does not already depend on vTo.
func Rename(g symbolic.Graph, phi symbolic.ColouredSet, vFrom, vTo int) symbolic.ColouredSet {
	if vFrom == vTo {
		return phi
	}
	renamed := And(phi, Comparator(g, vFrom, vTo))
	return ProjectOut(renamed, vFrom)
}

// Bind implements `BIND v. phi`.
func Bind(g symbolic.Graph, phi symbolic.ColouredSet, extraIndex int) symbolic.ColouredSet {
	return ProjectOut(And(phi, StateVar(g, extraIndex)), extraIndex)
}

// Exists implements `EXISTS v. phi`.
func Exists(phi symbolic.ColouredSet, extraIndex int) symbolic.ColouredSet {
	return ProjectOut(phi, extraIndex)
}

// Jump implements `JUMP v. phi`.
func Jump(g symbolic.Graph, phi symbolic.ColouredSet, extraIndex int) symbolic.ColouredSet {
	return ProjectStateBits(And(phi, StateVar(g, extraIndex)))
}

// Forall implements `FORALL v. phi` as neg(EXISTS v. neg phi), evaluated entirely against
// g -- the caller is responsible for passing a domain-restricted view of g when the
// quantifier carries a domain (spec.md's variable-domain restriction).
func Forall(g symbolic.Graph, phi symbolic.ColouredSet, extraIndex int) symbolic.ColouredSet {
	return Neg(g, Exists(Neg(g, phi), extraIndex))
}

// EX implements `EX phi = pre(phi) ∪ (phi ∩ L)`, L being the externally supplied
// self-loop set.
func EX(g symbolic.Graph, phi, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	return Or(g.Pre(phi), And(phi, selfLoops))
}

// AX implements `AX phi = neg EX(neg phi)`.
func AX(g symbolic.Graph, phi, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, EX(g, Neg(g, phi), selfLoops))
}

// EF implements `EF phi = EU(U, phi)`.
func EF(g symbolic.Graph, phi symbolic.ColouredSet) symbolic.ColouredSet {
	return EU(g, g.Unit(), phi)
}

// AG implements `AG phi = neg EF(neg phi)`.
func AG(g symbolic.Graph, phi symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, EF(g, Neg(g, phi)))
}

// AF implements `AF phi = neg EG(neg phi)`.
func AF(g symbolic.Graph, phi, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, EG(g, Neg(g, phi), selfLoops))
}

// EW implements `EW(phi1, phi2) = neg AU(neg phi1, neg phi2)`.
func EW(g symbolic.Graph, phi1, phi2, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, AU(g, Neg(g, phi1), Neg(g, phi2), selfLoops))
}

// AW implements `AW(phi1, phi2) = neg EU(neg phi1, neg phi2)`.
func AW(g symbolic.Graph, phi1, phi2 symbolic.ColouredSet) symbolic.ColouredSet {
	return Neg(g, EU(g, Neg(g, phi1), Neg(g, phi2)))
}
