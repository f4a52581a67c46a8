// Package eval implements the recursive evaluator (spec.md C9) and the result
// sanitizer (C10): the post-order walk that turns a validated hctl.Node tree into a
// coloured-vertex set, consulting package evalctx's cache and package kernel's operator
// routines, plus the public library surface (Evaluate, EvaluateUnsafeNoSelfLoops,
// ValidateWildCards, Sanitize).
package eval

import (
	"github.com/symbnet/hctlmc/canon"
	"github.com/symbnet/hctlmc/dedup"
	"github.com/symbnet/hctlmc/evalctx"
	"github.com/symbnet/hctlmc/hctl"
	"github.com/symbnet/hctlmc/kernel"
	"github.com/symbnet/hctlmc/symbolic"
)

// varIndex maps an hctl.ValidateAndRename-assigned variable name ("x", "xx", "xxx", ...)
// to its extra bit-group index: the renamer hands out names by nesting depth
// (strings.Repeat("x", depth+1)), so the index is exactly the name's length minus one.
func varIndex(name string) int { return len(name) - 1 }

// Options configures one Evaluate call.
type Options struct {
	// WildCards supplies the coloured-vertex set denoted by every `%label%` wild-card
	// proposition the tree(s) reference.
	WildCards map[string]symbolic.ColouredSet
	// Domains supplies the coloured-vertex set denoted by every `%label%` domain
	// restriction the tree(s) reference.
	Domains map[string]symbolic.ColouredSet
	// Attractors is consulted by the `BIND v. AG EF v` pattern optimization. May be nil
	// if no formula uses that pattern.
	Attractors symbolic.AttractorOracle
	// SelfLoops is the precomputed self-loop set L (spec.md section 4.8); pass
	// g.Empty() (or use EvaluateUnsafeNoSelfLoops) only when certain no subformula
	// depends on it.
	SelfLoops symbolic.ColouredSet
	// Sanitize, when true, re-expresses every result over the canonical graph
	// (CanonicalGraph must then be non-nil).
	Sanitize bool
	// CanonicalGraph is the canonical (no-extra-bit-groups) graph Sanitize translates
	// results onto; required when Sanitize is true.
	CanonicalGraph symbolic.Graph
	// Progress, if non-nil, is called at every significant evaluation step.
	Progress kernel.Progress
}

// Evaluate runs the evaluator over one or more already-validated trees against g,
// sharing one evalctx.Context (and therefore one cache) across all of them -- spec.md
// section 6 operation 5. Evaluating a single tree is Evaluate([]*hctl.Node{tree}, ...)
// with the result unwrapped by the caller; EvaluateTree below does that unwrapping.
func Evaluate(trees []*hctl.Node, g symbolic.Graph, opts Options) ([]symbolic.ColouredSet, error) {
	domainScopes := make([]map[string]*string, len(trees))
	duplicates := dedup.Detect(trees, domainScopes)
	ctx := evalctx.New(duplicates)
	ctx.ExtendWithWildCards(opts.WildCards)
	ctx.ExtendWithDomains(opts.Domains)

	e := &evaluator{ctx: ctx, attractors: opts.Attractors, selfLoops: opts.SelfLoops, progress: opts.Progress}
	if e.selfLoops == nil {
		e.selfLoops = g.Empty()
	}

	out := make([]symbolic.ColouredSet, len(trees))
	for i, tree := range trees {
		result, err := e.eval(tree, g)
		if err != nil {
			return nil, err
		}
		if opts.Sanitize {
			result, err = Sanitize(result, g, opts.CanonicalGraph)
			if err != nil {
				return nil, err
			}
		}
		out[i] = result
	}
	return out, nil
}

// EvaluateTree is Evaluate for a single formula.
func EvaluateTree(tree *hctl.Node, g symbolic.Graph, opts Options) (symbolic.ColouredSet, error) {
	out, err := Evaluate([]*hctl.Node{tree}, g, opts)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EvaluateUnsafeNoSelfLoops is Evaluate with the empty set as the self-loop hint --
// spec.md section 6 operation 6. It is incorrect for any formula containing `BIND v.
// AX v` or another subformula that depends on an accurate self-loop set; it exists as a
// performance shortcut for callers who have already excluded such formulae.
func EvaluateUnsafeNoSelfLoops(tree *hctl.Node, g symbolic.Graph, opts Options) (symbolic.ColouredSet, error) {
	opts.SelfLoops = g.Empty()
	return EvaluateTree(tree, g, opts)
}

// ValidateWildCards enforces coverage of every `%label%` wild-card proposition and
// every domain label the tree references against the supplied label sets -- spec.md
// section 6 operation 4.
func ValidateWildCards(tree *hctl.Node, wildCards, domains map[string]symbolic.ColouredSet) error {
	return validateWildCards(tree, wildCards, domains)
}

func validateWildCards(n *hctl.Node, wildCards, domains map[string]symbolic.ColouredSet) error {
	switch {
	case n.IsTerminal():
		if n.Atom() == hctl.AtomWildCard {
			if _, ok := wildCards[n.Name()]; !ok {
				return &hctl.ContextError{Label: n.Name()}
			}
		}
		return nil
	case n.IsUnary():
		return validateWildCards(n.Child(), wildCards, domains)
	case n.IsBinary():
		if err := validateWildCards(n.Left(), wildCards, domains); err != nil {
			return err
		}
		return validateWildCards(n.Right(), wildCards, domains)
	case n.IsHybrid():
		if n.Domain() != nil {
			if _, ok := domains[*n.Domain()]; !ok {
				return &hctl.ContextError{Label: *n.Domain()}
			}
		}
		return validateWildCards(n.Child(), wildCards, domains)
	default:
		panic("eval: unhandled node kind in validateWildCards")
	}
}

// evaluator holds the state one Evaluate call threads through its recursive walk.
type evaluator struct {
	ctx        *evalctx.Context
	attractors symbolic.AttractorOracle
	selfLoops  symbolic.ColouredSet
	progress   kernel.Progress
}

func (e *evaluator) fire(event string) {
	if e.progress != nil {
		e.progress(event)
	}
}

// eval implements spec.md section 4.9's five-step procedure for node n against graph g.
func (e *evaluator) eval(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	canonical, rename := canon.Canonicalize(n.Render())
	key := dedup.KeyFor(canonical, rename, e.ctx.FreeVarDomains())

	storeOnReturn := false
	if count := e.ctx.Duplicates[key]; count > 0 {
		if entry, ok := e.ctx.Cache[key]; ok {
			e.fire("cache-hit:" + canonical)
			count--
			if count == 0 {
				delete(e.ctx.Duplicates, key)
				delete(e.ctx.Cache, key)
			} else {
				e.ctx.Duplicates[key] = count
			}
			return composeRename(entry.Result, g, entry.Rename, rename), nil
		}
		storeOnReturn = true
	}

	result, err := e.evalUncached(n, g)
	if err != nil {
		return nil, err
	}

	if storeOnReturn {
		e.ctx.Cache[key] = evalctx.CacheEntry{Result: result, Rename: rename}
	}
	return result, nil
}

// evalUncached implements steps 3-4 of spec.md section 4.9: the pattern optimizations,
// then recursion by node kind.
func (e *evaluator) evalUncached(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	if n.IsHybrid() && n.HybridOp() == hctl.BIND && n.Domain() == nil {
		if isAttractorPattern(n) {
			e.fire("pattern:attractor")
			return e.attractors.Attractors(g, g.Unit()), nil
		}
		if isSelfLoopPattern(n) {
			e.fire("pattern:self-loop")
			return e.selfLoops, nil
		}
	}

	switch {
	case n.IsTerminal():
		return e.evalTerminal(n, g)
	case n.IsUnary():
		return e.evalUnary(n, g)
	case n.IsBinary():
		return e.evalBinary(n, g)
	case n.IsHybrid():
		return e.evalHybrid(n, g)
	default:
		panic("eval: unhandled node kind")
	}
}

func (e *evaluator) evalTerminal(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	switch n.Atom() {
	case hctl.AtomConstant:
		if n.BoolValue() {
			return g.Unit(), nil
		}
		return g.Empty(), nil
	case hctl.AtomProposition:
		set, ok := kernel.Proposition(g, n.Name())
		if !ok {
			panic("eval: proposition " + n.Name() + " not known to graph; tree was not validated against this graph")
		}
		return set, nil
	case hctl.AtomStateVar:
		idx := varIndex(n.Name())
		if idx >= g.ExtrasPerVar() {
			return nil, &CapacityError{Variable: n.Name(), ExtrasPerVar: g.ExtrasPerVar()}
		}
		return kernel.StateVar(g, idx), nil
	case hctl.AtomWildCard:
		panic("eval: wild-card proposition " + n.Name() + " reached evalTerminal -- it must always resolve via the cache (missing ExtendWithWildCards context?)")
	default:
		panic("eval: unhandled atom kind")
	}
}

func (e *evaluator) evalUnary(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	child, err := e.eval(n.Child(), g)
	if err != nil {
		return nil, err
	}
	switch n.UnaryOp() {
	case hctl.NOT:
		return kernel.Neg(g, child), nil
	case hctl.EX:
		return kernel.EX(g, child, e.selfLoops), nil
	case hctl.AX:
		return kernel.AX(g, child, e.selfLoops), nil
	case hctl.EF:
		e.fire("fixed-point:EF")
		return kernel.EF(g, child), nil
	case hctl.AF:
		e.fire("fixed-point:AF")
		return kernel.AF(g, child, e.selfLoops), nil
	case hctl.EG:
		e.fire("fixed-point:EG")
		return kernel.EG(g, child, e.selfLoops), nil
	case hctl.AG:
		e.fire("fixed-point:AG")
		return kernel.AG(g, child), nil
	default:
		panic("eval: unhandled UnaryOp")
	}
}

func (e *evaluator) evalBinary(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	left, err := e.eval(n.Left(), g)
	if err != nil {
		return nil, err
	}
	right, err := e.eval(n.Right(), g)
	if err != nil {
		return nil, err
	}
	switch n.BinaryOp() {
	case hctl.AND:
		return kernel.And(left, right), nil
	case hctl.OR:
		return kernel.Or(left, right), nil
	case hctl.XOR:
		return kernel.Xor(g, left, right), nil
	case hctl.IMP:
		return kernel.Imp(g, left, right), nil
	case hctl.IFF:
		return kernel.Iff(g, left, right), nil
	case hctl.EU:
		e.fire("fixed-point:EU")
		return kernel.EU(g, left, right), nil
	case hctl.AU:
		e.fire("fixed-point:AU")
		return kernel.AU(g, left, right, e.selfLoops), nil
	case hctl.EW:
		e.fire("fixed-point:EW")
		return kernel.EW(g, left, right, e.selfLoops), nil
	case hctl.AW:
		e.fire("fixed-point:AW")
		return kernel.AW(g, left, right), nil
	default:
		panic("eval: unhandled BinaryOp")
	}
}

func (e *evaluator) evalHybrid(n *hctl.Node, g symbolic.Graph) (symbolic.ColouredSet, error) {
	idx := varIndex(n.Var())
	if idx >= g.ExtrasPerVar() {
		return nil, &CapacityError{Variable: n.Var(), ExtrasPerVar: g.ExtrasPerVar()}
	}

	if n.HybridOp() == hctl.JUMP {
		child, err := e.eval(n.Child(), g)
		if err != nil {
			return nil, err
		}
		return kernel.Jump(g, child, idx), nil
	}

	domainLabel := n.Domain()
	e.ctx.PushFreeVar(n.Var(), domainLabel)
	defer e.ctx.PopFreeVar()

	view := g
	if domainLabel != nil {
		domainSet, ok := e.ctx.DomainSets[*domainLabel]
		if !ok {
			return nil, &hctl.ContextError{Label: *domainLabel}
		}
		if dependsOnExtraBits(g, domainSet) {
			return nil, &DomainError{Label: *domainLabel}
		}
		restrictable, ok := g.(symbolic.Restrictable)
		if !ok {
			panic("eval: graph does not implement symbolic.Restrictable, required for a domain-labelled quantifier")
		}
		restricted, err := kernel.RestrictDomain(restrictable, domainSet, idx)
		if err != nil {
			return nil, err
		}
		view = restricted
		if view.Unit().IsEmpty() {
			return shortCircuit(n.HybridOp(), g), nil
		}
	}

	child, err := e.eval(n.Child(), view)
	if err != nil {
		return nil, err
	}

	switch n.HybridOp() {
	case hctl.BIND:
		return kernel.Bind(view, child, idx), nil
	case hctl.EXISTS:
		return kernel.Exists(child, idx), nil
	case hctl.FORALL:
		return kernel.Forall(view, child, idx), nil
	default:
		panic("eval: unhandled quantifier HybridOp")
	}
}

// dependsOnExtraBits reports whether domain varies over any of g's auxiliary bit-groups,
// which kernel.RestrictDomain's transplant requires it must not (a domain set is only
// ever meant to depend on colour/state bits). Existentially projecting out a bit-group
// the set never depends on is a no-op; projecting out one it does depend on strictly
// grows the set, so comparing domain against its own projection catches the violation
// without any backend-specific introspection.
func dependsOnExtraBits(g symbolic.Graph, domain symbolic.ColouredSet) bool {
	for k := 0; k < g.ExtrasPerVar(); k++ {
		if !domain.Equals(domain.Project(symbolic.BitGroup{Index: k})) {
			return true
		}
	}
	return false
}

// shortCircuit implements the empty-restricted-domain short-circuit: BIND and EXISTS
// return empty; FORALL returns g's (outer, unrestricted) unit set.
func shortCircuit(op hctl.HybridOp, g symbolic.Graph) symbolic.ColouredSet {
	if op == hctl.FORALL {
		return g.Unit()
	}
	return g.Empty()
}

// isAttractorPattern matches `BIND v. AG(EF(v))`.
func isAttractorPattern(n *hctl.Node) bool {
	child := n.Child()
	if !child.IsUnary() || child.UnaryOp() != hctl.AG {
		return false
	}
	inner := child.Child()
	if !inner.IsUnary() || inner.UnaryOp() != hctl.EF {
		return false
	}
	return isStateVarRef(inner.Child(), n.Var())
}

// isSelfLoopPattern matches `BIND v. AX(v)`.
func isSelfLoopPattern(n *hctl.Node) bool {
	child := n.Child()
	if !child.IsUnary() || child.UnaryOp() != hctl.AX {
		return false
	}
	return isStateVarRef(child.Child(), n.Var())
}

func isStateVarRef(n *hctl.Node, name string) bool {
	return n.IsTerminal() && n.Atom() == hctl.AtomStateVar && n.Name() == name
}

// composeRename re-projects a cached result from the occurrence it was stored under
// (storedRename: its original variable names -> canonical names) onto this occurrence's
// own variable names (thisRename), per spec.md section 4.9 step 2's cache-hit handling.
func composeRename(result symbolic.ColouredSet, g symbolic.Graph, storedRename, thisRename canon.RenameMap) symbolic.ColouredSet {
	storedByCanonical := make(map[string]string, len(storedRename.Pairs))
	for _, p := range storedRename.Pairs {
		storedByCanonical[p.Value] = p.Key
	}
	out := result
	for _, p := range thisRename.Pairs {
		originalStored, ok := storedByCanonical[p.Value]
		if !ok || originalStored == p.Key {
			continue
		}
		out = kernel.Rename(g, out, varIndex(originalStored), varIndex(p.Key))
	}
	return out
}
