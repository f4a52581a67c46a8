package hctl

import "strings"

// PropositionChecker reports whether name is a network variable known to the symbolic
// graph a formula will be evaluated against. symbolic.Graph satisfies this interface;
// it is declared here (rather than imported from package symbolic) so that hctl has no
// dependency on the symbolic/evaluation layers -- only the reverse dependency exists.
type PropositionChecker interface {
	HasVariable(name string) bool
}

// bindingFrame is one entry on the validator's bound-variable stack.
type bindingFrame struct {
	original string
	renamed  string
}

// ValidateAndRename is a whole-tree pass (C5) that:
//   - rejects a state-variable reference with no enclosing matching quantifier (a free
//     variable), including a JUMP target that is not itself bound;
//   - rejects a quantifier that redefines a name already bound by an ancestor in the
//     same subtree;
//   - rejects an atomic proposition unknown to checker;
//   - otherwise returns an equivalent tree whose bound variables have been renamed to
//     the shortest shared alphabet x, xx, xxx, ... such that every lexically innermost
//     quantifier reuses the shortest available prefix -- i.e. the new name at nesting
//     depth d is always "x" repeated d+1 times, so unrelated sibling subtrees end up
//     sharing variable names wherever scoping allows, maximizing cache hits downstream.
func ValidateAndRename(n *Node, checker PropositionChecker) (*Node, error) {
	v := &renamer{checker: checker}
	return v.visit(n, nil)
}

type renamer struct {
	checker PropositionChecker
}

func (v *renamer) visit(n *Node, stack []bindingFrame) (*Node, error) {
	switch {
	case n.IsTerminal():
		return v.visitTerminal(n, stack)
	case n.IsUnary():
		child, err := v.visit(n.Child(), stack)
		if err != nil {
			return nil, err
		}
		return n.withChild(child), nil
	case n.IsBinary():
		left, err := v.visit(n.Left(), stack)
		if err != nil {
			return nil, err
		}
		right, err := v.visit(n.Right(), stack)
		if err != nil {
			return nil, err
		}
		return n.withChildren(left, right), nil
	case n.IsHybrid():
		return v.visitHybrid(n, stack)
	default:
		panic("hctl: ValidateAndRename encountered a node of unknown shape")
	}
}

func (v *renamer) visitTerminal(n *Node, stack []bindingFrame) (*Node, error) {
	switch n.Atom() {
	case AtomConstant, AtomWildCard:
		return n, nil
	case AtomProposition:
		if !v.checker.HasVariable(n.Name()) {
			return nil, &SemanticError{Kind: UnknownProposition, Name: n.Name()}
		}
		return n, nil
	case AtomStateVar:
		renamed, ok := lookup(stack, n.Name())
		if !ok {
			return nil, &SemanticError{Kind: FreeVariable, Name: n.Name()}
		}
		return NewStateVar(renamed), nil
	default:
		panic("hctl: ValidateAndRename encountered an unknown atom kind")
	}
}

func (v *renamer) visitHybrid(n *Node, stack []bindingFrame) (*Node, error) {
	if n.HybridOp() == JUMP {
		renamed, ok := lookup(stack, n.Var())
		if !ok {
			return nil, &SemanticError{Kind: JumpOverFreeVariable, Name: n.Var()}
		}
		child, err := v.visit(n.Child(), stack)
		if err != nil {
			return nil, err
		}
		return n.withHybrid(renamed, nil, child), nil
	}

	for _, f := range stack {
		if f.original == n.Var() {
			return nil, &SemanticError{Kind: Requantified, Name: n.Var()}
		}
	}

	newName := strings.Repeat("x", len(stack)+1)
	child, err := v.visit(n.Child(), append(stack, bindingFrame{original: n.Var(), renamed: newName}))
	if err != nil {
		return nil, err
	}
	return n.withHybrid(newName, n.Domain(), child), nil
}

// lookup finds the innermost (last-pushed) binding for name, scanning from the top of
// the stack down -- this is what gives an inner quantifier's rebinding of a name (when
// legal, i.e. not nested within its own scope) priority over an outer one.
func lookup(stack []bindingFrame, name string) (string, bool) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].original == name {
			return stack[i].renamed, true
		}
	}
	return "", false
}
