// Package canon implements the HCTL canonicalizer (spec.md C4): it turns a subformula's
// rendered text into a form independent of the concrete names chosen for its bound
// variables, while leaving every other character untouched, and emits the forward
// rename map used to re-project a cached result onto a caller's own variable names.
package canon

import (
	"strconv"
	"strings"

	"github.com/symbnet/hctlmc/util/orderedmap"
)

// RenameMap is a bijection between the distinct original variable names observed while
// canonicalizing a subformula and the canonical "varI" names introduced for them. It
// preserves first-seen order (built on the ordered-map primitive util/orderedmap) so
// that composing two rename maps -- as the evaluator does on a cache hit -- is
// deterministic.
type RenameMap struct {
	*orderedmap.OrderedMap[string, string]
}

// NewRenameMap returns an empty rename map.
func NewRenameMap() RenameMap {
	return RenameMap{orderedmap.New[string, string]()}
}

// Len returns the number of distinct original names the map has recorded a binding for.
func (m RenameMap) Len() int { return len(m.Pairs) }

// Canonicalize scans subformula (the Node.Render() text of some subtree) left to right
// with an explicit bound-variable stack, rewriting every binder-introduced name to a
// fresh "var<i>" and every `{name}` reference to its innermost binding, or to a freshly
// assigned "var<i>" if the name has no enclosing binding (a free variable -- still
// recorded in the returned map so that cache keys for open subformulae stay meaningful).
// Binders and free variables share one first-seen-order counter for i rather than each
// being numbered by stack depth: two free variables can be simultaneously live at the
// same depth (siblings under one binary node, say), and the rename map's bijection
// contract -- distinct original names always get distinct canonical names -- would break
// if both took a depth-derived name instead.
// Every other byte, including the JUMP operator '@' and its `{name}` reference form, is
// copied verbatim. Canonicalize is idempotent: feeding it its own output is a no-op, and
// two subformulae are alpha-equivalent as HCTL iff their canonical forms are identical.
func Canonicalize(subformula string) (string, RenameMap) {
	c := &canonicalizer{src: subformula, rename: NewRenameMap()}
	c.run()
	return c.out.String(), c.rename
}

// binding is one entry on the canonicalizer's bound-variable stack: the original name,
// its assigned canonical name, and the paren-nesting depth at which it was introduced
// (Node.Render always wraps a hybrid node's own production in one matching paren pair,
// so that depth is exactly what bounds the binder's lexical scope in the text).
type binding struct {
	original, canonical string
	depth               int
}

type canonicalizer struct {
	src    string
	pos    int
	out    strings.Builder
	depth  int
	stack  []binding
	rename RenameMap
	nextID int // next fresh "var<i>" id to hand out, for both binders and free vars
}

func (c *canonicalizer) run() {
	for c.pos < len(c.src) {
		b := c.src[c.pos]
		switch {
		case b == '(':
			c.depth++
			c.out.WriteByte(b)
			c.pos++
		case b == ')':
			c.depth--
			c.popTo(c.depth)
			c.out.WriteByte(b)
			c.pos++
		case b == '!' || b == '3' || b == 'V':
			c.out.WriteByte(b)
			c.pos++
			if name, ok := c.tryReadBraced(); ok {
				canonical := c.pushBinder(name)
				c.out.WriteByte('{')
				c.out.WriteString(canonical)
				c.out.WriteByte('}')
			}
		case b == '{':
			name, ok := c.tryReadBraced()
			if !ok {
				// Malformed input is rejected upstream by the parser; copy verbatim
				// defensively rather than panicking in a display helper.
				c.out.WriteByte(b)
				c.pos++
				continue
			}
			c.out.WriteByte('{')
			c.out.WriteString(c.resolve(name))
			c.out.WriteByte('}')
		default:
			c.out.WriteByte(b)
			c.pos++
		}
	}
}

// tryReadBraced consumes a "{name}" run starting at c.pos (c.pos must be at '{') and
// returns its name, or ok=false (consuming nothing) if c.pos isn't at '{'.
func (c *canonicalizer) tryReadBraced() (string, bool) {
	if c.pos >= len(c.src) || c.src[c.pos] != '{' {
		return "", false
	}
	start := c.pos + 1
	end := start
	for end < len(c.src) && c.src[end] != '}' {
		end++
	}
	if end >= len(c.src) {
		return "", false
	}
	c.pos = end + 1
	return c.src[start:end], true
}

// pushBinder introduces a fresh canonical name for a binder occurrence at the current
// depth and pushes it onto the scope stack.
func (c *canonicalizer) pushBinder(original string) string {
	canonical := c.fresh()
	c.stack = append(c.stack, binding{original: original, canonical: canonical, depth: c.depth})
	c.rename.Store(original, canonical)
	return canonical
}

// popTo removes every binding introduced at a depth greater than depth -- i.e. every
// binder whose enclosing parenthesis we just closed.
func (c *canonicalizer) popTo(depth int) {
	for len(c.stack) > 0 && c.stack[len(c.stack)-1].depth > depth {
		c.stack = c.stack[:len(c.stack)-1]
	}
}

// resolve rewrites a `{name}` reference using the innermost matching binding still in
// scope, or assigns (and records) a fresh canonical name on first sight of a free
// variable. A name already recorded as free is reused rather than reassigned.
func (c *canonicalizer) resolve(name string) string {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].original == name {
			return c.stack[i].canonical
		}
	}
	if canonical, ok := c.rename.Load(name); ok {
		return canonical
	}
	canonical := c.fresh()
	c.rename.Store(name, canonical)
	return canonical
}

// fresh hands out the next "var<i>" name in first-seen order, shared by binders and free
// variables alike so that every canonical name introduced by one Canonicalize call is
// distinct -- see Canonicalize's doc comment for why depth alone cannot serve as i.
func (c *canonicalizer) fresh() string {
	id := c.nextID
	c.nextID++
	return "var" + strconv.Itoa(id)
}
