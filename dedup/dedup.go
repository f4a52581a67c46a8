// Package dedup implements the duplicate detector (spec.md C6): given one or more
// already-validated formula trees, it enumerates the canonical-key set of every
// subformula that appears at least twice (counted with multiplicity) across all inputs,
// pruning traversal into any subtree it has already flagged as a duplicate.
package dedup

import (
	"container/heap"

	"github.com/symbnet/hctlmc/canon"
	"github.com/symbnet/hctlmc/hctl"
)

// Key identifies a cache-able subformula: its canonical string plus the canonical
// free-variable-to-domain-label map narrowed to the variables that string actually
// uses, flattened into a single comparable string (Key must be usable as a Go map
// key, which rules out a slice-typed field). Two subformulae that are not
// alpha-equivalent, or the same subformula under different free-variable domain
// restrictions, never share a Key; alpha-equivalent ones (differing only in bound
// variable names) do.
type Key struct {
	Canonical string
	DomainKey string
}

type domainPair struct {
	Var    string
	Domain string // "" means unrestricted
}

// Detect runs the duplicate detector (C6) over one or more validated trees, returning a
// map from cache key to duplicate count (the number of occurrences beyond the first).
// incomingDomains supplies, for each root, the free-variable -> optional domain-label
// map in scope for that root (nil for a closed top-level formula).
func Detect(roots []*hctl.Node, incomingDomains []map[string]*string) map[Key]int {
	counts := make(map[Key]int)

	h := &nodeHeap{}
	heap.Init(h)
	for i, root := range roots {
		dom := map[string]*string{}
		if i < len(incomingDomains) && incomingDomains[i] != nil {
			dom = incomingDomains[i]
		}
		heap.Push(h, heapItem{node: root, domains: dom})
	}

	var peers map[Key]bool
	trackedHeight := -1

	for h.Len() > 0 {
		item := heap.Pop(h).(heapItem)
		n := item.node

		if n.IsTerminal() && n.Atom() != hctl.AtomWildCard {
			continue
		}

		rendered := n.Render()
		canonical, rename := canon.Canonicalize(rendered)
		narrowed := narrowDomains(item.domains, rename)
		key := makeKey(canonical, narrowed)

		// The heap pops nodes in non-increasing height order, so n.Height() is either
		// equal to trackedHeight or (the first pop ever, or a drop to a new stratum)
		// strictly less -- never greater.
		if trackedHeight == -1 || n.Height() < trackedHeight {
			trackedHeight = n.Height()
			peers = map[Key]bool{}
			if rename.Len() <= 1 {
				peers[key] = true
			}
		} else {
			if peers[key] {
				counts[key]++
				continue // skip this subtree entirely -- its children are pruned
			}
			if rename.Len() <= 1 {
				peers[key] = true
			}
		}

		pushChildren(h, n, item.domains)
	}

	return counts
}

// pushChildren enqueues n's children, extending the carried domain map with the
// quantified variable's (original name -> optional domain-label) pair when n is a
// hybrid node -- per spec.md C6 rule 6, JUMP (which binds no new variable) does not
// extend the map.
func pushChildren(h *nodeHeap, n *hctl.Node, domains map[string]*string) {
	switch {
	case n.IsUnary():
		heap.Push(h, heapItem{node: n.Child(), domains: domains})
	case n.IsBinary():
		heap.Push(h, heapItem{node: n.Left(), domains: domains})
		heap.Push(h, heapItem{node: n.Right(), domains: domains})
	case n.IsHybrid():
		childDomains := domains
		if n.HybridOp().IsQuantifier() {
			childDomains = make(map[string]*string, len(domains)+1)
			for k, v := range domains {
				childDomains[k] = v
			}
			childDomains[n.Var()] = n.Domain()
		}
		heap.Push(h, heapItem{node: n.Child(), domains: childDomains})
	}
}

// narrowDomains intersects the incoming free-variable domain map with the canonical
// variables the rename map actually reports, rewriting it to canonical names.
func narrowDomains(domains map[string]*string, rename canon.RenameMap) []domainPair {
	var out []domainPair
	for _, p := range rename.Pairs {
		original, canonical := p.Key, p.Value
		if d, ok := domains[original]; ok {
			label := ""
			if d != nil {
				label = *d
			}
			out = append(out, domainPair{Var: canonical, Domain: label})
		}
	}
	return out
}

// KeyFor builds the cache key for a subformula whose canonical form and forward rename
// map are already known, narrowing domains (a free-variable -> optional domain-label
// map) to the variables rename actually reports and rewriting it to canonical names.
// Package eval uses this to compute the same key shape Detect produces, so cache probes
// agree with the duplicate counts Detect recorded.
func KeyFor(canonical string, rename canon.RenameMap, domains map[string]*string) Key {
	return makeKey(canonical, narrowDomains(domains, rename))
}

func makeKey(canonical string, domains []domainPair) Key {
	var domainKey string
	for _, d := range domains {
		domainKey += d.Var + "=" + d.Domain + ";"
	}
	return Key{Canonical: canonical, DomainKey: domainKey}
}

// heapItem pairs a node with the free-variable domain map carried down to it.
type heapItem struct {
	node    *hctl.Node
	domains map[string]*string
}

// nodeHeap is a max-heap on node height, built on the standard library's container/heap.
type nodeHeap []heapItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].node.Height() > h[j].node.Height() }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
