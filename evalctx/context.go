// Package evalctx implements the evaluator context (spec.md C7): the mutable bag of
// duplicate counts, result cache, domain-label sets and the free-variable-domain scope
// that package eval consults and updates while walking one formula (or a batch of
// formulae sharing caches). A Context is created per evaluation request, mutated only
// by its owning evaluator, and discarded at the end; it is not safe for concurrent use.
package evalctx

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/symbnet/hctlmc/canon"
	"github.com/symbnet/hctlmc/dedup"
	"github.com/symbnet/hctlmc/symbolic"
)

// CacheEntry is what the cache stores for a Key: the result itself, and the forward
// rename map recording which original variable names were renamed to var0, var1, ...
// when the key was formed -- needed to re-project the cached result onto a later
// caller's own variable names via a sequence of kernel.Rename calls.
type CacheEntry struct {
	Result symbolic.ColouredSet
	Rename canon.RenameMap
}

// Context holds the four maps of spec.md section 3.
type Context struct {
	// Duplicates maps a cache key to its remaining duplicate count, initialized to the
	// number of occurrences minus one; decremented on each cache hit and removed
	// (along with the matching Cache entry) once it reaches zero.
	Duplicates map[dedup.Key]int
	// Cache maps a cache key to its stored result and forward rename map.
	Cache map[dedup.Key]CacheEntry
	// DomainSets maps a domain label to the coloured-vertex set it denotes. Domain
	// sets must not depend on any auxiliary bit-group (DomainError otherwise).
	DomainSets map[string]symbolic.ColouredSet

	// freeVarDomains is the currently active free-variable -> optional-domain-label
	// scope, managed as a stack by the evaluator (pushed on entering a hybrid node,
	// popped on exit).
	freeVarDomains []freeVarFrame
}

type freeVarFrame struct {
	name   string
	domain *string
}

// New creates an evaluator context primed from a duplicate-count map (typically the
// output of dedup.Detect for the tree or batch of trees about to be evaluated).
func New(duplicates map[dedup.Key]int) *Context {
	return &Context{
		Duplicates: duplicates,
		Cache:      make(map[dedup.Key]CacheEntry),
		DomainSets: make(map[string]symbolic.ColouredSet),
	}
}

// ExtendWithWildCards inserts, for every label in context, a synthetic cache entry under
// key ("%label%", no domains) with an empty rename map, and bumps that key's duplicate
// counter by one -- so the first evaluation of %label% is already a cache hit, making
// the evaluator's cache-hit path the only place wild-card propositions are resolved.
func (c *Context) ExtendWithWildCards(context map[string]symbolic.ColouredSet) {
	for label, set := range context {
		key := dedup.Key{Canonical: "%" + label + "%"}
		c.Cache[key] = CacheEntry{Result: set, Rename: canon.NewRenameMap()}
		c.Duplicates[key]++
	}
}

// ExtendWithDomains inserts every label -> coloured-vertex-set pair from context into
// DomainSets.
func (c *Context) ExtendWithDomains(context map[string]symbolic.ColouredSet) {
	for label, set := range context {
		c.DomainSets[label] = set
	}
}

// PushFreeVar pushes a variable's (possibly domain-restricted) scope.
func (c *Context) PushFreeVar(name string, domain *string) {
	c.freeVarDomains = append(c.freeVarDomains, freeVarFrame{name: name, domain: domain})
}

// PopFreeVar pops the most recently pushed variable scope.
func (c *Context) PopFreeVar() {
	c.freeVarDomains = c.freeVarDomains[:len(c.freeVarDomains)-1]
}

// FreeVarDomains returns the currently active free-variable -> optional-domain-label
// map (innermost binding wins on name collision, though collisions should not occur
// within one validated tree).
func (c *Context) FreeVarDomains() map[string]*string {
	out := make(map[string]*string, len(c.freeVarDomains))
	for _, f := range c.freeVarDomains {
		out[f.name] = f.domain
	}
	return out
}

// DumpCache gob-encodes a snapshot of the duplicate-count and cache-size bookkeeping (not
// the ColouredSet payloads themselves, which are opaque decision-diagram handles with no
// stable encoding) and writes it to w, optionally zstd-compressed. This is a debugging
// aid for large batch runs -- never on the hot evaluation path -- and carries no
// persistence-format guarantee; mirrors the teacher's own use of gob for its inferred
// map (see util/orderedmap's doc comment on why its Pairs field is exported).
func (c *Context) DumpCache(w io.Writer, compress bool) error {
	snapshot := cacheSnapshot{
		DuplicateCount: len(c.Duplicates),
		CacheSize:      len(c.Cache),
		DomainLabels:   make([]string, 0, len(c.DomainSets)),
	}
	for label := range c.DomainSets {
		snapshot.DomainLabels = append(snapshot.DomainLabels, label)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snapshot); err != nil {
		return err
	}
	if !compress {
		_, err := w.Write(buf.Bytes())
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(buf.Bytes()); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// cacheSnapshot is the gob-encoded shape written by DumpCache.
type cacheSnapshot struct {
	DuplicateCount int
	CacheSize      int
	DomainLabels   []string
}
