// Package classify implements the parametrization-classification feature supplemented
// from original_source/src/bn_classification/mod.rs: given a coloured graph, a set of
// mandatory assertions and a set of classification properties, it partitions the
// colours satisfying every assertion (in every state) into classes keyed by which
// properties hold in every state, for use by callers building a classification report
// -- rendering that report to a file is out of scope here (spec.md's Non-goals exclude
// file/report I/O), so Run returns the classes in memory.
package classify

import (
	"sort"

	"github.com/symbnet/hctlmc/eval"
	"github.com/symbnet/hctlmc/hctl"
	"github.com/symbnet/hctlmc/kernel"
	"github.com/symbnet/hctlmc/logging"
	"github.com/symbnet/hctlmc/symbolic"
)

// Class is one group of colours sharing the same truth value, in every state, for every
// classification property.
type Class struct {
	// Holds[i] is true when Properties[i] (the order Run's properties argument was
	// given in) holds in every state, for every colour in this class.
	Holds []bool
	// Colours is the coloured-vertex set containing exactly this class's colours,
	// crossed with every state (the relation Run narrowed the graph to).
	Colours symbolic.ColouredSet
}

// Options configures one Run call; it mirrors eval.Options since both assertions and
// properties are evaluated with package eval.
type Options struct {
	WildCards  map[string]symbolic.ColouredSet
	Domains    map[string]symbolic.ColouredSet
	Attractors symbolic.AttractorOracle
	SelfLoops  symbolic.ColouredSet
	Logger     *logging.Logger
}

// Run implements original_source's classify(): it evaluates every assertion
// conjunctively, computes the colours for which the conjunction holds in every state
// (get_universal_colors in the original), restricts g to exactly those colours, then
// evaluates every property against the restricted graph and groups colours by the
// per-property "holds everywhere" bit vector. Classes are returned sorted by descending
// colour-set size, ties broken by the bit vector's lexicographic order, for a
// deterministic report.
//
// Run returns (nil, nil) -- no classes -- when no colour satisfies every assertion in
// every state, mirroring the original's early-exit.
func Run(g symbolic.Graph, assertions, properties []*hctl.Node, opts Options) ([]Class, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop
	}
	restrictable, ok := g.(symbolic.Restrictable)
	if !ok {
		panic("classify: graph does not implement symbolic.Restrictable, required to narrow by the surviving colours")
	}

	evalOpts := eval.Options{
		WildCards:  opts.WildCards,
		Domains:    opts.Domains,
		Attractors: opts.Attractors,
		SelfLoops:  opts.SelfLoops,
		Progress:   logger.Progress("classify"),
	}

	logger.Milestone("evaluating assertions")
	combined := g.Unit()
	if len(assertions) > 0 {
		results, err := eval.Evaluate(assertions, g, evalOpts)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			combined = kernel.And(combined, r)
		}
	}

	validColours := universalColours(g, combined)
	if validColours.IsEmpty() {
		logger.Warn("no colour satisfies every assertion in every state")
		return nil, nil
	}

	restricted, err := restrictable.RestrictColours(validColours)
	if err != nil {
		return nil, err
	}

	logger.Milestone("evaluating classification properties")
	results, err := eval.Evaluate(properties, restricted, evalOpts)
	if err != nil {
		return nil, err
	}

	perProperty := make([]symbolic.ColouredSet, len(properties))
	for i, r := range results {
		perProperty[i] = universalColours(restricted, r)
	}

	classes := partition(validColours, perProperty)
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Colours.Size() != classes[j].Colours.Size() {
			return classes[i].Colours.Size() > classes[j].Colours.Size()
		}
		return lessBitVector(classes[i].Holds, classes[j].Holds)
	})
	return classes, nil
}

// universalColours computes get_universal_colors from original_source: the colours for
// which result holds in every state of g's unit set, i.e. the unit set's colours minus
// the colours of any (colour, state) pair where result does not hold.
func universalColours(g symbolic.Graph, result symbolic.ColouredSet) symbolic.ColouredSet {
	failing := g.Unit().Minus(result)
	return kernel.ProjectStateBits(g.Unit()).Minus(kernel.ProjectStateBits(failing))
}

// partition enumerates every truth-vector combination over perProperty and keeps the
// ones with a non-empty colour set. 2^len(perProperty) combinations is the same
// enumeration original_source's report builder performs once per property bit, and
// classification formula counts are expected to be small.
func partition(validColours symbolic.ColouredSet, perProperty []symbolic.ColouredSet) []Class {
	n := len(perProperty)
	var classes []Class
	for mask := 0; mask < (1 << uint(n)); mask++ {
		set := validColours
		holds := make([]bool, n)
		for i := 0; i < n; i++ {
			bit := mask&(1<<uint(i)) != 0
			holds[i] = bit
			if bit {
				set = kernel.And(set, perProperty[i])
			} else {
				set = set.Minus(perProperty[i])
			}
		}
		if set.IsEmpty() {
			continue
		}
		classes = append(classes, Class{Holds: holds, Colours: set})
	}
	return classes
}

// lessBitVector orders two equal-length bit vectors lexicographically, false < true.
func lessBitVector(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return !a[i]
		}
	}
	return false
}
