package kernel

import (
	"fmt"

	"github.com/symbnet/hctlmc/config"
	"github.com/symbnet/hctlmc/symbolic"
)

// Progress is the callback package eval fires at significant evaluation steps (cache
// hits, pattern shortcuts, and once before each temporal operator's fixed point), so a
// caller (via package logging) can surface progress on long-running model-checking runs.
// The fixed-point routines in this file do not call it themselves. A nil Progress is a
// valid no-op.
type Progress func(event string)

func fire(p Progress, event string) {
	if p != nil {
		p(event)
	}
}

// EU implements the least-fixed-point saturation of spec.md section 4.8: starting from
// psi := phi2, repeatedly pick any network variable (tried in reverse of g's canonical
// variable order) whose var_pre step adds new phi1-satisfying vertices, until no
// variable does. Panics once more than config.MaxSaturationRounds additions have been
// made, which bounds runaway iteration on a malformed or non-monotonic external oracle.
func EU(g symbolic.Graph, phi1, phi2 symbolic.ColouredSet) symbolic.ColouredSet {
	psi := phi2
	variables := canonicalVariableOrder(g)
	rounds := 0
	for {
		progressed := false
		for i := len(variables) - 1; i >= 0; i-- {
			v := variables[i]
			add := And(phi1, g.VarPre(v, psi)).Minus(psi)
			if add.IsEmpty() {
				continue
			}
			psi = Or(psi, add)
			progressed = true
			rounds++
			if rounds > config.MaxSaturationRounds {
				panic(fmt.Sprintf("kernel.EU: exceeded %d saturation rounds without convergence", config.MaxSaturationRounds))
			}
		}
		if !progressed {
			return psi
		}
	}
}

// EG implements the greatest fixed point of spec.md section 4.8: psi := phi, iterate
// psi := psi ∩ EX(psi) until stable.
func EG(g symbolic.Graph, phi, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	psi := phi
	for rounds := 0; ; rounds++ {
		next := And(psi, EX(g, psi, selfLoops))
		if next.Equals(psi) {
			return psi
		}
		psi = next
		if rounds > config.MaxSaturationRounds {
			panic(fmt.Sprintf("kernel.EG: exceeded %d iterations without convergence", config.MaxSaturationRounds))
		}
	}
}

// AU implements the least fixed point of spec.md section 4.8: psi := phi2, iterate
// psi := psi ∪ (phi1 ∩ AX(psi)) until stable.
func AU(g symbolic.Graph, phi1, phi2, selfLoops symbolic.ColouredSet) symbolic.ColouredSet {
	psi := phi2
	for rounds := 0; ; rounds++ {
		next := Or(psi, And(phi1, AX(g, psi, selfLoops)))
		if next.Equals(psi) {
			return psi
		}
		psi = next
		if rounds > config.MaxSaturationRounds {
			panic(fmt.Sprintf("kernel.AU: exceeded %d iterations without convergence", config.MaxSaturationRounds))
		}
	}
}

// canonicalVariableOrder exposes g's Variables ordering to EU's saturation loop. Graph
// does not itself declare an ordered variable list (HasVariable only tests membership),
// so implementations that participate in EU must additionally satisfy
// VariableOrdering; symbolic/rudd.Graph and symbolic/symbolictest.Graph both do.
func canonicalVariableOrder(g symbolic.Graph) []string {
	if ordered, ok := g.(symbolic.VariableOrdering); ok {
		return ordered.Variables()
	}
	panic("kernel: graph does not implement symbolic.VariableOrdering, required for EU saturation")
}
