package kernel

import "github.com/symbnet/hctlmc/symbolic"

// RestrictDomain constructs the restricted graph view spec.md's variable-domain
// restriction names: it transplants domain (which must depend only on colour/state
// bits) onto extraIndex's extra bit-group using the same construction as JUMP --
// project_state_bits(domain ∩ state-var(extraIndex)) -- then asks g to narrow its
// unit set to that transplanted set. Every symbolic.Graph implementation shares this
// one transplant formula; only the final intersection is backend-specific.
func RestrictDomain(g symbolic.Restrictable, domain symbolic.ColouredSet, extraIndex int) (symbolic.Graph, error) {
	transplanted := Jump(g, domain, extraIndex)
	return g.Restrict(transplanted, extraIndex)
}
