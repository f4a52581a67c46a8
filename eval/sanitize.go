package eval

import (
	"fmt"

	"github.com/symbnet/hctlmc/symbolic"
)

// Sanitize implements spec.md section 4.10 (C10): it verifies, by variable-name
// matching, that canonical's variables are a prefix of extended's, then delegates the
// structural diagram translation to result's symbolic.Sanitizable implementation.
func Sanitize(result symbolic.ColouredSet, extended, canonical symbolic.Graph) (symbolic.ColouredSet, error) {
	extOrdered, ok := extended.(symbolic.VariableOrdering)
	if !ok {
		panic("eval: Sanitize requires the extended graph to implement symbolic.VariableOrdering")
	}
	canOrdered, ok := canonical.(symbolic.VariableOrdering)
	if !ok {
		panic("eval: Sanitize requires the canonical graph to implement symbolic.VariableOrdering")
	}

	extVars, canVars := extOrdered.Variables(), canOrdered.Variables()
	if len(canVars) > len(extVars) {
		return nil, &SanitizeError{Message: "canonical graph declares more variables than the extended graph"}
	}
	for i, v := range canVars {
		if extVars[i] != v {
			return nil, &SanitizeError{Message: fmt.Sprintf("canonical variable %q at position %d is not a prefix of the extended graph's variables", v, i)}
		}
	}

	sanitizable, ok := result.(symbolic.Sanitizable)
	if !ok {
		panic("eval: Sanitize requires the result's ColouredSet to implement symbolic.Sanitizable")
	}
	return sanitizable.Sanitize(canonical)
}
