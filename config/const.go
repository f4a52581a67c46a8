package config

// This file hosts non-user-configurable parameters --- these are for development and testing purposes only.

// MaxSaturationRounds bounds the number of rounds the EU/EG/AU fixed points in package
// kernel will run (for EU, each per-variable addition counts as a round; for EG and AU,
// each outer iteration) before panicking with an internal-invariant violation. A
// correctly implemented saturation can never need more than a handful of rounds per
// "new" contribution per variable, so this is set generously high; it exists only to
// turn a kernel bug into a loud panic instead of a silent hang.
const MaxSaturationRounds = 1 << 20

// DefaultExtrasPerVar is a suggested number of auxiliary bit-groups per network variable
// for callers building a symbolic graph. The graph constructors (rudd.New,
// symbolictest.NewGraph) take extrasPerVar explicitly and do not fall back to this value.
// A graph's extrasPerVar bounds how many nested HCTL state variables a formula may bind
// before CapacityError is raised.
const DefaultExtrasPerVar = 3

// HCTLPkgPathPrefix is the package prefix (module path) of this engine. No code in the
// module currently reads it.
const HCTLPkgPathPrefix = "github.com/symbnet/hctlmc"
