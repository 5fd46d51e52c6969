package promotion

import "slices"

// Environments describes the fixed universe of deployment environments an
// application can be promoted through: an ordered sequential chain followed
// by an unordered set of fan-out environments that all receive promotions in
// parallel once the chain completes.
type Environments struct {
	chain  []string
	fanOut []string
}

// DefaultEnvironments returns the seven environments of the demo fleet.
//
// Promotion order: test → dev → staging → (prod-us, prod-eu, prod-au, infra)
func DefaultEnvironments() Environments {
	return Environments{
		chain:  []string{"test", "dev", "staging"},
		fanOut: []string{"prod-us", "prod-eu", "prod-au", "infra"},
	}
}

// Chain returns a copy of the sequential chain in promotion order.
func (e Environments) Chain() []string {
	return slices.Clone(e.chain)
}

// FanOut returns a copy of the fan-out environment names.
func (e Environments) FanOut() []string {
	return slices.Clone(e.fanOut)
}

// Entry returns the name of the first chain environment. Promotion into the
// entry environment is always a manual act; everything downstream of it may
// auto-promote.
func (e Environments) Entry() string {
	return e.chain[0]
}

// Contains returns true if the named environment is part of the universe.
func (e Environments) Contains(name string) bool {
	return slices.Contains(e.chain, name) || slices.Contains(e.fanOut, name)
}
