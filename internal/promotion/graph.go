package promotion

import "sort"

// Stage is one node in an application's promotion graph.
type Stage struct {
	// Name is the name of the environment the Stage promotes into.
	Name string
	// Upstream is the name of the Stage immediately upstream of this one. An
	// empty value means the Stage sources artifacts directly from their
	// origin instead of from another Stage.
	Upstream string
}

// BuildGraph computes the ordered promotion graph for an application
// targeting the provided environments. Chain environments appear first, in
// chain order, each linked to its nearest upstream chain environment also
// present in the target set. Fan-out environments follow in lexical order,
// all linked to the last chain environment present in the target set -- or
// to no upstream at all when the application has no chain membership.
// Environments outside the universe are ignored.
func (e Environments) BuildGraph(targets []string) []Stage {
	targeted := make(map[string]bool, len(targets))
	for _, t := range targets {
		targeted[t] = true
	}

	var stages []Stage

	for i, env := range e.chain {
		if !targeted[env] {
			continue
		}
		var upstream string
		for j := i - 1; j >= 0; j-- {
			if targeted[e.chain[j]] {
				upstream = e.chain[j]
				break
			}
		}
		stages = append(stages, Stage{
			Name:     env,
			Upstream: upstream,
		})
	}

	// All fan-out stages hang off the last chain stage present in the target
	// set. When none is, they source directly from the artifact origin.
	var lastChain string
	for i := len(e.chain) - 1; i >= 0; i-- {
		if targeted[e.chain[i]] {
			lastChain = e.chain[i]
			break
		}
	}

	var fanOut []string
	for _, env := range e.fanOut {
		if targeted[env] {
			fanOut = append(fanOut, env)
		}
	}
	sort.Strings(fanOut)

	for _, env := range fanOut {
		stages = append(stages, Stage{
			Name:     env,
			Upstream: lastChain,
		})
	}

	return stages
}
