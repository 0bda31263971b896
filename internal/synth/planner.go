// planner.go - topological ordering of the module graph for calc()

package synth

// Plan returns modules in an order where every module's wired inputs are
// calc'd before the module itself, given a stable insertion order
// (modules, as held by the Workspace) to break ties and to choose which
// edge to discard when a cycle is found.
//
// Cycle handling: a DFS from each module in insertion order marks nodes
// gray while they are on the current path. An edge whose source is
// currently gray is a back edge; that edge (that specific input slot) is
// recorded as broken and excluded from the dependency set used for the
// topological sort. This always terminates and never panics, regardless
// of how the patch is wired (P2): breaking one edge per detected cycle
// strictly reduces the remaining cycle count in the acyclic subgraph.
func Plan(modules []Module) []Module {
	index := make(map[Module]int, len(modules))
	for i, m := range modules {
		index[m] = i
	}

	type color uint8
	const (
		white color = iota
		gray
		black
	)

	colors := make(map[Module]color, len(modules))
	broken := make(map[Module]map[uint8]bool) // sink -> input slot -> broken

	var visit func(m Module)
	visit = func(m Module) {
		colors[m] = gray
		for i := uint8(0); i < m.NumInputs(); i++ {
			src, _, connected := m.GetInput(i)
			if !connected || src == nil {
				continue
			}
			if _, known := index[src]; !known {
				// Source isn't a member of this workspace (stale wiring
				// left over from a deleted module); treat as unconnected.
				continue
			}
			switch colors[src] {
			case white:
				visit(src)
			case gray:
				if broken[m] == nil {
					broken[m] = make(map[uint8]bool)
				}
				broken[m][i] = true
			}
		}
		colors[m] = black
	}

	for _, m := range modules {
		if colors[m] == white {
			visit(m)
		}
	}

	// Kahn's algorithm over the acyclic subgraph, tie-broken by insertion
	// order so the plan is deterministic for a given workspace.
	remaining := make(map[Module]int, len(modules)) // unresolved dep count
	dependents := make(map[Module][]Module)          // src -> sinks waiting on it

	for _, m := range modules {
		n := 0
		for i := uint8(0); i < m.NumInputs(); i++ {
			src, _, connected := m.GetInput(i)
			if !connected || src == nil {
				continue
			}
			if _, known := index[src]; !known {
				continue
			}
			if broken[m][i] {
				continue
			}
			n++
			dependents[src] = append(dependents[src], m)
		}
		remaining[m] = n
	}

	ready := make([]Module, 0, len(modules))
	for _, m := range modules {
		if remaining[m] == 0 {
			ready = append(ready, m)
		}
	}

	plan := make([]Module, 0, len(modules))
	scheduled := make(map[Module]bool, len(modules))
	for len(plan) < len(modules) {
		if len(ready) == 0 {
			// Shouldn't happen: every cycle was broken above. Fall back
			// to insertion order for whatever is left, rather than panic.
			for _, m := range modules {
				if !scheduled[m] {
					ready = append(ready, m)
				}
			}
		}
		// Pick the earliest-inserted ready module.
		best := 0
		for i := 1; i < len(ready); i++ {
			if index[ready[i]] < index[ready[best]] {
				best = i
			}
		}
		m := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		if scheduled[m] {
			continue
		}
		scheduled[m] = true
		plan = append(plan, m)
		for _, dep := range dependents[m] {
			remaining[dep]--
			if remaining[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	return plan
}
