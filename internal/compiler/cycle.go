package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/scenekit/internal/ir"
)

// CycleWarning represents a reference cycle between prefabs or assets.
//
// Cycles are warnings, not errors: the canvas renders a placeholder where a
// prefab expands into itself, and asset resolution reports CYCLIC_REFERENCE
// for the offending property only.
type CycleWarning struct {
	Kind    string   `json:"kind"`    // "prefab" or "asset"
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzePrefabCycles reports prefabs whose templates reference each other
// in a loop.
//
// The algorithm:
//  1. Build prefab -> prefab edges from prefab references in every template
//     and variant template
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle warning
//
// A DAG (no cycles) returns an empty warning list.
func AnalyzePrefabCycles(m *ir.Manifest) []CycleWarning {
	graph := make(dependencyGraph)
	addPrefab := func(p ir.Prefab) {
		if graph[p.ID] == nil {
			graph[p.ID] = []string{}
		}
		templates := []*ir.Node{p.Template}
		for _, v := range p.Variants {
			templates = append(templates, v.Template)
		}
		for _, t := range templates {
			ir.Walk(t, func(n *ir.Node) bool {
				if n.PrefabID != "" && !slices.Contains(graph[p.ID], n.PrefabID) {
					graph[p.ID] = append(graph[p.ID], n.PrefabID)
				}
				return true
			})
		}
	}
	for _, p := range m.Prefabs {
		addPrefab(p)
	}
	for _, a := range m.Assets {
		if a.Type == ir.AssetPrefab && a.Prefab != nil {
			p := *a.Prefab
			if p.ID == "" {
				p.ID = a.ID
			}
			addPrefab(p)
		}
	}
	return analyze("prefab", graph)
}

// AnalyzeAssetCycles reports assets whose values reference each other in a
// loop, either through asset references or bare strings naming an asset.
func AnalyzeAssetCycles(m *ir.Manifest) []CycleWarning {
	ids := make(map[string]bool, len(m.Assets))
	for _, a := range m.Assets {
		ids[a.ID] = true
	}

	graph := make(dependencyGraph)
	for _, a := range m.Assets {
		if graph[a.ID] == nil {
			graph[a.ID] = []string{}
		}
		var cfg ir.Config
		switch a.Type {
		case ir.AssetStylePalette:
			cfg = a.Values
		case ir.AssetComponentConfig:
			cfg = a.Config
		}
		for _, key := range cfg.SortedKeys() {
			var target string
			switch val := cfg[key].(type) {
			case ir.AssetReference:
				target = val.AssetID
			case ir.Literal:
				if s, ok := val.V.(string); ok && ids[s] {
					target = s
				}
			}
			if target != "" && !slices.Contains(graph[a.ID], target) {
				graph[a.ID] = append(graph[a.ID], target)
			}
		}
	}
	return analyze("asset", graph)
}

// dependencyGraph maps an id to the ids it references.
type dependencyGraph map[string][]string

func analyze(kind string, graph dependencyGraph) []CycleWarning {
	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			w := cycleSCCToWarning(scc, graph)
			w.Kind = kind
			warnings = append(warnings, w)
		}
	}
	return warnings
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Returns a list of SCCs, where each SCC is a list of ids. Nodes are visited
// in sorted order so the output is stable.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Visit all nodes
	for _, node := range slices.Sorted(maps.Keys(graph)) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
//
// The path shows the cycle sequence by reconstructing a path through the SCC.
// For self-loops, the path is [id, id].
// For multi-node cycles, the path shows a cycle traversal.
func cycleSCCToWarning(scc []string, graph dependencyGraph) CycleWarning {
	slices.Sort(scc)
	if len(scc) == 1 {
		// Self-loop
		id := scc[0]
		return CycleWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("Self-reference detected: %s → %s", id, id),
			Level:   "warning",
		}
	}

	// Multi-node cycle - reconstruct a cycle path
	path := reconstructCyclePath(scc, graph)

	pathStr := strings.Join(path, " → ")
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Potential cycle detected: %s", pathStr),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at the smallest id in the SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	// Build set of SCC members for fast lookup
	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	// Start at first node
	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	// Follow edges within SCC until we return to start
	for {
		visited[current] = true

		// Find next SCC member reachable from current
		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			// No more unvisited neighbors in SCC
			break
		}

		path = append(path, next)

		if next == start {
			// Completed the cycle
			break
		}

		current = next
	}

	return path
}
