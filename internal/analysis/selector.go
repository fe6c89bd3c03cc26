package analysis

import (
	"fmt"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/graph"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// Synthetic target ids for probes that do not reference a graph element
const (
	missingNodeTargetID = "synthetic:missing_node"
	irrelevantTargetID  = "synthetic:irrelevant"
)

// maxCriticalEdgeTargets caps the number of critical-edge negation probes
const maxCriticalEdgeTargets = 2

// selectTargets builds the probe slate from the importance ranking. The
// slate always ends with the two structural probes; everything else depends
// on how many rankable nodes and classified edges the graph has. The same
// node may appear under multiple probe types.
func selectTargets(g *graph.CausalGraph, nodeMetrics []graph.NodeMetrics, edgeMetrics []graph.EdgeMetrics, ranking []rankedNode, dist [][]int, outcome int) []probe.Target {
	targets := make([]probe.Target, 0, len(ranking)+len(edgeMetrics)+2)

	nodeTarget := func(rank int, probeType probe.ProbeType) probe.Target {
		idx := ranking[rank].index
		m := nodeMetrics[idx]
		return probe.Target{
			TargetType:     probe.TargetNode,
			TargetID:       m.NodeID,
			Description:    g.Nodes[idx].Description,
			Importance:     m.CompositeImportance,
			CentralityRank: rank + 1,
			OnCriticalPath: nodeOnCriticalPath(dist, idx, outcome),
			ProbeType:      probeType,
		}
	}

	count := len(ranking)

	// Negations walk down the ranking: the top two nodes, the median node,
	// and the least important node (only when it is distinct enough to say
	// something the top ranks do not).
	for rank := 0; rank < count && rank < 2; rank++ {
		targets = append(targets, nodeTarget(rank, probe.ProbeNodeNegateHigh))
	}
	if count > 0 {
		targets = append(targets, nodeTarget(count/2, probe.ProbeNodeNegateMedium))
	}
	if count >= 3 {
		targets = append(targets, nodeTarget(count-1, probe.ProbeNodeNegateLow))
	}

	// Strengthening reuses the top-ranked nodes so the asymmetry index
	// compares negation and confirmation on the same factors.
	for rank := 0; rank < count && rank < 2; rank++ {
		targets = append(targets, nodeTarget(rank, probe.ProbeNodeStrengthen))
	}

	criticalRank := 0
	for _, em := range edgeMetrics {
		if !em.OnCriticalPath || criticalRank >= maxCriticalEdgeTargets {
			continue
		}
		criticalRank++
		targets = append(targets, edgeTarget(em, criticalRank, probe.ProbeEdgeNegateCritical))
	}
	for _, em := range edgeMetrics {
		if em.OnCriticalPath {
			continue
		}
		targets = append(targets, edgeTarget(em, 1, probe.ProbeEdgeNegatePeripheral))
		break
	}

	targets = append(targets,
		probe.Target{
			TargetType:  probe.TargetStructural,
			TargetID:    missingNodeTargetID,
			Description: "a plausible-sounding causal factor absent from the stated graph",
			ProbeType:   probe.ProbeMissingNode,
		},
		probe.Target{
			TargetType:  probe.TargetStructural,
			TargetID:    irrelevantTargetID,
			Description: "information with no causal bearing on the outcome",
			ProbeType:   probe.ProbeIrrelevant,
		},
	)

	return targets
}

// edgeTarget builds an edge probe target. The id is "source->target" so a
// result set remains interpretable without the original graph.
func edgeTarget(em graph.EdgeMetrics, rank int, probeType probe.ProbeType) probe.Target {
	return probe.Target{
		TargetType:     probe.TargetEdge,
		TargetID:       fmt.Sprintf("%s->%s", em.Source, em.Target),
		Description:    em.Mechanism,
		Importance:     em.EdgeBetweenness,
		CentralityRank: rank,
		OnCriticalPath: em.OnCriticalPath,
		ProbeType:      probeType,
	}
}

// nodeOnCriticalPath reports whether a node has any directed path to the
// outcome. The outcome itself never ranks, so it is excluded explicitly.
func nodeOnCriticalPath(dist [][]int, node, outcome int) bool {
	return outcome >= 0 && node != outcome && dist[node][outcome] != unreachable
}
