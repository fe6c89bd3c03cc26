package analysis

import (
	"sort"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/graph"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

// Composite importance weights. These are design constants, not derived
// values; treat them as configuration of the importance model.
const (
	weightBetweenness   = 0.3
	weightPageRank      = 0.2
	weightOutDegree     = 0.2
	weightPathRelevance = 0.3
)

// PageRank runs a fixed number of power iterations with no convergence
// check; graphs here are single-digit to low-tens of nodes and result
// stability matters more than exactness.
const (
	pagerankDamping    = 0.85
	pagerankIterations = 20
)

// edgeBetweennessPlaceholder is stored for every edge instead of a computed
// edge betweenness. Known limitation: all edges share the same value, so it
// never reorders edges downstream.
const edgeBetweennessPlaceholder = 0.5

// unreachable marks an infinite hop distance in the all-pairs table
const unreachable = -1

// rankedNode pairs an arena index with its composite importance for the
// descending importance ranking (outcome excluded, ties by input order)
type rankedNode struct {
	index      int
	importance float64
}

// AnalyzeGraph validates the elicited node/edge set and computes the full
// analysis: per-node and per-edge metrics, global stats, and the probe
// target slate. Pure and synchronous; a validation failure (dangling edge
// reference, self-loop) is the only error path.
func AnalyzeGraph(nodes []graph.Node, edges []graph.Edge) (*probe.Analysis, error) {
	g, err := graph.New(nodes, edges)
	if err != nil {
		return nil, err
	}
	return Analyze(g), nil
}

// Analyze computes all metrics over a validated graph. Total over any
// structurally valid graph: degenerate inputs (no nodes, no edges, fully
// disconnected) yield zero/default metrics rather than errors.
func Analyze(g *graph.CausalGraph) *probe.Analysis {
	n := g.NodeCount()
	outcome := g.OutcomeIndex()

	// Single shared computation reused by betweenness, path relevance,
	// closeness and critical-path detection.
	dist := allPairsShortestPaths(g)

	betweenness := betweennessScores(g, dist)
	pathRelevance := pathRelevanceScores(g, dist, outcome)
	pagerank := pageRankScores(g)
	closeness := closenessScores(g, dist)

	maxOutDegree := 0
	for i := 0; i < n; i++ {
		if d := g.OutDegree(i); d > maxOutDegree {
			maxOutDegree = d
		}
	}

	nodeMetrics := make([]graph.NodeMetrics, n)
	for i := 0; i < n; i++ {
		outDegreeScore := 0.0
		if maxOutDegree > 0 {
			outDegreeScore = float64(g.OutDegree(i)) / float64(maxOutDegree)
		}
		composite := weightBetweenness*betweenness[i] +
			weightPageRank*pagerank[i] +
			weightOutDegree*outDegreeScore +
			weightPathRelevance*pathRelevance[i]

		nodeMetrics[i] = graph.NodeMetrics{
			NodeID:              g.Nodes[i].ID,
			InDegree:            g.InDegree(i),
			OutDegree:           g.OutDegree(i),
			Betweenness:         betweenness[i],
			Closeness:           closeness[i],
			PageRank:            pagerank[i],
			PathRelevance:       pathRelevance[i],
			CompositeImportance: composite,
		}
	}

	edgeMetrics := make([]graph.EdgeMetrics, 0, g.EdgeCount())
	for _, e := range g.Edges {
		from, to := g.EdgeEndpoints(e)
		edgeMetrics = append(edgeMetrics, graph.EdgeMetrics{
			Source:          e.From,
			Target:          e.To,
			Mechanism:       e.Mechanism,
			EdgeBetweenness: edgeBetweennessPlaceholder,
			OnCriticalPath:  onCriticalPath(dist, from, to, outcome),
		})
	}

	outcomeID := ""
	if node, ok := g.Outcome(); ok {
		outcomeID = node.ID
	}
	stats := graph.Stats{
		NodeCount: n,
		EdgeCount: g.EdgeCount(),
		Density:   density(n, g.EdgeCount()),
		IsDAG:     isDAG(g),
		OutcomeID: outcomeID,
	}

	ranking := rankByImportance(nodeMetrics, outcome)
	targets := selectTargets(g, nodeMetrics, edgeMetrics, ranking, dist, outcome)

	return &probe.Analysis{
		NodeMetrics:  nodeMetrics,
		EdgeMetrics:  edgeMetrics,
		Stats:        stats,
		ProbeTargets: targets,
	}
}

// allPairsShortestPaths runs an unweighted BFS from every node over the
// directed adjacency. dist[s][t] is the hop count, unreachable (-1) when no
// directed path exists.
func allPairsShortestPaths(g *graph.CausalGraph) [][]int {
	n := g.NodeCount()
	dist := make([][]int, n)
	for s := 0; s < n; s++ {
		row := make([]int, n)
		for t := range row {
			row[t] = unreachable
		}
		row[s] = 0

		queue := []int{s}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range g.Successors(u) {
				if row[v] == unreachable {
					row[v] = row[u] + 1
					queue = append(queue, v)
				}
			}
		}
		dist[s] = row
	}
	return dist
}

// betweennessScores counts, for every ordered reachable pair (s,t), the
// intermediate nodes m with dist[s][m] + dist[m][t] == dist[s][t]. A node on
// any shortest path is counted, which overcounts relative to canonical
// betweenness centrality when shortest paths are not unique; that is this
// system's definition. Counts are normalized by the maximum across nodes.
func betweennessScores(g *graph.CausalGraph, dist [][]int) []float64 {
	n := g.NodeCount()
	counts := make([]float64, n)

	for s := 0; s < n; s++ {
		for t := 0; t < n; t++ {
			if s == t || dist[s][t] == unreachable {
				continue
			}
			for m := 0; m < n; m++ {
				if m == s || m == t {
					continue
				}
				if dist[s][m] != unreachable && dist[m][t] != unreachable &&
					dist[s][m]+dist[m][t] == dist[s][t] {
					counts[m]++
				}
			}
		}
	}

	return normalizeByMax(counts)
}

// pathRelevanceScores computes, per node, the fraction of sources with a
// directed shortest path to the outcome whose shortest path passes through
// that node. The outcome's own path relevance is 0 by definition.
func pathRelevanceScores(g *graph.CausalGraph, dist [][]int, outcome int) []float64 {
	n := g.NodeCount()
	scores := make([]float64, n)
	if outcome < 0 {
		return scores
	}

	validSources := 0
	onPath := make([]float64, n)
	for s := 0; s < n; s++ {
		if s == outcome || dist[s][outcome] == unreachable {
			continue
		}
		validSources++
		for m := 0; m < n; m++ {
			if m == s || m == outcome {
				continue
			}
			if dist[s][m] != unreachable && dist[m][outcome] != unreachable &&
				dist[s][m]+dist[m][outcome] == dist[s][outcome] {
				onPath[m]++
			}
		}
	}

	if validSources == 0 {
		return scores
	}
	for m := 0; m < n; m++ {
		if m == outcome {
			continue
		}
		scores[m] = onPath[m] / float64(validSources)
	}
	return scores
}

// pageRankScores runs standard power iteration over the reverse adjacency,
// splitting each predecessor's mass by its out-degree. A node with
// out-degree 0 redistributes to none; its mass simply decays. That is a
// known simplification, not a dangling-node correction.
func pageRankScores(g *graph.CausalGraph) []float64 {
	n := g.NodeCount()
	if n == 0 {
		return nil
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	base := (1.0 - pagerankDamping) / float64(n)
	for iter := 0; iter < pagerankIterations; iter++ {
		next := make([]float64, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, p := range g.Predecessors(i) {
				sum += scores[p] / float64(g.OutDegree(p))
			}
			next[i] = base + pagerankDamping*sum
		}
		scores = next
	}

	// Mass lost through zero-out-degree nodes is restored by a final
	// normalization so scores sum to 1; later uses never renormalize.
	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total > 0 {
		for i := range scores {
			scores[i] /= total
		}
	}
	return scores
}

// closenessScores computes reachable-count over distance-sum per node, then
// normalizes by the maximum across nodes
func closenessScores(g *graph.CausalGraph, dist [][]int) []float64 {
	n := g.NodeCount()
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		sum, reachable := 0, 0
		for j := 0; j < n; j++ {
			if j == i || dist[i][j] == unreachable {
				continue
			}
			sum += dist[i][j]
			reachable++
		}
		if sum > 0 {
			scores[i] = float64(reachable) / float64(sum)
		}
	}
	return normalizeByMax(scores)
}

// onCriticalPath reports whether the edge (u -> v) is the first hop of a
// shortest path from u to the outcome: dist[u][O] == 1 + dist[v][O]
func onCriticalPath(dist [][]int, u, v, outcome int) bool {
	if outcome < 0 {
		return false
	}
	du, dv := dist[u][outcome], dist[v][outcome]
	return du != unreachable && dv != unreachable && du == 1+dv
}

// density is |edges| / (n*(n-1)) for n > 1, else 0
func density(nodes, edges int) float64 {
	if nodes <= 1 {
		return 0
	}
	return float64(edges) / float64(nodes*(nodes-1))
}

// isDAG runs three-color DFS cycle detection; any back-edge to a gray node
// means the directed graph has a cycle
func isDAG(g *graph.CausalGraph) bool {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, g.NodeCount())

	var visit func(u int) bool
	visit = func(u int) bool {
		color[u] = gray
		for _, v := range g.Successors(u) {
			switch color[v] {
			case gray:
				return false
			case white:
				if !visit(v) {
					return false
				}
			}
		}
		color[u] = black
		return true
	}

	for u := 0; u < g.NodeCount(); u++ {
		if color[u] == white && !visit(u) {
			return false
		}
	}
	return true
}

// rankByImportance orders non-outcome nodes by descending composite
// importance. sort.SliceStable keeps input order for ties.
func rankByImportance(metrics []graph.NodeMetrics, outcome int) []rankedNode {
	ranking := make([]rankedNode, 0, len(metrics))
	for i, m := range metrics {
		if i == outcome {
			continue
		}
		ranking = append(ranking, rankedNode{index: i, importance: m.CompositeImportance})
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].importance > ranking[b].importance
	})
	return ranking
}

// normalizeByMax divides every value by the maximum (or leaves all zeros)
func normalizeByMax(values []float64) []float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / max
	}
	return out
}
