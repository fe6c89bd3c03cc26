package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/graph"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

func factor(id string) graph.Node {
	return graph.Node{ID: id, Description: "factor " + id, Role: graph.RoleFactor}
}

func outcome(id string) graph.Node {
	return graph.Node{ID: id, Description: "outcome " + id, Role: graph.RoleOutcome}
}

func edge(from, to string) graph.Edge {
	return graph.Edge{From: from, To: to, Mechanism: from + " drives " + to}
}

func findNode(t *testing.T, metrics []graph.NodeMetrics, id string) graph.NodeMetrics {
	t.Helper()
	for _, m := range metrics {
		if m.NodeID == id {
			return m
		}
	}
	t.Fatalf("no node metrics for %q", id)
	return graph.NodeMetrics{}
}

func findEdge(t *testing.T, metrics []graph.EdgeMetrics, source, target string) graph.EdgeMetrics {
	t.Helper()
	for _, m := range metrics {
		if m.Source == source && m.Target == target {
			return m
		}
	}
	t.Fatalf("no edge metrics for %s->%s", source, target)
	return graph.EdgeMetrics{}
}

func TestAnalyzeGraph_DanglingEdgeRejected(t *testing.T) {
	_, err := AnalyzeGraph(
		[]graph.Node{factor("a"), outcome("o")},
		[]graph.Edge{edge("a", "ghost")},
	)
	if err == nil {
		t.Fatal("expected an error for an edge referencing an unknown node")
	}
	if !errors.Is(err, core.ErrDanglingEdge) {
		t.Fatalf("expected a dangling edge error, got %v", err)
	}
}

func TestAnalyzeGraph_OutcomeFallbackIsLastNode(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), factor("c")},
		[]graph.Edge{edge("a", "b"), edge("b", "c")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Stats.OutcomeID != "c" {
		t.Errorf("expected last node to be the outcome fallback, got %q", analysis.Stats.OutcomeID)
	}
}

func TestAnalyze_NormalizedMetricRanges(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), factor("c"), factor("d"), outcome("o")},
		[]graph.Edge{edge("a", "b"), edge("b", "c"), edge("c", "o"), edge("a", "c"), edge("d", "o")},
	)
	if err != nil {
		t.Fatal(err)
	}

	pagerankSum := 0.0
	for _, m := range analysis.NodeMetrics {
		for name, v := range map[string]float64{
			"betweenness":    m.Betweenness,
			"closeness":      m.Closeness,
			"pagerank":       m.PageRank,
			"path_relevance": m.PathRelevance,
		} {
			if v < 0 || v > 1 {
				t.Errorf("node %s: %s out of [0,1]: %f", m.NodeID, name, v)
			}
		}
		if m.CompositeImportance < 0 || math.IsNaN(m.CompositeImportance) || math.IsInf(m.CompositeImportance, 0) {
			t.Errorf("node %s: composite importance not finite non-negative: %f", m.NodeID, m.CompositeImportance)
		}
		pagerankSum += m.PageRank
	}
	if math.Abs(pagerankSum-1) > 1e-9 {
		t.Errorf("pagerank should sum to 1, got %f", pagerankSum)
	}
}

func TestAnalyze_ZeroEdges(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), factor("c"), outcome("o")},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range analysis.NodeMetrics {
		if m.Betweenness != 0 || m.PathRelevance != 0 || m.Closeness != 0 {
			t.Errorf("node %s: path metrics must be zero with no edges", m.NodeID)
		}
		if math.Abs(m.PageRank-0.25) > 1e-9 {
			t.Errorf("node %s: expected uniform pagerank 0.25, got %f", m.NodeID, m.PageRank)
		}
	}
	if analysis.Stats.Density != 0 {
		t.Errorf("expected zero density, got %f", analysis.Stats.Density)
	}
	if !analysis.Stats.IsDAG {
		t.Error("an edgeless graph is trivially acyclic")
	}
}

func TestAnalyze_SingleNode(t *testing.T) {
	analysis, err := AnalyzeGraph([]graph.Node{outcome("o")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.Stats.Density != 0 {
		t.Errorf("single-node density must be 0, got %f", analysis.Stats.Density)
	}
	m := analysis.NodeMetrics[0]
	if math.IsNaN(m.CompositeImportance) || math.IsInf(m.CompositeImportance, 0) {
		t.Errorf("composite importance must stay finite, got %f", m.CompositeImportance)
	}
}

func TestAnalyze_EmptyGraph(t *testing.T) {
	analysis, err := AnalyzeGraph(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.NodeMetrics) != 0 || len(analysis.EdgeMetrics) != 0 {
		t.Error("empty input must produce empty metrics")
	}
}

func TestAnalyze_CycleDetection(t *testing.T) {
	cyclic, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), outcome("c")},
		[]graph.Edge{edge("a", "b"), edge("b", "c"), edge("c", "a")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if cyclic.Stats.IsDAG {
		t.Error("a->b->c->a must be reported as cyclic")
	}

	acyclic, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), outcome("c")},
		[]graph.Edge{edge("a", "b"), edge("b", "c")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !acyclic.Stats.IsDAG {
		t.Error("breaking the cycle must restore the DAG property")
	}
}

func TestAnalyze_ChainCriticalPath(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), outcome("c")},
		[]graph.Edge{edge("a", "b"), edge("b", "c")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if !findEdge(t, analysis.EdgeMetrics, "a", "b").OnCriticalPath {
		t.Error("a->b lies on the only path to the outcome")
	}
	if !findEdge(t, analysis.EdgeMetrics, "b", "c").OnCriticalPath {
		t.Error("b->c lies on the only path to the outcome")
	}
}

func TestAnalyze_DisconnectedComponent(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("isolated"), outcome("o")},
		[]graph.Edge{edge("a", "o")},
	)
	if err != nil {
		t.Fatal(err)
	}
	m := findNode(t, analysis.NodeMetrics, "isolated")
	if m.Betweenness != 0 || m.Closeness != 0 || m.PathRelevance != 0 {
		t.Error("an isolated node must score zero on all path metrics")
	}
}

func TestAnalyze_FourNodeScenario(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("factor1"), factor("factor2"), factor("factor3"), outcome("outcome")},
		[]graph.Edge{edge("factor1", "factor2"), edge("factor2", "outcome"), edge("factor3", "outcome")},
	)
	if err != nil {
		t.Fatal(err)
	}

	for _, target := range analysis.ProbeTargets {
		if target.TargetType == probe.TargetNode && target.TargetID == "outcome" {
			t.Error("the outcome node must never be a probe target")
		}
	}

	for _, em := range analysis.EdgeMetrics {
		if !em.OnCriticalPath {
			t.Errorf("edge %s->%s: every edge here advances toward the outcome", em.Source, em.Target)
		}
	}

	f1 := findNode(t, analysis.NodeMetrics, "factor1")
	f2 := findNode(t, analysis.NodeMetrics, "factor2")
	if f2.CompositeImportance <= f1.CompositeImportance {
		t.Errorf("the mediating node must outrank its upstream source: f2=%f f1=%f",
			f2.CompositeImportance, f1.CompositeImportance)
	}
}
