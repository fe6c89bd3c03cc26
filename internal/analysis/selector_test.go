package analysis

import (
	"testing"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/graph"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/probe"
)

func targetsByType(targets []probe.Target) map[probe.ProbeType][]probe.Target {
	byType := make(map[probe.ProbeType][]probe.Target)
	for _, target := range targets {
		byType[target.ProbeType] = append(byType[target.ProbeType], target)
	}
	return byType
}

func TestSelectTargets_SlateShape(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("factor1"), factor("factor2"), factor("factor3"), outcome("outcome")},
		[]graph.Edge{edge("factor1", "factor2"), edge("factor2", "outcome"), edge("factor3", "outcome")},
	)
	if err != nil {
		t.Fatal(err)
	}

	byType := targetsByType(analysis.ProbeTargets)
	want := map[probe.ProbeType]int{
		probe.ProbeNodeNegateHigh:       2,
		probe.ProbeNodeNegateMedium:     1,
		probe.ProbeNodeNegateLow:        1,
		probe.ProbeNodeStrengthen:       2,
		probe.ProbeEdgeNegateCritical:   2,
		probe.ProbeEdgeNegatePeripheral: 0,
		probe.ProbeMissingNode:          1,
		probe.ProbeIrrelevant:           1,
	}
	for probeType, count := range want {
		if got := len(byType[probeType]); got != count {
			t.Errorf("%s: expected %d targets, got %d", probeType, count, got)
		}
	}
}

func TestSelectTargets_HighRanksAndStrengthenReuse(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("factor1"), factor("factor2"), factor("factor3"), outcome("outcome")},
		[]graph.Edge{edge("factor1", "factor2"), edge("factor2", "outcome"), edge("factor3", "outcome")},
	)
	if err != nil {
		t.Fatal(err)
	}

	byType := targetsByType(analysis.ProbeTargets)
	high := byType[probe.ProbeNodeNegateHigh]
	if high[0].TargetID != "factor2" {
		t.Errorf("the mediating node must rank first, got %q", high[0].TargetID)
	}
	if high[0].CentralityRank != 1 || high[1].CentralityRank != 2 {
		t.Errorf("high targets must carry ranks 1 and 2, got %d and %d",
			high[0].CentralityRank, high[1].CentralityRank)
	}

	strengthen := byType[probe.ProbeNodeStrengthen]
	for i := range strengthen {
		if strengthen[i].TargetID != high[i].TargetID {
			t.Errorf("strengthen target %d must reuse the negation target, got %q vs %q",
				i, strengthen[i].TargetID, high[i].TargetID)
		}
	}
}

func TestSelectTargets_EdgeTargetIDFormat(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), outcome("o")},
		[]graph.Edge{edge("a", "b"), edge("b", "o")},
	)
	if err != nil {
		t.Fatal(err)
	}

	ids := make(map[string]bool)
	for _, target := range analysis.ProbeTargets {
		if target.TargetType == probe.TargetEdge {
			ids[target.TargetID] = true
		}
	}
	if !ids["a->b"] || !ids["b->o"] {
		t.Errorf("edge target ids must be source->target, got %v", ids)
	}
}

func TestSelectTargets_PeripheralEdge(t *testing.T) {
	// a->b leads away from the outcome (b cannot reach o), so it is the
	// peripheral edge; a->o stays critical.
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), outcome("o")},
		[]graph.Edge{edge("a", "o"), edge("a", "b")},
	)
	if err != nil {
		t.Fatal(err)
	}

	byType := targetsByType(analysis.ProbeTargets)
	peripheral := byType[probe.ProbeEdgeNegatePeripheral]
	if len(peripheral) != 1 {
		t.Fatalf("expected exactly one peripheral edge target, got %d", len(peripheral))
	}
	if peripheral[0].TargetID != "a->b" {
		t.Errorf("expected a->b as the peripheral edge, got %q", peripheral[0].TargetID)
	}
	if peripheral[0].OnCriticalPath {
		t.Error("a peripheral edge target must not be marked on the critical path")
	}
}

func TestSelectTargets_FewNodes(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), outcome("o")},
		[]graph.Edge{edge("a", "o")},
	)
	if err != nil {
		t.Fatal(err)
	}

	byType := targetsByType(analysis.ProbeTargets)
	if len(byType[probe.ProbeNodeNegateHigh]) != 1 {
		t.Errorf("one rankable node yields one high target, got %d", len(byType[probe.ProbeNodeNegateHigh]))
	}
	if len(byType[probe.ProbeNodeNegateLow]) != 0 {
		t.Error("low negation requires at least three rankable nodes")
	}
	if len(byType[probe.ProbeMissingNode]) != 1 || len(byType[probe.ProbeIrrelevant]) != 1 {
		t.Error("structural probes must always be present")
	}
}

func TestProbeType_CategoryPrefix(t *testing.T) {
	cases := []struct {
		probeType probe.ProbeType
		want      probe.TargetType
	}{
		{probe.ProbeNodeNegateHigh, probe.TargetNode},
		{probe.ProbeNodeNegateMedium, probe.TargetNode},
		{probe.ProbeNodeNegateLow, probe.TargetNode},
		{probe.ProbeNodeStrengthen, probe.TargetNode},
		{probe.ProbeEdgeNegateCritical, probe.TargetEdge},
		{probe.ProbeEdgeNegatePeripheral, probe.TargetEdge},
		{probe.ProbeEdgeFabricate, probe.TargetEdge},
		{probe.ProbeMissingNode, probe.TargetStructural},
		{probe.ProbeIrrelevant, probe.TargetStructural},
	}
	for _, tc := range cases {
		if got := tc.probeType.Category(); got != tc.want {
			t.Errorf("%s: expected category %s, got %s", tc.probeType, tc.want, got)
		}
	}
}

func TestSelectTargets_CategoryConsistency(t *testing.T) {
	analysis, err := AnalyzeGraph(
		[]graph.Node{factor("a"), factor("b"), factor("c"), outcome("o")},
		[]graph.Edge{edge("a", "b"), edge("b", "o"), edge("c", "o")},
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, target := range analysis.ProbeTargets {
		if target.TargetType != target.ProbeType.Category() {
			t.Errorf("target %s: type %s disagrees with probe type %s",
				target.TargetID, target.TargetType, target.ProbeType)
		}
	}
}
