package probe

import (
	"strings"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
	"github.com/seanwkelley/belief-sensitivity-explorer/domain/graph"
)

// TargetType identifies what kind of graph element a probe challenges
type TargetType string

const (
	TargetNode       TargetType = "node"
	TargetEdge       TargetType = "edge"
	TargetStructural TargetType = "structural"
)

// ProbeType tags a target with the probe semantics applied to it.
// Downstream metrics classify probes by membership in fixed sets of these
// tags, so the values are part of the stored wire format.
type ProbeType string

const (
	ProbeNodeNegateHigh       ProbeType = "node_negate_high"
	ProbeNodeNegateMedium     ProbeType = "node_negate_medium"
	ProbeNodeNegateLow        ProbeType = "node_negate_low"
	ProbeNodeStrengthen       ProbeType = "node_strengthen"
	ProbeEdgeNegateCritical   ProbeType = "edge_negate_critical"
	ProbeEdgeNegatePeripheral ProbeType = "edge_negate_peripheral"
	ProbeEdgeFabricate        ProbeType = "edge_fabricate"
	ProbeMissingNode          ProbeType = "missing_node"
	ProbeIrrelevant           ProbeType = "irrelevant"
)

// Category derives the probe category from the probe type prefix. This must
// stay consistent between target generation and later filtering.
func (p ProbeType) Category() TargetType {
	s := string(p)
	switch {
	case strings.HasPrefix(s, "node"):
		return TargetNode
	case strings.HasPrefix(s, "edge"):
		return TargetEdge
	default:
		return TargetStructural
	}
}

// ShiftDirection classifies how a probe moved the forecast
type ShiftDirection string

const (
	ShiftIncreased ShiftDirection = "increased"
	ShiftDecreased ShiftDirection = "decreased"
	ShiftUnchanged ShiftDirection = "unchanged"
)

// ShiftEpsilon is the tolerance below which a numeric shift is classified as
// unchanged when the model does not classify the direction itself.
const ShiftEpsilon = 0.005

// ClassifyShift derives a shift direction from probabilities
func ClassifyShift(baseline, updated float64) ShiftDirection {
	diff := updated - baseline
	switch {
	case diff > ShiftEpsilon:
		return ShiftIncreased
	case diff < -ShiftEpsilon:
		return ShiftDecreased
	default:
		return ShiftUnchanged
	}
}

// Target is one element of the probe slate selected from the analyzed graph.
// For an edge, TargetID is "{source}->{target}"; downstream lookups match on
// that exact format.
type Target struct {
	TargetType     TargetType `json:"target_type"`
	TargetID       string     `json:"target_id"`
	Description    string     `json:"description"`
	Importance     float64    `json:"importance"`
	CentralityRank int        `json:"centrality_rank"`
	OnCriticalPath bool       `json:"on_critical_path"`
	ProbeType      ProbeType  `json:"probe_type"`
}

// Result records one executed probe. Target is a snapshot copied at
// selection time and immutable thereafter. UpdatedProbability and
// AbsoluteShift are nil when the probe failed.
type Result struct {
	Target             Target         `json:"target"`
	ProbeText          string         `json:"probe_text"`
	Success            bool           `json:"success"`
	Error              string         `json:"error,omitempty"`
	UpdatedProbability *float64       `json:"updated_probability"`
	AbsoluteShift      *float64       `json:"absolute_shift"`
	ShiftDirection     ShiftDirection `json:"shift_direction,omitempty"`
}

// Forecast is the model's probability estimate together with the causal
// graph that purportedly explains it
type Forecast struct {
	Probability float64      `json:"probability"`
	Reasoning   string       `json:"reasoning"`
	Nodes       []graph.Node `json:"nodes"`
	Edges       []graph.Edge `json:"edges"`
}

// ForecastUpdate is the model's revised estimate after counterfactual evidence
type ForecastUpdate struct {
	UpdatedProbability float64        `json:"updated_probability"`
	ShiftDirection     ShiftDirection `json:"shift_direction"`
	Reasoning          string         `json:"reasoning"`
}

// Analysis bundles everything the graph analyzer derives for one question
type Analysis struct {
	NodeMetrics  []graph.NodeMetrics `json:"node_metrics"`
	EdgeMetrics  []graph.EdgeMetrics `json:"edge_metrics"`
	Stats        graph.Stats         `json:"stats"`
	ProbeTargets []Target            `json:"probe_targets"`
}

// AggregateMetrics are cross-probe statistics for one question, a pure fold
// over the probe result set. Ratio metrics are nil when their defining
// denominator or group is empty.
type AggregateMetrics struct {
	ProbeCount                       int      `json:"probe_count"`
	SuccessfulProbes                 int      `json:"successful_probes"`
	MeanShiftHigh                    float64  `json:"mean_shift_high"`
	MeanShiftLow                     float64  `json:"mean_shift_low"`
	SSR                              *float64 `json:"ssr"`
	MeanShiftNegate                  float64  `json:"mean_shift_negate"`
	MeanShiftStrengthen              float64  `json:"mean_shift_strengthen"`
	AsymmetryIndex                   *float64 `json:"asymmetry_index"`
	FalseAcceptanceRate              *float64 `json:"false_acceptance_rate"`
	CriticalPathPremium              *float64 `json:"critical_path_premium"`
	ImportanceSensitivityCorrelation *float64 `json:"importance_sensitivity_correlation"`
}

// QuestionResult is the per-question document combining forecast, analysis,
// probe results and aggregate metrics. Field names and nesting are the
// stored wire format and must be preserved.
type QuestionResult struct {
	QuestionID       core.QuestionID  `json:"question_id"`
	Question         string           `json:"question"`
	CreatedAt        core.Timestamp   `json:"created_at"`
	Forecast         Forecast         `json:"forecast"`
	Analysis         Analysis         `json:"analysis"`
	ProbeResults     []Result         `json:"probe_results"`
	AggregateMetrics AggregateMetrics `json:"aggregate_metrics"`
}
