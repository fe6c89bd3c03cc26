package graph

// NodeMetrics holds the structural importance measures for one node,
// recomputed from scratch on every analysis.
type NodeMetrics struct {
	NodeID              string  `json:"node_id"`
	InDegree            int     `json:"in_degree"`
	OutDegree           int     `json:"out_degree"`
	Betweenness         float64 `json:"betweenness"`
	Closeness           float64 `json:"closeness"`
	PageRank            float64 `json:"pagerank"`
	PathRelevance       float64 `json:"path_relevance"`
	CompositeImportance float64 `json:"composite_importance"`
}

// EdgeMetrics holds per-edge measures. EdgeBetweenness is a placeholder
// constant rather than a computed value; see the analyzer for details.
type EdgeMetrics struct {
	Source          string  `json:"source"`
	Target          string  `json:"target"`
	Mechanism       string  `json:"mechanism"`
	EdgeBetweenness float64 `json:"edge_betweenness"`
	OnCriticalPath  bool    `json:"on_critical_path"`
}

// Stats holds whole-graph measures
type Stats struct {
	NodeCount int     `json:"node_count"`
	EdgeCount int     `json:"edge_count"`
	Density   float64 `json:"density"`
	IsDAG     bool    `json:"is_dag"`
	OutcomeID string  `json:"outcome_id"`
}
