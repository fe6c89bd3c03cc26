package graph

import (
	"fmt"

	"github.com/seanwkelley/belief-sensitivity-explorer/domain/core"
)

// Role classifies a node within the elicited causal structure
type Role string

const (
	RoleFactor  Role = "factor"
	RoleOutcome Role = "outcome"
)

// Node is a causal factor or the outcome as elicited from the model
type Node struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Role        Role   `json:"role"`
}

// Edge is a directed causal mechanism between two nodes.
// Multiple edges between the same ordered pair are permitted and independent.
type Edge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Mechanism string `json:"mechanism"`
}

// CausalGraph is the validated, index-addressed form of an elicited graph.
// Nodes are assigned a stable integer index at construction and all internal
// algorithms operate on indices; string ids appear only at the boundary.
type CausalGraph struct {
	Nodes []Node
	Edges []Edge

	index   map[string]int // node id -> arena index
	adj     [][]int        // arena index -> successor indices
	radj    [][]int        // arena index -> predecessor indices
	outcome int            // arena index of the outcome node, -1 if no nodes
}

// New validates the elicited node/edge set and builds the adjacency maps once.
// A dangling edge reference is fatal for the question. A missing outcome role
// is not an error: the last node in input order becomes the outcome.
func New(nodes []Node, edges []Edge) (*CausalGraph, error) {
	g := &CausalGraph{
		Nodes:   nodes,
		Edges:   edges,
		index:   make(map[string]int, len(nodes)),
		adj:     make([][]int, len(nodes)),
		radj:    make([][]int, len(nodes)),
		outcome: -1,
	}

	for i, n := range nodes {
		if n.ID == "" {
			return nil, core.NewValidationError("node", fmt.Sprintf("node %d has empty id", i))
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, core.NewValidationError("node", fmt.Sprintf("duplicate node id %q", n.ID))
		}
		g.index[n.ID] = i
		if n.Role == RoleOutcome {
			g.outcome = i
		}
	}

	// Fallback rule: no node marked outcome means the last node is the outcome
	if g.outcome == -1 && len(nodes) > 0 {
		g.outcome = len(nodes) - 1
	}

	for _, e := range edges {
		from, ok := g.index[e.From]
		if !ok {
			return nil, core.NewDanglingEdgeError("from", e.From)
		}
		to, ok := g.index[e.To]
		if !ok {
			return nil, core.NewDanglingEdgeError("to", e.To)
		}
		if from == to {
			return nil, fmt.Errorf("%w: %q", core.ErrSelfLoop, e.From)
		}
		g.adj[from] = append(g.adj[from], to)
		g.radj[to] = append(g.radj[to], from)
	}

	return g, nil
}

// NodeCount returns the number of nodes
func (g *CausalGraph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges
func (g *CausalGraph) EdgeCount() int { return len(g.Edges) }

// Index returns the arena index for a node id
func (g *CausalGraph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// OutcomeIndex returns the arena index of the outcome node, -1 for an empty graph
func (g *CausalGraph) OutcomeIndex() int { return g.outcome }

// Outcome returns the outcome node; ok is false for an empty graph
func (g *CausalGraph) Outcome() (Node, bool) {
	if g.outcome < 0 {
		return Node{}, false
	}
	return g.Nodes[g.outcome], true
}

// Successors returns the successor indices of node i
func (g *CausalGraph) Successors(i int) []int { return g.adj[i] }

// Predecessors returns the predecessor indices of node i
func (g *CausalGraph) Predecessors(i int) []int { return g.radj[i] }

// OutDegree returns the out-degree of node i
func (g *CausalGraph) OutDegree(i int) int { return len(g.adj[i]) }

// InDegree returns the in-degree of node i
func (g *CausalGraph) InDegree(i int) int { return len(g.radj[i]) }

// EdgeEndpoints resolves an edge to its arena indices. Construction already
// validated both endpoints, so lookups cannot fail here.
func (g *CausalGraph) EdgeEndpoints(e Edge) (from, to int) {
	return g.index[e.From], g.index[e.To]
}
