package services

import (
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
)

// HighlightResult partitions a tree view around one selected node: the
// active branch from the root down to the selection is highlighted, every
// other node and edge is dimmed. The two sets never overlap and together
// cover the whole snapshot.
type HighlightResult struct {
	HighlightedNodeIDs []valueobjects.NodeID `json:"highlighted_node_ids"`
	HighlightedEdgeIDs []string              `json:"highlighted_edge_ids"`
	DimmedNodeIDs      []valueobjects.NodeID `json:"dimmed_node_ids"`
	DimmedEdgeIDs      []string              `json:"dimmed_edge_ids"`
}

// PathHighlighter computes branch highlight sets. It is a pure function over
// the tree snapshot; selection state lives with the caller.
type PathHighlighter struct{}

// NewPathHighlighter creates a path highlighter
func NewPathHighlighter() *PathHighlighter {
	return &PathHighlighter{}
}

// Highlight returns the highlight partition for the given selection.
// Highlighted nodes come back root-first; dimmed nodes keep creation order.
func (h *PathHighlighter) Highlight(tree *aggregates.ConversationTree, selected valueobjects.NodeID) (*HighlightResult, error) {
	chain, err := tree.PathToRoot(selected)
	if err != nil {
		return nil, err
	}

	onPath := make(map[valueobjects.NodeID]bool, len(chain))
	for _, id := range chain {
		onPath[id] = true
	}

	result := &HighlightResult{
		HighlightedNodeIDs: chain,
		HighlightedEdgeIDs: make([]string, 0, len(chain)-1),
		DimmedNodeIDs:      []valueobjects.NodeID{},
		DimmedEdgeIDs:      []string{},
	}

	for i := 1; i < len(chain); i++ {
		result.HighlightedEdgeIDs = append(result.HighlightedEdgeIDs, aggregates.EdgeID(chain[i-1], chain[i]))
	}

	for _, node := range tree.Nodes() {
		if !onPath[node.ID()] {
			result.DimmedNodeIDs = append(result.DimmedNodeIDs, node.ID())
		}
	}

	// An edge is on the path only when both endpoints are; a highlighted
	// node's edges into side branches stay dimmed.
	for _, edge := range tree.Edges() {
		if !onPath[edge.SourceID] || !onPath[edge.TargetID] {
			result.DimmedEdgeIDs = append(result.DimmedEdgeIDs, edge.ID)
		}
	}

	return result, nil
}
