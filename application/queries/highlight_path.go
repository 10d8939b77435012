package queries

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/application/services"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// HighlightDTO partitions a tree view into the active branch and the rest
type HighlightDTO struct {
	HighlightedNodeIDs []string `json:"highlighted_node_ids"`
	HighlightedEdgeIDs []string `json:"highlighted_edge_ids"`
	DimmedNodeIDs      []string `json:"dimmed_node_ids"`
	DimmedEdgeIDs      []string `json:"dimmed_edge_ids"`
}

// HighlightPathQuery computes the highlight partition for a selection. A nil
// selection clears the highlight: every set comes back empty.
type HighlightPathQuery struct {
	ProjectID string  `json:"project_id" validate:"required,uuid"`
	NodeID    *string `json:"node_id,omitempty" validate:"omitempty,uuid"`
}

// Validate validates the query before any store access
func (q HighlightPathQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// HighlightPathHandler handles the HighlightPathQuery
type HighlightPathHandler struct {
	nodeRepo    ports.NodeRepository
	highlighter *services.PathHighlighter
	logger      *zap.Logger
}

// NewHighlightPathHandler creates a new handler instance
func NewHighlightPathHandler(nodeRepo ports.NodeRepository, highlighter *services.PathHighlighter, logger *zap.Logger) *HighlightPathHandler {
	return &HighlightPathHandler{
		nodeRepo:    nodeRepo,
		highlighter: highlighter,
		logger:      logger,
	}
}

// Handle computes the highlight sets over a fresh snapshot
func (h *HighlightPathHandler) Handle(ctx context.Context, query HighlightPathQuery) (*HighlightDTO, error) {
	if query.NodeID == nil {
		return emptyHighlightDTO(), nil
	}

	projectID, err := valueobjects.ParseProjectID(query.ProjectID)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.ParseNodeID(*query.NodeID)
	if err != nil {
		return nil, err
	}

	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tree, err := aggregates.NewConversationTree(projectID, nodes, nil)
	if err != nil {
		return nil, err
	}

	result, err := h.highlighter.Highlight(tree, nodeID)
	if err != nil {
		return nil, err
	}

	return &HighlightDTO{
		HighlightedNodeIDs: nodeIDsToStrings(result.HighlightedNodeIDs),
		HighlightedEdgeIDs: result.HighlightedEdgeIDs,
		DimmedNodeIDs:      nodeIDsToStrings(result.DimmedNodeIDs),
		DimmedEdgeIDs:      result.DimmedEdgeIDs,
	}, nil
}

func emptyHighlightDTO() *HighlightDTO {
	return &HighlightDTO{
		HighlightedNodeIDs: []string{},
		HighlightedEdgeIDs: []string{},
		DimmedNodeIDs:      []string{},
		DimmedEdgeIDs:      []string{},
	}
}

func nodeIDsToStrings(ids []valueobjects.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
