package queries

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// GetNodeSubgraphQuery fetches one node and all its descendants, ordered by
// depth ascending then creation time. The returned view's root is the
// queried node itself.
type GetNodeSubgraphQuery struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
}

// Validate validates the query before any store access
func (q GetNodeSubgraphQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetNodeSubgraphHandler handles the GetNodeSubgraphQuery
type GetNodeSubgraphHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	logger      *zap.Logger
}

// NewGetNodeSubgraphHandler creates a new handler instance
func NewGetNodeSubgraphHandler(nodeRepo ports.NodeRepository, projectRepo ports.ProjectRepository, logger *zap.Logger) *GetNodeSubgraphHandler {
	return &GetNodeSubgraphHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Handle assembles the subgraph rooted at the queried node
func (h *GetNodeSubgraphHandler) Handle(ctx context.Context, query GetNodeSubgraphQuery) (*GraphDTO, error) {
	projectID, err := valueobjects.ParseProjectID(query.ProjectID)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.ParseNodeID(query.NodeID)
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

	subtree, err := tree.Subtree(nodeID)
	if err != nil {
		return nil, err
	}

	// Re-assemble over the subtree alone so edges to the cut-off ancestor
	// disappear from the view.
	view, err := aggregates.NewConversationTree(projectID, subtree, &nodeID)
	if err != nil {
		return nil, err
	}

	return graphToDTO(projectID, &nodeID, subtree, view.Edges()), nil
}
