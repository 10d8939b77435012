package queries

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// GraphStatsDTO summarizes the shape of a project's forest
type GraphStatsDTO struct {
	ProjectID   string         `json:"project_id"`
	TotalNodes  int            `json:"total_nodes"`
	NodesByRole map[string]int `json:"nodes_by_role"`
	MaxDepth    int            `json:"max_depth"`
	LeafCount   int            `json:"leaf_count"`
}

// GetGraphStatsQuery fetches aggregate statistics for a project's graph
type GetGraphStatsQuery struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

// Validate validates the query before any store access
func (q GetGraphStatsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetGraphStatsHandler handles the GetGraphStatsQuery
type GetGraphStatsHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	logger      *zap.Logger
}

// NewGetGraphStatsHandler creates a new handler instance
func NewGetGraphStatsHandler(nodeRepo ports.NodeRepository, projectRepo ports.ProjectRepository, logger *zap.Logger) *GetGraphStatsHandler {
	return &GetGraphStatsHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Handle computes the stats over a fresh snapshot
func (h *GetGraphStatsHandler) Handle(ctx context.Context, query GetGraphStatsQuery) (*GraphStatsDTO, error) {
	projectID, err := valueobjects.ParseProjectID(query.ProjectID)
	if err != nil {
		return nil, err
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tree, err := aggregates.NewConversationTree(projectID, nodes, project.RootNodeID())
	if err != nil {
		return nil, err
	}

	stats, err := tree.Stats()
	if err != nil {
		return nil, err
	}

	dto := &GraphStatsDTO{
		ProjectID:   projectID.String(),
		TotalNodes:  stats.TotalNodes,
		NodesByRole: make(map[string]int, len(stats.NodesByRole)),
		MaxDepth:    stats.MaxDepth,
		LeafCount:   stats.LeafCount,
	}
	for role, count := range stats.NodesByRole {
		dto.NodesByRole[role.String()] = count
	}
	return dto, nil
}
