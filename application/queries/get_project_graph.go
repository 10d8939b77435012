// Package queries holds the read-side operations of the engine. Each file
// pairs a query struct with its handler and DTOs; dispatch goes through the
// query bus.
package queries

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// NodeDTO is the read-model projection of a node
type NodeDTO struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	IsStreaming bool      `json:"is_streaming"`
	Tokens      int       `json:"tokens"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EdgeDTO is the derived parent→child connection projection
type EdgeDTO struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// GraphDTO is a full tree view: nodes oldest-first, derived edges, and the
// view's root reference.
type GraphDTO struct {
	ProjectID  string    `json:"project_id"`
	RootNodeID *string   `json:"root_node_id,omitempty"`
	Nodes      []NodeDTO `json:"nodes"`
	Edges      []EdgeDTO `json:"edges"`
}

// GetProjectGraphQuery fetches a project's complete graph
type GetProjectGraphQuery struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

// Validate validates the query before any store access
func (q GetProjectGraphQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetProjectGraphHandler handles the GetProjectGraphQuery
type GetProjectGraphHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	logger      *zap.Logger
}

// NewGetProjectGraphHandler creates a new handler instance
func NewGetProjectGraphHandler(nodeRepo ports.NodeRepository, projectRepo ports.ProjectRepository, logger *zap.Logger) *GetProjectGraphHandler {
	return &GetProjectGraphHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		logger:      logger,
	}
}

// Handle assembles the project graph: every node oldest-first plus the edge
// list derived from parent references.
func (h *GetProjectGraphHandler) Handle(ctx context.Context, query GetProjectGraphQuery) (*GraphDTO, error) {
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

	return graphToDTO(projectID, tree.RootNodeID(), tree.Nodes(), tree.Edges()), nil
}

func graphToDTO(projectID valueobjects.ProjectID, rootNodeID *valueobjects.NodeID, nodes []*entities.Node, edges []aggregates.Edge) *GraphDTO {
	dto := &GraphDTO{
		ProjectID: projectID.String(),
		Nodes:     make([]NodeDTO, 0, len(nodes)),
		Edges:     make([]EdgeDTO, 0, len(edges)),
	}
	if rootNodeID != nil {
		root := rootNodeID.String()
		dto.RootNodeID = &root
	}

	for _, node := range nodes {
		dto.Nodes = append(dto.Nodes, nodeToDTO(node))
	}
	for _, edge := range edges {
		dto.Edges = append(dto.Edges, EdgeDTO{
			ID:       edge.ID,
			SourceID: edge.SourceID.String(),
			TargetID: edge.TargetID.String(),
		})
	}
	return dto
}

func nodeToDTO(node *entities.Node) NodeDTO {
	dto := NodeDTO{
		ID:          node.ID().String(),
		ProjectID:   node.ProjectID().String(),
		Role:        node.Role().String(),
		Content:     node.Content().Body(),
		X:           node.Position().X(),
		Y:           node.Position().Y(),
		IsStreaming: node.IsStreaming(),
		Tokens:      node.Content().TokenEstimate(),
		CreatedAt:   node.CreatedAt(),
		UpdatedAt:   node.UpdatedAt(),
	}
	if parentID := node.ParentID(); parentID != nil {
		parent := parentID.String()
		dto.ParentID = &parent
	}
	return dto
}
