package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/config"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
	pkgerrors "loom-backend/pkg/errors"
	"loom-backend/pkg/utils"
)

// ImportNodeInput is one node of an import batch. IDs are client-supplied
// so items can reference each other as parents within the same batch.
type ImportNodeInput struct {
	NodeID   string  `json:"node_id" validate:"required,uuid"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Role     string  `json:"role" validate:"required"`
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// ImportNodesCommand creates many nodes in one all-or-nothing batch. A
// failure anywhere leaves the store exactly as it was.
type ImportNodesCommand struct {
	ProjectID string            `json:"project_id" validate:"required,uuid"`
	Nodes     []ImportNodeInput `json:"nodes" validate:"required,min=1,dive"`
}

// Validate validates the command before any store access
func (cmd ImportNodesCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ImportNodesHandler handles the ImportNodesCommand
type ImportNodesHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	eventBus    ports.EventPublisher
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewImportNodesHandler creates a new handler instance
func NewImportNodesHandler(
	nodeRepo ports.NodeRepository,
	projectRepo ports.ProjectRepository,
	eventBus ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ImportNodesHandler {
	return &ImportNodesHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		eventBus:    eventBus,
		cfg:         cfg,
		logger:      logger,
	}
}

// Handle executes the import. Every parent reference must resolve either to
// another item of the batch or to a node already in the store.
func (h *ImportNodesHandler) Handle(ctx context.Context, cmd ImportNodesCommand) ([]*entities.Node, error) {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	existing, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(existing)+len(cmd.Nodes) > h.cfg.MaxNodesPerProject {
		return nil, pkgerrors.NewConflictError("import would exceed the project node limit")
	}

	inBatch := make(map[valueobjects.NodeID]bool, len(cmd.Nodes))
	ids := make([]valueobjects.NodeID, len(cmd.Nodes))
	for i, input := range cmd.Nodes {
		id, err := valueobjects.ParseNodeID(input.NodeID)
		if err != nil {
			return nil, err
		}
		if inBatch[id] {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("duplicate node id in import batch: %s", id.String()))
		}
		inBatch[id] = true
		ids[i] = id
	}

	inStore := make(map[valueobjects.NodeID]bool, len(existing))
	for _, node := range existing {
		inStore[node.ID()] = true
	}

	// Staggered timestamps keep oldest-first reads aligned with batch order.
	now := time.Now()
	nodes := make([]*entities.Node, 0, len(cmd.Nodes))
	for i, input := range cmd.Nodes {
		if inStore[ids[i]] {
			return nil, pkgerrors.NewConflictError(fmt.Sprintf("node already exists: %s", ids[i].String()))
		}

		role, ok := valueobjects.ParseRole(input.Role)
		if !ok {
			return nil, pkgerrors.NewValidationError("role must be SYSTEM, USER or ASSISTANT")
		}
		content, err := valueobjects.NewMessageContentWithConfig(input.Content, h.cfg)
		if err != nil {
			return nil, err
		}
		position, err := valueobjects.NewPosition(input.X, input.Y)
		if err != nil {
			return nil, err
		}

		var parentID *valueobjects.NodeID
		if input.ParentID != nil {
			parsed, err := valueobjects.ParseNodeID(*input.ParentID)
			if err != nil {
				return nil, err
			}
			if !inBatch[parsed] && !inStore[parsed] {
				return nil, pkgerrors.NewNotFoundError("parent node")
			}
			parentID = &parsed
		}

		created := now.Add(time.Duration(i) * time.Microsecond)
		node, err := entities.ReconstructNode(ids[i], projectID, parentID, role, content, position, nil, created, created)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := h.nodeRepo.CreateBatch(ctx, nodes); err != nil {
		return nil, err
	}

	if err := h.recordRoot(ctx, project, nodes); err != nil {
		return nil, err
	}

	h.publishImportEvents(ctx, nodes, project)

	h.logger.Info("nodes imported",
		zap.String("project_id", projectID.String()),
		zap.Int("count", len(nodes)))

	return nodes, nil
}

// recordRoot sets the project root to the first imported parentless node
// when the project does not have one yet.
func (h *ImportNodesHandler) recordRoot(ctx context.Context, project *entities.Project, nodes []*entities.Node) error {
	if project.HasRoot() {
		return nil
	}
	for _, node := range nodes {
		if !node.IsRoot() {
			continue
		}
		if err := project.SetRoot(node); err != nil {
			return err
		}
		return h.projectRepo.Save(ctx, project)
	}
	return nil
}

func (h *ImportNodesHandler) publishImportEvents(ctx context.Context, nodes []*entities.Node, project *entities.Project) {
	toPublish := make([]events.DomainEvent, 0, len(nodes)+1)
	for _, node := range nodes {
		toPublish = append(toPublish, events.NewNodeCreated(node.ID(), node.ProjectID(), node.ParentID(), node.Role(), node.IsRoot(), node.CreatedAt()))
	}
	toPublish = append(toPublish, project.GetUncommittedEvents()...)

	if err := h.eventBus.Publish(ctx, toPublish...); err != nil {
		h.logger.Warn("failed to publish import events", zap.Error(err))
	}
	project.MarkEventsAsCommitted()
}
