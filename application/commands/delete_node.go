package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
	"loom-backend/pkg/utils"
)

// DeleteNodeCommand removes a node and its whole subtree in one atomic
// batch. Deleting the project's root also clears the project's root
// reference.
type DeleteNodeCommand struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
}

// Validate validates the command before any store access
func (cmd DeleteNodeCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// DeleteNodeHandler handles the DeleteNodeCommand
type DeleteNodeHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	eventBus    ports.EventPublisher
	logger      *zap.Logger
}

// NewDeleteNodeHandler creates a new handler instance
func NewDeleteNodeHandler(
	nodeRepo ports.NodeRepository,
	projectRepo ports.ProjectRepository,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *DeleteNodeHandler {
	return &DeleteNodeHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Handle executes the cascade delete
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd DeleteNodeCommand) error {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
	if err != nil {
		return err
	}
	nodeID, err := valueobjects.ParseNodeID(cmd.NodeID)
	if err != nil {
		return err
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return err
	}

	tree, err := aggregates.NewConversationTree(projectID, nodes, project.RootNodeID())
	if err != nil {
		return err
	}

	subtree, err := tree.Subtree(nodeID)
	if err != nil {
		return err
	}

	doomed := make([]valueobjects.NodeID, len(subtree))
	for i, node := range subtree {
		doomed[i] = node.ID()
	}

	if err := h.nodeRepo.DeleteBatch(ctx, projectID, doomed); err != nil {
		return err
	}

	wasRoot := project.HasRoot() && project.RootNodeID().Equals(nodeID)
	if wasRoot {
		project.ClearRoot()
		if err := h.projectRepo.Save(ctx, project); err != nil {
			return err
		}
	}

	deleted := events.NewNodeDeleted(nodeID, projectID, len(doomed)-1, wasRoot, time.Now())
	toPublish := append(project.GetUncommittedEvents(), deleted)
	if err := h.eventBus.Publish(ctx, toPublish...); err != nil {
		h.logger.Warn("failed to publish delete events", zap.Error(err))
	}
	project.MarkEventsAsCommitted()

	h.logger.Info("node subtree deleted",
		zap.String("node_id", nodeID.String()),
		zap.String("project_id", projectID.String()),
		zap.Int("descendants", len(doomed)-1),
		zap.Bool("was_root", wasRoot))

	return nil
}
