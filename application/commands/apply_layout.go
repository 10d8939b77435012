package commands

import (
	"context"
	"time"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/application/services"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
	"loom-backend/pkg/utils"
)

// ApplyLayoutCommand recomputes the whole project layout and persists every
// position in one atomic batch. The tree is never left half relaid-out.
type ApplyLayoutCommand struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
}

// Validate validates the command before any store access
func (cmd ApplyLayoutCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ApplyLayoutHandler handles the ApplyLayoutCommand
type ApplyLayoutHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	layout      *services.LayoutEngine
	eventBus    ports.EventPublisher
	logger      *zap.Logger
}

// NewApplyLayoutHandler creates a new handler instance
func NewApplyLayoutHandler(
	nodeRepo ports.NodeRepository,
	projectRepo ports.ProjectRepository,
	layout *services.LayoutEngine,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *ApplyLayoutHandler {
	return &ApplyLayoutHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		layout:      layout,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Handle recomputes and persists the project layout, returning the new
// positions so callers can refresh their view without a reload.
func (h *ApplyLayoutHandler) Handle(ctx context.Context, cmd ApplyLayoutCommand) (map[valueobjects.NodeID]valueobjects.Position, error) {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
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

	positions, err := h.layout.ComputeLayout(tree)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return positions, nil
	}

	if err := h.nodeRepo.UpdatePositionsBatch(ctx, projectID, positions); err != nil {
		return nil, err
	}

	event := events.NewLayoutApplied(projectID, len(positions), time.Now())
	if err := h.eventBus.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish layout event", zap.Error(err))
	}

	h.logger.Info("layout applied",
		zap.String("project_id", projectID.String()),
		zap.Int("node_count", len(positions)))

	return positions, nil
}
