package commands

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/config"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
	"loom-backend/pkg/utils"
)

// CreateNodeCommand creates a node in a project. A nil ParentID creates the
// project's root; the first root created is recorded on the project.
type CreateNodeCommand struct {
	ProjectID string  `json:"project_id" validate:"required,uuid"`
	ParentID  *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
	Role      string  `json:"role" validate:"required"`
	Content   string  `json:"content"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Validate validates the command before any store access
func (cmd CreateNodeCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// CreateNodeHandler handles the CreateNodeCommand
type CreateNodeHandler struct {
	nodeRepo    ports.NodeRepository
	projectRepo ports.ProjectRepository
	eventBus    ports.EventPublisher
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewCreateNodeHandler creates a new handler instance
func NewCreateNodeHandler(
	nodeRepo ports.NodeRepository,
	projectRepo ports.ProjectRepository,
	eventBus ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateNodeHandler {
	return &CreateNodeHandler{
		nodeRepo:    nodeRepo,
		projectRepo: projectRepo,
		eventBus:    eventBus,
		cfg:         cfg,
		logger:      logger,
	}
}

// Handle executes the create node command
func (h *CreateNodeHandler) Handle(ctx context.Context, cmd CreateNodeCommand) (*entities.Node, error) {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	role, ok := valueobjects.ParseRole(cmd.Role)
	if !ok {
		return nil, pkgerrors.NewValidationError("role must be SYSTEM, USER or ASSISTANT")
	}

	content, err := valueobjects.NewMessageContentWithConfig(cmd.Content, h.cfg)
	if err != nil {
		return nil, err
	}

	position, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return nil, err
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var node *entities.Node
	if cmd.ParentID == nil {
		node, err = entities.NewRootNode(projectID, role, content, position)
	} else {
		var parentID valueobjects.NodeID
		parentID, err = valueobjects.ParseNodeID(*cmd.ParentID)
		if err != nil {
			return nil, err
		}

		exists, existsErr := h.nodeRepo.Exists(ctx, projectID, parentID)
		if existsErr != nil {
			return nil, existsErr
		}
		if !exists {
			return nil, pkgerrors.NewNotFoundError("parent node")
		}

		node, err = entities.NewChildNode(projectID, parentID, role, content, position)
	}
	if err != nil {
		return nil, err
	}

	if err := h.nodeRepo.Save(ctx, node); err != nil {
		return nil, err
	}

	// The project's first parentless node becomes its recorded root.
	if node.IsRoot() && !project.HasRoot() {
		if err := project.SetRoot(node); err != nil {
			return nil, err
		}
		if err := h.projectRepo.Save(ctx, project); err != nil {
			return nil, err
		}
	}

	h.publishNodeEvents(ctx, node, project)

	h.logger.Info("node created",
		zap.String("node_id", node.ID().String()),
		zap.String("project_id", projectID.String()),
		zap.String("role", role.String()),
		zap.Bool("is_root", node.IsRoot()))

	return node, nil
}

func (h *CreateNodeHandler) publishNodeEvents(ctx context.Context, node *entities.Node, project *entities.Project) {
	events := node.GetUncommittedEvents()
	events = append(events, project.GetUncommittedEvents()...)

	if err := h.eventBus.Publish(ctx, events...); err != nil {
		h.logger.Warn("failed to publish node events", zap.Error(err))
	}

	node.MarkEventsAsCommitted()
	project.MarkEventsAsCommitted()
}
