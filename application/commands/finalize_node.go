package commands

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/config"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// FinalizeNodeCommand writes the completed generation into a streaming
// ASSISTANT node and clears its streaming flag. The external collaborator
// calls this once per generation, after streaming ends.
type FinalizeNodeCommand struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
	Content   string `json:"content"`
}

// Validate validates the command before any store access
func (cmd FinalizeNodeCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// FinalizeNodeHandler handles the FinalizeNodeCommand
type FinalizeNodeHandler struct {
	nodeRepo ports.NodeRepository
	eventBus ports.EventPublisher
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewFinalizeNodeHandler creates a new handler instance
func NewFinalizeNodeHandler(
	nodeRepo ports.NodeRepository,
	eventBus ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *FinalizeNodeHandler {
	return &FinalizeNodeHandler{
		nodeRepo: nodeRepo,
		eventBus: eventBus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the finalize command
func (h *FinalizeNodeHandler) Handle(ctx context.Context, cmd FinalizeNodeCommand) (*entities.Node, error) {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.ParseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	content, err := valueobjects.NewMessageContentWithConfig(cmd.Content, h.cfg)
	if err != nil {
		return nil, err
	}

	node, err := h.nodeRepo.GetByID(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}

	if err := node.Finalize(content); err != nil {
		return nil, err
	}

	if err := h.nodeRepo.Save(ctx, node); err != nil {
		return nil, err
	}

	if err := h.eventBus.Publish(ctx, node.GetUncommittedEvents()...); err != nil {
		h.logger.Warn("failed to publish finalize events", zap.Error(err))
	}
	node.MarkEventsAsCommitted()

	h.logger.Info("node finalized",
		zap.String("node_id", nodeID.String()),
		zap.Int("tokens", content.TokenEstimate()))

	return node, nil
}
