package commands

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/application/services"
	"loom-backend/domain/config"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
	"loom-backend/pkg/utils"
)

// ForkNodeCommand branches a conversation at a USER node: the edited
// content lands on a new sibling, the original and its descendants stay
// untouched, and an assistant placeholder below the fork receives the
// regenerated reply.
type ForkNodeCommand struct {
	ProjectID     string `json:"project_id" validate:"required,uuid"`
	NodeID        string `json:"node_id" validate:"required,uuid"`
	EditedContent string `json:"edited_content" validate:"required"`
}

// Validate validates the command before any store access
func (cmd ForkNodeCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ForkResult carries the two nodes a fork creates
type ForkResult struct {
	Fork        *entities.Node
	Placeholder *entities.Node
}

// ForkNodeHandler handles the ForkNodeCommand
type ForkNodeHandler struct {
	nodeRepo    ports.NodeRepository
	eventBus    ports.EventPublisher
	planner     *services.ForkPlanner
	contexts    *services.ContextBuilder
	completions ports.CompletionRequester
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewForkNodeHandler creates a new handler instance
func NewForkNodeHandler(
	nodeRepo ports.NodeRepository,
	eventBus ports.EventPublisher,
	planner *services.ForkPlanner,
	contexts *services.ContextBuilder,
	completions ports.CompletionRequester,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ForkNodeHandler {
	return &ForkNodeHandler{
		nodeRepo:    nodeRepo,
		eventBus:    eventBus,
		planner:     planner,
		contexts:    contexts,
		completions: completions,
		cfg:         cfg,
		logger:      logger,
	}
}

// Handle executes the fork. The fork and its placeholder are created in one
// atomic batch; the AI hand-off afterwards is fire-and-forget, so fork
// durability never depends on the collaborator being reachable.
func (h *ForkNodeHandler) Handle(ctx context.Context, cmd ForkNodeCommand) (*ForkResult, error) {
	projectID, err := valueobjects.ParseProjectID(cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.ParseNodeID(cmd.NodeID)
	if err != nil {
		return nil, err
	}

	edited, err := valueobjects.NewMessageContentWithConfig(cmd.EditedContent, h.cfg)
	if err != nil {
		return nil, err
	}

	original, err := h.nodeRepo.GetByID(ctx, projectID, nodeID)
	if err != nil {
		return nil, err
	}
	if !original.Role().IsUser() {
		return nil, pkgerrors.NewValidationError("only USER nodes are forked; edit others in place")
	}

	siblings, err := h.countSiblings(ctx, projectID, original)
	if err != nil {
		return nil, err
	}

	// The original counts among the existing siblings, so the first fork of
	// an unbranched node gets index 0.
	forkIndex := siblings - 1
	if forkIndex < 0 {
		forkIndex = 0
	}

	forkPosition, err := h.planner.ForkPosition(original.Position(), forkIndex)
	if err != nil {
		return nil, err
	}
	fork, err := entities.NewFork(original, edited, forkPosition, forkIndex)
	if err != nil {
		return nil, err
	}

	continuationPos, err := h.planner.ContinuationPosition(forkPosition)
	if err != nil {
		return nil, err
	}
	placeholder, err := entities.NewAssistantPlaceholder(projectID, fork.ID(), continuationPos)
	if err != nil {
		return nil, err
	}

	if err := h.nodeRepo.CreateBatch(ctx, []*entities.Node{fork, placeholder}); err != nil {
		return nil, err
	}

	h.publishForkEvents(ctx, fork, placeholder)

	h.logger.Info("node forked",
		zap.String("original_id", original.ID().String()),
		zap.String("fork_id", fork.ID().String()),
		zap.String("placeholder_id", placeholder.ID().String()),
		zap.Int("fork_index", forkIndex))

	h.requestContinuation(ctx, projectID, fork, placeholder)

	return &ForkResult{Fork: fork, Placeholder: placeholder}, nil
}

// countSiblings counts existing nodes sharing the original's parent,
// original included. A parentless original counts the project's roots.
func (h *ForkNodeHandler) countSiblings(ctx context.Context, projectID valueobjects.ProjectID, original *entities.Node) (int, error) {
	parentID := original.ParentID()
	if parentID != nil {
		return h.nodeRepo.CountChildren(ctx, projectID, *parentID)
	}

	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	roots := 0
	for _, node := range nodes {
		if node.IsRoot() {
			roots++
		}
	}
	return roots, nil
}

// requestContinuation hands the fork's ancestor chain to the AI
// collaborator in the background. Failures are logged and dropped; the
// placeholder simply stays empty until a later finalize.
func (h *ForkNodeHandler) requestContinuation(ctx context.Context, projectID valueobjects.ProjectID, fork, placeholder *entities.Node) {
	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		h.logger.Warn("skipping continuation request, node reload failed", zap.Error(err))
		return
	}

	tree, err := aggregates.NewConversationTree(projectID, nodes, nil)
	if err != nil {
		h.logger.Warn("skipping continuation request, tree assembly failed", zap.Error(err))
		return
	}

	built, err := h.contexts.Build(tree, fork.ID())
	if err != nil {
		h.logger.Warn("skipping continuation request, context build failed", zap.Error(err))
		return
	}
	built = h.contexts.TruncateByTokens(built, h.cfg.DefaultMaxContextTokens)
	messages := h.contexts.FormatForAI(built)

	placeholderID := placeholder.ID()
	go func() {
		// Detached from the request context: generation outlives the fork call.
		if err := h.completions.RequestCompletion(context.Background(), projectID, placeholderID, messages); err != nil {
			h.logger.Warn("completion request failed",
				zap.String("placeholder_id", placeholderID.String()),
				zap.Error(err))
		}
	}()
}

func (h *ForkNodeHandler) publishForkEvents(ctx context.Context, fork, placeholder *entities.Node) {
	events := fork.GetUncommittedEvents()
	events = append(events, placeholder.GetUncommittedEvents()...)

	if err := h.eventBus.Publish(ctx, events...); err != nil {
		h.logger.Warn("failed to publish fork events", zap.Error(err))
	}

	fork.MarkEventsAsCommitted()
	placeholder.MarkEventsAsCommitted()
}
