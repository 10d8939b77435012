package queries

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/application/services"
	"loom-backend/domain/config"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/pkg/utils"
)

// ContextMessageDTO is one turn of a built conversation context
type ContextMessageDTO struct {
	NodeID          string `json:"node_id"`
	Role            string `json:"role"`
	Content         string `json:"content"`
	PositionInChain int    `json:"position_in_chain"`
	TokenEstimate   int    `json:"token_estimate"`
}

// ContextDTO is the root-to-target chain plus the lowercased {role, content}
// pairs ready for the AI boundary.
type ContextDTO struct {
	TargetNodeID string                    `json:"target_node_id"`
	Messages     []ContextMessageDTO       `json:"messages"`
	TotalTokens  int                       `json:"total_tokens"`
	DroppedCount int                       `json:"dropped_count"`
	AIMessages   []ports.CompletionMessage `json:"ai_messages"`
}

// BatchContextItemDTO pairs one requested node with its context. Failed
// items carry an empty context and the failure reason.
type BatchContextItemDTO struct {
	NodeID  string      `json:"node_id"`
	Context *ContextDTO `json:"context"`
	Error   string      `json:"error,omitempty"`
}

// BuildContextQuery builds the LLM input chain for one node. MaxTokens of 0
// applies the configured default budget; negative disables truncation.
type BuildContextQuery struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
	MaxTokens int    `json:"max_tokens"`
}

// Validate validates the query before any store access
func (q BuildContextQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// BuildContextBatchQuery builds contexts for many nodes of one project
type BuildContextBatchQuery struct {
	ProjectID string   `json:"project_id" validate:"required,uuid"`
	NodeIDs   []string `json:"node_ids" validate:"required,min=1,dive,uuid"`
	MaxTokens int      `json:"max_tokens"`
}

// Validate validates the query before any store access
func (q BuildContextBatchQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// BuildContextHandler handles BuildContextQuery and BuildContextBatchQuery
type BuildContextHandler struct {
	nodeRepo ports.NodeRepository
	builder  *services.ContextBuilder
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewBuildContextHandler creates a new handler instance
func NewBuildContextHandler(nodeRepo ports.NodeRepository, builder *services.ContextBuilder, cfg *config.DomainConfig, logger *zap.Logger) *BuildContextHandler {
	return &BuildContextHandler{
		nodeRepo: nodeRepo,
		builder:  builder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle builds one context over a fresh snapshot
func (h *BuildContextHandler) Handle(ctx context.Context, query BuildContextQuery) (*ContextDTO, error) {
	projectID, err := valueobjects.ParseProjectID(query.ProjectID)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.ParseNodeID(query.NodeID)
	if err != nil {
		return nil, err
	}

	tree, err := h.snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	built, err := h.builder.Build(tree, nodeID)
	if err != nil {
		return nil, err
	}
	built = h.builder.TruncateByTokens(built, h.budget(query.MaxTokens))

	return h.contextToDTO(built), nil
}

// HandleBatch builds many contexts concurrently with per-item isolation
func (h *BuildContextHandler) HandleBatch(ctx context.Context, query BuildContextBatchQuery) ([]BatchContextItemDTO, error) {
	projectID, err := valueobjects.ParseProjectID(query.ProjectID)
	if err != nil {
		return nil, err
	}

	nodeIDs := make([]valueobjects.NodeID, len(query.NodeIDs))
	for i, raw := range query.NodeIDs {
		nodeIDs[i], err = valueobjects.ParseNodeID(raw)
		if err != nil {
			return nil, err
		}
	}

	tree, err := h.snapshot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	results := h.builder.BuildBatch(ctx, tree, nodeIDs)
	budget := h.budget(query.MaxTokens)

	items := make([]BatchContextItemDTO, len(results))
	for i, result := range results {
		item := BatchContextItemDTO{NodeID: result.NodeID.String()}
		if result.Err != nil {
			item.Error = result.Err.Error()
			item.Context = h.contextToDTO(result.Context)
		} else {
			item.Context = h.contextToDTO(h.builder.TruncateByTokens(result.Context, budget))
		}
		items[i] = item
	}
	return items, nil
}

func (h *BuildContextHandler) snapshot(ctx context.Context, projectID valueobjects.ProjectID) (*aggregates.ConversationTree, error) {
	nodes, err := h.nodeRepo.GetByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return aggregates.NewConversationTree(projectID, nodes, nil)
}

func (h *BuildContextHandler) budget(maxTokens int) int {
	if maxTokens == 0 {
		return h.cfg.DefaultMaxContextTokens
	}
	return maxTokens
}

func (h *BuildContextHandler) contextToDTO(built *services.ConversationContext) *ContextDTO {
	dto := &ContextDTO{
		TargetNodeID: built.TargetNodeID.String(),
		Messages:     make([]ContextMessageDTO, 0, len(built.Messages)),
		TotalTokens:  built.TotalTokens,
		DroppedCount: built.DroppedCount,
		AIMessages:   h.builder.FormatForAI(built),
	}
	for _, msg := range built.Messages {
		dto.Messages = append(dto.Messages, ContextMessageDTO{
			NodeID:          msg.NodeID.String(),
			Role:            msg.Role.String(),
			Content:         msg.Content,
			PositionInChain: msg.PositionInChain,
			TokenEstimate:   msg.TokenEstimate,
		})
	}
	return dto
}
