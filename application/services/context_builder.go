package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loom-backend/application/ports"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/valueobjects"
)

// batchConcurrency caps the goroutines building contexts in one batch call
const batchConcurrency = 8

// ContextMessage is one turn of the ancestor chain handed to generation
type ContextMessage struct {
	NodeID          valueobjects.NodeID `json:"node_id"`
	Role            valueobjects.Role   `json:"role"`
	Content         string              `json:"content"`
	PositionInChain int                 `json:"position_in_chain"`
	TokenEstimate   int                 `json:"token_estimate"`
}

// ConversationContext is the ordered root-to-target message chain with its
// summed token estimate.
type ConversationContext struct {
	TargetNodeID valueobjects.NodeID `json:"target_node_id"`
	Messages     []ContextMessage    `json:"messages"`
	TotalTokens  int                 `json:"total_tokens"`
	DroppedCount int                 `json:"dropped_count"`
}

// BatchContextResult pairs one requested node with its context. A failed
// node carries an empty context and the error; the batch itself never fails.
type BatchContextResult struct {
	NodeID  valueobjects.NodeID  `json:"node_id"`
	Context *ConversationContext `json:"context"`
	Err     error                `json:"-"`
}

// ContextBuilder assembles LLM input from a tree snapshot: the ancestor walk
// from a node back to its root, token estimation, budget truncation and the
// wire formatting for the generation boundary.
type ContextBuilder struct {
	logger *zap.Logger
}

// NewContextBuilder creates a context builder
func NewContextBuilder(logger *zap.Logger) *ContextBuilder {
	return &ContextBuilder{logger: logger}
}

// Build walks from the target node to its tree's true root and returns the
// chain in chronological order, position 0 at the root. Token counts are the
// ceil(chars/4) estimate carried by each node's content.
func (b *ContextBuilder) Build(tree *aggregates.ConversationTree, nodeID valueobjects.NodeID) (*ConversationContext, error) {
	chain, err := tree.PathToRoot(nodeID)
	if err != nil {
		return nil, err
	}

	result := &ConversationContext{
		TargetNodeID: nodeID,
		Messages:     make([]ContextMessage, 0, len(chain)),
	}

	for i, id := range chain {
		node, err := tree.GetNode(id)
		if err != nil {
			return nil, err
		}

		tokens := node.Content().TokenEstimate()
		result.Messages = append(result.Messages, ContextMessage{
			NodeID:          id,
			Role:            node.Role(),
			Content:         node.Content().Body(),
			PositionInChain: i,
			TokenEstimate:   tokens,
		})
		result.TotalTokens += tokens
	}

	return result, nil
}

// BuildBatch builds contexts for many nodes concurrently. A node that fails
// yields an empty context in its slot instead of aborting the batch; results
// keep the order of the requested ids.
func (b *ContextBuilder) BuildBatch(ctx context.Context, tree *aggregates.ConversationTree, nodeIDs []valueobjects.NodeID) []BatchContextResult {
	results := make([]BatchContextResult, len(nodeIDs))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, nodeID := range nodeIDs {
		i, nodeID := i, nodeID
		g.Go(func() error {
			built, err := b.Build(tree, nodeID)
			if err != nil {
				b.logger.Warn("context build failed for batch item",
					zap.String("node_id", nodeID.String()),
					zap.Error(err))
				built = &ConversationContext{TargetNodeID: nodeID, Messages: []ContextMessage{}}
			}
			results[i] = BatchContextResult{NodeID: nodeID, Context: built, Err: err}
			return nil
		})
	}

	// Workers never return errors; isolation is per item.
	_ = g.Wait()
	return results
}

// TruncateByTokens trims a context to the token budget. Within budget the
// context comes back unchanged. Over budget it keeps the trailing
// subsequence closest to the target that fits, always retains the target
// itself, and prefixes the new head message with a notice naming how many
// earlier messages were dropped. Token accounting stays on the original
// message bodies.
func (b *ContextBuilder) TruncateByTokens(built *ConversationContext, maxTokens int) *ConversationContext {
	if built == nil || maxTokens <= 0 || built.TotalTokens <= maxTokens {
		return built
	}

	// Walk backward from the target, keeping messages while they fit. The
	// target is kept unconditionally even when it alone blows the budget.
	keepFrom := len(built.Messages) - 1
	budget := built.Messages[keepFrom].TokenEstimate
	for i := keepFrom - 1; i >= 0; i-- {
		if budget+built.Messages[i].TokenEstimate > maxTokens {
			break
		}
		budget += built.Messages[i].TokenEstimate
		keepFrom = i
	}

	dropped := keepFrom
	kept := make([]ContextMessage, len(built.Messages)-keepFrom)
	copy(kept, built.Messages[keepFrom:])

	kept[0].Content = fmt.Sprintf("[%d earlier message(s) omitted to fit the context budget]\n\n%s", dropped, kept[0].Content)

	return &ConversationContext{
		TargetNodeID: built.TargetNodeID,
		Messages:     kept,
		TotalTokens:  budget,
		DroppedCount: dropped,
	}
}

// FormatForAI lowers the chain to the {role, content} pairs the generation
// boundary consumes.
func (b *ContextBuilder) FormatForAI(built *ConversationContext) []ports.CompletionMessage {
	messages := make([]ports.CompletionMessage, 0, len(built.Messages))
	for _, m := range built.Messages {
		messages = append(messages, ports.CompletionMessage{
			Role:    m.Role.Wire(),
			Content: m.Content,
		})
	}
	return messages
}
