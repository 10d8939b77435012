package acl

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/valueobjects"
)

// LoggingRequester is the default upstream when no completion transport is
// configured: it records the hand-off and succeeds. The placeholder node
// stays streaming until something calls finalize, which is exactly the
// behavior of a generation that never answers.
type LoggingRequester struct {
	logger *zap.Logger
}

// NewLoggingRequester creates a logging-only completion upstream
func NewLoggingRequester(logger *zap.Logger) *LoggingRequester {
	return &LoggingRequester{logger: logger}
}

// RequestCompletion logs the would-be request
func (r *LoggingRequester) RequestCompletion(ctx context.Context, projectID valueobjects.ProjectID, targetNodeID valueobjects.NodeID, messages []ports.CompletionMessage) error {
	r.logger.Info("completion request (no transport configured)",
		zap.String("project_id", projectID.String()),
		zap.String("target_node_id", targetNodeID.String()),
		zap.Int("messages", len(messages)))
	return nil
}
