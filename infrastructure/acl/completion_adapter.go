// Package acl is the anti-corruption layer between the tree engine and the
// external AI collaborator. The engine never talks to a provider directly;
// it hands ordered messages to this adapter and moves on.
package acl

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

// CompletionAdapter wraps an outbound CompletionRequester with a circuit
// breaker. A flapping collaborator trips the breaker and later requests
// fail fast; fork durability is unaffected either way because the hand-off
// is one-way.
type CompletionAdapter struct {
	upstream ports.CompletionRequester
	breaker  *gobreaker.CircuitBreaker
	logger   *zap.Logger
}

// NewCompletionAdapter creates the adapter around a concrete requester
func NewCompletionAdapter(upstream ports.CompletionRequester, logger *zap.Logger) *CompletionAdapter {
	settings := gobreaker.Settings{
		Name:        "ai-completions",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("completion breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &CompletionAdapter{
		upstream: upstream,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		logger:   logger,
	}
}

// RequestCompletion forwards the request through the breaker. There is a
// single attempt and no retry: a lost generation leaves an empty
// placeholder the user can regenerate.
func (a *CompletionAdapter) RequestCompletion(ctx context.Context, projectID valueobjects.ProjectID, targetNodeID valueobjects.NodeID, messages []ports.CompletionMessage) error {
	_, err := a.breaker.Execute(func() (interface{}, error) {
		return nil, a.upstream.RequestCompletion(ctx, projectID, targetNodeID, messages)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		a.logger.Warn("completion request rejected by open breaker",
			zap.String("target_node_id", targetNodeID.String()))
		return pkgerrors.NewExternalError("ai-completions", err)
	}
	if err != nil {
		return pkgerrors.NewExternalError("ai-completions", err)
	}

	a.logger.Debug("completion request dispatched",
		zap.String("target_node_id", targetNodeID.String()),
		zap.Int("messages", len(messages)))
	return nil
}
