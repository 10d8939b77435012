// Package ports defines the interfaces for the application layer.
// These follow the Dependency Inversion Principle: the application core
// defines what it needs, and infrastructure provides the implementations.
package ports

import (
	"context"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
)

// NodeRepository handles node persistence. Reads scoped to a project return
// nodes oldest-first by creation time; batch writes are atomic, either every
// element lands or none do.
type NodeRepository interface {
	// Save persists a new node or updates an existing one
	Save(ctx context.Context, node *entities.Node) error

	// GetByID retrieves a node within a project
	GetByID(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (*entities.Node, error)

	// GetByProjectID retrieves every node of a project, oldest-first
	GetByProjectID(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error)

	// Exists checks node existence without loading it
	Exists(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (bool, error)

	// CountChildren counts the direct children of a parent node
	CountChildren(ctx context.Context, projectID valueobjects.ProjectID, parentID valueobjects.NodeID) (int, error)

	// CreateBatch persists several new nodes atomically
	CreateBatch(ctx context.Context, nodes []*entities.Node) error

	// UpdatePositionsBatch moves several nodes atomically
	UpdatePositionsBatch(ctx context.Context, projectID valueobjects.ProjectID, positions map[valueobjects.NodeID]valueobjects.Position) error

	// DeleteBatch removes several nodes atomically
	DeleteBatch(ctx context.Context, projectID valueobjects.ProjectID, nodeIDs []valueobjects.NodeID) error
}

// ProjectRepository handles project persistence
type ProjectRepository interface {
	Save(ctx context.Context, project *entities.Project) error
	GetByID(ctx context.Context, projectID valueobjects.ProjectID) (*entities.Project, error)
	Exists(ctx context.Context, projectID valueobjects.ProjectID) (bool, error)
	Delete(ctx context.Context, projectID valueobjects.ProjectID) error
}

// EventPublisher delivers domain events to in-process subscribers. Publish
// failures never abort the command that raised the events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// CompletionMessage is one turn of conversation handed to the generation
// boundary, with the role already lowered to the wire form.
type CompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequester is the outbound boundary for AI generation. The
// request is one-way: the engine hands off the ordered context and returns
// immediately, and the generated text arrives later through node
// finalization.
type CompletionRequester interface {
	RequestCompletion(ctx context.Context, projectID valueobjects.ProjectID, targetNodeID valueobjects.NodeID, messages []CompletionMessage) error
}
