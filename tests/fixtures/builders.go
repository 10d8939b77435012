// Package fixtures provides builder helpers for constructing domain
// entities in tests.
package fixtures

import (
	"time"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
)

// NodeBuilder builds test nodes with sane defaults
type NodeBuilder struct {
	id        valueobjects.NodeID
	projectID valueobjects.ProjectID
	parentID  *valueobjects.NodeID
	role      valueobjects.Role
	content   string
	x, y      float64
	createdAt time.Time
	metadata  map[string]interface{}
}

// NewNodeBuilder creates a builder for a USER root node
func NewNodeBuilder(projectID valueobjects.ProjectID) *NodeBuilder {
	return &NodeBuilder{
		id:        valueobjects.NewNodeID(),
		projectID: projectID,
		role:      valueobjects.RoleUser,
		content:   "test message",
		createdAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WithID sets an explicit node id
func (b *NodeBuilder) WithID(id valueobjects.NodeID) *NodeBuilder {
	b.id = id
	return b
}

// WithParent makes the node a child of the given parent
func (b *NodeBuilder) WithParent(parentID valueobjects.NodeID) *NodeBuilder {
	b.parentID = &parentID
	return b
}

// WithRole sets the role
func (b *NodeBuilder) WithRole(role valueobjects.Role) *NodeBuilder {
	b.role = role
	return b
}

// WithContent sets the message body
func (b *NodeBuilder) WithContent(content string) *NodeBuilder {
	b.content = content
	return b
}

// WithPosition sets the canvas position
func (b *NodeBuilder) WithPosition(x, y float64) *NodeBuilder {
	b.x, b.y = x, y
	return b
}

// WithCreatedAt sets the creation timestamp
func (b *NodeBuilder) WithCreatedAt(createdAt time.Time) *NodeBuilder {
	b.createdAt = createdAt
	return b
}

// WithStreaming marks the node as a streaming placeholder
func (b *NodeBuilder) WithStreaming() *NodeBuilder {
	if b.metadata == nil {
		b.metadata = map[string]interface{}{}
	}
	b.metadata[entities.MetadataKeyStreaming] = true
	return b
}

// Build constructs the node, panicking on invalid fixture input
func (b *NodeBuilder) Build() *entities.Node {
	content, err := valueobjects.NewMessageContent(b.content)
	if err != nil {
		panic(err)
	}
	position, err := valueobjects.NewPosition(b.x, b.y)
	if err != nil {
		panic(err)
	}

	node, err := entities.ReconstructNode(
		b.id, b.projectID, b.parentID, b.role, content, position,
		b.metadata, b.createdAt, b.createdAt,
	)
	if err != nil {
		panic(err)
	}
	return node
}

// NewProject builds a test project with committed events
func NewProject(name string) *entities.Project {
	project, err := entities.NewProject(name, "fixture project")
	if err != nil {
		panic(err)
	}
	project.MarkEventsAsCommitted()
	return project
}
