package events

import (
	"time"

	"loom-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Node events

// NodeCreated is raised when a new node enters the tree
type NodeCreated struct {
	BaseEvent
	NodeID    valueobjects.NodeID    `json:"node_id"`
	ProjectID valueobjects.ProjectID `json:"project_id"`
	ParentID  *valueobjects.NodeID   `json:"parent_id,omitempty"`
	Role      valueobjects.Role      `json:"role"`
	IsRoot    bool                   `json:"is_root"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(nodeID valueobjects.NodeID, projectID valueobjects.ProjectID, parentID *valueobjects.NodeID, role valueobjects.Role, isRoot bool, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:    nodeID,
		ProjectID: projectID,
		ParentID:  parentID,
		Role:      role,
		IsRoot:    isRoot,
	}
}

// NodeForked is raised when a USER node edit produces a sibling branch
type NodeForked struct {
	BaseEvent
	OriginalID valueobjects.NodeID  `json:"original_id"`
	ForkID     valueobjects.NodeID  `json:"fork_id"`
	ParentID   *valueobjects.NodeID `json:"parent_id,omitempty"`
	ForkIndex  int                  `json:"fork_index"`
}

// NewNodeForked creates a NodeForked event
func NewNodeForked(originalID, forkID valueobjects.NodeID, parentID *valueobjects.NodeID, forkIndex int, timestamp time.Time) NodeForked {
	return NodeForked{
		BaseEvent: BaseEvent{
			AggregateID: forkID.String(),
			EventType:   "node.forked",
			Timestamp:   timestamp,
			Version:     1,
		},
		OriginalID: originalID,
		ForkID:     forkID,
		ParentID:   parentID,
		ForkIndex:  forkIndex,
	}
}

// NodeMoved is raised when a node is moved to a new canvas position
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeContentFinalized is raised when a streamed ASSISTANT node settles
type NodeContentFinalized struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Tokens int                 `json:"tokens"`
}

// NewNodeContentFinalized creates a NodeContentFinalized event
func NewNodeContentFinalized(nodeID valueobjects.NodeID, tokens int, timestamp time.Time) NodeContentFinalized {
	return NodeContentFinalized{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.content_finalized",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID: nodeID,
		Tokens: tokens,
	}
}

// NodeDeleted is raised when a node and its subtree are removed
type NodeDeleted struct {
	BaseEvent
	NodeID          valueobjects.NodeID    `json:"node_id"`
	ProjectID       valueobjects.ProjectID `json:"project_id"`
	DescendantCount int                    `json:"descendant_count"`
	WasRoot         bool                   `json:"was_root"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(nodeID valueobjects.NodeID, projectID valueobjects.ProjectID, descendantCount int, wasRoot bool, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "node.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:          nodeID,
		ProjectID:       projectID,
		DescendantCount: descendantCount,
		WasRoot:         wasRoot,
	}
}

// Project events

// ProjectCreated is raised when a new project is created
type ProjectCreated struct {
	BaseEvent
	ProjectID valueobjects.ProjectID `json:"project_id"`
	Name      string                 `json:"name"`
}

// NewProjectCreated creates a ProjectCreated event
func NewProjectCreated(projectID valueobjects.ProjectID, name string, timestamp time.Time) ProjectCreated {
	return ProjectCreated{
		BaseEvent: BaseEvent{
			AggregateID: projectID.String(),
			EventType:   "project.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProjectID: projectID,
		Name:      name,
	}
}

// ProjectRootCleared is raised when deleting the root node clears the
// project's root reference
type ProjectRootCleared struct {
	BaseEvent
	ProjectID valueobjects.ProjectID `json:"project_id"`
	OldRootID valueobjects.NodeID    `json:"old_root_id"`
}

// NewProjectRootCleared creates a ProjectRootCleared event
func NewProjectRootCleared(projectID valueobjects.ProjectID, oldRootID valueobjects.NodeID, timestamp time.Time) ProjectRootCleared {
	return ProjectRootCleared{
		BaseEvent: BaseEvent{
			AggregateID: projectID.String(),
			EventType:   "project.root_cleared",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProjectID: projectID,
		OldRootID: oldRootID,
	}
}

// LayoutApplied is raised after a full-project layout recompute is persisted
type LayoutApplied struct {
	BaseEvent
	ProjectID valueobjects.ProjectID `json:"project_id"`
	NodeCount int                    `json:"node_count"`
}

// NewLayoutApplied creates a LayoutApplied event
func NewLayoutApplied(projectID valueobjects.ProjectID, nodeCount int, timestamp time.Time) LayoutApplied {
	return LayoutApplied{
		BaseEvent: BaseEvent{
			AggregateID: projectID.String(),
			EventType:   "project.layout_applied",
			Timestamp:   timestamp,
			Version:     1,
		},
		ProjectID: projectID,
		NodeCount: nodeCount,
	}
}
