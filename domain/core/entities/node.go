package entities

import (
	"time"

	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
	pkgerrors "loom-backend/pkg/errors"
)

// MetadataKeyStreaming marks an ASSISTANT node whose content is still being
// written by an in-flight generation.
const MetadataKeyStreaming = "streaming"

// Node is the main entity representing a single message in the conversation
// tree. This is a rich domain model with encapsulated business logic.
//
// Topology (projectID, parentID) is immutable after creation; forks never
// re-parent existing nodes, they add siblings.
type Node struct {
	// Private fields ensure encapsulation
	id        valueobjects.NodeID
	projectID valueobjects.ProjectID
	parentID  *valueobjects.NodeID
	role      valueobjects.Role
	content   valueobjects.MessageContent
	position  valueobjects.Position
	metadata  map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// NewRootNode creates the first node of a project. It has no parent; the
// caller records its id as the project's root.
func NewRootNode(projectID valueobjects.ProjectID, role valueobjects.Role, content valueobjects.MessageContent, position valueobjects.Position) (*Node, error) {
	return newNode(projectID, nil, role, content, position)
}

// NewChildNode creates a node under an existing parent
func NewChildNode(projectID valueobjects.ProjectID, parentID valueobjects.NodeID, role valueobjects.Role, content valueobjects.MessageContent, position valueobjects.Position) (*Node, error) {
	if parentID.IsZero() {
		return nil, pkgerrors.NewValidationError("parent ID cannot be empty for a child node")
	}
	return newNode(projectID, &parentID, role, content, position)
}

// NewAssistantPlaceholder creates an empty ASSISTANT node flagged as
// streaming. Content arrives later through AppendContent/Finalize; the
// engine never blocks on generation.
func NewAssistantPlaceholder(projectID valueobjects.ProjectID, parentID valueobjects.NodeID, position valueobjects.Position) (*Node, error) {
	node, err := NewChildNode(projectID, parentID, valueobjects.RoleAssistant, valueobjects.MessageContent{}, position)
	if err != nil {
		return nil, err
	}
	node.metadata[MetadataKeyStreaming] = true
	return node, nil
}

// NewFork creates a sibling of the original node carrying the edited
// content. The original is never touched; callers persist the fork as a new
// row.
func NewFork(original *Node, edited valueobjects.MessageContent, position valueobjects.Position, forkIndex int) (*Node, error) {
	if original == nil {
		return nil, pkgerrors.NewValidationError("original node cannot be nil")
	}
	if !original.role.IsUser() {
		return nil, pkgerrors.NewValidationError("only USER nodes are forked; other roles update in place")
	}

	fork, err := newNode(original.projectID, original.parentID, original.role, edited, position)
	if err != nil {
		return nil, err
	}
	fork.metadata["forked_from"] = original.id.String()
	fork.addEvent(events.NewNodeForked(original.id, fork.id, fork.parentID, forkIndex, fork.createdAt))
	return fork, nil
}

func newNode(projectID valueobjects.ProjectID, parentID *valueobjects.NodeID, role valueobjects.Role, content valueobjects.MessageContent, position valueobjects.Position) (*Node, error) {
	if projectID.IsZero() {
		return nil, pkgerrors.NewValidationError("project ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, pkgerrors.NewValidationError("role must be SYSTEM, USER or ASSISTANT")
	}

	now := time.Now()
	node := &Node{
		id:        valueobjects.NewNodeID(),
		projectID: projectID,
		parentID:  parentID,
		role:      role,
		content:   content,
		position:  position,
		metadata:  make(map[string]interface{}),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeCreated(node.id, projectID, parentID, role, parentID == nil, now))

	return node, nil
}

// ReconstructNode reconstructs a node from repository data with preserved
// timestamps. No events are raised.
func ReconstructNode(
	id valueobjects.NodeID,
	projectID valueobjects.ProjectID,
	parentID *valueobjects.NodeID,
	role valueobjects.Role,
	content valueobjects.MessageContent,
	position valueobjects.Position,
	metadata map[string]interface{},
	createdAt, updatedAt time.Time,
) (*Node, error) {
	if id.IsZero() || projectID.IsZero() {
		return nil, pkgerrors.NewValidationError("required fields missing for node reconstruction")
	}
	if !role.IsValid() {
		return nil, pkgerrors.NewValidationError("role must be SYSTEM, USER or ASSISTANT")
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	return &Node{
		id:        id,
		projectID: projectID,
		parentID:  parentID,
		role:      role,
		content:   content,
		position:  position,
		metadata:  metadata,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// ProjectID returns the owning project's ID
func (n *Node) ProjectID() valueobjects.ProjectID {
	return n.projectID
}

// ParentID returns a copy of the parent reference, nil for roots
func (n *Node) ParentID() *valueobjects.NodeID {
	if n.parentID == nil {
		return nil
	}
	parent := *n.parentID
	return &parent
}

// IsRoot reports whether the node has no parent
func (n *Node) IsRoot() bool {
	return n.parentID == nil
}

// Role returns the node's role
func (n *Node) Role() valueobjects.Role {
	return n.role
}

// Content returns the node's content
func (n *Node) Content() valueobjects.MessageContent {
	return n.content
}

// Position returns the node's position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Version returns the node's version for optimistic locking
func (n *Node) Version() int {
	return n.version
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// IsStreaming reports whether an in-flight generation owns this node's content
func (n *Node) IsStreaming() bool {
	v, ok := n.metadata[MetadataKeyStreaming].(bool)
	return ok && v
}

// Metadata returns a copy of the metadata bag
func (n *Node) Metadata() map[string]interface{} {
	m := make(map[string]interface{}, len(n.metadata))
	for k, v := range n.metadata {
		m[k] = v
	}
	return m
}

// SetMetadata stores an opaque metadata value
func (n *Node) SetMetadata(key string, value interface{}) {
	n.metadata[key] = value
	n.updatedAt = time.Now()
}

// AppendContent appends streamed text to an ASSISTANT node. Only the single
// in-flight streaming process calls this; content ownership is exclusive.
func (n *Node) AppendContent(chunk string) error {
	if !n.IsStreaming() {
		return pkgerrors.NewConflictError("node is not accepting streamed content")
	}

	content, err := valueobjects.NewMessageContent(n.content.Body() + chunk)
	if err != nil {
		return err
	}

	n.content = content
	n.updatedAt = time.Now()
	return nil
}

// Finalize writes the final generated text and clears the streaming flag
func (n *Node) Finalize(final valueobjects.MessageContent) error {
	if n.role != valueobjects.RoleAssistant {
		return pkgerrors.NewValidationError("only ASSISTANT nodes are finalized")
	}
	if !n.IsStreaming() {
		return pkgerrors.NewConflictError("node is not streaming")
	}

	n.content = final
	delete(n.metadata, MetadataKeyStreaming)
	n.updatedAt = time.Now()
	n.version++

	n.addEvent(events.NewNodeContentFinalized(n.id, final.TokenEstimate(), n.updatedAt))

	return nil
}

// UpdateContentInPlace mutates content directly. USER nodes are exempt from
// in-place edits by design: their edits go through the fork path instead.
func (n *Node) UpdateContentInPlace(content valueobjects.MessageContent) error {
	if n.role.IsUser() {
		return pkgerrors.NewConflictError("USER node content is immutable; edit by forking a sibling")
	}
	if content.Equals(n.content) {
		return nil // No change needed
	}

	n.content = content
	n.updatedAt = time.Now()
	n.version++
	return nil
}

// MoveTo moves the node to a new canvas position
func (n *Node) MoveTo(position valueobjects.Position) error {
	if position.Equals(n.position) {
		return nil // No movement needed
	}

	oldPosition := n.position
	n.position = position
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodeMoved(n.id, oldPosition, position, n.updatedAt))

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *Node) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *Node) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *Node) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}
