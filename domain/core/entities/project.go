package entities

import (
	"strings"
	"time"

	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
	pkgerrors "loom-backend/pkg/errors"
)

// Project groups one forest of conversation trees. Its rootNodeID points at
// the node created by the project's first message; the reference is cleared
// when that node is deleted.
type Project struct {
	id          valueobjects.ProjectID
	name        string
	description string
	rootNodeID  *valueobjects.NodeID
	createdAt   time.Time
	updatedAt   time.Time
	version     int

	events []events.DomainEvent
}

// NewProject creates a new project with no nodes yet
func NewProject(name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("project name cannot be empty")
	}

	now := time.Now()
	project := &Project{
		id:          valueobjects.NewProjectID(),
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
		version:     1,
		events:      []events.DomainEvent{},
	}

	project.addEvent(events.NewProjectCreated(project.id, name, now))

	return project, nil
}

// ReconstructProject recreates a project from stored data
func ReconstructProject(
	id valueobjects.ProjectID,
	name, description string,
	rootNodeID *valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) (*Project, error) {
	if id.IsZero() || name == "" {
		return nil, pkgerrors.NewValidationError("required fields missing for project reconstruction")
	}

	return &Project{
		id:          id,
		name:        name,
		description: description,
		rootNodeID:  rootNodeID,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
		version:     1,
		events:      []events.DomainEvent{},
	}, nil
}

// ID returns the project's unique identifier
func (p *Project) ID() valueobjects.ProjectID {
	return p.id
}

// Name returns the project's name
func (p *Project) Name() string {
	return p.name
}

// Description returns the project's description
func (p *Project) Description() string {
	return p.description
}

// RootNodeID returns a copy of the root reference, nil when the project has
// no root node
func (p *Project) RootNodeID() *valueobjects.NodeID {
	if p.rootNodeID == nil {
		return nil
	}
	root := *p.rootNodeID
	return &root
}

// HasRoot reports whether a root node is recorded
func (p *Project) HasRoot() bool {
	return p.rootNodeID != nil
}

// CreatedAt returns when the project was created
func (p *Project) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the project was last updated
func (p *Project) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetRoot records the project's root node. The root must be parentless and
// is set exactly once per first message.
func (p *Project) SetRoot(node *Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("root node cannot be nil")
	}
	if !node.IsRoot() {
		return pkgerrors.NewValidationError("root node must have no parent")
	}
	if !node.ProjectID().Equals(p.id) {
		return pkgerrors.NewValidationError("root node must belong to this project")
	}
	if p.rootNodeID != nil {
		return pkgerrors.NewConflictError("project already has a root node")
	}

	rootID := node.ID()
	p.rootNodeID = &rootID
	p.updatedAt = time.Now()
	p.version++
	return nil
}

// ClearRoot removes the root reference after the root node is deleted
func (p *Project) ClearRoot() {
	if p.rootNodeID == nil {
		return
	}

	oldRoot := *p.rootNodeID
	p.rootNodeID = nil
	p.updatedAt = time.Now()
	p.version++

	p.addEvent(events.NewProjectRootCleared(p.id, oldRoot, p.updatedAt))
}

// Rename updates the project's name
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("project name cannot be empty")
	}
	if name == p.name {
		return nil
	}

	p.name = name
	p.updatedAt = time.Now()
	p.version++
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Project) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Project) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *Project) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}
