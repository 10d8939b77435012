// Package mocks provides testify mock implementations of the application
// ports for handler tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"loom-backend/application/ports"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/domain/events"
)

// MockNodeRepository is a mock implementation of ports.NodeRepository
type MockNodeRepository struct {
	mock.Mock
}

func (m *MockNodeRepository) Save(ctx context.Context, node *entities.Node) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockNodeRepository) GetByID(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (*entities.Node, error) {
	args := m.Called(ctx, projectID, nodeID)
	if node := args.Get(0); node != nil {
		return node.(*entities.Node), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNodeRepository) GetByProjectID(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error) {
	args := m.Called(ctx, projectID)
	if nodes := args.Get(0); nodes != nil {
		return nodes.([]*entities.Node), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNodeRepository) Exists(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (bool, error) {
	args := m.Called(ctx, projectID, nodeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNodeRepository) CountChildren(ctx context.Context, projectID valueobjects.ProjectID, parentID valueobjects.NodeID) (int, error) {
	args := m.Called(ctx, projectID, parentID)
	return args.Int(0), args.Error(1)
}

func (m *MockNodeRepository) CreateBatch(ctx context.Context, nodes []*entities.Node) error {
	args := m.Called(ctx, nodes)
	return args.Error(0)
}

func (m *MockNodeRepository) UpdatePositionsBatch(ctx context.Context, projectID valueobjects.ProjectID, positions map[valueobjects.NodeID]valueobjects.Position) error {
	args := m.Called(ctx, projectID, positions)
	return args.Error(0)
}

func (m *MockNodeRepository) DeleteBatch(ctx context.Context, projectID valueobjects.ProjectID, nodeIDs []valueobjects.NodeID) error {
	args := m.Called(ctx, projectID, nodeIDs)
	return args.Error(0)
}

// MockProjectRepository is a mock implementation of ports.ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Save(ctx context.Context, project *entities.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, projectID valueobjects.ProjectID) (*entities.Project, error) {
	args := m.Called(ctx, projectID)
	if project := args.Get(0); project != nil {
		return project.(*entities.Project), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProjectRepository) Exists(ctx context.Context, projectID valueobjects.ProjectID) (bool, error) {
	args := m.Called(ctx, projectID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, projectID valueobjects.ProjectID) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// CapturingEventPublisher records every published event for assertions
type CapturingEventPublisher struct {
	Events []events.DomainEvent
}

func (p *CapturingEventPublisher) Publish(ctx context.Context, toPublish ...events.DomainEvent) error {
	p.Events = append(p.Events, toPublish...)
	return nil
}

// EventTypes returns the published event type strings in order
func (p *CapturingEventPublisher) EventTypes() []string {
	types := make([]string, len(p.Events))
	for i, event := range p.Events {
		types[i] = event.GetEventType()
	}
	return types
}

// CapturingCompletionRequester records completion hand-offs. Done is closed
// after the first request so tests can wait for the fire-and-forget call.
type CapturingCompletionRequester struct {
	Done      chan struct{}
	ProjectID valueobjects.ProjectID
	TargetID  valueobjects.NodeID
	Messages  []ports.CompletionMessage
	Err       error
}

// NewCapturingCompletionRequester creates a requester with an open Done channel
func NewCapturingCompletionRequester() *CapturingCompletionRequester {
	return &CapturingCompletionRequester{Done: make(chan struct{})}
}

func (r *CapturingCompletionRequester) RequestCompletion(ctx context.Context, projectID valueobjects.ProjectID, targetNodeID valueobjects.NodeID, messages []ports.CompletionMessage) error {
	r.ProjectID = projectID
	r.TargetID = targetNodeID
	r.Messages = messages
	close(r.Done)
	return r.Err
}
