package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loom-backend/domain/config"
	"loom-backend/domain/core/entities"
	"loom-backend/infrastructure/persistence/memory"
	"loom-backend/tests/mocks"
)

type testEnv struct {
	nodes    *memory.NodeStore
	projects *memory.ProjectStore
	events   *mocks.CapturingEventPublisher
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		nodes:    memory.NewNodeStore(zap.NewNop()),
		projects: memory.NewProjectStore(zap.NewNop()),
		events:   &mocks.CapturingEventPublisher{},
		cfg:      config.DefaultDomainConfig(),
		logger:   zap.NewNop(),
	}
}

func (e *testEnv) seedProject(t *testing.T) *entities.Project {
	t.Helper()

	project, err := entities.NewProject("test project", "")
	require.NoError(t, err)
	project.MarkEventsAsCommitted()
	require.NoError(t, e.projects.Save(context.Background(), project))
	return project
}

func (e *testEnv) saveNode(t *testing.T, node *entities.Node) {
	t.Helper()
	node.MarkEventsAsCommitted()
	require.NoError(t, e.nodes.Save(context.Background(), node))
}
