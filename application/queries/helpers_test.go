package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loom-backend/domain/config"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	"loom-backend/infrastructure/persistence/memory"
	"loom-backend/tests/fixtures"
)

type testEnv struct {
	nodes    *memory.NodeStore
	projects *memory.ProjectStore
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	return &testEnv{
		nodes:    memory.NewNodeStore(zap.NewNop()),
		projects: memory.NewProjectStore(zap.NewNop()),
		cfg:      config.DefaultDomainConfig(),
		logger:   zap.NewNop(),
	}
}

func (e *testEnv) seedProject(t *testing.T) *entities.Project {
	t.Helper()

	project, err := entities.NewProject("query fixtures", "")
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

// seedChain stores root(USER) -> reply(ASSISTANT) -> followup(USER) and
// records the root on the project. Bodies are 8 runes, two tokens each.
func (e *testEnv) seedChain(t *testing.T, project *entities.Project) (root, reply, followup *entities.Node) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	root = fixtures.NewNodeBuilder(project.ID()).
		WithContent("rootmsgs").
		WithPosition(0, 0).
		WithCreatedAt(base).
		Build()
	reply = fixtures.NewNodeBuilder(project.ID()).
		WithParent(root.ID()).
		WithRole(valueobjects.RoleAssistant).
		WithContent("replymsg").
		WithPosition(0, 150).
		WithCreatedAt(base.Add(time.Second)).
		Build()
	followup = fixtures.NewNodeBuilder(project.ID()).
		WithParent(reply.ID()).
		WithContent("followup").
		WithPosition(0, 300).
		WithCreatedAt(base.Add(2 * time.Second)).
		Build()

	e.saveNode(t, root)
	e.saveNode(t, reply)
	e.saveNode(t, followup)

	reloaded, err := e.projects.GetByID(context.Background(), project.ID())
	require.NoError(t, err)
	require.NoError(t, reloaded.SetRoot(root))
	reloaded.MarkEventsAsCommitted()
	require.NoError(t, e.projects.Save(context.Background(), reloaded))
	return root, reply, followup
}
