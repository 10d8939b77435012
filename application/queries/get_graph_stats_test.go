package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
	"loom-backend/tests/fixtures"
)

func TestGetGraphStatsHandler_SummarizesForest(t *testing.T) {
	env := newTestEnv()
	project := env.seedProject(t)
	root, _, _ := env.seedChain(t, project)

	sibling := fixtures.NewNodeBuilder(project.ID()).
		WithParent(root.ID()).
		WithRole(valueobjects.RoleAssistant).
		WithContent("second branch").
		WithCreatedAt(time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)).
		Build()
	env.saveNode(t, sibling)

	handler := NewGetGraphStatsHandler(env.nodes, env.projects, env.logger)
	stats, err := handler.Handle(context.Background(), GetGraphStatsQuery{ProjectID: project.ID().String()})
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalNodes)
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, 2, stats.LeafCount)
	assert.Equal(t, 2, stats.NodesByRole["USER"])
	assert.Equal(t, 2, stats.NodesByRole["ASSISTANT"])
}

func TestGetGraphStatsHandler_EmptyProject(t *testing.T) {
	env := newTestEnv()
	project := env.seedProject(t)

	handler := NewGetGraphStatsHandler(env.nodes, env.projects, env.logger)
	stats, err := handler.Handle(context.Background(), GetGraphStatsQuery{ProjectID: project.ID().String()})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalNodes)
	assert.Equal(t, 0, stats.MaxDepth)
	assert.Equal(t, 0, stats.LeafCount)
	assert.Empty(t, stats.NodesByRole)
}

func TestGetGraphStatsHandler_MissingProjectNotFound(t *testing.T) {
	env := newTestEnv()
	handler := NewGetGraphStatsHandler(env.nodes, env.projects, env.logger)

	_, err := handler.Handle(context.Background(), GetGraphStatsQuery{ProjectID: valueobjects.NewProjectID().String()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}
