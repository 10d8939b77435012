package queries

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
	"loom-backend/tests/mocks"
)

func TestGetProjectGraphHandler_AssemblesNodesAndEdges(t *testing.T) {
	env := newTestEnv()
	project := env.seedProject(t)
	root, reply, followup := env.seedChain(t, project)

	handler := NewGetProjectGraphHandler(env.nodes, env.projects, env.logger)
	graph, err := handler.Handle(context.Background(), GetProjectGraphQuery{ProjectID: project.ID().String()})
	require.NoError(t, err)

	require.Len(t, graph.Nodes, 3)
	assert.Equal(t, root.ID().String(), graph.Nodes[0].ID)
	assert.Equal(t, reply.ID().String(), graph.Nodes[1].ID)
	assert.Equal(t, followup.ID().String(), graph.Nodes[2].ID)

	require.NotNil(t, graph.RootNodeID)
	assert.Equal(t, root.ID().String(), *graph.RootNodeID)

	require.Len(t, graph.Edges, 2)
	wantFirst := fmt.Sprintf("%s-%s", root.ID().String(), reply.ID().String())
	found := false
	for _, edge := range graph.Edges {
		if edge.ID == wantFirst {
			found = true
			assert.Equal(t, root.ID().String(), edge.SourceID)
			assert.Equal(t, reply.ID().String(), edge.TargetID)
		}
	}
	assert.True(t, found, "root->reply edge missing")

	assert.Equal(t, "ASSISTANT", graph.Nodes[1].Role)
	assert.Equal(t, 2, graph.Nodes[1].Tokens)
	require.NotNil(t, graph.Nodes[1].ParentID)
	assert.Equal(t, root.ID().String(), *graph.Nodes[1].ParentID)
}

func TestGetProjectGraphHandler_EmptyProject(t *testing.T) {
	env := newTestEnv()
	project := env.seedProject(t)

	handler := NewGetProjectGraphHandler(env.nodes, env.projects, env.logger)
	graph, err := handler.Handle(context.Background(), GetProjectGraphQuery{ProjectID: project.ID().String()})

	require.NoError(t, err)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
	assert.Nil(t, graph.RootNodeID)
}

func TestGetProjectGraphHandler_MissingProjectNotFound(t *testing.T) {
	env := newTestEnv()
	handler := NewGetProjectGraphHandler(env.nodes, env.projects, env.logger)

	_, err := handler.Handle(context.Background(), GetProjectGraphQuery{ProjectID: valueobjects.NewProjectID().String()})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetProjectGraphHandler_MalformedIDFailsBeforeStoreAccess(t *testing.T) {
	nodeRepo := &mocks.MockNodeRepository{}
	projectRepo := &mocks.MockProjectRepository{}
	env := newTestEnv()
	handler := NewGetProjectGraphHandler(nodeRepo, projectRepo, env.logger)

	_, err := handler.Handle(context.Background(), GetProjectGraphQuery{ProjectID: "not-a-uuid"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	nodeRepo.AssertExpectations(t)
	projectRepo.AssertExpectations(t)
}
