package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

func mustNode(t *testing.T, projectID valueobjects.ProjectID, parentID *valueobjects.NodeID, role valueobjects.Role, body string) *entities.Node {
	t.Helper()

	content, err := valueobjects.NewMessageContent(body)
	require.NoError(t, err)
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	var node *entities.Node
	if parentID == nil {
		node, err = entities.NewRootNode(projectID, role, content, position)
	} else {
		node, err = entities.NewChildNode(projectID, *parentID, role, content, position)
	}
	require.NoError(t, err)
	node.MarkEventsAsCommitted()
	return node
}

func TestNodeStore_SaveAndGet(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	node := mustNode(t, projectID, nil, valueobjects.RoleUser, "hello")

	require.NoError(t, store.Save(context.Background(), node))

	loaded, err := store.GetByID(context.Background(), projectID, node.ID())
	require.NoError(t, err)
	assert.True(t, loaded.ID().Equals(node.ID()))
	assert.Equal(t, "hello", loaded.Content().Body())
}

func TestNodeStore_GetByID_NotFound(t *testing.T) {
	store := NewNodeStore(zap.NewNop())

	_, err := store.GetByID(context.Background(), valueobjects.NewProjectID(), valueobjects.NewNodeID())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestNodeStore_ReadsAreIsolatedCopies(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	node := mustNode(t, projectID, nil, valueobjects.RoleUser, "original")
	require.NoError(t, store.Save(context.Background(), node))

	loaded, err := store.GetByID(context.Background(), projectID, node.ID())
	require.NoError(t, err)

	moved, err := valueobjects.NewPosition(99, 99)
	require.NoError(t, err)
	require.NoError(t, loaded.MoveTo(moved))

	reloaded, err := store.GetByID(context.Background(), projectID, node.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0, reloaded.Position().X(), 1e-9)
}

func TestNodeStore_GetByProjectID_OldestFirst(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()

	first := mustNode(t, projectID, nil, valueobjects.RoleUser, "one")
	firstID := first.ID()
	second := mustNode(t, projectID, &firstID, valueobjects.RoleAssistant, "two")
	third := mustNode(t, projectID, &firstID, valueobjects.RoleAssistant, "three")

	// Save out of order; reads still come back by creation time.
	require.NoError(t, store.Save(context.Background(), third))
	require.NoError(t, store.Save(context.Background(), first))
	require.NoError(t, store.Save(context.Background(), second))

	nodes, err := store.GetByProjectID(context.Background(), projectID)
	require.NoError(t, err)

	require.Len(t, nodes, 3)
	assert.True(t, nodes[0].ID().Equals(first.ID()))
	for i := 1; i < len(nodes); i++ {
		assert.False(t, nodes[i].CreatedAt().Before(nodes[i-1].CreatedAt()))
	}
}

func TestNodeStore_CountChildren(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	parent := mustNode(t, projectID, nil, valueobjects.RoleUser, "parent")
	parentID := parent.ID()

	require.NoError(t, store.Save(context.Background(), parent))
	require.NoError(t, store.Save(context.Background(), mustNode(t, projectID, &parentID, valueobjects.RoleAssistant, "a")))
	require.NoError(t, store.Save(context.Background(), mustNode(t, projectID, &parentID, valueobjects.RoleAssistant, "b")))

	count, err := store.CountChildren(context.Background(), projectID, parentID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNodeStore_CreateBatch_AllOrNothing(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()

	existing := mustNode(t, projectID, nil, valueobjects.RoleUser, "existing")
	require.NoError(t, store.Save(context.Background(), existing))

	fresh := mustNode(t, projectID, nil, valueobjects.RoleUser, "fresh")
	err := store.CreateBatch(context.Background(), []*entities.Node{fresh, existing})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))

	// The valid element of the failed batch must not have landed.
	exists, err := store.Exists(context.Background(), projectID, fresh.ID())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNodeStore_UpdatePositionsBatch_AllOrNothing(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	node := mustNode(t, projectID, nil, valueobjects.RoleUser, "anchored")
	require.NoError(t, store.Save(context.Background(), node))

	moved, err := valueobjects.NewPosition(500, 500)
	require.NoError(t, err)

	err = store.UpdatePositionsBatch(context.Background(), projectID, map[valueobjects.NodeID]valueobjects.Position{
		node.ID():               moved,
		valueobjects.NewNodeID(): moved,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	// The known node must not have moved.
	loaded, err := store.GetByID(context.Background(), projectID, node.ID())
	require.NoError(t, err)
	assert.InDelta(t, 0, loaded.Position().X(), 1e-9)
}

func TestNodeStore_DeleteBatch(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	root := mustNode(t, projectID, nil, valueobjects.RoleUser, "root")
	rootID := root.ID()
	child := mustNode(t, projectID, &rootID, valueobjects.RoleAssistant, "child")

	require.NoError(t, store.Save(context.Background(), root))
	require.NoError(t, store.Save(context.Background(), child))

	require.NoError(t, store.DeleteBatch(context.Background(), projectID, []valueobjects.NodeID{rootID, child.ID()}))

	nodes, err := store.GetByProjectID(context.Background(), projectID)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestNodeStore_DeleteBatch_UnknownIDFailsWholeBatch(t *testing.T) {
	store := NewNodeStore(zap.NewNop())
	projectID := valueobjects.NewProjectID()
	node := mustNode(t, projectID, nil, valueobjects.RoleUser, "survivor")
	require.NoError(t, store.Save(context.Background(), node))

	err := store.DeleteBatch(context.Background(), projectID, []valueobjects.NodeID{node.ID(), valueobjects.NewNodeID()})
	require.Error(t, err)

	exists, err := store.Exists(context.Background(), projectID, node.ID())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProjectStore_RoundTrip(t *testing.T) {
	store := NewProjectStore(zap.NewNop())

	project, err := entities.NewProject("research", "branching chats")
	require.NoError(t, err)
	project.MarkEventsAsCommitted()

	require.NoError(t, store.Save(context.Background(), project))

	loaded, err := store.GetByID(context.Background(), project.ID())
	require.NoError(t, err)
	assert.Equal(t, "research", loaded.Name())
	assert.False(t, loaded.HasRoot())

	exists, err := store.Exists(context.Background(), project.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(context.Background(), project.ID()))
	_, err = store.GetByID(context.Background(), project.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}
