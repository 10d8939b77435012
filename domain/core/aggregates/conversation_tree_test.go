package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makeNode(t *testing.T, projectID valueobjects.ProjectID, parentID *valueobjects.NodeID, role valueobjects.Role, seq int) *entities.Node {
	t.Helper()

	content, err := valueobjects.NewMessageContent("message")
	require.NoError(t, err)
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	created := baseTime.Add(time.Duration(seq) * time.Second)
	node, err := entities.ReconstructNode(
		valueobjects.NewNodeID(), projectID, parentID, role, content, position,
		nil, created, created,
	)
	require.NoError(t, err)
	return node
}

// buildChain creates root -> child -> grandchild in one project.
func buildChain(t *testing.T) (valueobjects.ProjectID, []*entities.Node) {
	t.Helper()

	projectID := valueobjects.NewProjectID()
	root := makeNode(t, projectID, nil, valueobjects.RoleUser, 0)
	rootID := root.ID()
	child := makeNode(t, projectID, &rootID, valueobjects.RoleAssistant, 1)
	childID := child.ID()
	grandchild := makeNode(t, projectID, &childID, valueobjects.RoleUser, 2)

	return projectID, []*entities.Node{root, child, grandchild}
}

func TestNewConversationTree_RejectsForeignNodes(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	otherProject := valueobjects.NewProjectID()
	stray := makeNode(t, otherProject, nil, valueobjects.RoleUser, 0)

	_, err := NewConversationTree(projectID, []*entities.Node{stray}, nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvariant(err))
}

func TestNewConversationTree_RejectsDuplicateIDs(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	node := makeNode(t, projectID, nil, valueobjects.RoleUser, 0)

	_, err := NewConversationTree(projectID, []*entities.Node{node, node}, nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvariant(err))
}

func TestEdges_DerivedFromParentReferences(t *testing.T) {
	projectID, nodes := buildChain(t)
	rootID := nodes[0].ID()

	tree, err := NewConversationTree(projectID, nodes, &rootID)
	require.NoError(t, err)

	edges := tree.Edges()
	require.Len(t, edges, 2)

	assert.Equal(t, EdgeID(nodes[0].ID(), nodes[1].ID()), edges[0].ID)
	assert.Equal(t, nodes[0].ID(), edges[0].SourceID)
	assert.Equal(t, nodes[1].ID(), edges[0].TargetID)
	assert.Equal(t, EdgeID(nodes[1].ID(), nodes[2].ID()), edges[1].ID)
}

func TestEdges_SkipsParentOutsideSnapshot(t *testing.T) {
	projectID, nodes := buildChain(t)

	// Subgraph view rooted at the middle node: the edge up to the cut-off
	// ancestor must not appear.
	tree, err := NewConversationTree(projectID, nodes[1:], nil)
	require.NoError(t, err)

	edges := tree.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, nodes[1].ID(), edges[0].SourceID)
	assert.Equal(t, nodes[2].ID(), edges[0].TargetID)
}

func TestPathToRoot_ReturnsRootFirstChain(t *testing.T) {
	projectID, nodes := buildChain(t)

	tree, err := NewConversationTree(projectID, nodes, nil)
	require.NoError(t, err)

	chain, err := tree.PathToRoot(nodes[2].ID())
	require.NoError(t, err)

	require.Len(t, chain, 3)
	assert.Equal(t, nodes[0].ID(), chain[0])
	assert.Equal(t, nodes[1].ID(), chain[1])
	assert.Equal(t, nodes[2].ID(), chain[2])
}

func TestPathToRoot_UnknownNode(t *testing.T) {
	projectID, nodes := buildChain(t)

	tree, err := NewConversationTree(projectID, nodes, nil)
	require.NoError(t, err)

	_, err = tree.PathToRoot(valueobjects.NewNodeID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestPathToRoot_BrokenChainIsInvariantViolation(t *testing.T) {
	projectID, nodes := buildChain(t)

	// Drop the middle node so the grandchild's parent reference dangles.
	tree, err := NewConversationTree(projectID, []*entities.Node{nodes[0], nodes[2]}, nil)
	require.NoError(t, err)

	_, err = tree.PathToRoot(nodes[2].ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvariant(err))
	assert.Contains(t, err.Error(), "missing parent")
}

func TestSubtree_DepthThenCreationOrder(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := makeNode(t, projectID, nil, valueobjects.RoleUser, 0)
	rootID := root.ID()

	// Two sibling branches under the root, each with its own child.
	left := makeNode(t, projectID, &rootID, valueobjects.RoleAssistant, 1)
	right := makeNode(t, projectID, &rootID, valueobjects.RoleAssistant, 2)
	leftID := left.ID()
	rightID := right.ID()
	leftChild := makeNode(t, projectID, &leftID, valueobjects.RoleUser, 3)
	rightChild := makeNode(t, projectID, &rightID, valueobjects.RoleUser, 4)

	tree, err := NewConversationTree(projectID, []*entities.Node{root, left, right, leftChild, rightChild}, &rootID)
	require.NoError(t, err)

	subtree, err := tree.Subtree(rootID)
	require.NoError(t, err)

	require.Len(t, subtree, 5)
	assert.Equal(t, rootID, subtree[0].ID())
	assert.Equal(t, leftID, subtree[1].ID())
	assert.Equal(t, rightID, subtree[2].ID())
	assert.Equal(t, leftChild.ID(), subtree[3].ID())
	assert.Equal(t, rightChild.ID(), subtree[4].ID())
}

func TestSubtree_LeafIsItsOwnSubtree(t *testing.T) {
	projectID, nodes := buildChain(t)

	tree, err := NewConversationTree(projectID, nodes, nil)
	require.NoError(t, err)

	subtree, err := tree.Subtree(nodes[2].ID())
	require.NoError(t, err)

	require.Len(t, subtree, 1)
	assert.Equal(t, nodes[2].ID(), subtree[0].ID())
}

func TestStats(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := makeNode(t, projectID, nil, valueobjects.RoleUser, 0)
	rootID := root.ID()
	reply := makeNode(t, projectID, &rootID, valueobjects.RoleAssistant, 1)
	replyID := reply.ID()
	followUp := makeNode(t, projectID, &replyID, valueobjects.RoleUser, 2)
	fork := makeNode(t, projectID, &rootID, valueobjects.RoleAssistant, 3)

	tree, err := NewConversationTree(projectID, []*entities.Node{root, reply, followUp, fork}, &rootID)
	require.NoError(t, err)

	stats, err := tree.Stats()
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalNodes)
	assert.Equal(t, 2, stats.NodesByRole[valueobjects.RoleUser])
	assert.Equal(t, 2, stats.NodesByRole[valueobjects.RoleAssistant])
	assert.Equal(t, 2, stats.MaxDepth)
	assert.Equal(t, 2, stats.LeafCount)
}

func TestStats_EmptyTree(t *testing.T) {
	projectID := valueobjects.NewProjectID()

	tree, err := NewConversationTree(projectID, nil, nil)
	require.NoError(t, err)

	stats, err := tree.Stats()
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalNodes)
	assert.Equal(t, 0, stats.MaxDepth)
	assert.Equal(t, 0, stats.LeafCount)
}

func TestValidate_ForestWithMultipleRoots(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	first := makeNode(t, projectID, nil, valueobjects.RoleUser, 0)
	second := makeNode(t, projectID, nil, valueobjects.RoleUser, 1)
	firstID := first.ID()
	child := makeNode(t, projectID, &firstID, valueobjects.RoleAssistant, 2)

	tree, err := NewConversationTree(projectID, []*entities.Node{first, second, child}, &firstID)
	require.NoError(t, err)

	assert.NoError(t, tree.Validate())
}

func TestValidate_DanglingParent(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	ghost := valueobjects.NewNodeID()
	orphan := makeNode(t, projectID, &ghost, valueobjects.RoleUser, 0)

	tree, err := NewConversationTree(projectID, []*entities.Node{orphan}, nil)
	require.NoError(t, err)

	err = tree.Validate()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvariant(err))
}
