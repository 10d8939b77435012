package services

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
)

func newLayoutEngine() *LayoutEngine {
	return NewLayoutEngine(testConfig(), zap.NewNop())
}

func TestComputeLayout_EmptyTree(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	tree := newTree(t, projectID, nil)

	positions, err := newLayoutEngine().ComputeLayout(tree)

	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestComputeLayout_SingleNodeCenteredAtHalfWidth(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "hello", 0)
	tree := newTree(t, projectID, []*entities.Node{root})

	positions, err := newLayoutEngine().ComputeLayout(tree)

	require.NoError(t, err)
	require.Len(t, positions, 1)

	// x is the node center, so a lone node sits at half a node width.
	assert.InDelta(t, testConfig().NodeWidth/2, positions[root.ID()].X(), 1e-9)
	assert.InDelta(t, 0, positions[root.ID()].Y(), 1e-9)
}

func TestComputeLayout_ParentCenteredOverChildren(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "q", 0)
	rootID := root.ID()
	left := newTreeNode(t, projectID, &rootID, valueobjects.RoleAssistant, "a", 1)
	right := newTreeNode(t, projectID, &rootID, valueobjects.RoleAssistant, "b", 2)
	tree := newTree(t, projectID, []*entities.Node{root, left, right})

	positions, err := newLayoutEngine().ComputeLayout(tree)
	require.NoError(t, err)

	// Children row spans 350+50+350 = 750; the root's center sits at the
	// middle of that row and the children at their slot midpoints.
	assert.InDelta(t, 375, positions[rootID].X(), 1e-9)
	assert.InDelta(t, 0, positions[rootID].Y(), 1e-9)
	assert.InDelta(t, 175, positions[left.ID()].X(), 1e-9)
	assert.InDelta(t, 150, positions[left.ID()].Y(), 1e-9)
	assert.InDelta(t, 575, positions[right.ID()].X(), 1e-9)
	assert.InDelta(t, 150, positions[right.ID()].Y(), 1e-9)
}

func TestComputeLayout_ForestSeparatedByTreeGap(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	first := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "one", 0)
	second := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "two", 1)
	tree := newTree(t, projectID, []*entities.Node{first, second})

	positions, err := newLayoutEngine().ComputeLayout(tree)
	require.NoError(t, err)

	// First tree occupies [0, 350); the second starts a tree gap later.
	assert.InDelta(t, 175, positions[first.ID()].X(), 1e-9)
	assert.InDelta(t, 925, positions[second.ID()].X(), 1e-9)
	assert.InDelta(t, 0, positions[second.ID()].Y(), 1e-9)
}

func TestComputeLayout_DanglingParentBecomesOwnRoot(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	ghost := valueobjects.NewNodeID()
	orphan := newTreeNode(t, projectID, &ghost, valueobjects.RoleUser, "stray", 0)
	tree := newTree(t, projectID, []*entities.Node{orphan})

	positions, err := newLayoutEngine().ComputeLayout(tree)

	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.InDelta(t, 0, positions[orphan.ID()].Y(), 1e-9)
}

func TestComputeLayout_SiblingsNeverOverlap(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "root", 0)
	rootID := root.ID()

	nodes := []*entities.Node{root}
	for i := 1; i <= 6; i++ {
		nodes = append(nodes, newTreeNode(t, projectID, &rootID, valueobjects.RoleAssistant, "branch", i))
	}
	tree := newTree(t, projectID, nodes)

	positions, err := newLayoutEngine().ComputeLayout(tree)
	require.NoError(t, err)

	cfg := testConfig()
	xs := []float64{}
	for _, node := range nodes[1:] {
		xs = append(xs, positions[node.ID()].X())
	}
	for i := 1; i < len(xs); i++ {
		assert.GreaterOrEqual(t, xs[i], xs[i-1]+cfg.NodeWidth+cfg.SiblingGap)
	}
}

// TestComputeLayout_CollisionSweepIsNoopOnWellFormedForests feeds several
// well-formed forest shapes through the engine and asserts the third pass
// never relocates a node: passes 1-2 alone must already separate everything.
// The engine warns whenever the sweep shifts a subtree, so an observed
// logger catches any relocation.
func TestComputeLayout_CollisionSweepIsNoopOnWellFormedForests(t *testing.T) {
	buildChainOfFive := func(t *testing.T, projectID valueobjects.ProjectID) []*entities.Node {
		nodes := []*entities.Node{newTreeNode(t, projectID, nil, valueobjects.RoleUser, "head", 0)}
		for i := 1; i < 5; i++ {
			parentID := nodes[i-1].ID()
			nodes = append(nodes, newTreeNode(t, projectID, &parentID, valueobjects.RoleAssistant, "link", i))
		}
		return nodes
	}
	buildWideTwoLevel := func(t *testing.T, projectID valueobjects.ProjectID) []*entities.Node {
		root := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "root", 0)
		rootID := root.ID()
		nodes := []*entities.Node{root}
		seq := 1
		for i := 0; i < 5; i++ {
			child := newTreeNode(t, projectID, &rootID, valueobjects.RoleAssistant, "child", seq)
			childID := child.ID()
			nodes = append(nodes, child)
			seq++
			for j := 0; j < 2; j++ {
				nodes = append(nodes, newTreeNode(t, projectID, &childID, valueobjects.RoleUser, "leaf", seq))
				seq++
			}
		}
		return nodes
	}
	buildUnbalancedForest := func(t *testing.T, projectID valueobjects.ProjectID) []*entities.Node {
		nodes := buildChainOfFive(t, projectID)
		second := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "second", 10)
		secondID := second.ID()
		nodes = append(nodes, second)
		for i := 0; i < 4; i++ {
			nodes = append(nodes, newTreeNode(t, projectID, &secondID, valueobjects.RoleAssistant, "branch", 11+i))
		}
		return nodes
	}

	forests := []func(*testing.T, valueobjects.ProjectID) []*entities.Node{
		buildChainOfFive,
		buildWideTwoLevel,
		buildUnbalancedForest,
	}

	cfg := testConfig()
	for _, build := range forests {
		core, logs := observer.New(zap.WarnLevel)
		engine := NewLayoutEngine(cfg, zap.New(core))

		projectID := valueobjects.NewProjectID()
		nodes := build(t, projectID)
		tree := newTree(t, projectID, nodes)

		positions, err := engine.ComputeLayout(tree)
		require.NoError(t, err)
		require.Len(t, positions, len(nodes))

		assert.Zero(t, logs.Len(), "collision sweep relocated nodes on a well-formed forest")

		// Same-depth neighbors stay at least a node width and gap apart.
		byDepth := map[float64][]float64{}
		for _, pos := range positions {
			byDepth[pos.Y()] = append(byDepth[pos.Y()], pos.X())
		}
		for _, xs := range byDepth {
			sort.Float64s(xs)
			for i := 1; i < len(xs); i++ {
				assert.GreaterOrEqual(t, xs[i]-xs[i-1], cfg.NodeWidth+cfg.SiblingGap)
			}
		}
	}
}

func TestComputeLayout_Deterministic(t *testing.T) {
	projectID := valueobjects.NewProjectID()
	root := newTreeNode(t, projectID, nil, valueobjects.RoleUser, "root", 0)
	rootID := root.ID()
	reply := newTreeNode(t, projectID, &rootID, valueobjects.RoleAssistant, "reply", 1)
	replyID := reply.ID()
	followUp := newTreeNode(t, projectID, &replyID, valueobjects.RoleUser, "more", 2)
	fork := newTreeNode(t, projectID, &replyID, valueobjects.RoleUser, "other", 3)
	tree := newTree(t, projectID, []*entities.Node{root, reply, followUp, fork})

	engine := newLayoutEngine()
	first, err := engine.ComputeLayout(tree)
	require.NoError(t, err)
	second, err := engine.ComputeLayout(tree)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for id, pos := range first {
		assert.True(t, pos.Equals(second[id]))
	}
}
