package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loom-backend/domain/config"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTreeNode(t *testing.T, projectID valueobjects.ProjectID, parentID *valueobjects.NodeID, role valueobjects.Role, body string, seq int) *entities.Node {
	t.Helper()

	content, err := valueobjects.NewMessageContent(body)
	require.NoError(t, err)
	position, err := valueobjects.NewPosition(0, 0)
	require.NoError(t, err)

	created := testBase.Add(time.Duration(seq) * time.Second)
	node, err := entities.ReconstructNode(
		valueobjects.NewNodeID(), projectID, parentID, role, content, position,
		nil, created, created,
	)
	require.NoError(t, err)
	return node
}

func newTree(t *testing.T, projectID valueobjects.ProjectID, nodes []*entities.Node) *aggregates.ConversationTree {
	t.Helper()

	var rootID *valueobjects.NodeID
	for _, node := range nodes {
		if node.IsRoot() {
			id := node.ID()
			rootID = &id
			break
		}
	}

	tree, err := aggregates.NewConversationTree(projectID, nodes, rootID)
	require.NoError(t, err)
	return tree
}

func testConfig() *config.DomainConfig {
	return config.DefaultDomainConfig()
}
