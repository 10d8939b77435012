package aggregates

import (
	"fmt"
	"sort"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

// Edge is a derived parent→child connection. Edges are never persisted; they
// are recomputed from parentId on every read so the topology has a single
// source of truth.
type Edge struct {
	ID       string              `json:"id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
}

// EdgeID builds the canonical derived edge identifier
func EdgeID(parentID, childID valueobjects.NodeID) string {
	return fmt.Sprintf("%s-%s", parentID.String(), childID.String())
}

// ConversationTree assembles a flat node set into a navigable forest: nodes
// in creation order, a child index, derived edges, and ancestor walks. It is
// an immutable in-memory snapshot; reads never coordinate with writers.
type ConversationTree struct {
	projectID  valueobjects.ProjectID
	nodes      map[valueobjects.NodeID]*entities.Node
	order      []valueobjects.NodeID
	children   map[valueobjects.NodeID][]valueobjects.NodeID
	rootNodeID *valueobjects.NodeID
}

// NewConversationTree builds a tree snapshot from nodes ordered oldest-first
// by creation time, as the store contract returns them. rootNodeID is the
// project's recorded root, nil when the project is empty.
func NewConversationTree(projectID valueobjects.ProjectID, nodes []*entities.Node, rootNodeID *valueobjects.NodeID) (*ConversationTree, error) {
	if projectID.IsZero() {
		return nil, pkgerrors.NewValidationError("project ID cannot be empty")
	}

	tree := &ConversationTree{
		projectID:  projectID,
		nodes:      make(map[valueobjects.NodeID]*entities.Node, len(nodes)),
		order:      make([]valueobjects.NodeID, 0, len(nodes)),
		children:   make(map[valueobjects.NodeID][]valueobjects.NodeID),
		rootNodeID: rootNodeID,
	}

	for _, node := range nodes {
		if node == nil {
			return nil, pkgerrors.NewValidationError("node cannot be nil")
		}
		if !node.ProjectID().Equals(projectID) {
			return nil, pkgerrors.NewInvariantError("node belongs to a different project")
		}
		id := node.ID()
		if _, exists := tree.nodes[id]; exists {
			return nil, pkgerrors.NewInvariantError("duplicate node id in tree snapshot")
		}
		tree.nodes[id] = node
		tree.order = append(tree.order, id)
	}

	// Child index in creation order; the input ordering is preserved.
	for _, id := range tree.order {
		if parentID := tree.nodes[id].ParentID(); parentID != nil {
			tree.children[*parentID] = append(tree.children[*parentID], id)
		}
	}

	return tree, nil
}

// ProjectID returns the owning project's ID
func (t *ConversationTree) ProjectID() valueobjects.ProjectID {
	return t.projectID
}

// RootNodeID returns a copy of the recorded root reference, nil when unset
func (t *ConversationTree) RootNodeID() *valueobjects.NodeID {
	if t.rootNodeID == nil {
		return nil
	}
	root := *t.rootNodeID
	return &root
}

// Size returns the number of nodes in the snapshot
func (t *ConversationTree) Size() int {
	return len(t.order)
}

// HasNode checks membership without error
func (t *ConversationTree) HasNode(id valueobjects.NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// GetNode retrieves a node by ID
func (t *ConversationTree) GetNode(id valueobjects.NodeID) (*entities.Node, error) {
	node, ok := t.nodes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

// Nodes returns all nodes oldest-first by creation time
func (t *ConversationTree) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(t.order))
	for _, id := range t.order {
		nodes = append(nodes, t.nodes[id])
	}
	return nodes
}

// Children returns a node's direct children in creation order
func (t *ConversationTree) Children(id valueobjects.NodeID) []valueobjects.NodeID {
	kids := t.children[id]
	out := make([]valueobjects.NodeID, len(kids))
	copy(out, kids)
	return out
}

// Edges derives the parent→child edge list from parentId alone. An edge is
// emitted only when both endpoints are inside the snapshot, so subgraph
// views do not dangle an edge to the cut-off ancestor.
func (t *ConversationTree) Edges() []Edge {
	edges := make([]Edge, 0, len(t.order))
	for _, id := range t.order {
		parentID := t.nodes[id].ParentID()
		if parentID == nil {
			continue
		}
		if _, ok := t.nodes[*parentID]; !ok {
			continue
		}
		edges = append(edges, Edge{
			ID:       EdgeID(*parentID, id),
			SourceID: *parentID,
			TargetID: id,
		})
	}
	return edges
}

// PathToRoot walks ancestors from the given node up to its tree's true root
// and returns the chain in root-first order. A parent reference that leaves
// the snapshot, or a cycle, is an invariant violation: cascade delete makes
// both structurally impossible, so they must never be silently absorbed.
func (t *ConversationTree) PathToRoot(id valueobjects.NodeID) ([]valueobjects.NodeID, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	visited := make(map[valueobjects.NodeID]bool)
	chain := make([]valueobjects.NodeID, 0, 8)

	current := id
	for {
		if visited[current] {
			return nil, pkgerrors.NewInvariantError("cycle detected in ancestor chain")
		}
		visited[current] = true
		chain = append(chain, current)

		parentID := t.nodes[current].ParentID()
		if parentID == nil {
			break
		}
		if _, ok := t.nodes[*parentID]; !ok {
			return nil, pkgerrors.NewInvariantError(
				fmt.Sprintf("ancestor chain broken: node %s references missing parent %s", current.String(), parentID.String()))
		}
		current = *parentID
	}

	// Reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Subtree returns the given node and all of its descendants ordered by depth
// ascending, then creation time within a depth.
func (t *ConversationTree) Subtree(id valueobjects.NodeID) ([]*entities.Node, error) {
	if _, ok := t.nodes[id]; !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}

	type entry struct {
		id    valueobjects.NodeID
		depth int
		seq   int
	}

	seq := make(map[valueobjects.NodeID]int, len(t.order))
	for i, nodeID := range t.order {
		seq[nodeID] = i
	}

	entries := []entry{}
	queue := []entry{{id: id, depth: 0, seq: seq[id]}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		entries = append(entries, current)

		for _, childID := range t.children[current.id] {
			queue = append(queue, entry{id: childID, depth: current.depth + 1, seq: seq[childID]})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].depth != entries[j].depth {
			return entries[i].depth < entries[j].depth
		}
		return entries[i].seq < entries[j].seq
	})

	nodes := make([]*entities.Node, len(entries))
	for i, e := range entries {
		nodes[i] = t.nodes[e.id]
	}
	return nodes, nil
}

// TreeStats summarizes the shape of a project's forest
type TreeStats struct {
	TotalNodes  int                       `json:"total_nodes"`
	NodesByRole map[valueobjects.Role]int `json:"nodes_by_role"`
	MaxDepth    int                       `json:"max_depth"`
	LeafCount   int                       `json:"leaf_count"`
}

// Stats computes node totals, per-role counts, the longest root-to-leaf
// chain (in edges; a lone root is depth 0) and the leaf count.
func (t *ConversationTree) Stats() (TreeStats, error) {
	stats := TreeStats{
		TotalNodes:  len(t.order),
		NodesByRole: make(map[valueobjects.Role]int),
	}

	for _, id := range t.order {
		node := t.nodes[id]
		stats.NodesByRole[node.Role()]++
		if len(t.children[id]) == 0 {
			stats.LeafCount++
		}
	}

	for _, id := range t.order {
		if len(t.children[id]) > 0 {
			continue
		}
		chain, err := t.PathToRoot(id)
		if err != nil {
			return TreeStats{}, err
		}
		if depth := len(chain) - 1; depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
	}

	return stats, nil
}

// Validate ensures the snapshot is a forest: every parent reference resolves
// inside the snapshot and no ancestor chain loops back on itself.
func (t *ConversationTree) Validate() error {
	for _, id := range t.order {
		if _, err := t.PathToRoot(id); err != nil {
			return err
		}
	}
	return nil
}
