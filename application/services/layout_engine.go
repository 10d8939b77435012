// Package services holds pure domain computations used by command and query
// handlers: tree layout, fork placement, path highlighting and AI context
// assembly. Nothing in this package touches persistence.
package services

import (
	"go.uber.org/zap"

	"loom-backend/domain/config"
	"loom-backend/domain/core/aggregates"
	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
)

// LayoutEngine computes tidy-tree canvas positions for a project's forest
// using a three pass Reingold-Tilford walk: subtree widths bottom-up,
// placement top-down, then a per-level collision sweep. The result depends
// only on the topology and creation order, so repeated runs over the same
// tree are identical.
type LayoutEngine struct {
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewLayoutEngine creates a layout engine with the given geometry
func NewLayoutEngine(cfg *config.DomainConfig, logger *zap.Logger) *LayoutEngine {
	return &LayoutEngine{cfg: cfg, logger: logger}
}

// ComputeLayout positions every node of the tree. A node whose parent is
// missing from the snapshot is treated as the root of its own tree rather
// than dropped. The x coordinate is the node's horizontal center; y grows
// downward one level per generation.
func (e *LayoutEngine) ComputeLayout(tree *aggregates.ConversationTree) (map[valueobjects.NodeID]valueobjects.Position, error) {
	nodes := tree.Nodes()
	if len(nodes) == 0 {
		return map[valueobjects.NodeID]valueobjects.Position{}, nil
	}

	state := &layoutState{
		cfg:      e.cfg,
		tree:     tree,
		widths:   make(map[valueobjects.NodeID]float64, len(nodes)),
		xs:       make(map[valueobjects.NodeID]float64, len(nodes)),
		depths:   make(map[valueobjects.NodeID]int, len(nodes)),
		seq:      make(map[valueobjects.NodeID]int, len(nodes)),
		children: make(map[valueobjects.NodeID][]valueobjects.NodeID, len(nodes)),
	}

	roots := state.index(nodes)

	// Pass 1: subtree widths, post-order
	for _, rootID := range roots {
		state.measure(rootID)
	}

	// Pass 2: placement, pre-order; trees laid out left to right
	cursor := 0.0
	for _, rootID := range roots {
		state.place(rootID, cursor, 0)
		cursor += state.widths[rootID] + e.cfg.TreeGap
	}

	// Pass 3: collision sweep per level. For well-formed trees passes 1-2
	// already guarantee separation and the sweep changes nothing.
	shifted := state.sweep()
	if shifted > 0 {
		e.logger.Warn("layout collision sweep moved nodes",
			zap.String("project_id", tree.ProjectID().String()),
			zap.Int("shifted", shifted))
	}

	positions := make(map[valueobjects.NodeID]valueobjects.Position, len(nodes))
	for id, x := range state.xs {
		pos, err := valueobjects.NewPosition(x, float64(state.depths[id])*e.cfg.LevelHeight)
		if err != nil {
			return nil, err
		}
		positions[id] = pos
	}
	return positions, nil
}

type layoutState struct {
	cfg      *config.DomainConfig
	tree     *aggregates.ConversationTree
	widths   map[valueobjects.NodeID]float64
	xs       map[valueobjects.NodeID]float64
	depths   map[valueobjects.NodeID]int
	seq      map[valueobjects.NodeID]int
	children map[valueobjects.NodeID][]valueobjects.NodeID
}

// index builds the child lists and returns layout roots in creation order.
// A dangling parent reference promotes the node to a root of its own tree.
func (s *layoutState) index(nodes []*entities.Node) []valueobjects.NodeID {
	roots := []valueobjects.NodeID{}
	for i, node := range nodes {
		id := node.ID()
		s.seq[id] = i

		parentID := node.ParentID()
		if parentID != nil && s.tree.HasNode(*parentID) {
			s.children[*parentID] = append(s.children[*parentID], id)
		} else {
			roots = append(roots, id)
		}
	}
	return roots
}

// measure computes the horizontal extent of each subtree: a leaf occupies
// one node width, an inner node the wider of itself and its children row.
func (s *layoutState) measure(id valueobjects.NodeID) float64 {
	kids := s.children[id]
	if len(kids) == 0 {
		s.widths[id] = s.cfg.NodeWidth
		return s.cfg.NodeWidth
	}

	total := 0.0
	for i, childID := range kids {
		if i > 0 {
			total += s.cfg.SiblingGap
		}
		total += s.measure(childID)
	}
	if total < s.cfg.NodeWidth {
		total = s.cfg.NodeWidth
	}
	s.widths[id] = total
	return total
}

// place assigns x coordinates pre-order. Each node's center sits at the
// midpoint of the [left, left+width) slot reserved for its subtree, so a
// lone node lands at half a node width.
func (s *layoutState) place(id valueobjects.NodeID, left float64, depth int) {
	s.depths[id] = depth
	s.xs[id] = left + s.widths[id]/2

	kids := s.children[id]
	if len(kids) == 0 {
		return
	}

	rowWidth := 0.0
	for i, childID := range kids {
		if i > 0 {
			rowWidth += s.cfg.SiblingGap
		}
		rowWidth += s.widths[childID]
	}

	childLeft := left + (s.widths[id]-rowWidth)/2
	for _, childID := range kids {
		s.place(childID, childLeft, depth+1)
		childLeft += s.widths[childID] + s.cfg.SiblingGap
	}
}

// sweep walks each level left to right and pushes a whole subtree right when
// it overlaps its left neighbor. Returns the number of subtrees shifted.
func (s *layoutState) sweep() int {
	maxDepth := 0
	byDepth := map[int][]valueobjects.NodeID{}
	for id, depth := range s.depths {
		byDepth[depth] = append(byDepth[depth], id)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	shifted := 0
	for depth := 0; depth <= maxDepth; depth++ {
		row := byDepth[depth]
		sortRow(row, s.xs, s.seq)

		for i := 1; i < len(row); i++ {
			needed := s.xs[row[i-1]] + s.cfg.NodeWidth + s.cfg.SiblingGap
			if s.xs[row[i]] < needed {
				s.shiftSubtree(row[i], needed-s.xs[row[i]])
				shifted++
			}
		}
	}
	return shifted
}

func (s *layoutState) shiftSubtree(id valueobjects.NodeID, dx float64) {
	s.xs[id] += dx
	for _, childID := range s.children[id] {
		s.shiftSubtree(childID, dx)
	}
}

// sortRow orders a level by x, breaking ties by creation order so the sweep
// stays deterministic.
func sortRow(row []valueobjects.NodeID, xs map[valueobjects.NodeID]float64, seq map[valueobjects.NodeID]int) {
	for i := 1; i < len(row); i++ {
		for j := i; j > 0; j-- {
			a, b := row[j-1], row[j]
			if xs[a] < xs[b] || (xs[a] == xs[b] && seq[a] < seq[b]) {
				break
			}
			row[j-1], row[j] = b, a
		}
	}
}
