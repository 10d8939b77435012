package memory

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"loom-backend/domain/core/entities"
	"loom-backend/domain/core/valueobjects"
	pkgerrors "loom-backend/pkg/errors"
)

// ProjectStore is an in-memory ProjectRepository
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[valueobjects.ProjectID]*entities.Project
	logger   *zap.Logger
}

// NewProjectStore creates an empty project store
func NewProjectStore(logger *zap.Logger) *ProjectStore {
	return &ProjectStore{
		projects: make(map[valueobjects.ProjectID]*entities.Project),
		logger:   logger,
	}
}

// Save persists a new project or replaces an existing one
func (s *ProjectStore) Save(ctx context.Context, project *entities.Project) error {
	if project == nil {
		return pkgerrors.NewValidationError("project cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := cloneProject(project)
	if err != nil {
		return err
	}
	s.projects[project.ID()] = stored
	return nil
}

// GetByID retrieves a project
func (s *ProjectStore) GetByID(ctx context.Context, projectID valueobjects.ProjectID) (*entities.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[projectID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("project")
	}
	return cloneProject(project)
}

// Exists checks project existence without loading it
func (s *ProjectStore) Exists(ctx context.Context, projectID valueobjects.ProjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.projects[projectID]
	return ok, nil
}

// Delete removes a project
func (s *ProjectStore) Delete(ctx context.Context, projectID valueobjects.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return pkgerrors.NewNotFoundError("project")
	}
	delete(s.projects, projectID)
	return nil
}

func cloneProject(project *entities.Project) (*entities.Project, error) {
	return entities.ReconstructProject(
		project.ID(),
		project.Name(),
		project.Description(),
		project.RootNodeID(),
		project.CreatedAt(),
		project.UpdatedAt(),
	)
}
