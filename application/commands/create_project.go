// Package commands holds the state-changing operations of the engine. Each
// file pairs a command struct with its handler; dispatch goes through the
// command bus.
package commands

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/ports"
	"loom-backend/domain/core/entities"
	"loom-backend/pkg/utils"
)

// CreateProjectCommand creates an empty project
type CreateProjectCommand struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// Validate validates the command
func (cmd CreateProjectCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// CreateProjectHandler handles the CreateProjectCommand
type CreateProjectHandler struct {
	projectRepo ports.ProjectRepository
	eventBus    ports.EventPublisher
	logger      *zap.Logger
}

// NewCreateProjectHandler creates a new handler instance
func NewCreateProjectHandler(projectRepo ports.ProjectRepository, eventBus ports.EventPublisher, logger *zap.Logger) *CreateProjectHandler {
	return &CreateProjectHandler{
		projectRepo: projectRepo,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// Handle executes the create project command
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*entities.Project, error) {
	project, err := entities.NewProject(cmd.Name, cmd.Description)
	if err != nil {
		return nil, err
	}

	if err := h.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}

	h.publishEvents(ctx, project)

	h.logger.Info("project created",
		zap.String("project_id", project.ID().String()),
		zap.String("name", project.Name()))

	return project, nil
}

func (h *CreateProjectHandler) publishEvents(ctx context.Context, project *entities.Project) {
	if err := h.eventBus.Publish(ctx, project.GetUncommittedEvents()...); err != nil {
		h.logger.Warn("failed to publish project events", zap.Error(err))
	}
	project.MarkEventsAsCommitted()
}
