// Package di wires the application together with google/wire. wire.go holds
// the injector declaration; wire_gen.go is the generated output.
package di

import (
	"go.uber.org/zap"

	commandbus "loom-backend/application/commands/bus"
	"loom-backend/application/ports"
	querybus "loom-backend/application/queries/bus"
	domaincfg "loom-backend/domain/config"
	"loom-backend/infrastructure/config"
	"loom-backend/infrastructure/messaging"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domaincfg.DomainConfig
	Logger       *zap.Logger
	NodeRepo     ports.NodeRepository
	ProjectRepo  ports.ProjectRepository
	EventBus     *messaging.EventBus
	Completions  ports.CompletionRequester
	CommandBus   *commandbus.CommandBus
	QueryBus     *querybus.QueryBus
}

// Close flushes the logger; call it on shutdown
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
