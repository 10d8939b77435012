//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"loom-backend/application/commands"
	"loom-backend/application/queries"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideDomainConfig,
	ProvideNodeRepository,
	ProvideProjectRepository,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideCompletionRequester,
	ProvideLayoutEngine,
	ProvidePathHighlighter,
	ProvideContextBuilder,
	ProvideForkPlanner,
	commands.NewCreateProjectHandler,
	commands.NewCreateNodeHandler,
	commands.NewForkNodeHandler,
	commands.NewApplyLayoutHandler,
	commands.NewDeleteNodeHandler,
	commands.NewFinalizeNodeHandler,
	commands.NewImportNodesHandler,
	queries.NewGetProjectGraphHandler,
	queries.NewGetNodeSubgraphHandler,
	queries.NewGetGraphStatsHandler,
	queries.NewBuildContextHandler,
	queries.NewHighlightPathHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer() (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
