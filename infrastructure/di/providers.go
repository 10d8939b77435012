package di

import (
	"context"

	"go.uber.org/zap"

	"loom-backend/application/commands"
	commandbus "loom-backend/application/commands/bus"
	"loom-backend/application/ports"
	"loom-backend/application/queries"
	querybus "loom-backend/application/queries/bus"
	"loom-backend/application/services"
	domaincfg "loom-backend/domain/config"
	"loom-backend/infrastructure/acl"
	"loom-backend/infrastructure/config"
	"loom-backend/infrastructure/messaging"
	"loom-backend/infrastructure/persistence/memory"
)

// ProvideConfig loads infrastructure configuration from the environment
func ProvideConfig() (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig builds the tuned domain configuration
func ProvideDomainConfig(cfg *config.Config) (*domaincfg.DomainConfig, error) {
	return cfg.DomainConfig()
}

// ProvideNodeRepository creates the node store
func ProvideNodeRepository(logger *zap.Logger) ports.NodeRepository {
	return memory.NewNodeStore(logger)
}

// ProvideProjectRepository creates the project store
func ProvideProjectRepository(logger *zap.Logger) ports.ProjectRepository {
	return memory.NewProjectStore(logger)
}

// ProvideEventBus creates the in-memory event bus
func ProvideEventBus(logger *zap.Logger) *messaging.EventBus {
	return messaging.NewEventBus(logger)
}

// ProvideEventPublisher exposes the event bus through its port
func ProvideEventPublisher(eventBus *messaging.EventBus) ports.EventPublisher {
	return eventBus
}

// ProvideCompletionRequester wires the AI boundary: the logging upstream
// behind the circuit-breaking adapter.
func ProvideCompletionRequester(logger *zap.Logger) ports.CompletionRequester {
	return acl.NewCompletionAdapter(acl.NewLoggingRequester(logger), logger)
}

// ProvideLayoutEngine creates the layout engine
func ProvideLayoutEngine(domain *domaincfg.DomainConfig, logger *zap.Logger) *services.LayoutEngine {
	return services.NewLayoutEngine(domain, logger)
}

// ProvidePathHighlighter creates the path highlighter
func ProvidePathHighlighter() *services.PathHighlighter {
	return services.NewPathHighlighter()
}

// ProvideContextBuilder creates the context builder
func ProvideContextBuilder(logger *zap.Logger) *services.ContextBuilder {
	return services.NewContextBuilder(logger)
}

// ProvideForkPlanner creates the fork planner
func ProvideForkPlanner(domain *domaincfg.DomainConfig) *services.ForkPlanner {
	return services.NewForkPlanner(domain)
}

// busLogger adapts zap to the command bus logging interface
type busLogger struct {
	sugar *zap.SugaredLogger
}

func (l busLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l busLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// ProvideCommandBus creates the command bus with every handler registered
func ProvideCommandBus(
	createProject *commands.CreateProjectHandler,
	createNode *commands.CreateNodeHandler,
	forkNode *commands.ForkNodeHandler,
	applyLayout *commands.ApplyLayoutHandler,
	deleteNode *commands.DeleteNodeHandler,
	finalizeNode *commands.FinalizeNodeHandler,
	importNodes *commands.ImportNodesHandler,
	logger *zap.Logger,
) (*commandbus.CommandBus, error) {
	cb := commandbus.NewCommandBus(
		commandbus.LoggingMiddleware(busLogger{sugar: logger.Sugar()}),
		commandbus.ValidationMiddleware(),
	)

	registrations := []struct {
		cmd     commandbus.Command
		handler commandbus.CommandHandlerFunc
	}{
		{commands.CreateProjectCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return createProject.Handle(ctx, cmd.(commands.CreateProjectCommand))
		}},
		{commands.CreateNodeCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return createNode.Handle(ctx, cmd.(commands.CreateNodeCommand))
		}},
		{commands.ForkNodeCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return forkNode.Handle(ctx, cmd.(commands.ForkNodeCommand))
		}},
		{commands.ApplyLayoutCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return applyLayout.Handle(ctx, cmd.(commands.ApplyLayoutCommand))
		}},
		{commands.DeleteNodeCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return nil, deleteNode.Handle(ctx, cmd.(commands.DeleteNodeCommand))
		}},
		{commands.FinalizeNodeCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return finalizeNode.Handle(ctx, cmd.(commands.FinalizeNodeCommand))
		}},
		{commands.ImportNodesCommand{}, func(ctx context.Context, cmd commandbus.Command) (interface{}, error) {
			return importNodes.Handle(ctx, cmd.(commands.ImportNodesCommand))
		}},
	}

	for _, reg := range registrations {
		if err := cb.Register(reg.cmd, reg.handler); err != nil {
			return nil, err
		}
	}
	return cb, nil
}

// ProvideQueryBus creates the query bus with every handler registered
func ProvideQueryBus(
	projectGraph *queries.GetProjectGraphHandler,
	nodeSubgraph *queries.GetNodeSubgraphHandler,
	graphStats *queries.GetGraphStatsHandler,
	buildContext *queries.BuildContextHandler,
	highlightPath *queries.HighlightPathHandler,
) (*querybus.QueryBus, error) {
	qb := querybus.NewQueryBus()

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandlerFunc
	}{
		{queries.GetProjectGraphQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return projectGraph.Handle(ctx, q.(queries.GetProjectGraphQuery))
		}},
		{queries.GetNodeSubgraphQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return nodeSubgraph.Handle(ctx, q.(queries.GetNodeSubgraphQuery))
		}},
		{queries.GetGraphStatsQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return graphStats.Handle(ctx, q.(queries.GetGraphStatsQuery))
		}},
		{queries.BuildContextQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return buildContext.Handle(ctx, q.(queries.BuildContextQuery))
		}},
		{queries.BuildContextBatchQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return buildContext.HandleBatch(ctx, q.(queries.BuildContextBatchQuery))
		}},
		{queries.HighlightPathQuery{}, func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return highlightPath.Handle(ctx, q.(queries.HighlightPathQuery))
		}},
	}

	for _, reg := range registrations {
		if err := qb.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}
	return qb, nil
}
