package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"versegraph/application/commands"
	"versegraph/application/commands/bus"
	commands_handlers "versegraph/application/commands/handlers"
	"versegraph/application/ports"
	"versegraph/application/queries"
	querybus "versegraph/application/queries/bus"
	queries_handlers "versegraph/application/queries/handlers"
	"versegraph/application/services"
	domainconfig "versegraph/domain/config"
	"versegraph/domain/events"
	"versegraph/infrastructure/concurrency"
	"versegraph/infrastructure/config"
	"versegraph/infrastructure/messaging"
	"versegraph/infrastructure/messaging/eventbridge"
	"versegraph/infrastructure/persistence/dynamodb"
	"versegraph/infrastructure/persistence/sqlite"
	"versegraph/infrastructure/realtime"
	"versegraph/pkg/auth"
	"versegraph/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStorage opens the repositories of the configured driver. The
// cleanup closes the sqlite database.
func ProvideStorage(ctx context.Context, cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (*Storage, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		storage := &Storage{
			Nodes:  store.NodeRepository(),
			Edges:  store.EdgeRepository(),
			Notes:  store.NoteRepository(),
			Locker: concurrency.NewKeyedLocker(),
			Ready: func(ctx context.Context) error {
				return store.DB().PingContext(ctx)
			},
		}
		cleanup := func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
		return storage, cleanup, nil

	case config.StorageDynamoDB:
		lock := dynamodb.NewDistributedLock(client, cfg.DynamoDBTable, logger)
		storage := &Storage{
			Nodes:  dynamodb.NewNodeRepository(client, cfg.DynamoDBTable, cfg.NodeIDIndex, logger),
			Edges:  dynamodb.NewEdgeRepository(client, cfg.DynamoDBTable, logger),
			Notes:  dynamodb.NewNoteRepository(client, cfg.DynamoDBTable, logger),
			Locker: dynamodb.NewGenerationLocker(lock, lockOwnerID(), cfg.LockLease, logger),
			Ready: func(ctx context.Context) error {
				_, err := client.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{TableName: aws.String(cfg.DynamoDBTable)})
				return err
			},
		}
		return storage, func() {}, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// lockOwnerID identifies this process as a lock holder
func lockOwnerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "versegraph"
	}
	return host + "#" + uuid.NewString()
}

// ProvideEventPublisher publishes to EventBridge on the dynamodb driver and
// in-process otherwise
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.StorageDriver == config.StorageSQLite || cfg.EventBusName == "" {
		return messaging.NewLocalPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance. Disabled metrics get no client.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("VerseGraph/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("versegraph", cfg.EnableTracing)
}

// ProvideInMemoryCache creates the graph view cache
func ProvideInMemoryCache() (ports.Cache, func()) {
	cache := NewInMemoryCache(time.Minute)
	return cache, cache.Close
}

// ProvideDomainConfig derives the domain limits
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideGraphGenerator creates the graph upsert engine
func ProvideGraphGenerator(
	storage *Storage,
	publisher ports.EventPublisher,
	cache ports.Cache,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.GraphGenerator {
	return services.NewGraphGenerator(
		storage.Nodes,
		storage.Edges,
		storage.Notes,
		publisher,
		cache,
		storage.Locker,
		metrics,
		tracer,
		dc,
		logger,
	)
}

// ProvideGraphAssembler creates the full-graph assembler
func ProvideGraphAssembler(
	generator *services.GraphGenerator,
	storage *Storage,
	metrics *observability.Metrics,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.GraphAssembler {
	return services.NewGraphAssembler(generator, storage.Notes, metrics, dc, logger)
}

// ProvideNoteSubscriptions runs generation in-process for note.saved events
// published on the local bus
func ProvideNoteSubscriptions(publisher ports.EventPublisher, generator *services.GraphGenerator, logger *zap.Logger) NoteSubscriptions {
	local, ok := publisher.(*messaging.LocalPublisher)
	if !ok {
		return 0
	}

	local.Subscribe(events.TypeNoteSaved, func(ctx context.Context, event events.DomainEvent) error {
		saved, ok := event.(events.NoteSaved)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}
		result, err := generator.GenerateForNoteID(ctx, saved.UserID, saved.NoteID)
		if err != nil {
			return err
		}
		logger.Debug("Generated note graph",
			zap.String("noteID", saved.NoteID),
			zap.Int("nodes", len(result.Nodes)),
			zap.Int("edges", len(result.Edges)),
		)
		return nil
	})
	return 1
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	storage *Storage,
	generator *services.GraphGenerator,
	publisher ports.EventPublisher,
	cache ports.Cache,
	metrics *observability.Metrics,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)

	generateHandler := commands_handlers.NewGenerateNoteGraphHandler(generator, logger)
	if err := commandBus.Register(commands.GenerateNoteGraphCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			generateCmd, ok := cmd.(commands.GenerateNoteGraphCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return generateHandler.Handle(ctx, generateCmd)
		},
	}); err != nil {
		return nil, err
	}

	updateNodeHandler := commands_handlers.NewUpdateNodeHandler(storage.Nodes, publisher, cache, dc, logger)
	if err := commandBus.Register(commands.UpdateGraphNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateGraphNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateNodeHandler.Handle(ctx, updateCmd)
		},
	}); err != nil {
		return nil, err
	}

	deleteNodeHandler := commands_handlers.NewDeleteNodeHandler(storage.Nodes, storage.Edges, publisher, cache, logger)
	if err := commandBus.Register(commands.DeleteGraphNodeCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteGraphNodeCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteNodeHandler.Handle(ctx, deleteCmd)
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// graphViewKey caches laid-out views per user; generation and node edits
// delete the same key
func graphViewKey(query querybus.Query) (string, bool) {
	q, ok := query.(queries.GetGraphViewQuery)
	if !ok {
		return "", false
	}
	return ports.GraphViewCacheKey(q.UserID), true
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	storage *Storage,
	assembler *services.GraphAssembler,
	cache ports.Cache,
	metrics *observability.Metrics,
	dc *domainconfig.DomainConfig,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(metrics)

	getGraphViewHandler := queries_handlers.NewGetGraphViewHandler(storage.Nodes, storage.Edges, logger)
	caching := querybus.NewCachingMiddleware(cache, dc.GraphViewCacheTTL, graphViewKey, logger)
	if err := queryBus.Register(queries.GetGraphViewQuery{}, caching.Wrap(&QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetGraphViewQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getGraphViewHandler.Handle(ctx, getQuery)
		},
	})); err != nil {
		return nil, err
	}

	generateGraphHandler := queries_handlers.NewGenerateGraphHandler(assembler, logger)
	if err := queryBus.Register(queries.GenerateGraphQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			generateQuery, ok := query.(queries.GenerateGraphQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return generateGraphHandler.Handle(ctx, generateQuery)
		},
	}); err != nil {
		return nil, err
	}

	hasNotesHandler := queries_handlers.NewHasNotesHandler(assembler)
	if err := queryBus.Register(queries.HasNotesQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			hasQuery, ok := query.(queries.HasNotesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return hasNotesHandler.Handle(ctx, hasQuery)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideTokenValidator creates the JWT validator. Outside production a
// missing secret falls back to config.DevJWTSecret.
func ProvideTokenValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = config.DevJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
}

// ProvideRateLimiter limits POST /graph/generate per user. DynamoDB keeps
// the counters on the dynamodb driver so the limit holds across lambdas.
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) auth.RateLimiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	if cfg.StorageDriver == config.StorageDynamoDB {
		return auth.NewDistributedRateLimiter(client, cfg.DynamoDBTable, cfg.RateLimitPerMinute, time.Minute, "generate")
	}
	return auth.NewSlidingWindowLimiter(cfg.RateLimitPerMinute, time.Minute)
}

// ProvideConnectionStore creates the websocket connection registry
func ProvideConnectionStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) *realtime.ConnectionStore {
	return realtime.NewConnectionStore(client, cfg.ConnectionsTable, logger)
}

// ProvideNotifier creates the websocket notifier
func ProvideNotifier(store *realtime.ConnectionStore, awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) *realtime.Notifier {
	return realtime.NewNotifier(store, realtime.NewClientFactory(awsCfg), cfg.WebSocketEndpoint, logger)
}
