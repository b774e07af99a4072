package commands

import (
	"fmt"

	"github.com/elementsenergies/flexrank/internal/categories"
	"github.com/elementsenergies/flexrank/internal/external/elements"
	"github.com/elementsenergies/flexrank/internal/flex"
	"github.com/elementsenergies/flexrank/internal/notify"
	"github.com/elementsenergies/flexrank/internal/pipeline"
	"github.com/elementsenergies/flexrank/internal/store"
	"github.com/elementsenergies/flexrank/internal/syncer"
	"github.com/elementsenergies/flexrank/pkg/config"
	"github.com/elementsenergies/flexrank/pkg/database"
	"github.com/elementsenergies/flexrank/pkg/httputil"
	"github.com/elementsenergies/flexrank/pkg/logger"
	"github.com/elementsenergies/flexrank/pkg/redis"
)

// app holds the shared dependencies every command builds on.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *database.DB
	redis *redis.Client

	clients     *store.ClientRepository
	consumption *store.ConsumptionRepository
	metrics     *store.MetricsRepository
	categories  *store.CategoryRepository
	messages    *store.MessageRepository
	feedback    *store.FeedbackRepository

	elements   *elements.Client
	httpClient *httputil.Client
}

// newApp loads configuration and connects everything.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rds, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	httpClient := httputil.NewWithTimeout(log, cfg.Elements.DayTimeout)
	if rds.Enabled() {
		httpClient = httpClient.WithRateLimiter(
			redis.NewRateLimiter(rds, "flexrank"), redis.ElementsRateLimit)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		redis: rds,

		clients:     store.NewClientRepository(db.Pool),
		consumption: store.NewConsumptionRepository(db.Pool),
		metrics:     store.NewMetricsRepository(db.Pool),
		categories:  store.NewCategoryRepository(db.Pool),
		messages:    store.NewMessageRepository(db.Pool),
		feedback:    store.NewFeedbackRepository(db.Pool),

		elements:   elements.NewClient(cfg.Elements, httpClient, log),
		httpClient: httpClient,
	}
	return a, nil
}

// Close releases the app's connections.
func (a *app) Close() {
	a.db.Close()
	_ = a.redis.Close()
}

// newSyncEngine builds the incremental consumption syncer.
func (a *app) newSyncEngine() *syncer.Engine {
	return syncer.NewEngine(a.elements, a.consumption, a.cfg.Sync, a.log)
}

// newRunner builds the full flexibility pipeline.
func (a *app) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(
		a.elements,
		a.clients,
		a.consumption,
		a.metrics,
		a.newSyncEngine(),
		flex.NewCalculator(a.cfg.Flex, a.log),
		flex.NewRanker(a.cfg.Flex, a.log),
		a.cfg.Sync,
		a.log,
	)
}

// newCategoryService builds the category refresh service.
func (a *app) newCategoryService() *categories.Service {
	return categories.NewService(
		a.clients,
		a.consumption,
		a.categories,
		a.newSyncEngine(),
		a.cfg.Sync,
		a.log,
	)
}

// newNotifyService builds the message dispatch service. Requires a
// configured gateway.
func (a *app) newNotifyService() (*notify.Service, error) {
	if a.cfg.Notify.GatewayURL == "" {
		return nil, fmt.Errorf("NOTIFY_GATEWAY_URL is required for message dispatch")
	}

	sender := notify.NewGatewaySender(a.httpClient, a.cfg.Notify.GatewayURL, a.log)
	return notify.NewService(a.messages, sender, a.cfg.Notify, a.log)
}
