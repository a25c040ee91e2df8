package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/storage"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// App owns every long-lived handle of the process.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics

	stores     *stores
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	async      *events.AsyncDispatcher
	queue      *events.RedisQueue

	Auth    *service.AuthService
	Tickets *service.TicketService
	HTTP    *fiber.App
}

// New connects to the configured backends and assembles services and the HTTP server.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, metrics: observability.NewMetrics()}

	st, err := openStores(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	a.stores = st

	a.redis = persistence.NewRedis(ctx, cfg.Redis, logger)

	if cfg.Notification.Queue == config.QueueRedis {
		a.queue = events.NewRedisQueue(a.redis.Client, cfg.Notification.QueueKey, logger)
		a.dispatcher = a.queue
	} else {
		a.async = events.NewAsyncDispatcher(logger)
		a.dispatcher = a.async
	}

	mail, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	worker.NewNotificationWorker(mail, logger, a.metrics, cfg.Notification.SendTimeout()).Register(a.dispatcher)

	attachments, err := storage.NewOSAttachmentStore(cfg.Attachments.Dir)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	validate := handlers.NewValidator()
	a.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:  st.tickets,
		Attachments: attachments,
		Dispatcher:  a.dispatcher,
		Validate:    validate,
		Logger:      logger,
	})
	a.Auth = service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: st.users,
		Validate: validate,
		Logger:   logger,
	})
	notifier := service.NewNotificationService(st.tickets, a.dispatcher, logger)

	checks := map[string]handlers.Check{cfg.Store.Driver: st.ping}
	if a.redis != nil {
		checks["redis"] = a.redis.Ping
	}

	a.HTTP = httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		BodyLimit:      cfg.App.BodyLimitBytes,
		RequestTimeout: cfg.App.RequestTimeout(),
	}, logger, a.metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Users:          handlers.NewUsersHandler(a.Auth, validate),
		Tickets:        handlers.NewTicketsHandler(a.Tickets, notifier, validate),
		AuthMiddleware: auth.NewAuthMiddleware(a.Auth.TokenManager()),
		LoginThrottle:  auth.NewLoginThrottle(cfg.Auth.LoginRatePerMinute),
		EnforceRoles:   cfg.Auth.EnforceRoles,
	})
	return a, nil
}

// Prepare runs the start-up data tasks: user indexes, legacy password
// migration and the bootstrap administrator.
func (a *App) Prepare(ctx context.Context) error {
	if err := a.stores.users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	if _, err := a.Auth.MigrateLegacyPasswords(ctx); err != nil {
		return err
	}
	return a.Auth.EnsureBootstrapAdmin(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	var queueDone <-chan struct{}
	if a.queue != nil {
		queueDone = worker.StartQueueConsumer(queueCtx, a.queue)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.cfg.App.Addr()))
		errCh <- a.HTTP.Listen(a.cfg.App.Addr())
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	if err := a.HTTP.Shutdown(); err != nil {
		a.logger.Warn("http shutdown", zap.Error(err))
	}
	stopQueue()
	if queueDone != nil {
		<-queueDone
	}
	return runErr
}

// Close waits briefly for in-flight notifications and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.async != nil {
		if err := a.async.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn("pending notifications dropped", zap.Error(err))
		}
	}
	a.redis.Close()
	if a.stores != nil {
		a.stores.close(ctx)
	}
}

// stores holds the repositories of the selected document store.
type stores struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	ping    func(context.Context) error
	close   func(context.Context)
}

func openStores(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*stores, error) {
	switch cfg.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.ConnectAttempts, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return &stores{
			tickets: repository.NewPostgresTicketRepository(pg.Pool),
			users:   repository.NewPostgresUserRepository(pg.Pool),
			ping:    pg.Ping,
			close:   func(context.Context) { pg.Close() },
		}, nil
	case config.StoreDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, cfg.ConnectAttempts, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			tickets: repository.NewMongoTicketRepository(m.Database),
			users:   repository.NewMongoUserRepository(m.Database),
			ping:    m.Ping,
			close:   m.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
