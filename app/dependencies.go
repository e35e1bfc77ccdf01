package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/config"
	"github.com/upb/petclinic/internal/observability"
	"github.com/upb/petclinic/middleware"
	"github.com/upb/petclinic/password"
	"github.com/upb/petclinic/repositories"
	"github.com/upb/petclinic/repositories/postgres"
	"github.com/upb/petclinic/services"
	"github.com/upb/petclinic/services/loginguard"
	"github.com/upb/petclinic/services/notify"
	"github.com/upb/petclinic/token"
	"go.uber.org/zap"
)

// notifyStopTimeout bounds how long Close waits for queued notifications.
const notifyStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Redis  *redis.Client
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users         repositories.UserRepository
	Pets          repositories.PetRepository
	Notifications repositories.NotificationRepository
	TxManager     repositories.TransactionManager

	// Auth core
	Codec      *token.Codec
	Hasher     password.Hasher
	Resolver   auth.Resolver
	LoginGuard loginguard.Limiter

	// Observability
	Metrics        observability.Metrics
	MetricsHandler http.Handler

	// Services
	Notifier            *notify.Service
	AuthService         *services.AuthService
	PetService          *services.PetService
	UserService         *services.UserService
	NotificationService *services.NotificationService

	// Middleware
	AuthMiddleware          *middleware.AuthMiddleware
	AuthorizationMiddleware *middleware.AuthorizationMiddleware
}

// NewDependencies connects to postgres (and redis when configured) and wires
// every component. Any error here is a startup error.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.GetDB().InitSchema(ctx); err != nil {
		_ = factory.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	var (
		redisClient *redis.Client
		limiter     loginguard.Limiter
	)
	guardCfg := loginguard.Config{MaxFailures: cfg.LoginGuard.MaxFailures, Window: cfg.LoginGuard.Window}
	if cfg.LoginGuard.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.LoginGuard.RedisURL)
		if err != nil {
			_ = factory.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		limiter = loginguard.NewRedisLimiter(redisClient, "", guardCfg)
		logger.Info("login guard using redis")
	} else {
		limiter = loginguard.NewMemoryLimiter(guardCfg)
		logger.Info("login guard using process memory")
	}

	repos := factory.NewRepositories()
	deps, err := Wire(cfg, logger, repos, factory.GetTransactionManager(), limiter)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = factory.Close()
		return nil, err
	}
	deps.RepoFactory = factory
	deps.DB = factory.GetDB()
	deps.Redis = redisClient

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Wire builds the auth core, services and middleware on top of already
// opened storage. The notification workers are started.
func Wire(
	cfg *config.Config,
	logger *zap.Logger,
	repos *repositories.Repositories,
	txManager repositories.TransactionManager,
	limiter loginguard.Limiter,
) (*Dependencies, error) {
	d := &Dependencies{
		Config:        cfg,
		Logger:        logger,
		Users:         repos.Users,
		Pets:          repos.Pets,
		Notifications: repos.Notifications,
		TxManager:     txManager,
		LoginGuard:    limiter,
	}

	if err := d.initAuth(cfg); err != nil {
		return nil, err
	}
	d.initMetrics(cfg)

	if err := d.initServices(); err != nil {
		return nil, err
	}

	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Codec, d.Resolver, d.Metrics, logger)
	d.AuthorizationMiddleware = middleware.NewAuthorizationMiddleware(d.Metrics, logger)

	return d, nil
}

func (d *Dependencies) initAuth(cfg *config.Config) error {
	codec, err := token.NewCodec(token.Config{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	d.Codec = codec

	hasher, err := password.NewHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	d.Hasher = hasher

	d.Resolver = auth.NewStoreResolver(auth.NewUserStore(d.Users))

	d.Logger.Info("auth initialized",
		zap.String("hasher", cfg.Auth.PasswordHasher),
		zap.Duration("token_ttl", cfg.Auth.TokenTTL))
	return nil
}

func (d *Dependencies) initMetrics(cfg *config.Config) {
	if !cfg.Observability.MetricsEnabled {
		d.Metrics = observability.NopMetrics{}
		return
	}
	pm := observability.NewPrometheusMetrics(prometheus.NewRegistry())
	d.Metrics = pm
	d.MetricsHandler = pm.Handler()
}

func (d *Dependencies) initServices() error {
	d.Notifier = notify.NewService(d.Notifications, d.Logger, notify.DefaultConfig())
	if err := d.Notifier.Start(); err != nil {
		return fmt.Errorf("failed to start notification service: %w", err)
	}

	authService, err := services.NewAuthService(
		d.Users, d.TxManager, d.Resolver, d.Hasher, d.Codec, d.LoginGuard, d.Metrics, d.Logger,
	)
	if err != nil {
		_ = d.Notifier.Stop(notifyStopTimeout)
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	d.AuthService = authService
	d.PetService = services.NewPetService(d.Pets, d.Notifier, d.Logger)
	d.UserService = services.NewUserService(d.Users, d.Logger)
	d.NotificationService = services.NewNotificationService(d.Notifications)
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Notifier != nil {
		timeout := notifyStopTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if err := d.Notifier.Stop(timeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop notification service: %w", err))
		}
	}

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
