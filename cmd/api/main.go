package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gymcore/gym-gateway/internal/api/http"
	"github.com/gymcore/gym-gateway/internal/api/http/handlers"
	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/config"
	"github.com/gymcore/gym-gateway/internal/events"
	"github.com/gymcore/gym-gateway/internal/observability"
	"github.com/gymcore/gym-gateway/internal/persistence"
	"github.com/gymcore/gym-gateway/internal/repository"
	"github.com/gymcore/gym-gateway/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		if cfg.OAuth.Enabled() {
			logger.Fatal("redis is required for federated login", zap.Error(err))
		}
		logger.Warn("unable to reach redis", zap.Error(err))
	}
	defer redis.Close()

	pool := pg.PoolHandle()
	adminRepo := repository.NewAdminRepository(pool)
	trainerRepo := repository.NewTrainerRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)

	store, err := service.NewCredentialStore(memberRepo, adminRepo, trainerRepo, memberRepo)
	if err != nil {
		logger.Fatal("failed to build credential store", zap.Error(err))
	}
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Auth.FrontendURL).RegisterHandlers()

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		Store:      store,
		Admins:     adminRepo,
		Hasher:     hasher,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}
	memberService := service.NewMemberService(memberRepo, trainerRepo, store, hasher)

	var roleFinder auth.PrincipalFinder
	if cfg.Auth.ResolveRolePerRequest {
		roleFinder = store
		if ttl := cfg.Auth.RoleCacheTTL(); ttl > 0 {
			cache := service.NewPrincipalCache(store, cfg.Auth.RoleCacheSize, ttl)
			memberService.UsePrincipalCache(cache)
			roleFinder = cache
		}
	}

	if cfg.Auth.BootstrapAdminUsername != "" {
		created, err := authService.BootstrapAdmin(ctx, cfg.Auth.BootstrapAdminUsername, cfg.Auth.BootstrapAdminPassword)
		if err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
		if !created {
			logger.Info("bootstrap admin skipped; username already taken",
				zap.String("username", cfg.Auth.BootstrapAdminUsername))
		}
	}

	matrix, err := auth.NewDefaultMatrix()
	if err != nil {
		logger.Fatal("invalid route matrix", zap.Error(err))
	}
	metrics := observability.NewMetrics()
	middlewareOpts := []auth.MiddlewareOption{auth.WithMetrics(metrics)}
	if roleFinder != nil {
		middlewareOpts = append(middlewareOpts, auth.WithRoleResolution(roleFinder))
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), matrix, logger, middlewareOpts...)

	var oauthHandler *handlers.OAuthHandler
	if cfg.OAuth.Enabled() {
		federation, err := service.NewFederationService(
			service.NewGoogleProvider(cfg.OAuth),
			persistence.NewOAuthStateStore(redis),
			authService,
			cfg.Auth.FrontendURL,
			cfg.OAuth.StateTTL(),
			logger,
		)
		if err != nil {
			logger.Fatal("failed to build federated login", zap.Error(err))
		}
		oauthHandler = handlers.NewOAuthHandler(federation, logger)
	} else {
		logger.Info("federated login disabled; OAUTH_GOOGLE_CLIENT_ID not set")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:            cfg.App.RequestTimeout(),
		CORSAllowedOrigins: cfg.App.CORSAllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		OAuth:          oauthHandler,
		Members:        handlers.NewMembersHandler(memberService),
		Trainers:       handlers.NewTrainersHandler(memberService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
