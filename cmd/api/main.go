package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dataflexhq/dataflex-backend/api/routes"
	"github.com/dataflexhq/dataflex-backend/internal/agents"
	authsvc "github.com/dataflexhq/dataflex-backend/internal/auth"
	"github.com/dataflexhq/dataflex-backend/internal/catalog"
	"github.com/dataflexhq/dataflex-backend/internal/commissions"
	"github.com/dataflexhq/dataflex-backend/internal/jobs"
	"github.com/dataflexhq/dataflex-backend/internal/orders"
	"github.com/dataflexhq/dataflex-backend/internal/referrals"
	"github.com/dataflexhq/dataflex-backend/internal/wallet"
	"github.com/dataflexhq/dataflex-backend/internal/withdrawals"
	"github.com/dataflexhq/dataflex-backend/pkg/auth/session"
	"github.com/dataflexhq/dataflex-backend/pkg/config"
	"github.com/dataflexhq/dataflex-backend/pkg/db"
	"github.com/dataflexhq/dataflex-backend/pkg/logger"
	"github.com/dataflexhq/dataflex-backend/pkg/metrics"
	"github.com/dataflexhq/dataflex-backend/pkg/migrate"
	"github.com/dataflexhq/dataflex-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, sessionManager, settlementMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(stopCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	settlementMetrics *metrics.SettlementMetrics,
) (routes.Services, error) {
	gormDB := dbClient.DB()

	agentsSvc, err := agents.NewService(agents.NewRepository(gormDB), cfg.Password, logg)
	if err != nil {
		return routes.Services{}, err
	}

	authService, err := authsvc.NewService(agentsSvc, authsvc.NewAdminRepository(gormDB), sessionManager, cfg.JWT, logg)
	if err != nil {
		return routes.Services{}, err
	}

	commissionsSvc, err := commissions.NewService(commissions.NewRepository(gormDB), logg)
	if err != nil {
		return routes.Services{}, err
	}

	minWithdrawal, err := cfg.Settlement.MinWithdrawal()
	if err != nil {
		return routes.Services{}, err
	}
	withdrawalsSvc, err := withdrawals.NewService(
		withdrawals.NewRepository(gormDB),
		commissionsSvc,
		dbClient,
		withdrawals.Settings{
			MinAmount:   minWithdrawal,
			MaxPerMonth: cfg.Settlement.MaxMonthlyWithdrawals,
		},
		settlementMetrics,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(gormDB), dbClient, settlementMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(gormDB), catalogSvc, walletSvc, dbClient, logg)
	if err != nil {
		return routes.Services{}, err
	}

	referralsSvc, err := referrals.NewService(referrals.NewRepository(gormDB), catalogSvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	jobsSvc, err := jobs.NewService(jobs.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Sessions:    sessionManager,
		Auth:        authService,
		Agents:      agentsSvc,
		Commissions: commissionsSvc,
		Withdrawals: withdrawalsSvc,
		Wallet:      walletSvc,
		Orders:      ordersSvc,
		Referrals:   referralsSvc,
		Catalog:     catalogSvc,
		Jobs:        jobsSvc,
	}, nil
}
