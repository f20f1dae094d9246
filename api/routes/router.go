package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dataflexhq/dataflex-backend/api/controllers"
	"github.com/dataflexhq/dataflex-backend/api/middleware"
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
	"github.com/dataflexhq/dataflex-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Sessions    session.AccessSessionChecker
	Auth        authsvc.Service
	Agents      agents.Service
	Commissions commissions.Service
	Withdrawals withdrawals.Service
	Wallet      wallet.Service
	Orders      orders.Service
	Referrals   referrals.Service
	Catalog     catalog.Service
	Jobs        jobs.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/services", controllers.CatalogServices(svcs.Catalog, logg))
		r.Get("/bundles", controllers.CatalogBundles(svcs.Catalog, logg))
		r.Get("/jobs", controllers.JobList(svcs.Jobs, logg))
		r.Get("/jobs/{jobId}", controllers.JobDetail(svcs.Jobs, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))
		r.Use(middleware.RequireRole("agent", logg))

		r.Get("/ping", controllers.AgentPing())
		r.Get("/me", controllers.AgentProfile(svcs.Agents, logg))
		r.Get("/me/commissions", controllers.AgentCommissions(svcs.Commissions, logg))

		r.Route("/withdrawals", func(r chi.Router) {
			r.Post("/", controllers.WithdrawalCreate(svcs.Withdrawals, logg))
			r.Get("/", controllers.WithdrawalList(svcs.Withdrawals, logg))
			r.Get("/{withdrawalId}", controllers.WithdrawalDetail(svcs.Withdrawals, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(svcs.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(svcs.Wallet, logg))
			r.Post("/topup", controllers.WalletTopup(svcs.Wallet, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(svcs.Orders, logg))
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
		})

		r.Route("/referrals", func(r chi.Router) {
			r.Post("/", controllers.ReferralCreate(svcs.Referrals, logg))
			r.Get("/", controllers.ReferralList(svcs.Referrals, logg))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/applications", controllers.JobMyApplications(svcs.Jobs, logg))
			r.Post("/{jobId}/apply", controllers.JobApply(svcs.Jobs, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, svcs.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.AdminAgentList(svcs.Agents, logg))
			r.Get("/{agentId}", controllers.AdminAgentDetail(svcs.Agents, logg))
			r.Post("/{agentId}/approve", controllers.AdminAgentApprove(svcs.Agents, logg))
			r.Post("/{agentId}/ban", controllers.AdminAgentBan(svcs.Agents, logg))
			r.Delete("/{agentId}", controllers.AdminAgentDelete(svcs.Agents, logg))
		})

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", controllers.AdminWithdrawalList(svcs.Withdrawals, logg))
			r.Post("/{withdrawalId}/status", controllers.AdminWithdrawalStatus(svcs.Withdrawals, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/topups", controllers.AdminPendingTopups(svcs.Wallet, logg))
			r.Post("/topups/{transactionId}/review", controllers.AdminReviewTopup(svcs.Wallet, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderStatus(svcs.Orders, logg))
		})

		r.Route("/referrals", func(r chi.Router) {
			r.Get("/", controllers.AdminReferralList(svcs.Referrals, logg))
			r.Post("/{referralId}/status", controllers.AdminReferralStatus(svcs.Referrals, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Post("/", controllers.AdminServiceCreate(svcs.Catalog, logg))
			r.Put("/{serviceId}", controllers.AdminServiceUpdate(svcs.Catalog, logg))
			r.Delete("/{serviceId}", controllers.AdminServiceDelete(svcs.Catalog, logg))
		})

		r.Route("/bundles", func(r chi.Router) {
			r.Post("/", controllers.AdminBundleCreate(svcs.Catalog, logg))
			r.Put("/{bundleId}", controllers.AdminBundleUpdate(svcs.Catalog, logg))
			r.Delete("/{bundleId}", controllers.AdminBundleDelete(svcs.Catalog, logg))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", controllers.AdminJobCreate(svcs.Jobs, logg))
			r.Put("/{jobId}", controllers.AdminJobUpdate(svcs.Jobs, logg))
			r.Delete("/{jobId}", controllers.AdminJobDelete(svcs.Jobs, logg))
			r.Get("/{jobId}/applications", controllers.AdminJobApplications(svcs.Jobs, logg))
		})
	})

	return r
}
