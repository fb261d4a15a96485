package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/brightforge/agency-leads/internal/config"
	"github.com/brightforge/agency-leads/internal/infra/database"
	"github.com/brightforge/agency-leads/internal/infra/http/handlers"
		"github.com/brightforge/agency-leads/internal/infra/integration/connectors"
	"github.com/brightforge/agency-leads/internal/infra/integration/hubspot"
	"github.com/brightforge/agency-leads/internal/infra/logging"
	"github.com/brightforge/agency-leads/internal/infra/mail"
	"github.com/brightforge/agency-leads/internal/infra/metrics"
	"github.com/brightforge/agency-leads/internal/infra/queue"
	"github.com/brightforge/agency-leads/internal/infra/worker"
	"github.com/brightforge/agency-leads/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Development())
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. CRM credentials
	httpClient := &http.Client{Timeout: cfg.HubSpotTimeout}
	tokens, crmAuth := tokenSource(cfg, httpClient, logger)
	crmClients := hubspot.NewClientFactory(tokens, cfg.HubSpotBaseURL, httpClient).
		WithBreaker(hubspot.NewBreaker(func(from, to gobreaker.State) {
			logger.Warn("hubspot circuit breaker changed state",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if to == gobreaker.StateOpen {
				metrics.RecordIntegrationError("hubspot_breaker_open")
			}
		}))

	// 2. Optional sync journal
	var (
		db      *sql.DB
		journal usecase.SyncJournal
	)
	if cfg.DatabaseURL != "" {
		db, err = database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database unavailable", zap.Error(err))
		}
		defer db.Close()

		repo := database.NewSyncEventRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Fatal("sync journal schema", zap.Error(err))
		}
		journal = repo

		retention := worker.NewSyncEventRetentionWorker(repo, cfg.SyncEventRetention, clock.New(), logger)
		go retention.Start(ctx)
	} else {
		logger.Warn("DATABASE_URL not set, sync journal disabled")
	}

	// 3. Optional lead events
	var (
		rabbitMQ  *queue.RabbitMQ
		publisher usecase.LeadEventPublisher
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("rabbitmq unavailable", zap.Error(err))
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch)

		if cfg.Mail.Enabled() {
			notifier := mail.NewEmailSender(
				cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
				cfg.Mail.From, cfg.Mail.SalesTeam,
			)
			notifications := queue.NewWorker(rabbitMQ.Ch, notifier, logger)
			go func() {
				if err := notifications.Start(ctx, queue.QueueName); err != nil {
					logger.Error("lead notification worker stopped", zap.Error(err))
				}
			}()
		} else {
			logger.Warn("mail not configured, lead notifications stay queued")
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, lead events disabled")
	}

	// 4. Use case and handlers
	syncLead := usecase.NewSyncLeadUseCase(crmClients, publisher, journal, logger)
	leadHandler := handlers.NewLeadHandler(syncLead, handlers.NewRateLimiter(cfg.RateLimitPerMinute), logger)

	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Connection(), crmAuth)

	// 5. Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(leadHandler, healthHandler, cfg.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("agency-leads api listening", zap.String("port", cfg.Port), zap.String("crm_auth", crmAuth))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// tokenSource prefers a static private-app token and falls back to the
// connector exchange. The second value labels the choice for /health.
func tokenSource(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) (hubspot.TokenSource, string) {
	if cfg.HubSpotToken != "" {
		return connectors.StaticTokenSource(cfg.HubSpotToken), "static"
	}

	identity := connectors.Identity{
		ReplIdentity:   cfg.ReplIdentity,
		WebReplRenewal: cfg.WebReplRenewal,
	}
	provider := connectors.NewProvider(
		cfg.ConnectorsHostname,
		identity,
		connectors.NewTokenCache(clock.New()),
		httpClient,
		logger,
	)

	if !identity.Configured() || cfg.ConnectorsHostname == "" {
		logger.Warn("no CRM credentials configured, lead sync will fail")
		return provider, ""
	}
	return provider, "connector"
}
