package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leadsync/internal/config"
	"github.com/xavierca1/ligue-leadsync/internal/entity"
	"github.com/xavierca1/ligue-leadsync/internal/infra/database"
	"github.com/xavierca1/ligue-leadsync/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leadsync/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration"
	"github.com/xavierca1/ligue-leadsync/internal/infra/integration/backend"
	"github.com/xavierca1/ligue-leadsync/internal/infra/mail"
	"github.com/xavierca1/ligue-leadsync/internal/infra/notify"
	"github.com/xavierca1/ligue-leadsync/internal/infra/queue"
	"github.com/xavierca1/ligue-leadsync/internal/infra/worker"
	"github.com/xavierca1/ligue-leadsync/internal/usecase"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database (connection persistence)
	var (
		db       *sql.DB
		connRepo entity.ConnectionRepositoryInterface
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ Database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			log.Fatalf("❌ Migrations: %v", err)
		}
		connRepo = database.NewConnectionRepository(db, cfg.DBDriver)
	} else {
		log.Println("⚠️ DATABASE_URL not set, connections will not be persisted")
	}

	// 2. Notification sinks
	inbox := notify.NewInbox(50)
	sinks := notify.Fanout{notify.Log{}, notify.Metrics{}, inbox}

	var rabbitMQ *queue.RabbitMQ
	if cfg.AMQPURL != "" {
		var err error
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("❌ RabbitMQ: %v", err)
		}
		defer rabbitMQ.Close()

		sinks = append(sinks, notify.Queue{Publisher: queue.NewProducer(rabbitMQ.Ch)})

		// 3. Worker: failures go to the operator by email
		if cfg.AlertEmail != "" {
			alerter := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.AlertEmail)
			w := queue.NewWorker(rabbitMQ.Ch, alerter)
			go func() {
				if err := w.Start(ctx, queue.QueueName); err != nil {
					log.Printf("❌ [WORKER] %v", err)
				}
			}()
		}
	}

	// 4. Adapters and sessions
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendToken, cfg.RequestTimeout)
	registry := usecase.NewSessionRegistry(integration.Sources(backendClient), connRepo, sinks)

	sweeper := worker.NewSessionSweeper(registry, cfg.SessionIdleTTL, cfg.SweepInterval)
	go sweeper.Start(ctx)

	limiter := middleware.NewRateLimiter(cfg.ConnectLimit, time.Minute)
	go limiter.Cleanup(10*time.Minute, ctx.Done())

	// 5. Handlers
	sessionHandler := handlers.NewSessionHandler(registry)
	notificationHandler := handlers.NewNotificationHandler(inbox)

	var healthHandler *handlers.HealthHandler
	switch {
	case db != nil && rabbitMQ != nil:
		healthHandler = handlers.NewHealthHandler(db, rabbitMQ.Conn, cfg.BackendURL)
	case db != nil:
		healthHandler = handlers.NewHealthHandler(db, nil, cfg.BackendURL)
	case rabbitMQ != nil:
		healthHandler = handlers.NewHealthHandler(nil, rabbitMQ.Conn, cfg.BackendURL)
	default:
		healthHandler = handlers.NewHealthHandler(nil, nil, cfg.BackendURL)
	}

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/v1/sessions", sessionHandler.Routes(limiter.Handler))
	r.Get("/api/v1/notifications", notificationHandler.List)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 Lead sync server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⚠️ Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Shutdown: %v", err)
	}
}
