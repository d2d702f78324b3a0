package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/danverse/danverse-api/internal/adapter"
	"github.com/danverse/danverse-api/internal/config"
	"github.com/danverse/danverse-api/internal/infra/cookiesync"
	"github.com/danverse/danverse-api/internal/infra/database"
	"github.com/danverse/danverse-api/internal/infra/http/handlers"
	"github.com/danverse/danverse-api/internal/infra/http/middleware"
	"github.com/danverse/danverse-api/internal/infra/mail"
	"github.com/danverse/danverse-api/internal/infra/queue"
	"github.com/danverse/danverse-api/internal/infra/store"
	"github.com/danverse/danverse-api/internal/infra/token"
	"github.com/danverse/danverse-api/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	codec, err := token.NewCodec(cfg.SessionSecret)
	if err != nil {
		logger.Fatal("session secret rejected", zap.Error(err))
	}

	var (
		data     adapter.DataAdapter
		db       *sql.DB
		amqpConn *amqp091.Connection
		bridge   *cookiesync.Bridge
	)

	if cfg.PreviewMode {
		st := store.New()
		bridge = cookiesync.NewBridge(st, codec, cfg.SecureCookies, logger)
		mailer := mail.NewEtherealSender(cfg.MailFrom, logger)
		data = adapter.NewPreviewAdapter(st, codec, mailer, logger)
	} else {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database open failed", zap.Error(err))
		}
		defer db.Close()

		smtpSender, err := mail.NewSMTPSender(cfg.SMTPURL, cfg.MailFrom, logger)
		if err != nil {
			logger.Fatal("smtp config rejected", zap.Error(err))
		}

		var mailer mail.Sender = smtpSender
		if cfg.AMQPURL != "" {
			rabbit, err := queue.NewRabbitMQ(cfg.AMQPURL)
			if err != nil {
				logger.Fatal("rabbitmq connect failed", zap.Error(err))
			}
			defer rabbit.Close()
			amqpConn = rabbit.Conn

			worker := queue.NewWorker(rabbit.Ch, smtpSender, logger)
			go worker.Start(queue.QueueName)

			mailer = queue.NewMailProducer(rabbit.Ch)
		}

		data = adapter.NewProductionAdapter(
			database.NewLeadRepository(db),
			database.NewOrderRepository(db),
			mailer,
			logger,
		)
	}

	cfg.LogMode(logger)

	createLeadUC := usecase.NewCreateLeadUseCase(data, cfg.AdminEmail, logger)
	createOrderUC := usecase.NewCreateOrderUseCase(data, cfg.Payment, cfg.AdminEmail, logger)
	updateStatusUC := usecase.NewUpdateOrderStatusUseCase(data, logger)

	leadHandler := handlers.NewLeadHandler(createLeadUC, logger)
	orderHandler := handlers.NewOrderHandler(createOrderUC, logger)
	adminHandler := handlers.NewAdminHandler(data, updateStatusUC, logger)
	healthHandler := handlers.NewHealthHandler(db, amqpConn, cfg.PreviewMode)

	adminAuth := middleware.NewAdminAuth(cfg.AdminUser, cfg.AdminPass, cfg.AdminIPAllowlist, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.PublicURL, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if bridge != nil {
		r.Use(cookiesync.Middleware(bridge))
	}

	r.Post("/api/leads", leadHandler.CaptureLead)
	r.Post("/api/orders", orderHandler.Checkout)
	r.Get("/api/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuth.Middleware)
		r.Get("/leads/stats", adminHandler.LeadStats)
		r.Get("/orders", adminHandler.ListOrders)
		r.Get("/orders/stats", adminHandler.OrderStats)
		r.Put("/orders/{code}/status", adminHandler.UpdateOrderStatus)
		r.Get("/export", adminHandler.Export)
		r.Post("/import", adminHandler.Import)
	})

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
