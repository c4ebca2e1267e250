package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-service/config"
	"storefront-service/internal/api"
	"storefront-service/internal/auth"
	"storefront-service/internal/broker"
	"storefront-service/internal/mailer"
	"storefront-service/internal/media"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/service"
	"storefront-service/internal/util"
	"storefront-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	app := &cli.App{
		Name:   "storefront-service",
		Usage:  "storefront catalog, cart and order API",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the notification worker",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations or create indexes, then exit",
				Action: migrateOnly,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateOnly(c *cli.Context) error {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer util.SyncLogger()

	cfg.Database.AutoMigrate = true
	db, err := openBackend(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	util.GetLogger().Info("Schema is up to date", zap.String("driver", cfg.Database.Driver))
	return nil
}

func serve(c *cli.Context) error {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	gate, err := auth.NewGate(cfg.Auth.Secret)
	if err != nil {
		return fmt.Errorf("AUTH_SECRET must be set: %w", err)
	}

	db, err := openBackend(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicNotifications))

	eventPublisher := broker.NewEventPublisher(producer)

	carts, err := service.NewCartService(db, cfg.Cart.Consistency, cfg.Cart.MaxRetries)
	if err != nil {
		return err
	}

	images, err := media.NewDiskStore(cfg.Media.UploadDir, cfg.Media.PublicBaseURL)
	if err != nil {
		return err
	}

	services := api.Services{
		Accounts: service.NewAccountService(db, gate),
		Carts:    carts,
		Catalog:  service.NewCatalogService(db, redisClient, redisClient),
		Orders:   service.NewOrderService(db, redisClient, eventPublisher),
		Feedback: service.NewFeedbackService(eventPublisher),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotifications, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(consumer, newMailer(cfg.Mail), cfg.Mail.Inbox)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			logger.Error("Notification worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(services, gate, images, map[string]api.Pinger{
		"database": db,
		"redis":    redisClient,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := notificationWorker.Stop(); err != nil {
		logger.Warn("Error stopping notification worker", zap.Error(err))
	}

	logger.Info("Server exited")
	return nil
}

func newMailer(cfg config.MailConfig) mailer.Mailer {
	if cfg.Host == "" {
		util.GetLogger().Warn("SMTP_HOST not set, emails will only be logged")
		return mailer.NewLogMailer()
	}
	return mailer.NewSMTPMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.From)
}
