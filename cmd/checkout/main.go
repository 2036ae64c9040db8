package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/events"
	"github.com/verdantcart/verdantcart-checkout-service/internal/gateway"
	"github.com/verdantcart/verdantcart-checkout-service/internal/handlers"
	"github.com/verdantcart/verdantcart-checkout-service/internal/invoice"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/mailer"
	"github.com/verdantcart/verdantcart-checkout-service/internal/repository"
	"github.com/verdantcart/verdantcart-checkout-service/internal/server"
	"github.com/verdantcart/verdantcart-checkout-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logging.Init()
	logger := logging.New("checkout-service")
	logger.Info("starting checkout-service", "port", cfg.Server.Port)

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err.Error())
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", "error", err.Error())
	}

	orderRepo := repository.NewPostgresOrderRepository(db, logging.New("order-repo"))
	productRepo := repository.NewPostgresProductRepository(db, logging.New("product-repo"))
	cartRepo := repository.NewPostgresCartRepository(db, logging.New("cart-repo"))
	orderCache := repository.NewRedisOrderCache(cfg.Redis)
	ephemeral := repository.NewRedisEphemeralStore(cfg.Redis)

	paymentGateway := gateway.NewRazorpayGateway(cfg.Razorpay, logging.New("razorpay-gateway"))
	invoiceRenderer := invoice.NewPDFRenderer("Verdantcart")
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, logging.New("mailer"))

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logging.New("event-publisher"))
	defer eventPublisher.Close()

	checkoutService := service.NewCheckoutService(
		orderRepo,
		productRepo,
		cartRepo,
		orderCache,
		ephemeral,
		paymentGateway,
		invoiceRenderer,
		smtpMailer,
		eventPublisher,
		cfg,
	)

	h := handlers.NewHandlers(checkoutService, cfg)

	srv := server.New(h, db, ephemeral, cfg)

	go func() {
		logger.Info("server starting",
			"port", cfg.Server.Port,
			"order_caching", cfg.Features.EnableOrderCaching,
			"checkout_events", cfg.Features.EnableCheckoutEvents,
			"invoice_email", cfg.Features.EnableInvoiceEmail,
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}

	logger.Info("server exited")
}

func initDatabase(cfg *config.Config, logger *logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("database connected",
		"host", cfg.Database.Host,
		"name", cfg.Database.Name,
	)
	return db, nil
}
