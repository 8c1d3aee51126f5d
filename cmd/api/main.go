package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	gommonlog "github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/gateway"
	"marketplace-settlement/internal/notify"
	"marketplace-settlement/internal/repository"
	"marketplace-settlement/internal/server"
	"marketplace-settlement/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	commissionRate, err := decimal.NewFromString(cfg.Settlement.CommissionRate)
	if err != nil {
		log.Fatalf("invalid SETTLEMENT_COMMISSION_RATE %q: %v", cfg.Settlement.CommissionRate, err)
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)

	stripeClient := client.NewStripeClient(&cfg.Stripe)
	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	gateways := map[gateway.Kind]gateway.Gateway{
		gateway.KindStripe: gateway.NewStripeGateway(stripeClient),
		gateway.KindPaypal: gateway.NewPaypalGateway(paypalClient),
	}

	productRepo := repository.NewProductRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	notifier := notify.NewLogNotifier(gommonlog.New("notify"))

	payoutService := service.NewPayoutService(db, payoutRepo, notifier)
	checkoutService := service.NewCheckoutService(
		db,
		gateways,
		service.NewCatalog(productRepo),
		orderRepo,
		paymentRepo,
		webhookEventRepo,
		payoutService,
		notifier,
		service.NewWebhookVerifier(cfg.Stripe.WebhookSecret, paypalClient),
		commissionRate,
		cfg.Settlement.Currency,
		cfg.BaseURL,
	)

	if cfg.Environment.Name == "development" {
		if err := productRepo.Seed(context.Background()); err != nil {
			log.Println("seed catalog:", err)
		}
	}

	srv := server.NewServer(
		checkoutService,
		payoutService,
		merchantRepo,
		productRepo,
		cfg.JWTSecret,
		cfg.Log.Level,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
