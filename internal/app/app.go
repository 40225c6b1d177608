package app

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ticket-marketplace/payments/config"
	"github.com/ticket-marketplace/payments/internal/controller/rest"
	"github.com/ticket-marketplace/payments/internal/controller/rest/handlers"
	"github.com/ticket-marketplace/payments/internal/domain/dispute"
	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/internal/domain/gateway"
	"github.com/ticket-marketplace/payments/internal/domain/transaction"
	"github.com/ticket-marketplace/payments/internal/events"
	"github.com/ticket-marketplace/payments/internal/external/kafka"
	"github.com/ticket-marketplace/payments/internal/external/mpesa"
	"github.com/ticket-marketplace/payments/internal/external/opensearch"
	account_repo "github.com/ticket-marketplace/payments/internal/repo/account"
	dispute_repo "github.com/ticket-marketplace/payments/internal/repo/dispute"
	escrow_repo "github.com/ticket-marketplace/payments/internal/repo/escrow"
	listing_repo "github.com/ticket-marketplace/payments/internal/repo/listing"
	transaction_repo "github.com/ticket-marketplace/payments/internal/repo/transaction"
	"github.com/ticket-marketplace/payments/pkg/health"
	"github.com/ticket-marketplace/payments/pkg/logger"
	"github.com/ticket-marketplace/payments/pkg/metrics"
	"github.com/ticket-marketplace/payments/pkg/postgres"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed migrations/*.sql
var MIGRATION_FS embed.FS

func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pool.Close()

	if err := ApplyMigrations(cfg.PgURL, MIGRATION_FS); err != nil {
		l.Fatal(fmt.Errorf("app - Run - ApplyMigrations: %w", err))
	}

	// Repositories
	txRepo := transaction_repo.NewPgTransactionRepo(pool)
	holdRepo := escrow_repo.NewPgHoldRepo(pool)
	listingRepo := listing_repo.NewPgListingRepo(pool)
	accountRepo := account_repo.NewPgAccountRepo(pool)
	disputeRepo := dispute_repo.NewPgDisputeRepo(pool)

	// Event pipeline
	dispatcher := buildDispatcher(ctx, l, cfg)
	defer dispatcher.Close()

	gw := buildGateway(l, cfg)

	// Services
	escrowManager := escrow.NewManager(holdRepo, txRepo, l)
	paymentService := transaction.NewService(
		txRepo, listingRepo, accountRepo, gw, escrowManager, dispatcher, l,
		cfg.PlatformFeeBps, cfg.EscrowHoldingPeriod,
	)
	disputeService := dispute.NewService(
		disputeRepo, txRepo, escrowManager, listingRepo, accountRepo, dispatcher, l,
		cfg.DisputeReleaseExtension,
	)

	// Handlers
	paymentHandler := handlers.NewPaymentHandler(paymentService, escrowManager)
	callbackHandler := handlers.NewCallbackHandler(paymentService, l)
	disputeHandler := handlers.NewDisputeHandler(disputeService)
	escrowHandler := handlers.NewEscrowHandler(escrowManager)

	engine := NewGinEngine(l)
	router := rest.NewRouter(paymentHandler, callbackHandler, disputeHandler, escrowHandler, cfg.JWTSecret)
	router.SetUp(engine)
	setUpOperational(engine, pool, cfg)

	StartSweeper(ctx, l, escrowManager, cfg.EscrowSweepInterval)

	go func() {
		l.Info("Starting HTTP server: port=%d", cfg.Port)
		if err := engine.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			l.Error("HTTP server error: error=%v", err)
		}
	}()

	<-ctx.Done()
	l.Info("Shutting down payment service gracefully...")
}

// buildGateway selects the payment provider from config. Only one provider
// exists today; the switch is where the next one plugs in.
func buildGateway(l *logger.Logger, cfg config.Config) gateway.Gateway {
	switch cfg.PaymentProvider {
	case "mpesa":
		return mpesa.New(mpesa.Config{
			BaseURL:        cfg.GatewayBaseURL,
			ConsumerKey:    cfg.GatewayConsumerKey,
			ConsumerSecret: cfg.GatewayConsumerSecret,
			ShortCode:      cfg.GatewayShortCode,
			Passkey:        cfg.GatewayPasskey,
			CallbackURL:    cfg.GatewayCallbackURL,
			Timeout:        cfg.HTTPGatewayClientTimeout,
		}, l)
	default:
		l.Fatal("Unknown payment provider: provider=%s", cfg.PaymentProvider)
		return nil
	}
}

func buildDispatcher(ctx context.Context, l *logger.Logger, cfg config.Config) *events.Dispatcher {
	var publishers []events.Publisher

	if len(cfg.KafkaBrokers) > 0 {
		publishers = append(publishers,
			kafka.NewPublisher(l, cfg.KafkaBrokers, cfg.KafkaTransactionsTopic))
	}
	if len(cfg.OpensearchURLs) > 0 {
		sink, err := opensearch.NewAuditSink(ctx, cfg.OpensearchURLs, cfg.OpensearchIndexTransactions)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - opensearch.NewAuditSink: %w", err))
		}
		publishers = append(publishers, sink)
	}

	dispatcher := events.NewDispatcher(l, publishers...)
	dispatcher.Start(ctx)
	return dispatcher
}

func setUpOperational(engine *gin.Engine, pool *postgres.Postgres, cfg config.Config) {
	checkers := []health.Checker{health.NewPostgresChecker(pool.Pool)}
	if len(cfg.KafkaBrokers) > 0 {
		checkers = append(checkers, health.NewKafkaChecker(cfg.KafkaBrokers))
	}
	registry := health.NewRegistry(checkers...)

	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(registry, 5*time.Second))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
}
