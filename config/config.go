package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL" required:"true"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret string `env:"JWT_SECRET" required:"true"`

	// Payment gateway provider selected at startup. Currently only "mpesa".
	PaymentProvider          string        `env:"PAYMENT_PROVIDER" envDefault:"mpesa"`
	GatewayBaseURL           string        `env:"GATEWAY_BASE_URL" required:"true"`
	GatewayConsumerKey       string        `env:"GATEWAY_CONSUMER_KEY" required:"true"`
	GatewayConsumerSecret    string        `env:"GATEWAY_CONSUMER_SECRET" required:"true"`
	GatewayShortCode         string        `env:"GATEWAY_SHORT_CODE" required:"true"`
	GatewayPasskey           string        `env:"GATEWAY_PASSKEY" required:"true"`
	GatewayCallbackURL       string        `env:"GATEWAY_CALLBACK_URL" required:"true"`
	HTTPGatewayClientTimeout time.Duration `env:"HTTP_GATEWAY_CLIENT_TIMEOUT" envDefault:"30s"`

	// Platform fee in basis points of the transaction total.
	PlatformFeeBps          int           `env:"PLATFORM_FEE_BPS" envDefault:"1000"`
	EscrowHoldingPeriod     time.Duration `env:"ESCROW_HOLDING_PERIOD" envDefault:"72h"`
	EscrowSweepInterval     time.Duration `env:"ESCROW_SWEEP_INTERVAL" envDefault:"5m"`
	DisputeReleaseExtension time.Duration `env:"DISPUTE_RELEASE_EXTENSION" envDefault:"168h"`

	// Kafka configuration for domain event emission.
	KafkaBrokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTransactionsTopic string   `env:"KAFKA_TRANSACTIONS_TOPIC" envDefault:"payments.transactions"`

	// Optional OpenSearch audit sink. Disabled when no URLs are configured.
	OpensearchURLs              []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexTransactions string   `env:"OPENSEARCH_INDEX_TRANSACTIONS" envDefault:"payments-transactions"`
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
