package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment string
	LogLevel    string

	ServerPort      int
	ShutdownTimeout time.Duration
	FrontendURL     string
	UploadsDir      string

	DatabaseURL string

	JWTAccessSecret []byte

	KafkaBrokers    []string
	KafkaOrderTopic string

	ESURL          string
	ESUser         string
	ESPassword     string
	ESProductIndex string

	WebhookSecret string

	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal

	OrderSeqStart int64
	OrderSeqStep  int64
}

// Load reads config.env (or .env in production) and then the process environment.
func Load() Config {
	envFile := "config.env"
	if environment() == EnvProduction {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("Notice: %s file not found: %v. Using system environment variables", envFile, err)
	}

	return Config{
		Environment: environment(),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		ServerPort:      EnvIntDefault("PORT", 8000),
		ShutdownTimeout: EnvDurationDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		FrontendURL:     EnvDefault("FRONTEND_URL", "*"),
		UploadsDir:      EnvDefault("UPLOADS_DIR", "uploads"),

		DatabaseURL: EnvDefault("DATABASE_URL", os.Getenv("DB_URI")),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),

		KafkaBrokers:    CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: EnvDefault("KAFKA_ORDER_TOPIC", "order_events"),

		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		ESProductIndex: EnvDefault("ES_PRODUCT_INDEX", "products"),

		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		TaxPrice:      EnvDecimalDefault("TAX_PRICE", decimal.Zero),
		ShippingPrice: EnvDecimalDefault("SHIPPING_PRICE", decimal.Zero),

		OrderSeqStart: int64(EnvIntDefault("ORDER_SEQ_START", 0)),
		OrderSeqStep:  int64(EnvIntDefault("ORDER_SEQ_STEP", 1)),
	}
}

func (c Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func environment() string {
	if v := os.Getenv("APP_ENV"); v != "" {
		return v
	}
	return EnvDefault("NODE_ENV", EnvDevelopment)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func EnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}
