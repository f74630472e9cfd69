package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting the service reads at boot.
type Config struct {
	ServiceName    string
	EndpointPrefix string
	Port           string

	DatabaseURL string

	KafkaBrokers string

	ConsulAddress string

	// ReleaseCouponOnCancel restores a user's coupon eligibility when an
	// order that redeemed it is cancelled. The original behavior was
	// inconsistent, so it is an explicit policy flag here.
	ReleaseCouponOnCancel bool

	// ShippingFee is charged on orders below FreeShippingAbove.
	ShippingFee       int64
	FreeShippingAbove int64

	DeliveryWindow time.Duration
}

// Load reads .env (if present) and the process environment.
// Missing required variables are a startup failure, not a runtime surprise.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName:    getEnv("SERVICE_NAME", "orders"),
		EndpointPrefix: getEnv("SERVICE_ENDPOINT_PREFIX", "/orders"),
		Port:           getEnv("APP_PORT", "8082"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		KafkaBrokers:   getEnv("KAFKA_BROKERS", "localhost:9092"),
		ConsulAddress:  getEnv("CONSUL_HTTP_ADDR", ""),
		DeliveryWindow: 48 * time.Hour,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	var err error
	cfg.ReleaseCouponOnCancel, err = getBool("COUPON_RELEASE_ON_CANCEL", false)
	if err != nil {
		return nil, err
	}
	cfg.ShippingFee, err = getInt64("SHIPPING_FEE", 40)
	if err != nil {
		return nil, err
	}
	cfg.FreeShippingAbove, err = getInt64("FREE_SHIPPING_ABOVE", 500)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
