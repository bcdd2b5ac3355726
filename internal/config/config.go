package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type CheckoutConfig struct {
	// TxTimeout bounds the whole checkout transaction, including the
	// outbound gateway call.
	TxTimeout        time.Duration
	MaxRetryAttempts int
	ShippingCost     decimal.Decimal
	Currency         string
}

type GatewayConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "pixelpro")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "pixelpro")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CHECKOUT_TX_TIMEOUT", "15s")
	viper.SetDefault("CHECKOUT_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("CHECKOUT_SHIPPING_COST", "15.00")
	viper.SetDefault("CHECKOUT_CURRENCY", "PEN")
	viper.SetDefault("GATEWAY_BASE_URL", "https://api.mercadopago.com")
	viper.SetDefault("GATEWAY_ACCESS_TOKEN", "")
	viper.SetDefault("GATEWAY_TIMEOUT", "10s")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	txTimeout, err := time.ParseDuration(viper.GetString("CHECKOUT_TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing CHECKOUT_TX_TIMEOUT: %w", err)
	}

	gatewayTimeout, err := time.ParseDuration(viper.GetString("GATEWAY_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing GATEWAY_TIMEOUT: %w", err)
	}

	shippingCost, err := decimal.NewFromString(viper.GetString("CHECKOUT_SHIPPING_COST"))
	if err != nil {
		return nil, fmt.Errorf("parsing CHECKOUT_SHIPPING_COST: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Checkout: CheckoutConfig{
			TxTimeout:        txTimeout,
			MaxRetryAttempts: viper.GetInt("CHECKOUT_MAX_RETRY_ATTEMPTS"),
			ShippingCost:     shippingCost,
			Currency:         viper.GetString("CHECKOUT_CURRENCY"),
		},
		Gateway: GatewayConfig{
			BaseURL:     viper.GetString("GATEWAY_BASE_URL"),
			AccessToken: viper.GetString("GATEWAY_ACCESS_TOKEN"),
			Timeout:     gatewayTimeout,
		},
	}

	return cfg, nil
}
