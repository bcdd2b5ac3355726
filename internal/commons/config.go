package commons

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.yaml.in/yaml/v3"

	"pixelpro/internal/config"
)

// fileConfig mirrors config.Config with plain scalar fields so durations and
// money amounts can be written naturally in yaml.
type fileConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		User            string `yaml:"user"`
		Password        string `yaml:"password"`
		Name            string `yaml:"name"`
		MaxOpenConns    int    `yaml:"maxOpenConns"`
		MaxIdleConns    int    `yaml:"maxIdleConns"`
		ConnMaxLifetime string `yaml:"connMaxLifetime"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Checkout struct {
		TxTimeout        string `yaml:"txTimeout"`
		MaxRetryAttempts int    `yaml:"maxRetryAttempts"`
		ShippingCost     string `yaml:"shippingCost"`
		Currency         string `yaml:"currency"`
	} `yaml:"checkout"`
	Gateway struct {
		BaseURL     string `yaml:"baseUrl"`
		AccessToken string `yaml:"accessToken"`
		Timeout     string `yaml:"timeout"`
	} `yaml:"gateway"`
}

func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(fc.Database.ConnMaxLifetime)
	if err != nil {
		return nil, fmt.Errorf("parsing database.connMaxLifetime: %w", err)
	}

	txTimeout, err := time.ParseDuration(fc.Checkout.TxTimeout)
	if err != nil {
		return nil, fmt.Errorf("parsing checkout.txTimeout: %w", err)
	}

	gatewayTimeout, err := time.ParseDuration(fc.Gateway.Timeout)
	if err != nil {
		return nil, fmt.Errorf("parsing gateway.timeout: %w", err)
	}

	shippingCost, err := decimal.NewFromString(fc.Checkout.ShippingCost)
	if err != nil {
		return nil, fmt.Errorf("parsing checkout.shippingCost: %w", err)
	}

	return &config.Config{
		Server: config.ServerConfig{
			Port: fc.Server.Port,
		},
		Database: config.DatabaseConfig{
			Host:            fc.Database.Host,
			Port:            fc.Database.Port,
			User:            fc.Database.User,
			Password:        fc.Database.Password,
			Name:            fc.Database.Name,
			MaxOpenConns:    fc.Database.MaxOpenConns,
			MaxIdleConns:    fc.Database.MaxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: config.LogConfig{
			Level: fc.Log.Level,
		},
		Checkout: config.CheckoutConfig{
			TxTimeout:        txTimeout,
			MaxRetryAttempts: fc.Checkout.MaxRetryAttempts,
			ShippingCost:     shippingCost,
			Currency:         fc.Checkout.Currency,
		},
		Gateway: config.GatewayConfig{
			BaseURL:     fc.Gateway.BaseURL,
			AccessToken: fc.Gateway.AccessToken,
			Timeout:     gatewayTimeout,
		},
	}, nil
}
