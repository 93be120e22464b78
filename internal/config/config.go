package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// RPC Server URL
	RPCServerURL string

	// Network passphrase ( mainnet or testnet )
	NetworkPassphrase string

	// Token contract ID ( C... strkey )
	TokenContractID string

	// Marketplace contract ID ( C... strkey )
	MarketplaceContractID string

	// Default inclusion fee in stroops, as a decimal string
	DefaultFee string

	// Default envelope time window
	DefaultTimeout time.Duration

	// Source account used for read-only simulations
	QueryAccount string

	// Optional local signer seed ( S... strkey ), CLI only
	SignerSeed string

	// HTTP API port
	APIPort int

	// Optional Postgres URL for the submission journal; empty disables it
	DatabaseURL string

	// Client-side RPC rate limit, requests per second; 0 disables it
	RPCRateLimit float64

	// Log level: debug, info, warn, error
	LogLevel string
}

// Load returns the configuration from environment variables, with testnet
// defaults.
func Load() *Config {
	return &Config{
		RPCServerURL:          getEnv("RPC_SERVER_URL", "https://soroban-testnet.stellar.org"),
		NetworkPassphrase:     getEnv("NETWORK_PASSPHRASE", "Test SDF Network ; September 2015"),
		TokenContractID:       getEnv("TOKEN_CONTRACT_ID", ""),
		MarketplaceContractID: getEnv("MARKETPLACE_CONTRACT_ID", ""),
		DefaultFee:            getEnv("DEFAULT_FEE", "100"),
		DefaultTimeout:        time.Duration(getEnvAsInt("DEFAULT_TIMEOUT_SEC", 30)) * time.Second,
		QueryAccount:          getEnv("QUERY_ACCOUNT", ""),
		SignerSeed:            getEnv("SIGNER_SEED", ""),
		APIPort:               getEnvAsInt("API_PORT", 8080),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RPCRateLimit:          getEnvAsFloat("RPC_RATE_LIMIT_RPS", 0),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.RPCServerURL == "" {
		return fmt.Errorf("RPCServerURL is required")
	}
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("NetworkPassphrase is required")
	}
	if c.TokenContractID == "" {
		return fmt.Errorf("TokenContractID is required")
	}
	if c.MarketplaceContractID == "" {
		return fmt.Errorf("MarketplaceContractID is required")
	}
	if _, err := strconv.ParseInt(c.DefaultFee, 10, 64); err != nil {
		return fmt.Errorf("DefaultFee must be a stroop integer: %w", err)
	}
	return nil
}

// FeeStroops returns the default inclusion fee as an integer. Call Validate
// first.
func (c *Config) FeeStroops() int64 {
	fee, _ := strconv.ParseInt(c.DefaultFee, 10, 64)
	return fee
}

// Helper: get string from env
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Helper: get int from env
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// Helper: get float from env
func getEnvAsFloat(key string, defaultVal float64) float64 {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return defaultVal
	}
	return val
}
