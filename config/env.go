package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvRPCEndpoint = "BESTROUTE_RPC_ENDPOINT"
	EnvChainID     = "BESTROUTE_CHAIN_ID"
)

// LoadEnv loads environment variables from .env files. Missing files are not an error.
func LoadEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// GetEnvWithDefault gets an environment variable with a default value
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// ApplyEnv overrides file settings with any that are set in the environment
func (c *Config) ApplyEnv() {
	c.RPCEndpoint = GetEnvWithDefault(EnvRPCEndpoint, c.RPCEndpoint)
	if chainID, err := strconv.ParseUint(os.Getenv(EnvChainID), 10, 64); err == nil && chainID > 0 {
		c.ChainID = chainID
	}
}
