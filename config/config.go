package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/michaelpento.lv/bestroute/dex/uniswap"
	"github.com/michaelpento.lv/bestroute/gas"
	"github.com/michaelpento.lv/bestroute/routing"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/michaelpento.lv/bestroute/utils/metrics"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"
)

const defaultConfigName = ".bestroute.json"

type Config struct {
	// Chain and network settings
	ChainID        uint64        `json:"chain_id" yaml:"chain_id"`
	RPCEndpoint    string        `json:"rpc_endpoint" yaml:"rpc_endpoint"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// Contracts
	QuoterAddress  string `json:"quoter_address" yaml:"quoter_address"`
	QuoterVersion  int    `json:"quoter_version" yaml:"quoter_version"`
	FactoryAddress string `json:"factory_address" yaml:"factory_address"`

	// Routing
	FeeTiers []uint32                 `json:"fee_tiers" yaml:"fee_tiers"`
	MaxHops  int                      `json:"max_hops" yaml:"max_hops"`
	Bases    map[uint64][]TokenConfig `json:"bases" yaml:"bases"`
	Tokens   []TokenConfig            `json:"tokens" yaml:"tokens"`

	// Quoting
	QuoteGasLimit     uint64            `json:"quote_gas_limit" yaml:"quote_gas_limit"`
	QuoteGasOverrides map[uint64]uint64 `json:"quote_gas_overrides" yaml:"quote_gas_overrides"`
	RPCRateLimit      RateLimitConfig   `json:"rpc_rate_limit" yaml:"rpc_rate_limit"`
	RefreshInterval   time.Duration     `json:"refresh_interval" yaml:"refresh_interval"`

	// Caches
	RegistryCacheSize int `json:"registry_cache_size" yaml:"registry_cache_size"`
	RouteCacheSize    int `json:"route_cache_size" yaml:"route_cache_size"`

	MetricsNamespace string `json:"metrics_namespace" yaml:"metrics_namespace"`

	Logging LogConfig `json:"logging" yaml:"logging"`
}

// LogConfig controls the CLI logger. Logs go to stderr, and also to File when set.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// TokenConfig names a token on the configured chain
type TokenConfig struct {
	Address  string `json:"address" yaml:"address"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size"`
}

var mainnetBases = []TokenConfig{
	{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18},
	{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
	{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Decimals: 6},
	{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
	{Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Decimals: 8},
}

var optimismBases = []TokenConfig{
	{Address: "0x4200000000000000000000000000000000000006", Symbol: "WETH", Decimals: 18},
	{Address: "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85", Symbol: "USDC", Decimals: 6},
	{Address: "0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1", Symbol: "DAI", Decimals: 18},
}

// DefaultConfig returns mainnet settings against a local node
func DefaultConfig() *Config {
	return &Config{
		ChainID:        1,
		RPCEndpoint:    "http://localhost:8545",
		RequestTimeout: 10 * time.Second,
		QuoterAddress:  uniswap.MainnetQuoterV2.Hex(),
		QuoterVersion:  2,
		FactoryAddress: uniswap.MainnetFactory.Hex(),
		FeeTiers:       append([]uint32(nil), uniswap.DefaultFeeTiers...),
		MaxHops:        routing.DefaultMaxHops,
		Bases: map[uint64][]TokenConfig{
			1:                 append([]TokenConfig(nil), mainnetBases...),
			gas.ChainOptimism: append([]TokenConfig(nil), optimismBases...),
		},
		Tokens:            append([]TokenConfig(nil), mainnetBases...),
		QuoteGasLimit:     gas.DefaultQuoteGasLimit,
		QuoteGasOverrides: gas.DefaultQuoteGasOverrides(),
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 25,
			BurstSize:         10,
		},
		RefreshInterval:   12 * time.Second,
		RegistryCacheSize: 4096,
		RouteCacheSize:    256,
		MetricsNamespace:  metrics.DefaultNamespace,
		Logging:           LogConfig{Level: "info"},
	}
}

func (c *Config) Validate() error {
	var errors []string

	if c.ChainID == 0 {
		errors = append(errors, "chain_id must be specified")
	}
	if c.RPCEndpoint == "" {
		errors = append(errors, "rpc_endpoint must be specified")
	}
	if c.RequestTimeout < 0 {
		errors = append(errors, "request_timeout must not be negative")
	}

	if !common.IsHexAddress(c.QuoterAddress) {
		errors = append(errors, fmt.Sprintf("quoter_address %q is not an address", c.QuoterAddress))
	}
	if c.QuoterVersion != 1 && c.QuoterVersion != 2 {
		errors = append(errors, "quoter_version must be 1 or 2")
	}
	if !common.IsHexAddress(c.FactoryAddress) {
		errors = append(errors, fmt.Sprintf("factory_address %q is not an address", c.FactoryAddress))
	}

	if len(c.FeeTiers) == 0 {
		errors = append(errors, "fee_tiers must not be empty")
	}
	for _, fee := range c.FeeTiers {
		if fee > uniswap.MaxFee {
			errors = append(errors, fmt.Sprintf("fee tier %d does not fit in uint24", fee))
		}
	}
	if c.MaxHops < 1 || c.MaxHops > routing.MaxHopsLimit {
		errors = append(errors, fmt.Sprintf("max_hops must be between 1 and %d", routing.MaxHopsLimit))
	}
	for chainID, bases := range c.Bases {
		for _, base := range bases {
			if err := base.Validate(); err != nil {
				errors = append(errors, fmt.Sprintf("bases for chain %d: %v", chainID, err))
			}
		}
	}
	for _, token := range c.Tokens {
		if err := token.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("tokens: %v", err))
		}
	}

	if err := c.RPCRateLimit.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("RPC rate limit error: %v", err))
	}
	if c.RefreshInterval <= 0 {
		errors = append(errors, "refresh_interval must be positive")
	}
	if c.RegistryCacheSize <= 0 {
		errors = append(errors, "registry_cache_size must be positive")
	}
	if c.RouteCacheSize <= 0 {
		errors = append(errors, "route_cache_size must be positive")
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, fmt.Sprintf("logging level: %v", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (t TokenConfig) Validate() error {
	if !common.IsHexAddress(t.Address) {
		return fmt.Errorf("token %q has invalid address %q", t.Symbol, t.Address)
	}
	if t.Decimals > 77 {
		return fmt.Errorf("token %q has %d decimals", t.Symbol, t.Decimals)
	}
	return nil
}

func (r *RateLimitConfig) Validate() error {
	if r.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	if r.RequestsPerSecond > 0 && r.BurstSize <= 0 {
		return fmt.Errorf("burst size must be positive")
	}
	return nil
}

func (t TokenConfig) Token(chainID uint64) *types.Token {
	return types.NewToken(chainID, common.HexToAddress(t.Address), t.Decimals, t.Symbol)
}

// BaseTokens returns the bridge tokens for the configured chain
func (c *Config) BaseTokens() []*types.Token {
	bases := c.Bases[c.ChainID]
	tokens := make([]*types.Token, 0, len(bases))
	for _, base := range bases {
		tokens = append(tokens, base.Token(c.ChainID))
	}
	return tokens
}

// LookupToken finds a configured token by symbol (case-insensitive) or address
func (c *Config) LookupToken(symbolOrAddress string) (*types.Token, bool) {
	candidates := append(append([]TokenConfig(nil), c.Tokens...), c.Bases[c.ChainID]...)
	for _, token := range candidates {
		if strings.EqualFold(token.Symbol, symbolOrAddress) || strings.EqualFold(token.Address, symbolOrAddress) {
			return token.Token(c.ChainID), true
		}
	}
	return nil, false
}

func (c *Config) Quoter() common.Address {
	return common.HexToAddress(c.QuoterAddress)
}

func (c *Config) Factory() common.Address {
	return common.HexToAddress(c.FactoryAddress)
}

// GasLimits is the quote gas ceiling policy for the configured overrides
func (c *Config) GasLimits() gas.Limits {
	return gas.Limits{Default: c.QuoteGasLimit, Overrides: c.QuoteGasOverrides}
}

// LoadConfig reads cfgFile over the defaults, applies environment overrides and validates.
// An empty cfgFile uses $HOME/.bestroute.json when present and the defaults otherwise.
func LoadConfig(cfgFile string) (*Config, error) {
	config := DefaultConfig()

	explicit := cfgFile != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		cfgFile = filepath.Join(home, defaultConfigName)
	}

	data, err := os.ReadFile(cfgFile)
	switch {
	case err == nil:
		if err := decode(cfgFile, data, config); err != nil {
			return nil, err
		}
	case explicit || !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	}
	return nil
}

func SaveConfig(cfg *Config, cfgFile string) error {
	file, err := os.Create(cfgFile)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	return encoder.Encode(cfg)
}
