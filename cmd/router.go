package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/michaelpento.lv/bestroute/config"
	"github.com/michaelpento.lv/bestroute/dex"
	"github.com/michaelpento.lv/bestroute/dex/uniswap"
	"github.com/michaelpento.lv/bestroute/engine"
	"github.com/michaelpento.lv/bestroute/gas"
	"github.com/michaelpento.lv/bestroute/quote"
	"github.com/michaelpento.lv/bestroute/routing"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/michaelpento.lv/bestroute/utils/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// router wires every component against one RPC connection
type router struct {
	cfg       *config.Config
	client    *ethclient.Client
	registry  *uniswap.PoolRegistry
	engine    *engine.Engine
	estimator *gas.Estimator
	tokens    *dex.TokenReader
	reg       *prometheus.Registry
	logger    *zap.Logger
}

func newRouter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*router, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.RPCEndpoint, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if chainID.Uint64() != cfg.ChainID {
		client.Close()
		return nil, fmt.Errorf("endpoint serves chain %d but config expects %d", chainID.Uint64(), cfg.ChainID)
	}

	r, err := assemble(cfg, client, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	r.client = client
	return r, nil
}

func assemble(cfg *config.Config, client *ethclient.Client, logger *zap.Logger) (*router, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewRouterMetrics(cfg.MetricsNamespace, reg)

	quoter, err := uniswap.NewQuoter(client, cfg.Quoter(), cfg.QuoterVersion)
	if err != nil {
		return nil, err
	}
	registry, err := uniswap.NewPoolRegistry(client, cfg.Factory(), cfg.FeeTiers, cfg.RegistryCacheSize, cfg.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}
	enumerator, err := routing.NewEnumerator(cfg.MaxHops, cfg.RouteCacheSize, logger)
	if err != nil {
		registry.Close()
		return nil, err
	}
	tokens, err := dex.NewTokenReader(client, cfg.ChainID)
	if err != nil {
		registry.Close()
		return nil, err
	}

	dispatcher := quote.NewDispatcher(quoter, client, quote.Config{
		GasLimit:  cfg.GasLimits().ForChain(cfg.ChainID),
		Timeout:   cfg.RequestTimeout,
		RateLimit: cfg.RPCRateLimit.RequestsPerSecond,
		Burst:     cfg.RPCRateLimit.BurstSize,
	}, m, logger)

	logger.Info("Router ready",
		zap.Uint64("chainId", cfg.ChainID),
		zap.String("quoter", quoter.Address().Hex()),
		zap.Int("quoterVersion", cfg.QuoterVersion),
		zap.Int("maxHops", enumerator.MaxHops()),
		zap.Uint64("quoteGasLimit", dispatcher.GasLimit()))

	return &router{
		cfg:      cfg,
		registry: registry,
		engine: engine.New(registry, enumerator, dispatcher, engine.Options{
			Bases:           cfg.BaseTokens(),
			RefreshInterval: cfg.RefreshInterval,
			Metrics:         m,
			Logger:          logger,
		}),
		estimator: gas.NewEstimator(client, logger),
		tokens:    tokens,
		reg:       reg,
		logger:    logger,
	}, nil
}

func (r *router) Close() {
	r.registry.Close()
	if r.client != nil {
		r.client.Close()
	}
}

// resolveToken accepts a configured symbol, a configured address or any ERC-20 address
func (r *router) resolveToken(ctx context.Context, symbolOrAddress string) (*types.Token, error) {
	if token, ok := r.cfg.LookupToken(symbolOrAddress); ok {
		return token, nil
	}
	if !common.IsHexAddress(symbolOrAddress) {
		return nil, fmt.Errorf("unknown token %q", symbolOrAddress)
	}
	return r.tokens.Token(ctx, common.HexToAddress(symbolOrAddress))
}

// warm blocks until the registry knows every pool a request could route through
func (r *router) warm(ctx context.Context, tokenIn, tokenOut *types.Token) {
	snapshot, err := r.registry.Load(ctx, routing.CandidatePairs(tokenIn, tokenOut, r.cfg.BaseTokens()))
	if err != nil {
		r.logger.Warn("Some pool lookups failed", zap.Error(err))
	}
	r.logger.Debug("Pools loaded", zap.Int("pools", len(snapshot.Pools)))
}
