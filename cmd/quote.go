package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/michaelpento.lv/bestroute/engine"
	"github.com/michaelpento.lv/bestroute/types"
	"github.com/michaelpento.lv/bestroute/utils"
	"github.com/michaelpento.lv/bestroute/utils/math"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	tokenInFlag  string
	tokenOutFlag string
	amountFlag   string
	exactOut     bool
	watch        bool
	metricsAddr  string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a swap across every route and print the best one",
	Example: `  bestroute quote --in WETH --out USDC --amount 1.5
  bestroute quote --in USDC --out 0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984 --amount 100 --exact-out
  bestroute quote --in WETH --out DAI --amount 10 --watch --metrics-addr :9090`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&tokenInFlag, "in", "", "token to sell, by symbol or address")
	quoteCmd.Flags().StringVar(&tokenOutFlag, "out", "", "token to buy, by symbol or address")
	quoteCmd.Flags().StringVar(&amountFlag, "amount", "", "amount in token units, e.g. 1.5")
	quoteCmd.Flags().BoolVar(&exactOut, "exact-out", false, "treat --amount as the amount to receive")
	quoteCmd.Flags().BoolVar(&watch, "watch", false, "keep repricing every refresh interval")
	quoteCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	_ = quoteCmd.MarkFlagRequired("in")
	_ = quoteCmd.MarkFlagRequired("out")
	_ = quoteCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	log := utils.GetLogger()
	ctx := cmd.Context()

	r, err := newRouter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer r.Close()

	tokenIn, err := r.resolveToken(ctx, tokenInFlag)
	if err != nil {
		return err
	}
	tokenOut, err := r.resolveToken(ctx, tokenOutFlag)
	if err != nil {
		return err
	}

	req := buildRequest(tokenIn, tokenOut, amountFlag, exactOut)
	r.warm(ctx, tokenIn, tokenOut)

	if metricsAddr != "" {
		go serveMetrics(ctx, r, metricsAddr)
	}

	out := cmd.OutOrStdout()
	if !watch {
		quoteCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
		snapshot := r.engine.BestTrade(quoteCtx, req)
		printSnapshot(ctx, out, r, snapshot)
		if snapshot.Computation.Trade() == nil {
			return fmt.Errorf("no trade: %s", snapshot.Computation.State())
		}
		return nil
	}

	go r.estimator.Run(ctx, cfg.RefreshInterval)
	for snapshot := range r.engine.Watch(ctx, req) {
		if snapshot.Computation.State() == types.TradeLoading {
			continue
		}
		printSnapshot(ctx, out, r, snapshot)
	}
	return nil
}

// buildRequest fixes the leg named by --amount. An unparseable amount yields a request without one.
func buildRequest(tokenIn, tokenOut *types.Token, amountText string, exactOutput bool) engine.Request {
	fixed, counter := tokenIn, tokenOut
	if exactOutput {
		fixed, counter = tokenOut, tokenIn
	}

	var amount *types.Amount
	if raw := math.ParseAmount(amountText, fixed.Decimals); raw != nil {
		amount = types.MustAmount(fixed, raw)
	}

	if exactOutput {
		return engine.ExactOut(counter, amount)
	}
	return engine.ExactIn(amount, counter)
}

func printSnapshot(ctx context.Context, w io.Writer, r *router, snapshot engine.Snapshot) {
	computation := snapshot.Computation
	trade := computation.Trade()
	if trade == nil {
		fmt.Fprintf(w, "#%d %s\n", snapshot.Seq, computation.State())
		return
	}

	fmt.Fprintf(w, "#%d %s %s\n", snapshot.Seq, computation.State(), trade.TradeType)
	fmt.Fprintf(w, "  route:  %s\n", trade.Route)
	fmt.Fprintf(w, "  input:  %s %s\n", formatAmount(trade.Input), trade.Input.Token)
	fmt.Fprintf(w, "  output: %s %s\n", formatAmount(trade.Output), trade.Output.Token)

	if trade.GasUseEstimate == 0 {
		return
	}
	cost, err := r.estimator.EstimateGasCost(ctx, trade.GasUseEstimate)
	if err != nil {
		r.logger.Debug("Gas cost unavailable", zap.Error(err))
		fmt.Fprintf(w, "  gas:    %d units\n", trade.GasUseEstimate)
		return
	}
	fmt.Fprintf(w, "  gas:    %d units, ~%s ETH\n", trade.GasUseEstimate, math.FormatAmountPrecision(cost, 18, 6))
}

func formatAmount(amount *types.Amount) string {
	return math.FormatAmountPrecision(amount.Raw(), amount.Token.Decimals, 8)
}

func serveMetrics(ctx context.Context, r *router, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	r.logger.Info("Serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.logger.Error("Metrics server stopped", zap.Error(err))
	}
}
