package cmd

import (
	"context"

	"github.com/michaelpento.lv/bestroute/config"
	"github.com/michaelpento.lv/bestroute/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	envFile string
	debug   bool

	// cfg is loaded once flags are parsed, before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bestroute",
	Short: "Find the best Uniswap v3 route for a swap",
	Long: `bestroute enumerates every route between two tokens through the configured
bridge tokens, prices each one against the on-chain quoter in parallel and
reports the route that pays the most (exact input) or costs the least (exact output).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or YAML (default is $HOME/.bestroute.json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with overrides")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setup loads the env file and config, then builds the logger the config asks for
func setup(*cobra.Command, []string) error {
	envErr := config.LoadEnv(envFile)

	loaded, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	log, err := utils.InitLogger(utils.LogOptions{
		Level: loaded.Logging.Level,
		File:  loaded.Logging.File,
		Debug: debug,
	})
	if err != nil {
		return err
	}
	if envErr != nil {
		log.Warn("Failed to load env file", zap.String("file", envFile), zap.Error(envErr))
	}

	cfg = loaded
	return nil
}
