package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sockstream/pkg/config"
	"sockstream/pkg/observability"
)

var (
	// Global flags
	cfgFile   string
	transport string

	// Shared state set during PersistentPreRun
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is the base command for sockstream.
var rootCmd = &cobra.Command{
	Use:   "sockstream",
	Short: "Transport-agnostic byte streaming — send and receive over tcp, tls, ws, quic, or p2p",
	Long: `sockstream moves raw bytes and files between two endpoints through one
stream contract, regardless of the transport underneath. The plain TCP
backend uses the kernel sendfile path for files; encrypted transports fall
back to bounded chunked transfer with identical output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err = observability.SetupLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to setup logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVarP(&transport, "transport", "t", "tcp", "transport: tcp, tls, ws, quic")
}
