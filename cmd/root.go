// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tranvictor/blockseek/config"
	"github.com/tranvictor/blockseek/metrics"
	"github.com/tranvictor/blockseek/networks"
	"github.com/tranvictor/blockseek/ui"
	"github.com/tranvictor/blockseek/util"
)

var (
	Network     string
	Verbose     bool
	MetricsAddr string

	appConfig  *config.Config
	logger     = zap.NewNop().Sugar()
	registry   *prometheus.Registry
	appMetrics *metrics.Metrics

	metricsServer *http.Server

	out ui.UI = ui.NewTerminalUI()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blockseek",
	Short: "Find the block of a timestamp and read ERC20 token metadata",
	Long: fmt.Sprintf(`Blockseek resolves a unix timestamp to the closest block mined at or
before it and formats raw ERC20 amounts for humans.

Blocks are looked up with the block explorer API first (getblocknobytime).
When the explorer is not usable, blockseek falls back to a binary search over
block timestamps on a node.

Settings are read from the environment and from a .env file in the working
directory:
	1. %s: block explorer API key. Without it the explorer is skipped.
	2. %s: node used by the binary search fallback.
	3. TOKEN_RPC_URL: node used to read token metadata, defaults to the
	public node of the network.
	4. INDEX_API_URL: block explorer API, defaults to the one of the network.
	5. INDEX_COOLDOWN: minimum spacing between two explorer calls, 2s by default.

Supported networks: %s.`,
		"BSCSCAN_API_KEY",
		config.NodeURLVariable,
		strings.Join(networks.GetSupportedNetworkNames(), ", "),
	),
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Network)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = Verbose
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = MetricsAddr
	}
	appConfig = cfg

	l, err := util.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	logger = l.With("network", cfg.Network, "run", uuid.NewString())
	util.SetLogger(logger)

	registry = prometheus.NewRegistry()
	appMetrics, err = metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		startMetricsServer(cfg.MetricsAddr)
	}
	return nil
}

func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	metricsServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infow("serving metrics", "addr", addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("metrics server stopped", "err", err)
		}
	}()
}

func teardown(cmd *cobra.Command, args []string) error {
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(ctx)
	}
	_ = logger.Sync()
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&Network, "network", "k", "", fmt.Sprintf("network to query, overrides NETWORK (default %q). Valid values: %s.", config.DEFAULT_NETWORK, strings.Join(networks.GetSupportedNetworkNames(), ", ")))
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "print debug logs")
	rootCmd.PersistentFlags().StringVar(&MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while the command runs, e.g. :9100")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		out.Error("%s", describeError(err))
		stop()
		os.Exit(1)
	}
}
