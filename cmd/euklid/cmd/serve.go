package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/euklid/internal/euklid/server"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/pkg/core/config"
	"github.com/msto63/euklid/pkg/core/logging"
)

var (
	serveWatch bool
	serveHTTP  int
	serveGRPC  int
	pruneEvery time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP, WebSocket and gRPC API",
	Long: `Start the calculator API.

Endpoints:
  HTTP       /api/v1/...      (default :8080)
  WebSocket  /api/v1/ws
  Metrics    /metrics
  gRPC       euklid.v1.Calculator (default :9090, grpc_port = -1 disables it)

With --watch the configuration file is reloaded when it changes; engine
limits take effect for the next request.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the config file when it changes")
	serveCmd.Flags().IntVar(&serveHTTP, "http-port", 0, "override the HTTP port")
	serveCmd.Flags().IntVar(&serveGRPC, "grpc-port", 0, "override the gRPC port, -1 disables gRPC")
	serveCmd.Flags().DurationVar(&pruneEvery, "prune-every", time.Hour, "interval of the history retention job")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("http-port") {
		cfg.Server.HTTPPort = serveHTTP
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.Server.GRPCPort = serveGRPC
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New("euklid")

	svc, err := openService(cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv, err := server.New(svc, server.FromConfig(cfg))
	if err != nil {
		return err
	}

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("Shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if svc.HistoryEnabled() {
		go svc.RunRetention(ctx, retention(cfg), pruneEvery)
	}

	if path := configPath(); serveWatch && path != "" {
		go func() {
			err := config.Watch(ctx, path, func(next *config.Config, err error) {
				if err != nil {
					logger.Warn("Config reload failed, keeping previous settings", "error", err.Error())
					return
				}
				svc.SetEngineOptions(engineOptions(next))
				logging.Configure(next.Logging.Level, next.Logging.Format, nil)
				logger.Info("Config reloaded",
					"max_decimal_places", next.Engine.MaxDecimalPlaces,
					"precision", next.Engine.Precision)
			})
			if err != nil {
				logger.Error("Config watch stopped", "error", err.Error())
			}
		}()
	}

	fmt.Printf("euklid API on http://%s", cfg.HTTPAddress())
	if cfg.Server.GRPCPort >= 0 {
		fmt.Printf(", gRPC on %s", cfg.GRPCAddress())
	}
	fmt.Println()

	return srv.Run(ctx)
}

// retention converts the history settings
func retention(cfg *config.Config) service.Retention {
	return service.Retention{
		MaxAge:     time.Duration(cfg.History.RetentionDays) * 24 * time.Hour,
		MaxEntries: cfg.History.MaxEntries,
	}
}

// configPath names the file loadConfig read, if any
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := os.Getenv("EUKLID_CONFIG"); path != "" {
		return path
	}
	for _, p := range config.DefaultPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
