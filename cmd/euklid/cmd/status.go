package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/euklid/internal/euklid/render"
	"github.com/msto63/euklid/pkg/core/config"
	"github.com/msto63/euklid/pkg/core/health"
	"github.com/msto63/euklid/pkg/core/version"
)

var statusTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running euklid server",
	Long: `Check that a running euklid server answers. The HTTP API is asked for
its health report at the configured server address, the gRPC API through the
standard gRPC health service. With --remote only the gRPC API at that
address is checked.

The command fails when a check is unhealthy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		format, err := render.ParseFormat(outputFlag)
		if err != nil {
			return err
		}

		report := statusRegistry(cfg, remoteFlag, statusTimeout).CheckWithTimeout(statusTimeout + time.Second)
		if err := (&render.Printer{Out: stdout, Format: format}).Print(report); err != nil {
			return err
		}
		if report.Status == health.StatusUnhealthy {
			return errReported
		}
		return nil
	},
}

// statusRegistry lists the endpoints of the server described by cfg, or
// only the gRPC API at remote
func statusRegistry(cfg *config.Config, remote string, timeout time.Duration) *health.Registry {
	registry := health.NewRegistry("euklid", version.Server)
	if remote != "" {
		registry.Register(health.GRPCCheck("grpc", remote, timeout))
		return registry
	}
	registry.Register(health.HTTPCheck("http", "http://"+cfg.HTTPAddress()+"/api/v1/health", timeout))
	if addr := cfg.GRPCAddress(); addr != "" {
		registry.Register(health.GRPCCheck("grpc", addr, timeout))
	}
	return registry
}

func init() {
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 3*time.Second, "timeout of each check")
	rootCmd.AddCommand(statusCmd)
}
