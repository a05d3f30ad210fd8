package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/haggle/internal/app"
	"github.com/example/haggle/internal/config"
	"github.com/example/haggle/internal/wire"
)

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Expire stale negotiations",
		Long: `Force-expire every open negotiation whose deadline has passed.

Runs once by default; with --interval it keeps sweeping until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			once, _ := cmd.Flags().GetBool("once")
			interval, _ := cmd.Flags().GetDuration("interval")

			continuous := cmd.Flags().Changed("interval")
			if !continuous {
				if cfg, err := config.LoadConfig("."); err == nil {
					if d := cfg.SweepIntervalDuration(); d > 0 {
						interval = d
						continuous = true
					}
				}
			}

			if once || !continuous {
				n, err := wire.SweeperService().SweepOnce(cmd.Context())
				if err != nil {
					return fmt.Errorf("sweep failed: %w", err)
				}
				fmt.Printf("✓ Expired %d negotiation(s)\n", n)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Sweeping every %s (Ctrl-C to stop)\n", interval)
			if err := wire.SweeperService().Run(ctx, interval); err != nil && ctx.Err() == nil {
				return fmt.Errorf("sweeper stopped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("once", false, "Sweep once and exit")
	cmd.Flags().Duration("interval", app.DefaultSweepInterval, "Sweep interval for continuous mode")
	return cmd
}
