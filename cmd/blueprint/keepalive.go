package blueprint

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploykit/blueprint/internal/discovery"
	"github.com/deploykit/blueprint/internal/keepalive"
)

var (
	keepaliveURLs     []string
	keepaliveInterval time.Duration
	keepaliveTimeout  time.Duration
	keepaliveOnce     bool
)

var keepaliveCmd = &cobra.Command{
	Use:   "keepalive [source-path]",
	Short: "Ping web services on an interval so free-tier instances stay warm",
	Long: `Keepalive runs the manifest's background job: it pings each target on
an interval so the platform never idles the instances out. Targets come from
--url flags, or are derived from the web services of the manifests found in
the source tree (using each service's first domain and health check path).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := keepaliveURLs
		if len(targets) == 0 {
			filesystem, basePath, err := sourceFromArgs(args)
			if err != nil {
				return err
			}

			services, err := discovery.New(filesystem).Discover(cmd.Context(), basePath)
			if err != nil {
				return fmt.Errorf("discovery failed: %w", err)
			}
			targets = keepalive.TargetsFromServices(services)
		}

		pinger, err := keepalive.New(targets,
			keepalive.WithInterval(keepaliveInterval),
			keepalive.WithTimeout(keepaliveTimeout),
			keepalive.WithLogger(log),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if keepaliveOnce {
			for _, result := range pinger.RunOnce(ctx) {
				if !result.OK() {
					os.Exit(1)
				}
			}
			return nil
		}

		log.Info("keepalive started",
			"targets", len(targets),
			"interval", keepaliveInterval.String())

		if err := pinger.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	keepaliveCmd.Flags().StringSliceVar(&keepaliveURLs, "url", nil, "target URL to ping (repeatable; overrides discovery)")
	keepaliveCmd.Flags().DurationVar(&keepaliveInterval, "interval", keepalive.DefaultInterval, "time between ping rounds")
	keepaliveCmd.Flags().DurationVar(&keepaliveTimeout, "timeout", keepalive.DefaultTimeout, "per-request timeout")
	keepaliveCmd.Flags().BoolVar(&keepaliveOnce, "once", false, "run one round and exit non-zero on failure")
	rootCmd.AddCommand(keepaliveCmd)
}
