package blueprint

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploykit/blueprint/internal/discovery"
)

var servicesCmd = &cobra.Command{
	Use:   "services [source-path]",
	Short: "List the normalized services a source tree declares",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filesystem, basePath, err := sourceFromArgs(args)
		if err != nil {
			return err
		}

		services, err := discovery.New(filesystem).Discover(cmd.Context(), basePath)
		if err != nil {
			return fmt.Errorf("discovery failed: %w", err)
		}

		fmt.Printf("Discovered %d services:\n", len(services))
		for _, svc := range services {
			fmt.Printf("  - %s: network=%s runtime=%s build=%s\n",
				svc.Name, svc.Network, svc.Runtime, svc.Build)

			if svc.Image != "" {
				fmt.Printf("    image: %s\n", svc.Image)
			}
			if svc.StartCommand != "" {
				fmt.Printf("    start: %s\n", svc.StartCommand)
			}
			if svc.PublishPath != "" {
				fmt.Printf("    publish: %s\n", svc.PublishPath)
			}
			for _, ref := range svc.Configs {
				fmt.Printf("    config: %s (%s)\n", ref.Path, ref.Type)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}
