package blueprint

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploykit/blueprint/internal/discovery"
	"github.com/deploykit/blueprint/internal/export"
	"github.com/deploykit/blueprint/internal/schema"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [source-path]",
	Short: "Render the normalized project as json, dotenv, or compose",
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

		name := filesystem.Base(basePath)
		if name == "." || name == string(os.PathSeparator) {
			if wd, err := os.Getwd(); err == nil {
				name = filesystem.Base(wd)
			}
		}

		project := schema.NewProject(name)
		for _, svc := range services {
			project.AddService(svc)
		}

		exporter, err := export.ForFormat(exportFormat)
		if err != nil {
			return err
		}

		output, err := exporter.Export(project)
		if err != nil {
			return fmt.Errorf("%s export failed: %w", exporter.Name(), err)
		}

		if exportOut == "" || exportOut == "-" {
			fmt.Println(string(output))
			return nil
		}
		return os.WriteFile(exportOut, output, 0o644)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "output format: json, dotenv, compose")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "-", "output file (- for stdout)")
	rootCmd.AddCommand(exportCmd)
}
