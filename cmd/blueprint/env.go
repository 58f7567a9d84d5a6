package blueprint

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/deploykit/blueprint/internal/environment"
	"github.com/deploykit/blueprint/internal/filesystems"
)

var envCmd = &cobra.Command{
	Use:   "env [source-path]",
	Short: "Inventory environment variables declared in a source tree",
	Long: `Env walks the source tree and collects every environment variable
declared by blueprint manifests, dotenv files, and Dockerfile ENV
instructions. Duplicates are resolved by source confidence; values that look
sensitive are flagged.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filesystem, basePath, err := sourceFromArgs(args)
		if err != nil {
			return err
		}

		extractor := environment.NewExtractor()
		ctx := cmd.Context()

		var all []environment.EnvResult
		err = filesystem.Walk(basePath, func(path string, info filesystems.FileInfo, err error) error {
			if err != nil || info == nil || info.IsDir() {
				return nil
			}

			content, err := filesystem.ReadFile(path)
			if err != nil {
				return nil
			}
			for result := range extractor.Extract(ctx, path, content) {
				all = append(all, result)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("walk failed: %w", err)
		}

		merged := environment.Merge(all...)
		if len(merged) == 0 {
			fmt.Println("No environment variables found")
			return nil
		}

		names := make([]string, 0, len(merged))
		for name := range merged {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			result := merged[name]
			marker := ""
			if result.Sensitive {
				marker = " [SENSITIVE]"
			}
			fmt.Printf("%s = %s\n", result.VarName, result.Value)
			fmt.Printf("  type: %s, source: %s%s\n", result.Type, result.Source, marker)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
