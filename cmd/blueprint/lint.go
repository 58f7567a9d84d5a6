package blueprint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/deploykit/blueprint/internal/manifest"
)

var lintCmd = &cobra.Command{
	Use:   "lint [manifest-or-dir]",
	Short: "Validate blueprint manifests and report issues",
	Long: `Lint parses the given manifest file (or every manifest found in the
given directory) and reports structural issues: missing required fields,
invalid enumerated values, malformed repository URLs, and dangling
references between services, databases, and env var groups.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		paths, err := manifestPaths(target)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no manifests found under %s", target)
		}

		failed := false
		for _, path := range paths {
			if !lintOne(path) {
				failed = true
			}
		}

		if failed {
			os.Exit(1)
		}
		return nil
	},
}

func lintOne(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		color.Red("%s: %v", path, err)
		return false
	}

	bp, err := manifest.Parse(path, data)
	if err != nil {
		color.Red("%s: %v", path, err)
		return false
	}

	result := manifest.Validate(bp)
	if len(result) == 0 {
		color.Green("%s: ok (%d services)", path, len(bp.Services))
		return true
	}

	fmt.Println(path + ":")
	for _, issue := range result {
		if issue.Severity == manifest.SeverityError {
			color.Red("  %s", issue)
		} else {
			color.Yellow("  %s", issue)
		}
	}

	return !result.HasErrors()
}

// manifestPaths expands target into the list of manifest files to lint.
func manifestPaths(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{target}, nil
	}

	var paths []string
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() && manifest.Detect(entry.Name()) {
			paths = append(paths, filepath.Join(target, entry.Name()))
		}
	}
	return paths, nil
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
